// Package chat is the thin conversational collaborator: it forwards a user
// message to the LLM service and returns its text. No corpus logic lives
// here.
package chat

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
)

// ErrDisabled is returned when no LLM credential was configured at startup.
var ErrDisabled = errors.New("chat is not configured")

const systemPrompt = "You are HISTORIA AI, an expert on Kenyan and African history. " +
	"Provide accurate, engaging responses."

// Responder produces conversational answers using a chat completion model.
// A nil client yields a disabled responder; construction never fails so a
// missing credential degrades /chat instead of blocking startup.
type Responder struct {
	client *openai.Client
	model  openai.ChatModel
}

// NewResponder creates a responder with the given OpenAI client, which may
// be nil.
func NewResponder(client *openai.Client) *Responder {
	return &Responder{
		client: client,
		model:  openai.ChatModelGPT4o,
	}
}

// Enabled reports whether a credential was configured.
func (r *Responder) Enabled() bool { return r.client != nil }

// Respond answers the user message in the historian persona. Non-English
// messages pass through the translation stub unchanged for now.
func (r *Responder) Respond(ctx context.Context, message, language string) (string, error) {
	if r.client == nil {
		return "", ErrDisabled
	}

	query := Translate(message, language, "en")

	resp, err := r.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(query),
		},
		Model: r.model,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	answer := resp.Choices[0].Message.Content
	return Translate(answer, "en", language), nil
}

// Translate is a stubbed passthrough. Wiring a real translation backend is
// tracked for when non-English sources enter the corpus.
func Translate(text, from, to string) string {
	return text
}
