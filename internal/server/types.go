// Package server exposes the pipeline to the outside as a small JSON-over-
// HTTP API: /search, /ingest, /chat, /health.
package server

import (
	"context"

	"github.com/historia-ai/historia/internal/scraper"
	"github.com/historia-ai/historia/internal/storage"
)

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Message  string `json:"message"`
	Language string `json:"language"`
}

// ChatResponse is the reply of POST /chat.
type ChatResponse struct {
	Response string `json:"response"`
}

// SearchRequest is the body of POST /search.
type SearchRequest struct {
	Query    string `json:"query"`
	Language string `json:"language"`
}

// SearchResponse is the reply of POST /search. Results is empty, never
// null, when nothing matches.
type SearchResponse struct {
	Results []storage.DocumentView `json:"results"`
}

// IngestResponse is the reply of POST /ingest.
type IngestResponse struct {
	Message string `json:"message"`
}

// ErrorResponse carries the failure detail for non-2xx replies.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// Searcher is the retrieval dependency of the search handler.
type Searcher interface {
	Search(ctx context.Context, query string, k int) ([]storage.DocumentView, error)
}

// Ingester is the ingestion dependency of the ingest handler.
type Ingester interface {
	Ingest(ctx context.Context, sources []string) *scraper.Report
}

// Backfiller is the backfill dependency of the ingest handler.
type Backfiller interface {
	Run(ctx context.Context) (int, error)
}

// Responder is the chat collaborator dependency of the chat handler.
type Responder interface {
	Enabled() bool
	Respond(ctx context.Context, message, language string) (string, error)
}
