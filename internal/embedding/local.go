package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"regexp"
	"strings"
)

// LocalDimension is the vector length of the local embedder. It matches the
// 384-dim output of small sentence-transformer models so a corpus embedded
// locally can later be migrated without a schema change.
const LocalDimension = 384

// LocalEmbedder is a pure, in-process vectorizer using token feature hashing
// with L2 normalization. It needs no corpus preparation and no network, and
// is fully deterministic: the same text always hashes to the same vector.
// It is the default when no OPENAI_API_KEY is configured, and what tests use.
type LocalEmbedder struct {
	dimension    int
	tokenPattern *regexp.Regexp
	stopwords    map[string]struct{}
}

// NewLocalEmbedder creates a local embedder producing LocalDimension vectors.
func NewLocalEmbedder() *LocalEmbedder {
	return &LocalEmbedder{
		dimension:    LocalDimension,
		tokenPattern: regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*|\p{N}+`),
		stopwords:    defaultStopwords(),
	}
}

// Dimension returns the vector length of this embedder.
func (e *LocalEmbedder) Dimension() int { return e.dimension }

// Embed computes the feature-hashed embedding for the given text.
// Empty or all-stopword text yields the zero vector and no error.
func (e *LocalEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vec := make([]float32, e.dimension)

	total := 0
	for _, tok := range e.tokenize(text) {
		vec[e.bucket(tok)]++
		total++
	}
	if total == 0 {
		return vec, nil
	}

	// L2 normalize so cosine comparisons are scale-free.
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
	return vec, nil
}

// bucket maps a token to its vector index via FNV-1a.
func (e *LocalEmbedder) bucket(token string) int {
	h := fnv.New32a()
	h.Write([]byte(token))
	return int(h.Sum32() % uint32(e.dimension))
}

func (e *LocalEmbedder) tokenize(text string) []string {
	lower := strings.ToLower(text)
	raw := e.tokenPattern.FindAllString(lower, -1)
	out := raw[:0]
	for _, t := range raw {
		if _, isStop := e.stopwords[t]; isStop {
			continue
		}
		out = append(out, t)
	}
	return out
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for",
		"to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was",
		"were", "be", "been", "being", "it", "this", "that", "these", "those",
		"from", "up", "down", "over", "under", "than", "so", "such", "into",
		"about", "between", "through", "during", "before", "after", "can",
		"will", "just", "not", "no", "its", "their", "his", "her",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
