// Package retrieval answers free-text queries by nearest-neighbor search
// over the embedded corpus.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/historia-ai/historia/internal/embedding"
	"github.com/historia-ai/historia/internal/storage"
)

// ErrRetrieval tags any failure during query embedding or the nearest
// lookup, so the API boundary can distinguish a failed search from an empty
// one.
var ErrRetrieval = errors.New("retrieval failed")

// DefaultK is the number of results returned when the caller does not ask
// for a specific count.
const DefaultK = 10

// Service embeds incoming queries and returns the closest documents.
type Service struct {
	store    storage.Store
	embedder embedding.Embedder
	logger   *slog.Logger
}

// NewService creates a retrieval service. The embedder must be the same
// instance the ingestion and backfill workers use, or vectors are not
// comparable.
func NewService(store storage.Store, embedder embedding.Embedder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:    store,
		embedder: embedder,
		logger:   logger,
	}
}

// Search returns up to k documents most similar to the query, closest
// first. k <= 0 means DefaultK. An empty result is a valid outcome, distinct
// from an error.
func (s *Service) Search(ctx context.Context, query string, k int) ([]storage.DocumentView, error) {
	if k <= 0 {
		k = DefaultK
	}

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %v", ErrRetrieval, err)
	}

	docs, err := s.store.Nearest(ctx, vector, k)
	if err != nil {
		return nil, fmt.Errorf("%w: nearest lookup: %v", ErrRetrieval, err)
	}

	views := make([]storage.DocumentView, 0, len(docs))
	for _, doc := range docs {
		views = append(views, doc.View())
	}

	s.logger.Debug("search complete", "query", query, "k", k, "results", len(views))
	return views, nil
}
