// Package backfill computes embeddings for documents that were stored
// without one, either because they predate the embedding feature or because
// embedding failed at ingestion time.
package backfill

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/historia-ai/historia/internal/embedding"
	"github.com/historia-ai/historia/internal/storage"
)

// Worker scans the store for documents missing an embedding and fills them
// in. Concurrent runs are harmless: both compute the same vector from the
// same immutable content, so a double write is a benign no-op.
type Worker struct {
	store    storage.Store
	embedder embedding.Embedder
	logger   *slog.Logger
}

// NewWorker creates a backfill worker.
func NewWorker(store storage.Store, embedder embedding.Embedder, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{
		store:    store,
		embedder: embedder,
		logger:   logger,
	}
}

// Run embeds every pending document and returns how many were updated.
// A failure on one document is logged and skipped; the next scheduled run
// retries it. Run only returns an error when the pending scan itself fails.
func (w *Worker) Run(ctx context.Context) (int, error) {
	pending, err := w.store.ScanMissingEmbeddings(ctx)
	if err != nil {
		return 0, fmt.Errorf("scan pending documents: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	w.logger.Info("starting backfill", "pending", len(pending))

	updated := 0
	for _, doc := range pending {
		vector, err := w.embedder.Embed(ctx, doc.Content)
		if err != nil {
			w.logger.Warn("failed to embed document", "id", doc.ID, "source", doc.Source, "error", err)
			continue
		}
		if err := w.store.SetEmbedding(ctx, doc.ID, vector); err != nil {
			w.logger.Warn("failed to store embedding", "id", doc.ID, "source", doc.Source, "error", err)
			continue
		}
		updated++
	}

	w.logger.Info("backfill complete", "updated", updated, "skipped", len(pending)-updated)
	return updated, nil
}
