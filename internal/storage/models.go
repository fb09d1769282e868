package storage

import "context"

// MaxContentLength is the upper bound on stored document body text, in bytes.
// Ingestion truncates extracted content to this length before insert.
const MaxContentLength = 5000

// Document is the unit of corpus content. All fields except Embedding are
// fixed at insert time. Embedding transitions at most once, nil -> vector of
// the store's configured dimension, written either at ingestion or by a later
// backfill pass.
type Document struct {
	ID        string    // UUID assigned by the store
	Title     string    // "Unknown" when extraction found no title
	Content   string    // extracted body text, len <= MaxContentLength
	Source    string    // origin URL or github:// locator
	Language  string    // ISO-ish tag, "en" for scraped content
	Embedding []float32 // nil while the document is pending backfill
}

// View returns the read-only projection exposed to search callers.
// ID and Embedding are deliberately not part of it.
func (d *Document) View() DocumentView {
	return DocumentView{
		Title:   d.Title,
		Content: d.Content,
		Source:  d.Source,
	}
}

// DocumentView is what the retrieval surface returns for a matched document.
type DocumentView struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Source  string `json:"source"`
}

// Store is the content store shared by the ingestion worker, the backfill
// worker, and the retrieval service. Implementations must be safe for
// concurrent use; single-document writes are atomic, and a duplicate
// SetEmbedding for the same id is a benign last-write-wins (both writers
// derive the vector from the same immutable content).
type Store interface {
	// Insert appends a new document and returns its assigned id.
	Insert(ctx context.Context, doc *Document) (string, error)

	// UpsertBySource inserts the document, or replaces the existing document
	// with the same Source, and returns the id of the stored document.
	// Re-ingesting a source therefore updates one record instead of
	// accumulating duplicates.
	UpsertBySource(ctx context.Context, doc *Document) (string, error)

	// ScanMissingEmbeddings returns every document whose embedding is unset,
	// in stable order. Safe to call concurrently with Insert.
	ScanMissingEmbeddings(ctx context.Context) ([]*Document, error)

	// SetEmbedding writes the embedding for the document with the given id.
	// The vector length must equal the store's configured dimension.
	SetEmbedding(ctx context.Context, id string, vector []float32) error

	// Nearest returns up to k documents ordered by ascending cosine distance
	// to the query vector. Documents without an embedding are not candidates.
	Nearest(ctx context.Context, vector []float32, k int) ([]*Document, error)

	// Count reports the number of stored documents.
	Count(ctx context.Context) (int, error)

	// Health checks that the backing store is reachable.
	Health(ctx context.Context) error

	Close() error
}
