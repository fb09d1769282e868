// Package embedding maps text to fixed-dimension semantic vectors.
//
// Every component that touches the corpus (ingestion, backfill, retrieval)
// must use the same Embedder instance so vectors stay comparable.
package embedding

import "context"

// Embedder converts free text into a numeric vector representation.
// Implementations must be deterministic for a fixed model version: repeated
// calls with the same text yield vectors whose similarity ranking is stable.
// Empty input produces a valid zero vector, not an error.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimension is the length of every vector Embed returns.
	Dimension() int
}
