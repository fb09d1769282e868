//go:build integration

package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDimension = 4

// setupTestStore creates a Qdrant-backed store and ensures the collection
// exists. Skips the test if Qdrant is not running.
func setupTestStore(t *testing.T) *QdrantStore {
	store, err := NewQdrantStore("localhost", 6334, testDimension)
	if err != nil {
		t.Skipf("Qdrant not available: %v", err)
	}

	err = store.EnsureCollection(context.Background())
	require.NoError(t, err, "Failed to ensure collection")

	return store
}

func TestQdrantInsertAndNearest(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()

	_, err := store.Insert(ctx, &Document{
		Title:     "Kenya",
		Content:   "Kenya gained independence in 1963.",
		Source:    "https://example.org/qdrant-test-kenya",
		Language:  "en",
		Embedding: []float32{1, 0, 0, 0},
	})
	require.NoError(t, err)

	results, err := store.Nearest(ctx, []float32{1, 0, 0, 0}, 1)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "Kenya", results[0].Title)
	assert.Equal(t, "en", results[0].Language)
}

func TestQdrantUpsertBySource(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()
	source := "https://example.org/qdrant-test-upsert"

	first, err := store.UpsertBySource(ctx, &Document{
		Title:     "v1",
		Content:   "old",
		Source:    source,
		Embedding: []float32{1, 0, 0, 0},
	})
	require.NoError(t, err)

	second, err := store.UpsertBySource(ctx, &Document{
		Title:     "v2",
		Content:   "new",
		Source:    source,
		Embedding: []float32{0, 1, 0, 0},
	})
	require.NoError(t, err)

	assert.Equal(t, first, second, "re-ingesting a source keeps its id")
}

func TestQdrantBackfillRoundTrip(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()

	id, err := store.Insert(ctx, &Document{
		Title:   "pending doc",
		Content: "content awaiting a vector",
		Source:  "https://example.org/qdrant-test-pending",
	})
	require.NoError(t, err)

	pending, err := store.ScanMissingEmbeddings(ctx)
	require.NoError(t, err)

	found := false
	for _, doc := range pending {
		if doc.ID == id {
			found = true
			assert.Equal(t, "content awaiting a vector", doc.Content)
		}
	}
	assert.True(t, found, "pending document should be returned by the scan")

	err = store.SetEmbedding(ctx, id, []float32{0, 0, 1, 0})
	require.NoError(t, err)

	pending, err = store.ScanMissingEmbeddings(ctx)
	require.NoError(t, err)
	for _, doc := range pending {
		assert.NotEqual(t, id, doc.ID, "embedded document must leave the pending scan")
	}
}

func TestQdrantDimensionValidation(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()

	_, err := store.Insert(ctx, &Document{
		Source:    "https://example.org/qdrant-test-dim",
		Embedding: []float32{1, 0},
	})
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	_, err = store.Nearest(ctx, []float32{1, 0}, 5)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}
