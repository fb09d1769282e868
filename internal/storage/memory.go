package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store using brute-force cosine scan for
// Nearest. It backs unit tests and local runs without a Qdrant instance.
// Documents keep their insertion position across upserts, which makes
// distance ties resolve in insertion order.
type MemoryStore struct {
	mu        sync.RWMutex
	dimension int
	docs      []*Document
	bySource  map[string]int // source -> index into docs
	byID      map[string]int
}

// NewMemoryStore creates an empty in-memory store for vectors of the given
// dimension.
func NewMemoryStore(dimension int) *MemoryStore {
	return &MemoryStore{
		dimension: dimension,
		bySource:  make(map[string]int),
		byID:      make(map[string]int),
	}
}

func (s *MemoryStore) Insert(ctx context.Context, doc *Document) (string, error) {
	if doc.Embedding != nil && len(doc.Embedding) != s.dimension {
		return "", fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(doc.Embedding), s.dimension)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := cloneDocument(doc)
	stored.ID = uuid.New().String()
	s.byID[stored.ID] = len(s.docs)
	s.bySource[stored.Source] = len(s.docs)
	s.docs = append(s.docs, stored)
	return stored.ID, nil
}

func (s *MemoryStore) UpsertBySource(ctx context.Context, doc *Document) (string, error) {
	if doc.Embedding != nil && len(doc.Embedding) != s.dimension {
		return "", fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(doc.Embedding), s.dimension)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if idx, ok := s.bySource[doc.Source]; ok {
		stored := cloneDocument(doc)
		stored.ID = s.docs[idx].ID
		s.docs[idx] = stored
		return stored.ID, nil
	}

	stored := cloneDocument(doc)
	stored.ID = uuid.New().String()
	s.byID[stored.ID] = len(s.docs)
	s.bySource[stored.Source] = len(s.docs)
	s.docs = append(s.docs, stored)
	return stored.ID, nil
}

func (s *MemoryStore) ScanMissingEmbeddings(ctx context.Context) ([]*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var pending []*Document
	for _, doc := range s.docs {
		if doc.Embedding == nil {
			pending = append(pending, cloneDocument(doc))
		}
	}
	return pending, nil
}

func (s *MemoryStore) SetEmbedding(ctx context.Context, id string, vector []float32) error {
	if len(vector) != s.dimension {
		return fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(vector), s.dimension)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx, ok := s.byID[id]
	if !ok {
		return ErrDocumentNotFound
	}
	s.docs[idx].Embedding = append([]float32(nil), vector...)
	return nil
}

func (s *MemoryStore) Nearest(ctx context.Context, vector []float32, k int) ([]*Document, error) {
	if len(vector) != s.dimension {
		return nil, fmt.Errorf("%w: query has %d dimensions, want %d", ErrDimensionMismatch, len(vector), s.dimension)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	type scored struct {
		doc      *Document
		distance float64
	}
	candidates := make([]scored, 0, len(s.docs))
	for _, doc := range s.docs {
		if doc.Embedding == nil {
			continue
		}
		candidates = append(candidates, scored{doc, CosineDistance(vector, doc.Embedding)})
	}

	// Stable keeps insertion order for equal distances.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].distance < candidates[j].distance
	})

	if k < 0 {
		k = 0
	}
	if k > len(candidates) {
		k = len(candidates)
	}
	results := make([]*Document, 0, k)
	for _, c := range candidates[:k] {
		results = append(results, cloneDocument(c.doc))
	}
	return results, nil
}

func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs), nil
}

func (s *MemoryStore) Health(ctx context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }

func cloneDocument(doc *Document) *Document {
	out := *doc
	if doc.Embedding != nil {
		out.Embedding = append([]float32(nil), doc.Embedding...)
	}
	return &out
}
