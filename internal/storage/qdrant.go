package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

// CollectionName is the single Qdrant collection holding the corpus.
const CollectionName = "history_content"

// vectorName is the named vector slot for document embeddings. Using a named
// vector lets pending documents exist as points without a vector until the
// backfill worker fills it in.
const vectorName = "content"

// QdrantStore implements Store on top of a Qdrant collection.
type QdrantStore struct {
	client    *qdrant.Client
	host      string
	port      int
	dimension int
}

// NewQdrantStore creates a Qdrant-backed store with health validation.
// It performs a health check with retry on startup and fails fast if the
// server is unreachable. The dimension must match the embedder in use.
func NewQdrantStore(host string, port, dimension int) (*QdrantStore, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	store := &QdrantStore{
		client:    client,
		host:      host,
		port:      port,
		dimension: dimension,
	}

	ctx := context.Background()
	if err := store.healthCheckWithRetry(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: %v", ErrStoreUnreachable, err)
	}

	return store, nil
}

// healthCheckWithRetry performs a health check with exponential backoff.
// Initial interval 500ms, max interval 10s, max elapsed 30s.
func (s *QdrantStore) healthCheckWithRetry(ctx context.Context) error {
	exponentialBackoff := backoff.NewExponentialBackOff()
	exponentialBackoff.InitialInterval = 500 * time.Millisecond
	exponentialBackoff.MaxInterval = 10 * time.Second
	exponentialBackoff.MaxElapsedTime = 30 * time.Second

	return backoff.Retry(func() error {
		return s.Health(ctx)
	}, backoff.WithContext(exponentialBackoff, ctx))
}

// Health performs a single health check against Qdrant.
func (s *QdrantStore) Health(ctx context.Context) error {
	result, err := s.client.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	if result == nil || result.Title == "" {
		return fmt.Errorf("health check returned invalid response")
	}
	return nil
}

// EnsureCollection ensures the corpus collection exists with the configured
// vector dimension (cosine distance) and payload indexes.
// Idempotent - safe to call multiple times.
func (s *QdrantStore) EnsureCollection(ctx context.Context) error {
	collections, err := s.client.ListCollections(ctx)
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}

	for _, name := range collections {
		if name == CollectionName {
			return nil
		}
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: CollectionName,
		VectorsConfig: qdrant.NewVectorsConfigMap(map[string]*qdrant.VectorParams{
			vectorName: {
				Size:     uint64(s.dimension),
				Distance: qdrant.Distance_Cosine,
			},
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	return s.createPayloadIndexes(ctx)
}

// createPayloadIndexes creates indexes for the filterable payload fields:
// source (upsert lookup) and embedded (backfill scan).
func (s *QdrantStore) createPayloadIndexes(ctx context.Context) error {
	_, err := s.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
		CollectionName: CollectionName,
		FieldName:      "source",
		FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
	})
	if err != nil {
		return fmt.Errorf("failed to create index for field source: %w", err)
	}

	_, err = s.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
		CollectionName: CollectionName,
		FieldName:      "embedded",
		FieldType:      qdrant.FieldType_FieldTypeBool.Enum(),
	})
	if err != nil {
		return fmt.Errorf("failed to create index for field embedded: %w", err)
	}

	return nil
}

// upsertWithRetry performs an upsert with exponential backoff retry.
func (s *QdrantStore) upsertWithRetry(ctx context.Context, points []*qdrant.PointStruct) error {
	exponentialBackoff := backoff.NewExponentialBackOff()
	exponentialBackoff.InitialInterval = 500 * time.Millisecond
	exponentialBackoff.MaxInterval = 10 * time.Second
	exponentialBackoff.MaxElapsedTime = 30 * time.Second

	operation := func() error {
		_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: CollectionName,
			Points:         points,
		})
		return err
	}

	if err := backoff.Retry(operation, backoff.WithContext(exponentialBackoff, ctx)); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnreachable, err)
	}
	return nil
}

// pointFor builds the Qdrant point for a document. Documents without an
// embedding get an empty vector map and embedded=false in the payload.
func (s *QdrantStore) pointFor(doc *Document, id string) (*qdrant.PointStruct, error) {
	vectors := map[string]*qdrant.Vector{}
	if doc.Embedding != nil {
		if len(doc.Embedding) != s.dimension {
			return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(doc.Embedding), s.dimension)
		}
		vectors[vectorName] = qdrant.NewVector(doc.Embedding...)
	}

	payload := map[string]any{
		"title":       doc.Title,
		"content":     doc.Content,
		"source":      doc.Source,
		"language":    doc.Language,
		"embedded":    doc.Embedding != nil,
		"inserted_at": time.Now().UTC().Format(time.RFC3339),
	}

	return &qdrant.PointStruct{
		Id:      qdrant.NewIDUUID(id),
		Vectors: qdrant.NewVectorsMap(vectors),
		Payload: qdrant.NewValueMap(payload),
	}, nil
}

// Insert appends a new document and returns its assigned id.
func (s *QdrantStore) Insert(ctx context.Context, doc *Document) (string, error) {
	id := uuid.New().String()
	point, err := s.pointFor(doc, id)
	if err != nil {
		return "", err
	}
	if err := s.upsertWithRetry(ctx, []*qdrant.PointStruct{point}); err != nil {
		return "", err
	}
	return id, nil
}

// UpsertBySource inserts the document, reusing the id of an existing document
// with the same source so repeat ingestion updates rather than duplicates.
func (s *QdrantStore) UpsertBySource(ctx context.Context, doc *Document) (string, error) {
	id := uuid.New().String()

	existing, err := s.client.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: CollectionName,
		Filter: &qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch("source", doc.Source),
			},
		},
		Limit: qdrant.PtrOf(uint32(1)),
	})
	if err != nil {
		return "", fmt.Errorf("%w: lookup by source: %v", ErrStoreUnreachable, err)
	}
	if len(existing) > 0 {
		id = existing[0].Id.GetUuid()
	}

	point, err := s.pointFor(doc, id)
	if err != nil {
		return "", err
	}
	if err := s.upsertWithRetry(ctx, []*qdrant.PointStruct{point}); err != nil {
		return "", err
	}
	return id, nil
}

// ScanMissingEmbeddings returns all documents whose embedding is unset.
// Uses the Scroll API, paginating by last point id.
func (s *QdrantStore) ScanMissingEmbeddings(ctx context.Context) ([]*Document, error) {
	var pending []*Document
	var offset *qdrant.PointId

	batchSize := uint32(100)

	for {
		results, err := s.client.Scroll(ctx, &qdrant.ScrollPoints{
			CollectionName: CollectionName,
			Filter: &qdrant.Filter{
				Must: []*qdrant.Condition{
					qdrant.NewMatchBool("embedded", false),
				},
			},
			Limit:       qdrant.PtrOf(batchSize),
			Offset:      offset,
			WithPayload: qdrant.NewWithPayload(true),
		})
		if err != nil {
			return nil, fmt.Errorf("%w: scroll pending documents: %v", ErrStoreUnreachable, err)
		}

		for _, result := range results {
			pending = append(pending, documentFromPayload(result.Id.GetUuid(), result.Payload))
		}

		if uint32(len(results)) < batchSize {
			break
		}
		offset = results[len(results)-1].Id
	}

	return pending, nil
}

// SetEmbedding writes the embedding vector for the given document id and
// flips the embedded flag. Last write wins; concurrent backfill and ingestion
// compute the same vector from the same content.
func (s *QdrantStore) SetEmbedding(ctx context.Context, id string, vector []float32) error {
	if len(vector) != s.dimension {
		return fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(vector), s.dimension)
	}

	_, err := s.client.UpdateVectors(ctx, &qdrant.UpdatePointVectors{
		CollectionName: CollectionName,
		Points: []*qdrant.PointVectors{
			{
				Id: qdrant.NewIDUUID(id),
				Vectors: qdrant.NewVectorsMap(map[string]*qdrant.Vector{
					vectorName: qdrant.NewVector(vector...),
				}),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("%w: update vector: %v", ErrStoreUnreachable, err)
	}

	_, err = s.client.SetPayload(ctx, &qdrant.SetPayloadPoints{
		CollectionName: CollectionName,
		Payload:        qdrant.NewValueMap(map[string]any{"embedded": true}),
		PointsSelector: qdrant.NewPointsSelector(qdrant.NewIDUUID(id)),
	})
	if err != nil {
		return fmt.Errorf("%w: set embedded flag: %v", ErrStoreUnreachable, err)
	}

	return nil
}

// Nearest performs vector similarity search over embedded documents.
// Qdrant orders by descending cosine similarity, which is ascending cosine
// distance.
func (s *QdrantStore) Nearest(ctx context.Context, vector []float32, k int) ([]*Document, error) {
	if len(vector) != s.dimension {
		return nil, fmt.Errorf("%w: query has %d dimensions, want %d", ErrDimensionMismatch, len(vector), s.dimension)
	}
	if k <= 0 {
		return nil, nil
	}

	name := vectorName
	results, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: CollectionName,
		Query:          qdrant.NewQuery(vector...),
		Using:          &name,
		Filter: &qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatchBool("embedded", true),
			},
		},
		Limit:       qdrant.PtrOf(uint64(k)),
		WithPayload: qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: query: %v", ErrStoreUnreachable, err)
	}

	docs := make([]*Document, 0, len(results))
	for _, result := range results {
		docs = append(docs, documentFromPayload(result.Id.GetUuid(), result.Payload))
	}
	return docs, nil
}

// Count reports the number of stored documents.
func (s *QdrantStore) Count(ctx context.Context) (int, error) {
	count, err := s.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: CollectionName,
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return 0, fmt.Errorf("%w: count: %v", ErrStoreUnreachable, err)
	}
	return int(count), nil
}

// Close closes the Qdrant client connection.
func (s *QdrantStore) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

func documentFromPayload(id string, payload map[string]*qdrant.Value) *Document {
	return &Document{
		ID:       id,
		Title:    payload["title"].GetStringValue(),
		Content:  payload["content"].GetStringValue(),
		Source:   payload["source"].GetStringValue(),
		Language: payload["language"].GetStringValue(),
		// Embedding is not materialized on reads; callers re-derive it from
		// content when they need it.
	}
}
