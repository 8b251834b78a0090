package driven

import (
	"context"

	"github.com/custodia-labs/supportbot-core/internal/core/domain"
)

// VectorIndex stores and queries embedded chunks per named collection.
// Collections are namespaced strictly by tenant; the core never queries a
// collection not assigned to the resolved tenant.
//
// Scores are normalized cosine similarity in [0,1] (1 = identical
// direction). Adapters over distance-native providers must convert with
// similarity = 1 - distance so min_score filtering is consistent.
type VectorIndex interface {
	// Upsert writes chunks and their embeddings into a collection.
	// chunks and embeddings are parallel slices.
	Upsert(ctx context.Context, collection string, chunks []domain.Chunk, embeddings [][]float32) error

	// Query returns up to topK matches sorted by descending similarity.
	Query(ctx context.Context, collection string, embedding []float32, topK int) ([]domain.IndexMatch, error)

	// Count returns the number of stored chunks in a collection.
	Count(ctx context.Context, collection string) (int, error)

	// Reset deletes and recreates a collection.
	Reset(ctx context.Context, collection string) error

	// HealthCheck verifies the index is reachable.
	HealthCheck(ctx context.Context) error
}
