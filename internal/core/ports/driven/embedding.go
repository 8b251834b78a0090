package driven

import (
	"context"
)

// EmbeddingService turns text into vectors. The core treats embedding
// computation as opaque; it only relies on query and chunk vectors living
// in the same space.
type EmbeddingService interface {
	// Embed generates embeddings for a batch of chunk texts
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedQuery generates an embedding for a single user question
	EmbedQuery(ctx context.Context, query string) ([]float32, error)

	// Dimensions returns the embedding dimension size
	Dimensions() int

	// Model returns the model name being used
	Model() string

	// HealthCheck verifies the embedding service is available
	HealthCheck(ctx context.Context) error

	// Close releases resources held by the embedding service
	Close() error
}
