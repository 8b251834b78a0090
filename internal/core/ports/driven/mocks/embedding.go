package mocks

import (
	"context"
	"hash/fnv"
	"strings"
)

const mockDimensions = 32

// MockEmbeddingService produces deterministic bag-of-words embeddings.
// Texts that share tokens get closer vectors, so similarity ordering in
// tests is predictable without a real model.
type MockEmbeddingService struct {
	embedErr error
	Calls    int
	Closed   bool
}

// NewMockEmbeddingService creates a new MockEmbeddingService
func NewMockEmbeddingService() *MockEmbeddingService {
	return &MockEmbeddingService{}
}

// FailEmbeds makes Embed and EmbedQuery return err
func (m *MockEmbeddingService) FailEmbeds(err error) {
	m.embedErr = err
}

func (m *MockEmbeddingService) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	m.Calls++
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		embeddings[i] = tokenEmbedding(text)
	}
	return embeddings, nil
}

func (m *MockEmbeddingService) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	m.Calls++
	return tokenEmbedding(text), nil
}

func (m *MockEmbeddingService) Dimensions() int {
	return mockDimensions
}

func (m *MockEmbeddingService) Model() string {
	return "mock-embedding"
}

func (m *MockEmbeddingService) HealthCheck(_ context.Context) error {
	return nil
}

func (m *MockEmbeddingService) Close() error {
	m.Closed = true
	return nil
}

func tokenEmbedding(text string) []float32 {
	vec := make([]float32, mockDimensions)
	for _, token := range strings.Fields(strings.ToLower(text)) {
		token = strings.Trim(token, ".,!?:;\"'")
		if token == "" {
			continue
		}
		h := fnv.New32a()
		h.Write([]byte(token))
		vec[h.Sum32()%mockDimensions]++
	}
	return vec
}
