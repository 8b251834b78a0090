package mocks

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/custodia-labs/supportbot-core/internal/core/domain"
)

// indexedChunk pairs a stored chunk with its embedding.
type indexedChunk struct {
	chunk     domain.Chunk
	embedding []float32
}

// MockVectorIndex is an in-memory VectorIndex using brute-force cosine
// similarity, normalized to [0,1]. Collections are fully isolated.
type MockVectorIndex struct {
	mu          sync.RWMutex
	collections map[string]map[string]indexedChunk // collection -> chunk id -> entry
	queryErr    error
	upsertErr   error
}

// NewMockVectorIndex creates a new MockVectorIndex
func NewMockVectorIndex() *MockVectorIndex {
	return &MockVectorIndex{
		collections: make(map[string]map[string]indexedChunk),
	}
}

// FailQueries makes every Query return err (nil restores normal behavior)
func (m *MockVectorIndex) FailQueries(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queryErr = err
}

// FailUpserts makes every Upsert return err
func (m *MockVectorIndex) FailUpserts(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upsertErr = err
}

func (m *MockVectorIndex) Upsert(_ context.Context, collection string, chunks []domain.Chunk, embeddings [][]float32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertErr != nil {
		return m.upsertErr
	}

	coll, ok := m.collections[collection]
	if !ok {
		coll = make(map[string]indexedChunk)
		m.collections[collection] = coll
	}
	for i, chunk := range chunks {
		var embedding []float32
		if i < len(embeddings) {
			embedding = embeddings[i]
		}
		coll[chunk.ID] = indexedChunk{chunk: chunk, embedding: embedding}
	}
	return nil
}

func (m *MockVectorIndex) Query(_ context.Context, collection string, embedding []float32, topK int) ([]domain.IndexMatch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.queryErr != nil {
		return nil, m.queryErr
	}

	var matches []domain.IndexMatch
	for _, entry := range m.collections[collection] {
		matches = append(matches, domain.IndexMatch{
			Content:  entry.chunk.Content,
			Metadata: entry.chunk.Metadata,
			Score:    cosineSimilarity01(embedding, entry.embedding),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if topK > 0 && len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

func (m *MockVectorIndex) Count(_ context.Context, collection string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.collections[collection]), nil
}

func (m *MockVectorIndex) Reset(_ context.Context, collection string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.collections[collection] = make(map[string]indexedChunk)
	return nil
}

func (m *MockVectorIndex) HealthCheck(_ context.Context) error {
	return nil
}

// cosineSimilarity01 maps cosine similarity from [-1,1] into [0,1].
func cosineSimilarity01(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	cos := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	return (cos + 1) / 2
}
