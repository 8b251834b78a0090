package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/supportbot-core/internal/core/domain"
)

// MockDocumentStore is an in-memory DocumentStore keyed by document ID.
type MockDocumentStore struct {
	mu      sync.RWMutex
	docs    map[string]domain.Document
	saveErr error
}

// NewMockDocumentStore creates a new MockDocumentStore
func NewMockDocumentStore() *MockDocumentStore {
	return &MockDocumentStore{docs: make(map[string]domain.Document)}
}

// FailSaves makes Save and SaveBatch return err
func (m *MockDocumentStore) FailSaves(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveErr = err
}

func (m *MockDocumentStore) Save(_ context.Context, doc *domain.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.docs[doc.ID] = *doc
	return nil
}

func (m *MockDocumentStore) SaveBatch(ctx context.Context, docs []*domain.Document) error {
	for _, doc := range docs {
		if err := m.Save(ctx, doc); err != nil {
			return err
		}
	}
	return nil
}

func (m *MockDocumentStore) Get(_ context.Context, id string) (*domain.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.docs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

func (m *MockDocumentStore) List(_ context.Context, limit, offset int) ([]*domain.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	all := make([]*domain.Document, 0, len(m.docs))
	for id := range m.docs {
		doc := m.docs[id]
		all = append(all, &doc)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].IngestedAt.After(all[j].IngestedAt) })

	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (m *MockDocumentStore) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs), nil
}

func (m *MockDocumentStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.docs, id)
	return nil
}
