package mocks

import (
	"context"
	"sync"

	"github.com/custodia-labs/supportbot-core/internal/core/domain"
)

// MockMetricsStore holds the last saved snapshot in memory.
type MockMetricsStore struct {
	mu       sync.RWMutex
	snapshot *domain.Snapshot
	Saves    int
}

// NewMockMetricsStore creates a new MockMetricsStore
func NewMockMetricsStore() *MockMetricsStore {
	return &MockMetricsStore{}
}

func (m *MockMetricsStore) SaveSnapshot(_ context.Context, snapshot domain.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshot = &snapshot
	m.Saves++
	return nil
}

func (m *MockMetricsStore) LoadSnapshot(_ context.Context) (*domain.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.snapshot == nil {
		return nil, domain.ErrNotFound
	}
	copied := *m.snapshot
	return &copied, nil
}
