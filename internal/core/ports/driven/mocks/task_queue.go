package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/supportbot-core/internal/core/domain"
)

// MockTaskQueue is an in-memory FIFO TaskQueue.
type MockTaskQueue struct {
	mu     sync.Mutex
	tasks  []*domain.Task
	Acked  []string
	Failed []string
}

// NewMockTaskQueue creates a new MockTaskQueue
func NewMockTaskQueue() *MockTaskQueue {
	return &MockTaskQueue{}
}

func (m *MockTaskQueue) Enqueue(_ context.Context, task *domain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = append(m.tasks, task)
	return nil
}

func (m *MockTaskQueue) Dequeue(ctx context.Context, _ time.Duration) (*domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.tasks) == 0 {
		return nil, nil
	}
	task := m.tasks[0]
	m.tasks = m.tasks[1:]
	return task, nil
}

func (m *MockTaskQueue) Ack(_ context.Context, task *domain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Acked = append(m.Acked, task.ID)
	return nil
}

func (m *MockTaskQueue) Fail(_ context.Context, task *domain.Task, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Failed = append(m.Failed, task.ID)
	if task.CanRetry() {
		task.Retry(reason)
		m.tasks = append(m.tasks, task)
	} else {
		task.MarkFailed(reason)
	}
	return nil
}

func (m *MockTaskQueue) Len(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks), nil
}
