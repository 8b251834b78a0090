package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/supportbot-core/internal/core/domain"
)

// TaskQueue distributes ingestion tasks to workers.
type TaskQueue interface {
	// Enqueue adds a task for processing
	Enqueue(ctx context.Context, task *domain.Task) error

	// Dequeue blocks up to timeout for the next ready task.
	// Returns (nil, nil) when the queue is empty at timeout.
	Dequeue(ctx context.Context, timeout time.Duration) (*domain.Task, error)

	// Ack marks a dequeued task as successfully processed
	Ack(ctx context.Context, task *domain.Task) error

	// Fail records a processing failure. The task is requeued with its
	// backoff while CanRetry holds, otherwise moved to the dead letter set.
	Fail(ctx context.Context, task *domain.Task, reason string) error

	// Len returns the number of pending tasks
	Len(ctx context.Context) (int, error)
}
