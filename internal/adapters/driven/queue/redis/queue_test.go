package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/supportbot-core/internal/core/domain"
)

// setupTestQueue creates a miniredis-backed queue
func setupTestQueue(t *testing.T) (*Queue, *miniredis.Miniredis, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	queue, err := NewQueue(client, "test-worker")
	if err != nil {
		t.Fatalf("NewQueue() error = %v", err)
	}

	return queue, mr, func() {
		client.Close()
		mr.Close()
	}
}

func TestQueue_EnqueueDequeue(t *testing.T) {
	queue, _, cleanup := setupTestQueue(t)
	defer cleanup()

	ctx := context.Background()
	task := domain.NewIngestDirectoryTask("faq", "/data/docs")

	if err := queue.Enqueue(ctx, task); err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}

	n, err := queue.Len(ctx)
	if err != nil {
		t.Fatalf("Len() error = %v", err)
	}
	if n != 1 {
		t.Errorf("Len() = %d, want 1", n)
	}

	got, err := queue.Dequeue(ctx, time.Millisecond)
	if err != nil {
		t.Fatalf("Dequeue() error = %v", err)
	}
	if got == nil {
		t.Fatal("Dequeue() returned nil task")
	}
	if got.ID != task.ID {
		t.Errorf("task ID = %q, want %q", got.ID, task.ID)
	}
	if got.Type != domain.TaskTypeIngestDirectory {
		t.Errorf("task Type = %q", got.Type)
	}
	if got.Collection != "faq" {
		t.Errorf("task Collection = %q", got.Collection)
	}
	if got.Status != domain.TaskStatusProcessing {
		t.Errorf("task Status = %q, want processing", got.Status)
	}
	if got.Attempts != 1 {
		t.Errorf("task Attempts = %d, want 1", got.Attempts)
	}
}

func TestQueue_DequeueEmpty(t *testing.T) {
	queue, _, cleanup := setupTestQueue(t)
	defer cleanup()

	got, err := queue.Dequeue(context.Background(), 10*time.Millisecond)
	if err != nil {
		t.Fatalf("Dequeue() error = %v", err)
	}
	if got != nil {
		t.Errorf("Dequeue() = %+v, want nil for empty queue", got)
	}
}

func TestQueue_Ack(t *testing.T) {
	queue, _, cleanup := setupTestQueue(t)
	defer cleanup()

	ctx := context.Background()
	task := domain.NewIngestDirectoryTask("faq", "/data/docs")
	if err := queue.Enqueue(ctx, task); err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}

	got, err := queue.Dequeue(ctx, time.Millisecond)
	if err != nil || got == nil {
		t.Fatalf("Dequeue() = (%v, %v)", got, err)
	}

	if err := queue.Ack(ctx, got); err != nil {
		t.Fatalf("Ack() error = %v", err)
	}
	if got.Status != domain.TaskStatusCompleted {
		t.Errorf("task Status = %q, want completed", got.Status)
	}

	n, err := queue.Len(ctx)
	if err != nil {
		t.Fatalf("Len() error = %v", err)
	}
	if n != 0 {
		t.Errorf("Len() = %d after ack, want 0", n)
	}
}

func TestQueue_FailRequeuesWithBackoff(t *testing.T) {
	queue, mr, cleanup := setupTestQueue(t)
	defer cleanup()

	ctx := context.Background()
	task := domain.NewIngestDirectoryTask("faq", "/data/docs")
	if err := queue.Enqueue(ctx, task); err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}

	got, err := queue.Dequeue(ctx, time.Millisecond)
	if err != nil || got == nil {
		t.Fatalf("Dequeue() = (%v, %v)", got, err)
	}

	if err := queue.Fail(ctx, got, "embedding service down"); err != nil {
		t.Fatalf("Fail() error = %v", err)
	}
	if got.Status != domain.TaskStatusPending {
		t.Errorf("task Status = %q, want pending for retry", got.Status)
	}

	// Still counted as pending while waiting out the backoff.
	n, err := queue.Len(ctx)
	if err != nil {
		t.Fatalf("Len() error = %v", err)
	}
	if n != 1 {
		t.Errorf("Len() = %d, want 1", n)
	}

	// Not deliverable before the backoff elapses.
	early, err := queue.Dequeue(ctx, time.Millisecond)
	if err != nil {
		t.Fatalf("Dequeue() error = %v", err)
	}
	if early != nil {
		t.Fatalf("Dequeue() delivered task during backoff: %+v", early)
	}

	// Make the retry due now instead of waiting out the real backoff.
	if _, err := mr.ZAdd(scheduledTasks, 0, task.ID); err != nil {
		t.Fatalf("ZAdd() error = %v", err)
	}
	retried, err := queue.Dequeue(ctx, time.Millisecond)
	if err != nil {
		t.Fatalf("Dequeue() error = %v", err)
	}
	if retried == nil {
		t.Fatal("Dequeue() = nil after backoff, want retried task")
	}
	if retried.ID != task.ID {
		t.Errorf("retried task ID = %q, want %q", retried.ID, task.ID)
	}
	if retried.Attempts != 2 {
		t.Errorf("retried Attempts = %d, want 2", retried.Attempts)
	}
}

func TestQueue_FailExhaustedGoesToDeadLetter(t *testing.T) {
	queue, mr, cleanup := setupTestQueue(t)
	defer cleanup()

	ctx := context.Background()
	task := domain.NewIngestDirectoryTask("faq", "/data/docs")
	task.Attempts = task.MaxAttempts

	if err := queue.Enqueue(ctx, task); err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}
	got, err := queue.Dequeue(ctx, time.Millisecond)
	if err != nil || got == nil {
		t.Fatalf("Dequeue() = (%v, %v)", got, err)
	}

	if err := queue.Fail(ctx, got, "still broken"); err != nil {
		t.Fatalf("Fail() error = %v", err)
	}
	if got.Status != domain.TaskStatusFailed {
		t.Errorf("task Status = %q, want failed", got.Status)
	}
	member, err := mr.SIsMember(deadLetterSet, task.ID)
	if err != nil {
		t.Fatalf("SIsMember() error = %v", err)
	}
	if !member {
		t.Error("exhausted task missing from dead letter set")
	}

	n, err := queue.Len(ctx)
	if err != nil {
		t.Fatalf("Len() error = %v", err)
	}
	if n != 0 {
		t.Errorf("Len() = %d, want 0 after dead lettering", n)
	}
}
