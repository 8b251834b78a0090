package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/custodia-labs/supportbot-core/internal/core/domain"
	"github.com/custodia-labs/supportbot-core/internal/core/ports/driven"
	"github.com/custodia-labs/supportbot-core/internal/core/ports/driving"
)

// Worker processes ingestion tasks from the task queue and periodically
// flushes analytics snapshots to the metrics store.
type Worker struct {
	taskQueue driven.TaskQueue
	ingest    driving.IngestService
	analytics driving.AnalyticsService
	metrics   driven.MetricsStore // optional
	logger    *slog.Logger

	// Configuration
	concurrency    int
	dequeueTimeout time.Duration
	flushInterval  time.Duration

	// Internal state
	mu      sync.RWMutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// Config holds configuration for the worker.
type Config struct {
	TaskQueue driven.TaskQueue
	Ingest    driving.IngestService
	Analytics driving.AnalyticsService
	Metrics   driven.MetricsStore // nil disables the flush loop
	Logger    *slog.Logger

	Concurrency    int           // number of concurrent task processors
	DequeueTimeout time.Duration // how long to block waiting for a task
	FlushInterval  time.Duration // how often to persist the analytics snapshot
}

// New creates a new ingestion worker.
func New(cfg Config) *Worker {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	dequeueTimeout := cfg.DequeueTimeout
	if dequeueTimeout <= 0 {
		dequeueTimeout = 5 * time.Second
	}

	flushInterval := cfg.FlushInterval
	if flushInterval <= 0 {
		flushInterval = time.Minute
	}

	return &Worker{
		taskQueue:      cfg.TaskQueue,
		ingest:         cfg.Ingest,
		analytics:      cfg.Analytics,
		metrics:        cfg.Metrics,
		logger:         logger,
		concurrency:    concurrency,
		dequeueTimeout: dequeueTimeout,
		flushInterval:  flushInterval,
	}
}

// Start begins the worker loop.
// It runs until Stop is called or the context is cancelled.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.mu.Unlock()

	w.logger.Info("worker starting",
		"concurrency", w.concurrency,
		"dequeue_timeout", w.dequeueTimeout,
	)

	var wg sync.WaitGroup
	for i := 0; i < w.concurrency; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			w.processLoop(ctx, workerID)
		}(i)
	}

	if w.metrics != nil && w.analytics != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.flushLoop(ctx)
		}()
	}

	go func() {
		wg.Wait()
		close(w.doneCh)
	}()

	return nil
}

// Stop gracefully stops the worker.
func (w *Worker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	close(w.stopCh)
	w.mu.Unlock()

	<-w.doneCh

	w.mu.Lock()
	w.running = false
	w.mu.Unlock()

	w.logger.Info("worker stopped")
}

// Wait blocks until the worker stops.
func (w *Worker) Wait() {
	<-w.doneCh
}

// processLoop is the main processing loop for a worker goroutine.
func (w *Worker) processLoop(ctx context.Context, workerID int) {
	logger := w.logger.With("worker_id", workerID)
	logger.Info("worker goroutine started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("worker context cancelled")
			return
		case <-w.stopCh:
			logger.Info("worker stop signal received")
			return
		default:
		}

		task, err := w.taskQueue.Dequeue(ctx, w.dequeueTimeout)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			logger.Error("failed to dequeue task", "error", err)
			time.Sleep(time.Second) // back off on error
			continue
		}

		if task == nil {
			continue
		}

		w.processTask(ctx, task, logger)
	}
}

// processTask processes a single task.
func (w *Worker) processTask(ctx context.Context, task *domain.Task, logger *slog.Logger) {
	logger = logger.With("task_id", task.ID, "task_type", task.Type, "collection", task.Collection)
	logger.Info("processing task")

	startTime := time.Now()
	var err error

	switch task.Type {
	case domain.TaskTypeIngestDocument:
		err = w.handleIngestDocument(ctx, task)
	case domain.TaskTypeIngestDirectory:
		err = w.handleIngestDirectory(ctx, task)
	case domain.TaskTypeReindex:
		err = w.handleReindex(ctx, task)
	default:
		err = fmt.Errorf("unknown task type: %s", task.Type)
	}

	duration := time.Since(startTime)

	if err != nil {
		logger.Error("task failed",
			"duration", duration,
			"error", err,
		)

		if failErr := w.taskQueue.Fail(ctx, task, err.Error()); failErr != nil {
			logger.Error("failed to record task failure", "fail_error", failErr)
		}
		return
	}

	logger.Info("task completed", "duration", duration)

	if ackErr := w.taskQueue.Ack(ctx, task); ackErr != nil {
		logger.Error("failed to ack task", "ack_error", ackErr)
	}
}

// handleIngestDocument ingests the inline document carried in the payload.
func (w *Worker) handleIngestDocument(ctx context.Context, task *domain.Task) error {
	docID := task.Payload["document_id"]
	if docID == "" {
		return fmt.Errorf("document_id not found in task payload")
	}

	doc := &domain.Document{
		ID:      docID,
		Path:    task.Payload["path"],
		Content: task.Payload["content"],
	}

	_, err := w.ingest.IngestDocument(ctx, task.Collection, doc)
	return err
}

// handleIngestDirectory ingests every supported file under the payload directory.
func (w *Worker) handleIngestDirectory(ctx context.Context, task *domain.Task) error {
	dir := task.Directory()
	if dir == "" {
		return fmt.Errorf("directory not found in task payload")
	}

	_, err := w.ingest.IngestDirectory(ctx, task.Collection, dir)
	return err
}

// handleReindex resets the collection, then re-ingests the directory.
func (w *Worker) handleReindex(ctx context.Context, task *domain.Task) error {
	dir := task.Directory()
	if dir == "" {
		return fmt.Errorf("directory not found in task payload")
	}

	if err := w.ingest.ResetCollection(ctx, task.Collection); err != nil {
		return fmt.Errorf("failed to reset collection: %w", err)
	}

	_, err := w.ingest.IngestDirectory(ctx, task.Collection, dir)
	return err
}

// flushLoop periodically persists the analytics snapshot.
// A final flush runs on shutdown so counters survive restarts.
func (w *Worker) flushLoop(ctx context.Context) {
	ticker := time.NewTicker(w.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.flushSnapshot(context.Background())
			return
		case <-w.stopCh:
			w.flushSnapshot(context.Background())
			return
		case <-ticker.C:
			w.flushSnapshot(ctx)
		}
	}
}

func (w *Worker) flushSnapshot(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	snapshot := w.analytics.Snapshot()
	if err := w.metrics.SaveSnapshot(ctx, snapshot); err != nil {
		w.logger.Error("failed to persist analytics snapshot", "error", err)
		return
	}

	w.logger.Debug("analytics snapshot persisted",
		"total_queries", snapshot.TotalQueries,
		"fallback_count", snapshot.FallbackCount,
	)
}
