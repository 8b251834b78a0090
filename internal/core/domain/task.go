package domain

import (
	"crypto/rand"
	"encoding/base64"
	"time"
)

// GenerateID creates a unique random ID.
func GenerateID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

// TaskType identifies the type of background ingestion task
type TaskType string

const (
	// TaskTypeIngestDocument ingests a single document already loaded into the payload
	TaskTypeIngestDocument TaskType = "ingest_document"
	// TaskTypeIngestDirectory scans a directory and ingests every supported file
	TaskTypeIngestDirectory TaskType = "ingest_directory"
	// TaskTypeReindex resets a collection before re-ingesting a directory
	TaskTypeReindex TaskType = "reindex"
)

// TaskStatus represents the current state of a task
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// Task represents a background ingestion job processed by workers.
type Task struct {
	ID string `json:"id"`

	Type TaskType `json:"type"`

	// Collection is the vector index collection the task targets
	Collection string `json:"collection"`

	// Payload contains task-specific data
	// For ingest_document: {"document_id": ..., "path": ..., "content": ...}
	// For ingest_directory / reindex: {"directory": ...}
	Payload map[string]string `json:"payload"`

	Status TaskStatus `json:"status"`

	// Attempts is how many times this task has been attempted
	Attempts int `json:"attempts"`

	// MaxAttempts is the maximum retry count before giving up
	MaxAttempts int `json:"max_attempts"`

	// Error contains the last error message if failed
	Error string `json:"error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// ScheduledFor is when the task should be processed (for retry backoff)
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewTask creates a new task with default values
func NewTask(taskType TaskType, collection string, payload map[string]string) *Task {
	now := time.Now()
	return &Task{
		ID:           GenerateID(),
		Type:         taskType,
		Collection:   collection,
		Payload:      payload,
		Status:       TaskStatusPending,
		Attempts:     0,
		MaxAttempts:  3,
		CreatedAt:    now,
		UpdatedAt:    now,
		ScheduledFor: now,
	}
}

// NewIngestDirectoryTask creates a task to ingest every supported file under dir
func NewIngestDirectoryTask(collection, dir string) *Task {
	return NewTask(TaskTypeIngestDirectory, collection, map[string]string{
		"directory": dir,
	})
}

// NewIngestDocumentTask creates a task carrying an inline document
func NewIngestDocumentTask(collection, docID, path, content string) *Task {
	return NewTask(TaskTypeIngestDocument, collection, map[string]string{
		"document_id": docID,
		"path":        path,
		"content":     content,
	})
}

// NewReindexTask creates a task that resets the collection and re-ingests dir
func NewReindexTask(collection, dir string) *Task {
	return NewTask(TaskTypeReindex, collection, map[string]string{
		"directory": dir,
	})
}

// Directory extracts the directory from the payload
func (t *Task) Directory() string {
	if t.Payload == nil {
		return ""
	}
	return t.Payload["directory"]
}

// CanRetry returns true if the task can be retried
func (t *Task) CanRetry() bool {
	return t.Attempts < t.MaxAttempts
}

// IsReady returns true if the task is ready to be processed
func (t *Task) IsReady() bool {
	return t.Status == TaskStatusPending && time.Now().After(t.ScheduledFor)
}

// MarkProcessing updates the task to processing state
func (t *Task) MarkProcessing() {
	now := time.Now()
	t.Status = TaskStatusProcessing
	t.StartedAt = &now
	t.UpdatedAt = now
	t.Attempts++
}

// MarkCompleted updates the task to completed state
func (t *Task) MarkCompleted() {
	now := time.Now()
	t.Status = TaskStatusCompleted
	t.CompletedAt = &now
	t.UpdatedAt = now
	t.Error = ""
}

// MarkFailed updates the task to failed state
func (t *Task) MarkFailed(err string) {
	now := time.Now()
	t.Status = TaskStatusFailed
	t.UpdatedAt = now
	t.Error = err
}

// Retry resets the task for retry with exponential backoff
func (t *Task) Retry(err string) {
	now := time.Now()
	t.Status = TaskStatusPending
	t.UpdatedAt = now
	t.Error = err

	// Exponential backoff: 1s, 2s, 4s, 8s, etc.
	backoff := time.Duration(1<<t.Attempts) * time.Second
	if backoff > 5*time.Minute {
		backoff = 5 * time.Minute
	}
	t.ScheduledFor = now.Add(backoff)
}
