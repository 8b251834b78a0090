package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/supportbot-core/internal/core/domain"
	"github.com/custodia-labs/supportbot-core/internal/core/ports/driven"
)

const (
	// Stream names
	taskStream     = "supportbot:ingest"
	taskGroup      = "supportbot:workers"
	scheduledTasks = "supportbot:scheduled"
	deadLetterSet  = "supportbot:deadletter"

	// Key prefixes
	taskKeyPrefix = "supportbot:task:"

	// Default consumer name prefix
	consumerPrefix = "worker-"

	// TTL for task bookkeeping keys
	taskTTL = 24 * time.Hour
)

// Verify interface compliance
var _ driven.TaskQueue = (*Queue)(nil)

// Queue implements TaskQueue using Redis Streams. A consumer group tracks
// delivery, a sorted set holds tasks waiting out their retry backoff, and
// exhausted tasks land in a dead letter set for inspection.
type Queue struct {
	client       *redis.Client
	consumerName string
}

// NewQueue creates a new Redis-backed task queue.
// The consumerName should be unique per worker instance (e.g., hostname + PID).
func NewQueue(client *redis.Client, consumerName string) (*Queue, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	if consumerName == "" {
		consumerName = fmt.Sprintf("%s%d", consumerPrefix, time.Now().UnixNano())
	}

	q := &Queue{
		client:       client,
		consumerName: consumerName,
	}

	// Create consumer group if it doesn't exist
	ctx := context.Background()
	err := q.client.XGroupCreateMkStream(ctx, taskStream, taskGroup, "0").Err()
	if err != nil && !isGroupExistsError(err) {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	return q, nil
}

// Enqueue adds a task for processing. Tasks scheduled for the future go to
// the backoff set and reach the stream once due.
func (q *Queue) Enqueue(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return errors.New("task is required")
	}

	taskData, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}

	pipe := q.client.Pipeline()
	pipe.Set(ctx, taskKeyPrefix+task.ID, taskData, taskTTL)

	if task.ScheduledFor.After(time.Now()) {
		pipe.ZAdd(ctx, scheduledTasks, redis.Z{
			Score:  float64(task.ScheduledFor.Unix()),
			Member: task.ID,
		})
	} else {
		pipe.XAdd(ctx, &redis.XAddArgs{
			Stream: taskStream,
			Values: map[string]interface{}{
				"task_id":    task.ID,
				"type":       string(task.Type),
				"collection": task.Collection,
			},
		})
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to enqueue task: %w", err)
	}
	return nil
}

// Dequeue blocks up to timeout for the next ready task. It returns
// (nil, nil) when nothing is ready at timeout.
func (q *Queue) Dequeue(ctx context.Context, timeout time.Duration) (*domain.Task, error) {
	// Promote due retries first; best effort.
	if err := q.promoteScheduledTasks(ctx); err != nil && ctx.Err() != nil {
		return nil, ctx.Err()
	}

	streams, err := q.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    taskGroup,
		Consumer: q.consumerName,
		Streams:  []string{taskStream, ">"},
		Count:    1,
		Block:    timeout,
	}).Result()

	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // No tasks available
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read from stream: %w", err)
	}

	if len(streams) == 0 || len(streams[0].Messages) == 0 {
		return nil, nil
	}

	msg := streams[0].Messages[0]
	taskID, ok := msg.Values["task_id"].(string)
	if !ok {
		// Invalid message, acknowledge and skip
		q.client.XAck(ctx, taskStream, taskGroup, msg.ID)
		return nil, nil
	}

	task, err := q.getTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to get task data: %w", err)
	}
	if task == nil {
		// Task data expired, acknowledge and skip
		q.client.XAck(ctx, taskStream, taskGroup, msg.ID)
		return nil, nil
	}

	task.MarkProcessing()

	// Store updated task and message ID for ack/fail
	taskData, _ := json.Marshal(task)
	q.client.Set(ctx, taskKeyPrefix+task.ID, taskData, taskTTL)
	q.client.Set(ctx, taskKeyPrefix+task.ID+":msg", msg.ID, taskTTL)

	return task, nil
}

// Ack acknowledges successful completion of a task.
func (q *Queue) Ack(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return errors.New("task is required")
	}

	msgID, err := q.client.Get(ctx, taskKeyPrefix+task.ID+":msg").Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to get message ID: %w", err)
	}

	task.MarkCompleted()
	taskData, _ := json.Marshal(task)

	pipe := q.client.Pipeline()
	if msgID != "" {
		pipe.XAck(ctx, taskStream, taskGroup, msgID)
		pipe.XDel(ctx, taskStream, msgID)
	}
	pipe.Set(ctx, taskKeyPrefix+task.ID, taskData, taskTTL)
	pipe.Del(ctx, taskKeyPrefix+task.ID+":msg")

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to ack task: %w", err)
	}
	return nil
}

// Fail records a processing failure. The task goes back to the backoff set
// while CanRetry holds, otherwise to the dead letter set.
func (q *Queue) Fail(ctx context.Context, task *domain.Task, reason string) error {
	if task == nil {
		return errors.New("task is required")
	}

	msgID, _ := q.client.Get(ctx, taskKeyPrefix+task.ID+":msg").Result()

	pipe := q.client.Pipeline()
	if msgID != "" {
		pipe.XAck(ctx, taskStream, taskGroup, msgID)
		pipe.XDel(ctx, taskStream, msgID)
	}

	if task.CanRetry() {
		task.Retry(reason)
		taskData, _ := json.Marshal(task)
		pipe.Set(ctx, taskKeyPrefix+task.ID, taskData, taskTTL)
		pipe.ZAdd(ctx, scheduledTasks, redis.Z{
			Score:  float64(task.ScheduledFor.Unix()),
			Member: task.ID,
		})
	} else {
		task.MarkFailed(reason)
		taskData, _ := json.Marshal(task)
		pipe.Set(ctx, taskKeyPrefix+task.ID, taskData, taskTTL)
		pipe.SAdd(ctx, deadLetterSet, task.ID)
	}

	pipe.Del(ctx, taskKeyPrefix+task.ID+":msg")

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record task failure: %w", err)
	}
	return nil
}

// Len returns the number of pending tasks, including those waiting out a
// retry backoff.
func (q *Queue) Len(ctx context.Context) (int, error) {
	pipe := q.client.Pipeline()
	streamLen := pipe.XLen(ctx, taskStream)
	scheduledLen := pipe.ZCard(ctx, scheduledTasks)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to measure queue: %w", err)
	}
	return int(streamLen.Val() + scheduledLen.Val()), nil
}

// promoteScheduledTasks moves due retries from the backoff set onto the
// stream.
func (q *Queue) promoteScheduledTasks(ctx context.Context) error {
	now := fmt.Sprintf("%d", time.Now().Unix())
	ids, err := q.client.ZRangeByScore(ctx, scheduledTasks, &redis.ZRangeBy{
		Min: "-inf",
		Max: now,
	}).Result()
	if err != nil || len(ids) == 0 {
		return err
	}

	for _, id := range ids {
		task, err := q.getTask(ctx, id)
		if err != nil {
			return err
		}

		pipe := q.client.Pipeline()
		pipe.ZRem(ctx, scheduledTasks, id)
		if task != nil {
			pipe.XAdd(ctx, &redis.XAddArgs{
				Stream: taskStream,
				Values: map[string]interface{}{
					"task_id":    task.ID,
					"type":       string(task.Type),
					"collection": task.Collection,
				},
			})
		}
		if _, err := pipe.Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (q *Queue) getTask(ctx context.Context, taskID string) (*domain.Task, error) {
	data, err := q.client.Get(ctx, taskKeyPrefix+taskID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	var task domain.Task
	if err := json.Unmarshal([]byte(data), &task); err != nil {
		return nil, fmt.Errorf("failed to unmarshal task: %w", err)
	}
	return &task, nil
}

func isGroupExistsError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "BUSYGROUP")
}
