package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/supportbot-core/internal/core/domain"
	"github.com/custodia-labs/supportbot-core/internal/core/ports/driven"
)

const snapshotKey = "supportbot:metrics:snapshot"

// Verify interface compliance
var _ driven.MetricsStore = (*MetricsStore)(nil)

// MetricsStore persists analytics snapshots in Redis as JSON. Only the
// latest snapshot is kept; the worker overwrites it on every flush.
type MetricsStore struct {
	client *redis.Client
}

// NewMetricsStore creates a new Redis-backed MetricsStore
func NewMetricsStore(client *redis.Client) *MetricsStore {
	return &MetricsStore{client: client}
}

// SaveSnapshot persists a point-in-time snapshot.
func (s *MetricsStore) SaveSnapshot(ctx context.Context, snapshot domain.Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if err := s.client.Set(ctx, snapshotKey, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot returns the most recently persisted snapshot.
func (s *MetricsStore) LoadSnapshot(ctx context.Context) (*domain.Snapshot, error) {
	data, err := s.client.Get(ctx, snapshotKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	var snapshot domain.Snapshot
	if err := json.Unmarshal([]byte(data), &snapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &snapshot, nil
}
