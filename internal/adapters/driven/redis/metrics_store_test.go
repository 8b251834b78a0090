package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/supportbot-core/internal/core/domain"
)

// setupTestRedis creates a miniredis-backed client
func setupTestRedis(t *testing.T) (*redis.Client, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	return client, func() {
		client.Close()
		mr.Close()
	}
}

func TestMetricsStore_SaveAndLoad(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	store := NewMetricsStore(client)
	ctx := context.Background()

	snapshot := domain.Snapshot{
		TotalQueries:   10,
		FallbackCount:  3,
		TotalLatencyMS: 125.5,
		IntentCounts:   map[string]uint64{"billing": 6, "other": 4},
		TenantBreakdown: map[string]domain.TenantStats{
			"acme": {Queries: 10, Fallbacks: 3, TotalLatencyMS: 125.5},
		},
		CapturedAt: time.Now().UTC().Truncate(time.Second),
	}

	if err := store.SaveSnapshot(ctx, snapshot); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}

	loaded, err := store.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("LoadSnapshot() error = %v", err)
	}

	if loaded.TotalQueries != 10 || loaded.FallbackCount != 3 {
		t.Errorf("loaded counters = %d/%d, want 10/3", loaded.TotalQueries, loaded.FallbackCount)
	}
	if loaded.IntentCounts["billing"] != 6 {
		t.Errorf("IntentCounts = %v", loaded.IntentCounts)
	}
	if loaded.TenantBreakdown["acme"].Queries != 10 {
		t.Errorf("TenantBreakdown = %v", loaded.TenantBreakdown)
	}
	if !loaded.CapturedAt.Equal(snapshot.CapturedAt) {
		t.Errorf("CapturedAt = %v, want %v", loaded.CapturedAt, snapshot.CapturedAt)
	}
}

func TestMetricsStore_LoadMissing(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	store := NewMetricsStore(client)

	if _, err := store.LoadSnapshot(context.Background()); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("LoadSnapshot() error = %v, want ErrNotFound", err)
	}
}

func TestMetricsStore_Overwrite(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	store := NewMetricsStore(client)
	ctx := context.Background()

	if err := store.SaveSnapshot(ctx, domain.Snapshot{TotalQueries: 1}); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}
	if err := store.SaveSnapshot(ctx, domain.Snapshot{TotalQueries: 2}); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}

	loaded, err := store.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("LoadSnapshot() error = %v", err)
	}
	if loaded.TotalQueries != 2 {
		t.Errorf("TotalQueries = %d, want latest snapshot", loaded.TotalQueries)
	}
}
