package driven

import (
	"context"

	"github.com/custodia-labs/supportbot-core/internal/core/domain"
)

// MetricsStore persists analytics snapshots. The core only exposes the
// snapshot; persistence format belongs to the adapter. Writes are
// best-effort: a store failure must never reach the request path.
type MetricsStore interface {
	// SaveSnapshot persists a point-in-time snapshot
	SaveSnapshot(ctx context.Context, snapshot domain.Snapshot) error

	// LoadSnapshot returns the most recently persisted snapshot, or
	// domain.ErrNotFound when nothing has been written yet
	LoadSnapshot(ctx context.Context) (*domain.Snapshot, error)
}
