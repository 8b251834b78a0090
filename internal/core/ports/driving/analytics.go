package driving

import "github.com/custodia-labs/supportbot-core/internal/core/domain"

// AnalyticsService exposes the aggregated, anonymized usage counters.
type AnalyticsService interface {
	// Snapshot captures a self-consistent view of all counters
	Snapshot() domain.Snapshot

	// Reset clears all counters. This is the only way counters decrease.
	Reset()
}
