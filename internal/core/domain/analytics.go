package domain

import "time"

// TenantStats holds the per-tenant counters of one analytics snapshot.
// Counters are monotonically non-decreasing within a process lifetime and
// reset only by an explicit reset.
type TenantStats struct {
	Queries        uint64            `json:"queries"`
	Fallbacks      uint64            `json:"fallbacks"`
	TotalLatencyMS float64           `json:"total_latency_ms"`
	IntentCounts   map[string]uint64 `json:"intent_counts,omitempty"`
}

// FallbackRate returns fallbacks/queries, or 0 when no queries were seen.
func (s TenantStats) FallbackRate() float64 {
	if s.Queries == 0 {
		return 0
	}
	return float64(s.Fallbacks) / float64(s.Queries)
}

// AvgLatencyMS returns the mean recorded latency, or 0 when no queries
// were seen.
func (s TenantStats) AvgLatencyMS() float64 {
	if s.Queries == 0 {
		return 0
	}
	return s.TotalLatencyMS / float64(s.Queries)
}

// Snapshot is a point-in-time, self-consistent view of the aggregator.
// It never contains raw query text, only intent buckets.
type Snapshot struct {
	TotalQueries    uint64                 `json:"total_queries"`
	FallbackCount   uint64                 `json:"fallback_count"`
	TotalLatencyMS  float64                `json:"total_latency_ms"`
	IntentCounts    map[string]uint64      `json:"intent_counts"`
	TenantBreakdown map[string]TenantStats `json:"tenant_breakdown"`
	CapturedAt      time.Time              `json:"captured_at"`
}

// FallbackRate returns the overall fallback rate, 0 when empty.
func (s Snapshot) FallbackRate() float64 {
	if s.TotalQueries == 0 {
		return 0
	}
	return float64(s.FallbackCount) / float64(s.TotalQueries)
}

// AvgLatencyMS returns the overall mean latency, 0 when empty.
func (s Snapshot) AvgLatencyMS() float64 {
	if s.TotalQueries == 0 {
		return 0
	}
	return s.TotalLatencyMS / float64(s.TotalQueries)
}
