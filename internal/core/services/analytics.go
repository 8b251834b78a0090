package services

import (
	"sync"
	"time"

	"github.com/custodia-labs/supportbot-core/internal/core/domain"
	"github.com/custodia-labs/supportbot-core/internal/core/ports/driving"
)

// Ensure Aggregator implements AnalyticsService
var _ driving.AnalyticsService = (*Aggregator)(nil)

// tenantCounters is one tenant's mutable counter set. Each tenant has its
// own lock so unrelated tenants' updates do not contend.
type tenantCounters struct {
	mu             sync.Mutex
	queries        uint64
	fallbacks      uint64
	totalLatencyMS float64
	intents        map[string]uint64
}

// Aggregator tallies anonymized usage per tenant and intent bucket. It is
// safe for many concurrent recorders; it never stores raw query text.
// Counters only grow until an explicit Reset.
type Aggregator struct {
	mu      sync.RWMutex
	tenants map[string]*tenantCounters
}

// NewAggregator creates an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{
		tenants: make(map[string]*tenantCounters),
	}
}

// Record tallies one completed query. It never blocks the request path for
// long and never fails outward.
func (a *Aggregator) Record(tenantID string, fallbackUsed bool, latencyMS float64, intent string) {
	if tenantID == "" {
		tenantID = domain.DefaultTenantID
	}
	if intent == "" {
		intent = domain.IntentOther
	}

	tc := a.countersFor(tenantID)

	tc.mu.Lock()
	tc.queries++
	if fallbackUsed {
		tc.fallbacks++
	}
	tc.totalLatencyMS += latencyMS
	tc.intents[intent]++
	tc.mu.Unlock()
}

// countersFor returns the tenant's counter set, creating it on first use.
func (a *Aggregator) countersFor(tenantID string) *tenantCounters {
	a.mu.RLock()
	tc, ok := a.tenants[tenantID]
	a.mu.RUnlock()
	if ok {
		return tc
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if tc, ok = a.tenants[tenantID]; ok {
		return tc
	}
	tc = &tenantCounters{intents: make(map[string]uint64)}
	a.tenants[tenantID] = tc
	return tc
}

// Snapshot captures a self-consistent view. Totals are derived by summing
// the tenant counters under their locks, so a reader sees each counter
// either before or after an increment, never mid-update, and the sum of
// tenant queries always equals the reported total.
func (a *Aggregator) Snapshot() domain.Snapshot {
	snap := domain.Snapshot{
		IntentCounts:    make(map[string]uint64),
		TenantBreakdown: make(map[string]domain.TenantStats),
		CapturedAt:      time.Now().UTC(),
	}

	a.mu.RLock()
	defer a.mu.RUnlock()

	for tenantID, tc := range a.tenants {
		tc.mu.Lock()
		stats := domain.TenantStats{
			Queries:        tc.queries,
			Fallbacks:      tc.fallbacks,
			TotalLatencyMS: tc.totalLatencyMS,
			IntentCounts:   make(map[string]uint64, len(tc.intents)),
		}
		for intent, n := range tc.intents {
			stats.IntentCounts[intent] = n
		}
		tc.mu.Unlock()

		snap.TenantBreakdown[tenantID] = stats
		snap.TotalQueries += stats.Queries
		snap.FallbackCount += stats.Fallbacks
		snap.TotalLatencyMS += stats.TotalLatencyMS
		for intent, n := range stats.IntentCounts {
			snap.IntentCounts[intent] += n
		}
	}

	return snap
}

// Reset clears all counters.
func (a *Aggregator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.tenants = make(map[string]*tenantCounters)
}
