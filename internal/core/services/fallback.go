package services

import (
	"github.com/custodia-labs/supportbot-core/internal/core/domain"
)

// DecideFallback turns a retrieval result into a fallback decision. Pure:
// identical input always yields identical output, and it is total over its
// input domain.
//
// Empty result: use the tenant's fallback text, no sources. Non-empty:
// proceed with generation; sources are the distinct attribution names of
// the surviving matches in rank order, first seen wins.
func DecideFallback(result *domain.RetrievalResult, cfg domain.TenantConfig) domain.FallbackDecision {
	if result.Empty() {
		return domain.FallbackDecision{
			UsedFallback: true,
			Answer:       cfg.Fallback,
			Sources:      []string{},
		}
	}

	seen := make(map[string]bool, len(result.Matches))
	sources := make([]string, 0, len(result.Matches))
	for _, match := range result.Matches {
		if seen[match.Source] {
			continue
		}
		seen[match.Source] = true
		sources = append(sources, match.Source)
	}

	return domain.FallbackDecision{
		UsedFallback: false,
		Sources:      sources,
	}
}
