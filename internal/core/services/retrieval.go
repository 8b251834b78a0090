package services

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/custodia-labs/supportbot-core/internal/core/domain"
	"github.com/custodia-labs/supportbot-core/internal/core/ports/driven"
	"github.com/custodia-labs/supportbot-core/internal/runtime"
)

// RetrievalEngine queries the vector index on behalf of a resolved tenant
// and applies relevance filtering. It holds no mutable state of its own;
// the index query is its only side effect.
type RetrievalEngine struct {
	index    driven.VectorIndex
	services *runtime.Services
	logger   *slog.Logger
}

// NewRetrievalEngine creates a RetrievalEngine. The embedding service is
// read dynamically through runtime.Services on every call.
func NewRetrievalEngine(index driven.VectorIndex, services *runtime.Services, logger *slog.Logger) *RetrievalEngine {
	if logger == nil {
		logger = slog.Default()
	}
	return &RetrievalEngine{
		index:    index,
		services: services,
		logger:   logger,
	}
}

// Retrieve embeds the query, searches the tenant's collection and keeps the
// matches at or above the tenant's score threshold, in descending score
// order. Index or embedding failures are logged and reported as a degraded
// empty result so the caller can still answer safely; the only error
// returned is a cancelled context.
func (e *RetrievalEngine) Retrieve(ctx context.Context, cfg domain.TenantConfig, query string) (*domain.RetrievalResult, error) {
	start := time.Now()

	result := &domain.RetrievalResult{
		TenantID: cfg.TenantID,
		Status:   domain.RetrievalOK,
	}

	embedder := e.services.EmbeddingService()
	if embedder == nil {
		e.logger.Warn("retrieval degraded: no embedding service configured",
			"tenant_id", cfg.TenantID)
		result.Status = domain.RetrievalDegraded
		result.Took = time.Since(start)
		return result, nil
	}

	queryEmbedding, err := embedder.EmbedQuery(ctx, query)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		e.logger.Error("retrieval degraded: query embedding failed",
			"tenant_id", cfg.TenantID, "error", err)
		result.Status = domain.RetrievalDegraded
		result.Took = time.Since(start)
		return result, nil
	}

	hits, err := e.index.Query(ctx, cfg.Collection, queryEmbedding, cfg.TopK)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		e.logger.Error("retrieval degraded: vector index query failed",
			"tenant_id", cfg.TenantID, "collection", cfg.Collection, "error", err)
		result.Status = domain.RetrievalDegraded
		result.Took = time.Since(start)
		return result, nil
	}

	// Providers promise descending order; enforce it before thresholding
	// so ranks stay meaningful either way.
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })

	for _, hit := range hits {
		if hit.Score < cfg.MinScore {
			continue
		}
		result.Matches = append(result.Matches, domain.RetrievedMatch{
			Content: hit.Content,
			Source:  hit.Source(),
			Score:   hit.Score,
			Rank:    len(result.Matches) + 1,
		})
	}

	result.Took = time.Since(start)

	e.logger.Debug("retrieval complete",
		"tenant_id", cfg.TenantID,
		"collection", cfg.Collection,
		"candidates", len(hits),
		"matches", len(result.Matches),
		"took", result.Took)

	return result, nil
}
