package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/custodia-labs/supportbot-core/internal/core/domain"
	"github.com/custodia-labs/supportbot-core/internal/core/ports/driving"
)

// Ensure tenantRegistry implements TenantService
var _ driving.TenantService = (*tenantRegistry)(nil)

// TenantTableLoader produces a freshly parsed and validated tenant table.
// The registry calls it at construction and on every reload.
type TenantTableLoader func(ctx context.Context) (*domain.TenantTable, error)

// tenantRegistry resolves tenant ids against an immutable table behind an
// atomic pointer. Resolution takes no lock; reload swaps the whole table so
// in-flight resolutions never observe a partial update.
type tenantRegistry struct {
	table  atomic.Pointer[domain.TenantTable]
	loader TenantTableLoader
	logger *slog.Logger
}

// NewTenantRegistry loads the initial table and returns the registry.
// A malformed table (duplicate ids, missing fields) fails here, at startup,
// never at query time.
func NewTenantRegistry(ctx context.Context, loader TenantTableLoader, logger *slog.Logger) (driving.TenantService, error) {
	if logger == nil {
		logger = slog.Default()
	}

	table, err := loader(ctx)
	if err != nil {
		return nil, fmt.Errorf("load tenant table: %w", err)
	}

	r := &tenantRegistry{loader: loader, logger: logger}
	r.table.Store(table)
	logger.Info("tenant table loaded", "tenants", table.Len())
	return r, nil
}

// NewStaticTenantRegistry wraps a pre-built table; Reload re-installs it.
// Used by tests and single-tenant deployments without a tenant file.
func NewStaticTenantRegistry(table *domain.TenantTable, logger *slog.Logger) driving.TenantService {
	if logger == nil {
		logger = slog.Default()
	}
	r := &tenantRegistry{
		loader: func(context.Context) (*domain.TenantTable, error) { return table, nil },
		logger: logger,
	}
	r.table.Store(table)
	return r
}

// Resolve returns the tenant's config, or the default config for unknown or
// empty ids. Multi-tenant routing degrades gracefully to single-tenant
// behavior; this never fails.
func (r *tenantRegistry) Resolve(tenantID string) domain.TenantConfig {
	return r.table.Load().Lookup(tenantID)
}

// List returns the configured tenants in table order.
func (r *tenantRegistry) List() []domain.TenantConfig {
	return r.table.Load().Tenants()
}

// Reload re-reads the table and installs it atomically. On error the
// previous table stays in place.
func (r *tenantRegistry) Reload(ctx context.Context) error {
	table, err := r.loader(ctx)
	if err != nil {
		return fmt.Errorf("reload tenant table: %w", err)
	}
	r.table.Store(table)
	r.logger.Info("tenant table reloaded", "tenants", table.Len())
	return nil
}
