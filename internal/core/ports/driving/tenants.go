package driving

import (
	"context"

	"github.com/custodia-labs/supportbot-core/internal/core/domain"
)

// TenantService resolves tenant identifiers to their configuration.
type TenantService interface {
	// Resolve returns the config for a tenant id. Unknown or empty ids
	// resolve to the default config; resolution never fails.
	Resolve(tenantID string) domain.TenantConfig

	// List returns the configured tenants in table order
	List() []domain.TenantConfig

	// Reload re-reads the tenant table and installs it atomically.
	// In-flight resolutions keep seeing the previous table.
	Reload(ctx context.Context) error
}
