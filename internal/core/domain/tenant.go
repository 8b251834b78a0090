package domain

import (
	"encoding/json"
	"fmt"
)

// DefaultTenantID is the synthetic tenant used when no tenant id is supplied
// or no entry matches.
const DefaultTenantID = "default"

// DefaultTopK is the result count used when a tenant entry omits top_k.
const DefaultTopK = 3

// TenantConfig is the per-tenant retrieval configuration. The registry is
// the sole owner; configs are read-only during query handling.
type TenantConfig struct {
	TenantID     string  `json:"tenant_id"`
	Collection   string  `json:"collection"`
	TopK         int     `json:"top_k"`
	MinScore     float64 `json:"min_score"`
	Fallback     string  `json:"fallback"`
	SystemPrompt string  `json:"system_prompt,omitempty"`
	APIKeyHash   string  `json:"api_key_hash,omitempty"`
}

// Validate checks a single tenant entry after defaults are applied.
func (c TenantConfig) Validate() error {
	if c.TenantID == "" {
		return fmt.Errorf("%w: tenant entry missing tenant_id", ErrInvalidInput)
	}
	if c.Collection == "" {
		return fmt.Errorf("%w: tenant %q missing collection", ErrInvalidInput, c.TenantID)
	}
	if c.TopK <= 0 {
		return fmt.Errorf("%w: tenant %q top_k must be positive", ErrInvalidInput, c.TenantID)
	}
	if c.MinScore < 0 || c.MinScore > 1 {
		return fmt.Errorf("%w: tenant %q min_score must be within [0,1]", ErrInvalidInput, c.TenantID)
	}
	return nil
}

// TenantTable is the validated, immutable tenant configuration table.
// Built once at load time and swapped wholesale on reload.
type TenantTable struct {
	base TenantConfig
	byID map[string]TenantConfig
	ids  []string // original table order
}

// NewTenantTable builds a table from an ordered list of entries. Missing
// optional fields fall back to the base config; a duplicate tenant id or an
// invalid entry fails the load.
func NewTenantTable(base TenantConfig, entries []TenantConfig) (*TenantTable, error) {
	base.TenantID = DefaultTenantID
	if base.TopK <= 0 {
		base.TopK = DefaultTopK
	}
	if err := base.Validate(); err != nil {
		return nil, fmt.Errorf("base tenant config: %w", err)
	}

	table := &TenantTable{
		base: base,
		byID: make(map[string]TenantConfig, len(entries)),
		ids:  make([]string, 0, len(entries)),
	}

	for _, entry := range entries {
		if _, exists := table.byID[entry.TenantID]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateTenant, entry.TenantID)
		}
		if entry.Collection == "" {
			entry.Collection = base.Collection
		}
		if entry.TopK <= 0 {
			entry.TopK = base.TopK
		}
		if entry.Fallback == "" {
			entry.Fallback = base.Fallback
		}
		if entry.SystemPrompt == "" {
			entry.SystemPrompt = base.SystemPrompt
		}
		if err := entry.Validate(); err != nil {
			return nil, err
		}
		table.byID[entry.TenantID] = entry
		table.ids = append(table.ids, entry.TenantID)
	}

	return table, nil
}

// ParseTenantTable decodes a JSON tenant list and builds the table.
// The accepted format is an ordered array of tenant records.
func ParseTenantTable(data []byte, base TenantConfig) (*TenantTable, error) {
	var entries []TenantConfig
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: tenant table: %v", ErrInvalidInput, err)
	}
	return NewTenantTable(base, entries)
}

// Default returns the base config used for unknown or empty tenant ids.
func (t *TenantTable) Default() TenantConfig {
	return t.base
}

// Lookup resolves a tenant id. Unknown or empty ids resolve to the default
// config; resolution never fails.
func (t *TenantTable) Lookup(tenantID string) TenantConfig {
	if tenantID == "" {
		return t.base
	}
	if cfg, ok := t.byID[tenantID]; ok {
		return cfg
	}
	return t.base
}

// Tenants returns the configured entries in table order.
func (t *TenantTable) Tenants() []TenantConfig {
	out := make([]TenantConfig, 0, len(t.ids))
	for _, id := range t.ids {
		out = append(out, t.byID[id])
	}
	return out
}

// Len returns the number of configured tenants, excluding the default.
func (t *TenantTable) Len() int {
	return len(t.ids)
}
