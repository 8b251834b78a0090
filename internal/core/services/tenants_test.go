package services

import (
	"context"
	"errors"
	"testing"

	"github.com/custodia-labs/supportbot-core/internal/core/domain"
)

func testBaseConfig() domain.TenantConfig {
	return domain.TenantConfig{
		Collection: "faq",
		TopK:       3,
		Fallback:   "Please contact support@example.com.",
	}
}

func testTenantTable(t *testing.T, entries []domain.TenantConfig) *domain.TenantTable {
	t.Helper()
	table, err := domain.NewTenantTable(testBaseConfig(), entries)
	if err != nil {
		t.Fatalf("NewTenantTable() error = %v", err)
	}
	return table
}

func TestTenantRegistry_ResolveKnownTenant(t *testing.T) {
	table := testTenantTable(t, []domain.TenantConfig{
		{TenantID: "acme", Collection: "acme_docs", TopK: 5, MinScore: 0.3},
	})
	registry := NewStaticTenantRegistry(table, nil)

	cfg := registry.Resolve("acme")
	if cfg.TenantID != "acme" {
		t.Errorf("TenantID = %q, want acme", cfg.TenantID)
	}
	if cfg.Collection != "acme_docs" {
		t.Errorf("Collection = %q, want acme_docs", cfg.Collection)
	}
	if cfg.TopK != 5 {
		t.Errorf("TopK = %d, want 5", cfg.TopK)
	}
	// Omitted fields inherit from the base config.
	if cfg.Fallback != testBaseConfig().Fallback {
		t.Errorf("Fallback = %q, want inherited base fallback", cfg.Fallback)
	}
}

func TestTenantRegistry_ResolveUnknownReturnsDefault(t *testing.T) {
	table := testTenantTable(t, []domain.TenantConfig{
		{TenantID: "acme", Collection: "acme_docs"},
	})
	registry := NewStaticTenantRegistry(table, nil)

	for _, id := range []string{"", "nobody", "ACME"} {
		cfg := registry.Resolve(id)
		if cfg.TenantID != domain.DefaultTenantID {
			t.Errorf("Resolve(%q).TenantID = %q, want %q", id, cfg.TenantID, domain.DefaultTenantID)
		}
		if cfg.Collection != "faq" {
			t.Errorf("Resolve(%q).Collection = %q, want faq", id, cfg.Collection)
		}
	}
}

func TestNewTenantRegistry_LoadFailure(t *testing.T) {
	loadErr := errors.New("bad tenant file")
	loader := func(context.Context) (*domain.TenantTable, error) { return nil, loadErr }

	_, err := NewTenantRegistry(context.Background(), loader, nil)
	if !errors.Is(err, loadErr) {
		t.Errorf("NewTenantRegistry() error = %v, want wrapped %v", err, loadErr)
	}
}

func TestTenantRegistry_Reload(t *testing.T) {
	first := testTenantTable(t, []domain.TenantConfig{
		{TenantID: "acme", Collection: "acme_docs"},
	})
	second := testTenantTable(t, []domain.TenantConfig{
		{TenantID: "acme", Collection: "acme_docs"},
		{TenantID: "globex", Collection: "globex_docs"},
	})

	tables := []*domain.TenantTable{first, second}
	calls := 0
	loader := func(context.Context) (*domain.TenantTable, error) {
		table := tables[calls]
		calls++
		return table, nil
	}

	registry, err := NewTenantRegistry(context.Background(), loader, nil)
	if err != nil {
		t.Fatalf("NewTenantRegistry() error = %v", err)
	}

	if got := registry.Resolve("globex").TenantID; got != domain.DefaultTenantID {
		t.Fatalf("before reload Resolve(globex).TenantID = %q, want default", got)
	}

	if err := registry.Reload(context.Background()); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	if got := registry.Resolve("globex").TenantID; got != "globex" {
		t.Errorf("after reload Resolve(globex).TenantID = %q, want globex", got)
	}
	if got := len(registry.List()); got != 2 {
		t.Errorf("List() length = %d, want 2", got)
	}
}

func TestTenantRegistry_ReloadFailureKeepsTable(t *testing.T) {
	table := testTenantTable(t, []domain.TenantConfig{
		{TenantID: "acme", Collection: "acme_docs"},
	})

	calls := 0
	loader := func(context.Context) (*domain.TenantTable, error) {
		calls++
		if calls == 1 {
			return table, nil
		}
		return nil, errors.New("tenant file vanished")
	}

	registry, err := NewTenantRegistry(context.Background(), loader, nil)
	if err != nil {
		t.Fatalf("NewTenantRegistry() error = %v", err)
	}

	if err := registry.Reload(context.Background()); err == nil {
		t.Fatal("Reload() expected error, got nil")
	}

	if got := registry.Resolve("acme").TenantID; got != "acme" {
		t.Errorf("after failed reload Resolve(acme).TenantID = %q, want acme", got)
	}
}
