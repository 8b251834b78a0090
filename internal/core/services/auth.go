package services

import (
	"context"
	"time"

	"github.com/custodia-labs/supportbot-core/internal/core/domain"
	"github.com/custodia-labs/supportbot-core/internal/core/ports/driven"
	"github.com/custodia-labs/supportbot-core/internal/core/ports/driving"
)

// Ensure authService implements AuthService
var _ driving.AuthService = (*authService)(nil)

// defaultTokenTTL is how long issued tenant tokens stay valid.
const defaultTokenTTL = 24 * time.Hour

// authService exchanges tenant API keys for tenant-scoped tokens.
type authService struct {
	tenants driving.TenantService
	auth    driven.AuthAdapter
	ttl     time.Duration
}

// NewAuthService creates an AuthService.
func NewAuthService(tenants driving.TenantService, auth driven.AuthAdapter) driving.AuthService {
	return &authService{
		tenants: tenants,
		auth:    auth,
		ttl:     defaultTokenTTL,
	}
}

// Token verifies the tenant's API key against its configured hash and
// mints an access token. Tenants without a configured key cannot obtain
// tokens.
func (s *authService) Token(_ context.Context, req domain.TokenRequest) (*domain.TokenResponse, error) {
	cfg := s.tenants.Resolve(req.TenantID)
	if cfg.TenantID != req.TenantID || cfg.APIKeyHash == "" {
		return nil, domain.ErrUnauthorized
	}
	if !s.auth.VerifyAPIKey(req.APIKey, cfg.APIKeyHash) {
		return nil, domain.ErrUnauthorized
	}

	token, expiresAt, err := s.auth.IssueToken(cfg.TenantID, s.ttl)
	if err != nil {
		return nil, err
	}
	return &domain.TokenResponse{Token: token, ExpiresAt: expiresAt}, nil
}

// Validate parses a bearer token into its claims.
func (s *authService) Validate(_ context.Context, token string) (*domain.TokenClaims, error) {
	return s.auth.ValidateToken(token)
}
