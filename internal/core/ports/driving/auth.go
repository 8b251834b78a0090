package driving

import (
	"context"

	"github.com/custodia-labs/supportbot-core/internal/core/domain"
)

// AuthService exchanges tenant API keys for access tokens and validates
// tokens on the request path.
type AuthService interface {
	// Token verifies the tenant's API key and mints an access token
	Token(ctx context.Context, req domain.TokenRequest) (*domain.TokenResponse, error)

	// Validate parses a bearer token into its claims
	Validate(ctx context.Context, token string) (*domain.TokenClaims, error)
}
