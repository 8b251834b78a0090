package driven

import (
	"time"

	"github.com/custodia-labs/supportbot-core/internal/core/domain"
)

// AuthAdapter handles tenant API-key hashing and access-token operations.
type AuthAdapter interface {
	// HashAPIKey generates a bcrypt hash from a plaintext API key
	HashAPIKey(key string) (string, error)

	// VerifyAPIKey checks if an API key matches a bcrypt hash
	VerifyAPIKey(key, hash string) bool

	// IssueToken mints a signed tenant-scoped access token
	IssueToken(tenantID string, ttl time.Duration) (string, time.Time, error)

	// ValidateToken parses and verifies an access token
	ValidateToken(token string) (*domain.TokenClaims, error)
}
