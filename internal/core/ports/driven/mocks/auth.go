package mocks

import (
	"strings"
	"time"

	"github.com/custodia-labs/supportbot-core/internal/core/domain"
)

// MockAuthAdapter implements AuthAdapter with reversible hashing so
// tests can construct tenant configs without bcrypt cost.
type MockAuthAdapter struct {
	IssuedTokens int
}

// NewMockAuthAdapter creates a new MockAuthAdapter
func NewMockAuthAdapter() *MockAuthAdapter {
	return &MockAuthAdapter{}
}

func (m *MockAuthAdapter) HashAPIKey(key string) (string, error) {
	return "hashed:" + key, nil
}

func (m *MockAuthAdapter) VerifyAPIKey(key, hash string) bool {
	return hash == "hashed:"+key
}

func (m *MockAuthAdapter) IssueToken(tenantID string, ttl time.Duration) (string, time.Time, error) {
	m.IssuedTokens++
	expiresAt := time.Now().Add(ttl)
	return "token:" + tenantID, expiresAt, nil
}

func (m *MockAuthAdapter) ValidateToken(token string) (*domain.TokenClaims, error) {
	tenantID, ok := strings.CutPrefix(token, "token:")
	if !ok {
		return nil, domain.ErrTokenInvalid
	}
	return &domain.TokenClaims{
		TenantID:  tenantID,
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil
}
