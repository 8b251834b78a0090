package domain

import "time"

// TokenClaims is the validated content of a tenant-scoped access token.
type TokenClaims struct {
	TenantID  string    `json:"tenant_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TokenRequest exchanges a tenant API key for an access token.
type TokenRequest struct {
	TenantID string `json:"tenant_id"`
	APIKey   string `json:"api_key"`
}

// TokenResponse carries a freshly minted access token.
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
