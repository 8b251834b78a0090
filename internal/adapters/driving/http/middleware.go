package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/custodia-labs/supportbot-core/internal/core/ports/driving"
)

type contextKey string

const tenantContextKey contextKey = "tenant"

// TenantContext carries the resolved tenant for a request
type TenantContext struct {
	TenantID      string
	Authenticated bool
}

// TenantMiddleware resolves the tenant for incoming requests.
// A bearer token takes precedence over the X-Tenant-ID header.
type TenantMiddleware struct {
	authService driving.AuthService // can be nil
	required    bool
}

// NewTenantMiddleware creates tenant resolution middleware
func NewTenantMiddleware(authService driving.AuthService, required bool) *TenantMiddleware {
	return &TenantMiddleware{
		authService: authService,
		required:    required,
	}
}

// ResolveTenant wraps a handler with tenant resolution
func (m *TenantMiddleware) ResolveTenant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tc := TenantContext{}

		if token := extractBearerToken(r); token != "" {
			if m.authService == nil {
				writeError(w, http.StatusUnauthorized, "authentication not configured")
				return
			}
			claims, err := m.authService.Validate(r.Context(), token)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}
			tc.TenantID = claims.TenantID
			tc.Authenticated = true
		} else if tenantID := r.Header.Get("X-Tenant-ID"); tenantID != "" {
			tc.TenantID = tenantID
		}

		if m.required && !tc.Authenticated {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		ctx := context.WithValue(r.Context(), tenantContextKey, tc)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetTenantContext retrieves the tenant context from a request context
func GetTenantContext(ctx context.Context) (TenantContext, bool) {
	tc, ok := ctx.Value(tenantContextKey).(TenantContext)
	return tc, ok
}

// extractBearerToken extracts the token from the Authorization header
func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
