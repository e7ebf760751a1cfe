package auth

import (
	"net/http"
	"strings"
)

// Middleware authenticates bearer tokens and enforces the route policy.
type Middleware struct {
	secret []byte
	policy Policy
}

// NewMiddleware constructs an auth middleware.
func NewMiddleware(secret []byte, policy Policy) *Middleware {
	return &Middleware{secret: secret, policy: policy}
}

// Wrap authenticates the request and checks the required role before
// passing through. Exempt paths and paths the policy does not govern skip
// authentication entirely.
func (m *Middleware) Wrap(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.policy.IsExempt(r) {
			next.ServeHTTP(w, r)
			return
		}
		required, governed := m.policy.RequiredRole(r)
		if !governed {
			next.ServeHTTP(w, r)
			return
		}

		claims, role, err := m.authenticate(r)
		if err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if !RoleAtLeast(role, required) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		ctx := WithIdentity(r.Context(), claims.UserID, role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *Middleware) authenticate(r *http.Request) (*Claims, Role, error) {
	claims, err := ParseJWT(bearerToken(r), m.secret)
	if err != nil {
		return nil, "", err
	}
	role, _ := NormalizeRole(claims.Role)
	return claims, role, nil
}

func bearerToken(r *http.Request) string {
	if r == nil {
		return ""
	}
	const prefix = "Bearer "
	header := r.Header.Get("Authorization")
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
