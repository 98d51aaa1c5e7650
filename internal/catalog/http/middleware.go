package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/cataloghq/catalog/internal/catalog/service"
	"github.com/cataloghq/catalog/pkg/httpx"
	"github.com/cataloghq/catalog/pkg/jwtx"
	"github.com/cataloghq/catalog/pkg/slogx"
)

// AuthnMiddleware resolves the bearer token, if present, into a request
// principal. Requests without an Authorization header, or with one that does
// not use the Bearer scheme, pass through anonymously; whether that is
// acceptable is decided per-route by RequireRole. A request that DOES present
// a bearer token must present a valid one: any failure short-circuits with an
// error response rather than falling back to anonymous.
func AuthnMiddleware(auth *service.AuthService) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			raw, ok := bearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			// Registry and decode checks run even when an upstream instance
			// already attached a principal; a token revoked mid-chain must
			// not ride through on stale request state.
			subject, err := auth.ValidateToken(ctx, raw)
			if err != nil {
				writeAuthError(w, r, err)
				return
			}

			// Re-entry guard: identity is already resolved and attached,
			// nothing left to do.
			if _, ok := PrincipalFromContext(ctx); ok {
				next.ServeHTTP(w, r)
				return
			}

			principal, err := auth.ResolvePrincipal(ctx, raw, subject)
			if err != nil {
				writeAuthError(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(ctx, principal)))
		})
	}
}

// bearerToken extracts the raw token from the Authorization header. The
// second return is false when the header is absent or uses another scheme.
func bearerToken(r *http.Request) (string, bool) {
	authz := r.Header.Get("Authorization")
	if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
		return "", false
	}
	raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))
	if raw == "" {
		return "", false
	}
	return raw, true
}

// writeAuthError maps authentication failures onto the API error contract.
// Expiry and revocation are 401s: the caller held a real session and can
// recover by logging in again. Structurally broken or foreign tokens are
// 403s.
func writeAuthError(w http.ResponseWriter, r *http.Request, err error) {
	log := slogx.FromContext(r.Context())

	switch {
	case errors.Is(err, service.ErrInvalidToken):
		httpx.WriteError(w, http.StatusUnauthorized, "Invalid token")
	case errors.Is(err, jwtx.ErrExpired):
		httpx.WriteError(w, http.StatusUnauthorized, "JWT token expired")
	case errors.Is(err, jwtx.ErrMalformed):
		httpx.WriteError(w, http.StatusForbidden, "Invalid JWT token")
	case errors.Is(err, jwtx.ErrUnsupported):
		httpx.WriteError(w, http.StatusForbidden, "JWT token is unsupported")
	default:
		log.Error("authentication failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// RequireRole rejects requests whose principal does not carry at least one of
// the named roles. Anonymous requests get 401, authenticated requests without
// a matching role get 403.
func RequireRole(roles ...string) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFromContext(r.Context())
			if !ok {
				httpx.WriteError(w, http.StatusUnauthorized, "Authentication required")
				return
			}

			for _, role := range roles {
				if p.HasRole(role) {
					next.ServeHTTP(w, r)
					return
				}
			}

			httpx.WriteError(w, http.StatusForbidden, "Insufficient permissions")
		})
	}
}
