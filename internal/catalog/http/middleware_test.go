package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cataloghq/catalog/internal/catalog/domain"
	"github.com/cataloghq/catalog/internal/catalog/service"
	"github.com/cataloghq/catalog/internal/catalog/store/drivers/sqlite"
	"github.com/cataloghq/catalog/pkg/cryptox"
	"github.com/cataloghq/catalog/pkg/idx"
	"github.com/cataloghq/catalog/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func newGateFixture(t *testing.T) *service.AuthService {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	codec, err := jwtx.NewEphemeralCodec("gate-key", "test-issuer")
	require.NoError(t, err)

	return &service.AuthService{
		Store:      st,
		Registry:   st.Tokens(),
		Codec:      codec,
		AccessTTL:  time.Minute,
		RefreshTTL: time.Hour,
	}
}

func seedGateUser(t *testing.T, auth *service.AuthService, email string, roleNames ...string) {
	t.Helper()
	ctx := context.Background()

	roles := make([]domain.Role, len(roleNames))
	for i, name := range roleNames {
		roles[i] = domain.Role{ID: idx.New().String(), Name: name}
		require.NoError(t, auth.Store.Roles().Create(ctx, roles[i]))
	}

	hash, err := cryptox.HashPassword("s3cret")
	require.NoError(t, err)

	require.NoError(t, auth.Store.Users().Create(ctx, domain.User{
		ID:           idx.New().String(),
		Name:         "Alice",
		Email:        email,
		PasswordHash: hash,
		Roles:        roles,
	}))
}

// probeHandler records whether it ran and what principal it saw.
type probeHandler struct {
	called    bool
	principal domain.Principal
	anonymous bool
}

func (p *probeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.called = true
	pr, ok := PrincipalFromContext(r.Context())
	p.principal = pr
	p.anonymous = !ok
	w.WriteHeader(http.StatusOK)
}

func doGateRequest(t *testing.T, h http.Handler, authorization string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func errorMessage(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()

	var body struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body.Message
}

func TestAuthnMiddlewarePassesAnonymousThrough(t *testing.T) {
	auth := newGateFixture(t)

	for _, header := range []string{"", "Basic dXNlcjpwYXNz", "Bearer ", "bearer lowercase-scheme"} {
		probe := &probeHandler{}
		rr := doGateRequest(t, AuthnMiddleware(auth)(probe), header)

		require.Equal(t, http.StatusOK, rr.Code, "header %q", header)
		require.True(t, probe.called, "header %q", header)
		require.True(t, probe.anonymous, "header %q", header)
	}
}

func TestAuthnMiddlewareAttachesPrincipal(t *testing.T) {
	ctx := context.Background()
	auth := newGateFixture(t)
	seedGateUser(t, auth, "alice@example.com", domain.RoleAdmin)

	pair, err := auth.Login(ctx, "alice@example.com", "s3cret")
	require.NoError(t, err)

	probe := &probeHandler{}
	rr := doGateRequest(t, AuthnMiddleware(auth)(probe), "Bearer "+pair.AccessToken)

	require.Equal(t, http.StatusOK, rr.Code)
	require.False(t, probe.anonymous)
	require.Equal(t, "alice@example.com", probe.principal.Email)
	require.Equal(t, []string{domain.RoleAdmin}, probe.principal.Roles)
}

func TestAuthnMiddlewareRejectsUnregisteredToken(t *testing.T) {
	auth := newGateFixture(t)
	seedGateUser(t, auth, "alice@example.com", domain.RoleUser)

	token, err := auth.Codec.Issue("alice@example.com", time.Minute)
	require.NoError(t, err)

	probe := &probeHandler{}
	rr := doGateRequest(t, AuthnMiddleware(auth)(probe), "Bearer "+token)

	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.Equal(t, "Invalid token", errorMessage(t, rr))
	require.False(t, probe.called)
}

func TestAuthnMiddlewareRejectsExpiredToken(t *testing.T) {
	ctx := context.Background()
	auth := newGateFixture(t)
	seedGateUser(t, auth, "alice@example.com", domain.RoleUser)

	expired, err := auth.Codec.Issue("alice@example.com", -time.Minute)
	require.NoError(t, err)
	require.NoError(t, auth.Registry.Upsert(ctx, domain.TokenRecord{
		Subject:     "alice@example.com",
		AccessHash:  cryptox.FingerprintToken(expired),
		RefreshHash: "refresh",
	}))

	rr := doGateRequest(t, AuthnMiddleware(auth)(&probeHandler{}), "Bearer "+expired)

	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.Equal(t, "JWT token expired", errorMessage(t, rr))
}

func TestAuthnMiddlewareRejectsMalformedToken(t *testing.T) {
	ctx := context.Background()
	auth := newGateFixture(t)

	require.NoError(t, auth.Registry.Upsert(ctx, domain.TokenRecord{
		Subject:     "alice@example.com",
		AccessHash:  cryptox.FingerprintToken("garbage-token"),
		RefreshHash: "refresh",
	}))

	rr := doGateRequest(t, AuthnMiddleware(auth)(&probeHandler{}), "Bearer garbage-token")

	require.Equal(t, http.StatusForbidden, rr.Code)
	require.Equal(t, "Invalid JWT token", errorMessage(t, rr))
}

func TestAuthnMiddlewareRejectsUnsupportedAlgorithm(t *testing.T) {
	ctx := context.Background()
	auth := newGateFixture(t)

	// HS256 token from another system; structurally fine, wrong algorithm.
	foreign, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "alice@example.com",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}).SignedString([]byte("shared-secret"))
	require.NoError(t, err)

	require.NoError(t, auth.Registry.Upsert(ctx, domain.TokenRecord{
		Subject:     "alice@example.com",
		AccessHash:  cryptox.FingerprintToken(foreign),
		RefreshHash: "refresh",
	}))

	rr := doGateRequest(t, AuthnMiddleware(auth)(&probeHandler{}), "Bearer "+foreign)

	require.Equal(t, http.StatusForbidden, rr.Code)
	require.Equal(t, "JWT token is unsupported", errorMessage(t, rr))
}

func TestAuthnMiddlewareReentryGuard(t *testing.T) {
	ctx := context.Background()
	auth := newGateFixture(t)
	seedGateUser(t, auth, "alice@example.com", domain.RoleUser)

	pair, err := auth.Login(ctx, "alice@example.com", "s3cret")
	require.NoError(t, err)

	// Stacked gates: the inner instance must not re-resolve the identity.
	probe := &probeHandler{}
	stacked := AuthnMiddleware(auth)(AuthnMiddleware(auth)(probe))
	rr := doGateRequest(t, stacked, "Bearer "+pair.AccessToken)

	require.Equal(t, http.StatusOK, rr.Code)
	require.False(t, probe.anonymous)
	require.Equal(t, "alice@example.com", probe.principal.Email)
}

func TestAuthnMiddlewareRevalidatesOnReentry(t *testing.T) {
	ctx := context.Background()
	auth := newGateFixture(t)
	seedGateUser(t, auth, "alice@example.com", domain.RoleUser)

	pair, err := auth.Login(ctx, "alice@example.com", "s3cret")
	require.NoError(t, err)

	// The token is revoked between the two gates. The inner gate still runs
	// the registry check, so the revocation must stop the request even though
	// a principal is already attached.
	probe := &probeHandler{}
	revoke := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, auth.Logout(r.Context(), pair.AccessToken))
		AuthnMiddleware(auth)(probe).ServeHTTP(w, r)
	})
	rr := doGateRequest(t, AuthnMiddleware(auth)(revoke), "Bearer "+pair.AccessToken)

	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.Equal(t, "Invalid token", errorMessage(t, rr))
	require.False(t, probe.called)
}

func TestRequireRole(t *testing.T) {
	t.Run("anonymous gets 401", func(t *testing.T) {
		probe := &probeHandler{}
		rr := doGateRequest(t, RequireRole(domain.RoleAdmin)(probe), "")

		require.Equal(t, http.StatusUnauthorized, rr.Code)
		require.False(t, probe.called)
	})

	t.Run("missing role gets 403", func(t *testing.T) {
		probe := &probeHandler{}
		h := RequireRole(domain.RoleAdmin)(probe)

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req = req.WithContext(WithPrincipal(req.Context(), domain.Principal{
			Email: "bob@example.com",
			Roles: []string{domain.RoleUser},
		}))
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)

		require.Equal(t, http.StatusForbidden, rr.Code)
		require.False(t, probe.called)
	})

	t.Run("any listed role passes", func(t *testing.T) {
		probe := &probeHandler{}
		h := RequireRole(domain.RoleAdmin, domain.RoleManager)(probe)

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req = req.WithContext(WithPrincipal(req.Context(), domain.Principal{
			Email: "carol@example.com",
			Roles: []string{domain.RoleManager},
		}))
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		require.True(t, probe.called)
	})
}
