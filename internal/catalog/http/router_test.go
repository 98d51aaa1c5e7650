package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cataloghq/catalog/internal/catalog/domain"
	"github.com/cataloghq/catalog/internal/catalog/service"
	"github.com/cataloghq/catalog/internal/catalog/store/drivers/sqlite"
	"github.com/cataloghq/catalog/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

// newTestServer wires the full router against an in-memory store, seeded
// with an admin account.
func newTestServer(t *testing.T) (*httptest.Server, *service.AuthService) {
	t.Helper()
	ctx := context.Background()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	codec, err := jwtx.NewEphemeralCodec("router-key", "test-issuer")
	require.NoError(t, err)

	auth := &service.AuthService{
		Store:      st,
		Registry:   st.Tokens(),
		Codec:      codec,
		AccessTTL:  time.Minute,
		RefreshTTL: time.Hour,
	}
	users := &service.UserService{Store: st}

	_, err = users.Create(ctx, service.CreateUserInput{
		Name:            "Administrator",
		Email:           "admin@example.com",
		Password:        "Admin123!",
		ConfirmPassword: "Admin123!",
		Roles:           []string{domain.RoleAdmin},
	})
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := NewRouter("test", st, st.Tokens(), logger)
	router.AuthService = auth
	router.UserService = users
	router.RoleService = &service.RoleService{Store: st}
	router.CategoryService = &service.CategoryService{Store: st}
	router.ProductService = &service.ProductService{Store: st}
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, auth
}

func login(t *testing.T, srv *httptest.Server, email, password string) domain.TokenPair {
	t.Helper()

	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	require.NoError(t, err)

	resp, err := http.Post(srv.URL+"/v1/auth/login", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var pair domain.TokenPair
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&pair))
	return pair
}

func doRequest(t *testing.T, method, url, token string, body io.Reader) *http.Response {
	t.Helper()

	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func TestLoginLogoutLifecycle(t *testing.T) {
	srv, _ := newTestServer(t)

	pair := login(t, srv, "admin@example.com", "Admin123!")
	require.Equal(t, "Bearer", pair.TokenType)

	// The fresh token reaches a protected endpoint.
	resp := doRequest(t, http.MethodGet, srv.URL+"/v1/users/me", pair.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var me struct {
		Email string   `json:"email"`
		Roles []string `json:"roles"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&me))
	resp.Body.Close()
	require.Equal(t, "admin@example.com", me.Email)
	require.Equal(t, []string{domain.RoleAdmin}, me.Roles)

	// Logout revokes the token.
	resp = doRequest(t, http.MethodPost, srv.URL+"/v1/auth/logout", pair.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// The revoked token no longer authenticates despite being unexpired.
	resp = doRequest(t, http.MethodGet, srv.URL+"/v1/users/me", pair.AccessToken, nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	// Logging out the same token twice reports it unknown.
	resp = doRequest(t, http.MethodPost, srv.URL+"/v1/auth/logout", pair.AccessToken, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestLoginFailureReturns401(t *testing.T) {
	srv, _ := newTestServer(t)

	body := bytes.NewReader([]byte(`{"email":"admin@example.com","password":"wrong"}`))
	resp, err := http.Post(srv.URL+"/v1/auth/login", "application/json", body)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var apiErr struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&apiErr))
	require.Equal(t, "Invalid Authentication", apiErr.Message)
}

func TestSecondLoginInvalidatesFirstSession(t *testing.T) {
	srv, _ := newTestServer(t)

	first := login(t, srv, "admin@example.com", "Admin123!")
	second := login(t, srv, "admin@example.com", "Admin123!")

	resp := doRequest(t, http.MethodGet, srv.URL+"/v1/users/me", first.AccessToken, nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = doRequest(t, http.MethodGet, srv.URL+"/v1/users/me", second.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestProtectedEndpointsRequireAuth(t *testing.T) {
	srv, _ := newTestServer(t)

	// Anonymous requests reach the role check and fail there.
	for _, path := range []string{"/v1/users/me", "/v1/users", "/v1/roles", "/v1/products", "/v1/categories"} {
		resp := doRequest(t, http.MethodGet, srv.URL+path, "", nil)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode, "path %s", path)
		resp.Body.Close()
	}
}

func TestRoleEnforcementOnAdminEndpoints(t *testing.T) {
	srv, auth := newTestServer(t)
	ctx := context.Background()

	// A plain user cannot touch admin endpoints.
	users := &service.UserService{Store: auth.Store}
	_, err := users.Create(ctx, service.CreateUserInput{
		Name:            "Bob",
		Email:           "bob@example.com",
		Password:        "Password1",
		ConfirmPassword: "Password1",
		Roles:           []string{domain.RoleUser},
	})
	require.NoError(t, err)

	pair := login(t, srv, "bob@example.com", "Password1")

	resp := doRequest(t, http.MethodGet, srv.URL+"/v1/users", pair.AccessToken, nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	// The same token still works on endpoints open to every role.
	resp = doRequest(t, http.MethodGet, srv.URL+"/v1/users/me", pair.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestRoleLifecycleOverHTTP(t *testing.T) {
	srv, _ := newTestServer(t)

	admin := login(t, srv, "admin@example.com", "Admin123!")

	body := bytes.NewReader([]byte(`{"name":"ROLE_USER"}`))
	resp := doRequest(t, http.MethodPost, srv.URL+"/v1/roles", admin.AccessToken, body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var role struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&role))
	resp.Body.Close()

	resp = doRequest(t, http.MethodGet, srv.URL+"/v1/roles/"+role.ID, admin.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Rename within the catalog, lowercase spelling normalised.
	body = bytes.NewReader([]byte(`{"name":"role_manager"}`))
	resp = doRequest(t, http.MethodPut, srv.URL+"/v1/roles/"+role.ID, admin.AccessToken, body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&role))
	resp.Body.Close()
	require.Equal(t, domain.RoleManager, role.Name)

	// Names outside the catalog are rejected.
	body = bytes.NewReader([]byte(`{"name":"ROLE_WIZARD"}`))
	resp = doRequest(t, http.MethodPut, srv.URL+"/v1/roles/"+role.ID, admin.AccessToken, body)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = doRequest(t, http.MethodDelete, srv.URL+"/v1/roles/"+role.ID, admin.AccessToken, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = doRequest(t, http.MethodGet, srv.URL+"/v1/roles/"+role.ID, admin.AccessToken, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestProductLifecycleOverHTTP(t *testing.T) {
	srv, _ := newTestServer(t)

	admin := login(t, srv, "admin@example.com", "Admin123!")

	// Category first; products reference it.
	resp := doRequest(t, http.MethodPost, srv.URL+"/v1/categories", admin.AccessToken,
		bytes.NewReader([]byte(`{"name":"Beverages","description":"Drinks"}`)))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var cat struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&cat))
	resp.Body.Close()

	productBody, err := json.Marshal(map[string]any{
		"sku":         "BEV-001",
		"name":        "Sparkling Water",
		"price":       2.5,
		"inventory":   24,
		"category_id": cat.ID,
	})
	require.NoError(t, err)

	resp = doRequest(t, http.MethodPost, srv.URL+"/v1/products", admin.AccessToken, bytes.NewReader(productBody))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var prod struct {
		ID      string `json:"id"`
		SKU     string `json:"sku"`
		OwnerID string `json:"owner_id"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&prod))
	resp.Body.Close()
	require.Equal(t, "BEV-001", prod.SKU)
	require.NotEmpty(t, prod.OwnerID)

	// Duplicate SKU conflicts.
	resp = doRequest(t, http.MethodPost, srv.URL+"/v1/products", admin.AccessToken, bytes.NewReader(productBody))
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// Unknown category is a validation failure.
	badBody := []byte(`{"sku":"BEV-002","name":"Juice","category_id":"does-not-exist"}`)
	resp = doRequest(t, http.MethodPost, srv.URL+"/v1/products", admin.AccessToken, bytes.NewReader(badBody))
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = doRequest(t, http.MethodDelete, srv.URL+"/v1/products/"+prod.ID, admin.AccessToken, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()
}

func TestHealthEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, path := range []string{"/livez", "/readyz", "/version"} {
		resp := doRequest(t, http.MethodGet, srv.URL+path, "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode, "path %s", path)
		resp.Body.Close()
	}
}
