package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cataloghq/catalog/internal/catalog/service"
	"github.com/cataloghq/catalog/internal/catalog/store"
	"github.com/cataloghq/catalog/pkg/httpx"
	"github.com/cataloghq/catalog/pkg/slogx"
)

type AuthHandler struct {
	AuthService *service.AuthService
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin godoc
//
//	@Summary		Authenticate a user
//	@Description	Exchanges email and password for a signed access/refresh token pair.
//	@Description	A successful login replaces any previous session for the same user: the
//	@Description	prior access token stops resolving immediately.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			credentials	body		loginRequest	true	"User credentials"
//	@Success		200			{object}	domain.TokenPair
//	@Failure		400			{object}	httpx.APIError	"Malformed request body"
//	@Failure		401			{object}	httpx.APIError	"Unknown identity or wrong password"
//	@Router			/v1/auth/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	pair, err := h.AuthService.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			// Same response for unknown email and wrong password.
			httpx.WriteError(w, http.StatusUnauthorized, "Invalid Authentication")
			return
		}
		log.Error("login failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, pair)
}

// HandleLogout godoc
//
//	@Summary		Revoke the current session
//	@Description	Deletes the registry record for the presented access token. The token
//	@Description	stops resolving even though its signature stays valid until expiry.
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	map[string]string
//	@Failure		400	{object}	httpx.APIError	"Missing bearer token"
//	@Failure		404	{object}	httpx.APIError	"Token not known to the registry"
//	@Security		BearerAuth
//	@Router			/v1/auth/logout [post].
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	raw, ok := bearerToken(r)
	if !ok {
		httpx.WriteError(w, http.StatusBadRequest, "Bearer token is required")
		return
	}

	if err := h.AuthService.Logout(ctx, raw); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "Token not found")
			return
		}
		log.Error("logout failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}
