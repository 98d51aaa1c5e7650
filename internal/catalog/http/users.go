package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/cataloghq/catalog/internal/catalog/domain"
	"github.com/cataloghq/catalog/internal/catalog/service"
	"github.com/cataloghq/catalog/internal/catalog/store"
	"github.com/cataloghq/catalog/pkg/httpx"
	"github.com/cataloghq/catalog/pkg/slogx"
)

type UsersHandler struct {
	UserService *service.UserService
}

type createUserRequest struct {
	Name            string   `json:"name"`
	Email           string   `json:"email"`
	Password        string   `json:"password"`
	ConfirmPassword string   `json:"confirm_password"`
	Roles           []string `json:"roles"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserResponse(u domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Roles:     u.RoleNames(),
		CreatedAt: u.CreatedAt,
	}
}

// HandleCreate godoc
//
//	@Summary		Create a user
//	@Description	Registers a new user with the requested role assignments. Unknown role
//	@Description	names are ignored; at least one recognised role is required.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			user	body		createUserRequest	true	"New user"
//	@Success		201		{object}	userResponse
//	@Failure		400		{object}	httpx.APIError	"Validation failure"
//	@Failure		409		{object}	httpx.APIError	"Email already registered"
//	@Security		BearerAuth
//	@Router			/v1/users [post].
func (h *UsersHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.UserService.Create(ctx, service.CreateUserInput{
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		Roles:           req.Roles,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			httpx.WriteError(w, http.StatusBadRequest, "Invalid user", err.Error())
		case errors.Is(err, store.ErrAlreadyExists):
			httpx.WriteError(w, http.StatusConflict, "Email already registered")
		default:
			log.Error("failed to create user", "error", err)
			httpx.WriteError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	log.Info("user created", "user_id", user.ID, "email", user.Email)
	httpx.WriteJSON(w, http.StatusCreated, toUserResponse(user))
}

// HandleList godoc
//
//	@Summary	List users
//	@Tags		Users
//	@Produce	json
//	@Success	200	{array}		userResponse
//	@Failure	401	{object}	httpx.APIError
//	@Failure	403	{object}	httpx.APIError
//	@Security	BearerAuth
//	@Router		/v1/users [get].
func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	users, err := h.UserService.List(ctx)
	if err != nil {
		log.Error("failed to list users", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	out := make([]userResponse, len(users))
	for i, u := range users {
		out[i] = toUserResponse(u)
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleMe godoc
//
//	@Summary		Current user profile
//	@Description	Returns the profile of the authenticated caller.
//	@Tags			Users
//	@Produce		json
//	@Success		200	{object}	userResponse
//	@Failure		401	{object}	httpx.APIError
//	@Security		BearerAuth
//	@Router			/v1/users/me [get].
func (h *UsersHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	p, ok := PrincipalFromContext(ctx)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	user, err := h.UserService.GetByEmail(ctx, p.Email)
	if err != nil {
		log.Error("failed to load current user", "error", err, "email", p.Email)
		httpx.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toUserResponse(user))
}
