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

type RolesHandler struct {
	RoleService *service.RoleService
}

type roleRequest struct {
	Name string `json:"name"`
}

type roleResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// HandleCreate godoc
//
//	@Summary		Create a role
//	@Description	Registers one of the application roles. Only names from the fixed role
//	@Description	catalog are accepted.
//	@Tags			Roles
//	@Accept			json
//	@Produce		json
//	@Param			role	body		roleRequest	true	"Role name"
//	@Success		201		{object}	roleResponse
//	@Failure		400		{object}	httpx.APIError	"Unknown role name"
//	@Failure		409		{object}	httpx.APIError	"Role already exists"
//	@Security		BearerAuth
//	@Router			/v1/roles [post].
func (h *RolesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req roleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	role, err := h.RoleService.Create(ctx, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			httpx.WriteError(w, http.StatusBadRequest, "Invalid role", err.Error())
		case errors.Is(err, store.ErrAlreadyExists):
			httpx.WriteError(w, http.StatusConflict, "Role already exists")
		default:
			log.Error("failed to create role", "error", err)
			httpx.WriteError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, roleResponse{ID: role.ID, Name: role.Name})
}

// HandleList godoc
//
//	@Summary	List roles
//	@Tags		Roles
//	@Produce	json
//	@Success	200	{array}		roleResponse
//	@Failure	401	{object}	httpx.APIError
//	@Failure	403	{object}	httpx.APIError
//	@Security	BearerAuth
//	@Router		/v1/roles [get].
func (h *RolesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	roles, err := h.RoleService.List(ctx)
	if err != nil {
		log.Error("failed to list roles", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	out := make([]roleResponse, len(roles))
	for i, role := range roles {
		out[i] = roleResponse{ID: role.ID, Name: role.Name}
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleGet godoc
//
//	@Summary	Get a role
//	@Tags		Roles
//	@Produce	json
//	@Param		id	path		string	true	"Role ID"
//	@Success	200	{object}	roleResponse
//	@Failure	404	{object}	httpx.APIError
//	@Security	BearerAuth
//	@Router		/v1/roles/{id} [get].
func (h *RolesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	role, err := h.RoleService.Get(ctx, r.PathValue("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "Role not found")
			return
		}
		log.Error("failed to get role", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, roleResponse{ID: role.ID, Name: role.Name})
}

// HandleUpdate godoc
//
//	@Summary		Rename a role
//	@Description	Renames a role to another name from the fixed role catalog.
//	@Tags			Roles
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string		true	"Role ID"
//	@Param			role	body		roleRequest	true	"New role name"
//	@Success		200		{object}	roleResponse
//	@Failure		400		{object}	httpx.APIError	"Unknown role name"
//	@Failure		404		{object}	httpx.APIError
//	@Failure		409		{object}	httpx.APIError	"Name already taken"
//	@Security		BearerAuth
//	@Router			/v1/roles/{id} [put].
func (h *RolesHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req roleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	role, err := h.RoleService.Update(ctx, r.PathValue("id"), req.Name)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			httpx.WriteError(w, http.StatusBadRequest, "Invalid role", err.Error())
		case errors.Is(err, store.ErrNotFound):
			httpx.WriteError(w, http.StatusNotFound, "Role not found")
		case errors.Is(err, store.ErrAlreadyExists):
			httpx.WriteError(w, http.StatusConflict, "Role already exists")
		default:
			log.Error("failed to update role", "error", err)
			httpx.WriteError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, roleResponse{ID: role.ID, Name: role.Name})
}

// HandleDelete godoc
//
//	@Summary	Delete a role
//	@Tags		Roles
//	@Produce	json
//	@Param		id	path	string	true	"Role ID"
//	@Success	204
//	@Failure	404	{object}	httpx.APIError
//	@Security	BearerAuth
//	@Router		/v1/roles/{id} [delete].
func (h *RolesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	if err := h.RoleService.Delete(ctx, r.PathValue("id")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "Role not found")
			return
		}
		log.Error("failed to delete role", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
