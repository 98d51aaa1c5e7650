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

type CategoriesHandler struct {
	CategoryService *service.CategoryService
}

type categoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type categoryResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toCategoryResponse(c domain.Category) categoryResponse {
	return categoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// HandleCreate godoc
//
//	@Summary	Create a category
//	@Tags		Categories
//	@Accept		json
//	@Produce	json
//	@Param		category	body		categoryRequest	true	"New category"
//	@Success	201			{object}	categoryResponse
//	@Failure	400			{object}	httpx.APIError
//	@Security	BearerAuth
//	@Router		/v1/categories [post].
func (h *CategoriesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	cat, err := h.CategoryService.Create(ctx, service.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			httpx.WriteError(w, http.StatusBadRequest, "Invalid category", err.Error())
		case errors.Is(err, store.ErrAlreadyExists):
			httpx.WriteError(w, http.StatusConflict, "Category already exists")
		default:
			log.Error("failed to create category", "error", err)
			httpx.WriteError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toCategoryResponse(cat))
}

// HandleList godoc
//
//	@Summary	List categories
//	@Tags		Categories
//	@Produce	json
//	@Success	200	{array}	categoryResponse
//	@Security	BearerAuth
//	@Router		/v1/categories [get].
func (h *CategoriesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	cats, err := h.CategoryService.List(ctx)
	if err != nil {
		log.Error("failed to list categories", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	out := make([]categoryResponse, len(cats))
	for i, c := range cats {
		out[i] = toCategoryResponse(c)
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleGet godoc
//
//	@Summary	Get a category
//	@Tags		Categories
//	@Produce	json
//	@Param		id	path		string	true	"Category ID"
//	@Success	200	{object}	categoryResponse
//	@Failure	404	{object}	httpx.APIError
//	@Security	BearerAuth
//	@Router		/v1/categories/{id} [get].
func (h *CategoriesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	cat, err := h.CategoryService.Get(ctx, r.PathValue("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "Category not found")
			return
		}
		log.Error("failed to get category", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toCategoryResponse(cat))
}

// HandleUpdate godoc
//
//	@Summary	Update a category
//	@Tags		Categories
//	@Accept		json
//	@Produce	json
//	@Param		id			path		string			true	"Category ID"
//	@Param		category	body		categoryRequest	true	"Updated fields"
//	@Success	200			{object}	categoryResponse
//	@Failure	400			{object}	httpx.APIError
//	@Failure	404			{object}	httpx.APIError
//	@Security	BearerAuth
//	@Router		/v1/categories/{id} [put].
func (h *CategoriesHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	cat, err := h.CategoryService.Update(ctx, r.PathValue("id"), service.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			httpx.WriteError(w, http.StatusBadRequest, "Invalid category", err.Error())
		case errors.Is(err, store.ErrNotFound):
			httpx.WriteError(w, http.StatusNotFound, "Category not found")
		case errors.Is(err, store.ErrAlreadyExists):
			httpx.WriteError(w, http.StatusConflict, "Category already exists")
		default:
			log.Error("failed to update category", "error", err)
			httpx.WriteError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toCategoryResponse(cat))
}

// HandleDelete godoc
//
//	@Summary	Delete a category
//	@Tags		Categories
//	@Param		id	path	string	true	"Category ID"
//	@Success	204
//	@Failure	404	{object}	httpx.APIError
//	@Security	BearerAuth
//	@Router		/v1/categories/{id} [delete].
func (h *CategoriesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	if err := h.CategoryService.Delete(ctx, r.PathValue("id")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "Category not found")
			return
		}
		log.Error("failed to delete category", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
