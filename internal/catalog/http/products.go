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

type ProductsHandler struct {
	ProductService *service.ProductService
}

type productRequest struct {
	SKU         string     `json:"sku"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Price       float64    `json:"price"`
	Weight      float64    `json:"weight"`
	WeightUnit  string     `json:"weight_unit"`
	Brand       string     `json:"brand"`
	CategoryID  string     `json:"category_id"`
	Inventory   int        `json:"inventory"`
	ExpiryDate  *time.Time `json:"expiry_date,omitempty"`
}

func (req productRequest) toInput() service.ProductInput {
	return service.ProductInput{
		SKU:         req.SKU,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Weight:      req.Weight,
		WeightUnit:  req.WeightUnit,
		Brand:       req.Brand,
		CategoryID:  req.CategoryID,
		Inventory:   req.Inventory,
		ExpiryDate:  req.ExpiryDate,
	}
}

type productResponse struct {
	ID          string     `json:"id"`
	SKU         string     `json:"sku"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Price       float64    `json:"price"`
	Weight      float64    `json:"weight,omitempty"`
	WeightUnit  string     `json:"weight_unit,omitempty"`
	Brand       string     `json:"brand,omitempty"`
	CategoryID  string     `json:"category_id"`
	OwnerID     string     `json:"owner_id"`
	Inventory   int        `json:"inventory"`
	ExpiryDate  *time.Time `json:"expiry_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func toProductResponse(p domain.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		SKU:         p.SKU,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Weight:      p.Weight,
		WeightUnit:  p.WeightUnit,
		Brand:       p.Brand,
		CategoryID:  p.CategoryID,
		OwnerID:     p.OwnerID,
		Inventory:   p.Inventory,
		ExpiryDate:  p.ExpiryDate,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// HandleCreate godoc
//
//	@Summary		Create a product
//	@Description	Adds a product owned by the authenticated caller. The SKU must be unique
//	@Description	and the category must already exist.
//	@Tags			Products
//	@Accept			json
//	@Produce		json
//	@Param			product	body		productRequest	true	"New product"
//	@Success		201		{object}	productResponse
//	@Failure		400		{object}	httpx.APIError
//	@Failure		409		{object}	httpx.APIError	"SKU already in use"
//	@Security		BearerAuth
//	@Router			/v1/products [post].
func (h *ProductsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	p, ok := PrincipalFromContext(ctx)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	prod, err := h.ProductService.Create(ctx, p.UserID, req.toInput())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			httpx.WriteError(w, http.StatusBadRequest, "Invalid product", err.Error())
		case errors.Is(err, store.ErrAlreadyExists):
			httpx.WriteError(w, http.StatusConflict, "SKU already in use")
		default:
			log.Error("failed to create product", "error", err)
			httpx.WriteError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	log.Info("product created", "product_id", prod.ID, "sku", prod.SKU, "owner_id", prod.OwnerID)
	httpx.WriteJSON(w, http.StatusCreated, toProductResponse(prod))
}

// HandleList godoc
//
//	@Summary	List products
//	@Tags		Products
//	@Produce	json
//	@Success	200	{array}	productResponse
//	@Security	BearerAuth
//	@Router		/v1/products [get].
func (h *ProductsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	prods, err := h.ProductService.List(ctx)
	if err != nil {
		log.Error("failed to list products", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	out := make([]productResponse, len(prods))
	for i, p := range prods {
		out[i] = toProductResponse(p)
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleGet godoc
//
//	@Summary	Get a product
//	@Tags		Products
//	@Produce	json
//	@Param		id	path		string	true	"Product ID"
//	@Success	200	{object}	productResponse
//	@Failure	404	{object}	httpx.APIError
//	@Security	BearerAuth
//	@Router		/v1/products/{id} [get].
func (h *ProductsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	prod, err := h.ProductService.Get(ctx, r.PathValue("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "Product not found")
			return
		}
		log.Error("failed to get product", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toProductResponse(prod))
}

// HandleUpdate godoc
//
//	@Summary	Update a product
//	@Tags		Products
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string			true	"Product ID"
//	@Param		product	body		productRequest	true	"Updated fields"
//	@Success	200		{object}	productResponse
//	@Failure	400		{object}	httpx.APIError
//	@Failure	404		{object}	httpx.APIError
//	@Security	BearerAuth
//	@Router		/v1/products/{id} [put].
func (h *ProductsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	prod, err := h.ProductService.Update(ctx, r.PathValue("id"), req.toInput())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			httpx.WriteError(w, http.StatusBadRequest, "Invalid product", err.Error())
		case errors.Is(err, store.ErrNotFound):
			httpx.WriteError(w, http.StatusNotFound, "Product not found")
		case errors.Is(err, store.ErrAlreadyExists):
			httpx.WriteError(w, http.StatusConflict, "SKU already in use")
		default:
			log.Error("failed to update product", "error", err)
			httpx.WriteError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toProductResponse(prod))
}

// HandleDelete godoc
//
//	@Summary	Delete a product
//	@Tags		Products
//	@Param		id	path	string	true	"Product ID"
//	@Success	204
//	@Failure	404	{object}	httpx.APIError
//	@Security	BearerAuth
//	@Router		/v1/products/{id} [delete].
func (h *ProductsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	if err := h.ProductService.Delete(ctx, r.PathValue("id")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "Product not found")
			return
		}
		log.Error("failed to delete product", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
