package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cataloghq/catalog/internal/catalog/domain"
	"github.com/cataloghq/catalog/internal/catalog/store"
	"github.com/cataloghq/catalog/pkg/idx"
)

type ProductService struct {
	Store store.Store
}

type ProductInput struct {
	SKU         string
	Name        string
	Description string
	Price       float64
	Weight      float64
	WeightUnit  string
	Brand       string
	CategoryID  string
	Inventory   int
	ExpiryDate  *time.Time
}

// Create persists a product owned by the calling user. The SKU must be
// unique and the category must exist.
func (s *ProductService) Create(ctx context.Context, ownerID string, in ProductInput) (domain.Product, error) {
	if err := validateProductInput(in); err != nil {
		return domain.Product{}, err
	}

	if _, err := s.Store.Categories().GetByID(ctx, in.CategoryID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Product{}, fmt.Errorf("%w: category %q does not exist", ErrInvalidInput, in.CategoryID)
		}
		return domain.Product{}, err
	}

	p := domain.Product{
		ID:          idx.New().String(),
		SKU:         strings.TrimSpace(in.SKU),
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       in.Price,
		Weight:      in.Weight,
		WeightUnit:  in.WeightUnit,
		Brand:       in.Brand,
		CategoryID:  in.CategoryID,
		OwnerID:     ownerID,
		Inventory:   in.Inventory,
		ExpiryDate:  in.ExpiryDate,
	}
	if err := s.Store.Products().Create(ctx, p); err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

func (s *ProductService) Get(ctx context.Context, id string) (domain.Product, error) {
	return s.Store.Products().GetByID(ctx, id)
}

func (s *ProductService) List(ctx context.Context) ([]domain.Product, error) {
	return s.Store.Products().List(ctx)
}

func (s *ProductService) Update(ctx context.Context, id string, in ProductInput) (domain.Product, error) {
	if err := validateProductInput(in); err != nil {
		return domain.Product{}, err
	}

	p, err := s.Store.Products().GetByID(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}

	if _, err := s.Store.Categories().GetByID(ctx, in.CategoryID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Product{}, fmt.Errorf("%w: category %q does not exist", ErrInvalidInput, in.CategoryID)
		}
		return domain.Product{}, err
	}

	p.SKU = strings.TrimSpace(in.SKU)
	p.Name = strings.TrimSpace(in.Name)
	p.Description = in.Description
	p.Price = in.Price
	p.Weight = in.Weight
	p.WeightUnit = in.WeightUnit
	p.Brand = in.Brand
	p.CategoryID = in.CategoryID
	p.Inventory = in.Inventory
	p.ExpiryDate = in.ExpiryDate

	if err := s.Store.Products().Update(ctx, p); err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

func (s *ProductService) Delete(ctx context.Context, id string) error {
	return s.Store.Products().Delete(ctx, id)
}

func validateProductInput(in ProductInput) error {
	switch {
	case strings.TrimSpace(in.SKU) == "":
		return fmt.Errorf("%w: sku is required", ErrInvalidInput)
	case strings.TrimSpace(in.Name) == "":
		return fmt.Errorf("%w: product name is required", ErrInvalidInput)
	case in.Price < 0:
		return fmt.Errorf("%w: price cannot be negative", ErrInvalidInput)
	case in.Inventory < 0:
		return fmt.Errorf("%w: inventory cannot be negative", ErrInvalidInput)
	case strings.TrimSpace(in.CategoryID) == "":
		return fmt.Errorf("%w: category is required", ErrInvalidInput)
	}
	return nil
}
