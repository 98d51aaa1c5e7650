package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/cataloghq/catalog/internal/catalog/domain"
	"github.com/cataloghq/catalog/internal/catalog/store"
	"github.com/cataloghq/catalog/pkg/idx"
)

type CategoryService struct {
	Store store.Store
}

type CategoryInput struct {
	Name        string
	Description string
}

func (s *CategoryService) Create(ctx context.Context, in CategoryInput) (domain.Category, error) {
	if strings.TrimSpace(in.Name) == "" {
		return domain.Category{}, fmt.Errorf("%w: category name is required", ErrInvalidInput)
	}

	c := domain.Category{
		ID:          idx.New().String(),
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
	}
	if err := s.Store.Categories().Create(ctx, c); err != nil {
		return domain.Category{}, err
	}
	return c, nil
}

func (s *CategoryService) Get(ctx context.Context, id string) (domain.Category, error) {
	return s.Store.Categories().GetByID(ctx, id)
}

func (s *CategoryService) List(ctx context.Context) ([]domain.Category, error) {
	return s.Store.Categories().List(ctx)
}

func (s *CategoryService) Update(ctx context.Context, id string, in CategoryInput) (domain.Category, error) {
	if strings.TrimSpace(in.Name) == "" {
		return domain.Category{}, fmt.Errorf("%w: category name is required", ErrInvalidInput)
	}

	c, err := s.Store.Categories().GetByID(ctx, id)
	if err != nil {
		return domain.Category{}, err
	}

	c.Name = strings.TrimSpace(in.Name)
	c.Description = in.Description
	if err := s.Store.Categories().Update(ctx, c); err != nil {
		return domain.Category{}, err
	}
	return c, nil
}

func (s *CategoryService) Delete(ctx context.Context, id string) error {
	return s.Store.Categories().Delete(ctx, id)
}
