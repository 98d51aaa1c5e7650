package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/cataloghq/catalog/internal/catalog/domain"
	"github.com/cataloghq/catalog/internal/catalog/store"
	"github.com/cataloghq/catalog/pkg/idx"
)

type RoleService struct {
	Store store.Store
}

// canonicalRoleName resolves a submitted name against the application role
// catalog, whatever casing was used. Names outside the catalog are rejected;
// authorization decisions only understand the known set.
func canonicalRoleName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if !domain.IsAppRole(name) {
		return "", fmt.Errorf("%w: unknown role %q", ErrInvalidInput, name)
	}
	for _, appRole := range domain.AppRoles() {
		if strings.EqualFold(appRole, name) {
			return appRole, nil
		}
	}
	return name, nil
}

// Create adds a role from the application catalog.
func (s *RoleService) Create(ctx context.Context, name string) (domain.Role, error) {
	name, err := canonicalRoleName(name)
	if err != nil {
		return domain.Role{}, err
	}

	role := domain.Role{ID: idx.New().String(), Name: name}
	if err := s.Store.Roles().Create(ctx, role); err != nil {
		return domain.Role{}, err
	}
	return role, nil
}

func (s *RoleService) List(ctx context.Context) ([]domain.Role, error) {
	return s.Store.Roles().List(ctx)
}

func (s *RoleService) Get(ctx context.Context, id string) (domain.Role, error) {
	return s.Store.Roles().GetByID(ctx, id)
}

func (s *RoleService) GetByName(ctx context.Context, name string) (domain.Role, error) {
	return s.Store.Roles().GetByName(ctx, name)
}

// Update renames a role to another name from the application catalog.
func (s *RoleService) Update(ctx context.Context, id, name string) (domain.Role, error) {
	name, err := canonicalRoleName(name)
	if err != nil {
		return domain.Role{}, err
	}

	role, err := s.Store.Roles().GetByID(ctx, id)
	if err != nil {
		return domain.Role{}, err
	}

	role.Name = name
	if err := s.Store.Roles().Update(ctx, role); err != nil {
		return domain.Role{}, err
	}
	return role, nil
}

func (s *RoleService) Delete(ctx context.Context, id string) error {
	return s.Store.Roles().Delete(ctx, id)
}
