package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cataloghq/catalog/internal/catalog/domain"
	"github.com/cataloghq/catalog/internal/catalog/store"
	"github.com/cataloghq/catalog/pkg/cryptox"
	"github.com/cataloghq/catalog/pkg/idx"
	"github.com/cataloghq/catalog/pkg/slogx"
)

// ErrInvalidInput wraps request-level validation failures. Handlers map it to
// 400 with the wrapped message as detail.
var ErrInvalidInput = errors.New("invalid_input")

type UserService struct {
	Store store.Store
}

// CreateUserInput carries the fields a new account needs. Roles are matched
// against the application role catalog case-insensitively; unknown names are
// dropped.
type CreateUserInput struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
	Roles           []string
}

// Create validates the input and persists the user with its role
// assignments in one transaction. store.ErrAlreadyExists surfaces when the
// email is taken.
func (s *UserService) Create(ctx context.Context, in CreateUserInput) (domain.User, error) {
	l := slogx.FromContext(ctx)

	if strings.TrimSpace(in.Email) == "" {
		return domain.User{}, fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	if in.Password == "" || in.ConfirmPassword == "" {
		return domain.User{}, fmt.Errorf("%w: password and confirmation are required", ErrInvalidInput)
	}
	if in.Password != in.ConfirmPassword {
		return domain.User{}, fmt.Errorf("%w: password and confirmation do not match", ErrInvalidInput)
	}

	roleNames := matchAppRoles(in.Roles)
	if len(roleNames) == 0 {
		return domain.User{}, fmt.Errorf("%w: at least one valid role is required", ErrInvalidInput)
	}

	hash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		return domain.User{}, err
	}

	user := domain.User{
		ID:           idx.New().String(),
		Name:         strings.TrimSpace(in.Name),
		Email:        strings.TrimSpace(in.Email),
		PasswordHash: hash,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		for _, name := range roleNames {
			role, err := ensureRole(ctx, tx, name)
			if err != nil {
				return err
			}
			user.Roles = append(user.Roles, role)
		}
		return tx.Users().Create(ctx, user)
	})
	if err != nil {
		return domain.User{}, err
	}

	l.Info("user created", "email", user.Email, "roles", roleNames)
	return user, nil
}

// List returns all users, newest first.
func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	return s.Store.Users().List(ctx)
}

// GetByEmail returns the user for the given identity, e.g. the caller's own
// profile.
func (s *UserService) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return s.Store.Users().GetByEmail(ctx, email)
}

// matchAppRoles filters requested names to the application role catalog,
// returning canonical spellings without duplicates.
func matchAppRoles(requested []string) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, name := range requested {
		for _, appRole := range domain.AppRoles() {
			if !strings.EqualFold(appRole, name) {
				continue
			}
			if _, ok := seen[appRole]; !ok {
				seen[appRole] = struct{}{}
				out = append(out, appRole)
			}
		}
	}
	return out
}

// ensureRole fetches the named role, creating it on first use.
func ensureRole(ctx context.Context, tx store.Tx, name string) (domain.Role, error) {
	role, err := tx.Roles().GetByName(ctx, name)
	if err == nil {
		return role, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return domain.Role{}, err
	}

	role = domain.Role{ID: idx.New().String(), Name: name}
	if err := tx.Roles().Create(ctx, role); err != nil {
		return domain.Role{}, err
	}
	return role, nil
}
