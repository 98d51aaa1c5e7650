package service

import (
	"context"
	"testing"

	"github.com/cataloghq/catalog/internal/catalog/domain"
	"github.com/cataloghq/catalog/internal/catalog/store"
	"github.com/cataloghq/catalog/internal/catalog/store/drivers/sqlite"
	"github.com/cataloghq/catalog/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func newUserFixture(t *testing.T) *UserService {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	return &UserService{Store: st}
}

func TestCreateUserHashesPasswordAndAssignsRoles(t *testing.T) {
	ctx := context.Background()
	svc := newUserFixture(t)

	u, err := svc.Create(ctx, CreateUserInput{
		Name:            "Alice",
		Email:           "alice@example.com",
		Password:        "s3cret",
		ConfirmPassword: "s3cret",
		Roles:           []string{domain.RoleAdmin, domain.RoleUser},
	})
	require.NoError(t, err)
	require.NotEmpty(t, u.ID)
	require.ElementsMatch(t, []string{domain.RoleAdmin, domain.RoleUser}, u.RoleNames())

	// Stored hash verifies against the original password and is not the
	// password itself.
	require.NotEqual(t, "s3cret", u.PasswordHash)
	require.NoError(t, cryptox.VerifyPassword("s3cret", u.PasswordHash))
}

func TestCreateUserNormalisesRoleSpelling(t *testing.T) {
	ctx := context.Background()
	svc := newUserFixture(t)

	u, err := svc.Create(ctx, CreateUserInput{
		Name:            "Alice",
		Email:           "alice@example.com",
		Password:        "s3cret",
		ConfirmPassword: "s3cret",
		Roles:           []string{"role_admin", "ROLE_ADMIN", "made-up-role"},
	})
	require.NoError(t, err)

	// Case-insensitive match, canonical spelling, duplicates collapsed,
	// unknown names dropped.
	require.Equal(t, []string{domain.RoleAdmin}, u.RoleNames())
}

func TestCreateUserValidation(t *testing.T) {
	ctx := context.Background()
	svc := newUserFixture(t)

	t.Run("missing email", func(t *testing.T) {
		_, err := svc.Create(ctx, CreateUserInput{
			Password: "x", ConfirmPassword: "x", Roles: []string{domain.RoleUser},
		})
		require.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("password confirmation mismatch", func(t *testing.T) {
		_, err := svc.Create(ctx, CreateUserInput{
			Email: "a@example.com", Password: "x", ConfirmPassword: "y",
			Roles: []string{domain.RoleUser},
		})
		require.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("no recognised roles", func(t *testing.T) {
		_, err := svc.Create(ctx, CreateUserInput{
			Name: "Alice", Email: "a@example.com",
			Password: "x", ConfirmPassword: "x",
			Roles: []string{"nonsense"},
		})
		require.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc := newUserFixture(t)

	in := CreateUserInput{
		Name:            "Alice",
		Email:           "alice@example.com",
		Password:        "s3cret",
		ConfirmPassword: "s3cret",
		Roles:           []string{domain.RoleUser},
	}
	_, err := svc.Create(ctx, in)
	require.NoError(t, err)

	_, err = svc.Create(ctx, in)
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}
