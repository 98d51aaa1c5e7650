package service

import (
	"context"
	"testing"

	"github.com/cataloghq/catalog/internal/catalog/domain"
	"github.com/cataloghq/catalog/internal/catalog/store"
	"github.com/cataloghq/catalog/internal/catalog/store/drivers/sqlite"
	"github.com/stretchr/testify/require"
)

func newRoleFixture(t *testing.T) *RoleService {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	return &RoleService{Store: st}
}

func TestRoleCreateRejectsUnknownNames(t *testing.T) {
	ctx := context.Background()
	svc := newRoleFixture(t)

	_, err := svc.Create(ctx, "ROLE_WIZARD")
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestRoleUpdateRenamesWithinCatalog(t *testing.T) {
	ctx := context.Background()
	svc := newRoleFixture(t)

	role, err := svc.Create(ctx, domain.RoleUser)
	require.NoError(t, err)

	// Lowercase submission resolves to the catalog spelling.
	updated, err := svc.Update(ctx, role.ID, "role_manager")
	require.NoError(t, err)
	require.Equal(t, role.ID, updated.ID)
	require.Equal(t, domain.RoleManager, updated.Name)

	got, err := svc.Get(ctx, role.ID)
	require.NoError(t, err)
	require.Equal(t, domain.RoleManager, got.Name)
}

func TestRoleUpdateRejectsUnknownName(t *testing.T) {
	ctx := context.Background()
	svc := newRoleFixture(t)

	role, err := svc.Create(ctx, domain.RoleUser)
	require.NoError(t, err)

	_, err = svc.Update(ctx, role.ID, "ROLE_WIZARD")
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestRoleUpdateMissingRole(t *testing.T) {
	ctx := context.Background()
	svc := newRoleFixture(t)

	_, err := svc.Update(ctx, "missing-id", domain.RoleAdmin)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestRoleUpdateDuplicateName(t *testing.T) {
	ctx := context.Background()
	svc := newRoleFixture(t)

	_, err := svc.Create(ctx, domain.RoleAdmin)
	require.NoError(t, err)
	role, err := svc.Create(ctx, domain.RoleUser)
	require.NoError(t, err)

	_, err = svc.Update(ctx, role.ID, domain.RoleAdmin)
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}
