package sqlite

import (
	"context"
	"testing"

	"github.com/cataloghq/catalog/internal/catalog/domain"
	"github.com/cataloghq/catalog/internal/catalog/store"
	"github.com/cataloghq/catalog/pkg/idx"
	"github.com/stretchr/testify/require"
)

// seedOwnerAndCategory creates the rows a product's foreign keys point at.
func seedOwnerAndCategory(t *testing.T, st *Store) (ownerID, categoryID string) {
	t.Helper()
	ctx := context.Background()

	role := seedRole(t, st, domain.RoleManager)
	owner := domain.User{
		ID:           idx.New().String(),
		Name:         "Manager",
		Email:        "manager@example.com",
		PasswordHash: "hash",
		Roles:        []domain.Role{role},
	}
	require.NoError(t, st.Users().Create(ctx, owner))

	cat := domain.Category{ID: idx.New().String(), Name: "Beverages"}
	require.NoError(t, st.Categories().Create(ctx, cat))

	return owner.ID, cat.ID
}

func TestProductsCreateAndGet(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	ownerID, categoryID := seedOwnerAndCategory(t, st)

	p := domain.Product{
		ID:         idx.New().String(),
		SKU:        "BEV-001",
		Name:       "Sparkling Water",
		Price:      2.50,
		Weight:     330,
		WeightUnit: "ml",
		Brand:      "Acme",
		CategoryID: categoryID,
		OwnerID:    ownerID,
		Inventory:  24,
	}
	require.NoError(t, st.Products().Create(ctx, p))

	got, err := st.Products().GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, "BEV-001", got.SKU)
	require.Equal(t, ownerID, got.OwnerID)
	require.Nil(t, got.ExpiryDate)

	bySKU, err := st.Products().GetBySKU(ctx, "BEV-001")
	require.NoError(t, err)
	require.Equal(t, p.ID, bySKU.ID)
}

func TestProductsDuplicateSKU(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	ownerID, categoryID := seedOwnerAndCategory(t, st)

	p := domain.Product{
		ID:         idx.New().String(),
		SKU:        "BEV-001",
		Name:       "Sparkling Water",
		CategoryID: categoryID,
		OwnerID:    ownerID,
	}
	require.NoError(t, st.Products().Create(ctx, p))

	dup := p
	dup.ID = idx.New().String()
	err := st.Products().Create(ctx, dup)
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestProductsUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	ownerID, categoryID := seedOwnerAndCategory(t, st)

	p := domain.Product{
		ID:         idx.New().String(),
		SKU:        "BEV-001",
		Name:       "Sparkling Water",
		CategoryID: categoryID,
		OwnerID:    ownerID,
		Inventory:  10,
	}
	require.NoError(t, st.Products().Create(ctx, p))

	p.Name = "Still Water"
	p.Inventory = 5
	require.NoError(t, st.Products().Update(ctx, p))

	got, err := st.Products().GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, "Still Water", got.Name)
	require.Equal(t, 5, got.Inventory)

	require.NoError(t, st.Products().Delete(ctx, p.ID))
	require.ErrorIs(t, st.Products().Delete(ctx, p.ID), store.ErrNotFound)

	missing := p
	missing.ID = idx.New().String()
	require.ErrorIs(t, st.Products().Update(ctx, missing), store.ErrNotFound)
}
