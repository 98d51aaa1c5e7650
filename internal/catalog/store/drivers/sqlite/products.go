package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/cataloghq/catalog/internal/catalog/domain"
	"github.com/cataloghq/catalog/internal/catalog/store"
)

type productsRepo struct {
	q dbtx
}

const productColumns = `id, sku, name, description, price, weight, weight_unit, brand,
	category_id, owner_id, inventory, expiry_date, created_at, updated_at`

func (r *productsRepo) GetByID(ctx context.Context, id string) (domain.Product, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = ?`, id)
	return scanProduct(row)
}

func (r *productsRepo) GetBySKU(ctx context.Context, sku string) (domain.Product, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE sku = ?`, sku)
	return scanProduct(row)
}

func (r *productsRepo) Create(ctx context.Context, p domain.Product) error {
	now := time.Now().UTC()
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO products (id, sku, name, description, price, weight, weight_unit, brand,
			category_id, owner_id, inventory, expiry_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.SKU, p.Name, p.Description, p.Price, p.Weight, p.WeightUnit, p.Brand,
		p.CategoryID, p.OwnerID, p.Inventory, optionalTime(p.ExpiryDate), now, now,
	)
	return mapConstraint(err)
}

func (r *productsRepo) List(ctx context.Context) ([]domain.Product, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT `+productColumns+` FROM products ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *productsRepo) Update(ctx context.Context, p domain.Product) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE products SET sku = ?, name = ?, description = ?, price = ?, weight = ?,
			weight_unit = ?, brand = ?, category_id = ?, inventory = ?, expiry_date = ?,
			updated_at = ?
		WHERE id = ?`,
		p.SKU, p.Name, p.Description, p.Price, p.Weight,
		p.WeightUnit, p.Brand, p.CategoryID, p.Inventory, optionalTime(p.ExpiryDate),
		time.Now().UTC(), p.ID,
	)
	if err != nil {
		return mapConstraint(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *productsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func scanProduct(row rowScanner) (domain.Product, error) {
	var p domain.Product
	var expiry sql.NullTime
	err := row.Scan(
		&p.ID, &p.SKU, &p.Name, &p.Description, &p.Price, &p.Weight, &p.WeightUnit, &p.Brand,
		&p.CategoryID, &p.OwnerID, &p.Inventory, &expiry, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return domain.Product{}, mapNotFound(err)
	}
	if expiry.Valid {
		t := expiry.Time
		p.ExpiryDate = &t
	}
	return p, nil
}

func optionalTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
