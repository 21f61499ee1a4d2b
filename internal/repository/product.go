package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/nutallis/storefront/internal/domain/money"
	"github.com/nutallis/storefront/internal/domain/product"
)

const (
	productColumns = `id, name, slug, description, COALESCE(category_id::text, ''),
		price_per_kg_cents, cost_per_kg_cents, margin_pct, stock_grams,
		reorder_point_grams, image_url, active`

	listProductsSQL = `SELECT ` + productColumns + ` FROM products ORDER BY name`

	getProductByIDSQL = `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	getProductsByIDsSQL = `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1)`

	createProductSQL = `INSERT INTO products (name, slug, description, category_id,
		price_per_kg_cents, cost_per_kg_cents, margin_pct, stock_grams,
		reorder_point_grams, image_url, active)
		VALUES ($1, $2, $3, NULLIF($4, '')::uuid, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`

	updateProductSQL = `UPDATE products SET name = $2, slug = $3, description = $4,
		category_id = NULLIF($5, '')::uuid, price_per_kg_cents = $6,
		cost_per_kg_cents = $7, margin_pct = $8, stock_grams = $9,
		reorder_point_grams = $10, image_url = $11, active = $12
		WHERE id = $1`

	deleteProductSQL = `DELETE FROM products WHERE id = $1`

	listCategoriesSQL = `SELECT id, name, slug, description, sort_order, active
		FROM categories ORDER BY sort_order, name`

	createCategorySQL = `INSERT INTO categories (name, slug, description, sort_order, active)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`

	updateCategorySQL = `UPDATE categories SET name = $2, slug = $3, description = $4,
		sort_order = $5, active = $6 WHERE id = $1`

	deleteCategorySQL = `DELETE FROM categories WHERE id = $1`
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// List returns the full catalog ordered by name.
func (r *ProductRepository) List(ctx context.Context) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, listProductsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// GetByID returns a single product by its identifier.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*product.Product, error) {
	rows, err := r.pool.Query(ctx, getProductByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}
	return &p, nil
}

// GetByIDs returns products matching any of the given IDs.
func (r *ProductRepository) GetByIDs(ctx context.Context, ids []string) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, getProductsByIDsSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("getting products by ids: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// Create inserts a product and fills in its generated ID.
func (r *ProductRepository) Create(ctx context.Context, p *product.Product) error {
	err := r.pool.QueryRow(ctx, createProductSQL,
		p.Name, p.Slug, p.Description, p.CategoryID,
		int64(p.PricePerKiloCents), int64(p.CostPerKiloCents), p.MarginPct,
		p.StockGrams, p.ReorderPointGrams, p.ImageURL, p.Active,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("creating product %q: %w", p.Slug, err)
	}
	return nil
}

// Update rewrites all mutable columns of a product.
func (r *ProductRepository) Update(ctx context.Context, p *product.Product) error {
	tag, err := r.pool.Exec(ctx, updateProductSQL,
		p.ID, p.Name, p.Slug, p.Description, p.CategoryID,
		int64(p.PricePerKiloCents), int64(p.CostPerKiloCents), p.MarginPct,
		p.StockGrams, p.ReorderPointGrams, p.ImageURL, p.Active,
	)
	if err != nil {
		return fmt.Errorf("updating product %q: %w", p.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrNotFound
	}
	return nil
}

// Delete removes a product.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, deleteProductSQL, id)
	if err != nil {
		return fmt.Errorf("deleting product %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrNotFound
	}
	return nil
}

// ListCategories returns all categories in display order.
func (r *ProductRepository) ListCategories(ctx context.Context) ([]product.Category, error) {
	rows, err := r.pool.Query(ctx, listCategoriesSQL)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	return pgx.CollectRows(rows, scanCategory)
}

// CreateCategory inserts a category and fills in its generated ID.
func (r *ProductRepository) CreateCategory(ctx context.Context, c *product.Category) error {
	err := r.pool.QueryRow(ctx, createCategorySQL,
		c.Name, c.Slug, c.Description, c.SortOrder, c.Active,
	).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("creating category %q: %w", c.Slug, err)
	}
	return nil
}

// UpdateCategory rewrites a category.
func (r *ProductRepository) UpdateCategory(ctx context.Context, c *product.Category) error {
	tag, err := r.pool.Exec(ctx, updateCategorySQL,
		c.ID, c.Name, c.Slug, c.Description, c.SortOrder, c.Active,
	)
	if err != nil {
		return fmt.Errorf("updating category %q: %w", c.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrNotFound
	}
	return nil
}

// DeleteCategory removes a category.
func (r *ProductRepository) DeleteCategory(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, deleteCategorySQL, id)
	if err != nil {
		return fmt.Errorf("deleting category %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrNotFound
	}
	return nil
}

func scanProduct(row pgx.CollectableRow) (product.Product, error) {
	var (
		p         product.Product
		price     int64
		cost      int64
		marginPct decimal.Decimal
	)
	err := row.Scan(
		&p.ID, &p.Name, &p.Slug, &p.Description, &p.CategoryID,
		&price, &cost, &marginPct, &p.StockGrams,
		&p.ReorderPointGrams, &p.ImageURL, &p.Active,
	)
	p.PricePerKiloCents = money.Cents(price)
	p.CostPerKiloCents = money.Cents(cost)
	p.MarginPct = marginPct
	return p, err
}

func scanCategory(row pgx.CollectableRow) (product.Category, error) {
	var c product.Category
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.SortOrder, &c.Active)
	return c, err
}
