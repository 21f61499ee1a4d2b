package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nutallis/storefront/internal/domain/cart"
)

const (
	listCartItemsSQL = `SELECT id, cart_token, product_id, weight_grams
		FROM cart_items WHERE cart_token = $1 ORDER BY created_at`

	// Adding the same product again accumulates weight instead of
	// duplicating the line.
	addCartItemSQL = `INSERT INTO cart_items (cart_token, product_id, weight_grams)
		VALUES ($1, $2, $3)
		ON CONFLICT (cart_token, product_id)
		DO UPDATE SET weight_grams = cart_items.weight_grams + EXCLUDED.weight_grams
		RETURNING id`

	updateCartWeightSQL = `UPDATE cart_items SET weight_grams = $3
		WHERE cart_token = $1 AND id = $2`

	removeCartItemSQL = `DELETE FROM cart_items WHERE cart_token = $1 AND id = $2`

	clearCartSQL = `DELETE FROM cart_items WHERE cart_token = $1`
)

var _ cart.Repository = (*CartRepository)(nil)

// CartRepository implements cart.Repository backed by PostgreSQL.
type CartRepository struct {
	pool *pgxpool.Pool
}

// NewCartRepository returns a CartRepository that uses the given pool.
func NewCartRepository(pool *pgxpool.Pool) *CartRepository {
	return &CartRepository{pool: pool}
}

// List returns the cart's items in insertion order.
func (r *CartRepository) List(ctx context.Context, cartToken string) ([]cart.Item, error) {
	rows, err := r.pool.Query(ctx, listCartItemsSQL, cartToken)
	if err != nil {
		return nil, fmt.Errorf("listing cart items: %w", err)
	}
	return pgx.CollectRows(rows, scanCartItem)
}

// Add inserts a line or accumulates weight onto an existing one.
func (r *CartRepository) Add(ctx context.Context, item *cart.Item) error {
	err := r.pool.QueryRow(ctx, addCartItemSQL,
		item.CartToken, item.ProductID, item.WeightGrams,
	).Scan(&item.ID)
	if err != nil {
		return fmt.Errorf("adding cart item: %w", err)
	}
	return nil
}

// UpdateWeight sets the weight on an existing cart line.
func (r *CartRepository) UpdateWeight(ctx context.Context, cartToken, itemID string, weightGrams int64) error {
	tag, err := r.pool.Exec(ctx, updateCartWeightSQL, cartToken, itemID, weightGrams)
	if err != nil {
		return fmt.Errorf("updating cart item %q: %w", itemID, err)
	}
	if tag.RowsAffected() == 0 {
		return cart.ErrItemNotFound
	}
	return nil
}

// Remove deletes a cart line.
func (r *CartRepository) Remove(ctx context.Context, cartToken, itemID string) error {
	tag, err := r.pool.Exec(ctx, removeCartItemSQL, cartToken, itemID)
	if err != nil {
		return fmt.Errorf("removing cart item %q: %w", itemID, err)
	}
	if tag.RowsAffected() == 0 {
		return cart.ErrItemNotFound
	}
	return nil
}

// Clear empties the cart.
func (r *CartRepository) Clear(ctx context.Context, cartToken string) error {
	_, err := r.pool.Exec(ctx, clearCartSQL, cartToken)
	if err != nil {
		return fmt.Errorf("clearing cart: %w", err)
	}
	return nil
}

func scanCartItem(row pgx.CollectableRow) (cart.Item, error) {
	var it cart.Item
	err := row.Scan(&it.ID, &it.CartToken, &it.ProductID, &it.WeightGrams)
	return it, err
}
