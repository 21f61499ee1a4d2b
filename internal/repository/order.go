package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nutallis/storefront/internal/domain/money"
	"github.com/nutallis/storefront/internal/domain/order"
)

const (
	orderColumns = `id, status, items, subtotal_cents, discount_cents,
		shipping_cents, total_cents, coupon_code, address, created_at`

	createOrderSQL = `INSERT INTO orders (id, status, items, subtotal_cents,
		discount_cents, shipping_cents, total_cents, coupon_code, address)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	getOrderByIDSQL = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	listOrdersSQL = `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC`

	markDispatchedSQL = `UPDATE orders SET status = 'dispatched', shipping_cents = $2
		WHERE id = $1`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists a new order. Line items and the address snapshot are
// serialized to JSON for storage in JSONB columns.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("marshaling order items: %w", err)
	}
	addressJSON, err := json.Marshal(o.Address)
	if err != nil {
		return fmt.Errorf("marshaling address snapshot: %w", err)
	}

	_, err = r.pool.Exec(ctx, createOrderSQL,
		o.ID, string(o.Status), itemsJSON,
		int64(o.SubtotalCents), int64(o.DiscountCents),
		int64(o.ShippingCents), int64(o.TotalCents),
		o.CouponCode, addressJSON,
	)
	if err != nil {
		return fmt.Errorf("creating order %q: %w", o.ID, err)
	}
	return nil
}

// GetByID returns a single order by its identifier.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, getOrderByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}
	return &o, nil
}

// List returns all orders, newest first.
func (r *OrderRepository) List(ctx context.Context) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersSQL)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	return pgx.CollectRows(rows, scanOrder)
}

// MarkDispatched moves the order to Dispatched and records the final
// shipping fee chosen at dispatch time.
func (r *OrderRepository) MarkDispatched(ctx context.Context, id string, shippingCents money.Cents) error {
	tag, err := r.pool.Exec(ctx, markDispatchedSQL, id, int64(shippingCents))
	if err != nil {
		return fmt.Errorf("marking order %q dispatched: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o           order.Order
		status      string
		itemsJSON   []byte
		addressJSON []byte
		subtotal    int64
		discount    int64
		shipping    int64
		total       int64
	)
	err := row.Scan(
		&o.ID, &status, &itemsJSON, &subtotal, &discount,
		&shipping, &total, &o.CouponCode, &addressJSON, &o.CreatedAt,
	)
	if err != nil {
		return o, err
	}

	if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
		return o, fmt.Errorf("unmarshaling order items: %w", err)
	}
	if err := json.Unmarshal(addressJSON, &o.Address); err != nil {
		return o, fmt.Errorf("unmarshaling address snapshot: %w", err)
	}

	o.Status = order.Status(status)
	o.SubtotalCents = money.Cents(subtotal)
	o.DiscountCents = money.Cents(discount)
	o.ShippingCents = money.Cents(shipping)
	o.TotalCents = money.Cents(total)
	return o, nil
}
