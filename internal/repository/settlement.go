package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nutallis/storefront/internal/domain/settlement"
)

const (
	transitionToPaidSQL = `UPDATE orders SET status = 'paid'
		WHERE id = $1 AND status = 'pending'`

	// GREATEST keeps the clamp inside the store so concurrent settlements
	// on the same product cannot race it below zero.
	decrementStockSQL = `UPDATE products
		SET stock_grams = GREATEST(stock_grams - $2, 0)
		WHERE id = $1`

	upsertFinanceBoxSQL = `INSERT INTO finance_boxes (order_id, box_key, percent_bps, amount_cents)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (order_id, box_key)
		DO UPDATE SET percent_bps = EXCLUDED.percent_bps,
		              amount_cents = EXCLUDED.amount_cents`
)

var _ settlement.Repository = (*SettlementRepository)(nil)

// SettlementRepository implements settlement.Repository backed by PostgreSQL.
type SettlementRepository struct {
	pool *pgxpool.Pool
}

// NewSettlementRepository returns a SettlementRepository that uses the
// given pool.
func NewSettlementRepository(pool *pgxpool.Pool) *SettlementRepository {
	return &SettlementRepository{pool: pool}
}

// TransitionToPaid conditionally moves the order out of Pending. The
// conditional update is the settlement idempotency gate: it reports false
// when another delivery already settled the order.
func (r *SettlementRepository) TransitionToPaid(ctx context.Context, orderID string) (bool, error) {
	tag, err := r.pool.Exec(ctx, transitionToPaidSQL, orderID)
	if err != nil {
		return false, fmt.Errorf("transitioning order %q to paid: %w", orderID, err)
	}
	return tag.RowsAffected() > 0, nil
}

// DecrementStock subtracts the shipped weight from a product's stock,
// clamped at zero in the store.
func (r *SettlementRepository) DecrementStock(ctx context.Context, productID string, grams int64) error {
	_, err := r.pool.Exec(ctx, decrementStockSQL, productID, grams)
	if err != nil {
		return fmt.Errorf("decrementing stock for product %q: %w", productID, err)
	}
	return nil
}

// UpsertFinanceBoxes persists the allocation boxes for an order, keyed by
// (order, box) so reinsertion overwrites instead of duplicating.
func (r *SettlementRepository) UpsertFinanceBoxes(ctx context.Context, orderID string, boxes []settlement.FinanceBox) error {
	for _, b := range boxes {
		_, err := r.pool.Exec(ctx, upsertFinanceBoxSQL,
			orderID, string(b.Key), b.PercentBps, int64(b.AmountCents),
		)
		if err != nil {
			return fmt.Errorf("upserting finance box %q for order %q: %w", b.Key, orderID, err)
		}
	}
	return nil
}
