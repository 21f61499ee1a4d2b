package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/nutallis/storefront/internal/domain/coupon"
	"github.com/nutallis/storefront/internal/domain/money"
)

const (
	couponColumns = `id, code, description, discount_type, discount_value,
		min_order_value_cents, max_uses, used_count, valid_from, valid_until, is_active`

	getCouponByCodeSQL = `SELECT ` + couponColumns + `
		FROM coupons WHERE UPPER(code) = UPPER($1)`

	listCouponsSQL = `SELECT ` + couponColumns + ` FROM coupons ORDER BY code`

	createCouponSQL = `INSERT INTO coupons (code, description, discount_type, discount_value,
		min_order_value_cents, max_uses, valid_from, valid_until, is_active)
		VALUES (UPPER($1), $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`

	updateCouponSQL = `UPDATE coupons SET code = UPPER($2), description = $3,
		discount_type = $4, discount_value = $5, min_order_value_cents = $6,
		max_uses = $7, valid_from = $8, valid_until = $9, is_active = $10
		WHERE id = $1`

	deleteCouponSQL = `DELETE FROM coupons WHERE id = $1`

	incrementUsedCountSQL = `UPDATE coupons SET used_count = used_count + 1
		WHERE UPPER(code) = UPPER($1)`
)

var _ coupon.Repository = (*CouponRepository)(nil)

// CouponRepository implements coupon.Repository backed by PostgreSQL.
type CouponRepository struct {
	pool *pgxpool.Pool
}

// NewCouponRepository returns a CouponRepository that uses the given pool.
func NewCouponRepository(pool *pgxpool.Pool) *CouponRepository {
	return &CouponRepository{pool: pool}
}

// FindByCode looks up a coupon by its code (case-insensitive).
// Returns coupon.ErrNotFound when no matching row exists; the active flag
// is returned as stored so the validator can report Inactive distinctly.
func (r *CouponRepository) FindByCode(ctx context.Context, code string) (*coupon.Coupon, error) {
	rows, err := r.pool.Query(ctx, getCouponByCodeSQL, code)
	if err != nil {
		return nil, fmt.Errorf("finding coupon by code %q: %w", code, err)
	}

	c, err := pgx.CollectExactlyOneRow(rows, scanCoupon)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, coupon.ErrNotFound
		}
		return nil, fmt.Errorf("finding coupon by code %q: %w", code, err)
	}
	return &c, nil
}

// List returns all coupons ordered by code.
func (r *CouponRepository) List(ctx context.Context) ([]coupon.Coupon, error) {
	rows, err := r.pool.Query(ctx, listCouponsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing coupons: %w", err)
	}
	return pgx.CollectRows(rows, scanCoupon)
}

// Create inserts a coupon (code stored uppercase) and fills in its ID.
func (r *CouponRepository) Create(ctx context.Context, c *coupon.Coupon) error {
	err := r.pool.QueryRow(ctx, createCouponSQL,
		c.Code, c.Description, string(c.DiscountType), c.DiscountValue,
		int64(c.MinOrderValue), c.MaxUses, c.ValidFrom, c.ValidUntil, c.Active,
	).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("creating coupon %q: %w", c.Code, err)
	}
	return nil
}

// Update rewrites a coupon's rule columns. used_count is deliberately not
// writable here; it moves only through IncrementUsedCount.
func (r *CouponRepository) Update(ctx context.Context, c *coupon.Coupon) error {
	tag, err := r.pool.Exec(ctx, updateCouponSQL,
		c.ID, c.Code, c.Description, string(c.DiscountType), c.DiscountValue,
		int64(c.MinOrderValue), c.MaxUses, c.ValidFrom, c.ValidUntil, c.Active,
	)
	if err != nil {
		return fmt.Errorf("updating coupon %q: %w", c.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return coupon.ErrNotFound
	}
	return nil
}

// Delete removes a coupon.
func (r *CouponRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, deleteCouponSQL, id)
	if err != nil {
		return fmt.Errorf("deleting coupon %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return coupon.ErrNotFound
	}
	return nil
}

// IncrementUsedCount atomically bumps the usage counter for a coupon code.
func (r *CouponRepository) IncrementUsedCount(ctx context.Context, code string) error {
	_, err := r.pool.Exec(ctx, incrementUsedCountSQL, code)
	if err != nil {
		return fmt.Errorf("incrementing used count for coupon %q: %w", code, err)
	}
	return nil
}

func scanCoupon(row pgx.CollectableRow) (coupon.Coupon, error) {
	var (
		c             coupon.Coupon
		discountType  string
		discountValue decimal.Decimal
		minOrder      int64
		validFrom     *time.Time
		validUntil    *time.Time
	)
	err := row.Scan(
		&c.ID, &c.Code, &c.Description, &discountType, &discountValue,
		&minOrder, &c.MaxUses, &c.UsedCount, &validFrom, &validUntil, &c.Active,
	)
	c.DiscountType = coupon.DiscountType(discountType)
	c.DiscountValue = discountValue
	c.MinOrderValue = money.Cents(minOrder)
	c.ValidFrom = validFrom
	c.ValidUntil = validUntil
	return c, err
}
