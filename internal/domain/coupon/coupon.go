// Package coupon implements discount-code eligibility rules and discount
// calculation for checkout subtotals.
package coupon

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/nutallis/storefront/internal/domain/money"
)

// DiscountType enumerates the supported coupon discount strategies.
type DiscountType string

const (
	// DiscountPercentage applies a percentage of the order subtotal.
	DiscountPercentage DiscountType = "percentage"
	// DiscountFixed subtracts a fixed amount of cents.
	DiscountFixed DiscountType = "fixed"
)

// Validation failures, in check order. The validator short-circuits on the
// first failing check so user-facing messages stay specific.
var (
	ErrNotFound      = errors.New("coupon not found")
	ErrInactive      = errors.New("coupon inactive")
	ErrNotYetValid   = errors.New("coupon not yet valid")
	ErrExpired       = errors.New("coupon expired")
	ErrMinimumNotMet = errors.New("order below coupon minimum")
	ErrUsesExhausted = errors.New("coupon usage limit reached")
)

// Coupon is a stored discount code with eligibility constraints.
// Codes are stored uppercase; lookups are case-insensitive.
type Coupon struct {
	ID            string
	Code          string
	Description   string
	DiscountType  DiscountType
	DiscountValue decimal.Decimal
	MinOrderValue money.Cents
	MaxUses       int
	UsedCount     int
	ValidFrom     *time.Time
	ValidUntil    *time.Time
	Active        bool
}

// Discount is the outcome of a successful validation.
type Discount struct {
	Code          string
	DiscountType  DiscountType
	DiscountValue decimal.Decimal
	AmountCents   money.Cents
	Description   string
}

// Repository provides coupon persistence. FindByCode must match
// case-insensitively and return ErrNotFound when no row exists; inactive
// rows are returned so validation can report them distinctly.
type Repository interface {
	FindByCode(ctx context.Context, code string) (*Coupon, error)
	List(ctx context.Context) ([]Coupon, error)
	Create(ctx context.Context, c *Coupon) error
	Update(ctx context.Context, c *Coupon) error
	Delete(ctx context.Context, id string) error
	IncrementUsedCount(ctx context.Context, code string) error
}
