package coupon

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/nutallis/storefront/internal/domain/money"
)

var hundred = decimal.NewFromInt(100)

// Validate runs the six eligibility checks in their fixed order and, when
// all pass, computes the discount amount for the given subtotal. It never
// mutates usage counters; those move only at settlement.
//
// The returned amount is non-negative but may exceed the subtotal; the
// order-total aggregation clamps it, since only the aggregator knows the
// full total shape.
func Validate(c *Coupon, now time.Time, subtotalCents money.Cents) (*Discount, error) {
	if c == nil {
		return nil, ErrNotFound
	}
	if !c.Active {
		return nil, ErrInactive
	}
	if c.ValidFrom != nil && now.Before(*c.ValidFrom) {
		return nil, ErrNotYetValid
	}
	if c.ValidUntil != nil && now.After(*c.ValidUntil) {
		return nil, ErrExpired
	}
	if c.MinOrderValue > 0 && subtotalCents < c.MinOrderValue {
		return nil, ErrMinimumNotMet
	}
	if c.MaxUses > 0 && c.UsedCount >= c.MaxUses {
		return nil, ErrUsesExhausted
	}

	return &Discount{
		Code:          c.Code,
		DiscountType:  c.DiscountType,
		DiscountValue: c.DiscountValue,
		AmountCents:   discountAmount(c, subtotalCents),
		Description:   c.Description,
	}, nil
}

// discountAmount computes the raw discount in cents, rounded half up and
// floored at zero. Fixed values are stored in cents.
func discountAmount(c *Coupon, subtotalCents money.Cents) money.Cents {
	var amount decimal.Decimal
	switch c.DiscountType {
	case DiscountPercentage:
		amount = decimal.NewFromInt(int64(subtotalCents)).Mul(c.DiscountValue).Div(hundred)
	case DiscountFixed:
		amount = c.DiscountValue
	default:
		return 0
	}
	return money.Cents(amount.Round(0).IntPart()).Clamp()
}

// Validator validates a coupon code against an order subtotal.
type Validator interface {
	Validate(ctx context.Context, code string, subtotalCents money.Cents) (*Discount, error)
}

// RepoValidator implements Validator by looking up coupons in a Repository.
type RepoValidator struct {
	repo Repository
	now  func() time.Time
}

// NewRepoValidator creates a RepoValidator backed by the given Repository.
func NewRepoValidator(repo Repository) *RepoValidator {
	return &RepoValidator{repo: repo, now: time.Now}
}

// Validate normalizes the code, loads the coupon, and delegates to Validate.
// A missing row surfaces as ErrNotFound; repository failures are wrapped.
func (v *RepoValidator) Validate(ctx context.Context, code string, subtotalCents money.Cents) (*Discount, error) {
	code = strings.ToUpper(strings.TrimSpace(code))

	c, err := v.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "lookup coupon")
	}

	return Validate(c, v.now(), subtotalCents)
}
