package settlement

import (
	"context"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/nutallis/storefront/internal/domain/coupon"
	"github.com/nutallis/storefront/internal/domain/money"
	"github.com/nutallis/storefront/internal/domain/order"
)

// ErrAlreadySettled signals a redelivered payment confirmation for an order
// that already left the Pending state. Callers treat it as success so
// webhook redelivery never double-applies side effects.
var ErrAlreadySettled = errors.New("order already settled")

// Repository defines the settlement persistence operations. All mutations
// must be store-level atomic: concurrent settlements across orders can touch
// the same product row.
type Repository interface {
	// TransitionToPaid conditionally moves the order from Pending to Paid.
	// It reports false, without error, when the order was not in Pending.
	TransitionToPaid(ctx context.Context, orderID string) (bool, error)
	// DecrementStock subtracts grams from the product's stock, clamped at
	// zero in the store.
	DecrementStock(ctx context.Context, productID string, grams int64) error
	// UpsertFinanceBoxes persists the box records keyed by (order, box) so
	// reinsertion cannot duplicate rows.
	UpsertFinanceBoxes(ctx context.Context, orderID string, boxes []FinanceBox) error
}

// Service runs the post-payment settlement workflow.
type Service struct {
	orders  order.Repository
	coupons coupon.Repository
	repo    Repository
	lg      *zap.Logger
}

// NewService creates a settlement Service.
func NewService(orders order.Repository, coupons coupon.Repository, repo Repository, lg *zap.Logger) *Service {
	return &Service{orders: orders, coupons: coupons, repo: repo, lg: lg}
}

// Settle finalizes a payment-confirmed order: Pending -> Paid, stock
// decremented by the ordered weights, the net payment value split into
// finance boxes, and the coupon usage counter incremented when the order
// carries a code.
//
// The Paid transition is the idempotency gate. When it reports the order
// already settled, Settle returns ErrAlreadySettled and performs no side
// effects, so redelivered webhooks are harmless.
func (s *Service) Settle(ctx context.Context, orderID string, netValueCents money.Cents) error {
	transitioned, err := s.repo.TransitionToPaid(ctx, orderID)
	if err != nil {
		return errors.Wrap(err, "transition to paid")
	}
	if !transitioned {
		s.lg.Info("settlement skipped, order not pending", zap.String("order_id", orderID))
		return ErrAlreadySettled
	}

	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return errors.Wrap(err, "load order")
	}

	for _, item := range o.Items {
		if err := s.repo.DecrementStock(ctx, item.ProductID, item.WeightGrams); err != nil {
			return errors.Wrapf(err, "decrement stock for product %s", item.ProductID)
		}
	}

	boxes := SplitBoxes(netValueCents.Clamp())
	if err := s.repo.UpsertFinanceBoxes(ctx, orderID, boxes); err != nil {
		return errors.Wrap(err, "persist finance boxes")
	}

	if o.CouponCode != "" {
		if err := s.coupons.IncrementUsedCount(ctx, o.CouponCode); err != nil {
			return errors.Wrapf(err, "increment uses for coupon %s", o.CouponCode)
		}
	}

	s.lg.Info("order settled",
		zap.String("order_id", orderID),
		zap.Int64("net_value_cents", int64(netValueCents)),
		zap.Int("items", len(o.Items)),
	)
	return nil
}
