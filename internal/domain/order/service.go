package order

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nutallis/storefront/internal/domain/coupon"
	"github.com/nutallis/storefront/internal/domain/money"
	"github.com/nutallis/storefront/internal/domain/pricing"
	"github.com/nutallis/storefront/internal/domain/product"
	"github.com/nutallis/storefront/internal/domain/shipping"
)

// Sentinel errors for checkout validation.
var (
	ErrEmptyItems    = errors.New("items required")
	ErrInvalidWeight = errors.New("weight must be greater than 0")
)

// ProductNotFoundError indicates a requested product does not exist or is
// not for sale.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

// InvalidWeightError indicates a line item has a non-positive weight.
type InvalidWeightError struct {
	ProductID string
}

func (e *InvalidWeightError) Error() string {
	return fmt.Sprintf("weight must be greater than 0 for product %s", e.ProductID)
}

// PixGateway creates a PIX payment for an order and returns the URL the
// customer is redirected to for completion.
type PixGateway interface {
	CreatePayment(ctx context.Context, orderID string, amountCents money.Cents) (redirectURL string, err error)
}

// CardGateway resolves the hosted card-checkout redirect URL, reporting
// false when card payments are not configured.
type CardGateway interface {
	CheckoutRedirect() (string, bool)
}

// CheckoutItem is one requested product-weight pair. Prices are resolved
// server-side from the catalog; clients never supply them.
type CheckoutItem struct {
	ProductID   string
	WeightGrams int64
}

// CheckoutRequest holds the input for submitting an order.
type CheckoutRequest struct {
	Items         []CheckoutItem
	CouponCode    string
	Address       string
	Quote         *shipping.Quote
	PaymentMethod PaymentMethod
}

// CheckoutResult holds the created order and, for redirect-based payment
// rails, the URL to send the customer to.
type CheckoutResult struct {
	Order       *Order
	RedirectURL string
}

// Service encapsulates the order workflows: checkout submission and
// logistics dispatch.
type Service struct {
	products product.Repository
	coupons  coupon.Validator
	orders   Repository
	resolver *shipping.Resolver
	pix      PixGateway
	card     CardGateway
}

// NewService creates an order Service. The payment gateways may be nil when
// the corresponding rail is not configured; checkout then completes without
// a redirect.
func NewService(
	products product.Repository,
	coupons coupon.Validator,
	orders Repository,
	resolver *shipping.Resolver,
	pix PixGateway,
	card CardGateway,
) *Service {
	return &Service{
		products: products,
		coupons:  coupons,
		orders:   orders,
		resolver: resolver,
		pix:      pix,
		card:     card,
	}
}

// Checkout prices the requested items from catalog prices, applies an
// optional coupon, persists the order in Pending state with an address
// snapshot, and initiates payment.
//
// Coupon validation failures propagate unchanged so the handler can surface
// the specific reason.
func (s *Service) Checkout(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}

	ids := make([]string, len(req.Items))
	for i, item := range req.Items {
		if item.WeightGrams <= 0 {
			return nil, &InvalidWeightError{ProductID: item.ProductID}
		}
		ids[i] = item.ProductID
	}

	// Batch fetch all products in a single query.
	fetched, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "get products")
	}

	productMap := make(map[string]product.Product, len(fetched))
	for _, p := range fetched {
		productMap[p.ID] = p
	}

	lines := make([]LineItem, len(req.Items))
	for i, item := range req.Items {
		p, ok := productMap[item.ProductID]
		if !ok || !p.Active {
			return nil, &ProductNotFoundError{ProductID: item.ProductID}
		}

		price := pricing.PriceLine(p.PricePerKiloCents, item.WeightGrams)
		lines[i] = LineItem{
			ProductID:      item.ProductID,
			WeightGrams:    item.WeightGrams,
			UnitPriceCents: price,
			LineTotalCents: price,
		}
	}

	var subtotal money.Cents
	for _, l := range lines {
		subtotal += l.LineTotalCents
	}

	// Apply coupon discount when a code is provided.
	var discountCents money.Cents
	couponCode := ""
	if req.CouponCode != "" {
		discount, err := s.coupons.Validate(ctx, req.CouponCode, subtotal)
		if err != nil {
			return nil, errors.Wrap(err, "validate coupon")
		}
		discountCents = discount.AmountCents
		couponCode = discount.Code
	}

	totals := ComputeTotals(lines, discountCents, req.Quote)

	o := &Order{
		ID:            uuid.New().String(),
		Status:        StatusPending,
		Items:         lines,
		SubtotalCents: totals.SubtotalCents,
		DiscountCents: totals.DiscountCents,
		ShippingCents: totals.ShippingCents,
		TotalCents:    totals.TotalCents,
		CouponCode:    couponCode,
		Address: AddressSnapshot{
			Address: req.Address,
			Quote:   req.Quote,
		},
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}

	redirect, err := s.initiatePayment(ctx, o, req.PaymentMethod)
	if err != nil {
		return nil, errors.Wrap(err, "initiate payment")
	}

	return &CheckoutResult{Order: o, RedirectURL: redirect}, nil
}

// initiatePayment starts the selected payment rail. Unconfigured rails fall
// through to direct success with no redirect.
func (s *Service) initiatePayment(ctx context.Context, o *Order, method PaymentMethod) (string, error) {
	switch method {
	case PaymentPix:
		if s.pix == nil {
			return "", nil
		}
		return s.pix.CreatePayment(ctx, o.ID, o.TotalCents)
	case PaymentCard:
		if s.card == nil {
			return "", nil
		}
		if url, ok := s.card.CheckoutRedirect(); ok {
			return url, nil
		}
		return "", nil
	default:
		return "", nil
	}
}

// DispatchResult reports the quote chosen for a dispatched order.
type DispatchResult struct {
	OrderID string
	Quote   *shipping.Quote
}

// Dispatch re-resolves a shipping quote for the order's stored distance and
// marks the order dispatched with the resolved fee.
func (s *Service) Dispatch(ctx context.Context, orderID string) (*DispatchResult, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, errors.Wrap(err, "get order")
	}

	distance := decimal.Zero
	if o.Address.Quote != nil {
		distance = o.Address.Quote.DistanceKm
	}

	q := s.resolver.Resolve(ctx, distance)

	if err := s.orders.MarkDispatched(ctx, o.ID, q.FeeCents); err != nil {
		return nil, errors.Wrap(err, "mark dispatched")
	}

	return &DispatchResult{OrderID: o.ID, Quote: q}, nil
}
