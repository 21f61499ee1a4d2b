// Package order models customer orders and implements the checkout and
// dispatch workflows.
package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"

	"github.com/nutallis/storefront/internal/domain/money"
	"github.com/nutallis/storefront/internal/domain/shipping"
)

// Status is the order lifecycle state.
type Status string

const (
	StatusPending    Status = "pending"
	StatusPaid       Status = "paid"
	StatusDispatched Status = "dispatched"
)

// PaymentMethod selects the payment rail at checkout.
type PaymentMethod string

const (
	PaymentPix  PaymentMethod = "pix"
	PaymentCard PaymentMethod = "card"
)

// ErrNotFound is returned when a requested order does not exist.
var ErrNotFound = errors.New("order not found")

// LineItem is one priced product-weight entry in an order. Immutable once
// the order is created.
type LineItem struct {
	ProductID      string      `json:"product_id"`
	WeightGrams    int64       `json:"weight_grams"`
	UnitPriceCents money.Cents `json:"unit_price_cents"`
	LineTotalCents money.Cents `json:"line_total_cents"`
}

// AddressSnapshot freezes the delivery address and the shipping quote the
// customer accepted at checkout time.
type AddressSnapshot struct {
	Address string          `json:"address"`
	Quote   *shipping.Quote `json:"quote,omitempty"`
}

// Order is a customer order. Owned exclusively by the order workflows; no
// concurrent writers are expected per order id.
type Order struct {
	ID            string
	Status        Status
	Items         []LineItem
	SubtotalCents money.Cents
	DiscountCents money.Cents
	ShippingCents money.Cents
	TotalCents    money.Cents
	CouponCode    string
	Address       AddressSnapshot
	CreatedAt     time.Time
}

// Repository defines persistence operations for orders.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	List(ctx context.Context) ([]Order, error)
	MarkDispatched(ctx context.Context, id string, shippingCents money.Cents) error
}
