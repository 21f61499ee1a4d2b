// Package handler implements the storefront HTTP surface on chi: the public
// catalog/cart/checkout endpoints, payment webhooks, and the admin API.
package handler

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/nutallis/storefront/internal/domain/cart"
	"github.com/nutallis/storefront/internal/domain/coupon"
	"github.com/nutallis/storefront/internal/domain/order"
	"github.com/nutallis/storefront/internal/domain/product"
	"github.com/nutallis/storefront/internal/domain/settlement"
	"github.com/nutallis/storefront/internal/domain/shipping"
)

// DistanceResolver turns a destination coordinate into a road distance from
// the store. When disabled or failing, handlers degrade to zero distance.
type DistanceResolver interface {
	Enabled() bool
	DistanceKm(ctx context.Context, lat, lng float64) (decimal.Decimal, error)
}

// Config holds non-dependency configuration for the Handler.
type Config struct {
	// WebhookSecret signs payment webhooks. Empty disables verification.
	WebhookSecret string
}

// Handler carries the domain dependencies for all HTTP endpoints.
type Handler struct {
	products   product.Repository
	carts      cart.Repository
	coupons    coupon.Validator
	couponRepo coupon.Repository
	orders     order.Repository
	orderSvc   *order.Service
	settleSvc  *settlement.Service
	distance   DistanceResolver
	resolver   *shipping.Resolver

	webhookSecret []byte
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	cfg Config,
	products product.Repository,
	carts cart.Repository,
	coupons coupon.Validator,
	couponRepo coupon.Repository,
	orders order.Repository,
	orderSvc *order.Service,
	settleSvc *settlement.Service,
	distance DistanceResolver,
	resolver *shipping.Resolver,
) *Handler {
	return &Handler{
		products:      products,
		carts:         carts,
		coupons:       coupons,
		couponRepo:    couponRepo,
		orders:        orders,
		orderSvc:      orderSvc,
		settleSvc:     settleSvc,
		distance:      distance,
		resolver:      resolver,
		webhookSecret: []byte(cfg.WebhookSecret),
	}
}
