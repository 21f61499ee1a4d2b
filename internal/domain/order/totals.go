package order

import (
	"github.com/nutallis/storefront/internal/domain/money"
	"github.com/nutallis/storefront/internal/domain/shipping"
)

// Totals is the money breakdown of an order.
type Totals struct {
	SubtotalCents money.Cents
	DiscountCents money.Cents
	ShippingCents money.Cents
	TotalCents    money.Cents
}

// ComputeTotals combines priced line items, a coupon discount, and a
// shipping quote into the order totals. Pure function.
//
// The discount is clamped to [0, subtotal] here rather than in the coupon
// validator: the validator is agnostic of shipping, and the clamp is what
// keeps the total non-negative by construction. A nil quote contributes
// zero shipping (checkout blocks submission until a quote exists).
func ComputeTotals(items []LineItem, discountCents money.Cents, quote *shipping.Quote) Totals {
	var subtotal money.Cents
	for _, it := range items {
		subtotal += it.LineTotalCents
	}

	discount := money.Min(discountCents.Clamp(), subtotal)

	var shippingFee money.Cents
	if quote != nil {
		shippingFee = quote.FeeCents.Clamp()
	}

	return Totals{
		SubtotalCents: subtotal,
		DiscountCents: discount,
		ShippingCents: shippingFee,
		TotalCents:    subtotal - discount + shippingFee,
	}
}
