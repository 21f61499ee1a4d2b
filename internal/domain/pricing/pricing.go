// Package pricing converts per-kilogram catalog prices into line-item prices,
// applying the store's weight-based discount tiers.
package pricing

import "github.com/nutallis/storefront/internal/domain/money"

// Discount tiers in basis points. Inclusive lower bounds; the highest
// qualifying tier wins.
const (
	tierHeavyGrams  = 1000
	tierMediumGrams = 500
	tierLightGrams  = 250

	tierHeavyBps  = 1000 // 10%
	tierMediumBps = 600  // 6%
	tierLightBps  = 300  // 3%

	bpsDenominator = 10_000
)

// DiscountRateBps returns the weight-tier discount rate in basis points
// for the given weight.
func DiscountRateBps(weightGrams int64) int64 {
	switch {
	case weightGrams >= tierHeavyGrams:
		return tierHeavyBps
	case weightGrams >= tierMediumGrams:
		return tierMediumBps
	case weightGrams >= tierLightGrams:
		return tierLightBps
	default:
		return 0
	}
}

// PriceLine prices a single line item: the per-kilogram price is scaled to
// the requested weight (round half up) and the weight-tier discount is
// subtracted (also round half up).
//
// Non-positive weights and negative prices yield 0. Callers validate inputs
// at the boundary; the clamp here keeps the function total and deterministic.
func PriceLine(pricePerKiloCents money.Cents, weightGrams int64) money.Cents {
	if weightGrams <= 0 || pricePerKiloCents < 0 {
		return 0
	}

	base := money.RoundDiv(int64(pricePerKiloCents)*weightGrams, 1000)
	discount := money.RoundDiv(base*DiscountRateBps(weightGrams), bpsDenominator)
	return money.Cents(base - discount)
}
