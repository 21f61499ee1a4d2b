// Package shipping resolves delivery quotes: carrier providers are tried in
// priority order and a deterministic manual formula is the terminal fallback.
package shipping

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/nutallis/storefront/internal/domain/money"
)

// ProviderName identifies the source of a quote.
type ProviderName string

const (
	ProviderUber   ProviderName = "uber"
	ProviderIfood  ProviderName = "ifood"
	ProviderManual ProviderName = "manual"
)

// ErrUnavailable is returned by a Provider when it cannot produce a quote
// for any reason (missing credentials, timeout, bad payload). The resolver
// treats it as a signal to try the next provider; it is never surfaced to
// callers.
var ErrUnavailable = errors.New("shipping provider unavailable")

// Quote is a delivery fee estimate for a given distance. ETAMinutes is nil
// when the source provides none (always nil for manual quotes).
type Quote struct {
	Provider   ProviderName
	FeeCents   money.Cents
	ETAMinutes *int
	DistanceKm decimal.Decimal
}

// Provider produces a delivery quote for a distance. Implementations own
// their timeout and payload handling and return ErrUnavailable (or any other
// error) instead of a quote when degraded.
type Provider interface {
	Name() ProviderName
	Quote(ctx context.Context, distanceKm decimal.Decimal) (*Quote, error)
}
