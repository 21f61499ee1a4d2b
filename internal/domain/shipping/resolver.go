package shipping

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/nutallis/storefront/internal/domain/money"
)

// Manual quote defaults, in cents. Overridable via ResolverConfig.
const (
	DefaultBaseFeeCents  = 1090
	DefaultPerKmFeeCents = 290
)

// ResolverConfig holds the manual-quote fee parameters.
type ResolverConfig struct {
	BaseFeeCents  money.Cents
	PerKmFeeCents money.Cents
}

// Resolver tries carrier providers in priority order and falls back to the
// manual formula. Resolve always returns a usable quote.
type Resolver struct {
	providers []Provider
	cfg       ResolverConfig
	lg        *zap.Logger
}

// NewResolver creates a Resolver. Providers are attempted in the order
// given. Zero fee parameters fall back to the defaults.
func NewResolver(cfg ResolverConfig, lg *zap.Logger, providers ...Provider) *Resolver {
	if cfg.BaseFeeCents == 0 {
		cfg.BaseFeeCents = DefaultBaseFeeCents
	}
	if cfg.PerKmFeeCents == 0 {
		cfg.PerKmFeeCents = DefaultPerKmFeeCents
	}
	return &Resolver{providers: providers, cfg: cfg, lg: lg}
}

// Resolve returns the first usable carrier quote for the distance, or the
// manual quote when every carrier is unavailable. Provider failures are
// logged and absorbed; the method cannot fail.
//
// Providers are attempted strictly in order and the first success wins;
// later providers are not contacted.
func (r *Resolver) Resolve(ctx context.Context, distanceKm decimal.Decimal) *Quote {
	for _, p := range r.providers {
		q, err := p.Quote(ctx, distanceKm)
		if err != nil {
			r.lg.Debug("shipping provider unavailable",
				zap.String("provider", string(p.Name())),
				zap.Error(err),
			)
			continue
		}
		return q
	}
	return r.ManualQuote(distanceKm)
}

// ManualQuote computes the deterministic fallback quote:
// fee = round(base + perKm * distanceKm). It performs no I/O.
func (r *Resolver) ManualQuote(distanceKm decimal.Decimal) *Quote {
	fee := decimal.NewFromInt(int64(r.cfg.PerKmFeeCents)).
		Mul(distanceKm).
		Add(decimal.NewFromInt(int64(r.cfg.BaseFeeCents))).
		Round(0)

	return &Quote{
		Provider:   ProviderManual,
		FeeCents:   money.Cents(fee.IntPart()),
		DistanceKm: distanceKm,
	}
}
