package shipping

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/nutallis/storefront/internal/domain/money"
)

type stubProvider struct {
	name   ProviderName
	quote  *Quote
	err    error
	called bool
}

func (s *stubProvider) Name() ProviderName { return s.name }

func (s *stubProvider) Quote(_ context.Context, _ decimal.Decimal) (*Quote, error) {
	s.called = true
	return s.quote, s.err
}

func km(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

func TestResolver_FirstProviderWins(t *testing.T) {
	primary := &stubProvider{
		name:  ProviderUber,
		quote: &Quote{Provider: ProviderUber, FeeCents: 1500, DistanceKm: km(3)},
	}
	secondary := &stubProvider{name: ProviderIfood}

	r := NewResolver(ResolverConfig{}, zaptest.NewLogger(t), primary, secondary)
	q := r.Resolve(context.Background(), km(3))

	require.NotNil(t, q)
	assert.Equal(t, ProviderUber, q.Provider)
	assert.Equal(t, money.Cents(1500), q.FeeCents)
	assert.False(t, secondary.called, "secondary provider must not be contacted after a success")
}

func TestResolver_FallsThroughToSecondary(t *testing.T) {
	primary := &stubProvider{name: ProviderUber, err: ErrUnavailable}
	secondary := &stubProvider{
		name:  ProviderIfood,
		quote: &Quote{Provider: ProviderIfood, FeeCents: 1800, DistanceKm: km(3)},
	}

	r := NewResolver(ResolverConfig{}, zaptest.NewLogger(t), primary, secondary)
	q := r.Resolve(context.Background(), km(3))

	assert.Equal(t, ProviderIfood, q.Provider)
	assert.True(t, primary.called)
}

func TestResolver_AllProvidersFailYieldsManual(t *testing.T) {
	primary := &stubProvider{name: ProviderUber, err: ErrUnavailable}
	secondary := &stubProvider{name: ProviderIfood, err: errors.New("boom")}

	r := NewResolver(ResolverConfig{}, zaptest.NewLogger(t), primary, secondary)
	q := r.Resolve(context.Background(), km(5))

	assert.Equal(t, *r.ManualQuote(km(5)), *q, "degraded result must equal the manual quote")
	assert.Equal(t, ProviderManual, q.Provider)
	assert.Nil(t, q.ETAMinutes)
}

func TestManualQuote(t *testing.T) {
	r := NewResolver(ResolverConfig{}, zaptest.NewLogger(t))

	tests := []struct {
		name       string
		distanceKm decimal.Decimal
		wantFee    money.Cents
	}{
		{"zero distance is base fee only", km(0), 1090},
		{"5km at defaults", km(5), 1090 + 1450},
		{"fractional distance rounds half up", km(1.5), 1090 + 435},
		{"rounding at the half cent", km(0.25), 1090 + 73}, // 72.5 rounds up
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := r.ManualQuote(tt.distanceKm)
			assert.Equal(t, tt.wantFee, q.FeeCents)
			assert.Equal(t, ProviderManual, q.Provider)
			assert.True(t, tt.distanceKm.Equal(q.DistanceKm))
		})
	}
}

func TestManualQuote_ConfigOverrides(t *testing.T) {
	r := NewResolver(ResolverConfig{BaseFeeCents: 500, PerKmFeeCents: 100}, zaptest.NewLogger(t))
	q := r.ManualQuote(km(10))
	assert.Equal(t, money.Cents(1500), q.FeeCents)
}
