// Package ifood adapts the iFood marketplace-delivery quote API to the
// shipping.Provider interface. It is the secondary carrier in the fallback
// chain.
package ifood

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/nutallis/storefront/internal/domain/money"
	"github.com/nutallis/storefront/internal/domain/shipping"
)

const defaultTimeout = 5 * time.Second

// Config holds the iFood credentials. Empty values disable the provider.
type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// Client is a shipping.Provider backed by the iFood delivery quote endpoint.
type Client struct {
	cfg  Config
	http *http.Client
}

var _ shipping.Provider = (*Client)(nil)

// New creates a Client with a bounded request timeout.
func New(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

// Name reports the provider tag.
func (c *Client) Name() shipping.ProviderName { return shipping.ProviderIfood }

// Quote requests a delivery quote. Any failure reports unavailable; the
// resolver owns the fallback decision.
func (c *Client) Quote(ctx context.Context, distanceKm decimal.Decimal) (*shipping.Quote, error) {
	if c.cfg.BaseURL == "" || c.cfg.Token == "" {
		return nil, errors.Wrap(shipping.ErrUnavailable, "ifood not configured")
	}

	payload, err := json.Marshal(struct {
		DistanceKm float64 `json:"distance_km"`
	}{DistanceKm: distanceKm.InexactFloat64()})
	if err != nil {
		return nil, errors.Wrap(err, "marshal quote request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrap(err, "build quote request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(shipping.ErrUnavailable, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Wrapf(shipping.ErrUnavailable, "ifood status %d", resp.StatusCode)
	}

	var body struct {
		FeeCents   int64 `json:"fee_cents"`
		ETAMinutes *int  `json:"eta_minutes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, errors.Wrap(shipping.ErrUnavailable, "decode ifood payload")
	}
	if body.FeeCents < 0 {
		return nil, errors.Wrap(shipping.ErrUnavailable, "negative carrier fee")
	}

	return &shipping.Quote{
		Provider:   shipping.ProviderIfood,
		FeeCents:   money.Cents(body.FeeCents),
		ETAMinutes: body.ETAMinutes,
		DistanceKm: distanceKm,
	}, nil
}
