// Package uberdirect adapts the Uber Direct courier-dispatch API to the
// shipping.Provider interface.
package uberdirect

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

// Config holds the Uber Direct credentials. An empty URL or token disables
// the provider: Quote then reports unavailable without any I/O.
type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// Client is a shipping.Provider backed by the Uber Direct quote endpoint.
type Client struct {
	cfg  Config
	http *http.Client
}

var _ shipping.Provider = (*Client)(nil)

// New creates a Client. The timeout bounds every quote request so a slow
// carrier cannot stall the fallback chain.
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
func (c *Client) Name() shipping.ProviderName { return shipping.ProviderUber }

type quoteRequest struct {
	DistanceKm float64 `json:"distance_km"`
}

type quoteResponse struct {
	FeeCents   int64 `json:"fee_cents"`
	ETAMinutes *int  `json:"eta_minutes"`
}

// Quote requests a delivery quote for the distance. Every degradation path
// (missing credentials, transport error, non-2xx, unparseable payload,
// nonsense fee) returns an error wrapping shipping.ErrUnavailable so the
// resolver moves on silently.
func (c *Client) Quote(ctx context.Context, distanceKm decimal.Decimal) (*shipping.Quote, error) {
	if c.cfg.BaseURL == "" || c.cfg.Token == "" {
		return nil, errors.Wrap(shipping.ErrUnavailable, "uber direct not configured")
	}

	payload, err := json.Marshal(quoteRequest{DistanceKm: distanceKm.InexactFloat64()})
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
		return nil, errors.Wrapf(shipping.ErrUnavailable, "uber direct status %d", resp.StatusCode)
	}

	var body quoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, errors.Wrap(shipping.ErrUnavailable, "decode uber direct payload")
	}
	if body.FeeCents < 0 {
		return nil, errors.Wrap(shipping.ErrUnavailable, "negative carrier fee")
	}

	return &shipping.Quote{
		Provider:   shipping.ProviderUber,
		FeeCents:   money.Cents(body.FeeCents),
		ETAMinutes: body.ETAMinutes,
		DistanceKm: distanceKm,
	}, nil
}
