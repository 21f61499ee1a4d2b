// Package distancematrix resolves a destination coordinate into a road
// distance from the store using the Google Distance Matrix API.
package distancematrix

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

const (
	defaultBaseURL = "https://maps.googleapis.com/maps/api/distancematrix/json"
	defaultTimeout = 5 * time.Second
)

// ErrUnavailable is returned when the distance cannot be resolved. Callers
// degrade to a zero distance rather than failing the quote.
var ErrUnavailable = errors.New("distance matrix unavailable")

// Config holds the Distance Matrix credentials and the store origin.
// An empty API key disables the client.
type Config struct {
	APIKey    string
	BaseURL   string
	OriginLat float64
	OriginLng float64
	Timeout   time.Duration
}

// Client queries the Distance Matrix API.
type Client struct {
	cfg  Config
	http *http.Client
}

// New creates a Client with a bounded request timeout.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool { return c.cfg.APIKey != "" }

type matrixResponse struct {
	Rows []struct {
		Elements []struct {
			Distance *struct {
				Value int64 `json:"value"` // meters
			} `json:"distance"`
		} `json:"elements"`
	} `json:"rows"`
}

// DistanceKm resolves the road distance in kilometers from the store origin
// to the destination coordinate.
func (c *Client) DistanceKm(ctx context.Context, lat, lng float64) (decimal.Decimal, error) {
	if !c.Enabled() {
		return decimal.Zero, errors.Wrap(ErrUnavailable, "no api key")
	}

	q := url.Values{}
	q.Set("origins", coord(c.cfg.OriginLat)+","+coord(c.cfg.OriginLng))
	q.Set("destinations", coord(lat)+","+coord(lng))
	q.Set("key", c.cfg.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "build request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return decimal.Zero, errors.Wrap(ErrUnavailable, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, errors.Wrapf(ErrUnavailable, "distance matrix status %d", resp.StatusCode)
	}

	var body matrixResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return decimal.Zero, errors.Wrap(ErrUnavailable, "decode distance matrix payload")
	}

	if len(body.Rows) == 0 || len(body.Rows[0].Elements) == 0 || body.Rows[0].Elements[0].Distance == nil {
		return decimal.Zero, errors.Wrap(ErrUnavailable, "no route in response")
	}

	meters := body.Rows[0].Elements[0].Distance.Value
	return decimal.NewFromInt(meters).Div(decimal.NewFromInt(1000)), nil
}

func coord(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
