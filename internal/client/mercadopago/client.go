// Package mercadopago creates PIX payments through the Mercado Pago API.
package mercadopago

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-faster/errors"

	"github.com/nutallis/storefront/internal/domain/money"
)

const (
	defaultBaseURL = "https://api.mercadopago.com"
	defaultTimeout = 10 * time.Second
)

// Config holds the Mercado Pago credentials and webhook callback.
type Config struct {
	AccessToken string
	WebhookURL  string
	Description string
	BaseURL     string
	Timeout     time.Duration
}

// Client calls the Mercado Pago payments API.
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

// Enabled reports whether an access token is configured.
func (c *Client) Enabled() bool { return c.cfg.AccessToken != "" }

type paymentRequest struct {
	TransactionAmount float64 `json:"transaction_amount"`
	Description       string  `json:"description"`
	PaymentMethodID   string  `json:"payment_method_id"`
	ExternalReference string  `json:"external_reference"`
	NotificationURL   string  `json:"notification_url,omitempty"`
}

type paymentResponse struct {
	PointOfInteraction struct {
		TransactionData struct {
			TicketURL string `json:"ticket_url"`
		} `json:"transaction_data"`
	} `json:"point_of_interaction"`
}

// CreatePayment creates a PIX payment for the order total and returns the
// ticket URL the customer completes payment at. The Mercado Pago API takes
// decimal reais; the integer-cent amount is converted only at this boundary.
func (c *Client) CreatePayment(ctx context.Context, orderID string, amountCents money.Cents) (string, error) {
	payload, err := json.Marshal(paymentRequest{
		TransactionAmount: float64(amountCents) / 100,
		Description:       c.cfg.Description,
		PaymentMethodID:   "pix",
		ExternalReference: orderID,
		NotificationURL:   c.cfg.WebhookURL,
	})
	if err != nil {
		return "", errors.Wrap(err, "marshal payment request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v1/payments", bytes.NewReader(payload))
	if err != nil {
		return "", errors.Wrap(err, "build payment request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.AccessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "create payment")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", errors.Errorf("mercado pago status %d", resp.StatusCode)
	}

	var body paymentResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", errors.Wrap(err, "decode payment response")
	}

	return body.PointOfInteraction.TransactionData.TicketURL, nil
}
