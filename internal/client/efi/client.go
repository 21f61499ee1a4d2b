// Package efi provides the EFI hosted card-checkout redirect. The gateway
// hosts the whole card flow; this side only hands out the configured URL.
package efi

// Config holds the EFI checkout settings.
type Config struct {
	CheckoutURL string
}

// Client implements the card gateway over EFI's hosted checkout.
type Client struct {
	cfg Config
}

// New creates a Client.
func New(cfg Config) *Client {
	return &Client{cfg: cfg}
}

// CheckoutRedirect returns the hosted checkout URL, reporting false when
// card payments are not configured.
func (c *Client) CheckoutRedirect() (string, bool) {
	if c.cfg.CheckoutURL == "" {
		return "", false
	}
	return c.cfg.CheckoutURL, true
}
