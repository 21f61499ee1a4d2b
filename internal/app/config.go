package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the complete application configuration, loadable from
// environment variables (STORE_ prefix), flags, or YAML config files.
type Config struct {
	Addr          string `default:"0.0.0.0:8080" usage:"API server listen address"`
	DatabaseURL   string `usage:"PostgreSQL connection URL (STORE_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	APIKeyPepper  string `usage:"HMAC pepper for admin API key hashing" flag:"api-key-pepper"`
	WebhookSecret string `usage:"HMAC secret for payment webhook signatures" flag:"webhook-secret"`

	Shipping  ShippingConfig
	Distance  DistanceConfig
	Payments  PaymentsConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Graceful  GracefulConfig
}

// ShippingConfig holds carrier credentials and the manual-quote fee formula.
type ShippingConfig struct {
	BaseFeeCents  int64 `default:"1090" usage:"Manual quote base fee, in cents" flag:"shipping-base-fee"`
	PerKmFeeCents int64 `default:"290"  usage:"Manual quote per-km fee, in cents" flag:"shipping-per-km-fee"`

	UberURL   string `usage:"Uber Direct quote endpoint base URL" flag:"uber-url"`
	UberToken string `usage:"Uber Direct API token" flag:"uber-token"`

	IfoodURL   string `usage:"iFood quote endpoint base URL" flag:"ifood-url"`
	IfoodToken string `usage:"iFood API token" flag:"ifood-token"`
}

// DistanceConfig holds the Distance Matrix credentials and the store origin
// used to resolve delivery distances.
type DistanceConfig struct {
	APIKey    string  `usage:"Distance Matrix API key (empty disables lookups)" flag:"distance-api-key"`
	OriginLat float64 `default:"-23.5505" usage:"Store latitude" flag:"store-lat"`
	OriginLng float64 `default:"-46.6333" usage:"Store longitude" flag:"store-lng"`
}

// PaymentsConfig holds the gateway credentials.
type PaymentsConfig struct {
	MercadoPagoToken string `usage:"Mercado Pago access token (empty disables PIX)" flag:"mercadopago-token"`
	WebhookURL       string `usage:"Public notification URL announced to Mercado Pago" flag:"payment-webhook-url"`
	EfiCheckoutURL   string `usage:"EFI hosted card checkout URL (empty disables card)" flag:"efi-checkout-url"`
}

// RateLimitConfig controls the per-client token bucket rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config
// files, and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "STORE",
		Files:     []string{"config.yaml", "/etc/storefront/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if cfg.DatabaseURL == "" {
		return nil, errors.New("database URL is required: set STORE_DATABASE_URL or DATABASE_URL")
	}

	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided environment variables
// (Railway, Render, etc.) that use standard names like DATABASE_URL and PORT
// to the application's STORE_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.DatabaseURL = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
}
