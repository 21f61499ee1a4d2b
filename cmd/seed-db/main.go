// Command seed-db provisions a development database: migrations, a starter
// catalog of categories and products, a couple of coupons, and an admin API
// key hashed with the configured pepper.
package main

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nutallis/storefront/internal/repository"
)

type productJSON struct {
	Name              string `json:"name"`
	Slug              string `json:"slug"`
	Description       string `json:"description"`
	Category          string `json:"category"`
	PricePerKgCents   int64  `json:"pricePerKgCents"`
	CostPerKgCents    int64  `json:"costPerKgCents"`
	StockGrams        int64  `json:"stockGrams"`
	ReorderPointGrams int64  `json:"reorderPointGrams"`
	ImageURL          string `json:"imageUrl"`
}

func main() {
	var (
		databaseURL  string
		productsFile string
		apiKey       string
		apiKeyPepper string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&productsFile, "products-file", "db/seed/products.json", "path to products JSON file")
	flag.StringVar(&apiKey, "api-key", "", "admin API key to seed (or STORE_SEED_API_KEY env)")
	flag.StringVar(&apiKeyPepper, "api-key-pepper", "", "HMAC pepper for API key hashing (or STORE_API_KEY_PEPPER env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if apiKey == "" {
		apiKey = os.Getenv("STORE_SEED_API_KEY")
	}
	if apiKey == "" {
		slog.Error("API key is required: set --api-key or STORE_SEED_API_KEY")
		os.Exit(1)
	}
	if apiKeyPepper == "" {
		apiKeyPepper = os.Getenv("STORE_API_KEY_PEPPER")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, productsFile, apiKey, apiKeyPepper); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, productsFile, apiKey, pepper string) error {
	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedProducts(ctx, pool, productsFile); err != nil {
		return errors.Wrap(err, "seed products")
	}
	if err := seedCoupons(ctx, pool); err != nil {
		return errors.Wrap(err, "seed coupons")
	}
	if err := seedAPIKey(ctx, pool, apiKey, pepper); err != nil {
		return errors.Wrap(err, "seed api key")
	}
	return nil
}

const upsertCategorySQL = `
INSERT INTO categories (name, slug)
VALUES ($1, $2)
ON CONFLICT (slug) DO UPDATE SET name = EXCLUDED.name
RETURNING id`

const upsertProductSQL = `
INSERT INTO products (
	name, slug, description, category_id, price_per_kg_cents,
	cost_per_kg_cents, stock_grams, reorder_point_grams, image_url
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (slug) DO UPDATE SET
	name               = EXCLUDED.name,
	description        = EXCLUDED.description,
	category_id        = EXCLUDED.category_id,
	price_per_kg_cents = EXCLUDED.price_per_kg_cents,
	cost_per_kg_cents  = EXCLUDED.cost_per_kg_cents,
	stock_grams        = EXCLUDED.stock_grams,
	image_url          = EXCLUDED.image_url`

func seedProducts(ctx context.Context, pool *pgxpool.Pool, productsFile string) error {
	slog.Info("reading products file", slog.String("path", productsFile))

	data, err := os.ReadFile(productsFile)
	if err != nil {
		return errors.Wrap(err, "read products file")
	}

	var products []productJSON
	if err := json.Unmarshal(data, &products); err != nil {
		return errors.Wrap(err, "parse products JSON")
	}

	slog.Info("upserting products", slog.Int("count", len(products)))

	categoryIDs := make(map[string]string)
	for _, p := range products {
		categoryID, ok := categoryIDs[p.Category]
		if !ok && p.Category != "" {
			if err := pool.QueryRow(ctx, upsertCategorySQL, p.Category, slugify(p.Category)).
				Scan(&categoryID); err != nil {
				return errors.Wrapf(err, "upsert category %s", p.Category)
			}
			categoryIDs[p.Category] = categoryID
		}

		var catArg any
		if categoryID != "" {
			catArg = categoryID
		}
		if _, err := pool.Exec(ctx, upsertProductSQL,
			p.Name, p.Slug, p.Description, catArg,
			p.PricePerKgCents, p.CostPerKgCents,
			p.StockGrams, p.ReorderPointGrams, p.ImageURL,
		); err != nil {
			return errors.Wrapf(err, "upsert product %s", p.Slug)
		}

		slog.Info("upserted product", slog.String("slug", p.Slug), slog.String("name", p.Name))
	}
	return nil
}

func slugify(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			out = append(out, r)
		case r >= 'A' && r <= 'Z':
			out = append(out, r+('a'-'A'))
		case r == ' ', r == '-', r == '_':
			out = append(out, '-')
		}
	}
	return string(out)
}

const upsertCouponSQL = `
INSERT INTO coupons (code, description, discount_type, discount_value, min_order_value_cents, is_active)
VALUES (UPPER($1), $2, $3, $4, $5, TRUE)
ON CONFLICT (code) DO UPDATE SET
	description           = EXCLUDED.description,
	discount_type         = EXCLUDED.discount_type,
	discount_value        = EXCLUDED.discount_value,
	min_order_value_cents = EXCLUDED.min_order_value_cents,
	is_active             = TRUE`

func seedCoupons(ctx context.Context, pool *pgxpool.Pool) error {
	slog.Info("seeding starter coupons")

	coupons := []struct {
		code, description, discountType, value string
		minOrderCents                          int64
	}{
		{"BEMVINDO10", "Primeira compra: 10% off", "percentage", "10", 0},
		{"FRETEGRATIS", "R$ 25,40 de desconto acima de R$ 150", "fixed", "2540", 15000},
	}

	for _, c := range coupons {
		if _, err := pool.Exec(ctx, upsertCouponSQL,
			c.code, c.description, c.discountType, c.value, c.minOrderCents,
		); err != nil {
			return errors.Wrapf(err, "upsert coupon %s", c.code)
		}
		slog.Info("upserted coupon", slog.String("code", c.code), slog.String("description", c.description))
	}
	return nil
}

const upsertAPIKeySQL = `
INSERT INTO api_keys (key_hash, name, scopes, active)
VALUES ($1, $2, $3, TRUE)
ON CONFLICT (key_hash) DO UPDATE SET name = EXCLUDED.name, active = TRUE`

func seedAPIKey(ctx context.Context, pool *pgxpool.Pool, apiKey, pepper string) error {
	slog.Info("seeding admin API key")

	mac := hmac.New(sha256.New, []byte(pepper))
	mac.Write([]byte(apiKey))
	keyHash := hex.EncodeToString(mac.Sum(nil))

	if _, err := pool.Exec(ctx, upsertAPIKeySQL,
		keyHash, "Default admin key", []string{"admin"},
	); err != nil {
		return errors.Wrap(err, "upsert admin API key")
	}

	slog.Info("upserted API key", slog.String("name", "Default admin key"))
	return nil
}
