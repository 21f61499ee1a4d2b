// Package product holds the catalog model: categories and stock-bearing
// products priced per kilogram.
package product

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/nutallis/storefront/internal/domain/money"
)

// ErrNotFound is returned when a requested product or category does not exist.
var ErrNotFound = errors.New("product not found")

// Category groups products for storefront navigation.
type Category struct {
	ID          string
	Name        string
	Slug        string
	Description string
	SortOrder   int
	Active      bool
}

// Product represents a catalog item sold by weight.
type Product struct {
	ID                string
	Name              string
	Slug              string
	Description       string
	CategoryID        string
	PricePerKiloCents money.Cents
	CostPerKiloCents  money.Cents
	MarginPct         decimal.Decimal
	StockGrams        int64
	ReorderPointGrams int64
	ImageURL          string
	Active            bool
}

// Repository defines catalog persistence operations.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id string) error

	ListCategories(ctx context.Context) ([]Category, error)
	CreateCategory(ctx context.Context, c *Category) error
	UpdateCategory(ctx context.Context, c *Category) error
	DeleteCategory(ctx context.Context, id string) error
}
