// Package cart models a customer's shopping cart. Carts are keyed by an
// opaque client-held token; identity and sessions live outside this service.
package cart

import (
	"context"

	"github.com/go-faster/errors"
)

// ErrItemNotFound is returned when a cart line does not exist for the
// given cart token.
var ErrItemNotFound = errors.New("cart item not found")

// Item is one product-weight entry in a cart.
type Item struct {
	ID          string
	CartToken   string
	ProductID   string
	WeightGrams int64
}

// Repository defines cart persistence operations. All operations are scoped
// to a cart token so one client can never touch another's cart.
type Repository interface {
	List(ctx context.Context, cartToken string) ([]Item, error)
	Add(ctx context.Context, item *Item) error
	UpdateWeight(ctx context.Context, cartToken, itemID string, weightGrams int64) error
	Remove(ctx context.Context, cartToken, itemID string) error
	Clear(ctx context.Context, cartToken string) error
}
