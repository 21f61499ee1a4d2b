package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-faster/errors"
	"go.uber.org/zap/zaptest"

	"github.com/nutallis/storefront/internal/domain/auth"
	"github.com/nutallis/storefront/internal/domain/cart"
	"github.com/nutallis/storefront/internal/domain/coupon"
	"github.com/nutallis/storefront/internal/domain/money"
	"github.com/nutallis/storefront/internal/domain/order"
	"github.com/nutallis/storefront/internal/domain/product"
	"github.com/nutallis/storefront/internal/domain/settlement"
	"github.com/nutallis/storefront/internal/domain/shipping"
)

const testWebhookSecret = "whsec-test"

// --- Stubs ---

type stubProductRepo struct {
	products map[string]product.Product
}

func (s *stubProductRepo) List(_ context.Context) ([]product.Product, error) {
	out := make([]product.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	return out, nil
}

func (s *stubProductRepo) GetByID(_ context.Context, id string) (*product.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return &p, nil
}

func (s *stubProductRepo) GetByIDs(_ context.Context, ids []string) ([]product.Product, error) {
	var out []product.Product
	for _, id := range ids {
		if p, ok := s.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *stubProductRepo) Create(_ context.Context, _ *product.Product) error { return nil }
func (s *stubProductRepo) Update(_ context.Context, _ *product.Product) error { return nil }
func (s *stubProductRepo) Delete(_ context.Context, _ string) error           { return nil }

func (s *stubProductRepo) ListCategories(_ context.Context) ([]product.Category, error) {
	return nil, nil
}
func (s *stubProductRepo) CreateCategory(_ context.Context, _ *product.Category) error { return nil }
func (s *stubProductRepo) UpdateCategory(_ context.Context, _ *product.Category) error { return nil }
func (s *stubProductRepo) DeleteCategory(_ context.Context, _ string) error            { return nil }

type stubCartRepo struct {
	items map[string][]cart.Item
}

func (s *stubCartRepo) List(_ context.Context, token string) ([]cart.Item, error) {
	return s.items[token], nil
}

func (s *stubCartRepo) Add(_ context.Context, item *cart.Item) error {
	if s.items == nil {
		s.items = map[string][]cart.Item{}
	}
	s.items[item.CartToken] = append(s.items[item.CartToken], *item)
	return nil
}

func (s *stubCartRepo) UpdateWeight(_ context.Context, _, _ string, _ int64) error { return nil }
func (s *stubCartRepo) Remove(_ context.Context, _, _ string) error               { return nil }
func (s *stubCartRepo) Clear(_ context.Context, token string) error {
	delete(s.items, token)
	return nil
}

type stubValidator struct {
	discount *coupon.Discount
	err      error
}

func (s *stubValidator) Validate(_ context.Context, _ string, _ money.Cents) (*coupon.Discount, error) {
	return s.discount, s.err
}

type stubCouponRepo struct {
	coupon.Repository

	incremented []string
}

func (s *stubCouponRepo) IncrementUsedCount(_ context.Context, code string) error {
	s.incremented = append(s.incremented, code)
	return nil
}

type stubOrderRepo struct {
	byID    map[string]*order.Order
	created []*order.Order
}

func (s *stubOrderRepo) Create(_ context.Context, o *order.Order) error {
	if s.byID == nil {
		s.byID = map[string]*order.Order{}
	}
	s.byID[o.ID] = o
	s.created = append(s.created, o)
	return nil
}

func (s *stubOrderRepo) GetByID(_ context.Context, id string) (*order.Order, error) {
	o, ok := s.byID[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	return o, nil
}

func (s *stubOrderRepo) List(_ context.Context) ([]order.Order, error) {
	out := make([]order.Order, 0, len(s.byID))
	for _, o := range s.byID {
		out = append(out, *o)
	}
	return out, nil
}

func (s *stubOrderRepo) MarkDispatched(_ context.Context, id string, fee money.Cents) error {
	o, ok := s.byID[id]
	if !ok {
		return order.ErrNotFound
	}
	o.Status = order.StatusDispatched
	o.ShippingCents = fee
	return nil
}

type stubSettlementRepo struct {
	pending    map[string]bool
	decrements map[string]int64
	boxWrites  int
}

func (s *stubSettlementRepo) TransitionToPaid(_ context.Context, orderID string) (bool, error) {
	if !s.pending[orderID] {
		return false, nil
	}
	s.pending[orderID] = false
	return true, nil
}

func (s *stubSettlementRepo) DecrementStock(_ context.Context, productID string, grams int64) error {
	if s.decrements == nil {
		s.decrements = map[string]int64{}
	}
	s.decrements[productID] += grams
	return nil
}

func (s *stubSettlementRepo) UpsertFinanceBoxes(_ context.Context, _ string, _ []settlement.FinanceBox) error {
	s.boxWrites++
	return nil
}

type stubAPIKeyRepo struct {
	byHash map[string]*auth.APIKeyInfo
}

func (s *stubAPIKeyRepo) FindByHash(_ context.Context, hash string) (*auth.APIKeyInfo, error) {
	info, ok := s.byHash[hash]
	if !ok {
		return nil, errors.New("api key not found")
	}
	return info, nil
}

// --- Fixture ---

type testDeps struct {
	products  *stubProductRepo
	carts     *stubCartRepo
	validator *stubValidator
	coupons   *stubCouponRepo
	orders    *stubOrderRepo
	settle    *stubSettlementRepo
	apikeys   *stubAPIKeyRepo
}

func newTestHandler(t *testing.T) (*Handler, *testDeps) {
	t.Helper()

	lg := zaptest.NewLogger(t)
	deps := &testDeps{
		products:  &stubProductRepo{products: map[string]product.Product{}},
		carts:     &stubCartRepo{items: map[string][]cart.Item{}},
		validator: &stubValidator{},
		coupons:   &stubCouponRepo{},
		orders:    &stubOrderRepo{byID: map[string]*order.Order{}},
		settle:    &stubSettlementRepo{pending: map[string]bool{}},
		apikeys:   &stubAPIKeyRepo{byHash: map[string]*auth.APIKeyInfo{}},
	}

	resolver := shipping.NewResolver(shipping.ResolverConfig{}, lg)
	orderSvc := order.NewService(deps.products, deps.validator, deps.orders, resolver, nil, nil)
	settleSvc := settlement.NewService(deps.orders, deps.coupons, deps.settle, lg)

	h := NewHandler(
		Config{WebhookSecret: testWebhookSecret},
		deps.products,
		deps.carts,
		deps.validator,
		deps.coupons,
		deps.orders,
		orderSvc,
		settleSvc,
		nil,
		resolver,
	)
	return h, deps
}

func testRouter(t *testing.T) (http.Handler, *testDeps) {
	t.Helper()
	h, deps := newTestHandler(t)
	return h.Routes(deps.apikeys, []byte("pepper")), deps
}
