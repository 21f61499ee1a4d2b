package order

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/nutallis/storefront/internal/domain/coupon"
	"github.com/nutallis/storefront/internal/domain/money"
	"github.com/nutallis/storefront/internal/domain/product"
	"github.com/nutallis/storefront/internal/domain/shipping"
)

// --- Mock implementations ---

type mockProductRepo struct {
	byID   map[string]product.Product
	getErr error
}

func (m *mockProductRepo) List(_ context.Context) ([]product.Product, error) { return nil, nil }

func (m *mockProductRepo) GetByID(_ context.Context, id string) (*product.Product, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return &p, nil
}

func (m *mockProductRepo) GetByIDs(_ context.Context, ids []string) ([]product.Product, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	var out []product.Product
	for _, id := range ids {
		if p, ok := m.byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockProductRepo) Create(_ context.Context, _ *product.Product) error { return nil }
func (m *mockProductRepo) Update(_ context.Context, _ *product.Product) error { return nil }
func (m *mockProductRepo) Delete(_ context.Context, _ string) error           { return nil }

func (m *mockProductRepo) ListCategories(_ context.Context) ([]product.Category, error) {
	return nil, nil
}
func (m *mockProductRepo) CreateCategory(_ context.Context, _ *product.Category) error { return nil }
func (m *mockProductRepo) UpdateCategory(_ context.Context, _ *product.Category) error { return nil }
func (m *mockProductRepo) DeleteCategory(_ context.Context, _ string) error            { return nil }

type mockCouponValidator struct {
	discount *coupon.Discount
	err      error
	subtotal money.Cents
}

func (m *mockCouponValidator) Validate(_ context.Context, _ string, subtotalCents money.Cents) (*coupon.Discount, error) {
	m.subtotal = subtotalCents
	if m.err != nil {
		return nil, m.err
	}
	return m.discount, nil
}

type mockOrderRepo struct {
	lastOrder  *Order
	createErr  error
	byID       map[string]*Order
	dispatched map[string]money.Cents
}

func (m *mockOrderRepo) Create(_ context.Context, o *Order) error {
	m.lastOrder = o
	return m.createErr
}

func (m *mockOrderRepo) GetByID(_ context.Context, id string) (*Order, error) {
	o, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return o, nil
}

func (m *mockOrderRepo) List(_ context.Context) ([]Order, error) { return nil, nil }

func (m *mockOrderRepo) MarkDispatched(_ context.Context, id string, fee money.Cents) error {
	if m.dispatched == nil {
		m.dispatched = map[string]money.Cents{}
	}
	m.dispatched[id] = fee
	return nil
}

type mockPixGateway struct {
	url     string
	err     error
	orderID string
	amount  money.Cents
}

func (m *mockPixGateway) CreatePayment(_ context.Context, orderID string, amountCents money.Cents) (string, error) {
	m.orderID = orderID
	m.amount = amountCents
	return m.url, m.err
}

// --- Helpers ---

func testResolver(t *testing.T, providers ...shipping.Provider) *shipping.Resolver {
	t.Helper()
	return shipping.NewResolver(shipping.ResolverConfig{}, zaptest.NewLogger(t), providers...)
}

func catalog() *mockProductRepo {
	return &mockProductRepo{byID: map[string]product.Product{
		"cashew": {ID: "cashew", Name: "Castanha de Caju", PricePerKiloCents: 10000, StockGrams: 5000, Active: true},
		"pecan":  {ID: "pecan", Name: "Noz Pecã", PricePerKiloCents: 12000, StockGrams: 3000, Active: true},
		"hidden": {ID: "hidden", Name: "Inativo", PricePerKiloCents: 8000, Active: false},
	}}
}

func TestService_Checkout(t *testing.T) {
	quote := &shipping.Quote{
		Provider:   shipping.ProviderManual,
		FeeCents:   2540,
		DistanceKm: decimal.NewFromInt(5),
	}

	t.Run("prices items from catalog with weight tiers", func(t *testing.T) {
		orders := &mockOrderRepo{}
		svc := NewService(catalog(), &mockCouponValidator{}, orders, testResolver(t), nil, nil)

		res, err := svc.Checkout(context.Background(), CheckoutRequest{
			Items:   []CheckoutItem{{ProductID: "cashew", WeightGrams: 1000}},
			Address: "Rua Aurora 100",
			Quote:   quote,
		})
		require.NoError(t, err)

		// 1kg at 10000c/kg lands in the 10% tier.
		assert.Equal(t, money.Cents(9000), res.Order.SubtotalCents)
		assert.Equal(t, money.Cents(2540), res.Order.ShippingCents)
		assert.Equal(t, money.Cents(11540), res.Order.TotalCents)
		assert.Equal(t, StatusPending, res.Order.Status)
		assert.NotEmpty(t, res.Order.ID)
		assert.Same(t, res.Order, orders.lastOrder)
	})

	t.Run("applies coupon against priced subtotal", func(t *testing.T) {
		validator := &mockCouponValidator{discount: &coupon.Discount{
			Code:        "SAVE10",
			AmountCents: 900,
		}}
		svc := NewService(catalog(), validator, &mockOrderRepo{}, testResolver(t), nil, nil)

		res, err := svc.Checkout(context.Background(), CheckoutRequest{
			Items:      []CheckoutItem{{ProductID: "cashew", WeightGrams: 1000}},
			CouponCode: "SAVE10",
			Quote:      quote,
		})
		require.NoError(t, err)

		assert.Equal(t, money.Cents(9000), validator.subtotal, "validator sees the priced subtotal")
		assert.Equal(t, money.Cents(900), res.Order.DiscountCents)
		assert.Equal(t, money.Cents(9000-900+2540), res.Order.TotalCents)
		assert.Equal(t, "SAVE10", res.Order.CouponCode)
	})

	t.Run("coupon failure propagates", func(t *testing.T) {
		validator := &mockCouponValidator{err: coupon.ErrExpired}
		svc := NewService(catalog(), validator, &mockOrderRepo{}, testResolver(t), nil, nil)

		_, err := svc.Checkout(context.Background(), CheckoutRequest{
			Items:      []CheckoutItem{{ProductID: "cashew", WeightGrams: 500}},
			CouponCode: "OLD",
		})
		assert.ErrorIs(t, err, coupon.ErrExpired)
	})

	t.Run("empty items rejected", func(t *testing.T) {
		svc := NewService(catalog(), &mockCouponValidator{}, &mockOrderRepo{}, testResolver(t), nil, nil)

		_, err := svc.Checkout(context.Background(), CheckoutRequest{})
		assert.ErrorIs(t, err, ErrEmptyItems)
	})

	t.Run("non-positive weight rejected", func(t *testing.T) {
		svc := NewService(catalog(), &mockCouponValidator{}, &mockOrderRepo{}, testResolver(t), nil, nil)

		_, err := svc.Checkout(context.Background(), CheckoutRequest{
			Items: []CheckoutItem{{ProductID: "cashew", WeightGrams: 0}},
		})
		var weightErr *InvalidWeightError
		require.ErrorAs(t, err, &weightErr)
		assert.Equal(t, "cashew", weightErr.ProductID)
	})

	t.Run("unknown and inactive products rejected", func(t *testing.T) {
		svc := NewService(catalog(), &mockCouponValidator{}, &mockOrderRepo{}, testResolver(t), nil, nil)

		for _, id := range []string{"ghost", "hidden"} {
			_, err := svc.Checkout(context.Background(), CheckoutRequest{
				Items: []CheckoutItem{{ProductID: id, WeightGrams: 100}},
			})
			var nfErr *ProductNotFoundError
			require.ErrorAs(t, err, &nfErr, "product %s", id)
			assert.Equal(t, id, nfErr.ProductID)
		}
	})

	t.Run("pix payment returns redirect", func(t *testing.T) {
		pix := &mockPixGateway{url: "https://mp.example/ticket/123"}
		svc := NewService(catalog(), &mockCouponValidator{}, &mockOrderRepo{}, testResolver(t), pix, nil)

		res, err := svc.Checkout(context.Background(), CheckoutRequest{
			Items:         []CheckoutItem{{ProductID: "cashew", WeightGrams: 1000}},
			Quote:         quote,
			PaymentMethod: PaymentPix,
		})
		require.NoError(t, err)
		assert.Equal(t, "https://mp.example/ticket/123", res.RedirectURL)
		assert.Equal(t, res.Order.ID, pix.orderID)
		assert.Equal(t, res.Order.TotalCents, pix.amount)
	})

	t.Run("unconfigured rails complete without redirect", func(t *testing.T) {
		svc := NewService(catalog(), &mockCouponValidator{}, &mockOrderRepo{}, testResolver(t), nil, nil)

		for _, method := range []PaymentMethod{PaymentPix, PaymentCard, ""} {
			res, err := svc.Checkout(context.Background(), CheckoutRequest{
				Items:         []CheckoutItem{{ProductID: "pecan", WeightGrams: 250}},
				PaymentMethod: method,
			})
			require.NoError(t, err)
			assert.Empty(t, res.RedirectURL)
		}
	})
}

func TestService_Dispatch(t *testing.T) {
	stored := &Order{
		ID:     "ord-1",
		Status: StatusPaid,
		Address: AddressSnapshot{
			Address: "Rua Aurora 100",
			Quote: &shipping.Quote{
				Provider:   shipping.ProviderManual,
				FeeCents:   2540,
				DistanceKm: decimal.NewFromInt(5),
			},
		},
	}

	t.Run("re-resolves quote for stored distance", func(t *testing.T) {
		orders := &mockOrderRepo{byID: map[string]*Order{"ord-1": stored}}
		svc := NewService(catalog(), &mockCouponValidator{}, orders, testResolver(t), nil, nil)

		res, err := svc.Dispatch(context.Background(), "ord-1")
		require.NoError(t, err)

		// No carriers configured: manual quote for 5km.
		assert.Equal(t, shipping.ProviderManual, res.Quote.Provider)
		assert.Equal(t, money.Cents(2540), res.Quote.FeeCents)
		assert.Equal(t, money.Cents(2540), orders.dispatched["ord-1"])
	})

	t.Run("missing order propagates not found", func(t *testing.T) {
		orders := &mockOrderRepo{byID: map[string]*Order{}}
		svc := NewService(catalog(), &mockCouponValidator{}, orders, testResolver(t), nil, nil)

		_, err := svc.Dispatch(context.Background(), "ghost")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
