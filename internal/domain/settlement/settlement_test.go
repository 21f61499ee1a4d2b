package settlement

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/nutallis/storefront/internal/domain/coupon"
	"github.com/nutallis/storefront/internal/domain/money"
	"github.com/nutallis/storefront/internal/domain/order"
)

func TestSplitBoxes(t *testing.T) {
	t.Run("fixed percentages", func(t *testing.T) {
		boxes := SplitBoxes(10000)
		require.Len(t, boxes, 5)

		want := map[BoxKey]money.Cents{
			BoxRestock:   5300,
			BoxMarketing: 1500,
			BoxExpansion: 1700,
			BoxInputs:    500,
			BoxReserve:   1000,
		}
		for _, b := range boxes {
			assert.Equal(t, want[b.Key], b.AmountCents, "box %s", b.Key)
		}
	})

	t.Run("percentages sum to 100", func(t *testing.T) {
		var total int64
		for _, b := range SplitBoxes(0) {
			total += b.PercentBps
		}
		assert.Equal(t, int64(10_000), total)
	})

	t.Run("each box rounds half up independently", func(t *testing.T) {
		// 33 cents: restock 17.49 -> 17, marketing 4.95 -> 5,
		// expansion 5.61 -> 6, inputs 1.65 -> 2, reserve 3.3 -> 3.
		boxes := SplitBoxes(33)
		amounts := map[BoxKey]money.Cents{}
		for _, b := range boxes {
			amounts[b.Key] = b.AmountCents
		}
		assert.Equal(t, money.Cents(17), amounts[BoxRestock])
		assert.Equal(t, money.Cents(5), amounts[BoxMarketing])
		assert.Equal(t, money.Cents(6), amounts[BoxExpansion])
		assert.Equal(t, money.Cents(2), amounts[BoxInputs])
		assert.Equal(t, money.Cents(3), amounts[BoxReserve])
	})

	t.Run("deterministic", func(t *testing.T) {
		assert.Equal(t, SplitBoxes(98765), SplitBoxes(98765))
	})
}

// --- Mocks ---

type mockOrderRepo struct {
	byID map[string]*order.Order
}

func (m *mockOrderRepo) Create(_ context.Context, _ *order.Order) error { return nil }
func (m *mockOrderRepo) List(_ context.Context) ([]order.Order, error)  { return nil, nil }
func (m *mockOrderRepo) MarkDispatched(_ context.Context, _ string, _ money.Cents) error {
	return nil
}

func (m *mockOrderRepo) GetByID(_ context.Context, id string) (*order.Order, error) {
	o, ok := m.byID[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	return o, nil
}

type mockCouponRepo struct {
	coupon.Repository

	incremented []string
}

func (m *mockCouponRepo) IncrementUsedCount(_ context.Context, code string) error {
	m.incremented = append(m.incremented, code)
	return nil
}

type mockSettlementRepo struct {
	pending    map[string]bool
	decrements map[string]int64
	boxWrites  int
	lastBoxes  []FinanceBox
}

func (m *mockSettlementRepo) TransitionToPaid(_ context.Context, orderID string) (bool, error) {
	if !m.pending[orderID] {
		return false, nil
	}
	m.pending[orderID] = false
	return true, nil
}

func (m *mockSettlementRepo) DecrementStock(_ context.Context, productID string, grams int64) error {
	if m.decrements == nil {
		m.decrements = map[string]int64{}
	}
	m.decrements[productID] += grams
	return nil
}

func (m *mockSettlementRepo) UpsertFinanceBoxes(_ context.Context, _ string, boxes []FinanceBox) error {
	m.boxWrites++
	m.lastBoxes = boxes
	return nil
}

func testOrder() *order.Order {
	return &order.Order{
		ID:         "ord-1",
		Status:     order.StatusPending,
		CouponCode: "SAVE10",
		Items: []order.LineItem{
			{ProductID: "cashew", WeightGrams: 1000},
			{ProductID: "pecan", WeightGrams: 250},
		},
	}
}

func TestService_Settle(t *testing.T) {
	newFixture := func() (*Service, *mockSettlementRepo, *mockCouponRepo) {
		repo := &mockSettlementRepo{pending: map[string]bool{"ord-1": true}}
		coupons := &mockCouponRepo{}
		orders := &mockOrderRepo{byID: map[string]*order.Order{"ord-1": testOrder()}}
		return NewService(orders, coupons, repo, zaptest.NewLogger(t)), repo, coupons
	}

	t.Run("settles a pending order", func(t *testing.T) {
		svc, repo, coupons := newFixture()

		err := svc.Settle(context.Background(), "ord-1", 10640)
		require.NoError(t, err)

		assert.Equal(t, int64(1000), repo.decrements["cashew"])
		assert.Equal(t, int64(250), repo.decrements["pecan"])
		assert.Equal(t, 1, repo.boxWrites)
		assert.Equal(t, SplitBoxes(10640), repo.lastBoxes)
		assert.Equal(t, []string{"SAVE10"}, coupons.incremented)
	})

	t.Run("second delivery is a no-op", func(t *testing.T) {
		svc, repo, coupons := newFixture()

		require.NoError(t, svc.Settle(context.Background(), "ord-1", 10640))
		err := svc.Settle(context.Background(), "ord-1", 10640)
		assert.ErrorIs(t, err, ErrAlreadySettled)

		// Side effects applied exactly once.
		assert.Equal(t, int64(1000), repo.decrements["cashew"])
		assert.Equal(t, 1, repo.boxWrites)
		assert.Len(t, coupons.incremented, 1)
	})

	t.Run("order without coupon skips usage increment", func(t *testing.T) {
		svc, _, coupons := newFixture()
		o := testOrder()
		o.CouponCode = ""
		svc.orders = &mockOrderRepo{byID: map[string]*order.Order{"ord-1": o}}

		require.NoError(t, svc.Settle(context.Background(), "ord-1", 5000))
		assert.Empty(t, coupons.incremented)
	})

	t.Run("negative net value clamps to zero boxes", func(t *testing.T) {
		svc, repo, _ := newFixture()

		require.NoError(t, svc.Settle(context.Background(), "ord-1", -500))
		for _, b := range repo.lastBoxes {
			assert.Equal(t, money.Cents(0), b.AmountCents)
		}
	})
}
