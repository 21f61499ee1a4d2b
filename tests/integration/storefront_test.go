//go:build integration

package integration

import (
	"encoding/json"
	"net/http"
	"regexp"
	"testing"
)

var uuidPattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

func findProduct(t *testing.T, name string) productResponse {
	t.Helper()

	resp := doGet(t, "/api/products", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list products: %d", resp.StatusCode)
	}

	for _, p := range decodeJSON[[]productResponse](t, resp) {
		if p.Name == name {
			return p
		}
	}
	t.Fatalf("product %q not seeded", name)
	return productResponse{}
}

func TestValidateCoupon(t *testing.T) {
	t.Run("seeded percentage coupon", func(t *testing.T) {
		resp := doPost(t, "/api/coupons/validate",
			map[string]any{"code": "bemvindo10", "subtotalCents": 9000}, nil)
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		v := decodeJSON[validateCouponResponse](t, resp)
		if !v.Valid || v.Code != "BEMVINDO10" {
			t.Errorf("unexpected validation: %+v", v)
		}
		if v.DiscountAmountCents != 900 {
			t.Errorf("discount: got %d, want 900", v.DiscountAmountCents)
		}
	})

	t.Run("below minimum order value", func(t *testing.T) {
		resp := doPost(t, "/api/coupons/validate",
			map[string]any{"code": "FRETEGRATIS", "subtotalCents": 9000}, nil)
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", resp.StatusCode)
		}
		e := decodeJSON[errorResponse](t, resp)
		if e.Error.Code != "coupon_minimum_not_met" {
			t.Errorf("error code: got %s", e.Error.Code)
		}
	})

	t.Run("unknown code", func(t *testing.T) {
		resp := doPost(t, "/api/coupons/validate",
			map[string]any{"code": "NOPE1234", "subtotalCents": 9000}, nil)
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", resp.StatusCode)
		}
	})
}

func TestShippingQuote(t *testing.T) {
	resp := doPost(t, "/api/shipping/quote",
		map[string]any{"address": "Av. Paulista 1000", "distanceKm": 5}, nil)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	q := decodeJSON[shippingQuoteResponse](t, resp)
	// No carrier is configured in the test environment, so the manual
	// formula answers: 1090 + 290*5.
	if q.Provider != "manual" {
		t.Errorf("provider: got %s, want manual", q.Provider)
	}
	if q.FeeCents != 2540 {
		t.Errorf("fee: got %d, want 2540", q.FeeCents)
	}
}

func TestCheckoutAndSettlement(t *testing.T) {
	cashew := findProduct(t, "Castanha de Caju")
	stockBefore := cashew.StockGrams

	// Quote shipping for a 5 km delivery.
	quoteResp := doPost(t, "/api/shipping/quote",
		map[string]any{"address": "Av. Paulista 1000", "distanceKm": 5}, nil)
	quote := decodeJSON[shippingQuoteResponse](t, quoteResp)
	quoteResp.Body.Close()

	// Checkout: 1 kg of cashews with the welcome coupon.
	resp := doPost(t, "/api/checkout", map[string]any{
		"items":      []map[string]any{{"productId": cashew.ID, "weightGrams": 1000}},
		"couponCode": "BEMVINDO10",
		"address":    "Av. Paulista 1000",
		"shipping": map[string]any{
			"provider":   quote.Provider,
			"feeCents":   quote.FeeCents,
			"distanceKm": quote.DistanceKm,
		},
		"paymentMethod": "pix",
	}, nil)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("checkout: expected 201, got %d", resp.StatusCode)
	}
	order := decodeJSON[checkoutResponse](t, resp)

	if !uuidPattern.MatchString(order.OrderID) {
		t.Errorf("order id is not a uuid: %s", order.OrderID)
	}
	if order.Status != "pending" {
		t.Errorf("status: got %s, want pending", order.Status)
	}
	// 1000 g at R$ 100/kg hits the 10%% weight tier: 10000 - 1000 = 9000.
	if order.SubtotalCents != 9000 {
		t.Errorf("subtotal: got %d, want 9000", order.SubtotalCents)
	}
	if order.DiscountCents != 900 {
		t.Errorf("discount: got %d, want 900", order.DiscountCents)
	}
	if order.TotalCents != 9000-900+2540 {
		t.Errorf("total: got %d, want %d", order.TotalCents, 9000-900+2540)
	}

	// Payment confirmation webhook, signed.
	payload, _ := json.Marshal(map[string]any{
		"order_id":        order.OrderID,
		"status":          "approved",
		"net_value_cents": order.TotalCents,
	})
	whResp := doPost(t, "/api/webhooks/mercadopago",
		json.RawMessage(payload), map[string]string{"X-Signature": signWebhook(payload)})
	whResp.Body.Close()
	if whResp.StatusCode != http.StatusOK {
		t.Fatalf("webhook: expected 200, got %d", whResp.StatusCode)
	}

	// Redelivery must be acknowledged without repeating side effects.
	whResp2 := doPost(t, "/api/webhooks/mercadopago",
		json.RawMessage(payload), map[string]string{"X-Signature": signWebhook(payload)})
	whResp2.Body.Close()
	if whResp2.StatusCode != http.StatusOK {
		t.Fatalf("webhook redelivery: expected 200, got %d", whResp2.StatusCode)
	}

	// Order is now paid.
	adminResp := doGet(t, "/api/admin/orders/"+order.OrderID,
		map[string]string{"X-API-Key": testAPIKey})
	defer adminResp.Body.Close()
	if adminResp.StatusCode != http.StatusOK {
		t.Fatalf("admin get order: expected 200, got %d", adminResp.StatusCode)
	}
	got := decodeJSON[adminOrderResponse](t, adminResp)
	if got.Status != "paid" {
		t.Errorf("order status: got %s, want paid", got.Status)
	}
	if got.CouponCode != "BEMVINDO10" {
		t.Errorf("coupon code: got %s", got.CouponCode)
	}

	// Stock was decremented exactly once despite the redelivery.
	after := findProduct(t, "Castanha de Caju")
	if after.StockGrams != stockBefore-1000 {
		t.Errorf("stock: got %d, want %d", after.StockGrams, stockBefore-1000)
	}
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	payload := []byte(`{"order_id":"00000000-0000-0000-0000-000000000000","status":"approved"}`)
	resp := doPost(t, "/api/webhooks/mercadopago",
		json.RawMessage(payload), map[string]string{"X-Signature": "ts=1,v1=deadbeef"})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestAdminRequiresAPIKey(t *testing.T) {
	resp := doGet(t, "/api/admin/orders", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}

	resp2 := doGet(t, "/api/admin/orders", map[string]string{"X-API-Key": "wrong-key"})
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong key, got %d", resp2.StatusCode)
	}
}

func TestCartFlow(t *testing.T) {
	const token = "itest-cart-token-1"
	headers := map[string]string{"X-Cart-Token": token}
	pecan := findProduct(t, "Noz Pecã")

	addResp := doPost(t, "/api/cart/items",
		map[string]any{"productId": pecan.ID, "weightGrams": 250}, headers)
	defer addResp.Body.Close()
	if addResp.StatusCode != http.StatusOK {
		t.Fatalf("add item: expected 200, got %d", addResp.StatusCode)
	}

	var cart struct {
		Items []struct {
			ProductID      string `json:"productId"`
			WeightGrams    int64  `json:"weightGrams"`
			LineTotalCents int64  `json:"lineTotalCents"`
		} `json:"items"`
		SubtotalCents int64 `json:"subtotalCents"`
	}
	if err := json.NewDecoder(addResp.Body).Decode(&cart); err != nil {
		t.Fatalf("decode cart: %v", err)
	}
	if len(cart.Items) != 1 {
		t.Fatalf("cart items: got %d, want 1", len(cart.Items))
	}
	// 250 g at R$ 120/kg hits the 3%% tier: 3000 - 90 = 2910.
	if cart.Items[0].LineTotalCents != 2910 {
		t.Errorf("line total: got %d, want 2910", cart.Items[0].LineTotalCents)
	}
	if cart.SubtotalCents != 2910 {
		t.Errorf("subtotal: got %d, want 2910", cart.SubtotalCents)
	}

	missing := doGet(t, "/api/cart", nil)
	defer missing.Body.Close()
	if missing.StatusCode != http.StatusBadRequest {
		t.Errorf("cart without token: expected 400, got %d", missing.StatusCode)
	}
}
