//go:build integration

package integration

import (
	"net/http"
	"strconv"
	"testing"
)

func TestHealthProbes(t *testing.T) {
	for _, path := range []string{"/livez", "/readyz"} {
		resp := doGet(t, path, nil)
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			t.Fatalf("%s: expected 200, got %d", path, resp.StatusCode)
		}
		h := decodeJSON[healthResponse](t, resp)
		resp.Body.Close()
		if h.Status != "ok" {
			t.Errorf("%s: status %q", path, h.Status)
		}
	}
}

func TestMiddlewareHeaders(t *testing.T) {
	resp := doGet(t, "/api/products", nil)
	defer resp.Body.Close()

	if resp.Header.Get("X-Request-Id") == "" {
		t.Error("missing X-Request-Id header")
	}

	limit := resp.Header.Get("X-RateLimit-Limit")
	if limit == "" {
		t.Fatal("missing X-RateLimit-Limit header")
	}
	if _, err := strconv.Atoi(limit); err != nil {
		t.Errorf("X-RateLimit-Limit not numeric: %q", limit)
	}
	if resp.Header.Get("X-RateLimit-Remaining") == "" {
		t.Error("missing X-RateLimit-Remaining header")
	}
}

func TestRequestIDEcho(t *testing.T) {
	resp := doGet(t, "/api/products", map[string]string{"X-Request-Id": "itest-req-42"})
	defer resp.Body.Close()

	if got := resp.Header.Get("X-Request-Id"); got != "itest-req-42" {
		t.Errorf("request id: got %q, want itest-req-42", got)
	}
}
