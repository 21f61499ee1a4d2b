package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutallis/storefront/internal/domain/coupon"
)

func postJSON(router http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestValidateCouponEndpoint(t *testing.T) {
	t.Run("valid coupon returns the discount", func(t *testing.T) {
		router, deps := testRouter(t)
		deps.validator.discount = &coupon.Discount{
			Code:          "SAVE10",
			DiscountType:  coupon.DiscountPercentage,
			DiscountValue: decimal.NewFromInt(10),
			AmountCents:   900,
		}

		rec := postJSON(router, "/api/coupons/validate", `{"code":"save10","subtotalCents":9000}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp validateCouponResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Valid)
		assert.Equal(t, "SAVE10", resp.Code)
		assert.Equal(t, "percentage", resp.DiscountType)
		assert.Equal(t, int64(900), resp.DiscountAmountCents)
	})

	t.Run("failure reasons map to distinct codes", func(t *testing.T) {
		tests := []struct {
			name       string
			err        error
			wantStatus int
			wantCode   string
		}{
			{"unknown code", coupon.ErrNotFound, http.StatusNotFound, "coupon_not_found"},
			{"inactive", coupon.ErrInactive, http.StatusUnprocessableEntity, "coupon_inactive"},
			{"not yet valid", coupon.ErrNotYetValid, http.StatusUnprocessableEntity, "coupon_not_yet_valid"},
			{"expired", coupon.ErrExpired, http.StatusUnprocessableEntity, "coupon_expired"},
			{"below minimum", coupon.ErrMinimumNotMet, http.StatusUnprocessableEntity, "coupon_minimum_not_met"},
			{"exhausted", coupon.ErrUsesExhausted, http.StatusUnprocessableEntity, "coupon_exhausted"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				router, deps := testRouter(t)
				deps.validator.err = tt.err

				rec := postJSON(router, "/api/coupons/validate", `{"code":"X","subtotalCents":100}`)
				require.Equal(t, tt.wantStatus, rec.Code)

				var resp errorResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.Equal(t, tt.wantCode, resp.Error.Code)
				assert.NotEmpty(t, resp.Error.Message)
			})
		}
	})

	t.Run("empty code is a bad request", func(t *testing.T) {
		router, _ := testRouter(t)
		rec := postJSON(router, "/api/coupons/validate", `{"subtotalCents":100}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
