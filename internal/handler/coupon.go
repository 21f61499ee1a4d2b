package handler

import (
	"net/http"

	"github.com/go-faster/errors"

	"github.com/nutallis/storefront/internal/domain/coupon"
	"github.com/nutallis/storefront/internal/domain/money"
)

type validateCouponRequest struct {
	Code          string `json:"code"`
	SubtotalCents int64  `json:"subtotalCents"`
}

type validateCouponResponse struct {
	Valid               bool    `json:"valid"`
	Code                string  `json:"code"`
	DiscountType        string  `json:"discountType"`
	DiscountValue       float64 `json:"discountValue"`
	DiscountAmountCents int64   `json:"discountAmountCents"`
	Description         string  `json:"description,omitempty"`
}

// couponFailure maps each validation outcome to a stable machine code and a
// customer-facing message. Messages are pt-BR since they render in the store UI.
type couponFailure struct {
	status  int
	code    string
	message string
}

func couponFailureFor(err error) (couponFailure, bool) {
	switch {
	case errors.Is(err, coupon.ErrNotFound):
		return couponFailure{http.StatusNotFound, "coupon_not_found", "Cupom não encontrado"}, true
	case errors.Is(err, coupon.ErrInactive):
		return couponFailure{http.StatusUnprocessableEntity, "coupon_inactive", "Cupom inativo"}, true
	case errors.Is(err, coupon.ErrNotYetValid):
		return couponFailure{http.StatusUnprocessableEntity, "coupon_not_yet_valid", "Cupom ainda não está válido"}, true
	case errors.Is(err, coupon.ErrExpired):
		return couponFailure{http.StatusUnprocessableEntity, "coupon_expired", "Cupom expirado"}, true
	case errors.Is(err, coupon.ErrMinimumNotMet):
		return couponFailure{http.StatusUnprocessableEntity, "coupon_minimum_not_met", "Valor mínimo do pedido não atingido"}, true
	case errors.Is(err, coupon.ErrUsesExhausted):
		return couponFailure{http.StatusUnprocessableEntity, "coupon_exhausted", "Cupom esgotado"}, true
	}
	return couponFailure{}, false
}

func (h *Handler) validateCoupon(w http.ResponseWriter, r *http.Request) {
	var req validateCouponRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Code == "" {
		writeError(w, r, http.StatusBadRequest, "bad_request", "code is required")
		return
	}

	d, err := h.coupons.Validate(r.Context(), req.Code, money.Cents(req.SubtotalCents))
	if err != nil {
		if f, ok := couponFailureFor(err); ok {
			writeError(w, r, f.status, f.code, f.message)
			return
		}
		writeError(w, r, http.StatusInternalServerError, "internal", "failed to validate coupon")
		return
	}

	writeJSON(w, r, http.StatusOK, validateCouponResponse{
		Valid:               true,
		Code:                d.Code,
		DiscountType:        string(d.DiscountType),
		DiscountValue:       d.DiscountValue.InexactFloat64(),
		DiscountAmountCents: int64(d.AmountCents),
		Description:         d.Description,
	})
}
