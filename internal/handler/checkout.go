package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/nutallis/storefront/internal/domain/money"
	"github.com/nutallis/storefront/internal/domain/order"
	"github.com/nutallis/storefront/internal/domain/shipping"
)

type checkoutItemRequest struct {
	ProductID   string `json:"productId"`
	WeightGrams int64  `json:"weightGrams"`
}

type checkoutShippingRequest struct {
	Provider   string  `json:"provider"`
	FeeCents   int64   `json:"feeCents"`
	ETAMinutes *int    `json:"etaMinutes,omitempty"`
	DistanceKm float64 `json:"distanceKm"`
}

type checkoutRequest struct {
	Items         []checkoutItemRequest    `json:"items"`
	CouponCode    string                   `json:"couponCode,omitempty"`
	Address       string                   `json:"address"`
	Shipping      *checkoutShippingRequest `json:"shipping,omitempty"`
	PaymentMethod string                   `json:"paymentMethod"`
}

type checkoutResponse struct {
	OrderID       string `json:"orderId"`
	Status        string `json:"status"`
	SubtotalCents int64  `json:"subtotalCents"`
	DiscountCents int64  `json:"discountCents"`
	ShippingCents int64  `json:"shippingCents"`
	TotalCents    int64  `json:"totalCents"`
	RedirectURL   string `json:"redirectUrl,omitempty"`
}

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if !decodeBody(w, r, &req) {
		return
	}

	items := make([]order.CheckoutItem, len(req.Items))
	for i, it := range req.Items {
		items[i] = order.CheckoutItem{ProductID: it.ProductID, WeightGrams: it.WeightGrams}
	}

	var quote *shipping.Quote
	if req.Shipping != nil {
		quote = &shipping.Quote{
			Provider:   shipping.ProviderName(req.Shipping.Provider),
			FeeCents:   money.Cents(req.Shipping.FeeCents),
			ETAMinutes: req.Shipping.ETAMinutes,
			DistanceKm: decimal.NewFromFloat(req.Shipping.DistanceKm),
		}
	}

	result, err := h.orderSvc.Checkout(r.Context(), order.CheckoutRequest{
		Items:         items,
		CouponCode:    req.CouponCode,
		Address:       req.Address,
		Quote:         quote,
		PaymentMethod: order.PaymentMethod(req.PaymentMethod),
	})
	if err != nil {
		h.writeCheckoutError(w, r, err)
		return
	}

	o := result.Order
	trace.SpanFromContext(r.Context()).SetAttributes(
		attribute.String("order.id", o.ID),
		attribute.Int64("order.total_cents", int64(o.TotalCents)),
	)
	writeJSON(w, r, http.StatusCreated, checkoutResponse{
		OrderID:       o.ID,
		Status:        string(o.Status),
		SubtotalCents: int64(o.SubtotalCents),
		DiscountCents: int64(o.DiscountCents),
		ShippingCents: int64(o.ShippingCents),
		TotalCents:    int64(o.TotalCents),
		RedirectURL:   result.RedirectURL,
	})
}

func (h *Handler) writeCheckoutError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		notFound      *order.ProductNotFoundError
		invalidWeight *order.InvalidWeightError
	)
	switch {
	case errors.Is(err, order.ErrEmptyItems):
		writeError(w, r, http.StatusBadRequest, "empty_items", "order must contain at least one item")
	case errors.As(err, &invalidWeight):
		writeError(w, r, http.StatusUnprocessableEntity, "invalid_weight", invalidWeight.Error())
	case errors.As(err, &notFound):
		writeError(w, r, http.StatusUnprocessableEntity, "unknown_product", notFound.Error())
	default:
		if f, ok := couponFailureFor(err); ok {
			writeError(w, r, f.status, f.code, f.message)
			return
		}
		writeError(w, r, http.StatusInternalServerError, "internal", "failed to submit order")
	}
}
