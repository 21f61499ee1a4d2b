package handler

import (
	"net/http"

	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/nutallis/storefront/internal/domain/shipping"
)

type shippingQuoteRequest struct {
	Address  string  `json:"address"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Distance float64 `json:"distanceKm"`
}

type shippingQuoteResponse struct {
	Provider   string  `json:"provider"`
	FeeCents   int64   `json:"feeCents"`
	ETAMinutes *int    `json:"etaMinutes,omitempty"`
	DistanceKm float64 `json:"distanceKm"`
}

func toShippingQuoteResponse(q *shipping.Quote) shippingQuoteResponse {
	return shippingQuoteResponse{
		Provider:   string(q.Provider),
		FeeCents:   int64(q.FeeCents),
		ETAMinutes: q.ETAMinutes,
		DistanceKm: q.DistanceKm.InexactFloat64(),
	}
}

// quoteShipping returns a shipping quote for a destination. The distance is
// resolved from coordinates when a distance service is configured, otherwise
// the caller-supplied value is used. The endpoint never fails the quote:
// carrier and distance failures degrade to the manual formula.
func (h *Handler) quoteShipping(w http.ResponseWriter, r *http.Request) {
	var req shippingQuoteRequest
	if !decodeBody(w, r, &req) {
		return
	}

	distance := decimal.NewFromFloat(req.Distance)
	if h.distance != nil && h.distance.Enabled() && (req.Lat != 0 || req.Lng != 0) {
		km, err := h.distance.DistanceKm(r.Context(), req.Lat, req.Lng)
		if err != nil {
			zctx.From(r.Context()).Debug("distance lookup failed", zap.Error(err))
		} else {
			distance = km
		}
	}
	if distance.IsNegative() {
		distance = decimal.Zero
	}

	q := h.resolver.Resolve(r.Context(), distance)
	writeJSON(w, r, http.StatusOK, toShippingQuoteResponse(q))
}
