package handler

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/nutallis/storefront/internal/domain/money"
	"github.com/nutallis/storefront/internal/domain/settlement"
)

const (
	signatureHeader = "X-Signature"
	maxWebhookBody  = 1 << 20
)

// verifyWebhookSignature checks the X-Signature header, formatted as
// "ts=<timestamp>,v1=<hex>", against HMAC-SHA256 of "<timestamp>.<body>".
// Verification runs only when both a secret and a header are present.
func (h *Handler) verifyWebhookSignature(r *http.Request, body []byte) bool {
	header := r.Header.Get(signatureHeader)
	if len(h.webhookSecret) == 0 || header == "" {
		return true
	}

	var ts, sig string
	for _, part := range strings.Split(header, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch k {
		case "ts":
			ts = v
		case "v1":
			sig = v
		}
	}
	if ts == "" || sig == "" {
		return false
	}

	mac := hmac.New(sha256.New, h.webhookSecret)
	mac.Write([]byte(ts))
	mac.Write([]byte("."))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(strings.ToLower(sig)))
}

// paymentNotification is the normalized shape both gateways reduce to.
type paymentNotification struct {
	OrderID       string
	Status        string
	NetValueCents int64
}

// settledStatus reports whether a gateway status means the payment cleared.
// An absent status is treated as cleared since both gateways only notify
// this endpoint on completion in the simplified flow.
func settledStatus(status string) bool {
	switch strings.ToLower(status) {
	case "", "approved", "paid", "concluida":
		return true
	}
	return false
}

// settleFromWebhook runs the shared webhook flow: settle the order and map
// the outcome to an HTTP status. Redeliveries acknowledge with 200 so the
// gateway stops retrying; transient persistence failures return 500 so it
// retries later.
func (h *Handler) settleFromWebhook(w http.ResponseWriter, r *http.Request, n paymentNotification) {
	ctx := r.Context()
	lg := zctx.From(ctx)

	if n.OrderID == "" {
		lg.Debug("webhook without order reference ignored")
		writeJSON(w, r, http.StatusOK, map[string]bool{"ok": true})
		return
	}
	if !settledStatus(n.Status) {
		lg.Debug("webhook with non-final status ignored",
			zap.String("order_id", n.OrderID),
			zap.String("status", n.Status),
		)
		writeJSON(w, r, http.StatusOK, map[string]bool{"ok": true})
		return
	}

	net := money.Cents(n.NetValueCents)
	if net <= 0 {
		// Gateways that omit the net value settle on the order total.
		o, err := h.orders.GetByID(ctx, n.OrderID)
		if err != nil {
			lg.Debug("webhook for unknown order ignored", zap.String("order_id", n.OrderID), zap.Error(err))
			writeJSON(w, r, http.StatusOK, map[string]bool{"ok": true})
			return
		}
		net = o.TotalCents
	}

	err := h.settleSvc.Settle(ctx, n.OrderID, net)
	switch {
	case errors.Is(err, settlement.ErrAlreadySettled):
		writeJSON(w, r, http.StatusOK, map[string]bool{"ok": true})
	case err != nil:
		lg.Error("settlement failed", zap.String("order_id", n.OrderID), zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "internal", "settlement failed")
	default:
		writeJSON(w, r, http.StatusOK, map[string]bool{"ok": true})
	}
}

func (h *Handler) readWebhookBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "bad_request", "failed to read body")
		return nil, false
	}
	if !h.verifyWebhookSignature(r, body) {
		writeError(w, r, http.StatusUnauthorized, "invalid_signature", "signature verification failed")
		return nil, false
	}
	return body, true
}

type mercadoPagoWebhook struct {
	Action string `json:"action"`
	Data   struct {
		ID string `json:"id"`
	} `json:"data"`
	OrderID           string `json:"order_id"`
	ExternalReference string `json:"external_reference"`
	Status            string `json:"status"`
	NetValueCents     int64  `json:"net_value_cents"`
}

// mercadoPagoWebhookHandler ingests Mercado Pago payment notifications. The
// order reference arrives either as order_id or as external_reference
// depending on the notification topic.
func (h *Handler) mercadoPagoWebhook(w http.ResponseWriter, r *http.Request) {
	body, ok := h.readWebhookBody(w, r)
	if !ok {
		return
	}

	var payload mercadoPagoWebhook
	if err := json.Unmarshal(body, &payload); err != nil {
		writeError(w, r, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	orderID := payload.OrderID
	if orderID == "" {
		orderID = payload.ExternalReference
	}
	h.settleFromWebhook(w, r, paymentNotification{
		OrderID:       orderID,
		Status:        payload.Status,
		NetValueCents: payload.NetValueCents,
	})
}

type efiWebhook struct {
	OrderID       string `json:"order_id"`
	Status        string `json:"status"`
	NetValueCents int64  `json:"net_value_cents"`
}

func (h *Handler) efiWebhook(w http.ResponseWriter, r *http.Request) {
	body, ok := h.readWebhookBody(w, r)
	if !ok {
		return
	}

	var payload efiWebhook
	if err := json.Unmarshal(body, &payload); err != nil {
		writeError(w, r, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	h.settleFromWebhook(w, r, paymentNotification{
		OrderID:       payload.OrderID,
		Status:        payload.Status,
		NetValueCents: payload.NetValueCents,
	})
}
