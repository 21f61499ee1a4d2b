package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"

	"github.com/nutallis/storefront/internal/domain/cart"
	"github.com/nutallis/storefront/internal/domain/pricing"
	"github.com/nutallis/storefront/internal/domain/product"
)

// cartTokenHeader carries the opaque client-generated cart identifier.
const cartTokenHeader = "X-Cart-Token"

func cartToken(w http.ResponseWriter, r *http.Request) (string, bool) {
	token := r.Header.Get(cartTokenHeader)
	if token == "" {
		writeError(w, r, http.StatusBadRequest, "missing_cart_token", "X-Cart-Token header is required")
		return "", false
	}
	return token, true
}

type cartItemResponse struct {
	ID             string `json:"id"`
	ProductID      string `json:"productId"`
	ProductName    string `json:"productName"`
	WeightGrams    int64  `json:"weightGrams"`
	LineTotalCents int64  `json:"lineTotalCents"`
}

type cartResponse struct {
	Items         []cartItemResponse `json:"items"`
	SubtotalCents int64              `json:"subtotalCents"`
}

func (h *Handler) renderCart(w http.ResponseWriter, r *http.Request, token string) {
	items, err := h.carts.List(r.Context(), token)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal", "failed to load cart")
		return
	}

	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	products, err := h.products.GetByIDs(r.Context(), ids)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal", "failed to load cart products")
		return
	}
	byID := make(map[string]product.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	resp := cartResponse{Items: make([]cartItemResponse, 0, len(items))}
	for _, it := range items {
		p, ok := byID[it.ProductID]
		if !ok {
			// Product removed from catalog after it entered the cart.
			continue
		}
		line := pricing.PriceLine(p.PricePerKiloCents, it.WeightGrams)
		resp.Items = append(resp.Items, cartItemResponse{
			ID:             it.ID,
			ProductID:      it.ProductID,
			ProductName:    p.Name,
			WeightGrams:    it.WeightGrams,
			LineTotalCents: int64(line),
		})
		resp.SubtotalCents += int64(line)
	}
	writeJSON(w, r, http.StatusOK, resp)
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	token, ok := cartToken(w, r)
	if !ok {
		return
	}
	h.renderCart(w, r, token)
}

type addCartItemRequest struct {
	ProductID   string `json:"productId"`
	WeightGrams int64  `json:"weightGrams"`
}

func (h *Handler) addCartItem(w http.ResponseWriter, r *http.Request) {
	token, ok := cartToken(w, r)
	if !ok {
		return
	}
	var req addCartItemRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.WeightGrams <= 0 {
		writeError(w, r, http.StatusUnprocessableEntity, "invalid_weight", "weightGrams must be positive")
		return
	}
	p, err := h.products.GetByID(r.Context(), req.ProductID)
	switch {
	case errors.Is(err, product.ErrNotFound):
		writeError(w, r, http.StatusUnprocessableEntity, "unknown_product", "product is not available")
		return
	case err != nil:
		writeError(w, r, http.StatusInternalServerError, "internal", "failed to load product")
		return
	case !p.Active:
		writeError(w, r, http.StatusUnprocessableEntity, "unknown_product", "product is not available")
		return
	}
	item := &cart.Item{CartToken: token, ProductID: req.ProductID, WeightGrams: req.WeightGrams}
	if err := h.carts.Add(r.Context(), item); err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal", "failed to add cart item")
		return
	}
	h.renderCart(w, r, token)
}

type updateCartItemRequest struct {
	WeightGrams int64 `json:"weightGrams"`
}

func (h *Handler) updateCartItem(w http.ResponseWriter, r *http.Request) {
	token, ok := cartToken(w, r)
	if !ok {
		return
	}
	var req updateCartItemRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.WeightGrams <= 0 {
		writeError(w, r, http.StatusUnprocessableEntity, "invalid_weight", "weightGrams must be positive")
		return
	}
	err := h.carts.UpdateWeight(r.Context(), token, chi.URLParam(r, "id"), req.WeightGrams)
	switch {
	case errors.Is(err, cart.ErrItemNotFound):
		writeError(w, r, http.StatusNotFound, "not_found", "cart item not found")
	case err != nil:
		writeError(w, r, http.StatusInternalServerError, "internal", "failed to update cart item")
	default:
		h.renderCart(w, r, token)
	}
}

func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	token, ok := cartToken(w, r)
	if !ok {
		return
	}
	err := h.carts.Remove(r.Context(), token, chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, cart.ErrItemNotFound):
		writeError(w, r, http.StatusNotFound, "not_found", "cart item not found")
	case err != nil:
		writeError(w, r, http.StatusInternalServerError, "internal", "failed to remove cart item")
	default:
		h.renderCart(w, r, token)
	}
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	token, ok := cartToken(w, r)
	if !ok {
		return
	}
	if err := h.carts.Clear(r.Context(), token); err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal", "failed to clear cart")
		return
	}
	writeJSON(w, r, http.StatusOK, cartResponse{Items: []cartItemResponse{}})
}
