package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/nutallis/storefront/internal/domain/coupon"
	"github.com/nutallis/storefront/internal/domain/money"
	"github.com/nutallis/storefront/internal/domain/order"
	"github.com/nutallis/storefront/internal/domain/product"
)

// Product administration.

type adminProductRequest struct {
	Name              string  `json:"name"`
	Slug              string  `json:"slug"`
	Description       string  `json:"description"`
	CategoryID        string  `json:"categoryId"`
	PricePerKiloCents int64   `json:"pricePerKgCents"`
	CostPerKiloCents  int64   `json:"costPerKgCents"`
	MarginPct         float64 `json:"marginPct"`
	StockGrams        int64   `json:"stockGrams"`
	ReorderPointGrams int64   `json:"reorderPointGrams"`
	ImageURL          string  `json:"imageUrl"`
	IsActive          bool    `json:"isActive"`
}

func (req *adminProductRequest) validate() (string, bool) {
	switch {
	case req.Name == "":
		return "name is required", false
	case req.PricePerKiloCents <= 0:
		return "pricePerKgCents must be positive", false
	case req.CostPerKiloCents < 0:
		return "costPerKgCents must not be negative", false
	case req.StockGrams < 0:
		return "stockGrams must not be negative", false
	}
	return "", true
}

func (req *adminProductRequest) apply(p *product.Product) {
	p.Name = req.Name
	p.Slug = req.Slug
	p.Description = req.Description
	p.CategoryID = req.CategoryID
	p.PricePerKiloCents = money.Cents(req.PricePerKiloCents)
	p.CostPerKiloCents = money.Cents(req.CostPerKiloCents)
	p.MarginPct = decimal.NewFromFloat(req.MarginPct)
	p.StockGrams = req.StockGrams
	p.ReorderPointGrams = req.ReorderPointGrams
	p.ImageURL = req.ImageURL
	p.Active = req.IsActive
}

type adminProductResponse struct {
	productResponse

	Slug              string  `json:"slug"`
	CostPerKiloCents  int64   `json:"costPerKgCents"`
	MarginPct         float64 `json:"marginPct"`
	ReorderPointGrams int64   `json:"reorderPointGrams"`
	NeedsReorder      bool    `json:"needsReorder"`
}

func toAdminProductResponse(p product.Product) adminProductResponse {
	return adminProductResponse{
		productResponse:   toProductResponse(p),
		Slug:              p.Slug,
		CostPerKiloCents:  int64(p.CostPerKiloCents),
		MarginPct:         p.MarginPct.InexactFloat64(),
		ReorderPointGrams: p.ReorderPointGrams,
		NeedsReorder:      p.ReorderPointGrams > 0 && p.StockGrams <= p.ReorderPointGrams,
	}
}

func (h *Handler) adminListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal", "failed to list products")
		return
	}
	out := make([]adminProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toAdminProductResponse(p))
	}
	writeJSON(w, r, http.StatusOK, out)
}

func (h *Handler) adminCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req adminProductRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if msg, ok := req.validate(); !ok {
		writeError(w, r, http.StatusUnprocessableEntity, "invalid_product", msg)
		return
	}
	var p product.Product
	req.apply(&p)
	if err := h.products.Create(r.Context(), &p); err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal", "failed to create product")
		return
	}
	writeJSON(w, r, http.StatusCreated, toAdminProductResponse(p))
}

func (h *Handler) adminUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req adminProductRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if msg, ok := req.validate(); !ok {
		writeError(w, r, http.StatusUnprocessableEntity, "invalid_product", msg)
		return
	}
	p := product.Product{ID: chi.URLParam(r, "id")}
	req.apply(&p)
	err := h.products.Update(r.Context(), &p)
	switch {
	case errors.Is(err, product.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "not_found", "product not found")
	case err != nil:
		writeError(w, r, http.StatusInternalServerError, "internal", "failed to update product")
	default:
		writeJSON(w, r, http.StatusOK, toAdminProductResponse(p))
	}
}

func (h *Handler) adminDeleteProduct(w http.ResponseWriter, r *http.Request) {
	err := h.products.Delete(r.Context(), chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, product.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "not_found", "product not found")
	case err != nil:
		writeError(w, r, http.StatusInternalServerError, "internal", "failed to delete product")
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

// Category administration.

type adminCategoryRequest struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	SortOrder   int    `json:"sortOrder"`
	IsActive    bool   `json:"isActive"`
}

func (h *Handler) adminCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req adminCategoryRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeError(w, r, http.StatusUnprocessableEntity, "invalid_category", "name is required")
		return
	}
	c := product.Category{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		SortOrder:   req.SortOrder,
		Active:      req.IsActive,
	}
	if err := h.products.CreateCategory(r.Context(), &c); err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal", "failed to create category")
		return
	}
	writeJSON(w, r, http.StatusCreated, categoryResponse{ID: c.ID, Name: c.Name, Slug: c.Slug})
}

func (h *Handler) adminUpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req adminCategoryRequest
	if !decodeBody(w, r, &req) {
		return
	}
	c := product.Category{
		ID:          chi.URLParam(r, "id"),
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		SortOrder:   req.SortOrder,
		Active:      req.IsActive,
	}
	err := h.products.UpdateCategory(r.Context(), &c)
	switch {
	case errors.Is(err, product.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "not_found", "category not found")
	case err != nil:
		writeError(w, r, http.StatusInternalServerError, "internal", "failed to update category")
	default:
		writeJSON(w, r, http.StatusOK, categoryResponse{ID: c.ID, Name: c.Name, Slug: c.Slug})
	}
}

func (h *Handler) adminDeleteCategory(w http.ResponseWriter, r *http.Request) {
	err := h.products.DeleteCategory(r.Context(), chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, product.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "not_found", "category not found")
	case err != nil:
		writeError(w, r, http.StatusInternalServerError, "internal", "failed to delete category")
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

// Coupon administration.

type adminCouponRequest struct {
	Code              string  `json:"code"`
	Description       string  `json:"description"`
	DiscountType      string  `json:"discountType"`
	DiscountValue     float64 `json:"discountValue"`
	MinOrderCents     int64   `json:"minOrderCents"`
	MaxUses           int     `json:"maxUses"`
	ValidFrom         string  `json:"validFrom,omitempty"`
	ValidUntil        string  `json:"validUntil,omitempty"`
	IsActive          bool    `json:"isActive"`
}

func (req *adminCouponRequest) toCoupon() (*coupon.Coupon, string, bool) {
	if req.Code == "" {
		return nil, "code is required", false
	}
	dt := coupon.DiscountType(req.DiscountType)
	if dt != coupon.DiscountPercentage && dt != coupon.DiscountFixed {
		return nil, "discountType must be percentage or fixed", false
	}
	if req.DiscountValue <= 0 {
		return nil, "discountValue must be positive", false
	}
	c := &coupon.Coupon{
		Code:          req.Code,
		Description:   req.Description,
		DiscountType:  dt,
		DiscountValue: decimal.NewFromFloat(req.DiscountValue),
		MinOrderValue: money.Cents(req.MinOrderCents),
		MaxUses:       req.MaxUses,
		Active:        req.IsActive,
	}
	if req.ValidFrom != "" {
		t, err := time.Parse(time.RFC3339, req.ValidFrom)
		if err != nil {
			return nil, "validFrom must be RFC3339", false
		}
		c.ValidFrom = &t
	}
	if req.ValidUntil != "" {
		t, err := time.Parse(time.RFC3339, req.ValidUntil)
		if err != nil {
			return nil, "validUntil must be RFC3339", false
		}
		c.ValidUntil = &t
	}
	return c, "", true
}

type adminCouponResponse struct {
	ID            string  `json:"id"`
	Code          string  `json:"code"`
	Description   string  `json:"description,omitempty"`
	DiscountType  string  `json:"discountType"`
	DiscountValue float64 `json:"discountValue"`
	MinOrderCents int64   `json:"minOrderCents"`
	MaxUses       int     `json:"maxUses"`
	UsedCount     int     `json:"usedCount"`
	ValidFrom     string  `json:"validFrom,omitempty"`
	ValidUntil    string  `json:"validUntil,omitempty"`
	IsActive      bool    `json:"isActive"`
}

func toAdminCouponResponse(c coupon.Coupon) adminCouponResponse {
	resp := adminCouponResponse{
		ID:            c.ID,
		Code:          c.Code,
		Description:   c.Description,
		DiscountType:  string(c.DiscountType),
		DiscountValue: c.DiscountValue.InexactFloat64(),
		MinOrderCents: int64(c.MinOrderValue),
		MaxUses:       c.MaxUses,
		UsedCount:     c.UsedCount,
		IsActive:      c.Active,
	}
	if c.ValidFrom != nil {
		resp.ValidFrom = c.ValidFrom.Format(time.RFC3339)
	}
	if c.ValidUntil != nil {
		resp.ValidUntil = c.ValidUntil.Format(time.RFC3339)
	}
	return resp
}

func (h *Handler) adminListCoupons(w http.ResponseWriter, r *http.Request) {
	coupons, err := h.couponRepo.List(r.Context())
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal", "failed to list coupons")
		return
	}
	out := make([]adminCouponResponse, 0, len(coupons))
	for _, c := range coupons {
		out = append(out, toAdminCouponResponse(c))
	}
	writeJSON(w, r, http.StatusOK, out)
}

func (h *Handler) adminCreateCoupon(w http.ResponseWriter, r *http.Request) {
	var req adminCouponRequest
	if !decodeBody(w, r, &req) {
		return
	}
	c, msg, ok := req.toCoupon()
	if !ok {
		writeError(w, r, http.StatusUnprocessableEntity, "invalid_coupon", msg)
		return
	}
	if err := h.couponRepo.Create(r.Context(), c); err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal", "failed to create coupon")
		return
	}
	writeJSON(w, r, http.StatusCreated, toAdminCouponResponse(*c))
}

func (h *Handler) adminUpdateCoupon(w http.ResponseWriter, r *http.Request) {
	var req adminCouponRequest
	if !decodeBody(w, r, &req) {
		return
	}
	c, msg, ok := req.toCoupon()
	if !ok {
		writeError(w, r, http.StatusUnprocessableEntity, "invalid_coupon", msg)
		return
	}
	c.ID = chi.URLParam(r, "id")
	err := h.couponRepo.Update(r.Context(), c)
	switch {
	case errors.Is(err, coupon.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "not_found", "coupon not found")
	case err != nil:
		writeError(w, r, http.StatusInternalServerError, "internal", "failed to update coupon")
	default:
		writeJSON(w, r, http.StatusOK, toAdminCouponResponse(*c))
	}
}

func (h *Handler) adminDeleteCoupon(w http.ResponseWriter, r *http.Request) {
	err := h.couponRepo.Delete(r.Context(), chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, coupon.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "not_found", "coupon not found")
	case err != nil:
		writeError(w, r, http.StatusInternalServerError, "internal", "failed to delete coupon")
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

// Order administration.

type adminOrderResponse struct {
	ID            string           `json:"id"`
	Status        string           `json:"status"`
	Items         []order.LineItem `json:"items"`
	SubtotalCents int64            `json:"subtotalCents"`
	DiscountCents int64            `json:"discountCents"`
	ShippingCents int64            `json:"shippingCents"`
	TotalCents    int64            `json:"totalCents"`
	CouponCode    string           `json:"couponCode,omitempty"`
	Address       string           `json:"address"`
	CreatedAt     string           `json:"createdAt"`
}

func toAdminOrderResponse(o order.Order) adminOrderResponse {
	return adminOrderResponse{
		ID:            o.ID,
		Status:        string(o.Status),
		Items:         o.Items,
		SubtotalCents: int64(o.SubtotalCents),
		DiscountCents: int64(o.DiscountCents),
		ShippingCents: int64(o.ShippingCents),
		TotalCents:    int64(o.TotalCents),
		CouponCode:    o.CouponCode,
		Address:       o.Address.Address,
		CreatedAt:     o.CreatedAt.Format(time.RFC3339),
	}
}

func (h *Handler) adminListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.List(r.Context())
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal", "failed to list orders")
		return
	}
	out := make([]adminOrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toAdminOrderResponse(o))
	}
	writeJSON(w, r, http.StatusOK, out)
}

func (h *Handler) adminGetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.GetByID(r.Context(), chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, order.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "not_found", "order not found")
	case err != nil:
		writeError(w, r, http.StatusInternalServerError, "internal", "failed to load order")
	default:
		writeJSON(w, r, http.StatusOK, toAdminOrderResponse(*o))
	}
}

// Logistics dispatch.

type dispatchRequest struct {
	OrderID string `json:"orderId"`
}

type dispatchResponse struct {
	OrderID  string                `json:"orderId"`
	Shipping shippingQuoteResponse `json:"shipping"`
}

func (h *Handler) adminDispatchOrder(w http.ResponseWriter, r *http.Request) {
	var req dispatchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.OrderID == "" {
		writeError(w, r, http.StatusBadRequest, "bad_request", "orderId is required")
		return
	}
	result, err := h.orderSvc.Dispatch(r.Context(), req.OrderID)
	switch {
	case errors.Is(err, order.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "not_found", "order not found")
	case err != nil:
		writeError(w, r, http.StatusInternalServerError, "internal", "failed to dispatch order")
	default:
		writeJSON(w, r, http.StatusOK, dispatchResponse{
			OrderID:  result.OrderID,
			Shipping: toShippingQuoteResponse(result.Quote),
		})
	}
}
