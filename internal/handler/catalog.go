package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/nutallis/storefront/internal/domain/product"
)

type productResponse struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Description       string  `json:"description"`
	ImageURL          string  `json:"imageUrl"`
	CategoryID        string  `json:"categoryId,omitempty"`
	PricePerKiloCents int64   `json:"pricePerKgCents"`
	PricePerKilo      float64 `json:"pricePerKg"`
	StockGrams        int64   `json:"stockGrams"`
	IsActive          bool    `json:"isActive"`
}

func toProductResponse(p product.Product) productResponse {
	perKilo := decimal.NewFromInt(int64(p.PricePerKiloCents)).Div(decimal.NewFromInt(100))
	return productResponse{
		ID:                p.ID,
		Name:              p.Name,
		Description:       p.Description,
		ImageURL:          p.ImageURL,
		CategoryID:        p.CategoryID,
		PricePerKiloCents: int64(p.PricePerKiloCents),
		PricePerKilo:      perKilo.InexactFloat64(),
		StockGrams:        p.StockGrams,
		IsActive:          p.Active,
	}
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal", "failed to list products")
		return
	}
	category := r.URL.Query().Get("category")
	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		if !p.Active {
			continue
		}
		if category != "" && p.CategoryID != category {
			continue
		}
		out = append(out, toProductResponse(p))
	}
	writeJSON(w, r, http.StatusOK, out)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.GetByID(r.Context(), chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, product.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "not_found", "product not found")
	case err != nil:
		writeError(w, r, http.StatusInternalServerError, "internal", "failed to load product")
	case !p.Active:
		writeError(w, r, http.StatusNotFound, "not_found", "product not found")
	default:
		writeJSON(w, r, http.StatusOK, toProductResponse(*p))
	}
}

type categoryResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.products.ListCategories(r.Context())
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal", "failed to list categories")
		return
	}
	out := make([]categoryResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, categoryResponse{ID: c.ID, Name: c.Name, Slug: c.Slug})
	}
	writeJSON(w, r, http.StatusOK, out)
}
