package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nutallis/storefront/internal/domain/auth"
)

// Routes builds the public and admin route tree. The admin subtree is
// guarded by API-key authentication.
func (h *Handler) Routes(apikeys auth.Repository, pepper []byte) http.Handler {
	r := chi.NewRouter()

	r.Route("/api", func(r chi.Router) {
		r.Get("/products", h.listProducts)
		r.Get("/products/{id}", h.getProduct)
		r.Get("/categories", h.listCategories)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.getCart)
			r.Post("/items", h.addCartItem)
			r.Put("/items/{id}", h.updateCartItem)
			r.Delete("/items/{id}", h.removeCartItem)
			r.Delete("/", h.clearCart)
		})

		r.Post("/coupons/validate", h.validateCoupon)
		r.Post("/shipping/quote", h.quoteShipping)
		r.Post("/checkout", h.checkout)

		r.Route("/webhooks", func(r chi.Router) {
			r.Post("/mercadopago", h.mercadoPagoWebhook)
			r.Post("/efi", h.efiWebhook)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(RequireAPIKey(apikeys, pepper))

			r.Get("/products", h.adminListProducts)
			r.Post("/products", h.adminCreateProduct)
			r.Put("/products/{id}", h.adminUpdateProduct)
			r.Delete("/products/{id}", h.adminDeleteProduct)

			r.Post("/categories", h.adminCreateCategory)
			r.Put("/categories/{id}", h.adminUpdateCategory)
			r.Delete("/categories/{id}", h.adminDeleteCategory)

			r.Get("/coupons", h.adminListCoupons)
			r.Post("/coupons", h.adminCreateCoupon)
			r.Put("/coupons/{id}", h.adminUpdateCoupon)
			r.Delete("/coupons/{id}", h.adminDeleteCoupon)

			r.Get("/orders", h.adminListOrders)
			r.Get("/orders/{id}", h.adminGetOrder)
			r.Post("/logistics/dispatch", h.adminDispatchOrder)
		})
	})

	return r
}
