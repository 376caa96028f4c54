package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Cart     *CartHandler
	Promo    *PromoHandler
	Checkout *CheckoutHandler
	Orders   *OrdersHandler
	Products *ProductHandler
	Gallery  *GalleryHandler
	Contact  *ContactHandler
	Auth     *AuthHandler

	// RequireAdmin guards the /admin subtree.
	RequireAdmin func(http.Handler) http.Handler

	RequestTimeout time.Duration
}

func NewRouter(h Handlers) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Timeout(h.RequestTimeout))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(CartSessionMiddleware)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", h.Cart.GetCart)
				r.Post("/items", h.Cart.AddItem)
				r.Put("/items/{cartId}", h.Cart.UpdateQuantity)
				r.Delete("/items/{cartId}", h.Cart.RemoveItem)
				r.Delete("/", h.Cart.ClearCart)
			})
			r.Post("/checkout", h.Checkout.Checkout)
		})

		r.Post("/validate-promo", h.Promo.ValidatePromo)
		r.Post("/apply-promo/{code}", h.Promo.ApplyPromo)

		r.Get("/orders/{orderId}", h.Orders.GetOrder)

		r.Get("/products", h.Products.ListProducts)
		r.Get("/products/{productId}", h.Products.GetProduct)

		r.Get("/gallery", h.Gallery.ListImages)
		r.Post("/contact", h.Contact.SubmitForm)

		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", h.Auth.Login)

			r.Group(func(r chi.Router) {
				r.Use(h.RequireAdmin)

				r.Post("/products", h.Products.CreateProduct)
				r.Put("/products/{productId}", h.Products.UpdateProduct)
				r.Delete("/products/{productId}", h.Products.DeleteProduct)

				r.Post("/promo-codes", h.Promo.CreatePromoCode)
				r.Get("/promo-codes", h.Promo.ListPromoCodes)
				r.Put("/promo-codes/{promoId}", h.Promo.UpdatePromoCode)
				r.Delete("/promo-codes/{promoId}", h.Promo.DeletePromoCode)

				r.Get("/orders", h.Orders.ListOrders)
				r.Put("/orders/{orderId}/status", h.Orders.UpdateStatus)
				r.Delete("/orders/{orderId}", h.Orders.DeleteOrder)

				r.Post("/gallery", h.Gallery.AddImage)
				r.Put("/gallery/reorder", h.Gallery.ReorderImages)
				r.Delete("/gallery/{imageId}", h.Gallery.DeleteImage)
			})
		})
	})

	return r
}
