package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/V4L3NT1NO/TrabajitoCarrito/internal/metrics"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Cart     *CartHandler
	Products *ProductHandler
	Checkout *CheckoutHandler
	QR       *QRHandler
}

// NewRouter assembles the terminal's HTTP surface.
func NewRouter(h Handlers, m *metrics.Metrics, log *zap.Logger) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, log, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", instrument(m, "products_list", h.Products.List))
			r.Get("/{id}", instrument(m, "products_get", h.Products.Get))
		})
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", instrument(m, "cart_get", h.Cart.GetCart))
			r.Post("/items", instrument(m, "cart_add_item", h.Cart.AddItem))
			r.Delete("/items/{index}", instrument(m, "cart_remove_item", h.Cart.RemoveItem))
		})
		r.Route("/checkout", func(r chi.Router) {
			r.Get("/", instrument(m, "checkout_state", h.Checkout.State))
			r.Post("/method", instrument(m, "checkout_method", h.Checkout.SelectMethod))
			r.Post("/cash", instrument(m, "checkout_cash", h.Checkout.EnterCash))
			r.Post("/qr", instrument(m, "checkout_qr", h.Checkout.GenerateQR))
			r.Post("/confirm", instrument(m, "checkout_confirm", h.Checkout.Confirm))
			r.Post("/finalize", instrument(m, "checkout_finalize", h.Checkout.Finalize))
			r.Post("/cancel", instrument(m, "checkout_cancel", h.Checkout.Cancel))
		})
	})

	r.Route("/qr", func(r chi.Router) {
		r.Post("/create", instrument(m, "qr_create", h.QR.Create))
		r.Get("/status/{sessionId}", instrument(m, "qr_status", h.QR.Status))
		r.Get("/pay/{sessionId}", instrument(m, "qr_pay", h.QR.Pay))
	})

	return r
}
