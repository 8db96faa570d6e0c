package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type RouterConfig struct {
	RequestTimeout time.Duration
	CookieSecure   bool
}

// NewRouter wires every storefront route. Handlers get their own timeout
// for the upstream call; the chi Timeout middleware bounds the whole
// request.
func NewRouter(cfg RouterConfig, carts CartService, orders OrderService, auth AuthService, log *zap.Logger) http.Handler {
	cartHandler := NewCartHandler(carts, cfg.RequestTimeout, cfg.CookieSecure)
	checkoutHandler := NewCheckoutHandler(carts, cfg.RequestTimeout, cfg.CookieSecure)
	ordersHandler := NewOrdersHandler(orders, cfg.RequestTimeout, cfg.CookieSecure)
	authHandler := NewAuthHandler(auth, cfg.RequestTimeout, cfg.CookieSecure)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(RequestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout + time.Second))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{product_id}", cartHandler.UpdateQuantity)
			r.Delete("/items/{product_id}", cartHandler.RemoveItem)
		})

		r.Post("/checkout", checkoutHandler.PlaceOrder)

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", ordersHandler.ListOrders)
			r.Post("/preview", checkoutHandler.PreviewOrder)
			r.Get("/{order_id}", ordersHandler.GetOrder)
		})

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authHandler.Login)
			r.Post("/register", authHandler.Register)
			r.Post("/logout", authHandler.Logout)
			r.Get("/me", authHandler.Me)
		})
	})

	return r
}
