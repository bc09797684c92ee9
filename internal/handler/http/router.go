package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/posterminal/internal/session"
	"github.com/utafrali/posterminal/pkg/middleware"
)

const serviceName = "posterminal"

// NewRouter creates the local API router. Everything under /api/v1 except
// login, register and logout requires a signed-in operator.
func NewRouter(deps Deps) http.Handler {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	touch := deps.Touch
	if touch == nil {
		touch = func() {}
	}

	r := chi.NewRouter()

	r.Use(middleware.Recovery(deps.Logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(middleware.RequestLogging(deps.Logger))
	r.Use(middleware.PrometheusMetrics(serviceName))
	r.Use(middleware.Tracing(serviceName))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.CORS(deps.CORS))

	r.Get("/health/live", deps.Health.LivenessHandler())
	r.Get("/health/ready", deps.Health.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	auth := NewAuthHandler(deps.Auth, deps.Logger)
	cartH := NewCartHandler(deps.Till, deps.Inventory, deps.Checkout.TaxRate(), deps.Logger)
	checkoutH := NewCheckoutHandler(deps.Checkout, deps.Till, deps.Logger)
	inventoryH := NewInventoryHandler(deps.Inventory, deps.Logger)
	salesH := NewSalesHandler(deps.Sales, deps.Now, deps.Logger)
	procurementH := NewProcurementHandler(deps.Procurement, deps.Logger)
	adminOnly := middleware.RequireRole(string(session.RoleAdmin))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(middleware.Activity(touch))

		r.Group(func(r chi.Router) {
			if deps.LoginLimiter != nil {
				r.Use(middleware.RateLimit(deps.LoginLimiter, deps.Logger))
			}
			r.Post("/auth/login", auth.Login)
			r.Post("/auth/register", auth.Register)
		})
		r.Post("/auth/logout", auth.Logout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireOperator(operatorFrom(deps.Auth)))

			r.Get("/auth/me", auth.Me)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cartH.Get)
				r.Delete("/", cartH.Clear)
				r.Get("/totals", cartH.Totals)
				r.Post("/items", cartH.AddItem)
				r.Put("/items/{productId}", cartH.SetQuantity)
				r.Delete("/items/{productId}", cartH.RemoveItem)
			})

			r.Post("/checkout", checkoutH.Checkout)

			r.Route("/inventory", func(r chi.Router) {
				r.Get("/", inventoryH.List)
				r.Get("/low-stock", inventoryH.LowStock)
				r.Get("/stats", inventoryH.Stats)
				r.Get("/categories", inventoryH.Categories)
				r.Get("/{id}", inventoryH.Get)

				r.Group(func(r chi.Router) {
					r.Use(adminOnly)
					r.Post("/", inventoryH.Create)
					r.Patch("/{id}", inventoryH.Update)
					r.Delete("/{id}", inventoryH.Delete)
					r.Patch("/{id}/stock", inventoryH.UpdateStock)
				})
			})

			r.Route("/sales", func(r chi.Router) {
				r.Get("/", salesH.List)
				r.Get("/today", salesH.Today)
				r.Get("/analytics/{period}", salesH.Analytics)
				r.With(adminOnly).Patch("/{id}", salesH.Update)
				r.With(adminOnly).Post("/{id}/cancel", salesH.Cancel)
			})

			r.Get("/customers", salesH.Customers)
			r.Post("/customers", salesH.CreateCustomer)

			r.Get("/suppliers", procurementH.Suppliers)
			r.Get("/purchase-orders", procurementH.Orders)
			r.With(adminOnly).Post("/purchase-orders", procurementH.PlaceOrder)
		})
	})

	return r
}
