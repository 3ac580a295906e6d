// Package api wires the HTTP surface: router, middleware, and routes.
package api

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/vinsight/crm/internal/api/middleware"
	"github.com/vinsight/crm/internal/handlers"
)

// NewRouter creates and configures the HTTP router.
func NewRouter(logger zerolog.Logger, h *handlers.Handler) *chi.Mux {
	r := chi.NewRouter()

	// Metrics middleware (first to capture all requests)
	r.Use(middleware.Metrics)

	// Standard middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(chimw.Recoverer)

	// CORS - the dashboard is served from a separate origin
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Cache-Stale"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Metrics endpoint (for Prometheus scraping)
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/health", h.Health)
	r.Post("/login", h.Login)

	r.Route("/customers", func(r chi.Router) {
		r.Get("/", h.ListCustomers)
		r.Post("/", h.UpsertCustomer)
		r.Get("/{id}", h.GetCustomer)
		r.Get("/{id}/chat", h.GetChat)
		r.Post("/{id}/chat/sync", h.SyncChat)
	})

	r.Get("/employees", h.ListEmployees)
	r.Get("/products", h.ListProducts)
	r.Get("/campaigns", h.ListCampaigns)

	r.Get("/analytics/summary", h.GetSummary)
	r.Get("/marketing/summary", h.GetMarketingSummary)
	r.Get("/marketing/daily/{date}", h.GetDailyRollup)

	r.Post("/admin/rebuild", h.Rebuild)

	return r
}
