package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes configures all API routes.
func SetupRoutes(h *Handlers) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	// CORS for the dashboard frontends
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"https://app.strivefit.io", "http://localhost:5173", "http://localhost:8080"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	// Health check (no auth required)
	r.Get("/health", h.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		// Dashboard - all computed views in one call
		r.Get("/dashboard", h.GetDashboard)

		r.Route("/clients", func(r chi.Router) {
			r.Get("/at-risk", h.GetAtRiskClients)
			r.Get("/{clientID}/risk", h.GetClientRisk)
			r.Get("/{clientID}/recommendations", h.GetClientRecommendations)
		})

		r.Get("/engagement/trend", h.GetEngagementTrend)
		r.Get("/cohorts/retention", h.GetCohortRetention)
		r.Get("/revenue/snapshot", h.GetRevenueSnapshot)
	})

	return r
}
