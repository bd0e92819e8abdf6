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

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-User-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check (no auth required)
	r.Get("/health", h.HealthCheck)

	// API routes need a resolved user identity
	r.Route("/api", func(r chi.Router) {
		r.Use(RequireUser)

		r.Route("/scores", func(r chi.Router) {
			r.Get("/hot-leads", h.GetHotLeads)
			r.Get("/sales-ready", h.GetSalesReady)

			r.Route("/{contactID}", func(r chi.Router) {
				r.Get("/", h.GetScore)
				r.Put("/", h.UpdateScore)
				r.Post("/calculate", h.CalculateScore)
				r.Get("/conversion-probability", h.GetConversionProbability)
			})
		})

		r.Get("/analytics/scores", h.GetScoreAnalytics)
	})

	return r
}
