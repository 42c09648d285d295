package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, apiKey, adminKey string) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware (all routes)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware)
	r.Use(RecoveryMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		// Public routes (no auth required)
		r.Get("/health", h.Health)

		// Protected routes (auth required; admin key grants privilege)
		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(apiKey, adminKey))

			r.Get("/state", h.State)
			r.Post("/chat", h.Chat)
			r.Post("/chat/example", h.ChatExample)
			r.Get("/examples", h.Examples)
			r.Post("/clarify", h.Clarify)
			r.Post("/context", h.UpdateContext)

			r.Post("/sections/generate-all", h.GenerateAll)
			r.Post("/sections/{id}/generate", h.GenerateSection)

			r.Post("/validate/compliance", h.ValidateCompliance)
			r.Post("/validate/coherence", h.ValidateCoherence)

			r.Post("/draft", h.DraftAdd)
			r.Put("/draft/{name}", h.DraftUpdate)
			r.Delete("/draft/{name}", h.DraftDelete)
			r.Delete("/draft", h.DraftClear)

			r.Get("/export/{format}", h.Export)

			r.Post("/session/save", h.SessionSave)
			r.Post("/session/load", h.SessionLoad)
		})
	})

	return r
}
