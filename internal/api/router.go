package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
)

// NewRouter assembles the REST surface. All endpoints live under /api so the
// dashboard frontend can be served from the same origin.
func NewRouter(h *Handlers, corsOrigin string) *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(RequestLogger(h.log))

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{corsOrigin},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", userIDHeader},
		AllowCredentials: true,
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(c.Handler)

		r.Get("/health", h.Health)
		r.Get("/stats", h.Stats)
		r.Get("/providers/status", h.ProviderStatuses)
		r.Get("/requests/recent", h.RecentRequests)

		r.Post("/ai/process", h.ProcessAI)
		r.Post("/ai/analyze-image", h.AnalyzeImage)

		r.Get("/elevenlabs/voices", h.Voices)

		r.Route("/user", func(r chi.Router) {
			r.Use(RequireUser)
			r.Get("/stats", h.UserStats)
			r.Post("/upgrade", h.UpgradeUser)
		})
	})

	return r
}
