package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(h *APIHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(AccessLog)
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.HealthHandler)

		r.Get("/startups", h.ListStartupsHandler)
		r.Get("/startups/{id}", h.GetStartupHandler)
		r.Get("/people", h.ListPeopleHandler)
		r.Get("/products", h.ListProductsHandler)
		r.Get("/vcs", h.ListVCsHandler)
		r.Get("/stats", h.StatsHandler)
		r.Get("/rss", h.RSSHandler)

		r.Post("/suggest", h.SuggestHandler)
		r.Post("/verify", h.VerifyHandler)
	})

	return r
}
