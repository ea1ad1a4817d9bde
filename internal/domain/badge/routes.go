package badge

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns badge router
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.Catalog)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/mine", h.Mine)
		r.Get("/progress", h.Progress)
		r.Get("/upcoming", h.Upcoming)
		r.Post("/check", h.Check)
	})

	return r
}
