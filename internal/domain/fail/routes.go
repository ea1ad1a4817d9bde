package fail

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns fail router
func (h *Handler) Routes(authMiddleware, optionalAuth func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.With(optionalAuth).Get("/", h.List)
	r.With(authMiddleware).Post("/", h.Create)
	r.With(authMiddleware).Get("/mine", h.ListMine)
	r.With(optionalAuth).Get("/{id}", h.Get)
	r.With(authMiddleware).Post("/{id}/image", h.UploadImage)
	r.With(optionalAuth).Get("/{id}/comments", h.ListComments)
	r.With(authMiddleware).Post("/{id}/comments", h.AddComment)

	return r
}
