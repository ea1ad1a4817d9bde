package moderation

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns user-facing moderation routes
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(authMiddleware)

	r.Post("/reports", h.CreateReport)
	r.Get("/reports/mine", h.ListMyReports)

	return r
}

// AdminRoutes returns moderator-only routes
func (h *Handler) AdminRoutes(authMiddleware, moderatorMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(authMiddleware)
	r.Use(moderatorMiddleware)

	r.Get("/flagged", h.ListFlagged)
	r.Post("/{kind}/{id}/approve", h.Approve)
	r.Post("/{kind}/{id}/hide", h.Hide)
	r.Get("/config", h.GetConfig)
	r.Put("/config", h.UpdateConfig)

	return r
}
