package badge

import (
	"net/http"

	"github.com/faildaily/faildaily-api/internal/middleware"
	"github.com/faildaily/faildaily-api/internal/pkg/errorhandler"
	"github.com/faildaily/faildaily-api/internal/pkg/response"
)

// Handler handles badge HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates badge handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Catalog handles GET /badges
func (h *Handler) Catalog(w http.ResponseWriter, r *http.Request) {
	response.OK(w, definitionList(h.service.Catalog()))
}

// Mine handles GET /badges/mine
func (h *Handler) Mine(w http.ResponseWriter, r *http.Request) {
	badges, err := h.service.Unlocked(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		errorhandler.Internal(r.Context(), w, "badge.mine", err)
		return
	}
	response.OK(w, progressList(badges))
}

// Progress handles GET /badges/progress
func (h *Handler) Progress(w http.ResponseWriter, r *http.Request) {
	progress, err := h.service.Progress(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		errorhandler.Internal(r.Context(), w, "badge.progress", err)
		return
	}
	response.OK(w, progressList(progress))
}

// Upcoming handles GET /badges/upcoming
func (h *Handler) Upcoming(w http.ResponseWriter, r *http.Request) {
	upcoming, err := h.service.Upcoming(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		errorhandler.Internal(r.Context(), w, "badge.upcoming", err)
		return
	}
	response.OK(w, progressList(upcoming))
}

// Check handles POST /badges/check
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	unlocked, err := h.service.EvaluateUser(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		errorhandler.Internal(r.Context(), w, "badge.check", err)
		return
	}
	response.OK(w, CheckResponse{NewlyUnlocked: definitionList(unlocked)})
}
