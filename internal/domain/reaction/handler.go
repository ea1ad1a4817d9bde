package reaction

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/faildaily/faildaily-api/internal/middleware"
	"github.com/faildaily/faildaily-api/internal/pkg/errorhandler"
	"github.com/faildaily/faildaily-api/internal/pkg/response"
	"github.com/faildaily/faildaily-api/internal/pkg/validator"
)

// Handler handles reaction HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates reaction handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// React handles PUT /fails/{id}/reaction
func (h *Handler) React(w http.ResponseWriter, r *http.Request) {
	failID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid fail ID")
		return
	}

	var req ReactRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	result, err := h.service.React(r.Context(), middleware.GetUserID(r.Context()), failID, &req)
	if err != nil {
		h.writeError(w, r, "reaction.react", err)
		return
	}
	response.OK(w, result)
}

// Remove handles DELETE /fails/{id}/reaction
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	failID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid fail ID")
		return
	}

	if err := h.service.Remove(r.Context(), middleware.GetUserID(r.Context()), failID); err != nil {
		h.writeError(w, r, "reaction.remove", err)
		return
	}
	response.NoContent(w)
}

// Summary handles GET /fails/{id}/reactions
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	failID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid fail ID")
		return
	}

	ctx := r.Context()
	summary, err := h.service.Summary(ctx, middleware.GetUserID(ctx), failID, middleware.IsModerator(ctx))
	if err != nil {
		h.writeError(w, r, "reaction.summary", err)
		return
	}
	response.OK(w, summary)
}

// Register adds reaction routes to the fails router
func (h *Handler) Register(r chi.Router, authMiddleware, optionalAuth func(http.Handler) http.Handler) {
	r.With(authMiddleware).Put("/{id}/reaction", h.React)
	r.With(authMiddleware).Delete("/{id}/reaction", h.Remove)
	r.With(optionalAuth).Get("/{id}/reactions", h.Summary)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, ErrFailNotFound):
		response.NotFound(w, "Fail not found")
	case errors.Is(err, ErrReactionNotFound):
		response.NotFound(w, "Reaction not found")
	case errors.Is(err, ErrInvalidType):
		response.BadRequest(w, "Invalid reaction type")
	default:
		errorhandler.Internal(r.Context(), w, op, err)
	}
}
