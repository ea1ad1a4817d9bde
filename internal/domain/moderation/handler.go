package moderation

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

// Handler handles moderation HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates moderation handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// CreateReport handles POST /moderation/reports
func (h *Handler) CreateReport(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req CreateReportRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	result, err := h.service.RecordReport(r.Context(), userID, &req)
	if err != nil {
		h.writeError(w, r, "moderation.report", err)
		return
	}

	if result.Duplicate {
		response.OK(w, result)
		return
	}
	response.Created(w, result)
}

// ListMyReports handles GET /moderation/reports/mine
func (h *Handler) ListMyReports(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	reports, err := h.service.ListMyReports(r.Context(), userID)
	if err != nil {
		errorhandler.Internal(r.Context(), w, "moderation.list_my_reports", err)
		return
	}

	items := make([]ReportResponse, len(reports))
	for i, rep := range reports {
		items[i] = NewReportResponse(rep)
	}
	response.OK(w, items)
}

// ListFlagged handles GET /admin/moderation/flagged
func (h *Handler) ListFlagged(w http.ResponseWriter, r *http.Request) {
	limit, offset := response.Pagination(r, 20, 100)
	filter := FlaggedFilter{
		Status: Status(r.URL.Query().Get("status")),
		Kind:   ContentKind(r.URL.Query().Get("kind")),
		Limit:  limit,
		Offset: offset,
	}
	switch filter.Status {
	case "", StatusPending, StatusHidden, StatusApproved:
	default:
		response.BadRequest(w, "Invalid status filter")
		return
	}

	items, total, err := h.service.ListFlagged(r.Context(), filter)
	if err != nil {
		h.writeError(w, r, "moderation.list_flagged", err)
		return
	}

	out := make([]FlaggedItemResponse, len(items))
	for i, item := range items {
		out[i] = NewFlaggedItemResponse(item)
	}
	response.WithMeta(w, out, response.NewMeta(total, limit, offset))
}

// Approve handles POST /admin/moderation/{kind}/{id}/approve
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	kind, id, ok := parseTarget(w, r)
	if !ok {
		return
	}

	rec, err := h.service.Approve(r.Context(), middleware.GetUserID(r.Context()), kind, id)
	if err != nil {
		h.writeError(w, r, "moderation.approve", err)
		return
	}
	response.OK(w, NewRecordResponse(rec))
}

// Hide handles POST /admin/moderation/{kind}/{id}/hide
func (h *Handler) Hide(w http.ResponseWriter, r *http.Request) {
	kind, id, ok := parseTarget(w, r)
	if !ok {
		return
	}

	rec, err := h.service.Hide(r.Context(), middleware.GetUserID(r.Context()), kind, id)
	if err != nil {
		h.writeError(w, r, "moderation.hide", err)
		return
	}
	response.OK(w, NewRecordResponse(rec))
}

// GetConfig handles GET /admin/moderation/config
func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.service.GetConfig(r.Context())
	if err != nil {
		h.writeError(w, r, "moderation.get_config", err)
		return
	}
	response.OK(w, NewConfigResponse(cfg))
}

// UpdateConfig handles PUT /admin/moderation/config
func (h *Handler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	var req UpdateConfigRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	cfg, err := h.service.UpdateConfig(r.Context(), middleware.GetUserID(r.Context()), &req)
	if err != nil {
		h.writeError(w, r, "moderation.update_config", err)
		return
	}
	response.OK(w, NewConfigResponse(cfg))
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, ErrInvalidContentKind):
		response.BadRequest(w, "content_kind must be 'fail' or 'comment'")
	case errors.Is(err, ErrContentNotFound):
		response.NotFound(w, "Content not found")
	case errors.Is(err, ErrCannotReportOwn):
		response.Forbidden(w, "You cannot report your own content")
	case errors.Is(err, ErrInvalidConfig):
		response.Error(w, http.StatusUnprocessableEntity, "INVALID_CONFIG", err.Error())
	case errors.Is(err, ErrConcurrentUpdate):
		errorhandler.HandleError(r.Context(), w, http.StatusConflict, "CONFLICT", "Moderation state changed, retry", err)
	default:
		errorhandler.Internal(r.Context(), w, op, err)
	}
}

func parseTarget(w http.ResponseWriter, r *http.Request) (ContentKind, uuid.UUID, bool) {
	kind := ContentKind(chi.URLParam(r, "kind"))
	if !kind.Valid() {
		response.BadRequest(w, "content_kind must be 'fail' or 'comment'")
		return "", uuid.Nil, false
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid content ID")
		return "", uuid.Nil, false
	}
	return kind, id, true
}
