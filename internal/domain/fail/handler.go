package fail

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/faildaily/faildaily-api/internal/middleware"
	"github.com/faildaily/faildaily-api/internal/pkg/errorhandler"
	"github.com/faildaily/faildaily-api/internal/pkg/imaging"
	"github.com/faildaily/faildaily-api/internal/pkg/response"
	"github.com/faildaily/faildaily-api/internal/pkg/storage"
	"github.com/faildaily/faildaily-api/internal/pkg/validator"
)

// multipart overhead allowed on top of the image itself
const formOverhead = 1 << 20

// Handler handles fail HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates fail handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Create handles POST /fails
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateFailRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	result, err := h.service.Create(r.Context(), middleware.GetUserID(r.Context()), &req)
	if err != nil {
		h.writeError(w, r, "fail.create", err)
		return
	}
	response.Created(w, result)
}

// List handles GET /fails
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := response.Pagination(r, 20, 100)
	filter := &ListFilter{Limit: limit, Offset: offset}

	if c := r.URL.Query().Get("category"); c != "" {
		if err := validator.ValidateVar(c, "fail_category"); err != nil {
			response.BadRequest(w, "Invalid category")
			return
		}
		filter.Category = Category(c)
	}

	ctx := r.Context()
	fails, total, err := h.service.List(ctx, middleware.GetUserID(ctx), filter)
	if err != nil {
		h.writeError(w, r, "fail.list", err)
		return
	}
	response.WithMeta(w, fails, response.NewMeta(total, limit, offset))
}

// ListMine handles GET /fails/mine
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	limit, offset := response.Pagination(r, 20, 100)
	fails, total, err := h.service.ListMine(r.Context(), middleware.GetUserID(r.Context()), limit, offset)
	if err != nil {
		h.writeError(w, r, "fail.list_mine", err)
		return
	}
	response.WithMeta(w, fails, response.NewMeta(total, limit, offset))
}

// Get handles GET /fails/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	failID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid fail ID")
		return
	}

	ctx := r.Context()
	f, err := h.service.Get(ctx, middleware.GetUserID(ctx), failID, middleware.IsModerator(ctx))
	if err != nil {
		h.writeError(w, r, "fail.get", err)
		return
	}
	response.OK(w, f)
}

// AddComment handles POST /fails/{id}/comments
func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	failID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid fail ID")
		return
	}

	var req CreateCommentRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	result, err := h.service.AddComment(r.Context(), middleware.GetUserID(r.Context()), failID, &req)
	if err != nil {
		h.writeError(w, r, "fail.add_comment", err)
		return
	}
	response.Created(w, result)
}

// ListComments handles GET /fails/{id}/comments
func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	failID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid fail ID")
		return
	}

	ctx := r.Context()
	comments, err := h.service.ListComments(ctx, middleware.GetUserID(ctx), failID, middleware.IsModerator(ctx))
	if err != nil {
		h.writeError(w, r, "fail.list_comments", err)
		return
	}
	response.OK(w, comments)
}

// UploadImage handles POST /fails/{id}/image (multipart field "image")
func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	failID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid fail ID")
		return
	}

	maxBody := h.service.maxImageBytes + formOverhead
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	if err := r.ParseMultipartForm(maxBody); err != nil {
		response.BadRequest(w, "File too large or invalid form")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		response.BadRequest(w, "Image is required")
		return
	}
	defer file.Close()

	f, err := h.service.AttachImage(r.Context(), middleware.GetUserID(r.Context()), failID, file)
	if err != nil {
		h.writeError(w, r, "fail.upload_image", err)
		return
	}
	response.OK(w, f)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, ErrFailNotFound):
		response.NotFound(w, "Fail not found")
	case errors.Is(err, ErrNotFailAuthor):
		response.Forbidden(w, "Only the author can change this fail")
	case errors.Is(err, ErrStorageDisabled):
		response.ServiceUnavailable(w, "Image uploads are disabled")
	case errors.Is(err, storage.ErrFileTooLarge):
		response.BadRequest(w, "Image is too large")
	case errors.Is(err, storage.ErrInvalidMimeType):
		response.BadRequest(w, "Only JPEG, PNG, GIF and WebP images are allowed")
	case errors.Is(err, storage.ErrEmptyFile):
		response.BadRequest(w, "Image is empty")
	case errors.Is(err, imaging.ErrUndecodable):
		response.BadRequest(w, "Image could not be read")
	default:
		errorhandler.Internal(r.Context(), w, op, err)
	}
}
