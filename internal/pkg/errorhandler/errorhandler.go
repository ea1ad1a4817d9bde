package errorhandler

import (
	"context"
	"net/http"

	"github.com/faildaily/faildaily-api/internal/pkg/logger"
	"github.com/faildaily/faildaily-api/internal/pkg/response"
)

// Internal logs err with the request-scoped logger and sends a generic 500.
// The cause never reaches the client.
func Internal(ctx context.Context, w http.ResponseWriter, op string, err error) {
	logger.FromContext(ctx).Error().
		Err(err).
		Str("operation", op).
		Msg("Request failed")

	response.InternalError(w)
}

// HandleError logs err and sends an error response with the given status and code
func HandleError(ctx context.Context, w http.ResponseWriter, status int, code, message string, err error) {
	event := logger.FromContext(ctx).Warn().
		Str("error_code", code).
		Int("status_code", status)
	if err != nil {
		event = event.Err(err)
	}
	event.Msg(message)

	response.Error(w, status, code, message)
}
