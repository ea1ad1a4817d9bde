package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/faildaily/faildaily-api/internal/pkg/logger"
	"github.com/faildaily/faildaily-api/internal/pkg/response"
)

// Recover turns handler panics into a logged 500. http.ErrAbortHandler is
// re-raised so net/http can abort the response.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			logger.FromContext(r.Context()).Error().
				Interface("panic", rec).
				Str("request_id", GetRequestID(r.Context())).
				Bytes("stack", debug.Stack()).
				Msg("Panic recovered")

			response.InternalError(w)
		}()

		next.ServeHTTP(w, r)
	})
}
