package middleware

import (
	"net/http"
	"runtime/debug"

	"go.uber.org/zap"

	"github.com/fenrirlab/groqrelay/internal/types"
)

// Recover converts a handler panic into a 500 envelope with CORS headers.
// The stack trace goes to the log, never to the client.
func Recover(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic recovered",
						zap.Any("error", rec),
						zap.String("path", r.URL.Path),
						zap.String("request_id", GetRequestID(r.Context())),
						zap.ByteString("stack", debug.Stack()),
					)
					types.WriteError(w, types.Internal("internal server error"))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
