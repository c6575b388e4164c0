// Package middleware provides HTTP middleware for request handling.
package middleware

import (
	"net/http"

	"github.com/fenrirlab/groqrelay/internal/types"
)

// PreflightMaxAge is how long browsers may cache the CORS preflight result.
const PreflightMaxAge = "86400"

// CORS attaches the permissive cross-origin headers to every response and
// short-circuits OPTIONS preflight requests with an empty 204 before they
// reach routing or business logic.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		types.SetCORS(w.Header())

		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Max-Age", PreflightMaxAge)
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Flush implements http.Flusher for streaming support.
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
