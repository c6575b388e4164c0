package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/fenrirlab/groqrelay/internal/types"
)

// apiKeyKey is the context key for the caller's bearer token.
const apiKeyKey contextKey = "api_key"

// APIKey retrieves the caller's bearer token from the context.
func APIKey(ctx context.Context) string {
	if key, ok := ctx.Value(apiKeyKey).(string); ok {
		return key
	}
	return ""
}

// RequireBearer validates bearer-token presence once, after an API path has
// matched and before any upstream call. The token is forwarded verbatim; no
// authentication beyond presence is performed. Static-asset paths are routed
// outside this middleware and never require a token.
func RequireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		key, ok := strings.CutPrefix(auth, "Bearer ")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			types.WriteError(w, types.Unauthorized("missing bearer token"))
			return
		}

		ctx := context.WithValue(r.Context(), apiKeyKey, key)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
