// Package handler holds the HTTP handlers for the relay API and the embedded
// front-end pages.
package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/fenrirlab/groqrelay/internal/catalog"
	"github.com/fenrirlab/groqrelay/internal/relay"
	"github.com/fenrirlab/groqrelay/internal/tokenizer"
	"github.com/fenrirlab/groqrelay/internal/transport/http/middleware"
	"github.com/fenrirlab/groqrelay/internal/types"
)

// Handlers holds the dependencies for the relay HTTP handlers.
type Handlers struct {
	Relay      *relay.Client
	Catalog    *catalog.Catalog
	Tokenizer  tokenizer.Tokenizer
	Logger     *zap.Logger
	LiveModels bool
}

// New creates a new instance of the relay handlers.
func New(rel *relay.Client, cat *catalog.Catalog, tok tokenizer.Tokenizer, logger *zap.Logger, liveModels bool) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		Relay:      rel,
		Catalog:    cat,
		Tokenizer:  tok,
		Logger:     logger,
		LiveModels: liveModels,
	}
}

// apiFunc is a handler that reports failure as an error instead of writing
// the error response itself.
type apiFunc func(w http.ResponseWriter, r *http.Request) error

// Handle is the boundary adapter: it converts a handler's error into the
// wire-level response through the single envelope.
func (h *Handlers) Handle(fn apiFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			h.Logger.Warn("request failed",
				zap.String("path", r.URL.Path),
				zap.String("request_id", middleware.GetRequestID(r.Context())),
				zap.Error(err),
			)
			types.WriteError(w, err)
		}
	}
}

// Health reports process liveness.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
