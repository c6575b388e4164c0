// Package app wires the router and HTTP server.
package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/fenrirlab/groqrelay/internal/metrics"
	"github.com/fenrirlab/groqrelay/internal/transport/http/handler"
	"github.com/fenrirlab/groqrelay/internal/transport/http/middleware"
	"github.com/fenrirlab/groqrelay/internal/types"
)

// RouterOptions configures the HTTP router behavior.
type RouterOptions struct {
	Logger      *zap.Logger
	EnableWebUI bool
}

// NewRouter creates and configures the HTTP router with all application
// routes and the middleware chain applied.
func NewRouter(h *handler.Handlers, opts *RouterOptions) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()

	// Middleware chain (outer to inner). CORS runs first so preflights never
	// reach routing and every response, error or not, carries the envelope
	// headers.
	r.Use(middleware.CORS)
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(metrics.Middleware)

	// Unmatched routes and wrong methods go through the same envelope as
	// every other failure.
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		types.WriteError(w, types.NotFound("not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		types.WriteError(w, types.MethodNotAllowed("method not allowed"))
	})

	// API routes. Token presence is checked once per matched route, before
	// any upstream call; unknown /v1 paths fall through to 404, not 401.
	r.Route("/v1", func(r chi.Router) {
		auth := r.With(middleware.RequireBearer)
		auth.Get("/models", h.Handle(h.ListModels))
		auth.Get("/models/{model}", h.Handle(h.GetModel))
		auth.Post("/chat/completions", h.Handle(h.ChatCompletions))
		auth.Post("/audio/transcriptions", h.Handle(h.Transcription))
		auth.Post("/audio/translations", h.Handle(h.Translation))
	})

	// Static front-end pages, served without a token.
	if opts.EnableWebUI {
		registerStaticRoutes(r, h)
	}

	r.Get("/healthz", h.Health)
	r.Handle("/metrics", metrics.Handler())

	return r
}

// registerStaticRoutes maps the fixed front-end paths to embedded assets.
func registerStaticRoutes(r chi.Router, h *handler.Handlers) {
	const (
		htmlType = "text/html; charset=utf-8"
		jsType   = "application/javascript"
	)

	login := h.Handle(h.Static("login.html", htmlType))
	r.Get("/", login)
	r.Get("/login", login)
	r.Get("/index.html", h.Handle(h.Static("index.html", htmlType)))
	r.Get("/groq.js", h.Handle(h.Static("groq.js", jsType)))
	r.Get("/audio", h.Handle(h.Static("audio.html", htmlType)))
	r.Get("/audio.js", h.Handle(h.Static("audio.js", jsType)))
	r.Get("/constant.js", h.Handle(h.Static("constant.js", jsType)))
}
