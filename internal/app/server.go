package app

import (
	"context"
	"net/http"
	"time"

	"github.com/fenrirlab/groqrelay/internal/config"
)

// Server wraps the HTTP server with its configuration.
type Server struct {
	httpServer *http.Server
}

// NewServer creates a new configured HTTP server instance.
// Write timeouts are generous: streaming completions can run for minutes and
// a short WriteTimeout would kill long streams.
func NewServer(cfg *config.Config, handler http.Handler) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              cfg.ListenAddr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       300 * time.Second,
			WriteTimeout:      300 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
	}
}

// Start begins listening and serving HTTP requests.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
