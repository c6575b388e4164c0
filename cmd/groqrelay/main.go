package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/fenrirlab/groqrelay/internal/app"
	"github.com/fenrirlab/groqrelay/internal/catalog"
	"github.com/fenrirlab/groqrelay/internal/config"
	"github.com/fenrirlab/groqrelay/internal/metrics"
	"github.com/fenrirlab/groqrelay/internal/relay"
	"github.com/fenrirlab/groqrelay/internal/tokenizer"
	"github.com/fenrirlab/groqrelay/internal/transport/http/handler"
)

func main() {
	logger := setupLogger()
	defer func() { _ = logger.Sync() }()

	if err := run(logger); err != nil {
		logger.Fatal("relay exited with error", zap.Error(err))
	}
}

func run(logger *zap.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	metrics.Register()

	cat, err := catalog.New(cfg.DefaultModel, catalog.Builtin())
	if err != nil {
		return err
	}

	rel, err := relay.New(relay.Options{
		BaseURL:        cfg.UpstreamBaseURL,
		Catalog:        cat,
		ValidateModels: cfg.CatalogMode == config.CatalogStatic,
		SpeechModel:    cfg.SpeechModel,
		ModelsCacheTTL: cfg.ModelsCacheTTL,
		Logger:         logger,
	})
	if err != nil {
		return err
	}

	h := handler.New(rel, cat, tokenizer.New(), logger, cfg.CatalogMode == config.CatalogLive)

	router := app.NewRouter(h, &app.RouterOptions{
		Logger:      logger,
		EnableWebUI: cfg.EnableWebUI,
	})

	srv := app.NewServer(cfg, router)

	printStartupBanner(cfg)
	logger.Info("starting relay",
		zap.String("addr", cfg.ListenAddr),
		zap.String("upstream", cfg.UpstreamBaseURL),
		zap.String("catalog_mode", cfg.CatalogMode),
		zap.Bool("web_ui", cfg.EnableWebUI),
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-stop:
	}

	logger.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func printStartupBanner(cfg *config.Config) {
	fmt.Fprintf(os.Stderr, "groqrelay - CORS-fixing LLM API relay\n")
	fmt.Fprintf(os.Stderr, "  API:      http://localhost%s/v1/chat/completions\n", cfg.ListenAddr)
	if cfg.EnableWebUI {
		fmt.Fprintf(os.Stderr, "  Chat UI:  http://localhost%s/\n", cfg.ListenAddr)
		fmt.Fprintf(os.Stderr, "  Audio UI: http://localhost%s/audio\n", cfg.ListenAddr)
	}
	fmt.Fprintf(os.Stderr, "  Upstream: %s\n", cfg.UpstreamBaseURL)
}
