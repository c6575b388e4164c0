// Package config loads the relay configuration. Values are resolved once at
// process start and the resulting Config is immutable; components receive it
// by reference, never through a global lookup.
package config

import (
	"fmt"
	"os"
	"time"
)

// Catalog modes for GET /v1/models and model-id validation.
const (
	// CatalogStatic serves the compiled-in model list and rejects unknown
	// model ids before any upstream call.
	CatalogStatic = "static"

	// CatalogLive forwards GET /models to the upstream provider and skips
	// local model-id validation, delegating it upstream.
	CatalogLive = "live"
)

// Config holds application configuration.
// Priority: env vars → config.toml → defaults.
type Config struct {
	// ListenAddr is the address to bind the server to (e.g. ":8080")
	ListenAddr string

	// UpstreamBaseURL is the provider API root, without trailing slash
	UpstreamBaseURL string

	// DefaultModel is substituted when a completion request omits the model
	DefaultModel string

	// SpeechModel is forced for audio transcription/translation requests
	SpeechModel string

	// CatalogMode is CatalogStatic or CatalogLive
	CatalogMode string

	// ModelsCacheTTL bounds how long a live models listing is reused
	ModelsCacheTTL time.Duration

	// EnableWebUI serves the embedded chat/audio pages at / and /audio
	EnableWebUI bool
}

// Load reads configuration from file and environment variables.
// Environment variables override file config values.
func Load() (*Config, error) {
	fileConfig, err := LoadFile()
	if err != nil {
		return nil, fmt.Errorf("config file: %w", err)
	}

	cfg := &Config{
		ListenAddr:      getEnvOrFile("LISTEN_ADDR", fileConfig.ListenAddr, ":8080"),
		UpstreamBaseURL: getEnvOrFile("UPSTREAM_BASE_URL", fileConfig.UpstreamBaseURL, "https://api.groq.com/openai/v1"),
		DefaultModel:    getEnvOrFile("DEFAULT_MODEL", fileConfig.DefaultModel, "llama3-8b-8192"),
		SpeechModel:     getEnvOrFile("SPEECH_MODEL", fileConfig.SpeechModel, "whisper-large-v3"),
		CatalogMode:     getEnvOrFile("CATALOG_MODE", fileConfig.CatalogMode, CatalogStatic),
		ModelsCacheTTL:  time.Hour,
		EnableWebUI:     getEnvBoolOrFile("ENABLE_WEB_UI", fileConfig.EnableWebUI, true),
	}

	if fileConfig.ModelsCacheTTL != "" {
		ttl, err := time.ParseDuration(fileConfig.ModelsCacheTTL)
		if err != nil {
			return nil, fmt.Errorf("config file: models_cache_ttl: %w", err)
		}
		cfg.ModelsCacheTTL = ttl
	}

	if cfg.CatalogMode != CatalogStatic && cfg.CatalogMode != CatalogLive {
		return nil, fmt.Errorf("config: catalog mode must be %q or %q, got %q",
			CatalogStatic, CatalogLive, cfg.CatalogMode)
	}

	return cfg, nil
}

// getEnvOrFile returns env value, file value, or default (in priority order)
func getEnvOrFile(key, fileValue, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	if fileValue != "" {
		return fileValue
	}
	return defaultValue
}

// getEnvBoolOrFile returns env bool, file bool, or default (in priority order)
func getEnvBoolOrFile(key string, fileValue *bool, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	if fileValue != nil {
		return *fileValue
	}
	return defaultValue
}
