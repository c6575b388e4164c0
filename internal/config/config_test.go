package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// pointToConfig writes a config file in a temp dir and points the loader at it.
func pointToConfig(t *testing.T, contents string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "groqrelay.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("GROQRELAY_CONFIG", path)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GROQRELAY_CONFIG", filepath.Join(t.TempDir(), "absent.toml"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.ListenAddr != ":8080" {
		t.Errorf("ListenAddr = %q", cfg.ListenAddr)
	}
	if cfg.UpstreamBaseURL != "https://api.groq.com/openai/v1" {
		t.Errorf("UpstreamBaseURL = %q", cfg.UpstreamBaseURL)
	}
	if cfg.DefaultModel != "llama3-8b-8192" {
		t.Errorf("DefaultModel = %q", cfg.DefaultModel)
	}
	if cfg.SpeechModel != "whisper-large-v3" {
		t.Errorf("SpeechModel = %q", cfg.SpeechModel)
	}
	if cfg.CatalogMode != CatalogStatic {
		t.Errorf("CatalogMode = %q", cfg.CatalogMode)
	}
	if cfg.ModelsCacheTTL != time.Hour {
		t.Errorf("ModelsCacheTTL = %v", cfg.ModelsCacheTTL)
	}
	if !cfg.EnableWebUI {
		t.Error("EnableWebUI = false, want true by default")
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	pointToConfig(t, `
listen_addr = ":9090"
default_model = "mixtral-8x7b-32768"
catalog_mode = "live"
models_cache_ttl = "15m"
enable_web_ui = false
`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.ListenAddr != ":9090" {
		t.Errorf("ListenAddr = %q", cfg.ListenAddr)
	}
	if cfg.DefaultModel != "mixtral-8x7b-32768" {
		t.Errorf("DefaultModel = %q", cfg.DefaultModel)
	}
	if cfg.CatalogMode != CatalogLive {
		t.Errorf("CatalogMode = %q", cfg.CatalogMode)
	}
	if cfg.ModelsCacheTTL != 15*time.Minute {
		t.Errorf("ModelsCacheTTL = %v", cfg.ModelsCacheTTL)
	}
	if cfg.EnableWebUI {
		t.Error("EnableWebUI = true, file says false")
	}
	// Untouched keys keep their defaults.
	if cfg.SpeechModel != "whisper-large-v3" {
		t.Errorf("SpeechModel = %q", cfg.SpeechModel)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	pointToConfig(t, `
listen_addr = ":9090"
enable_web_ui = false
`)
	t.Setenv("LISTEN_ADDR", ":7070")
	t.Setenv("ENABLE_WEB_UI", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.ListenAddr != ":7070" {
		t.Errorf("ListenAddr = %q, env must win over file", cfg.ListenAddr)
	}
	if !cfg.EnableWebUI {
		t.Error("EnableWebUI = false, env must win over file")
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Run("unknown catalog mode", func(t *testing.T) {
		t.Setenv("GROQRELAY_CONFIG", filepath.Join(t.TempDir(), "absent.toml"))
		t.Setenv("CATALOG_MODE", "dynamic")
		if _, err := Load(); err == nil {
			t.Error("Load accepted unknown catalog mode")
		}
	})

	t.Run("bad cache ttl", func(t *testing.T) {
		pointToConfig(t, `models_cache_ttl = "soon"`)
		if _, err := Load(); err == nil {
			t.Error("Load accepted unparseable ttl")
		}
	})
}
