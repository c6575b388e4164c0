package config

import (
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file structure.
type FileConfig struct {
	ListenAddr      string `toml:"listen_addr"`
	UpstreamBaseURL string `toml:"upstream_base_url"`
	DefaultModel    string `toml:"default_model"`
	SpeechModel     string `toml:"speech_model"`
	CatalogMode     string `toml:"catalog_mode"`
	ModelsCacheTTL  string `toml:"models_cache_ttl"`
	EnableWebUI     *bool  `toml:"enable_web_ui"`
}

// ConfigPath returns the config file path. GROQRELAY_CONFIG overrides the
// default ./groqrelay.toml.
func ConfigPath() string {
	if path := os.Getenv("GROQRELAY_CONFIG"); path != "" {
		return path
	}
	return "groqrelay.toml"
}

// LoadFile loads configuration from the TOML file.
// Returns an empty FileConfig if the file doesn't exist.
func LoadFile() (*FileConfig, error) {
	cfg := &FileConfig{}

	path := ConfigPath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
