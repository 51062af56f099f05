// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Practice PracticeConfig `toml:"practice"`
	Server   ServerConfig   `toml:"server"`
	Storage  StorageConfig  `toml:"storage"`
}

// PracticeConfig maps terminal practice settings.
type PracticeConfig struct {
	Username *string  `toml:"username"`
	Source   *string  `toml:"source"`
	TextFile *string  `toml:"text-file"`
	WordList *string  `toml:"word-list"`
	Words    *int     `toml:"words"`
	CapsPct  *float64 `toml:"caps"`
	PunctPct *float64 `toml:"punct"`
	PunctSet *string  `toml:"punct-set"`
	TickMs   *int     `toml:"tick-ms"`
	QuoteURL *string  `toml:"quote-url"`
}

// ServerConfig maps HTTP server settings.
type ServerConfig struct {
	Addr          *string  `toml:"addr"`
	AllowedOrigin *string  `toml:"allowed-origin"`
	QuoteURL      *string  `toml:"quote-url"`
	QuoteRate     *float64 `toml:"quote-rate"`
	RedisAddr     *string  `toml:"redis-addr"`
}

// StorageConfig maps database settings.
type StorageConfig struct {
	Path *string `toml:"path"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
