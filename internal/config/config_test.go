package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Practice.Username != nil || cfg.Server.Addr != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfigSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[practice]
username = "ada"
source = "words"
words = 30
tick-ms = 250

[server]
addr = ":9090"
quote-rate = 2.5
redis-addr = "localhost:6379"

[storage]
path = "/tmp/speedtype.db"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Practice.Username == nil || *cfg.Practice.Username != "ada" {
		t.Fatalf("unexpected username: %v", cfg.Practice.Username)
	}
	if cfg.Practice.Words == nil || *cfg.Practice.Words != 30 {
		t.Fatalf("unexpected words: %v", cfg.Practice.Words)
	}
	if cfg.Practice.TickMs == nil || *cfg.Practice.TickMs != 250 {
		t.Fatalf("unexpected tick-ms: %v", cfg.Practice.TickMs)
	}
	if cfg.Practice.CapsPct != nil {
		t.Fatalf("expected unset caps")
	}
	if cfg.Server.QuoteRate == nil || *cfg.Server.QuoteRate != 2.5 {
		t.Fatalf("unexpected quote-rate: %v", cfg.Server.QuoteRate)
	}
	if cfg.Storage.Path == nil || *cfg.Storage.Path != "/tmp/speedtype.db" {
		t.Fatalf("unexpected storage path: %v", cfg.Storage.Path)
	}
}

func TestLoadConfigUnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[practice]\nlang = \"en\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected error for unknown key")
	}
}

func TestDefaultPathsFollowXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")
	if got := DefaultConfigPath(); got != filepath.Join("/cfg", "speedtype", "config.toml") {
		t.Fatalf("unexpected config path %q", got)
	}
	if got := DefaultDBPath(); got != filepath.Join("/data", "speedtype", "speedtype.db") {
		t.Fatalf("unexpected db path %q", got)
	}
	if got := DefaultWordListPath(); got != filepath.Join("/cfg", "speedtype", "words.txt") {
		t.Fatalf("unexpected word list path %q", got)
	}
}
