package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.API.BaseURL != "http://127.0.0.1:8765" {
		t.Errorf("base_url default = %q", cfg.API.BaseURL)
	}
	if cfg.API.TimeoutSeconds != 30 {
		t.Errorf("timeout default = %d, want 30", cfg.API.TimeoutSeconds)
	}
	if cfg.Board.Limit != 200 {
		t.Errorf("limit default = %d, want 200", cfg.Board.Limit)
	}
	if cfg.Serve.Addr != "127.0.0.1:8765" {
		t.Errorf("serve addr default = %q", cfg.Serve.Addr)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`
[api]
base_url = "http://127.0.0.1:9000"
user = "casey"
timeout_seconds = 5

[board]
period_id = 12
limit = 50
`), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.API.BaseURL != "http://127.0.0.1:9000" {
		t.Errorf("base_url = %q", cfg.API.BaseURL)
	}
	if cfg.API.User != "casey" {
		t.Errorf("user = %q, want casey", cfg.API.User)
	}
	if cfg.API.TimeoutSeconds != 5 {
		t.Errorf("timeout = %d, want 5", cfg.API.TimeoutSeconds)
	}
	if cfg.Board.PeriodID != 12 {
		t.Errorf("period_id = %d, want 12", cfg.Board.PeriodID)
	}
	if cfg.Board.Limit != 50 {
		t.Errorf("limit = %d, want 50", cfg.Board.Limit)
	}
	// Unset sections keep their defaults.
	if cfg.Serve.Addr != "127.0.0.1:8765" {
		t.Errorf("serve addr = %q", cfg.Serve.Addr)
	}
}
