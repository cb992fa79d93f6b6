package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

type Config struct {
	API   APIConfig   `toml:"api"`
	Board BoardConfig `toml:"board"`
	Serve ServeConfig `toml:"serve"`
}

type APIConfig struct {
	BaseURL        string `toml:"base_url"`
	User           string `toml:"user"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

type BoardConfig struct {
	// PeriodID pins a close period; 0 follows the tracker's active period.
	PeriodID  int64  `toml:"period_id"`
	Limit     int    `toml:"limit"`
	StatePath string `toml:"state_path"`
}

type ServeConfig struct {
	Addr string `toml:"addr"`
	DB   string `toml:"db"`
	Seed string `toml:"seed"`
}

func Load(path string) (*Config, error) {
	cfg := &Config{
		API: APIConfig{
			BaseURL:        "http://127.0.0.1:8765",
			TimeoutSeconds: 30,
		},
		Board: BoardConfig{
			Limit:     200,
			StatePath: expandHome("~/.config/closeboard/state.json"),
		},
		Serve: ServeConfig{
			Addr: "127.0.0.1:8765",
			DB:   expandHome("~/.local/share/closeboard/tracker.db"),
		},
	}

	// Try default paths if not specified
	if path == "" {
		candidates := []string{
			expandHome("~/.config/closeboard/config.toml"),
			"./closeboard.toml",
		}
		for _, c := range candidates {
			if _, err := os.Stat(c); err == nil {
				path = c
				break
			}
		}
	}

	// Load from file if exists
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, cfg); err != nil {
				return nil, err
			}
		}
	}

	cfg.Board.StatePath = expandHome(cfg.Board.StatePath)
	cfg.Serve.DB = expandHome(cfg.Serve.DB)
	cfg.Serve.Seed = expandHome(cfg.Serve.Seed)

	if cfg.API.User == "" {
		cfg.API.User = os.Getenv("USER")
	}

	return cfg, nil
}

func expandHome(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[1:])
	}
	return path
}
