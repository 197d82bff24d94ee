package app

import (
	"fmt"
	"strings"
)

// Config holds the command-line settings of one invocation.
type Config struct {
	ConfigPath string

	LogFormat string
	LogLevel  string
	NoColor   bool

	Workers int
	Retries int

	Recompress bool
	Align      bool
	Install    bool
	Launch     bool
	Publish    bool
	Symbols    bool
	Notify     bool
	// Progress draws a progress bar instead of per-node log lines.
	Progress bool
}

// NewConfig validates cfg and returns a normalised copy.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.ConfigPath == "" {
		return nil, fmt.Errorf("config path is required")
	}

	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("invalid log-format %q: must be 'text' or 'json'", cfg.LogFormat)
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if _, ok := levels[cfg.LogLevel]; !ok {
		return nil, fmt.Errorf("invalid log-level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.LogLevel)
	}

	if cfg.Workers < 0 {
		return nil, fmt.Errorf("workers must not be negative, got %d", cfg.Workers)
	}
	return &cfg, nil
}
