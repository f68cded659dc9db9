package app

import (
	"fmt"
	"slices"

	"github.com/vk/runexp/internal/config"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// DefinitionPaths are sweep definition files or directories.
	DefinitionPaths []string
	// Overrides carries command-line settings. Its parameters follow the
	// file's and its scalar fields win.
	Overrides *config.Model

	LogFormat string
	LogLevel  string
}

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"text", "json"}
)

func NewConfig(cfg Config) (*Config, error) {
	if cfg.LogLevel != "" && !slices.Contains(logLevels, cfg.LogLevel) {
		return nil, fmt.Errorf("invalid log level %q: must be one of %v", cfg.LogLevel, logLevels)
	}
	if cfg.LogFormat != "" && !slices.Contains(logFormats, cfg.LogFormat) {
		return nil, fmt.Errorf("invalid log format %q: must be one of %v", cfg.LogFormat, logFormats)
	}
	if cfg.Overrides == nil {
		cfg.Overrides = &config.Model{}
	}
	return &cfg, nil
}
