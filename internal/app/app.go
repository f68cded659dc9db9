package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/vk/runexp/internal/config"
	"github.com/vk/runexp/internal/ctxlog"
	"github.com/vk/runexp/internal/launcher"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	errW     io.Writer
	logger   *slog.Logger
	runID    string
	model    *config.Model
	launcher launcher.Launcher
}

// Option configures an App.
type Option func(*App)

// WithLauncher replaces the process launcher.
func WithLauncher(l launcher.Launcher) Option {
	return func(a *App) { a.launcher = l }
}

// NewApp loads the sweep definition, merges the overrides and validates the
// result. Progress goes to outW; logs and failure dumps go to errW.
func NewApp(outW, errW io.Writer, cfg *Config, loader config.Loader, opts ...Option) (*App, error) {
	runID := uuid.NewString()
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, errW).With("run_id", runID)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	model := &config.Model{}
	if len(cfg.DefinitionPaths) > 0 {
		loaded, err := loader.Load(ctx, cfg.DefinitionPaths...)
		if err != nil {
			return nil, fmt.Errorf("failed to load sweep definition: %w", err)
		}
		model = loaded
		logger.Debug("Sweep definition loaded.", "params", len(model.Params))
	}
	model.Merge(cfg.Overrides)
	model.ApplyDefaults()
	if err := model.Validate(); err != nil {
		return nil, err
	}

	a := &App{
		outW:   outW,
		errW:   errW,
		logger: logger,
		runID:  runID,
		model:  model,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.launcher == nil {
		a.launcher = launcher.New()
	}
	return a, nil
}

// Model returns the merged configuration. This is primarily for testing.
func (a *App) Model() *config.Model {
	return a.model
}

// RunID returns the identifier attached to every log line of this run.
func (a *App) RunID() string {
	return a.runID
}
