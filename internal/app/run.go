package app

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/joho/godotenv"
	"github.com/vk/runexp/internal/ctxlog"
	"github.com/vk/runexp/internal/executor"
	"github.com/vk/runexp/internal/outparse"
	"github.com/vk/runexp/internal/resultstore"
	"github.com/vk/runexp/internal/sweep"
)

// Run resolves the parameters, opens the result file and executes every
// pending combination. Failed combinations do not make Run fail; an
// interrupt returns executor.ErrInterrupted once all children have exited.
func (a *App) Run(ctx context.Context) (executor.Summary, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	defs := make([]sweep.Definition, len(a.model.Params))
	for i, p := range a.model.Params {
		defs[i] = sweep.Definition{Name: p.Name, Expression: p.Expr}
	}
	plan, err := sweep.Resolve(defs)
	if err != nil {
		return executor.Summary{}, fmt.Errorf("failed to resolve parameters: %w", err)
	}
	a.logger.Debug("Parameters resolved.", "order", plan.Order())

	combos, err := plan.All()
	if err != nil {
		return executor.Summary{}, fmt.Errorf("failed to generate combinations: %w", err)
	}
	console := newConsole(a.outW, a.errW)
	console.Generated(len(combos))

	stream, err := outparse.ParseStream(a.model.Stream)
	if err != nil {
		return executor.Summary{}, err
	}
	env, err := a.loadEnvFile()
	if err != nil {
		return executor.Summary{}, err
	}

	schema := resultstore.Schema{Params: plan.Names(), Metrics: a.model.Metrics}
	if a.model.Preserve {
		schema.Outputs = stream.Columns()
	}
	store, err := resultstore.Open(ctx, a.model.Output, schema)
	if err != nil {
		return executor.Summary{}, err
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			a.logger.Error("Failed to close result file.", "error", cerr)
		}
	}()

	exec := executor.New(store, a.launcher, executor.Config{
		Concurrency: a.model.Concurrency,
		Args:        a.model.Command,
		Script:      a.model.Script,
		Env:         env,
		Metrics:     a.model.Metrics,
		Stream:      stream,
		Preserve:    a.model.Preserve,
	}, executor.WithReporter(console))

	a.logger.Info("Starting run.", "combinations", len(combos), "recorded", store.Len(), "concurrency", a.model.Concurrency, "output", a.model.Output)
	summary, err := exec.Run(ctx, combos)
	console.Summary(summary, a.model.Metrics)
	a.logger.Debug("App.Run method finished.", "succeeded", summary.Succeeded, "failed", summary.Failed)
	return summary, err
}

// loadEnvFile reads the configured dotenv file into sorted KEY=value pairs.
func (a *App) loadEnvFile() ([]string, error) {
	if a.model.EnvFile == "" {
		return nil, nil
	}
	vars, err := godotenv.Read(a.model.EnvFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read env file %s: %w", a.model.EnvFile, err)
	}
	env := make([]string, 0, len(vars))
	for _, k := range slices.Sorted(maps.Keys(vars)) {
		env = append(env, k+"="+vars[k])
	}
	a.logger.Debug("Env file loaded.", "path", a.model.EnvFile, "count", len(env))
	return env, nil
}
