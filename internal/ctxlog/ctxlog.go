// Package ctxlog carries the run's *slog.Logger through a context so workers
// and the result store log with the attributes of whoever called them.
package ctxlog

import (
	"context"
	"log/slog"
)

type loggerKey struct{}

// WithLogger stores logger in ctx.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext returns the logger stored in ctx, or slog.Default when there
// is none.
func FromContext(ctx context.Context) *slog.Logger {
	logger, _ := ctx.Value(loggerKey{}).(*slog.Logger)
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// With derives a context whose logger adds args to every record, e.g. a
// worker ID or the combination being run.
func With(ctx context.Context, args ...any) context.Context {
	return WithLogger(ctx, FromContext(ctx).With(args...))
}
