package app

import (
	"io"
	"log/slog"
)

// newLogger builds the run's diagnostic logger on w. Level and format have
// already been checked by NewConfig; anything unrecognised falls back to
// info and text.
func newLogger(level, format string, w io.Writer) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}

	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
