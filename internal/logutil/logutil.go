// Package logutil builds the structured stderr loggers used by every
// pipeline stage. Stage stdout carries pipeline data, so all telemetry and
// diagnostics go to stderr.
package logutil

import (
	"io"
	"log/slog"
	"os"
)

// Format names accepted by New.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// LevelFor maps the tools' verbosity levels onto slog levels:
// 0 emits warnings only, 1 adds stage summaries, 2 adds progress telemetry.
func LevelFor(verbose int) slog.Level {
	switch {
	case verbose <= 0:
		return slog.LevelWarn
	case verbose == 1:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}

// New returns a stderr logger at the level implied by verbose, with the
// given handler format ("text" or "json"; anything else falls back to text).
func New(verbose int, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: LevelFor(verbose)}

	var handler slog.Handler
	if format == FormatJSON {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}

// Discard returns a logger that drops everything. Used by tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
