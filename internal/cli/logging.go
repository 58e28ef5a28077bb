package cli

import (
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

// newLogger builds the invocation logger. Every record carries an invocation
// ID so runs started by the scheduler can be told apart in a shared log.
func newLogger(w io.Writer, level, format string, verbose bool) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelWarn
	}
	if verbose {
		lvl = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: lvl}
	var h slog.Handler
	if strings.EqualFold(format, "json") {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h).With("invocation", uuid.NewString())
}
