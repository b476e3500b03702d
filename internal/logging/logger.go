// Package logging defines a minimal structured-logging interface used across
// the client, with implementations backed by log/slog and rs/zerolog.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/rs/zerolog"
)

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key–value pairs, e.g.:
//
//	log.Info(ctx, "search finished", "query", q, "offers", n)
type Logger interface {
	// Debug logs diagnostic details that are off by default.
	Debug(ctx context.Context, msg string, args ...any)

	// Info logs an informational message.
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs a warning message for unusual but non-fatal conditions.
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs an error message for failures.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key–value pairs.
	With(args ...any) Logger
}

// Backends accepted by New.
const (
	BackendSlog    = "slog"
	BackendZerolog = "zerolog"
)

// Options selects and tunes the logger implementation.
type Options struct {
	Backend string // slog or zerolog
	Level   string // debug, info, warn, error
	Format  string // text or json (console is an alias of text for zerolog)
}

// New builds a Logger writing to w.
func New(w io.Writer, opts Options) (Logger, error) {
	switch strings.ToLower(opts.Backend) {
	case "", BackendSlog:
		var level slog.Level
		if err := level.UnmarshalText([]byte(orDefault(opts.Level, "info"))); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		hopts := &slog.HandlerOptions{Level: level}
		var h slog.Handler
		if strings.EqualFold(opts.Format, "json") {
			h = slog.NewJSONHandler(w, hopts)
		} else {
			h = slog.NewTextHandler(w, hopts)
		}
		return NewSlogLogger(slog.New(h)), nil

	case BackendZerolog:
		level, err := zerolog.ParseLevel(orDefault(opts.Level, "info"))
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		out := w
		if !strings.EqualFold(opts.Format, "json") {
			out = zerolog.ConsoleWriter{Out: w, NoColor: true}
		}
		zl := zerolog.New(out).Level(level).With().Timestamp().Logger()
		return NewZerologLogger(zl), nil

	default:
		return nil, fmt.Errorf("unknown log backend %q", opts.Backend)
	}
}

// Nop returns a logger that discards everything.
func Nop() Logger {
	return NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
