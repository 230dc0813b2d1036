package diag

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Log formats accepted by NewLogger.
const (
	FormatText = "text"
	FormatJSON = "json"
)

var (
	// ErrUnknownFormat is returned for a log format other than text or json.
	ErrUnknownFormat = errors.New("diag: unknown log format")

	// ErrUnknownLevel is returned for an unparsable log level.
	ErrUnknownLevel = errors.New("diag: unknown log level")
)

// NewLogger creates a *slog.Logger writing to stderr.
// format is "text" or "json"; level is any name slog.Level understands
// ("debug", "info", "warn", "error", optionally with an offset like "debug-2").
func NewLogger(format, level string) (*slog.Logger, error) {
	return NewLoggerTo(os.Stderr, format, level)
}

// NewLoggerTo is NewLogger with an explicit destination.
func NewLoggerTo(w io.Writer, format, level string) (*slog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: lvl}

	// don't add timestamps when running under systemd
	if len(os.Getenv("INVOCATION_ID")) > 0 {
		opts.ReplaceAttr = func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && len(groups) == 0 {
				return slog.Attr{}
			}
			return a
		}
	}

	var h slog.Handler
	switch strings.ToLower(format) {
	case "", FormatText:
		h = slog.NewTextHandler(w, opts)
	case FormatJSON:
		h = slog.NewJSONHandler(w, opts)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	return slog.New(h), nil
}

// ParseLevel parses a level name. The empty string means info.
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnknownLevel, s)
	}

	return lvl, nil
}

// DiscardLogger returns a logger that drops every record.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

type loggerKey struct{}

// NewContext adds the logger to the context.
func NewContext(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// FromContext retrieves a logger from the context. If there is none,
// it returns slog.Default().
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && l != nil {
		return l
	}
	return slog.Default()
}
