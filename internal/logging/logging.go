package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Config selects the sinks of a logger built by New.
type Config struct {
	Level slog.Level
	// File receives text records when non-nil.
	File io.Writer
	// BufferSize is the ring capacity; zero means DefaultBufferSize.
	BufferSize int
}

// New returns a logger writing to a ring buffer and, when configured, a
// file. The buffer is returned for the status line.
func New(cfg Config) (*slog.Logger, *Buffer) {
	buf := NewBuffer(cfg.BufferSize, cfg.Level)
	if cfg.File == nil {
		return slog.New(buf), buf
	}
	text := slog.NewTextHandler(cfg.File, &slog.HandlerOptions{Level: cfg.Level})
	return slog.New(fanout{buf, text}), buf
}

// ParseLevel maps debug, info, warn and error (any case) to a level. The
// empty string is info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("invalid log level: %s", s)
}

// fanout sends each record to every handler that accepts its level.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, record slog.Record) error {
	var errs []error
	for _, h := range f {
		if h.Enabled(ctx, record.Level) {
			errs = append(errs, h.Handle(ctx, record.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}
