// Package input turns Bubble Tea key and mouse messages into selection
// changes and bus actions.
package input

import (
	"log/slog"
	"time"
)

const (
	// DefaultKeyDebounce is the minimum interval between handled grid keys.
	DefaultKeyDebounce = 50 * time.Millisecond
	// DoubleClickInterval is the longest gap between the presses of a
	// double click.
	DoubleClickInterval = 400 * time.Millisecond

	framePointer = "pointer"
	// autoScrollMargin is the distance from a body edge, in cells, at which
	// dragging starts to scroll.
	autoScrollMargin = 1
	// autoScrollMax caps the scroll step per frame.
	autoScrollMax = 4
	wheelStep     = 3
)

type options struct {
	logger   *slog.Logger
	now      func() time.Time
	keys     KeyMap
	debounce time.Duration
}

// Option configures a Keyboard or a Mouse.
type Option func(*options)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithClock sets the time source for debouncing and double clicks.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithKeyMap replaces the default key bindings.
func WithKeyMap(k KeyMap) Option {
	return func(o *options) { o.keys = k }
}

// WithDebounce sets the key debounce window. Zero disables it.
func WithDebounce(d time.Duration) Option {
	return func(o *options) { o.debounce = d }
}

func newOptions(opts []Option) options {
	o := options{
		logger:   slog.New(slog.DiscardHandler),
		now:      time.Now,
		keys:     DefaultKeyMap(),
		debounce: DefaultKeyDebounce,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
