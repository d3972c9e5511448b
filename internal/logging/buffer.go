// Package logging provides the editor's log sinks: an in-memory ring of
// recent records for the status line, and a size-rotated log file.
package logging

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"
)

// DefaultBufferSize is the ring capacity used when none is configured.
const DefaultBufferSize = 1000

// Entry is one buffered record.
type Entry struct {
	Time    time.Time
	Level   slog.Level
	Message string
	Attrs   map[string]string
}

// String renders the entry on one line, attributes sorted by key.
func (e Entry) String() string {
	var b strings.Builder
	b.WriteString(e.Message)
	keys := make([]string, 0, len(e.Attrs))
	for k := range e.Attrs {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		b.WriteByte(' ')
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(e.Attrs[k])
	}
	return b.String()
}

type ring struct {
	mu      sync.RWMutex
	entries []Entry
	max     int
}

// Buffer is a slog.Handler keeping the most recent records in memory.
// Handlers derived with WithAttrs or WithGroup share the same ring.
type Buffer struct {
	ring   *ring
	level  slog.Leveler
	attrs  []slog.Attr
	groups []string
}

var _ slog.Handler = (*Buffer)(nil)

// NewBuffer returns a ring holding up to size records at or above level.
func NewBuffer(size int, level slog.Leveler) *Buffer {
	if size <= 0 {
		size = DefaultBufferSize
	}
	if level == nil {
		level = slog.LevelInfo
	}
	return &Buffer{ring: &ring{max: size, entries: make([]Entry, 0, min(size, 64))}, level: level}
}

func (h *Buffer) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *Buffer) Handle(_ context.Context, record slog.Record) error {
	attrs := make(map[string]string, record.NumAttrs()+len(h.attrs))
	prefix := strings.Join(h.groups, ".")
	add := func(a slog.Attr) {
		key := a.Key
		if prefix != "" {
			key = prefix + "." + key
		}
		attrs[key] = a.Value.Resolve().String()
	}
	for _, a := range h.attrs {
		attrs[a.Key] = a.Value.Resolve().String()
	}
	record.Attrs(func(a slog.Attr) bool {
		add(a)
		return true
	})

	r := h.ring
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{
		Time:    record.Time,
		Level:   record.Level,
		Message: record.Message,
		Attrs:   attrs,
	})
	if over := len(r.entries) - r.max; over > 0 {
		r.entries = slices.Delete(r.entries, 0, over)
	}
	return nil
}

func (h *Buffer) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = slices.Clone(h.attrs)
	prefix := strings.Join(h.groups, ".")
	for _, a := range attrs {
		if prefix != "" {
			a.Key = prefix + "." + a.Key
		}
		c.attrs = append(c.attrs, a)
	}
	return &c
}

func (h *Buffer) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := *h
	c.groups = append(slices.Clone(h.groups), name)
	return &c
}

// Entries returns a copy of every buffered record, oldest first.
func (h *Buffer) Entries() []Entry {
	h.ring.mu.RLock()
	defer h.ring.mu.RUnlock()
	return slices.Clone(h.ring.entries)
}

// Recent returns up to n of the newest records, oldest first.
func (h *Buffer) Recent(n int) []Entry {
	h.ring.mu.RLock()
	defer h.ring.mu.RUnlock()
	if n <= 0 || n > len(h.ring.entries) {
		n = len(h.ring.entries)
	}
	return slices.Clone(h.ring.entries[len(h.ring.entries)-n:])
}

// Latest returns the newest record at or above level.
func (h *Buffer) Latest(level slog.Level) (Entry, bool) {
	h.ring.mu.RLock()
	defer h.ring.mu.RUnlock()
	for i := len(h.ring.entries) - 1; i >= 0; i-- {
		if e := h.ring.entries[i]; e.Level >= level {
			return e, true
		}
	}
	return Entry{}, false
}

// Clear drops every buffered record.
func (h *Buffer) Clear() {
	h.ring.mu.Lock()
	defer h.ring.mu.Unlock()
	h.ring.entries = h.ring.entries[:0]
}
