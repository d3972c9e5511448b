// Package clipboard copies, cuts and pastes the selection as tab-delimited
// text, going through the command history for every mutation.
package clipboard

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/joeycumines/gridedit/internal/bus"
	"github.com/joeycumines/gridedit/internal/grid"
	"github.com/joeycumines/gridedit/internal/history"
	"github.com/joeycumines/gridedit/internal/schedule"
	"github.com/joeycumines/gridedit/internal/selection"
)

const (
	DefaultDedupWindow   = 300 * time.Millisecond
	DefaultPasteDebounce = 10 * time.Millisecond

	clipboardTimeout = 10 * time.Second
)

// View is a display of the grid that may hide and reorder rows.
type View interface {
	grid.RowView
	// DisplayedRows returns the shown model rows in display order.
	DisplayedRows() []int
}

// Clipboard binds the grid selection to a system clipboard.
type Clipboard struct {
	model  *grid.Model
	sel    *selection.Selection
	hist   *history.Manager
	bus    *bus.Bus
	view   View
	writer Writer
	reader Reader
	logger *slog.Logger
	now    func() time.Time

	dedupWindow time.Duration
	debounce    *schedule.Debouncer
	processing  bool

	lastText string
	lastAt   time.Time
}

// Option configures a Clipboard.
type Option func(*Clipboard)

// WithWriter replaces the clipboard writer.
func WithWriter(w Writer) Option {
	return func(c *Clipboard) { c.writer = w }
}

// WithReader replaces the clipboard reader.
func WithReader(r Reader) Option {
	return func(c *Clipboard) { c.reader = r }
}

// WithView makes copy, cut and paste follow the rows shown by v rather
// than the contiguous model range.
func WithView(v View) Option {
	return func(c *Clipboard) { c.view = v }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Clipboard) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClock sets the time source used by the copy de-duplication guard.
func WithClock(now func() time.Time) Option {
	return func(c *Clipboard) { c.now = now }
}

// WithDedupWindow sets how long an identical copy is suppressed for.
func WithDedupWindow(d time.Duration) Option {
	return func(c *Clipboard) { c.dedupWindow = d }
}

// WithPasteDebounce collapses bursts of Paste calls, applying only the last
// one, d after it arrives. Without it Paste applies immediately.
func WithPasteDebounce(timers schedule.Timers, d time.Duration) Option {
	return func(c *Clipboard) { c.debounce = schedule.NewDebouncer(timers, d) }
}

func New(m *grid.Model, sel *selection.Selection, hist *history.Manager, b *bus.Bus, opts ...Option) *Clipboard {
	c := &Clipboard{
		model:       m,
		sel:         sel,
		hist:        hist,
		bus:         b,
		writer:      System{},
		reader:      System{},
		logger:      slog.New(slog.DiscardHandler),
		now:         time.Now,
		dedupWindow: DefaultDedupWindow,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Processing reports whether a cut or paste is being applied.
func (c *Clipboard) Processing() bool { return c.processing }

// rows returns the model rows of rng covered by the selection box.
func (c *Clipboard) rows(rng grid.Rect) []int {
	var v grid.RowView
	if c.view != nil {
		v = c.view
	}
	return c.model.RowsIn(v, rng)
}

func (c *Clipboard) export(rng grid.Rect) string {
	rng = rng.Normalize()
	return grid.FormatTSV(c.model.RowValues(c.rows(rng), rng.C0, rng.C1))
}

// Copy writes the primary range to the clipboard and returns the text. A
// copy of identical text within the de-duplication window is skipped, and
// reported as false.
func (c *Clipboard) Copy() (string, bool) {
	text := c.export(c.sel.Range())
	now := c.now()
	if text == c.lastText && !c.lastAt.IsZero() && now.Sub(c.lastAt) < c.dedupWindow {
		return text, false
	}
	c.lastText, c.lastAt = text, now
	c.write(text)
	return text, true
}

// Cut copies the primary range, then clears it with an undoable command.
func (c *Clipboard) Cut() (string, bool) {
	if c.processing {
		return "", false
	}
	c.processing = true
	defer func() { c.processing = false }()

	rng := c.sel.Range()
	text := c.export(rng)
	c.lastText, c.lastAt = text, c.now()
	c.write(text)
	var cmds []history.Command
	for _, run := range grid.RowRuns(rng, c.rows(rng)) {
		cmds = append(cmds, history.NewClearCells(c.model, run))
	}
	c.execute("clearCells", cmds)
	return text, true
}

func (c *Clipboard) execute(label string, cmds []history.Command) {
	switch len(cmds) {
	case 0:
	case 1:
		c.hist.Execute(cmds[0])
	default:
		c.hist.Execute(&history.Batch{Label: label, Commands: cmds})
	}
}

func (c *Clipboard) write(text string) {
	ctx, cancel := context.WithTimeout(context.Background(), clipboardTimeout)
	defer cancel()
	if err := c.writer.WriteText(ctx, text); err != nil {
		c.logger.Debug("clipboard write failed", slog.Any("error", err))
	}
}

// Paste applies text at the anchor, debounced when configured. Calls made
// while a paste is being applied are dropped.
func (c *Clipboard) Paste(text string) {
	if c.processing || text == "" {
		return
	}
	if c.debounce == nil {
		c.apply(text)
		return
	}
	c.debounce.Call(func() { c.apply(text) })
}

// PasteFromSystem reads the clipboard and applies its text immediately.
// Read failures are ignored.
func (c *Clipboard) PasteFromSystem() {
	if c.processing {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), clipboardTimeout)
	defer cancel()
	text, err := c.reader.ReadText(ctx)
	if err != nil {
		c.logger.Debug("clipboard read failed", slog.Any("error", err))
		return
	}
	c.apply(text)
}

// Apply pastes text at the anchor cell immediately, returning the range
// written.
func (c *Clipboard) Apply(text string) (grid.Rect, bool) {
	if c.processing {
		return grid.Rect{}, false
	}
	return c.apply(text)
}

func (c *Clipboard) apply(text string) (grid.Rect, bool) {
	c.processing = true
	defer func() { c.processing = false }()

	values := grid.ParseTSV(strings.ReplaceAll(text, "\r", ""))
	if len(values) == 0 || (len(values) == 1 && len(values[0]) == 1 && values[0][0] == "") {
		return grid.Rect{}, false
	}
	anchor := c.sel.Anchor()
	rows, cols := grid.Shape(values)
	rng := grid.Rect{
		R0: anchor.R,
		C0: anchor.C,
		R1: min(c.model.Rows()-1, anchor.R+rows-1),
		C1: min(c.model.Cols()-1, anchor.C+cols-1),
	}
	if rng.R1 < rng.R0 || rng.C1 < rng.C0 {
		return grid.Rect{}, false
	}

	targets := c.pasteRows(anchor.R, rows)
	if targets == nil {
		values = clip(values, rng)
		cmd := history.NewSetCells(c.model, rng, values)
		cmd.Label = "paste"
		c.hist.Execute(cmd)
	} else {
		rng.R1 = targets[len(targets)-1]
		values = clip(values, grid.Rect{R1: len(targets) - 1, C0: rng.C0, C1: rng.C1})
		cmds := make([]history.Command, 0, len(targets))
		for i, r := range targets {
			cmd := history.NewSetCells(c.model, grid.Rect{R0: r, C0: rng.C0, R1: r, C1: rng.C1}, values[i:i+1])
			cmd.Label = "paste"
			cmds = append(cmds, cmd)
		}
		c.execute("paste", cmds)
	}
	c.logger.Debug("paste", slog.String("range", rng.String()))

	if rng.R1 != anchor.R || rng.C1 > anchor.C {
		c.sel.SetActive(anchor.R, anchor.C)
		c.sel.ExtendTo(rng.R1, rng.C1)
		c.bus.Emit(bus.EventSelectionChanged, nil)
	}
	return rng.Normalize(), true
}

// pasteRows returns the shown rows, in display order, that n rows of values
// pasted at model row anchor land on. It returns nil when rows are shown in
// model order or the anchor is hidden.
func (c *Clipboard) pasteRows(anchor, n int) []int {
	if c.view == nil || c.view.RowIndexList() == nil {
		return nil
	}
	displayed := c.view.DisplayedRows()
	i := slices.Index(displayed, anchor)
	if i < 0 {
		return nil
	}
	return displayed[i:min(i+n, len(displayed))]
}

// clip trims values to the shape of rng.
func clip(values [][]string, rng grid.Rect) [][]string {
	rows, cols := rng.Size()
	values = values[:min(len(values), rows)]
	for i, row := range values {
		values[i] = row[:min(len(row), cols)]
	}
	return values
}
