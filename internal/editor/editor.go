// Package editor implements in-cell text editing: the idle, editing,
// committed and cancelled lifecycle, suggestion navigation, and writing the
// result back through an undoable command.
package editor

import (
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/rivo/uniseg"

	"github.com/joeycumines/gridedit/internal/bus"
	"github.com/joeycumines/gridedit/internal/grid"
	"github.com/joeycumines/gridedit/internal/history"
	"github.com/joeycumines/gridedit/internal/selection"
	"github.com/joeycumines/gridedit/internal/suggest"
)

const (
	// maxSuggestions caps the popup list.
	maxSuggestions = 50
	// suggestLimit is the number of values requested per query.
	suggestLimit = 20
)

// Point is a terminal position.
type Point struct {
	X, Y int
}

// Delta is a selection move applied after a commit.
type Delta struct {
	DR, DC int
}

// StartOptions seed a new edit. A nil Initial keeps the cell's value; a
// nil Pointer puts the caret at the end.
type StartOptions struct {
	Initial *string
	Pointer *Point
}

// View is what the editor needs from the renderer.
type View interface {
	grid.RowView
	Headers() []string
	IsDisplayed(row int) bool
	ColumnX(c int) (int, bool)
}

// Editor edits one cell at a time.
type Editor struct {
	model   *grid.Model
	sel     *selection.Selection
	hist    *history.Manager
	bus     *bus.Bus
	view    View
	suggest *suggest.Engine
	logger  *slog.Logger

	input    textinput.Model
	editing  bool
	fillAll  bool
	cell     grid.Cell
	original string

	items      []string
	index      int
	sugVisible bool
}

// Option configures an Editor.
type Option func(*Editor)

// WithSuggestions enables value suggestions from e.
func WithSuggestions(e *suggest.Engine) Option {
	return func(ed *Editor) { ed.suggest = e }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(ed *Editor) { ed.logger = l }
}

func New(m *grid.Model, sel *selection.Selection, hist *history.Manager, b *bus.Bus, view View, opts ...Option) *Editor {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Cursor.SetMode(cursor.CursorStatic)
	e := &Editor{
		model:  m,
		sel:    sel,
		hist:   hist,
		bus:    b,
		view:   view,
		input:  ti,
		index:  -1,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Editing reports whether an edit is in progress.
func (e *Editor) Editing() bool { return e.editing }

// EditingCell returns the cell being edited.
func (e *Editor) EditingCell() (grid.Cell, bool) { return e.cell, e.editing }

// SetFillAll makes the next commit write the text into every cell of the
// selection, even a single one.
func (e *Editor) SetFillAll(v bool) { e.fillAll = v }

// FillAll reports whether fill-all is set.
func (e *Editor) FillAll() bool { return e.fillAll }

// Value returns the text being edited.
func (e *Editor) Value() string { return e.input.Value() }

// Position returns the caret position in runes.
func (e *Editor) Position() int { return e.input.Position() }

// Start begins editing the active cell. It does nothing if the cell is not
// displayed, or an edit is already running.
func (e *Editor) Start(opts StartOptions) bool {
	if e.editing {
		return false
	}
	active := e.sel.Active()
	if !e.view.IsDisplayed(active.R) {
		return false
	}
	e.editing = true
	e.cell = active
	e.original = e.model.Get(active.R, active.C)

	text := e.original
	if opts.Initial != nil {
		text = *opts.Initial
	}
	// textinput turns line breaks into spaces, so a lone CR must go first.
	e.input.SetValue(strings.ReplaceAll(text, "\r", ""))
	e.input.Focus()
	e.input.CursorEnd()
	if opts.Pointer != nil {
		e.placeCaret(opts.Pointer.X)
	}
	e.logger.Debug("edit start", slog.String("cell", grid.ToA1(active.R, active.C)))
	e.updateSuggestions()
	return true
}

// placeCaret moves the caret to the grapheme under terminal column x.
func (e *Editor) placeCaret(x int) {
	left, ok := e.view.ColumnX(e.cell.C)
	if !ok {
		return
	}
	e.input.SetCursor(caretAt(e.input.Value(), x-left))
}

// caretAt maps a display column within text to a rune offset, landing on
// grapheme boundaries. Columns past the end map to the end.
func caretAt(text string, col int) int {
	if col <= 0 {
		return 0
	}
	pos, width := 0, 0
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		w := g.Width()
		if width+w > col {
			return pos
		}
		width += w
		pos += len(g.Runes())
	}
	return pos
}

// Commit writes the edited text and ends the edit. With fill-all set, or a
// multi-cell selection, every selected cell receives the text. A non-nil
// move then moves the active cell.
func (e *Editor) Commit(move *Delta) {
	if !e.editing {
		return
	}
	text := e.input.Value()
	rng := e.sel.Range()
	active := e.sel.Active()
	fillAll := e.fillAll
	e.stop()

	if fillAll || !rng.IsSingle() {
		e.fill(rng, text)
	} else {
		cmd := history.NewSetCells(e.model, rng, [][]string{{text}})
		cmd.Label = "editCells"
		e.hist.Execute(cmd)
	}
	e.logger.Debug("edit commit", slog.String("range", rng.String()))

	if move != nil {
		e.sel.SetActive(active.R+move.DR, active.C+move.DC)
		e.bus.Emit(bus.EventSelectionChanged, nil)
	}
}

// fill writes text into the rows of rng shown inside the selection box.
func (e *Editor) fill(rng grid.Rect, text string) {
	var cmds []history.Command
	for _, run := range grid.RowRuns(rng, e.model.RowsIn(e.view, rng)) {
		cmd := history.NewFillRange(e.model, run, text)
		cmd.Label = "editCells"
		cmds = append(cmds, cmd)
	}
	switch len(cmds) {
	case 0:
	case 1:
		e.hist.Execute(cmds[0])
	default:
		e.hist.Execute(&history.Batch{Label: "editCells", Commands: cmds})
	}
}

// Cancel ends the edit, discarding the text.
func (e *Editor) Cancel() {
	if !e.editing {
		return
	}
	e.input.SetValue(e.original)
	e.stop()
	e.logger.Debug("edit cancel")
}

func (e *Editor) stop() {
	e.hideSuggestions()
	e.input.Blur()
	e.editing = false
	e.fillAll = false
}

// HandleKey routes a key while editing. It reports whether the key was
// consumed; every key is consumed while editing.
func (e *Editor) HandleKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	if !e.editing {
		return false, nil
	}
	key := msg.String()
	if e.sugVisible && !msg.Alt {
		switch key {
		case "down":
			e.moveSuggestion(1)
			return true, nil
		case "up":
			e.moveSuggestion(-1)
			return true, nil
		case "tab":
			e.AcceptSuggestion(e.index)
			return true, nil
		}
	}
	switch key {
	case "enter":
		e.Commit(&Delta{DR: 1})
		return true, nil
	case "shift+enter":
		e.Commit(&Delta{DR: -1})
		return true, nil
	case "tab":
		e.Commit(&Delta{DC: 1})
		return true, nil
	case "shift+tab":
		e.Commit(&Delta{DC: -1})
		return true, nil
	case "esc":
		if e.sugVisible {
			e.hideSuggestions()
		} else {
			e.Cancel()
		}
		return true, nil
	case "up", "down":
		// suggestion keys of the text input
		return true, nil
	}

	return true, e.Update(msg)
}

// Update forwards a message to the text input while editing, including
// the clipboard reads it starts for its own paste binding.
func (e *Editor) Update(msg tea.Msg) tea.Cmd {
	if !e.editing {
		return nil
	}
	before := e.input.Value()
	var cmd tea.Cmd
	e.input, cmd = e.input.Update(msg)
	if e.input.Value() != before {
		e.updateSuggestions()
	}
	return cmd
}

// HandleMouseDown reports whether a left press on cell belongs to the edit
// in progress, in which case it only moves the caret.
func (e *Editor) HandleMouseDown(cell grid.Cell, x int) bool {
	if !e.editing || cell != e.cell {
		return false
	}
	e.placeCaret(x)
	return true
}

// CellView renders the text input exactly width cells wide.
func (e *Editor) CellView(width int) string {
	if width <= 0 {
		return ""
	}
	if w := max(width-1, 1); w != e.input.Width {
		e.input.Width = w
		// recompute the visible window for the new width
		e.input.SetCursor(e.input.Position())
	}
	v := e.input.View()
	if w := lipgloss.Width(v); w < width {
		v += strings.Repeat(" ", width-w)
	} else if w > width {
		v = ansi.Truncate(v, width, "")
	}
	return v
}

// Suggestions returns the visible suggestion list and the highlighted
// index.
func (e *Editor) Suggestions() ([]string, int) {
	if !e.sugVisible {
		return nil, -1
	}
	return e.items, e.index
}

func (e *Editor) updateSuggestions() {
	if !e.editing || e.suggest == nil {
		e.hideSuggestions()
		return
	}
	header := ""
	if headers := e.view.Headers(); e.cell.C < len(headers) {
		header = strings.TrimSpace(headers[e.cell.C])
	}
	if header == "" || !e.suggest.HasHeader(header) {
		e.hideSuggestions()
		return
	}
	items := e.suggest.Suggest(header, e.input.Value(), suggestLimit)
	if len(items) == 0 {
		e.hideSuggestions()
		return
	}
	e.items = items[:min(len(items), maxSuggestions)]
	e.index = 0
	e.sugVisible = true
}

func (e *Editor) hideSuggestions() {
	e.sugVisible = false
	e.items = nil
	e.index = -1
}

func (e *Editor) moveSuggestion(step int) {
	n := len(e.items)
	if n == 0 {
		return
	}
	e.index = ((e.index+step)%n + n) % n
}

// AcceptSuggestion replaces the text with suggestion i and refreshes the
// list for the new text.
func (e *Editor) AcceptSuggestion(i int) {
	if !e.editing || i < 0 || i >= len(e.items) {
		return
	}
	e.input.SetValue(e.items[i])
	e.input.CursorEnd()
	e.updateSuggestions()
}
