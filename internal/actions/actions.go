// Package actions binds the editor's named operations to the bus. Every
// keyboard shortcut, menu entry and script call reaches the model through
// one of the actions registered here.
package actions

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/joeycumines/gridedit/internal/bus"
	"github.com/joeycumines/gridedit/internal/clipboard"
	"github.com/joeycumines/gridedit/internal/editor"
	"github.com/joeycumines/gridedit/internal/grid"
	"github.com/joeycumines/gridedit/internal/history"
	"github.com/joeycumines/gridedit/internal/render"
	"github.com/joeycumines/gridedit/internal/selection"
)

// ErrInvalidPayload is returned by an action given a payload it cannot use.
var ErrInvalidPayload = errors.New("invalid action payload")

// ZoomStep is the zoom change of one zoom.in or zoom.out.
const ZoomStep = 0.1

// selectionPriority runs the renderer's selection listener ahead of
// listeners registered at the default priority.
const selectionPriority = 10

// Deps are the components the actions operate on.
type Deps struct {
	Model     *grid.Model
	Selection *selection.Selection
	History   *history.Manager
	Bus       *bus.Bus
	Renderer  *render.Renderer
	Editor    *editor.Editor
	Clipboard *clipboard.Clipboard
	Logger    *slog.Logger
}

// Actions holds the state shared by the registered actions, which is the
// active filter and sort of the displayed rows.
type Actions struct {
	Deps

	filter   FilterRequest
	sort     *SortRequest
	program  *compiledFilter
	collator *collate.Collator
}

// Register installs the listeners and actions on d.Bus. It fails if any of
// the action names is already taken.
func Register(d Deps) (*Actions, error) {
	if d.Logger == nil {
		d.Logger = slog.New(slog.DiscardHandler)
	}
	a := &Actions{
		Deps:     d,
		filter:   FilterRequest{Col: -1},
		collator: collate.New(language.Vietnamese, collate.Loose),
	}

	d.History.OnChange(a.changed)
	d.Bus.On(bus.EventSelectionChanged, func(payload any) bus.Result {
		d.Renderer.UpdateSelection()
		if bus.ShouldScroll(payload) {
			d.Renderer.EnsureVisible()
		}
		return bus.Continue
	}, selectionPriority)

	for _, reg := range []struct {
		name string
		fn   bus.ActionFunc
	}{
		{"edit.start", a.editStart},
		{"edit.commit", a.editCommit},
		{"edit.cancel", a.editCancel},
		{"cells.clear", a.cellsClear},
		{"fill.down", a.fillDown},
		{"undo", func(any) (any, error) { return d.History.Undo(), nil }},
		{"redo", func(any) (any, error) { return d.History.Redo(), nil }},
		{"format.bold", a.toggle("format.bold", grid.FieldBold, grid.Format{Bold: true})},
		{"format.italic", a.toggle("format.italic", grid.FieldItalic, grid.Format{Italic: true})},
		{"format.underline", a.toggle("format.underline", grid.FieldUnderline, grid.Format{Underline: true})},
		{"format.align", a.formatAlign},
		{"format.color", a.formatString("format.color", "color", grid.FieldColor, func(f *grid.Format, v string) { f.Color = v })},
		{"format.fill", a.formatString("format.fill", "bg", grid.FieldBg, func(f *grid.Format, v string) { f.Bg = v })},
		{"format.font", a.formatString("format.font", "font", grid.FieldFont, func(f *grid.Format, v string) { f.Font = v })},
		{"format.fontSize", a.formatFontSize},
		{"clear.format", a.clearFormat},
		{"row.insertBelow", a.rowInsertBelow},
		{"row.delete", a.rowDelete},
		{"col.insertRight", a.colInsertRight},
		{"col.delete", a.colDelete},
		{"select.all", a.selectAll},
		{"select.row", a.selectRow},
		{"select.col", a.selectCol},
		{"clipboard.copy", a.copy},
		{"clipboard.cut", a.cut},
		{"clipboard.paste", a.paste},
		{"col.autofit", a.autofit},
		{"view.filter", a.viewFilter},
		{"view.sort", a.viewSort},
		{"view.clear", a.viewClear},
		{"menu.open", a.menuOpen},
		{"zoom.in", a.zoom(ZoomStep)},
		{"zoom.out", a.zoom(-ZoomStep)},
	} {
		if err := d.Bus.RegisterAction(reg.name, reg.fn); err != nil {
			return nil, fmt.Errorf("register actions: %w", err)
		}
	}
	return a, nil
}

// changed follows every applied command. Structural commands shift row and
// column indices, so the selection is clamped and the row view recomputed.
func (a *Actions) changed(op history.Op, cmd history.Command) {
	a.Renderer.RequestRender()
	if !structural(cmd) {
		return
	}
	a.Selection.Restore(a.Selection.Anchor(), a.Selection.Active())
	a.refreshView()
	a.Bus.Emit(bus.EventSelectionChanged, nil)
}

func structural(cmd history.Command) bool {
	switch c := cmd.(type) {
	case *history.InsertRows, *history.DeleteRows, *history.InsertCols, *history.DeleteCols:
		return true
	case *history.Batch:
		for _, child := range c.Commands {
			if structural(child) {
				return true
			}
		}
	}
	return false
}

func (a *Actions) status(msg string) {
	a.Bus.Emit(bus.EventStatus, msg)
}

func (a *Actions) editStart(payload any) (any, error) {
	opts, err := startOptions(payload)
	if err != nil {
		return nil, err
	}
	return a.Editor.Start(opts), nil
}

func (a *Actions) editCommit(payload any) (any, error) {
	if !a.Editor.Editing() {
		return false, nil
	}
	move, err := delta(payload)
	if err != nil {
		return nil, err
	}
	a.Editor.Commit(move)
	return true, nil
}

func (a *Actions) editCancel(any) (any, error) {
	if !a.Editor.Editing() {
		return false, nil
	}
	a.Editor.Cancel()
	return true, nil
}

// rowRuns splits rng into runs of consecutive model rows, keeping only the
// rows shown inside its selection box. With rows filtered or sorted a range
// of model rows can include rows the user does not see as selected.
func (a *Actions) rowRuns(rng grid.Rect) []grid.Rect {
	return grid.RowRuns(rng, a.Model.RowsIn(a.Renderer, rng))
}

// selectedRuns is rowRuns over every selected range.
func (a *Actions) selectedRuns() []grid.Rect {
	var runs []grid.Rect
	for _, rng := range a.Selection.AllRanges() {
		runs = append(runs, a.rowRuns(rng)...)
	}
	return runs
}

func (a *Actions) cellsClear(any) (any, error) {
	var cmds []history.Command
	for _, run := range a.selectedRuns() {
		cmds = append(cmds, history.NewClearCells(a.Model, run))
	}
	a.execute("clearCells", cmds)
	return nil, nil
}

// fillDown repeats the first row of the primary range over the rest of it,
// or fills a single row from the row above. Rows are taken in display
// order.
func (a *Actions) fillDown(any) (any, error) {
	rng := a.Selection.Range()
	if a.Renderer.RowIndexList() == nil {
		cmd, ok := history.NewFillDown(a.Model, rng)
		if ok {
			a.History.Execute(cmd)
		}
		return ok, nil
	}

	rows := a.Model.RowsIn(a.Renderer, rng)
	if len(rows) == 0 {
		return false, nil
	}
	source, targets := rows[0], rows[1:]
	if len(rows) == 1 {
		displayed := a.Renderer.DisplayedRows()
		i := slices.Index(displayed, rows[0])
		if i <= 0 {
			return false, nil
		}
		source, targets = displayed[i-1], rows
	}
	var cmds []history.Command
	for _, run := range grid.RowRuns(rng, targets) {
		cmds = append(cmds, history.NewFillFrom(a.Model, source, run))
	}
	a.execute("fillDown", cmds)
	return len(cmds) > 0, nil
}

// execute runs cmds as one undo step.
func (a *Actions) execute(label string, cmds []history.Command) {
	switch len(cmds) {
	case 0:
	case 1:
		a.History.Execute(cmds[0])
	default:
		a.History.Execute(&history.Batch{Label: label, Commands: cmds})
	}
}

func (a *Actions) rowInsertBelow(any) (any, error) {
	rng := a.Selection.Range()
	count := rng.R1 - rng.R0 + 1
	a.History.Execute(&history.InsertRows{At: rng.R1 + 1, Count: count})
	a.Selection.SetActive(rng.R1+1, 0)
	a.Selection.ExtendTo(rng.R1+count, a.Model.Cols()-1)
	a.Bus.Emit(bus.EventSelectionChanged, nil)
	return nil, nil
}

func (a *Actions) colInsertRight(any) (any, error) {
	rng := a.Selection.Range()
	count := rng.C1 - rng.C0 + 1
	a.History.Execute(&history.InsertCols{At: rng.C1 + 1, Count: count})
	a.Selection.SetActive(0, rng.C1+1)
	a.Selection.ExtendTo(a.Model.Rows()-1, rng.C1+count)
	a.Bus.Emit(bus.EventSelectionChanged, nil)
	return nil, nil
}

// rowDelete deletes the rows of the primary range shown inside its
// selection box. Runs are deleted bottom up so earlier indices stay valid.
func (a *Actions) rowDelete(any) (any, error) {
	runs := a.rowRuns(a.Selection.Range())
	var cmds []history.Command
	for _, run := range slices.Backward(runs) {
		if cmd, ok := history.NewDeleteRows(a.Model, run.R0, run.R1); ok {
			cmds = append(cmds, cmd)
		}
	}
	a.execute("deleteRows", cmds)
	return len(cmds) > 0, nil
}

func (a *Actions) colDelete(any) (any, error) {
	rng := a.Selection.Range()
	cmd, ok := history.NewDeleteCols(a.Model, rng.C0, rng.C1)
	if ok {
		a.History.Execute(cmd)
	}
	return ok, nil
}

func (a *Actions) selectAll(any) (any, error) {
	a.Selection.SelectAll()
	a.Bus.Emit(bus.EventSelectionChanged, bus.SelectionChange{NoScroll: true})
	return nil, nil
}

// selectRow widens the primary range to whole rows.
func (a *Actions) selectRow(any) (any, error) {
	rng := a.Selection.Range()
	a.Selection.SetActive(rng.R0, 0)
	a.Selection.ExtendTo(rng.R1, a.Model.Cols()-1)
	a.Bus.Emit(bus.EventSelectionChanged, bus.SelectionChange{NoScroll: true})
	return nil, nil
}

// selectCol widens the primary range to whole columns.
func (a *Actions) selectCol(any) (any, error) {
	rng := a.Selection.Range()
	a.Selection.SetActive(0, rng.C0)
	a.Selection.ExtendTo(a.Model.Rows()-1, rng.C1)
	a.Bus.Emit(bus.EventSelectionChanged, bus.SelectionChange{NoScroll: true})
	return nil, nil
}

func (a *Actions) copy(any) (any, error) {
	text, _ := a.Clipboard.Copy()
	return text, nil
}

func (a *Actions) cut(any) (any, error) {
	text, _ := a.Clipboard.Cut()
	return text, nil
}

// paste applies a string payload, or reads the system clipboard when the
// payload is nil.
func (a *Actions) paste(payload any) (any, error) {
	switch p := payload.(type) {
	case nil:
		a.Clipboard.PasteFromSystem()
	case string:
		a.Clipboard.Paste(p)
	default:
		return nil, fmt.Errorf("%w: clipboard.paste wants a string, got %T", ErrInvalidPayload, payload)
	}
	return nil, nil
}

// autofit sizes the payload's column, or every column of the primary range.
func (a *Actions) autofit(payload any) (any, error) {
	c0, c1 := a.Selection.Range().C0, a.Selection.Range().C1
	if payload != nil {
		c, ok := intField(payload, "col")
		if !ok {
			return nil, fmt.Errorf("%w: col.autofit wants a column, got %T", ErrInvalidPayload, payload)
		}
		c0, c1 = c, c
	}
	var cmds []history.Command
	for c := max(c0, 0); c <= min(c1, a.Model.Cols()-1); c++ {
		before, after := a.Model.ColWidth(c), a.Renderer.AutoFitWidth(c)
		if before != after {
			cmds = append(cmds, &history.ResizeCol{Col: c, Before: before, After: after})
		}
	}
	a.execute("autofit", cmds)
	return len(cmds), nil
}

// menuOpen shows the context menu at a Point payload, or under the active
// cell.
func (a *Actions) menuOpen(payload any) (any, error) {
	if payload != nil {
		p, ok := point(payload)
		if !ok {
			return nil, fmt.Errorf("%w: menu.open wants a point, got %T", ErrInvalidPayload, payload)
		}
		a.Renderer.ShowContextMenu(p.X, p.Y)
		return nil, nil
	}
	active := a.Selection.Active()
	x, okX := a.Renderer.ColumnX(active.C)
	y, okY := a.Renderer.RowY(active.R)
	if !okX || !okY {
		x, y = a.Renderer.BodyOrigin()
	}
	a.Renderer.ShowContextMenu(x, y+1)
	return nil, nil
}

func (a *Actions) zoom(step float64) bus.ActionFunc {
	return func(any) (any, error) {
		z := a.Renderer.Zoom() + step
		a.Renderer.SetZoom(float64(int(z*10+0.5)) / 10)
		return a.Renderer.Zoom(), nil
	}
}
