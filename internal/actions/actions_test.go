package actions

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeycumines/gridedit/internal/bus"
	"github.com/joeycumines/gridedit/internal/clipboard"
	"github.com/joeycumines/gridedit/internal/editor"
	"github.com/joeycumines/gridedit/internal/grid"
	"github.com/joeycumines/gridedit/internal/history"
	"github.com/joeycumines/gridedit/internal/render"
	"github.com/joeycumines/gridedit/internal/schedule"
	"github.com/joeycumines/gridedit/internal/selection"
)

type memClipboard struct{ text string }

func (m *memClipboard) WriteText(_ context.Context, text string) error {
	m.text = text
	return nil
}

func (m *memClipboard) ReadText(context.Context) (string, error) { return m.text, nil }

type fixture struct {
	model    *grid.Model
	sel      *selection.Selection
	hist     *history.Manager
	queue    *schedule.Queue
	bus      *bus.Bus
	renderer *render.Renderer
	editor   *editor.Editor
	mem      *memClipboard
	a        *Actions
	events   int
	status   []string
}

func newFixture(t *testing.T, rows, cols int) *fixture {
	t.Helper()
	f := &fixture{
		model: grid.New(rows, cols),
		queue: &schedule.Queue{},
		mem:   &memClipboard{},
	}
	f.sel = selection.New(f.model)
	f.hist = history.NewManager(f.model)
	f.bus = bus.New(f.queue)
	f.renderer = render.New(f.model, f.sel, f.bus, schedule.NewFrames())
	f.renderer.SetViewport(80, 24)
	f.renderer.Render()
	f.editor = editor.New(f.model, f.sel, f.hist, f.bus, f.renderer)
	cb := clipboard.New(f.model, f.sel, f.hist, f.bus,
		clipboard.WithWriter(f.mem), clipboard.WithReader(f.mem), clipboard.WithView(f.renderer))

	a, err := Register(Deps{
		Model:     f.model,
		Selection: f.sel,
		History:   f.hist,
		Bus:       f.bus,
		Renderer:  f.renderer,
		Editor:    f.editor,
		Clipboard: cb,
	})
	require.NoError(t, err)
	f.a = a

	f.bus.On(bus.EventSelectionChanged, func(any) bus.Result {
		f.events++
		return bus.Continue
	}, 0)
	f.bus.On(bus.EventStatus, func(p any) bus.Result {
		f.status = append(f.status, p.(string))
		return bus.Continue
	}, 0)
	return f
}

func (f *fixture) act(t *testing.T, name string, payload any) any {
	t.Helper()
	out, err := f.bus.Act(name, payload)
	require.NoError(t, err, name)
	return out
}

func TestRegister_DuplicateName(t *testing.T) {
	f := newFixture(t, 3, 3)
	_, err := Register(Deps{
		Model:     f.model,
		Selection: f.sel,
		History:   f.hist,
		Bus:       f.bus,
		Renderer:  f.renderer,
		Editor:    f.editor,
	})
	assert.ErrorIs(t, err, bus.ErrDuplicateAction)
}

func TestRowInsertBelow(t *testing.T) {
	f := newFixture(t, 10, 5)
	f.model.Set(2, 0, "C")
	f.sel.SetActive(0, 0)
	f.sel.ExtendTo(1, 2)

	f.act(t, "row.insertBelow", nil)
	assert.Equal(t, 12, f.model.Rows())
	assert.Equal(t, "C", f.model.Get(4, 0))
	assert.Empty(t, f.model.Get(2, 0))
	assert.Equal(t, grid.Rect{R0: 2, C0: 0, R1: 3, C1: 4}, f.sel.Range())
	f.queue.Drain()
	assert.Equal(t, 1, f.events)

	require.True(t, f.hist.Undo())
	assert.Equal(t, 10, f.model.Rows())
	assert.Equal(t, "C", f.model.Get(2, 0))
}

func TestColInsertRight(t *testing.T) {
	f := newFixture(t, 4, 4)
	f.model.Set(0, 1, "B")
	f.act(t, "col.insertRight", nil)
	assert.Equal(t, 5, f.model.Cols())
	assert.Equal(t, "B", f.model.Get(0, 2))
	assert.Equal(t, grid.Rect{R0: 0, C0: 1, R1: 3, C1: 1}, f.sel.Range())
}

func TestRowDelete_ClampsSelection(t *testing.T) {
	f := newFixture(t, 10, 3)
	f.model.Set(7, 0, "keep")
	f.sel.SetActive(8, 1)
	f.sel.ExtendTo(9, 1)

	assert.Equal(t, true, f.act(t, "row.delete", nil))
	assert.Equal(t, 8, f.model.Rows())
	assert.Equal(t, grid.Cell{R: 7, C: 1}, f.sel.Active())
	assert.Equal(t, 7, f.sel.Range().R1)
	f.queue.Drain()
	assert.Equal(t, 1, f.events)

	f.hist.Undo()
	assert.Equal(t, 10, f.model.Rows())
	assert.Equal(t, "keep", f.model.Get(7, 0))
}

func TestColDelete(t *testing.T) {
	f := newFixture(t, 3, 4)
	f.model.Set(0, 3, "D")
	f.sel.SetActive(0, 1)
	f.sel.ExtendTo(0, 2)
	f.act(t, "col.delete", nil)
	assert.Equal(t, 2, f.model.Cols())
	assert.Equal(t, "D", f.model.Get(0, 1))
	f.hist.Undo()
	assert.Equal(t, "D", f.model.Get(0, 3))
}

func TestFormatBold_TogglesAcrossRanges(t *testing.T) {
	f := newFixture(t, 5, 5)
	f.model.SetFormat(0, 0, grid.Format{Bold: true})
	f.sel.SetActive(0, 0)
	f.sel.ExtendTo(0, 1)
	f.sel.ToggleExtraCell(3, 3)

	bold := func() []bool {
		return []bool{f.model.Format(0, 0).Bold, f.model.Format(0, 1).Bold, f.model.Format(3, 3).Bold}
	}

	assert.Equal(t, true, f.act(t, "format.bold", nil))
	assert.Equal(t, []bool{true, true, true}, bold())
	assert.Equal(t, 1, f.hist.UndoDepth())

	assert.Equal(t, false, f.act(t, "format.bold", nil))
	assert.Equal(t, []bool{false, false, false}, bold())

	f.hist.Undo()
	assert.Equal(t, []bool{true, true, true}, bold())
	f.hist.Undo()
	assert.Equal(t, []bool{true, false, false}, bold())
}

func TestFormatSetters(t *testing.T) {
	f := newFixture(t, 3, 3)

	f.act(t, "format.align", "center")
	assert.Equal(t, grid.AlignCenter, f.model.Format(0, 0).Align)
	f.act(t, "format.align", map[string]any{"align": "right"})
	assert.Equal(t, grid.AlignRight, f.model.Format(0, 0).Align)
	_, err := f.bus.Act("format.align", "diagonal")
	assert.ErrorIs(t, err, ErrInvalidPayload)

	f.act(t, "format.color", "red")
	f.act(t, "format.fill", map[string]any{"bg": "#202020"})
	f.act(t, "format.font", map[string]any{"font": "mono"})
	f.act(t, "format.fontSize", map[string]any{"size": 14.0})
	assert.Equal(t, grid.Format{Align: grid.AlignRight, Color: "red", Bg: "#202020", Font: "mono", FontSize: 14}, f.model.Format(0, 0))

	f.act(t, "format.color", "")
	f.act(t, "format.fontSize", "abc")
	assert.Empty(t, f.model.Format(0, 0).Color)
	assert.Zero(t, f.model.Format(0, 0).FontSize)

	f.act(t, "clear.format", nil)
	assert.True(t, f.model.Format(0, 0).IsZero())

	_, err = f.bus.Act("format.color", 7)
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestFillDownAndClear(t *testing.T) {
	f := newFixture(t, 5, 3)
	f.model.Set(0, 0, "x")
	f.sel.ExtendTo(2, 0)
	assert.Equal(t, true, f.act(t, "fill.down", nil))
	assert.Equal(t, []string{"x", "x", "x"}, []string{f.model.Get(0, 0), f.model.Get(1, 0), f.model.Get(2, 0)})

	f.model.Set(4, 2, "extra")
	f.sel.ToggleExtraCell(4, 2)
	f.act(t, "cells.clear", nil)
	assert.Empty(t, f.model.Get(1, 0))
	assert.Empty(t, f.model.Get(4, 2))
	f.hist.Undo()
	assert.Equal(t, "extra", f.model.Get(4, 2))
	assert.Equal(t, "x", f.model.Get(1, 0))

	f.sel.SetActive(0, 1)
	assert.Equal(t, false, f.act(t, "fill.down", nil))
}

func TestEditActions(t *testing.T) {
	f := newFixture(t, 5, 3)
	assert.Equal(t, false, f.act(t, "edit.commit", nil))
	assert.Equal(t, true, f.act(t, "edit.start", map[string]any{"initial": "hi"}))
	assert.Equal(t, true, f.act(t, "edit.commit", map[string]any{"move": map[string]any{"dr": 1, "dc": 0}}))
	assert.Equal(t, "hi", f.model.Get(0, 0))
	assert.Equal(t, grid.Cell{R: 1, C: 0}, f.sel.Active())

	f.act(t, "edit.start", nil)
	assert.Equal(t, true, f.act(t, "edit.cancel", nil))
	assert.False(t, f.editor.Editing())

	_, err := f.bus.Act("edit.start", map[string]any{"initial": 3})
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestUndoRedoActions(t *testing.T) {
	f := newFixture(t, 3, 3)
	assert.Equal(t, false, f.act(t, "undo", nil))
	f.hist.Execute(history.NewSetCells(f.model, grid.CellRect(0, 0), [][]string{{"v"}}))
	assert.Equal(t, true, f.act(t, "undo", nil))
	assert.Empty(t, f.model.Get(0, 0))
	assert.Equal(t, true, f.act(t, "redo", nil))
	assert.Equal(t, "v", f.model.Get(0, 0))
}

func TestSelectActions(t *testing.T) {
	f := newFixture(t, 4, 3)
	f.sel.SetActive(1, 1)
	f.sel.ExtendTo(2, 1)
	f.act(t, "select.row", nil)
	assert.Equal(t, grid.Rect{R0: 1, C0: 0, R1: 2, C1: 2}, f.sel.Range())
	f.act(t, "select.col", nil)
	assert.Equal(t, grid.Rect{R0: 0, C0: 0, R1: 3, C1: 2}, f.sel.Range())
	f.sel.SetActive(1, 1)
	f.act(t, "select.all", nil)
	assert.Equal(t, f.model.Bounds(), f.sel.Range())
}

func TestClipboardActions(t *testing.T) {
	f := newFixture(t, 4, 4)
	f.model.Set(0, 0, "a")
	assert.Equal(t, "a", f.act(t, "clipboard.copy", nil))
	assert.Equal(t, "a", f.mem.text)

	f.sel.SetActive(2, 2)
	f.act(t, "clipboard.paste", nil)
	assert.Equal(t, "a", f.model.Get(2, 2))

	f.act(t, "clipboard.paste", "p\tq")
	assert.Equal(t, []string{"p", "q"}, []string{f.model.Get(2, 2), f.model.Get(2, 3)})

	f.sel.SetActive(0, 0)
	assert.Equal(t, "a", f.act(t, "clipboard.cut", nil))
	assert.Empty(t, f.model.Get(0, 0))

	_, err := f.bus.Act("clipboard.paste", 1)
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestAutofit(t *testing.T) {
	f := newFixture(t, 3, 3)
	f.model.Set(1, 0, "abcdefghijklmnopqrstuvwxyz")
	assert.Equal(t, 1, f.act(t, "col.autofit", nil))
	assert.Equal(t, 28, f.model.ColWidth(0))
	assert.Equal(t, 0, f.act(t, "col.autofit", map[string]any{"col": 0}))
	f.hist.Undo()
	assert.Equal(t, grid.DefaultColWidth, f.model.ColWidth(0))
}

func TestMenuOpenAndZoom(t *testing.T) {
	f := newFixture(t, 3, 3)
	f.act(t, "menu.open", map[string]any{"x": 5, "y": 6})
	require.True(t, f.renderer.MenuVisible())
	x, y := f.renderer.MenuPosition()
	assert.Equal(t, []int{5, 6}, []int{x, y})
	f.renderer.HideContextMenu()
	f.act(t, "menu.open", nil)
	assert.True(t, f.renderer.MenuVisible())

	assert.InDelta(t, 1.1, f.act(t, "zoom.in", nil), 1e-9)
	f.act(t, "zoom.out", nil)
	assert.InDelta(t, 0.9, f.act(t, "zoom.out", nil), 1e-9)
}

func TestSelectionListener_Scrolls(t *testing.T) {
	f := newFixture(t, 200, 3)
	f.sel.SetActive(150, 0)
	f.bus.Emit(bus.EventSelectionChanged, bus.SelectionChange{NoScroll: true})
	f.queue.Drain()
	_, y := f.renderer.Scroll()
	assert.Zero(t, y)

	f.bus.Emit(bus.EventSelectionChanged, nil)
	f.queue.Drain()
	_, y = f.renderer.Scroll()
	assert.Positive(t, y)
}
