package input

import (
	"log/slog"
	"slices"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/joeycumines/gridedit/internal/bus"
	"github.com/joeycumines/gridedit/internal/editor"
	"github.com/joeycumines/gridedit/internal/grid"
	"github.com/joeycumines/gridedit/internal/history"
	"github.com/joeycumines/gridedit/internal/render"
	"github.com/joeycumines/gridedit/internal/schedule"
	"github.com/joeycumines/gridedit/internal/selection"
)

type dragKind int

const (
	dragNone dragKind = iota
	dragCells
	dragCols
	dragRows
	dragColResize
	dragRowResize
	dragVScroll
	dragHScroll
)

// drag is the gesture in progress between a press and its release.
type drag struct {
	kind dragKind
	// start is the anchor column or row of a header drag, or the column or
	// row being resized.
	start int
	// origin is the pointer coordinate at the press, for resizes.
	origin int
	// init is the size before a resize.
	init int
}

type click struct {
	cell grid.Cell
	at   time.Time
}

// Mouse handles mouse messages for the grid.
type Mouse struct {
	model  *grid.Model
	sel    *selection.Selection
	hist   *history.Manager
	editor *editor.Editor
	bus    *bus.Bus
	view   *render.Renderer
	frames *schedule.Frames
	options

	drag      drag
	pending   tea.MouseMsg
	lastClick *click
}

func NewMouse(m *grid.Model, sel *selection.Selection, hist *history.Manager, ed *editor.Editor, b *bus.Bus, view *render.Renderer, frames *schedule.Frames, opts ...Option) *Mouse {
	return &Mouse{
		model:   m,
		sel:     sel,
		hist:    hist,
		editor:  ed,
		bus:     b,
		view:    view,
		frames:  frames,
		options: newOptions(opts),
	}
}

// Dragging reports whether a press is being held.
func (m *Mouse) Dragging() bool { return m.drag.kind != dragNone }

// HandleMouse processes a mouse message with coordinates relative to the
// renderer.
func (m *Mouse) HandleMouse(msg tea.MouseMsg) {
	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonLeft:
			m.press(msg)
		case tea.MouseButtonRight:
			m.contextMenu(msg)
		case tea.MouseButtonWheelUp, tea.MouseButtonWheelDown,
			tea.MouseButtonWheelLeft, tea.MouseButtonWheelRight:
			m.wheel(msg)
		}
	case tea.MouseActionMotion:
		if m.drag.kind == dragNone {
			return
		}
		m.pending = msg
		m.frames.Request(framePointer, m.motion)
	case tea.MouseActionRelease:
		m.release()
	}
}

func (m *Mouse) press(msg tea.MouseMsg) {
	if m.view.MenuVisible() {
		action, inside := m.view.MenuItemAt(msg)
		if inside {
			if action != "" {
				m.view.HideContextMenu()
				m.act(action, nil)
			}
			return
		}
		m.view.HideContextMenu()
	}
	if m.editor.Editing() {
		if i, ok := m.view.SuggestionAt(msg); ok {
			m.editor.AcceptSuggestion(i)
			return
		}
	}

	t := m.view.HitTest(msg.X, msg.Y)
	if t.Kind == render.TargetCell && m.editor.HandleMouseDown(grid.Cell{R: t.Row, C: t.Col}, msg.X) {
		return
	}

	m.frames.Cancel(framePointer)
	m.bus.Emit(bus.EventDismiss, nil)
	m.act("edit.commit", nil)

	switch t.Kind {
	case render.TargetColResize:
		m.drag = drag{kind: dragColResize, start: t.Col, origin: msg.X, init: m.model.ColWidth(t.Col)}
	case render.TargetRowResize:
		m.drag = drag{kind: dragRowResize, start: t.Row, origin: msg.Y, init: m.model.RowHeight(t.Row)}
	case render.TargetColHeader:
		anchor := t.Col
		if msg.Shift {
			anchor = m.sel.Active().C
		}
		m.selectCols(anchor, t.Col)
		m.drag = drag{kind: dragCols, start: anchor}
	case render.TargetRowHeader:
		anchor := t.Row
		if msg.Shift {
			anchor = m.sel.Active().R
		}
		m.selectRows(anchor, t.Row)
		m.drag = drag{kind: dragRows, start: anchor}
	case render.TargetCorner:
		m.sel.SelectAll()
		m.bus.Emit(bus.EventSelectionChanged, bus.SelectionChange{NoScroll: true})
	case render.TargetVScroll:
		sx, _ := m.view.Scroll()
		m.view.ScrollTo(sx, m.view.VScrollOffset(t.Pos))
		m.drag = drag{kind: dragVScroll}
	case render.TargetHScroll:
		_, sy := m.view.Scroll()
		m.view.ScrollTo(m.view.HScrollOffset(t.Pos), sy)
		m.drag = drag{kind: dragHScroll}
	case render.TargetCell:
		m.pressCell(msg, grid.Cell{R: t.Row, C: t.Col})
	}
}

func (m *Mouse) pressCell(msg tea.MouseMsg, cell grid.Cell) {
	now := m.now()
	double := !msg.Ctrl && !msg.Shift && m.lastClick != nil &&
		m.lastClick.cell == cell && now.Sub(m.lastClick.at) <= DoubleClickInterval

	switch {
	case msg.Ctrl && !msg.Shift:
		m.toggleCell(cell)
	case msg.Shift:
		m.sel.ExtendTo(cell.R, cell.C)
	default:
		m.sel.SetActive(cell.R, cell.C)
	}
	m.bus.Emit(bus.EventSelectionChanged, nil)
	m.drag = drag{kind: dragCells}

	if !double {
		m.lastClick = &click{cell: cell, at: now}
		return
	}
	m.lastClick = nil
	m.drag = drag{}
	m.bus.Emit(bus.EventSelectionChanged, bus.SelectionChange{NoScroll: true})
	m.act("edit.start", editor.StartOptions{Pointer: &editor.Point{X: msg.X, Y: msg.Y}})
}

// toggleCell adds cell to a multi-selection. The primary range moves to
// cell and a single-cell primary is kept as an extra; pressing an extra
// removes it instead.
func (m *Mouse) toggleCell(cell grid.Cell) {
	if slices.Contains(m.sel.Extras(), cell) {
		m.sel.ToggleExtraCell(cell.R, cell.C)
		return
	}
	prev := m.sel.Range()
	m.sel.SetActive(cell.R, cell.C, selection.PreserveExtras())
	if prev.IsSingle() && !prev.Contains(cell.R, cell.C) {
		m.sel.ToggleExtraCell(prev.R0, prev.C0)
	}
}

// motion applies the latest pointer position of a drag, once per frame.
// While the pointer sits past an edge of the body it keeps scrolling,
// re-arming itself every frame until the button is released.
func (m *Mouse) motion() {
	msg := m.pending
	switch m.drag.kind {
	case dragColResize:
		w := grid.ClampColWidth(m.drag.init + m.view.Unscale(msg.X-m.drag.origin))
		if w != m.model.ColWidth(m.drag.start) {
			m.model.SetColWidth(m.drag.start, w)
			m.view.RequestRender()
		}
	case dragRowResize:
		h := grid.ClampRowHeight(m.drag.init + m.view.Unscale(msg.Y-m.drag.origin))
		if h != m.model.RowHeight(m.drag.start) {
			m.model.SetRowHeight(m.drag.start, h)
			m.view.RequestRender()
		}
	case dragCols:
		if cell, ok := m.view.CellNear(msg.X, msg.Y); ok {
			m.selectCols(m.drag.start, cell.C)
		}
		m.autoScroll(msg, true, false)
	case dragRows:
		if cell, ok := m.view.CellNear(msg.X, msg.Y); ok {
			m.selectRows(m.drag.start, cell.R)
		}
		m.autoScroll(msg, false, true)
	case dragCells:
		m.autoScroll(msg, true, true)
		if cell, ok := m.view.CellNear(msg.X, msg.Y); ok {
			m.sel.ExtendTo(cell.R, cell.C)
			m.bus.Emit(bus.EventSelectionChanged, bus.SelectionChange{NoScroll: true})
		}
	case dragVScroll:
		_, oy := m.view.BodyOrigin()
		sx, _ := m.view.Scroll()
		m.view.ScrollTo(sx, m.view.VScrollOffset(msg.Y-oy))
	case dragHScroll:
		ox, _ := m.view.BodyOrigin()
		_, sy := m.view.Scroll()
		m.view.ScrollTo(m.view.HScrollOffset(msg.X-ox), sy)
	}
}

func (m *Mouse) autoScroll(msg tea.MouseMsg, horizontal, vertical bool) {
	dx, dy := m.view.EdgeDistance(msg.X, msg.Y, autoScrollMargin)
	if !horizontal {
		dx = 0
	}
	if !vertical {
		dy = 0
	}
	dx = min(max(dx, -autoScrollMax), autoScrollMax)
	dy = min(max(dy, -autoScrollMax), autoScrollMax)
	if (dx != 0 || dy != 0) && m.view.ScrollBy(dx, dy) {
		m.frames.Request(framePointer, m.motion)
	}
}

func (m *Mouse) release() {
	m.frames.Cancel(framePointer)
	d := m.drag
	m.drag = drag{}
	switch d.kind {
	case dragColResize:
		if after := m.model.ColWidth(d.start); after != d.init {
			m.hist.Execute(&history.ResizeCol{Col: d.start, Before: d.init, After: after})
		}
	case dragRowResize:
		if after := m.model.RowHeight(d.start); after != d.init {
			m.hist.Execute(&history.ResizeRow{Row: d.start, Before: d.init, After: after})
		}
	}
}

// contextMenu commits any edit, selects the target unless it is already
// part of the selection, and opens the menu at the pointer.
func (m *Mouse) contextMenu(msg tea.MouseMsg) {
	t := m.view.HitTest(msg.X, msg.Y)
	switch t.Kind {
	case render.TargetCell, render.TargetColHeader, render.TargetRowHeader:
	default:
		return
	}
	m.act("edit.commit", nil)

	rng := m.sel.Range()
	changed := false
	switch t.Kind {
	case render.TargetCell:
		if !rng.Contains(t.Row, t.Col) {
			m.sel.SetActive(t.Row, t.Col)
			changed = true
		}
	case render.TargetColHeader:
		if !(m.sel.IsFullCols() && t.Col >= rng.C0 && t.Col <= rng.C1) {
			m.sel.SelectCol(t.Col)
			changed = true
		}
	case render.TargetRowHeader:
		if !(m.sel.IsFullRows() && t.Row >= rng.R0 && t.Row <= rng.R1) {
			m.sel.SelectRow(t.Row)
			changed = true
		}
	}
	if changed {
		m.bus.Emit(bus.EventSelectionChanged, bus.SelectionChange{NoScroll: true})
	}
	m.view.ShowContextMenu(msg.X, msg.Y)
}

func (m *Mouse) wheel(msg tea.MouseMsg) {
	if msg.Ctrl {
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.act("zoom.in", nil)
		case tea.MouseButtonWheelDown:
			m.act("zoom.out", nil)
		}
		return
	}
	dx, dy := 0, 0
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		dy = -wheelStep
	case tea.MouseButtonWheelDown:
		dy = wheelStep
	case tea.MouseButtonWheelLeft:
		dx = -2 * wheelStep
	case tea.MouseButtonWheelRight:
		dx = 2 * wheelStep
	}
	if msg.Shift {
		dx, dy = 2*dy, 0
	}
	m.view.ScrollBy(dx, dy)
}

func (m *Mouse) selectCols(a, b int) {
	m.sel.SetActive(0, min(a, b))
	m.sel.ExtendTo(m.model.Rows()-1, max(a, b))
	m.bus.Emit(bus.EventSelectionChanged, bus.SelectionChange{NoScroll: true})
}

func (m *Mouse) selectRows(a, b int) {
	m.sel.SetActive(min(a, b), 0)
	m.sel.ExtendTo(max(a, b), m.model.Cols()-1)
	m.bus.Emit(bus.EventSelectionChanged, bus.SelectionChange{NoScroll: true})
}

func (m *Mouse) act(name string, payload any) {
	if _, err := m.bus.Act(name, payload); err != nil {
		m.logger.Warn("mouse action failed", slog.String("action", name), slog.Any("error", err))
	}
}
