// Package render draws the grid, its selection overlay and transient UI
// (context menu, suggestion popup) into a terminal frame, and maps
// terminal coordinates back to grid targets.
//
// The renderer never mutates the model. Full renders are coalesced to one
// per display frame; selection changes only rebuild the overlay.
package render

import (
	"log/slog"
	"strconv"
	"strings"

	zone "github.com/lrstanley/bubblezone"

	"github.com/joeycumines/gridedit/internal/bus"
	"github.com/joeycumines/gridedit/internal/grid"
	"github.com/joeycumines/gridedit/internal/schedule"
	"github.com/joeycumines/gridedit/internal/selection"
	"github.com/joeycumines/gridedit/internal/termui/scrollbar"
)

const (
	frameRender  = "render"
	frameOverlay = "overlay"
)

// EditSurface is the in-cell editor as seen by the renderer.
type EditSurface interface {
	// EditingCell returns the cell being edited, if any.
	EditingCell() (grid.Cell, bool)
	// CellView renders the editor exactly width cells wide.
	CellView(width int) string
	// Suggestions returns the visible suggestion list and the highlighted
	// index, or -1.
	Suggestions() (items []string, selected int)
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithTheme sets the color theme.
func WithTheme(t Theme) Option {
	return func(r *Renderer) { r.theme = t }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Renderer) { r.logger = l }
}

// WithZones enables bubblezone marks for menu items and suggestions. The
// caller owns the manager and must Scan the final view.
func WithZones(z *zone.Manager) Option {
	return func(r *Renderer) { r.zones = z }
}

// box is a selection rectangle in content coordinates, end exclusive.
type box struct {
	x0, y0, x1, y1 int
}

type bodyKey struct {
	gen, scrollX, scrollY, w, h int
}

// Renderer draws a grid model.
type Renderer struct {
	model  *grid.Model
	sel    *selection.Selection
	frames *schedule.Frames
	logger *slog.Logger
	theme  Theme
	zones  *zone.Manager
	prefix string

	headers []string
	rowList []int
	zoom    float64

	width, height    int
	scrollX, scrollY int

	layout  *layout
	gen     int
	body    *canvas
	bodyKey bodyKey
	boxes   []box

	edit  EditSurface
	menu  contextMenu
	popup popupGeometry

	renders  int
	overlays int
}

// New returns a renderer for m. It hides the context menu on
// bus.EventDismiss.
func New(m *grid.Model, sel *selection.Selection, b *bus.Bus, frames *schedule.Frames, opts ...Option) *Renderer {
	r := &Renderer{
		model:  m,
		sel:    sel,
		frames: frames,
		theme:  DefaultTheme(),
		zoom:   1,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.zones != nil {
		r.prefix = r.zones.NewPrefix()
	}
	b.On(bus.EventDismiss, func(any) bus.Result {
		r.HideContextMenu()
		return bus.Continue
	}, 0)
	return r
}

// SetEditSurface attaches the in-cell editor.
func (r *Renderer) SetEditSurface(e EditSurface) { r.edit = e }

// SetHeaders sets column titles. Missing or empty titles fall back to the
// column letter.
func (r *Renderer) SetHeaders(headers []string) {
	r.headers = append([]string(nil), headers...)
}

// Headers returns the column titles.
func (r *Renderer) Headers() []string { return append([]string(nil), r.headers...) }

// SetRowIndexList restricts and orders the displayed rows. Nil shows all
// rows in model order. Takes effect on the next render.
func (r *Renderer) SetRowIndexList(rows []int) {
	if rows == nil {
		r.rowList = nil
		return
	}
	r.rowList = append(make([]int, 0, len(rows)), rows...)
}

// RowIndexList returns the displayed row filter, or nil when unfiltered.
func (r *Renderer) RowIndexList() []int {
	if r.rowList == nil {
		return nil
	}
	return append([]int(nil), r.rowList...)
}

// DisplayedRows returns the model rows of the current layout, in display
// order.
func (r *Renderer) DisplayedRows() []int {
	return append([]int(nil), r.ensureLayout().rows...)
}

// IsDisplayed reports whether model row row is part of the current layout.
func (r *Renderer) IsDisplayed(row int) bool {
	_, ok := r.ensureLayout().display(row)
	return ok
}

// SetViewport sets the terminal area available to the grid, including
// headers and scrollbars.
func (r *Renderer) SetViewport(width, height int) {
	r.width, r.height = max(width, 0), max(height, 0)
	r.clampScroll()
}

// Viewport returns the size set by SetViewport.
func (r *Renderer) Viewport() (width, height int) { return r.width, r.height }

// SetZoom sets the display scale, clamped to [MinZoom, MaxZoom], and
// requests a render.
func (r *Renderer) SetZoom(z float64) {
	z = clampZoom(z)
	if z == r.zoom {
		return
	}
	r.zoom = z
	r.RequestRender()
}

// Zoom returns the display scale.
func (r *Renderer) Zoom() float64 { return r.zoom }

// RequestRender schedules a render for the next frame. Multiple requests
// in one frame produce one render.
func (r *Renderer) RequestRender() {
	r.frames.Request(frameRender, r.Render)
}

// Render rebuilds the layout and the visible cells immediately.
func (r *Renderer) Render() {
	r.frames.Cancel(frameRender)
	r.layout = r.computeLayout()
	r.gen++
	r.renders++
	r.clampScroll()
	r.buildBody()
	r.rebuildOverlay()
	r.logger.Debug("render",
		slog.Int("rows", len(r.layout.rows)),
		slog.Int("cols", r.model.Cols()))
}

// RenderCount returns the number of full renders performed.
func (r *Renderer) RenderCount() int { return r.renders }

// OverlayCount returns the number of overlay rebuilds performed.
func (r *Renderer) OverlayCount() int { return r.overlays }

// UpdateSelection schedules an overlay rebuild for the next frame.
func (r *Renderer) UpdateSelection() {
	r.frames.Request(frameOverlay, r.rebuildOverlay)
}

func (r *Renderer) ensureLayout() *layout {
	if r.layout == nil {
		r.layout = r.computeLayout()
		r.gen++
	}
	return r.layout
}

// bodySize is the size of the scrolling cell area.
func (r *Renderer) bodySize() (w, h int) {
	return max(r.width-rowHeaderWidth-1, 0), max(r.height-colHeaderHeight-1, 0)
}

func (r *Renderer) clampScroll() {
	if r.layout == nil {
		return
	}
	bw, bh := r.bodySize()
	r.scrollX = min(max(r.scrollX, 0), max(r.layout.contentWidth()-bw, 0))
	r.scrollY = min(max(r.scrollY, 0), max(r.layout.contentHeight()-bh, 0))
}

// Scroll returns the scroll offsets in display cells.
func (r *Renderer) Scroll() (x, y int) { return r.scrollX, r.scrollY }

// ScrollTo sets the scroll offsets, clamped to the content.
func (r *Renderer) ScrollTo(x, y int) {
	r.ensureLayout()
	oldX, oldY := r.scrollX, r.scrollY
	r.scrollX, r.scrollY = x, y
	r.clampScroll()
	if r.scrollX != oldX || r.scrollY != oldY {
		r.HideContextMenu()
	}
}

// ScrollBy scrolls relative to the current offsets. It reports whether
// the offsets changed.
func (r *Renderer) ScrollBy(dx, dy int) bool {
	oldX, oldY := r.scrollX, r.scrollY
	r.ScrollTo(r.scrollX+dx, r.scrollY+dy)
	return r.scrollX != oldX || r.scrollY != oldY
}

// cellBox returns the content box of a displayed cell.
func (r *Renderer) cellBox(row, col int) (box, bool) {
	l := r.ensureLayout()
	i, ok := l.display(row)
	if !ok || col < 0 || col >= len(l.colX)-1 {
		return box{}, false
	}
	return box{x0: l.colX[col], y0: l.rowY[i], x1: l.colX[col+1], y1: l.rowY[i+1]}, true
}

// rangeBox derives a selection box from the first displayed row of the
// range at its left edge and the last displayed row at its right edge.
func (r *Renderer) rangeBox(rng grid.Rect) (box, bool) {
	var tl, br box
	found := false
	for row := rng.R0; row <= rng.R1 && !found; row++ {
		tl, found = r.cellBox(row, rng.C0)
	}
	if !found {
		return box{}, false
	}
	found = false
	for row := rng.R1; row >= rng.R0 && !found; row-- {
		br, found = r.cellBox(row, rng.C1)
	}
	if !found || br.x1 <= tl.x0 || br.y1 <= tl.y0 {
		return box{}, false
	}
	return box{x0: tl.x0, y0: tl.y0, x1: br.x1, y1: br.y1}, true
}

// RowsIn returns the model rows of rng drawn inside its selection box, in
// display order. The box runs from the first displayed row at or after R0
// to the last displayed row at or before R1; with a sort active it can
// enclose rows outside R0..R1, which are left out.
func (r *Renderer) RowsIn(rng grid.Rect) []int {
	rng = rng.Normalize()
	l := r.ensureLayout()
	top, bottom := -1, -1
	for row := rng.R0; row <= rng.R1 && top < 0; row++ {
		if i, ok := l.display(row); ok {
			top = i
		}
	}
	for row := rng.R1; row >= rng.R0 && bottom < 0; row-- {
		if i, ok := l.display(row); ok {
			bottom = i
		}
	}
	if top < 0 || bottom < top {
		return nil
	}
	var rows []int
	for _, row := range l.rows[top : bottom+1] {
		if row >= rng.R0 && row <= rng.R1 {
			rows = append(rows, row)
		}
	}
	return rows
}

func (r *Renderer) rebuildOverlay() {
	r.frames.Cancel(frameOverlay)
	r.overlays++
	r.boxes = r.boxes[:0]
	for _, rng := range r.sel.AllRanges() {
		if b, ok := r.rangeBox(rng); ok {
			r.boxes = append(r.boxes, b)
		}
	}
}

// EnsureVisible scrolls the minimum amount to bring the active cell into
// view. The horizontal axis is left alone for whole-row selections and the
// vertical axis for whole-column selections.
func (r *Renderer) EnsureVisible() {
	active := r.sel.Active()
	cb, ok := r.cellBox(active.R, active.C)
	if !ok {
		return
	}
	bw, bh := r.bodySize()
	x, y := r.scrollX, r.scrollY
	if !r.sel.IsFullRows() {
		x = ensureSpan(x, bw, cb.x0, cb.x1)
	}
	if !r.sel.IsFullCols() {
		y = ensureSpan(y, bh, cb.y0, cb.y1)
	}
	r.ScrollTo(x, y)
}

func ensureSpan(offset, size, lo, hi int) int {
	switch {
	case lo < offset:
		return lo
	case hi > offset+size:
		return min(hi-size, lo)
	}
	return offset
}

// AutoFitWidth measures the width column c needs to show its title and up
// to 500 displayed values without truncation.
func (r *Renderer) AutoFitWidth(c int) int {
	w := displayWidth(r.headerLabel(c))
	for i, row := range r.ensureLayout().rows {
		if i >= 500 {
			break
		}
		w = max(w, displayWidth(r.model.Get(row, c)))
	}
	return grid.ClampColWidth(w + 2)
}

func (r *Renderer) headerLabel(c int) string {
	if c < len(r.headers) && r.headers[c] != "" {
		return r.headers[c]
	}
	return grid.ColLabel(c)
}

func (r *Renderer) buildBody() {
	l := r.ensureLayout()
	bw, bh := r.bodySize()
	r.bodyKey = bodyKey{gen: r.gen, scrollX: r.scrollX, scrollY: r.scrollY, w: bw, h: bh}
	cv := newCanvas(bw, bh)
	r.body = cv
	if bw == 0 || bh == 0 {
		return
	}

	base := r.theme.Cell.Style()
	baseIdx := cv.style(base)
	cv.fill(0, 0, bw, bh, baseIdx)
	lineIdx := cv.style(r.theme.Gridline.Style())
	styles := map[grid.Format]int{{}: baseIdx}

	c0 := max(l.colAt(r.scrollX), 0)
	for i := max(l.rowAt(r.scrollY), 0); i < len(l.rows) && l.rowY[i] < r.scrollY+bh; i++ {
		row := l.rows[i]
		y := l.rowY[i] - r.scrollY
		rh := l.rowY[i+1] - l.rowY[i]
		for c := c0; c < len(l.colX)-1 && l.colX[c] < r.scrollX+bw; c++ {
			x := l.colX[c] - r.scrollX
			cw := l.colX[c+1] - l.colX[c]
			f := r.model.Format(row, c)
			idx, ok := styles[f]
			if !ok {
				idx = cv.style(formatStyle(base, f))
				styles[f] = idx
			}
			cv.text(x, y, cw-1, fitWidth(r.model.Get(row, c), cw-1, string(f.Align)), idx)
			cv.fill(x, y+1, cw-1, rh-1, idx)
			for k := range rh {
				cv.text(x+cw-1, y+k, 1, "│", lineIdx)
			}
		}
	}
}

// View composes the frame: cells, overlay, editor, headers, scrollbars
// and popups.
func (r *Renderer) View() string {
	if r.width <= 0 || r.height <= 0 {
		return ""
	}
	r.ensureLayout()
	r.clampScroll()
	bw, bh := r.bodySize()
	if r.body == nil || r.bodyKey != (bodyKey{gen: r.gen, scrollX: r.scrollX, scrollY: r.scrollY, w: bw, h: bh}) {
		r.buildBody()
	}

	frame := newCanvas(r.width, r.height)
	frame.blit(rowHeaderWidth, colHeaderHeight, r.body)
	r.drawOverlay(frame)
	r.drawEditor(frame)
	frame.blit(rowHeaderWidth, 0, r.colHeaders(bw))
	frame.blit(0, colHeaderHeight, r.rowHeaders(bh))
	r.drawCorner(frame)
	r.drawScrollbars(frame, bw, bh)
	r.drawPopup(frame)
	r.drawMenu(frame)

	var mark func(id, s string) string
	if r.zones != nil {
		mark = r.zones.Mark
	}
	return frame.String(mark)
}

// toFrame converts content coordinates to frame coordinates.
func (r *Renderer) toFrame(x, y int) (int, int) {
	return x - r.scrollX + rowHeaderWidth, y - r.scrollY + colHeaderHeight
}

// clipBody intersects a frame rectangle with the body area.
func (r *Renderer) clipBody(x0, y0, x1, y1 int) (int, int, int, int) {
	bw, bh := r.bodySize()
	return max(x0, rowHeaderWidth), max(y0, colHeaderHeight),
		min(x1, rowHeaderWidth+bw), min(y1, colHeaderHeight+bh)
}

func (r *Renderer) drawOverlay(frame *canvas) {
	selIdx := frame.style(r.theme.Selection.Style())
	for _, b := range r.boxes {
		x0, y0 := r.toFrame(b.x0, b.y0)
		x1, y1 := r.toFrame(b.x1, b.y1)
		x0, y0, x1, y1 = r.clipBody(x0, y0, x1, y1)
		frame.restyle(x0, y0, x1-x0, y1-y0, func(old int) int { return frame.overlay(selIdx, old) })
	}
	active := r.sel.Active()
	if cb, ok := r.cellBox(active.R, active.C); ok {
		activeIdx := frame.style(r.theme.Active.Style())
		x0, y0 := r.toFrame(cb.x0, cb.y0)
		x1, y1 := r.toFrame(cb.x1-1, cb.y1)
		x0, y0, x1, y1 = r.clipBody(x0, y0, x1, y1)
		frame.restyle(x0, y0, x1-x0, y1-y0, func(old int) int { return frame.overlay(activeIdx, old) })
	}
}

// editorBox returns the frame position and width of the cell being
// edited, when it is visible.
func (r *Renderer) editorBox() (x, y, w int, ok bool) {
	if r.edit == nil {
		return 0, 0, 0, false
	}
	cell, editing := r.edit.EditingCell()
	if !editing {
		return 0, 0, 0, false
	}
	cb, found := r.cellBox(cell.R, cell.C)
	if !found {
		return 0, 0, 0, false
	}
	x, y = r.toFrame(cb.x0, cb.y0)
	w = cb.x1 - cb.x0 - 1
	bw, bh := r.bodySize()
	if x < rowHeaderWidth || y < colHeaderHeight || y >= colHeaderHeight+bh {
		return 0, 0, 0, false
	}
	w = min(w, rowHeaderWidth+bw-x)
	return x, y, w, w > 0
}

func (r *Renderer) drawEditor(frame *canvas) {
	x, y, w, ok := r.editorBox()
	if !ok {
		return
	}
	frame.raw(x, y, w, r.edit.CellView(w))
}

func (r *Renderer) colHeaders(bw int) *canvas {
	l := r.layout
	cv := newCanvas(bw, colHeaderHeight)
	hdr := cv.style(r.theme.Header.Style())
	hot := cv.style(r.theme.HeaderActive.Style())
	line := cv.style(r.theme.Gridline.Style().Inherit(r.theme.Header.Style()))
	cv.fill(0, 0, bw, colHeaderHeight, hdr)
	rng := r.sel.Range()
	for c := max(l.colAt(r.scrollX), 0); c < len(l.colX)-1 && l.colX[c] < r.scrollX+bw; c++ {
		x := l.colX[c] - r.scrollX
		cw := l.colX[c+1] - l.colX[c]
		style := hdr
		if c >= rng.C0 && c <= rng.C1 {
			style = hot
		}
		cv.text(x, 0, cw-1, fitWidth(r.headerLabel(c), cw-1, "center"), style)
		cv.text(x+cw-1, 0, 1, "│", line)
	}
	return cv
}

func (r *Renderer) rowHeaders(bh int) *canvas {
	l := r.layout
	cv := newCanvas(rowHeaderWidth, bh)
	hdr := cv.style(r.theme.Header.Style())
	hot := cv.style(r.theme.HeaderActive.Style())
	line := cv.style(r.theme.Gridline.Style().Inherit(r.theme.Header.Style()))
	cv.fill(0, 0, rowHeaderWidth, bh, hdr)
	rng := r.sel.Range()
	for i := max(l.rowAt(r.scrollY), 0); i < len(l.rows) && l.rowY[i] < r.scrollY+bh; i++ {
		row := l.rows[i]
		y := l.rowY[i] - r.scrollY
		style := hdr
		if row >= rng.R0 && row <= rng.R1 {
			style = hot
		}
		for k := range l.rowY[i+1] - l.rowY[i] {
			label := ""
			if k == 0 {
				label = strconv.Itoa(row + 1)
			}
			cv.text(0, y+k, rowHeaderWidth-1, fitWidth(label, rowHeaderWidth-2, "right")+" ", style)
			cv.text(rowHeaderWidth-1, y+k, 1, "│", line)
		}
	}
	return cv
}

func (r *Renderer) drawCorner(frame *canvas) {
	active := r.sel.Active()
	idx := frame.style(r.theme.Header.Style())
	frame.text(0, 0, rowHeaderWidth, fitWidth(grid.ToA1(active.R, active.C), rowHeaderWidth, "center"), idx)
}

func (r *Renderer) scrollbars(bw, bh int) (v, h scrollbar.Model) {
	opts := []scrollbar.Option{scrollbar.WithStyles(r.theme.ScrollbarThumb.Style(), r.theme.ScrollbarTrack.Style())}
	v = scrollbar.New(opts...)
	v.ContentSize, v.ViewportSize, v.Offset = r.layout.contentHeight(), bh, r.scrollY
	h = scrollbar.New(append(opts, scrollbar.WithOrientation(scrollbar.Horizontal))...)
	h.ContentSize, h.ViewportSize, h.Offset = r.layout.contentWidth(), bw, r.scrollX
	return v, h
}

func (r *Renderer) drawScrollbars(frame *canvas, bw, bh int) {
	v, h := r.scrollbars(bw, bh)
	for i, line := range strings.Split(v.View(), "\n") {
		frame.raw(r.width-1, colHeaderHeight+i, 1, line)
	}
	frame.raw(rowHeaderWidth, r.height-1, bw, h.View())
}
