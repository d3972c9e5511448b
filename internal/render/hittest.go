package render

import "github.com/joeycumines/gridedit/internal/grid"

// TargetKind classifies what lies under a terminal position.
type TargetKind int

const (
	TargetNone TargetKind = iota
	TargetCell
	TargetColHeader
	TargetRowHeader
	TargetColResize
	TargetRowResize
	TargetCorner
	TargetVScroll
	TargetHScroll
)

var targetKindNames = [...]string{
	TargetNone:      "none",
	TargetCell:      "cell",
	TargetColHeader: "col-header",
	TargetRowHeader: "row-header",
	TargetColResize: "col-resize",
	TargetRowResize: "row-resize",
	TargetCorner:    "corner",
	TargetVScroll:   "v-scroll",
	TargetHScroll:   "h-scroll",
}

func (k TargetKind) String() string {
	if int(k) < len(targetKindNames) {
		return targetKindNames[k]
	}
	return "unknown"
}

// Target is the result of a hit test. Row is a model row. Pos is the
// offset along a scrollbar track.
type Target struct {
	Kind TargetKind
	Row  int
	Col  int
	Pos  int
}

// HitTest maps a position relative to the renderer's top-left corner to
// a target. The last column of each column header is that column's resize
// handle; the last column of the row header gutter is the row's.
func (r *Renderer) HitTest(x, y int) Target {
	l := r.ensureLayout()
	bw, bh := r.bodySize()
	if x < 0 || y < 0 || x >= r.width || y >= r.height {
		return Target{}
	}
	switch {
	case x == r.width-1 && y >= colHeaderHeight && y < colHeaderHeight+bh:
		return Target{Kind: TargetVScroll, Pos: y - colHeaderHeight}
	case y == r.height-1 && x >= rowHeaderWidth && x < rowHeaderWidth+bw:
		return Target{Kind: TargetHScroll, Pos: x - rowHeaderWidth}
	case x >= rowHeaderWidth+bw || y >= colHeaderHeight+bh:
		return Target{}
	case x < rowHeaderWidth && y < colHeaderHeight:
		return Target{Kind: TargetCorner}
	case y < colHeaderHeight:
		cx := x - rowHeaderWidth + r.scrollX
		c := l.colAt(cx)
		if c < 0 {
			return Target{}
		}
		if cx == l.colX[c+1]-1 {
			return Target{Kind: TargetColResize, Col: c}
		}
		return Target{Kind: TargetColHeader, Col: c}
	case x < rowHeaderWidth:
		i := l.rowAt(y - colHeaderHeight + r.scrollY)
		if i < 0 {
			return Target{}
		}
		if x == rowHeaderWidth-1 {
			return Target{Kind: TargetRowResize, Row: l.rows[i]}
		}
		return Target{Kind: TargetRowHeader, Row: l.rows[i]}
	}
	c := l.colAt(x - rowHeaderWidth + r.scrollX)
	i := l.rowAt(y - colHeaderHeight + r.scrollY)
	if c < 0 || i < 0 {
		return Target{}
	}
	return Target{Kind: TargetCell, Row: l.rows[i], Col: c}
}

// CellNear returns the displayed cell nearest to a position, clamping
// positions outside the body. It is used while dragging past the edges.
// ok is false when nothing is displayed.
func (r *Renderer) CellNear(x, y int) (cell grid.Cell, ok bool) {
	l := r.ensureLayout()
	if len(l.rows) == 0 || len(l.colX) < 2 {
		return grid.Cell{}, false
	}
	bw, bh := r.bodySize()
	cx := min(max(x-rowHeaderWidth, 0), max(bw-1, 0)) + r.scrollX
	cy := min(max(y-colHeaderHeight, 0), max(bh-1, 0)) + r.scrollY
	cx = min(cx, l.contentWidth()-1)
	cy = min(cy, l.contentHeight()-1)
	return grid.Cell{R: l.rows[l.rowAt(cy)], C: l.colAt(cx)}, true
}

// EdgeDistance reports how far a position lies outside the body along
// each axis, negative before and positive after, zero inside. Within
// margin cells of an edge the distance is reported as one step, so
// dragging near the edge scrolls.
func (r *Renderer) EdgeDistance(x, y, margin int) (dx, dy int) {
	bw, bh := r.bodySize()
	dx = edge(x-rowHeaderWidth, bw, margin)
	dy = edge(y-colHeaderHeight, bh, margin)
	return dx, dy
}

func edge(v, size, margin int) int {
	switch {
	case v < 0:
		return v - 1
	case v < margin:
		return -1
	case v >= size:
		return v - size + 1
	case v >= size-margin:
		return 1
	}
	return 0
}

// BodyOrigin returns the frame position of the top-left body cell.
func (r *Renderer) BodyOrigin() (x, y int) { return rowHeaderWidth, colHeaderHeight }

// ColumnX returns the frame x of column c's left edge, for resize drags.
func (r *Renderer) ColumnX(c int) (int, bool) {
	l := r.ensureLayout()
	if c < 0 || c >= len(l.colX)-1 {
		return 0, false
	}
	return l.colX[c] - r.scrollX + rowHeaderWidth, true
}

// RowY returns the frame y of model row row's top edge, for resize drags.
func (r *Renderer) RowY(row int) (int, bool) {
	l := r.ensureLayout()
	i, ok := l.display(row)
	if !ok {
		return 0, false
	}
	return l.rowY[i] - r.scrollY + colHeaderHeight, true
}

// Unscale converts a display extent to model units at the current zoom.
func (r *Renderer) Unscale(v int) int {
	return int(float64(v)/r.zoom + 0.5)
}

// VScrollOffset and HScrollOffset map a scrollbar track position to a
// scroll offset.
func (r *Renderer) VScrollOffset(pos int) int {
	r.ensureLayout()
	v, _ := r.scrollbars(r.bodySize())
	return v.OffsetAt(pos)
}

func (r *Renderer) HScrollOffset(pos int) int {
	r.ensureLayout()
	_, h := r.scrollbars(r.bodySize())
	return h.OffsetAt(pos)
}
