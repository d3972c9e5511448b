package render

import (
	"math"
	"slices"
	"sort"
)

const (
	// rowHeaderWidth is the fixed width of the row number gutter. Its last
	// column is the row resize handle.
	rowHeaderWidth = 6
	// colHeaderHeight is the fixed height of the column label strip.
	colHeaderHeight = 1

	MinZoom = 0.5
	MaxZoom = 3.0
)

// layout is the display geometry of the grid in content coordinates,
// where (0, 0) is the top-left of the first column of the first displayed
// row. Headers and scrollbars sit outside the content.
type layout struct {
	colX []int // len cols+1
	rowY []int // len len(rows)+1
	rows []int // displayed model rows, in display order
	pos  map[int]int
}

func (l *layout) contentWidth() int  { return l.colX[len(l.colX)-1] }
func (l *layout) contentHeight() int { return l.rowY[len(l.rowY)-1] }

// display returns the display index of model row r.
func (l *layout) display(r int) (int, bool) {
	i, ok := l.pos[r]
	return i, ok
}

// colAt returns the column containing content x, or -1.
func (l *layout) colAt(x int) int {
	if x < 0 || x >= l.contentWidth() {
		return -1
	}
	return sort.SearchInts(l.colX, x+1) - 1
}

// rowAt returns the display index containing content y, or -1.
func (l *layout) rowAt(y int) int {
	if y < 0 || y >= l.contentHeight() {
		return -1
	}
	return sort.SearchInts(l.rowY, y+1) - 1
}

func scaled(v int, zoom float64, floor int) int {
	return max(floor, int(math.Round(float64(v)*zoom)))
}

func clampZoom(z float64) float64 {
	if math.IsNaN(z) || z <= 0 {
		return 1
	}
	return min(max(z, MinZoom), MaxZoom)
}

// computeLayout measures the model. A nil rowList displays every row.
func (r *Renderer) computeLayout() *layout {
	cols := r.model.Cols()
	l := &layout{colX: make([]int, cols+1)}
	for c := range cols {
		l.colX[c+1] = l.colX[c] + scaled(r.model.ColWidth(c), r.zoom, 2)
	}

	if r.rowList != nil {
		l.rows = slices.Clone(r.rowList)
	} else {
		l.rows = make([]int, r.model.Rows())
		for i := range l.rows {
			l.rows[i] = i
		}
	}
	l.pos = make(map[int]int, len(l.rows))
	l.rowY = make([]int, len(l.rows)+1)
	for i, row := range l.rows {
		if _, dup := l.pos[row]; !dup {
			l.pos[row] = i
		}
		l.rowY[i+1] = l.rowY[i] + scaled(r.model.RowHeight(row), r.zoom, 1)
	}
	return l
}
