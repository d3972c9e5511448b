// Package grid implements the in-memory spreadsheet data model: a matrix of
// text values, sparse per-cell formatting and row/column sizing.
//
// Reads are bounds-clamped and never fail; writes beyond the current bounds
// grow the grid. The matrix never shrinks on its own, only through
// DeleteRows/DeleteCols.
package grid

const (
	DefaultRows = 100
	DefaultCols = 26

	// Row heights are terminal lines, column widths are characters.
	DefaultRowHeight = 1
	MinRowHeight     = 1
	MaxRowHeight     = 10
	DefaultColWidth  = 10
	MinColWidth      = 3
	MaxColWidth      = 120
)

// Model owns cell values, formatting and sizing. It must only be mutated
// through history commands; see package history.
type Model struct {
	data       [][]string
	fmt        formatIndex
	rowHeights []int
	colWidths  []int
	cols       int
}

// New allocates a rows x cols grid of blank cells.
func New(rows, cols int) *Model {
	m := &Model{fmt: make(formatIndex)}
	m.EnsureSize(rows, cols)
	return m
}

// Rows returns the current row count.
func (m *Model) Rows() int { return len(m.data) }

// Cols returns the current column count.
func (m *Model) Cols() int { return m.cols }

// Bounds returns the range covering the whole grid.
func (m *Model) Bounds() Rect {
	return Rect{R1: max(m.Rows()-1, 0), C1: max(m.cols-1, 0)}
}

// EnsureSize grows the grid to at least minRows x minCols.
func (m *Model) EnsureSize(minRows, minCols int) {
	if minCols > m.cols {
		add := minCols - m.cols
		for r := range m.data {
			m.data[r] = append(m.data[r], make([]string, add)...)
		}
		for range add {
			m.colWidths = append(m.colWidths, DefaultColWidth)
		}
		m.cols = minCols
	}
	for len(m.data) < minRows {
		m.data = append(m.data, make([]string, m.cols))
		m.rowHeights = append(m.rowHeights, DefaultRowHeight)
	}
}

// Get returns the value at (r, c), or "" when out of range.
func (m *Model) Get(r, c int) string {
	if r < 0 || c < 0 || r >= len(m.data) || c >= m.cols {
		return ""
	}
	return m.data[r][c]
}

// Set writes a value, growing the grid when needed. Negative coordinates
// are ignored.
func (m *Model) Set(r, c int, v string) {
	if r < 0 || c < 0 {
		return
	}
	m.EnsureSize(r+1, c+1)
	m.data[r][c] = v
}

// GetRange returns a copy of the values covered by rng.
func (m *Model) GetRange(rng Rect) [][]string {
	rows, cols := rng.Size()
	if rows <= 0 || cols <= 0 {
		return nil
	}
	out := make([][]string, rows)
	for i := range out {
		out[i] = make([]string, cols)
		for j := range out[i] {
			out[i][j] = m.Get(rng.R0+i, rng.C0+j)
		}
	}
	return out
}

// SetRange writes values into rng. Missing rows or cells in values are
// written as blanks, so a smaller rectangle clears the remainder of rng.
func (m *Model) SetRange(rng Rect, values [][]string) {
	rows, cols := rng.Size()
	if rows <= 0 || cols <= 0 || rng.R0 < 0 || rng.C0 < 0 {
		return
	}
	m.EnsureSize(rng.R1+1, rng.C1+1)
	for i := range rows {
		var src []string
		if i < len(values) {
			src = values[i]
		}
		dst := m.data[rng.R0+i]
		for j := range cols {
			v := ""
			if j < len(src) {
				v = src[j]
			}
			dst[rng.C0+j] = v
		}
	}
}

// ClearRange blanks every cell in rng.
func (m *Model) ClearRange(rng Rect) {
	m.SetRange(rng, nil)
}

// Format returns the formatting of (r, c); the zero Format when none.
func (m *Model) Format(r, c int) Format {
	return m.fmt.get(r, c)
}

// SetFormat replaces the formatting of one cell. A zero Format removes it.
func (m *Model) SetFormat(r, c int, f Format) {
	m.fmt.set(r, c, f)
}

// SetFormatRange applies patch to every cell of rng. Records that end up
// empty are removed.
func (m *Model) SetFormatRange(rng Rect, patch Patch) {
	rng.ForEach(func(r, c int) {
		m.fmt.set(r, c, patch.Apply(m.fmt.get(r, c)))
	})
}

// FormatsIn snapshots the formatting present inside rng.
func (m *Model) FormatsIn(rng Rect) []FormatEntry {
	var out []FormatEntry
	rng.ForEach(func(r, c int) {
		if f := m.fmt.get(r, c); !f.IsZero() {
			out = append(out, FormatEntry{Cell: Cell{R: r, C: c}, Format: f})
		}
	})
	return out
}

// RestoreFormats clears formatting inside rng and reapplies snapshot.
func (m *Model) RestoreFormats(rng Rect, snapshot []FormatEntry) {
	rng.ForEach(func(r, c int) { m.fmt.del(r, c) })
	for _, e := range snapshot {
		m.fmt.set(e.R, e.C, e.Format)
	}
}

// FormatCount returns the number of formatted cells.
func (m *Model) FormatCount() int {
	return m.fmt.count()
}

// InsertRows inserts count blank rows so that they occupy [at, at+count).
// Rows and formatting previously at index >= at move down by count.
func (m *Model) InsertRows(at, count int) {
	if count <= 0 {
		return
	}
	at = min(max(at, 0), len(m.data))
	blank := make([][]string, count)
	heights := make([]int, count)
	for i := range blank {
		blank[i] = make([]string, m.cols)
		heights[i] = DefaultRowHeight
	}
	m.data = insertAt(m.data, at, blank)
	m.rowHeights = insertAt(m.rowHeights, at, heights)
	m.fmt.shiftRows(at, count)
}

// DeleteRows removes rows r0..r1 inclusive. Formatting on deleted rows is
// dropped and later rows shift up.
func (m *Model) DeleteRows(r0, r1 int) {
	r0, r1 = max(min(r0, r1), 0), min(max(r0, r1), len(m.data)-1)
	if r0 > r1 {
		return
	}
	count := r1 - r0 + 1
	m.data = append(m.data[:r0], m.data[r1+1:]...)
	m.rowHeights = append(m.rowHeights[:r0], m.rowHeights[r1+1:]...)
	m.fmt.shiftRows(r0, -count)
}

// InsertCols inserts count blank columns occupying [at, at+count).
func (m *Model) InsertCols(at, count int) {
	if count <= 0 {
		return
	}
	at = min(max(at, 0), m.cols)
	for r := range m.data {
		m.data[r] = insertAt(m.data[r], at, make([]string, count))
	}
	widths := make([]int, count)
	for i := range widths {
		widths[i] = DefaultColWidth
	}
	m.colWidths = insertAt(m.colWidths, at, widths)
	m.cols += count
	m.fmt.shiftCols(at, count)
}

// DeleteCols removes columns c0..c1 inclusive.
func (m *Model) DeleteCols(c0, c1 int) {
	c0, c1 = max(min(c0, c1), 0), min(max(c0, c1), m.cols-1)
	if c0 > c1 {
		return
	}
	count := c1 - c0 + 1
	for r := range m.data {
		m.data[r] = append(m.data[r][:c0], m.data[r][c1+1:]...)
	}
	m.colWidths = append(m.colWidths[:c0], m.colWidths[c1+1:]...)
	m.cols -= count
	m.fmt.shiftCols(c0, -count)
}

// ColWidth returns the width of column c, or DefaultColWidth out of range.
func (m *Model) ColWidth(c int) int {
	if c < 0 || c >= len(m.colWidths) {
		return DefaultColWidth
	}
	return m.colWidths[c]
}

// RowHeight returns the height of row r, or DefaultRowHeight out of range.
func (m *Model) RowHeight(r int) int {
	if r < 0 || r >= len(m.rowHeights) {
		return DefaultRowHeight
	}
	return m.rowHeights[r]
}

// SetColWidth sets a column width clamped to [MinColWidth, MaxColWidth].
func (m *Model) SetColWidth(c, w int) {
	if c < 0 {
		return
	}
	m.EnsureSize(0, c+1)
	m.colWidths[c] = ClampColWidth(w)
}

// SetRowHeight sets a row height clamped to [MinRowHeight, MaxRowHeight].
func (m *Model) SetRowHeight(r, h int) {
	if r < 0 {
		return
	}
	m.EnsureSize(r+1, 0)
	m.rowHeights[r] = ClampRowHeight(h)
}

// ClampColWidth clamps w to the allowed column width range.
func ClampColWidth(w int) int { return min(max(w, MinColWidth), MaxColWidth) }

// ClampRowHeight clamps h to the allowed row height range.
func ClampRowHeight(h int) int { return min(max(h, MinRowHeight), MaxRowHeight) }

func insertAt[T any](s []T, at int, items []T) []T {
	out := make([]T, 0, len(s)+len(items))
	out = append(out, s[:at]...)
	out = append(out, items...)
	return append(out, s[at:]...)
}
