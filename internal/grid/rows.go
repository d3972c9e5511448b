package grid

import (
	"slices"
)

// RowView is a display of the model that may hide and reorder rows.
type RowView interface {
	// RowIndexList returns the displayed model rows in display order, or
	// nil when every row is shown in model order.
	RowIndexList() []int
	// RowsIn returns the model rows of rng that are shown inside its
	// selection box, in display order.
	RowsIn(rng Rect) []int
}

// RowsIn returns the model rows an edit of rng applies to. Without a view,
// or with a view showing every row in order, that is R0 to R1 clamped to
// the model.
func (m *Model) RowsIn(v RowView, rng Rect) []int {
	rng = rng.Normalize()
	if v != nil && v.RowIndexList() != nil {
		return slices.DeleteFunc(v.RowsIn(rng), func(r int) bool { return r < 0 || r >= m.Rows() })
	}
	r0, r1 := max(rng.R0, 0), min(rng.R1, m.Rows()-1)
	rows := make([]int, 0, max(r1-r0+1, 0))
	for r := r0; r <= r1; r++ {
		rows = append(rows, r)
	}
	return rows
}

// RowRuns groups rows into runs of consecutive model rows, in ascending
// order, each spanning the columns of rng.
func RowRuns(rng Rect, rows []int) []Rect {
	rng = rng.Normalize()
	sorted := slices.Compact(slices.Sorted(slices.Values(rows)))
	var runs []Rect
	for i, r := range sorted {
		if i > 0 && r == sorted[i-1]+1 {
			runs[len(runs)-1].R1 = r
			continue
		}
		runs = append(runs, Rect{R0: r, C0: rng.C0, R1: r, C1: rng.C1})
	}
	return runs
}

// RowValues returns the values of columns c0 to c1 of each row, in the
// order given.
func (m *Model) RowValues(rows []int, c0, c1 int) [][]string {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		var values []string
		if got := m.GetRange(Rect{R0: r, C0: c0, R1: r, C1: c1}); len(got) > 0 {
			values = got[0]
		}
		out = append(out, values)
	}
	return out
}
