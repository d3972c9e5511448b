package actions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeycumines/gridedit/internal/grid"
)

func newPeopleFixture(t *testing.T) *fixture {
	t.Helper()
	f := newFixture(t, 10, 3)
	f.renderer.SetHeaders([]string{"Name", "City"})
	f.model.SetRange(grid.Rect{R1: 2, C1: 2}, [][]string{
		{"Nguyễn", "Hà Nội", "x"},
		{"Trần", "Huế", "ha"},
		{"Lê", "Hà Nam", ""},
	})
	return f
}

func TestFold(t *testing.T) {
	for in, want := range map[string]string{
		"  Hà Nội ": "ha noi",
		"ĐÀ NẴNG":   "da nang",
		"":          "",
	} {
		assert.Equal(t, want, fold(in), "%q", in)
	}
}

func TestViewFilter_Query(t *testing.T) {
	f := newPeopleFixture(t)
	f.sel.SetActive(1, 1)

	n := f.act(t, "view.filter", "HA")
	assert.Equal(t, 2, n, "untitled third column is not scanned")
	assert.Equal(t, []int{0, 2}, f.renderer.RowIndexList())
	assert.Equal(t, grid.Cell{R: 0, C: 1}, f.sel.Active())
	f.queue.Drain()
	assert.Equal(t, 1, f.events)
	assert.Equal(t, []string{"Filter: 2/10 rows"}, f.status)

	f.act(t, "view.filter", map[string]any{"col": 2, "query": "ha"})
	assert.Equal(t, []int{1}, f.renderer.RowIndexList())

	f.act(t, "view.filter", "")
	assert.Nil(t, f.renderer.RowIndexList())
	assert.False(t, f.a.Filter().Active())
}

func TestViewFilter_Expr(t *testing.T) {
	f := newPeopleFixture(t)

	f.act(t, "view.filter", FilterRequest{Col: -1, Expr: `A == "Lê" || has(B, "hue")`})
	assert.Equal(t, []int{1, 2}, f.renderer.RowIndexList())

	f.act(t, "view.filter", FilterRequest{Col: -1, Expr: `header["City"] != "" && row > 0`, Query: "nam"})
	assert.Equal(t, []int{2}, f.renderer.RowIndexList())

	_, err := f.bus.Act("view.filter", map[string]any{"expr": "A =="})
	require.Error(t, err)
	assert.Equal(t, []int{2}, f.renderer.RowIndexList(), "failed filter keeps the previous one")
	assert.Equal(t, "nam", f.a.Filter().Query)
}

func TestViewSort(t *testing.T) {
	f := newFixture(t, 6, 2)
	f.renderer.SetHeaders([]string{"Name"})
	for r, v := range []string{"b", "á", "", "c", "", "A"} {
		f.model.Set(r, 0, v)
	}
	f.sel.SetActive(3, 0)

	assert.Equal(t, 0, f.act(t, "view.sort", nil))
	assert.Equal(t, []int{1, 5, 0, 3, 2, 4}, f.renderer.RowIndexList())
	assert.Equal(t, grid.Cell{R: 1, C: 0}, f.sel.Active())

	assert.Equal(t, 2, f.act(t, "view.sort", SortRequest{Col: 0, Desc: true}))
	assert.Equal(t, []int{3, 0, 1, 5}, f.renderer.RowIndexList())
	f.queue.Drain()
	assert.Equal(t, `Sorted Z→A by "Name" (2 empty rows hidden)`, f.status[len(f.status)-1])

	_, err := f.bus.Act("view.sort", SortRequest{Col: 9})
	assert.ErrorIs(t, err, ErrInvalidPayload)

	f.act(t, "view.clear", nil)
	assert.Nil(t, f.renderer.RowIndexList())
	_, sorted := f.a.Sort()
	assert.False(t, sorted)
}

func TestViewSort_KeepsFilter(t *testing.T) {
	f := newPeopleFixture(t)
	f.act(t, "view.filter", "ha")
	f.act(t, "view.sort", map[string]any{"col": 1, "desc": true})
	assert.Equal(t, []int{0, 2}, f.renderer.RowIndexList())
	req, ok := f.a.Sort()
	require.True(t, ok)
	assert.Equal(t, SortRequest{Col: 1, Desc: true}, req)
}

func TestStructuralEdit_RefreshesView(t *testing.T) {
	f := newPeopleFixture(t)
	f.act(t, "view.filter", "ha")
	require.Equal(t, []int{0, 2}, f.renderer.RowIndexList())

	f.sel.SetActive(0, 0)
	f.act(t, "row.delete", nil)
	assert.Equal(t, []int{1}, f.renderer.RowIndexList())

	f.hist.Undo()
	assert.Equal(t, []int{0, 2}, f.renderer.RowIndexList())
}

// newSortedFixture shows a five row column sorted A→Z: a b c d e, stored as
// e a c b d.
func newSortedFixture(t *testing.T) *fixture {
	t.Helper()
	f := newFixture(t, 5, 2)
	f.renderer.SetHeaders([]string{"Name"})
	for r, v := range []string{"e", "a", "c", "b", "d"} {
		f.model.Set(r, 0, v)
	}
	f.act(t, "view.sort", SortRequest{Col: 0})
	require.Equal(t, []int{1, 3, 2, 4, 0}, f.renderer.RowIndexList())
	return f
}

func column(m *grid.Model, c int) []string {
	var out []string
	for r := range m.Rows() {
		out = append(out, m.Get(r, c))
	}
	return out
}

func TestRowDelete_SortedDeletesShownRows(t *testing.T) {
	f := newSortedFixture(t)
	f.sel.SetActive(1, 0)
	f.sel.ExtendTo(3, 0)
	require.Equal(t, []int{1, 3}, f.renderer.RowsIn(f.sel.Range()))

	assert.Equal(t, true, f.act(t, "row.delete", nil))
	assert.Equal(t, []string{"e", "c", "d"}, column(f.model, 0))
	assert.Equal(t, 1, f.hist.UndoDepth())

	require.True(t, f.hist.Undo())
	assert.Equal(t, []string{"e", "a", "c", "b", "d"}, column(f.model, 0))
}

func TestCellsClear_SortedClearsShownRows(t *testing.T) {
	f := newSortedFixture(t)
	f.sel.SetActive(1, 0)
	f.sel.ExtendTo(3, 0)

	f.act(t, "cells.clear", nil)
	assert.Equal(t, []string{"e", "", "c", "", "d"}, column(f.model, 0))
	f.hist.Undo()
	assert.Equal(t, []string{"e", "a", "c", "b", "d"}, column(f.model, 0))

	assert.Equal(t, "a\nb", f.act(t, "clipboard.copy", nil))
}

func TestFormatBold_SortedShownRowsOnly(t *testing.T) {
	f := newSortedFixture(t)
	f.sel.SetActive(1, 0)
	f.sel.ExtendTo(3, 0)
	f.act(t, "format.bold", nil)
	var bold []bool
	for r := range 5 {
		bold = append(bold, f.model.Format(r, 0).Bold)
	}
	assert.Equal(t, []bool{false, true, false, true, false}, bold)
}

func TestFillDown_SortedFollowsScreenOrder(t *testing.T) {
	f := newSortedFixture(t)
	f.model.Set(1, 1, "top")

	f.sel.SetActive(1, 1)
	f.sel.ExtendTo(3, 1)
	assert.Equal(t, true, f.act(t, "fill.down", nil))
	assert.Equal(t, []string{"", "top", "", "top", ""}, column(f.model, 1))

	f.sel.SetActive(2, 1)
	assert.Equal(t, true, f.act(t, "fill.down", nil))
	assert.Equal(t, "top", f.model.Get(2, 1), "c takes the value of b shown above it")

	f.sel.SetActive(1, 1)
	assert.Equal(t, false, f.act(t, "fill.down", nil), "nothing shown above a")
}
