package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRect_Normalize(t *testing.T) {
	got := Rect{R0: 3, C0: 3, R1: 1, C1: 1}.Normalize()
	assert.Equal(t, Rect{R0: 1, C0: 1, R1: 3, C1: 3}, got)
	assert.Equal(t, got, Span(Cell{R: 1, C: 3}, Cell{R: 3, C: 1}))
}

func TestRect_Clamp(t *testing.T) {
	assert.Equal(t, Rect{R0: 0, C0: 0, R1: 4, C1: 2}, Rect{R0: -2, C0: -1, R1: 10, C1: 9}.Clamp(5, 3))
	assert.Equal(t, Rect{}, Rect{R0: 3, C0: 3, R1: 5, C1: 5}.Clamp(0, 0))
}

func TestRect_SizeContains(t *testing.T) {
	r := Rect{R0: 1, C0: 2, R1: 3, C1: 2}
	rows, cols := r.Size()
	assert.Equal(t, 3, rows)
	assert.Equal(t, 1, cols)
	assert.True(t, r.Contains(2, 2))
	assert.False(t, r.Contains(2, 3))
	assert.False(t, r.IsSingle())
	assert.True(t, CellRect(4, 4).IsSingle())

	var visited []Cell
	r.ForEach(func(row, col int) { visited = append(visited, Cell{R: row, C: col}) })
	assert.Equal(t, []Cell{{1, 2}, {2, 2}, {3, 2}}, visited)
}

func TestColLabel(t *testing.T) {
	for _, tc := range []struct {
		n     int
		label string
	}{
		{0, "A"}, {25, "Z"}, {26, "AA"}, {27, "AB"}, {51, "AZ"}, {52, "BA"}, {701, "ZZ"}, {702, "AAA"},
	} {
		assert.Equal(t, tc.label, ColLabel(tc.n))
		assert.Equal(t, tc.n, LabelToCol(tc.label))
	}
	assert.Equal(t, "", ColLabel(-1))
	assert.Equal(t, -1, LabelToCol("A1"))
	assert.Equal(t, -1, LabelToCol(""))
	assert.Equal(t, 27, LabelToCol("ab"))
}

func TestParseA1(t *testing.T) {
	r, err := ParseA1("B3")
	require.NoError(t, err)
	assert.Equal(t, CellRect(2, 1), r)

	r, err = ParseA1(" D7:b3 ")
	require.NoError(t, err)
	assert.Equal(t, Rect{R0: 2, C0: 1, R1: 6, C1: 3}, r)
	assert.Equal(t, "B3:D7", r.String())

	for _, bad := range []string{"", "3B", "A0", "A1:", "A1:B"} {
		_, err := ParseA1(bad)
		assert.Error(t, err, bad)
	}
}
