package grid

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Cell addresses a single cell by zero-based row and column.
type Cell struct {
	R int `json:"r" yaml:"r"`
	C int `json:"c" yaml:"c"`
}

// Rect is an inclusive rectangular range of cells. A normalized Rect has
// R0 <= R1 and C0 <= C1.
type Rect struct {
	R0 int `json:"r0" yaml:"r0"`
	C0 int `json:"c0" yaml:"c0"`
	R1 int `json:"r1" yaml:"r1"`
	C1 int `json:"c1" yaml:"c1"`
}

// CellRect returns the single-cell range at (r, c).
func CellRect(r, c int) Rect {
	return Rect{R0: r, C0: c, R1: r, C1: c}
}

// Span returns the normalized range spanning two corner cells.
func Span(a, b Cell) Rect {
	return Rect{R0: a.R, C0: a.C, R1: b.R, C1: b.C}.Normalize()
}

// Normalize orders the corners so that the start is <= the end on both axes.
func (r Rect) Normalize() Rect {
	return Rect{
		R0: min(r.R0, r.R1),
		C0: min(r.C0, r.C1),
		R1: max(r.R0, r.R1),
		C1: max(r.C0, r.C1),
	}
}

// Clamp restricts every corner to a rows x cols grid. The result always
// addresses at least cell (0, 0), even for an empty grid.
func (r Rect) Clamp(rows, cols int) Rect {
	return Rect{
		R0: clampIndex(r.R0, rows),
		C0: clampIndex(r.C0, cols),
		R1: clampIndex(r.R1, rows),
		C1: clampIndex(r.C1, cols),
	}
}

// Size returns the number of rows and columns covered.
func (r Rect) Size() (rows, cols int) {
	return r.R1 - r.R0 + 1, r.C1 - r.C0 + 1
}

// IsSingle reports whether the range covers exactly one cell.
func (r Rect) IsSingle() bool {
	return r.R0 == r.R1 && r.C0 == r.C1
}

// Contains reports whether (row, col) lies inside the range.
func (r Rect) Contains(row, col int) bool {
	return row >= r.R0 && row <= r.R1 && col >= r.C0 && col <= r.C1
}

// ForEach calls fn for every cell, row-major.
func (r Rect) ForEach(fn func(row, col int)) {
	for row := r.R0; row <= r.R1; row++ {
		for col := r.C0; col <= r.C1; col++ {
			fn(row, col)
		}
	}
}

// String renders the range in A1 notation, e.g. "B2:D4" or "C3".
func (r Rect) String() string {
	if r.IsSingle() {
		return ToA1(r.R0, r.C0)
	}
	return ToA1(r.R0, r.C0) + ":" + ToA1(r.R1, r.C1)
}

func clampIndex(v, n int) int {
	if v >= n {
		v = n - 1
	}
	if v < 0 {
		v = 0
	}
	return v
}

// ColLabel converts a zero-based column index to its letter label
// (0 -> "A", 25 -> "Z", 26 -> "AA").
func ColLabel(n int) string {
	if n < 0 {
		return ""
	}
	var b []byte
	for {
		b = append(b, byte('A'+n%26))
		n = n/26 - 1
		if n < 0 {
			break
		}
	}
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return string(b)
}

// LabelToCol converts a letter label to a zero-based column index. It
// returns -1 for labels containing anything other than ASCII letters.
func LabelToCol(label string) int {
	if label == "" {
		return -1
	}
	n := 0
	for _, ch := range strings.ToUpper(label) {
		if ch < 'A' || ch > 'Z' {
			return -1
		}
		n = n*26 + int(ch-'A'+1)
	}
	return n - 1
}

// ToA1 formats a cell address in A1 notation.
func ToA1(r, c int) string {
	return ColLabel(c) + strconv.Itoa(r+1)
}

var a1Pattern = regexp.MustCompile(`^([A-Za-z]+)(\d+)(?::([A-Za-z]+)(\d+))?$`)

// ParseA1 parses "B3" or "B3:D7" into a normalized Rect.
func ParseA1(s string) (Rect, error) {
	m := a1Pattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return Rect{}, fmt.Errorf("invalid A1 reference %q", s)
	}
	c0 := LabelToCol(m[1])
	r0, err := strconv.Atoi(m[2])
	if err != nil || r0 < 1 {
		return Rect{}, fmt.Errorf("invalid A1 row in %q", s)
	}
	c1, r1 := c0, r0
	if m[3] != "" {
		c1 = LabelToCol(m[3])
		if r1, err = strconv.Atoi(m[4]); err != nil || r1 < 1 {
			return Rect{}, fmt.Errorf("invalid A1 row in %q", s)
		}
	}
	return Rect{R0: r0 - 1, C0: c0, R1: r1 - 1, C1: c1}.Normalize(), nil
}
