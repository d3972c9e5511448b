package grid

import (
	"strings"
)

// ExportTSV serializes rng as tab/newline-delimited text: cells joined by
// tabs, rows joined by newlines, no trailing newline.
func (m *Model) ExportTSV(rng Rect) string {
	return FormatTSV(m.GetRange(rng.Normalize()))
}

// FormatTSV joins a value rectangle into tab/newline-delimited text.
func FormatTSV(values [][]string) string {
	var b strings.Builder
	for i, row := range values {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(strings.Join(row, "\t"))
	}
	return b.String()
}

// ParseTSV splits tab/newline-delimited text into a value rectangle. CRLF
// line endings are accepted and a single trailing newline is ignored, as
// spreadsheet applications append one when copying. Ragged rows are kept
// ragged; callers pad as needed.
func ParseTSV(text string) [][]string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	out := make([][]string, len(lines))
	for i, line := range lines {
		out[i] = strings.Split(line, "\t")
	}
	return out
}

// Shape returns the bounding row and column counts of a value rectangle.
func Shape(values [][]string) (rows, cols int) {
	for _, row := range values {
		cols = max(cols, len(row))
	}
	return len(values), cols
}

// ImportTSV writes parsed TSV text at (r, c), growing the grid as needed,
// and returns the range written. It bypasses history; editing paths go
// through history.SetCells instead.
func (m *Model) ImportTSV(r, c int, text string) Rect {
	values := ParseTSV(text)
	rows, cols := Shape(values)
	if rows == 0 || cols == 0 {
		return CellRect(r, c)
	}
	rng := Rect{R0: r, C0: c, R1: r + rows - 1, C1: c + cols - 1}
	m.SetRange(rng, values)
	return rng
}
