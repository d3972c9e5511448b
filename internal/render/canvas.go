package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// canvas is a width x height surface of styled terminal cells. Styles and
// zone ids are interned, so cells compare cheaply when emitting runs.
type canvas struct {
	width, height int
	cells         []canvasCell
	styles        []lipgloss.Style
	merged        map[[2]int]int
	zones         []string
}

type canvasCell struct {
	// ch is one grapheme; "" marks the trailing half of a wide character
	// or a cell covered by a raw span.
	ch    string
	style int
	zone  int
	// raw is a pre-rendered string covering rawW cells starting here.
	raw  string
	rawW int
}

func newCanvas(width, height int) *canvas {
	c := &canvas{
		width:  max(width, 0),
		height: max(height, 0),
		styles: []lipgloss.Style{lipgloss.NewStyle()},
		merged: make(map[[2]int]int),
		zones:  []string{""},
	}
	c.cells = make([]canvasCell, c.width*c.height)
	for i := range c.cells {
		c.cells[i].ch = " "
	}
	return c
}

func (c *canvas) inBounds(x, y int) bool {
	return x >= 0 && x < c.width && y >= 0 && y < c.height
}

func (c *canvas) at(x, y int) *canvasCell {
	return &c.cells[y*c.width+x]
}

// style interns s and returns its index.
func (c *canvas) style(s lipgloss.Style) int {
	c.styles = append(c.styles, s)
	return len(c.styles) - 1
}

// overlay returns the index of top layered over base: properties set on
// top win, the rest are inherited from base.
func (c *canvas) overlay(top, base int) int {
	if base == 0 {
		return top
	}
	key := [2]int{top, base}
	if idx, ok := c.merged[key]; ok {
		return idx
	}
	idx := c.style(c.styles[top].Inherit(c.styles[base]))
	c.merged[key] = idx
	return idx
}

// zone interns a zone id.
func (c *canvas) zone(id string) int {
	for i, z := range c.zones {
		if z == id {
			return i
		}
	}
	c.zones = append(c.zones, id)
	return len(c.zones) - 1
}

// fill paints a rectangle with blanks in style.
func (c *canvas) fill(x, y, w, h, style int) {
	for j := y; j < y+h; j++ {
		for i := x; i < x+w; i++ {
			if c.inBounds(i, j) {
				*c.at(i, j) = canvasCell{ch: " ", style: style}
			}
		}
	}
}

// text writes s at (x, y) clipped to width cells and padded with blanks.
// Wide characters that would straddle the limit become a blank.
func (c *canvas) text(x, y, width int, s string, style int) {
	col := 0
	var last *canvasCell
	for _, r := range sanitize(s) {
		rw := runewidth.RuneWidth(r)
		if rw == 0 {
			if last != nil {
				last.ch += string(r)
			}
			continue
		}
		if col+rw > width {
			break
		}
		if c.inBounds(x+col, y) {
			last = c.at(x+col, y)
			*last = canvasCell{ch: string(r), style: style}
		} else {
			last = nil
		}
		for k := 1; k < rw; k++ {
			if c.inBounds(x+col+k, y) {
				*c.at(x+col+k, y) = canvasCell{style: style}
			}
		}
		col += rw
	}
	for ; col < width; col++ {
		if c.inBounds(x+col, y) {
			*c.at(x+col, y) = canvasCell{ch: " ", style: style}
		}
	}
}

// raw places a pre-rendered string spanning width cells.
func (c *canvas) raw(x, y, width int, s string) {
	if width <= 0 || !c.inBounds(x, y) {
		return
	}
	width = min(width, c.width-x)
	*c.at(x, y) = canvasCell{raw: s, rawW: width}
	for k := 1; k < width; k++ {
		*c.at(x+k, y) = canvasCell{}
	}
}

// restyle replaces the style of every cell in the rectangle with fn(old).
func (c *canvas) restyle(x, y, w, h int, fn func(old int) int) {
	for j := max(y, 0); j < min(y+h, c.height); j++ {
		for i := max(x, 0); i < min(x+w, c.width); i++ {
			cell := c.at(i, j)
			if cell.rawW == 0 {
				cell.style = fn(cell.style)
			}
		}
	}
}

// mark tags the cells of a rectangle with a zone id.
func (c *canvas) mark(x, y, w, h int, id string) {
	z := c.zone(id)
	for j := max(y, 0); j < min(y+h, c.height); j++ {
		for i := max(x, 0); i < min(x+w, c.width); i++ {
			c.at(i, j).zone = z
		}
	}
}

// blit copies src into c at (x, y).
func (c *canvas) blit(x, y int, src *canvas) {
	styleMap := make([]int, len(src.styles))
	for i, s := range src.styles {
		if i == 0 {
			continue
		}
		styleMap[i] = c.style(s)
	}
	zoneMap := make([]int, len(src.zones))
	for i, z := range src.zones {
		if i > 0 {
			zoneMap[i] = c.zone(z)
		}
	}
	for j := range src.height {
		for i := range src.width {
			if !c.inBounds(x+i, y+j) {
				continue
			}
			cell := *src.at(i, j)
			cell.style = styleMap[cell.style]
			cell.zone = zoneMap[cell.zone]
			*c.at(x+i, y+j) = cell
		}
	}
}

// String renders the canvas. Runs of cells sharing a style and zone are
// rendered together; mark wraps zoned runs and may be nil.
func (c *canvas) String(mark func(id, s string) string) string {
	var b strings.Builder
	var run strings.Builder
	for y := range c.height {
		if y > 0 {
			b.WriteByte('\n')
		}
		runStyle, runZone := -1, 0
		flush := func() {
			if run.Len() == 0 {
				return
			}
			out := c.styles[runStyle].Render(run.String())
			if runZone != 0 && mark != nil {
				out = mark(c.zones[runZone], out)
			}
			b.WriteString(out)
			run.Reset()
		}
		for x := range c.width {
			cell := c.at(x, y)
			if cell.rawW > 0 {
				flush()
				runStyle = -1
				b.WriteString(cell.raw)
				continue
			}
			if cell.ch == "" {
				continue
			}
			if cell.style != runStyle || cell.zone != runZone {
				flush()
				runStyle, runZone = cell.style, cell.zone
			}
			run.WriteString(cell.ch)
		}
		flush()
	}
	return b.String()
}

// Plain renders the canvas without styles or zones, for tests and logs.
func (c *canvas) Plain() string {
	var b strings.Builder
	for y := range c.height {
		if y > 0 {
			b.WriteByte('\n')
		}
		for x := range c.width {
			cell := c.at(x, y)
			switch {
			case cell.rawW > 0:
				b.WriteString(strings.Repeat("▒", cell.rawW))
			default:
				b.WriteString(cell.ch)
			}
		}
	}
	return b.String()
}

// sanitize flattens control characters that would break the cell layout.
func sanitize(s string) string {
	if !strings.ContainsAny(s, "\t\r\n") {
		return s
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '\t', '\n':
			return ' '
		case '\r':
			return -1
		}
		return r
	}, s)
}

// fitWidth pads or truncates s to exactly width display cells, aligned.
func fitWidth(s string, width int, align string) string {
	s = sanitize(s)
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) > width {
		return runewidth.FillRight(runewidth.Truncate(s, width, "…"), width)
	}
	switch align {
	case "right":
		return runewidth.FillLeft(s, width)
	case "center":
		pad := width - runewidth.StringWidth(s)
		return runewidth.FillRight(strings.Repeat(" ", pad/2)+s, width)
	}
	return runewidth.FillRight(s, width)
}

func displayWidth(s string) int {
	return runewidth.StringWidth(sanitize(s))
}
