// Package history implements reversible grid edits and the undo/redo
// manager that executes them.
//
// Every command is a plain-data value: it captures the state it needs to
// undo itself when constructed, and Do/Undo are functions of that payload
// and the model alone. Commands therefore serialize cleanly for the debug
// journal.
package history

import (
	"github.com/joeycumines/gridedit/internal/grid"
)

// Command is a reversible grid edit.
type Command interface {
	Name() string
	Do(m *grid.Model)
	Undo(m *grid.Model)
}

// SetCells writes a value rectangle. Values smaller than Range are padded
// with blanks.
type SetCells struct {
	Label  string     `yaml:"label,omitempty"`
	Range  grid.Rect  `yaml:"range"`
	Before [][]string `yaml:"before"`
	After  [][]string `yaml:"after"`
}

// NewSetCells captures the current contents of rng and returns a command
// that replaces them with values.
func NewSetCells(m *grid.Model, rng grid.Rect, values [][]string) *SetCells {
	rng = rng.Normalize()
	return &SetCells{Range: rng, Before: m.GetRange(rng), After: values}
}

// NewFillRange returns a SetCells command writing v into every cell of rng.
func NewFillRange(m *grid.Model, rng grid.Rect, v string) *SetCells {
	rng = rng.Normalize()
	rows, cols := rng.Size()
	values := make([][]string, rows)
	for i := range values {
		values[i] = make([]string, cols)
		for j := range values[i] {
			values[i][j] = v
		}
	}
	return NewSetCells(m, rng, values)
}

func (c *SetCells) Name() string {
	if c.Label != "" {
		return c.Label
	}
	return "setCells"
}

func (c *SetCells) Do(m *grid.Model)   { m.SetRange(c.Range, c.After) }
func (c *SetCells) Undo(m *grid.Model) { m.SetRange(c.Range, c.Before) }

// ClearCells blanks a range.
type ClearCells struct {
	Range  grid.Rect  `yaml:"range"`
	Before [][]string `yaml:"before"`
}

func NewClearCells(m *grid.Model, rng grid.Rect) *ClearCells {
	rng = rng.Normalize()
	return &ClearCells{Range: rng, Before: m.GetRange(rng)}
}

func (c *ClearCells) Name() string       { return "clearCells" }
func (c *ClearCells) Do(m *grid.Model)   { m.ClearRange(c.Range) }
func (c *ClearCells) Undo(m *grid.Model) { m.SetRange(c.Range, c.Before) }

// FormatRange applies a format patch to a range.
type FormatRange struct {
	Range  grid.Rect          `yaml:"range"`
	Patch  grid.Patch         `yaml:"patch"`
	Before []grid.FormatEntry `yaml:"before,omitempty"`
}

func NewFormatRange(m *grid.Model, rng grid.Rect, patch grid.Patch) *FormatRange {
	rng = rng.Normalize()
	return &FormatRange{Range: rng, Patch: patch, Before: m.FormatsIn(rng)}
}

func (c *FormatRange) Name() string       { return "format" }
func (c *FormatRange) Do(m *grid.Model)   { m.SetFormatRange(c.Range, c.Patch) }
func (c *FormatRange) Undo(m *grid.Model) { m.RestoreFormats(c.Range, c.Before) }

// FillDown copies values and formats downwards. A single-row range is
// filled from the row above it; a taller range repeats its first row.
type FillDown struct {
	Range     grid.Rect          `yaml:"range"`
	Source    int                `yaml:"source"`
	Before    [][]string         `yaml:"before"`
	BeforeFmt []grid.FormatEntry `yaml:"beforeFormats,omitempty"`
}

// NewFillDown returns false when there is nothing to fill from, which is
// the case for a single-row range on the first row.
func NewFillDown(m *grid.Model, rng grid.Rect) (*FillDown, bool) {
	rng = rng.Normalize()
	c := &FillDown{Range: rng, Source: rng.R0}
	if rng.R0 == rng.R1 {
		if rng.R0 == 0 {
			return nil, false
		}
		c.Source = rng.R0 - 1
	} else {
		rng.R0++
		c.Range = rng
	}
	c.Before = m.GetRange(c.Range)
	c.BeforeFmt = m.FormatsIn(c.Range)
	return c, true
}

// NewFillFrom returns a FillDown copying row source into every row of rng.
func NewFillFrom(m *grid.Model, source int, rng grid.Rect) *FillDown {
	rng = rng.Normalize()
	return &FillDown{Range: rng, Source: source, Before: m.GetRange(rng), BeforeFmt: m.FormatsIn(rng)}
}

func (c *FillDown) Name() string { return "fillDown" }

func (c *FillDown) Do(m *grid.Model) {
	c.Range.ForEach(func(r, col int) {
		m.Set(r, col, m.Get(c.Source, col))
		m.SetFormat(r, col, m.Format(c.Source, col))
	})
}

func (c *FillDown) Undo(m *grid.Model) {
	m.SetRange(c.Range, c.Before)
	m.RestoreFormats(c.Range, c.BeforeFmt)
}

// InsertRows inserts Count blank rows at At.
type InsertRows struct {
	At    int `yaml:"at"`
	Count int `yaml:"count"`
}

func (c *InsertRows) Name() string       { return "insertRows" }
func (c *InsertRows) Do(m *grid.Model)   { m.InsertRows(c.At, c.Count) }
func (c *InsertRows) Undo(m *grid.Model) { m.DeleteRows(c.At, c.At+c.Count-1) }

// DeleteRows removes rows R0..R1 and restores their values, heights and
// formats on undo.
type DeleteRows struct {
	R0      int                `yaml:"r0"`
	R1      int                `yaml:"r1"`
	Values  [][]string         `yaml:"values"`
	Heights []int              `yaml:"heights"`
	Formats []grid.FormatEntry `yaml:"formats,omitempty"`
}

// NewDeleteRows clamps r0..r1 to the model and captures the deleted rows.
// It returns false when the clamped span is empty.
func NewDeleteRows(m *grid.Model, r0, r1 int) (*DeleteRows, bool) {
	r0, r1 = max(min(r0, r1), 0), min(max(r0, r1), m.Rows()-1)
	if r0 > r1 || m.Cols() == 0 {
		return nil, false
	}
	rng := grid.Rect{R0: r0, C0: 0, R1: r1, C1: m.Cols() - 1}
	c := &DeleteRows{R0: r0, R1: r1, Values: m.GetRange(rng), Formats: m.FormatsIn(rng)}
	for r := r0; r <= r1; r++ {
		c.Heights = append(c.Heights, m.RowHeight(r))
	}
	return c, true
}

func (c *DeleteRows) Name() string     { return "deleteRows" }
func (c *DeleteRows) Do(m *grid.Model) { m.DeleteRows(c.R0, c.R1) }

func (c *DeleteRows) Undo(m *grid.Model) {
	m.InsertRows(c.R0, c.R1-c.R0+1)
	rng := grid.Rect{R0: c.R0, C0: 0, R1: c.R1, C1: max(m.Cols()-1, 0)}
	m.SetRange(rng, c.Values)
	for i, h := range c.Heights {
		m.SetRowHeight(c.R0+i, h)
	}
	m.RestoreFormats(rng, c.Formats)
}

// InsertCols inserts Count blank columns at At.
type InsertCols struct {
	At    int `yaml:"at"`
	Count int `yaml:"count"`
}

func (c *InsertCols) Name() string       { return "insertCols" }
func (c *InsertCols) Do(m *grid.Model)   { m.InsertCols(c.At, c.Count) }
func (c *InsertCols) Undo(m *grid.Model) { m.DeleteCols(c.At, c.At+c.Count-1) }

// DeleteCols removes columns C0..C1.
type DeleteCols struct {
	C0      int                `yaml:"c0"`
	C1      int                `yaml:"c1"`
	Values  [][]string         `yaml:"values"`
	Widths  []int              `yaml:"widths"`
	Formats []grid.FormatEntry `yaml:"formats,omitempty"`
}

func NewDeleteCols(m *grid.Model, c0, c1 int) (*DeleteCols, bool) {
	c0, c1 = max(min(c0, c1), 0), min(max(c0, c1), m.Cols()-1)
	if c0 > c1 || m.Rows() == 0 {
		return nil, false
	}
	rng := grid.Rect{R0: 0, C0: c0, R1: m.Rows() - 1, C1: c1}
	c := &DeleteCols{C0: c0, C1: c1, Values: m.GetRange(rng), Formats: m.FormatsIn(rng)}
	for col := c0; col <= c1; col++ {
		c.Widths = append(c.Widths, m.ColWidth(col))
	}
	return c, true
}

func (c *DeleteCols) Name() string     { return "deleteCols" }
func (c *DeleteCols) Do(m *grid.Model) { m.DeleteCols(c.C0, c.C1) }

func (c *DeleteCols) Undo(m *grid.Model) {
	m.InsertCols(c.C0, c.C1-c.C0+1)
	rng := grid.Rect{R0: 0, C0: c.C0, R1: max(m.Rows()-1, 0), C1: c.C1}
	m.SetRange(rng, c.Values)
	for i, w := range c.Widths {
		m.SetColWidth(c.C0+i, w)
	}
	m.RestoreFormats(rng, c.Formats)
}

// ResizeCol changes one column's width.
type ResizeCol struct {
	Col    int `yaml:"col"`
	Before int `yaml:"before"`
	After  int `yaml:"after"`
}

func (c *ResizeCol) Name() string       { return "resizeCol" }
func (c *ResizeCol) Do(m *grid.Model)   { m.SetColWidth(c.Col, c.After) }
func (c *ResizeCol) Undo(m *grid.Model) { m.SetColWidth(c.Col, c.Before) }

// ResizeRow changes one row's height.
type ResizeRow struct {
	Row    int `yaml:"row"`
	Before int `yaml:"before"`
	After  int `yaml:"after"`
}

func (c *ResizeRow) Name() string       { return "resizeRow" }
func (c *ResizeRow) Do(m *grid.Model)   { m.SetRowHeight(c.Row, c.After) }
func (c *ResizeRow) Undo(m *grid.Model) { m.SetRowHeight(c.Row, c.Before) }

// Batch groups commands into one undo step. Undo runs in reverse order.
type Batch struct {
	Label    string    `yaml:"label"`
	Commands []Command `yaml:"commands"`
}

func (c *Batch) Name() string { return c.Label }

func (c *Batch) Do(m *grid.Model) {
	for _, cmd := range c.Commands {
		cmd.Do(m)
	}
}

func (c *Batch) Undo(m *grid.Model) {
	for i := len(c.Commands) - 1; i >= 0; i-- {
		c.Commands[i].Undo(m)
	}
}
