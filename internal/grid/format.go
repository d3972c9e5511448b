package grid

import (
	"maps"
	"slices"
)

// Align is the horizontal alignment of a cell's text.
type Align string

const (
	AlignNone   Align = ""
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// Format is the per-cell formatting record. A zero-valued field is absent;
// a zero Format means the cell carries no formatting at all.
type Format struct {
	Bold      bool   `json:"bold,omitempty" yaml:"bold,omitempty"`
	Italic    bool   `json:"italic,omitempty" yaml:"italic,omitempty"`
	Underline bool   `json:"underline,omitempty" yaml:"underline,omitempty"`
	Align     Align  `json:"align,omitempty" yaml:"align,omitempty"`
	Color     string `json:"color,omitempty" yaml:"color,omitempty"`
	Bg        string `json:"bg,omitempty" yaml:"bg,omitempty"`
	Font      string `json:"font,omitempty" yaml:"font,omitempty"`
	FontSize  int    `json:"fontSize,omitempty" yaml:"fontSize,omitempty"`
}

// IsZero reports whether no field is present.
func (f Format) IsZero() bool {
	return f == Format{}
}

// Has reports whether the given field is present.
func (f Format) Has(field Fields) bool {
	return f.present()&field != 0
}

func (f Format) present() Fields {
	var p Fields
	if f.Bold {
		p |= FieldBold
	}
	if f.Italic {
		p |= FieldItalic
	}
	if f.Underline {
		p |= FieldUnderline
	}
	if f.Align != AlignNone {
		p |= FieldAlign
	}
	if f.Color != "" {
		p |= FieldColor
	}
	if f.Bg != "" {
		p |= FieldBg
	}
	if f.Font != "" {
		p |= FieldFont
	}
	if f.FontSize != 0 {
		p |= FieldFontSize
	}
	return p
}

// Fields is a bit set naming Format fields.
type Fields uint16

const (
	FieldBold Fields = 1 << iota
	FieldItalic
	FieldUnderline
	FieldAlign
	FieldColor
	FieldBg
	FieldFont
	FieldFontSize

	// AllFields names every Format field; Patch{Unset: AllFields} clears a
	// cell's formatting entirely.
	AllFields = FieldBold | FieldItalic | FieldUnderline | FieldAlign | FieldColor | FieldBg | FieldFont | FieldFontSize
)

var fieldNames = map[string]Fields{
	"bold":      FieldBold,
	"italic":    FieldItalic,
	"underline": FieldUnderline,
	"align":     FieldAlign,
	"color":     FieldColor,
	"bg":        FieldBg,
	"font":      FieldFont,
	"fontSize":  FieldFontSize,
}

// FieldByName maps a field name ("bold", "fontSize", ...) to its bit.
func FieldByName(name string) (Fields, bool) {
	f, ok := fieldNames[name]
	return f, ok
}

// Patch is a partial Format update. Present (non-zero) fields of Set are
// written; fields named in Unset are removed. Unset wins when a field is
// named in both.
type Patch struct {
	Set   Format `json:"set" yaml:"set"`
	Unset Fields `json:"unset,omitempty" yaml:"unset,omitempty"`
}

// Apply returns f with the patch applied.
func (p Patch) Apply(f Format) Format {
	s := p.Set
	if s.Bold {
		f.Bold = true
	}
	if s.Italic {
		f.Italic = true
	}
	if s.Underline {
		f.Underline = true
	}
	if s.Align != AlignNone {
		f.Align = s.Align
	}
	if s.Color != "" {
		f.Color = s.Color
	}
	if s.Bg != "" {
		f.Bg = s.Bg
	}
	if s.Font != "" {
		f.Font = s.Font
	}
	if s.FontSize != 0 {
		f.FontSize = s.FontSize
	}
	u := p.Unset
	if u&FieldBold != 0 {
		f.Bold = false
	}
	if u&FieldItalic != 0 {
		f.Italic = false
	}
	if u&FieldUnderline != 0 {
		f.Underline = false
	}
	if u&FieldAlign != 0 {
		f.Align = AlignNone
	}
	if u&FieldColor != 0 {
		f.Color = ""
	}
	if u&FieldBg != 0 {
		f.Bg = ""
	}
	if u&FieldFont != 0 {
		f.Font = ""
	}
	if u&FieldFontSize != 0 {
		f.FontSize = 0
	}
	return f
}

// FormatEntry is one cell's formatting, used for snapshots.
type FormatEntry struct {
	Cell   `yaml:",inline"`
	Format Format `json:"format" yaml:"format"`
}

// formatIndex is a sparse row -> col -> Format index. Structural edits
// rewrite keys of a single level in bulk.
type formatIndex map[int]map[int]Format

func (x formatIndex) get(r, c int) Format {
	return x[r][c]
}

func (x formatIndex) set(r, c int, f Format) {
	if f.IsZero() {
		x.del(r, c)
		return
	}
	row := x[r]
	if row == nil {
		row = make(map[int]Format)
		x[r] = row
	}
	row[c] = f
}

func (x formatIndex) del(r, c int) {
	row, ok := x[r]
	if !ok {
		return
	}
	delete(row, c)
	if len(row) == 0 {
		delete(x, r)
	}
}

// shiftRows moves rows >= at by delta; rows in [at, at-delta) are dropped
// when delta is negative.
func (x formatIndex) shiftRows(at, delta int) {
	keys := slices.Sorted(maps.Keys(x))
	if delta > 0 {
		slices.Reverse(keys)
	}
	for _, r := range keys {
		if r < at {
			continue
		}
		row := x[r]
		delete(x, r)
		if delta < 0 && r < at-delta {
			continue
		}
		x[r+delta] = row
	}
}

// shiftCols is the column-level counterpart of shiftRows.
func (x formatIndex) shiftCols(at, delta int) {
	for r, row := range x {
		keys := slices.Sorted(maps.Keys(row))
		if delta > 0 {
			slices.Reverse(keys)
		}
		for _, c := range keys {
			if c < at {
				continue
			}
			f := row[c]
			delete(row, c)
			if delta < 0 && c < at-delta {
				continue
			}
			row[c+delta] = f
		}
		if len(row) == 0 {
			delete(x, r)
		}
	}
}

func (x formatIndex) count() int {
	n := 0
	for _, row := range x {
		n += len(row)
	}
	return n
}
