// Package selection tracks the user's primary range and the auxiliary
// single-cell "extras" used for non-contiguous multi-select.
package selection

import (
	"github.com/joeycumines/gridedit/internal/grid"
)

// Bounds reports the grid extent selections are clamped to.
type Bounds interface {
	Rows() int
	Cols() int
}

// Selection is the primary range spanned by anchor and active, plus extras.
// Selection changes are not undoable and are applied directly by input
// controllers.
type Selection struct {
	bounds Bounds
	anchor grid.Cell
	active grid.Cell
	rng    grid.Rect
	extras []grid.Cell
	index  map[grid.Cell]struct{}
}

// New returns a selection at A1.
func New(bounds Bounds) *Selection {
	return &Selection{bounds: bounds, index: make(map[grid.Cell]struct{})}
}

// SetOption modifies SetActive.
type SetOption func(*setOptions)

type setOptions struct {
	preserveExtras bool
}

// PreserveExtras keeps toggled extras when the primary range collapses.
func PreserveExtras() SetOption {
	return func(o *setOptions) { o.preserveExtras = true }
}

func (s *Selection) clamp(r, c int) grid.Cell {
	return grid.Cell{
		R: max(0, min(r, s.bounds.Rows()-1)),
		C: max(0, min(c, s.bounds.Cols()-1)),
	}
}

// Anchor returns the fixed corner of the primary range.
func (s *Selection) Anchor() grid.Cell { return s.anchor }

// Active returns the moving corner of the primary range.
func (s *Selection) Active() grid.Cell { return s.active }

// Range returns the normalized primary range.
func (s *Selection) Range() grid.Rect { return s.rng }

// SetActive collapses the primary range to (r, c), clamped to the grid.
func (s *Selection) SetActive(r, c int, opts ...SetOption) {
	var o setOptions
	for _, opt := range opts {
		opt(&o)
	}
	p := s.clamp(r, c)
	if !o.preserveExtras {
		s.ClearExtras()
	}
	s.anchor, s.active = p, p
	s.rng = grid.CellRect(p.R, p.C)
	s.dropCovered()
}

// ExtendTo moves the active corner, keeping the anchor.
func (s *Selection) ExtendTo(r, c int) {
	s.active = s.clamp(r, c)
	s.rng = grid.Span(s.anchor, s.active)
	s.dropCovered()
}

// Restore sets both corners at once, clamping each. Used after structural
// edits change the grid extent.
func (s *Selection) Restore(anchor, active grid.Cell) {
	s.anchor = s.clamp(anchor.R, anchor.C)
	s.active = s.clamp(active.R, active.C)
	s.rng = grid.Span(s.anchor, s.active)
	s.retainExtras()
}

// SelectRow selects the full extent of row r.
func (s *Selection) SelectRow(r int) {
	p := s.clamp(r, 0)
	s.ClearExtras()
	s.anchor = grid.Cell{R: p.R}
	s.active = grid.Cell{R: p.R, C: max(s.bounds.Cols()-1, 0)}
	s.rng = grid.Span(s.anchor, s.active)
}

// SelectCol selects the full extent of column c.
func (s *Selection) SelectCol(c int) {
	p := s.clamp(0, c)
	s.ClearExtras()
	s.anchor = grid.Cell{C: p.C}
	s.active = grid.Cell{R: max(s.bounds.Rows()-1, 0), C: p.C}
	s.rng = grid.Span(s.anchor, s.active)
}

// SelectAll selects the whole grid.
func (s *Selection) SelectAll() {
	s.ClearExtras()
	s.anchor = grid.Cell{}
	s.active = grid.Cell{R: max(s.bounds.Rows()-1, 0), C: max(s.bounds.Cols()-1, 0)}
	s.rng = grid.Span(s.anchor, s.active)
}

// ToggleExtraCell adds or removes (r, c) from the extras. Cells inside the
// primary range are ignored.
func (s *Selection) ToggleExtraCell(r, c int) {
	p := s.clamp(r, c)
	if s.rng.Contains(p.R, p.C) {
		return
	}
	if _, ok := s.index[p]; ok {
		delete(s.index, p)
		for i, e := range s.extras {
			if e == p {
				s.extras = append(s.extras[:i], s.extras[i+1:]...)
				break
			}
		}
		return
	}
	s.index[p] = struct{}{}
	s.extras = append(s.extras, p)
}

// ClearExtras removes every extra.
func (s *Selection) ClearExtras() {
	s.extras = s.extras[:0]
	clear(s.index)
}

// Extras returns the toggled cells in toggle order.
func (s *Selection) Extras() []grid.Cell {
	return append([]grid.Cell(nil), s.extras...)
}

// IsFullRows reports whether the primary range spans every column.
func (s *Selection) IsFullRows() bool {
	return s.rng.C0 == 0 && s.rng.C1 >= s.bounds.Cols()-1
}

// IsFullCols reports whether the primary range spans every row.
func (s *Selection) IsFullCols() bool {
	return s.rng.R0 == 0 && s.rng.R1 >= s.bounds.Rows()-1
}

// AllRanges returns the primary range followed by one single-cell range
// per extra.
func (s *Selection) AllRanges() []grid.Rect {
	out := make([]grid.Rect, 0, 1+len(s.extras))
	out = append(out, s.rng)
	for _, e := range s.extras {
		out = append(out, grid.CellRect(e.R, e.C))
	}
	return out
}

// dropCovered removes extras swallowed by a grown primary range.
func (s *Selection) dropCovered() {
	if len(s.extras) == 0 {
		return
	}
	kept := s.extras[:0]
	for _, e := range s.extras {
		if s.rng.Contains(e.R, e.C) {
			delete(s.index, e)
			continue
		}
		kept = append(kept, e)
	}
	s.extras = kept
}

// retainExtras drops extras that no longer fit the grid, then those now
// covered by the primary range.
func (s *Selection) retainExtras() {
	rows, cols := s.bounds.Rows(), s.bounds.Cols()
	kept := s.extras[:0]
	for _, e := range s.extras {
		if e.R >= rows || e.C >= cols {
			delete(s.index, e)
			continue
		}
		kept = append(kept, e)
	}
	s.extras = kept
	s.dropCovered()
}
