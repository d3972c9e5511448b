package actions

import (
	"fmt"

	"github.com/joeycumines/gridedit/internal/bus"
	"github.com/joeycumines/gridedit/internal/grid"
	"github.com/joeycumines/gridedit/internal/history"
)

// formatAll applies patch to every selected range as one undo step.
func (a *Actions) formatAll(label string, patch grid.Patch) {
	var cmds []history.Command
	for _, run := range a.selectedRuns() {
		cmds = append(cmds, history.NewFormatRange(a.Model, run, patch))
	}
	a.execute(label, cmds)
}

// toggle sets the flag on every selected cell unless all of them already
// carry it, in which case it is removed from all of them.
func (a *Actions) toggle(label string, flag grid.Fields, set grid.Format) bus.ActionFunc {
	return func(any) (any, error) {
		on := true
		for _, run := range a.selectedRuns() {
			run.ForEach(func(r, c int) {
				if !a.Model.Format(r, c).Has(flag) {
					on = false
				}
			})
		}
		if on {
			a.formatAll(label, grid.Patch{Unset: flag})
		} else {
			a.formatAll(label, grid.Patch{Set: set})
		}
		return !on, nil
	}
}

func (a *Actions) formatAlign(payload any) (any, error) {
	s, ok := stringField(payload, "align")
	if !ok {
		return nil, fmt.Errorf("%w: format.align got %T", ErrInvalidPayload, payload)
	}
	switch align := grid.Align(s); align {
	case grid.AlignNone:
		a.formatAll("format.align", grid.Patch{Unset: grid.FieldAlign})
	case grid.AlignLeft, grid.AlignCenter, grid.AlignRight:
		a.formatAll("format.align", grid.Patch{Set: grid.Format{Align: align}})
	default:
		return nil, fmt.Errorf("%w: unknown alignment %q", ErrInvalidPayload, s)
	}
	return nil, nil
}

// formatString builds an action for a string-valued field. An empty value
// removes the field.
func (a *Actions) formatString(label, key string, flag grid.Fields, set func(*grid.Format, string)) bus.ActionFunc {
	return func(payload any) (any, error) {
		s, ok := stringField(payload, key)
		if !ok {
			return nil, fmt.Errorf("%w: %s got %T", ErrInvalidPayload, label, payload)
		}
		if s == "" {
			a.formatAll(label, grid.Patch{Unset: flag})
			return nil, nil
		}
		var f grid.Format
		set(&f, s)
		a.formatAll(label, grid.Patch{Set: f})
		return nil, nil
	}
}

// formatFontSize removes the size for anything that is not a positive
// number.
func (a *Actions) formatFontSize(payload any) (any, error) {
	size, ok := intField(payload, "size")
	if !ok || size <= 0 {
		a.formatAll("format.fontSize", grid.Patch{Unset: grid.FieldFontSize})
		return nil, nil
	}
	a.formatAll("format.fontSize", grid.Patch{Set: grid.Format{FontSize: size}})
	return nil, nil
}

func (a *Actions) clearFormat(any) (any, error) {
	a.formatAll("clear.format", grid.Patch{Unset: grid.AllFields})
	return nil, nil
}
