package macro

import (
	"fmt"

	"github.com/dop251/goja"

	"github.com/joeycumines/gridedit/internal/bus"
	"github.com/joeycumines/gridedit/internal/grid"
	"github.com/joeycumines/gridedit/internal/history"
)

func (e *Engine) object(methods map[string]any) *goja.Object {
	obj := e.vm.NewObject()
	for name, fn := range methods {
		_ = obj.Set(name, fn)
	}
	return obj
}

// throw raises err as a JS exception that unwraps back to err in Go.
func (e *Engine) throw(err error) {
	panic(e.vm.NewGoError(err))
}

func (e *Engine) gridAPI() *goja.Object {
	m := e.Model
	return e.object(map[string]any{
		"rows": m.Rows,
		"cols": m.Cols,
		"get":  m.Get,
		"getRange": func(r0, c0, r1, c1 int) [][]string {
			return m.GetRange(grid.Rect{R0: r0, C0: c0, R1: r1, C1: c1}.Normalize())
		},
		"set": func(r, c int, v string) {
			if r < 0 || c < 0 {
				e.throw(fmt.Errorf("grid.set: negative cell %d,%d", r, c))
			}
			e.History.Execute(history.NewSetCells(m, grid.CellRect(r, c), [][]string{{v}}))
		},
		"setRange": func(r, c int, values [][]string) grid.Rect {
			rows, cols := grid.Shape(values)
			if r < 0 || c < 0 {
				e.throw(fmt.Errorf("grid.setRange: negative origin %d,%d", r, c))
			}
			if rows == 0 || cols == 0 {
				return grid.CellRect(r, c)
			}
			rng := grid.Rect{R0: r, C0: c, R1: r + rows - 1, C1: c + cols - 1}
			cmd := history.NewSetCells(m, rng, values)
			cmd.Label = "script"
			e.History.Execute(cmd)
			return rng
		},
		"a1": func(ref string) grid.Rect {
			rng, err := grid.ParseA1(ref)
			if err != nil {
				e.throw(err)
			}
			return rng
		},
		"label": grid.ToA1,
	})
}

func (e *Engine) selectionAPI() *goja.Object {
	s := e.Selection
	changed := func() { e.Bus.Emit(bus.EventSelectionChanged, nil) }
	return e.object(map[string]any{
		"range":  s.Range,
		"active": s.Active,
		"anchor": s.Anchor,
		"ranges": s.AllRanges,
		"setActive": func(r, c int) {
			s.SetActive(r, c)
			changed()
		},
		"extendTo": func(r, c int) {
			s.ExtendTo(r, c)
			changed()
		},
	})
}

func (e *Engine) busAPI() *goja.Object {
	b := e.Bus
	return e.object(map[string]any{
		"registerAction": func(name string, fn goja.Callable) {
			if err := b.RegisterAction(name, e.action(name, fn)); err != nil {
				e.throw(err)
			}
		},
		"act": func(name string, payload goja.Value) any {
			res, err := b.Act(name, export(payload))
			if err != nil {
				e.throw(err)
			}
			return res
		},
		"has":     b.HasAction,
		"actions": b.Actions,
		"on": func(typ string, fn goja.Callable, priority int) func() {
			return b.On(typ, func(payload any) bus.Result {
				v, err := fn(goja.Undefined(), e.vm.ToValue(payload))
				if err != nil {
					e.Logger.Warn("script listener failed", "event", typ, "error", err)
					return bus.Continue
				}
				if v != nil && v.ToBoolean() {
					return bus.Consumed
				}
				return bus.Continue
			}, priority)
		},
		"emit": func(typ string, payload goja.Value) {
			b.Emit(typ, export(payload))
		},
	})
}

func (e *Engine) historyAPI() *goja.Object {
	h := e.History
	return e.object(map[string]any{
		"undo":    h.Undo,
		"redo":    h.Redo,
		"canUndo": h.CanUndo,
		"canRedo": h.CanRedo,
		"depth":   h.UndoDepth,
	})
}

// action adapts a JS function to a bus action. A thrown exception becomes
// the action's error.
func (e *Engine) action(name string, fn goja.Callable) bus.ActionFunc {
	return func(payload any) (any, error) {
		v, err := fn(goja.Undefined(), e.vm.ToValue(payload))
		if err != nil {
			return nil, fmt.Errorf("action %s: %w", name, err)
		}
		return export(v), nil
	}
}

func export(v goja.Value) any {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil
	}
	return v.Export()
}
