// Package macro runs JavaScript files against an editor. Scripts read the
// grid freely but only change it through undoable commands, and can add bus
// actions that the rest of the editor invokes by name.
//
// The API is available as globals and as require("gridedit"):
//
//	grid.rows(), grid.cols(), grid.get(r, c), grid.getRange(r0, c0, r1, c1)
//	grid.set(r, c, v), grid.setRange(r, c, [[...]]), grid.a1("B2:C4")
//	selection.range(), selection.active(), selection.setActive(r, c), selection.extendTo(r, c)
//	bus.registerAction(name, fn), bus.act(name, payload), bus.on(type, fn, priority), bus.emit(type, payload)
//	history.undo(), history.redo(), history.canUndo(), history.canRedo()
package macro

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/console"
	"github.com/dop251/goja_nodejs/require"

	"github.com/joeycumines/gridedit/internal/bus"
	"github.com/joeycumines/gridedit/internal/grid"
	"github.com/joeycumines/gridedit/internal/history"
	"github.com/joeycumines/gridedit/internal/selection"
)

// ModuleName is the require() name of the editor API.
const ModuleName = "gridedit"

// Deps are the editor parts a script can reach.
type Deps struct {
	Model     *grid.Model
	Selection *selection.Selection
	History   *history.Manager
	Bus       *bus.Bus
	Logger    *slog.Logger
}

// Engine owns one goja runtime. It is not safe for concurrent use; scripts
// and the actions they register run on the caller's goroutine.
type Engine struct {
	Deps
	vm       *goja.Runtime
	registry *require.Registry
	api      *goja.Object
	loaded   []string
}

// New returns an engine with the editor API, require() and console set up.
func New(d Deps) (*Engine, error) {
	if d.Logger == nil {
		d.Logger = slog.New(slog.DiscardHandler)
	}
	e := &Engine{Deps: d, vm: goja.New()}
	e.vm.SetFieldNameMapper(goja.UncapFieldNameMapper())

	e.registry = require.NewRegistry()
	e.registry.RegisterNativeModule(console.ModuleName, console.RequireWithPrinter(printer{e.Logger}))
	e.registry.RegisterNativeModule(ModuleName, func(_ *goja.Runtime, module *goja.Object) {
		_ = module.Set("exports", e.api)
	})
	e.registry.Enable(e.vm)
	console.Enable(e.vm)

	e.api = e.vm.NewObject()
	for name, obj := range map[string]*goja.Object{
		"grid":      e.gridAPI(),
		"selection": e.selectionAPI(),
		"bus":       e.busAPI(),
		"history":   e.historyAPI(),
	} {
		if err := e.api.Set(name, obj); err != nil {
			return nil, fmt.Errorf("macro: export %s: %w", name, err)
		}
		if err := e.vm.Set(name, obj); err != nil {
			return nil, fmt.Errorf("macro: set global %s: %w", name, err)
		}
	}
	return e, nil
}

// Runtime exposes the underlying goja runtime.
func (e *Engine) Runtime() *goja.Runtime { return e.vm }

// Loaded lists the script paths run so far.
func (e *Engine) Loaded() []string { return append([]string(nil), e.loaded...) }

// RunFile runs a script file. Relative require() calls resolve against the
// script's directory.
func (e *Engine) RunFile(ctx context.Context, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("macro: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	if err := e.Run(ctx, abs, string(src)); err != nil {
		return err
	}
	e.loaded = append(e.loaded, abs)
	return nil
}

// Run evaluates src. Cancelling ctx interrupts the script.
func (e *Engine) Run(ctx context.Context, name, src string) (err error) {
	stop := context.AfterFunc(ctx, func() { e.vm.Interrupt(context.Cause(ctx)) })
	defer func() {
		if !stop() {
			e.vm.ClearInterrupt()
		}
	}()

	logger := e.Logger.With("script", filepath.Base(name))
	if _, err = e.vm.RunScript(name, src); err != nil {
		err = scriptError(name, err)
		logger.Warn("script failed", "error", err)
		return err
	}
	logger.Debug("script loaded")
	return nil
}

// scriptError names the script. Go errors thrown through JS stay reachable
// with errors.Is.
func scriptError(name string, err error) error {
	var ie *goja.InterruptedError
	if errors.As(err, &ie) {
		return fmt.Errorf("macro %s: interrupted: %w", filepath.Base(name), err)
	}
	return fmt.Errorf("macro %s: %w", filepath.Base(name), err)
}

type printer struct{ logger *slog.Logger }

func (p printer) Log(s string)   { p.logger.Info(s, "source", "console") }
func (p printer) Warn(s string)  { p.logger.Warn(s, "source", "console") }
func (p printer) Error(s string) { p.logger.Error(s, "source", "console") }
