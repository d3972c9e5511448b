// Package app assembles the editor and runs it as a Bubble Tea model. Update
// is the single thread everything runs on: deferred bus events are drained
// at the end of each message, and pending frames and timers become ticks.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/google/uuid"
	zone "github.com/lrstanley/bubblezone"

	"github.com/joeycumines/gridedit/internal/actions"
	"github.com/joeycumines/gridedit/internal/bus"
	"github.com/joeycumines/gridedit/internal/clipboard"
	"github.com/joeycumines/gridedit/internal/editor"
	"github.com/joeycumines/gridedit/internal/grid"
	"github.com/joeycumines/gridedit/internal/history"
	"github.com/joeycumines/gridedit/internal/input"
	"github.com/joeycumines/gridedit/internal/logging"
	"github.com/joeycumines/gridedit/internal/macro"
	"github.com/joeycumines/gridedit/internal/render"
	"github.com/joeycumines/gridedit/internal/schedule"
	"github.com/joeycumines/gridedit/internal/selection"
	"github.com/joeycumines/gridedit/internal/suggest"
)

const (
	DefaultRows          = 100
	DefaultCols          = 26
	DefaultFrameInterval = 16 * time.Millisecond
	// filterDelay is how long the filter prompt waits after the last
	// keystroke before filtering.
	filterDelay = 150 * time.Millisecond
)

// Config describes one editor instance. Zero values select defaults.
type Config struct {
	Rows, Cols int
	Headers    []string
	// TSV is loaded into the grid at A1 before editing starts.
	TSV  string
	Zoom float64

	FrameInterval time.Duration
	// KeyDebounce is the minimum gap between navigation keys; negative
	// disables it.
	KeyDebounce time.Duration
	Theme       *render.Theme

	// HistoryLimit caps undo depth; zero is unlimited.
	HistoryLimit int
	Journal      bool

	ClipboardCommand string
	// ClipboardOut receives OSC 52 sequences, typically the terminal.
	ClipboardOut io.Writer
	// ClipboardWriter and ClipboardReader replace the system clipboard.
	ClipboardWriter clipboard.Writer
	ClipboardReader clipboard.Reader
	DedupWindow     time.Duration
	PasteDebounce   time.Duration

	Suggestions *suggest.Engine

	Logger *slog.Logger
	// Log feeds warnings into the status line.
	Log *logging.Buffer
	// Clock replaces time.Now, for tests.
	Clock func() time.Time
}

// App is the editor. It implements tea.Model.
type App struct {
	id     string
	cfg    Config
	logger *slog.Logger
	now    func() time.Time

	model     *grid.Model
	sel       *selection.Selection
	hist      *history.Manager
	queue     *schedule.Queue
	frames    *schedule.Frames
	timers    *schedule.TimerQueue
	bus       *bus.Bus
	renderer  *render.Renderer
	editor    *editor.Editor
	clipboard *clipboard.Clipboard
	actions   *actions.Actions
	keyboard  *input.Keyboard
	mouse     *input.Mouse
	macros    *macro.Engine
	zones     *zone.Manager
	keys      input.KeyMap

	help   help.Model
	prompt prompt
	filter *schedule.Debouncer

	width, height int
	status        string
	statusAt      time.Time
	tickPending   bool
}

// New builds an editor from cfg.
func New(cfg Config) (*App, error) {
	if cfg.Rows <= 0 {
		cfg.Rows = DefaultRows
	}
	if cfg.Cols <= 0 {
		cfg.Cols = DefaultCols
	}
	if cfg.FrameInterval <= 0 {
		cfg.FrameInterval = DefaultFrameInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	a := &App{
		id:     uuid.NewString(),
		cfg:    cfg,
		now:    cfg.Clock,
		queue:  &schedule.Queue{},
		frames: schedule.NewFrames(),
		timers: &schedule.TimerQueue{},
		zones:  zone.New(),
		keys:   input.DefaultKeyMap(),
		help:   help.New(),
	}
	a.logger = cfg.Logger.With("editor", a.id)
	a.filter = schedule.NewDebouncer(a.timers, filterDelay)

	a.model = grid.New(cfg.Rows, cfg.Cols)
	if cfg.TSV != "" {
		rng := a.model.ImportTSV(0, 0, cfg.TSV)
		a.logger.Debug("loaded tsv", "range", rng.String())
	}
	a.sel = selection.New(a.model)

	histOpts := []history.Option{history.WithLogger(a.logger), history.WithLimit(cfg.HistoryLimit)}
	if cfg.Journal {
		histOpts = append(histOpts, history.WithJournal())
	}
	a.hist = history.NewManager(a.model, histOpts...)
	a.bus = bus.New(a.queue)

	renderOpts := []render.Option{render.WithLogger(a.logger), render.WithZones(a.zones)}
	if cfg.Theme != nil {
		renderOpts = append(renderOpts, render.WithTheme(*cfg.Theme))
	}
	a.renderer = render.New(a.model, a.sel, a.bus, a.frames, renderOpts...)
	a.renderer.SetHeaders(cfg.Headers)
	if cfg.Zoom > 0 {
		a.renderer.SetZoom(cfg.Zoom)
	}

	editorOpts := []editor.Option{editor.WithLogger(a.logger)}
	if cfg.Suggestions != nil {
		editorOpts = append(editorOpts, editor.WithSuggestions(cfg.Suggestions))
	}
	a.editor = editor.New(a.model, a.sel, a.hist, a.bus, a.renderer, editorOpts...)
	a.renderer.SetEditSurface(a.editor)

	a.clipboard = clipboard.New(a.model, a.sel, a.hist, a.bus, a.clipboardOptions()...)

	var err error
	a.actions, err = actions.Register(actions.Deps{
		Model:     a.model,
		Selection: a.sel,
		History:   a.hist,
		Bus:       a.bus,
		Renderer:  a.renderer,
		Editor:    a.editor,
		Clipboard: a.clipboard,
		Logger:    a.logger,
	})
	if err != nil {
		return nil, err
	}

	inputOpts := []input.Option{input.WithLogger(a.logger), input.WithClock(cfg.Clock), input.WithKeyMap(a.keys)}
	switch {
	case cfg.KeyDebounce < 0:
		inputOpts = append(inputOpts, input.WithDebounce(0))
	case cfg.KeyDebounce > 0:
		inputOpts = append(inputOpts, input.WithDebounce(cfg.KeyDebounce))
	}
	a.keyboard = input.NewKeyboard(a.model, a.sel, a.editor, a.bus, a.renderer, inputOpts...)
	a.mouse = input.NewMouse(a.model, a.sel, a.hist, a.editor, a.bus, a.renderer, a.frames, inputOpts...)

	a.bus.On(bus.EventStatus, func(payload any) bus.Result {
		a.status, _ = payload.(string)
		a.statusAt = a.now()
		return bus.Continue
	}, 0)

	a.renderer.RequestRender()
	a.logger.Info("editor started", "rows", a.model.Rows(), "cols", a.model.Cols())
	return a, nil
}

func (a *App) clipboardOptions() []clipboard.Option {
	cfg := a.cfg
	paste := cfg.PasteDebounce
	if paste <= 0 {
		paste = clipboard.DefaultPasteDebounce
	}
	opts := []clipboard.Option{
		clipboard.WithLogger(a.logger),
		clipboard.WithClock(cfg.Clock),
		clipboard.WithPasteDebounce(a.timers, paste),
		clipboard.WithView(a.renderer),
	}
	if cfg.DedupWindow > 0 {
		opts = append(opts, clipboard.WithDedupWindow(cfg.DedupWindow))
	}
	if cfg.ClipboardWriter != nil {
		opts = append(opts, clipboard.WithWriter(cfg.ClipboardWriter))
	} else {
		opts = append(opts, clipboard.WithWriter(clipboard.NewSystemWriter(cfg.ClipboardCommand, cfg.ClipboardOut)))
	}
	if cfg.ClipboardReader != nil {
		opts = append(opts, clipboard.WithReader(cfg.ClipboardReader))
	}
	return opts
}

// LoadScripts runs macro files in order, creating the script engine on
// first use. It stops at the first failing script.
func (a *App) LoadScripts(ctx context.Context, paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	if a.macros == nil {
		engine, err := macro.New(macro.Deps{
			Model:     a.model,
			Selection: a.sel,
			History:   a.hist,
			Bus:       a.bus,
			Logger:    a.logger.WithGroup("macro"),
		})
		if err != nil {
			return err
		}
		a.macros = engine
	}
	defer a.queue.Drain()
	for _, p := range paths {
		if err := a.macros.RunFile(ctx, p); err != nil {
			return fmt.Errorf("load scripts: %w", err)
		}
	}
	a.setStatus(fmt.Sprintf("Loaded %d script(s)", len(paths)))
	return nil
}

func (a *App) setStatus(msg string) {
	a.bus.Emit(bus.EventStatus, msg)
}

// ID is the instance id attached to every log record.
func (a *App) ID() string { return a.id }

func (a *App) Model() *grid.Model { return a.model }
func (a *App) Selection() *selection.Selection { return a.sel }
func (a *App) History() *history.Manager { return a.hist }
func (a *App) Bus() *bus.Bus { return a.bus }
func (a *App) Renderer() *render.Renderer { return a.renderer }
func (a *App) Actions() *actions.Actions { return a.actions }
func (a *App) Editor() *editor.Editor { return a.editor }
func (a *App) Macros() *macro.Engine { return a.macros }
func (a *App) Status() string { return a.status }
func (a *App) Frames() *schedule.Frames { return a.frames }
