package command

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/joeycumines/gridedit/internal/app"
	"github.com/joeycumines/gridedit/internal/config"
	"github.com/joeycumines/gridedit/internal/grid"
	"github.com/joeycumines/gridedit/internal/logging"
	"github.com/joeycumines/gridedit/internal/render"
	"github.com/joeycumines/gridedit/internal/storage"
	"github.com/joeycumines/gridedit/internal/suggest"
)

// ErrNotTerminal is returned when edit is started without a terminal.
var ErrNotTerminal = errors.New("edit requires an interactive terminal")

// EditCommand opens the interactive grid editor.
type EditCommand struct {
	*BaseCommand
	config *config.Config

	rows, cols    int
	zoom          float64
	tsvPath       string
	headers       string
	script        string
	suggestPath   string
	journalPath   string
	outPath       string
	themePath     string
	noColor       bool
	logFile       string
	logLevel      string
	logBufferSize int

	input  *os.File
	output *os.File
	// isTerminal, runProgram and the signal hooks are replaced in tests.
	isTerminal   func(fd int) bool
	runProgram   func(ctx context.Context, m tea.Model, opts ...tea.ProgramOption) error
	signalNotify func(c chan<- os.Signal, sig ...os.Signal)
	signalStop   func(c chan<- os.Signal)
}

func NewEditCommand(cfg *config.Config) *EditCommand {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	c := &EditCommand{
		BaseCommand: NewBaseCommand(
			"edit",
			"Open the interactive grid editor",
			"edit [options] [file.tsv]",
		),
		config:       cfg,
		input:        os.Stdin,
		output:       os.Stdout,
		isTerminal:   term.IsTerminal,
		signalNotify: signal.Notify,
		signalStop:   signal.Stop,
	}
	c.runProgram = c.teaProgram
	return c
}

func (c *EditCommand) SetupFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.rows, "rows", 0, "Initial number of rows (default from grid.rows)")
	fs.IntVar(&c.cols, "cols", 0, "Initial number of columns (default from grid.cols)")
	fs.Float64Var(&c.zoom, "zoom", 0, "Initial zoom factor (default from grid.zoom)")
	fs.StringVar(&c.tsvPath, "tsv", "", "Tab-separated file loaded at A1")
	fs.StringVar(&c.headers, "headers", "", "Comma-separated column titles")
	fs.StringVar(&c.script, "script", "", "Macro script (JavaScript) loaded on start")
	fs.StringVar(&c.suggestPath, "suggest", "", "Tab-separated suggestion sheet; the first line holds titles")
	fs.StringVar(&c.journalPath, "journal", "", "Write the command journal (YAML) here on exit")
	fs.StringVar(&c.outPath, "out", "", "Write the grid as TSV here on exit")
	fs.StringVar(&c.themePath, "theme", "", "TOML theme file")
	fs.BoolVar(&c.noColor, "no-color", false, "Disable colors")
	fs.StringVar(&c.logFile, "log-file", "", "Log file path (rotated)")
	fs.StringVar(&c.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	fs.IntVar(&c.logBufferSize, "log-buffer-size", 0, "In-memory log buffer size (entries)")
}

func (c *EditCommand) Execute(args []string, stdout, stderr io.Writer) error {
	switch len(args) {
	case 0:
	case 1:
		if c.tsvPath != "" && c.tsvPath != args[0] {
			return fmt.Errorf("both -tsv %s and %s given", c.tsvPath, args[0])
		}
		c.tsvPath = args[0]
	default:
		_, _ = fmt.Fprintf(stderr, "unexpected arguments: %v\n", args[1:])
		return errors.New("unexpected arguments")
	}

	lc, err := resolveLogConfig(c.logFile, c.logLevel, c.logBufferSize, c.config)
	if err != nil {
		return err
	}
	logCfg := logging.Config{Level: lc.level, BufferSize: lc.bufferSize}
	if lc.logFile != nil {
		defer lc.logFile.Close()
		logCfg.File = lc.logFile
	}
	logger, logBuf := logging.New(logCfg)
	for _, w := range c.config.Warnings {
		logger.Warn("config issue", "issue", w)
	}

	if c.noColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	cfg, err := c.appConfig(logger, logBuf)
	if err != nil {
		return err
	}
	if !c.isTerminal(int(c.input.Fd())) || !c.isTerminal(int(c.output.Fd())) {
		return ErrNotTerminal
	}

	editor, err := app.New(cfg)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if script := c.resolve("script", c.script); script != "" {
		if err := editor.LoadScripts(ctx, expandHome(script)); err != nil {
			return err
		}
	}

	runErr := c.runProgram(ctx, editor, tea.WithAltScreen(), tea.WithMouseCellMotion())
	logger.Info("editor closed", "error", runErr)

	// Output is written even after a failed run so edits are not lost.
	saveErr := c.save(editor, stdout)
	return errors.Join(runErr, saveErr)
}

// resolve returns the flag value, or the [edit] config value for key.
func (c *EditCommand) resolve(key, flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return config.DefaultSchema().Resolve(c.config, c.Name(), key)
}

// appConfig builds the editor configuration: flags, then config and env,
// then defaults.
func (c *EditCommand) appConfig(logger *slog.Logger, logBuf *logging.Buffer) (app.Config, error) {
	schema := config.DefaultSchema()
	cfg := app.Config{
		Rows:             c.rows,
		Cols:             c.cols,
		Zoom:             c.zoom,
		Headers:          splitHeaders(c.resolve("headers", c.headers)),
		Journal:          c.journalPath != "",
		ClipboardCommand: schema.Resolve(c.config, c.Name(), "clipboard.command"),
		ClipboardOut:     os.Stderr,
		Logger:           logger,
		Log:              logBuf,
	}

	var errs []error
	intOpt := func(dst *int, key string) {
		if *dst > 0 {
			return
		}
		n, err := schema.ResolveInt(c.config, c.Name(), key)
		errs = append(errs, err)
		*dst = n
	}
	intOpt(&cfg.Rows, "grid.rows")
	intOpt(&cfg.Cols, "grid.cols")
	intOpt(&cfg.HistoryLimit, "history.limit")
	if cfg.Zoom <= 0 {
		z, err := schema.ResolveFloat(c.config, c.Name(), "grid.zoom")
		errs = append(errs, err)
		cfg.Zoom = z
	}
	for dst, key := range map[*time.Duration]string{
		&cfg.FrameInterval: "render.frame-interval",
		&cfg.KeyDebounce:   "keyboard.debounce",
		&cfg.DedupWindow:   "clipboard.dedup-window",
		&cfg.PasteDebounce: "clipboard.paste-debounce",
	} {
		d, err := schema.ResolveDuration(c.config, c.Name(), key)
		errs = append(errs, err)
		*dst = d
	}
	if cfg.KeyDebounce == 0 {
		// An explicit zero turns the debounce off rather than selecting the default.
		cfg.KeyDebounce = -1
	}
	if err := errors.Join(errs...); err != nil {
		return app.Config{}, err
	}

	if c.tsvPath != "" {
		data, err := os.ReadFile(expandHome(c.tsvPath))
		if err != nil {
			return app.Config{}, fmt.Errorf("failed to read tsv: %w", err)
		}
		cfg.TSV = string(data)
	}

	if path := c.resolve("render.theme", c.themePath); path != "" {
		theme, err := render.LoadTheme(expandHome(path))
		if err != nil {
			return app.Config{}, err
		}
		cfg.Theme = &theme
	}

	if path := c.resolve("suggest", c.suggestPath); path != "" {
		engine, err := loadSuggestions(expandHome(path), c.config.Aliases)
		if err != nil {
			return app.Config{}, err
		}
		logger.Info("loaded suggestions", "path", path, "keys", len(engine.Keys()))
		cfg.Suggestions = engine
	}

	return cfg, nil
}

// loadSuggestions indexes a TSV sheet. Config aliases extend the built-in
// title aliases.
func loadSuggestions(path string, extra map[string][]string) (*suggest.Engine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read suggestions: %w", err)
	}
	engine := suggest.New()
	if len(extra) > 0 {
		aliases := maps.Clone(suggest.DefaultAliases)
		for key, alts := range extra {
			k := engine.Normalize(key)
			aliases[k] = append(slices.Clone(aliases[k]), alts...)
		}
		engine.SetAliases(aliases)
	}
	engine.Rebuild(suggest.SheetFromTSV(string(data)))
	return engine, nil
}

// save writes the grid and the journal when their paths were given.
func (c *EditCommand) save(editor *app.App, stdout io.Writer) error {
	var errs []error
	if c.outPath != "" {
		m := editor.Model()
		text := m.ExportTSV(usedRange(m))
		if err := storage.AtomicWriteFile(expandHome(c.outPath), []byte(text+"\n"), 0o644); err != nil {
			errs = append(errs, fmt.Errorf("failed to write grid: %w", err))
		} else {
			_, _ = fmt.Fprintf(stdout, "Wrote %s\n", c.outPath)
		}
	}
	if c.journalPath != "" {
		if err := storage.AtomicWrite(expandHome(c.journalPath), 0o644, editor.History().WriteJournal); err != nil {
			errs = append(errs, fmt.Errorf("failed to write journal: %w", err))
		}
	}
	return errors.Join(errs...)
}

// usedRange is the smallest range from A1 holding every non-empty cell.
func usedRange(m *grid.Model) grid.Rect {
	lastR, lastC := 0, 0
	for r := range m.Rows() {
		for c := range m.Cols() {
			if m.Get(r, c) != "" {
				lastR, lastC = max(lastR, r), max(lastC, c)
			}
		}
	}
	return grid.Rect{R1: lastR, C1: lastC}
}

// teaProgram runs the editor until it quits, the context ends or a
// termination signal arrives.
func (c *EditCommand) teaProgram(ctx context.Context, m tea.Model, opts ...tea.ProgramOption) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	opts = append(opts, tea.WithInput(c.input), tea.WithOutput(c.output), tea.WithContext(ctx))
	p := tea.NewProgram(m, opts...)

	sigCh := make(chan os.Signal, 1)
	c.signalNotify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer c.signalStop(sigCh)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		select {
		case <-ctx.Done():
		case <-sigCh:
		}
		p.Quit()
	}()
	defer wg.Wait()
	defer cancel()

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("failed to run program: %w", err)
	}
	return nil
}

func splitHeaders(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for h := range strings.SplitSeq(s, ",") {
		out = append(out, strings.TrimSpace(h))
	}
	return out
}

// expandHome replaces a leading ~/ with the user's home directory.
func expandHome(path string) string {
	rest, ok := strings.CutPrefix(path, "~"+string(filepath.Separator))
	if !ok {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, rest)
}
