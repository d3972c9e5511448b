package app

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeycumines/gridedit/internal/actions"
	"github.com/joeycumines/gridedit/internal/grid"
	"github.com/joeycumines/gridedit/internal/logging"
	"github.com/joeycumines/gridedit/internal/schedule"
	"github.com/joeycumines/gridedit/internal/testutil"
)

type fixture struct {
	*App
	clock *schedule.FakeClock
	clip  *testutil.Clipboard
	log   *logging.Buffer
}

func newFixture(t *testing.T, cfg Config) *fixture {
	t.Helper()
	f := &fixture{
		clock: schedule.NewFakeClock(time.Now()),
		clip:  &testutil.Clipboard{},
	}
	logger, buf := logging.New(logging.Config{Level: slog.LevelDebug})
	f.log = buf
	if cfg.Rows == 0 {
		cfg.Rows, cfg.Cols = 5, 3
	}
	cfg.Clock = f.clock.Now
	cfg.KeyDebounce = -1
	cfg.ClipboardWriter = f.clip
	cfg.ClipboardReader = f.clip
	cfg.Logger = logger
	cfg.Log = buf

	a, err := New(cfg)
	require.NoError(t, err)
	f.App = a
	// Route the filter prompt's delay through the fake clock.
	a.filter = schedule.NewDebouncer(f.clock, filterDelay)
	f.send(tea.WindowSizeMsg{Width: 80, Height: 24})
	return f
}

func (f *fixture) send(msg tea.Msg) tea.Cmd {
	_, cmd := f.Update(msg)
	return cmd
}

func (f *fixture) key(t tea.KeyType) tea.Cmd { return f.send(tea.KeyMsg{Type: t}) }

func (f *fixture) typeText(s string) {
	f.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func TestNew_Defaults(t *testing.T) {
	a, err := New(Config{})
	require.NoError(t, err)
	assert.Equal(t, DefaultRows, a.Model().Rows())
	assert.Equal(t, DefaultCols, a.Model().Cols())
	assert.NotEmpty(t, a.ID())
	assert.Nil(t, a.Macros())
	assert.Equal(t, "", a.View(), "no view before the first window size")
}

func TestNew_LoadsTSV(t *testing.T) {
	f := newFixture(t, Config{Rows: 2, Cols: 2, TSV: "a\tb\nc\td\ne\tf"})
	assert.Equal(t, "f", f.Model().Get(2, 1), "grid grows to fit")
	assert.Equal(t, 3, f.Model().Rows())
}

func TestWindowSize_Layout(t *testing.T) {
	f := newFixture(t, Config{})
	w, h := f.Renderer().Viewport()
	assert.Equal(t, 80, w)
	assert.Less(t, h, 24)
	assert.GreaterOrEqual(t, h, 3)

	f.send(tea.WindowSizeMsg{Width: 40, Height: 2})
	_, h = f.Renderer().Viewport()
	assert.Equal(t, 3, h, "viewport keeps a minimum height")
}

func TestKeys_MoveSelection(t *testing.T) {
	f := newFixture(t, Config{})
	f.key(tea.KeyDown)
	f.key(tea.KeyRight)
	assert.Equal(t, grid.Cell{R: 1, C: 1}, f.Selection().Active())
	assert.Contains(t, f.statusView(), "B2")

	f.key(tea.KeyShiftDown)
	assert.Contains(t, f.statusView(), "B2:B3")
}

func TestSchedule_SingleFrameTick(t *testing.T) {
	f := newFixture(t, Config{})
	assert.True(t, f.tickPending, "initial render is scheduled")

	f.Renderer().RequestRender()
	f.key(tea.KeyDown)
	assert.True(t, f.tickPending)

	f.send(frameMsg{})
	assert.False(t, f.Frames().Pending())
	assert.False(t, f.tickPending)
}

func TestTimerMsg_Runs(t *testing.T) {
	f := newFixture(t, Config{})
	ran := false
	f.send(timerMsg{fn: func() { ran = true }})
	assert.True(t, ran)
}

func TestStatus_FromBus(t *testing.T) {
	f := newFixture(t, Config{})
	f.setStatus("hello there")
	f.queue.Drain()
	assert.Equal(t, "hello there", f.Status())
	assert.Contains(t, f.statusView(), "hello there")

	f.clock.Advance(time.Second)
	f.logger.Warn("disk almost full")
	assert.Contains(t, f.statusView(), "disk almost full", "newer warnings replace the status")

	f.clock.Advance(time.Second)
	f.setStatus("later")
	f.queue.Drain()
	assert.Contains(t, f.statusView(), "later")
}

func TestFilterPrompt(t *testing.T) {
	f := newFixture(t, Config{TSV: "apple\nbanana\napricot"})

	f.key(tea.KeyCtrlF)
	require.True(t, f.prompt.open())
	assert.Contains(t, f.statusView(), "Filter:")

	f.typeText("ap")
	assert.Nil(t, f.Renderer().RowIndexList(), "filtering waits for the typing to settle")
	f.clock.Advance(filterDelay)
	f.queue.Drain()
	assert.Equal(t, []int{0, 2}, f.Renderer().RowIndexList())

	f.key(tea.KeyEnter)
	assert.False(t, f.prompt.open())
	assert.Equal(t, "ap", f.Actions().Filter().Query)

	f.key(tea.KeyCtrlF)
	assert.Equal(t, "ap", f.prompt.input.Value(), "reopening shows the current filter")
	f.key(tea.KeyBackspace)
	f.key(tea.KeyBackspace)
	f.typeText("=A == 'banana'")
	f.key(tea.KeyEnter)
	assert.Equal(t, actions.FilterRequest{Col: -1, Expr: "A == 'banana'"}, f.Actions().Filter())
	assert.Equal(t, []int{1}, f.Renderer().RowIndexList())
}

func TestFilterPrompt_EscRestores(t *testing.T) {
	f := newFixture(t, Config{TSV: "apple\nbanana\napricot"})
	f.key(tea.KeyCtrlF)
	f.typeText("ban")
	f.clock.Advance(filterDelay)
	f.queue.Drain()
	assert.Equal(t, []int{1}, f.Renderer().RowIndexList())

	f.key(tea.KeyEsc)
	assert.False(t, f.prompt.open())
	assert.False(t, f.Actions().Filter().Active())
	assert.Nil(t, f.Renderer().RowIndexList())

	f.key(tea.KeyCtrlF)
	f.typeText("x")
	f.key(tea.KeyEsc)
	f.clock.Advance(filterDelay)
	assert.False(t, f.Actions().Filter().Active(), "cancelled filter never fires")
}

func TestRunPrompt(t *testing.T) {
	f := newFixture(t, Config{})
	f.key(tea.KeyCtrlP)
	require.True(t, f.prompt.open())
	assert.Contains(t, f.prompt.input.AvailableSuggestions(), "zoom.in")

	f.typeText("zoom.in")
	f.key(tea.KeyEnter)
	f.queue.Drain()
	assert.False(t, f.prompt.open())
	assert.InDelta(t, 1.1, f.Renderer().Zoom(), 1e-9)
	assert.Contains(t, f.Status(), "zoom.in")
	assert.Contains(t, f.statusView(), "110%")

	f.key(tea.KeyCtrlP)
	f.typeText("no.such.action")
	f.key(tea.KeyEnter)
	f.queue.Drain()
	assert.Contains(t, f.Status(), "unknown action")
}

func TestRunPrompt_Payload(t *testing.T) {
	f := newFixture(t, Config{TSV: "apple\nbanana"})
	f.key(tea.KeyCtrlP)
	f.typeText("view.filter nan")
	f.key(tea.KeyEnter)
	assert.Equal(t, "nan", f.Actions().Filter().Query)
	assert.Equal(t, []int{1}, f.Renderer().RowIndexList())

	f.key(tea.KeyCtrlP)
	f.typeText("view.filter col=0 query=app")
	f.key(tea.KeyEnter)
	assert.Equal(t, actions.FilterRequest{Col: 0, Query: "app"}, f.Actions().Filter())
	assert.Equal(t, []int{0}, f.Renderer().RowIndexList())

	f.key(tea.KeyCtrlP)
	f.typeText(`view.filter "open`)
	f.key(tea.KeyEnter)
	f.queue.Drain()
	assert.Contains(t, f.Status(), "unterminated quote")
	assert.Equal(t, "app", f.Actions().Filter().Query, "a bad line runs nothing")
}

func TestHelpToggle(t *testing.T) {
	f := newFixture(t, Config{})
	_, short := f.Renderer().Viewport()
	f.key(tea.KeyF1)
	_, full := f.Renderer().Viewport()
	assert.Less(t, full, short, "full help takes more lines")
	f.key(tea.KeyF1)
	_, h := f.Renderer().Viewport()
	assert.Equal(t, short, h)
}

func TestQuit(t *testing.T) {
	f := newFixture(t, Config{})
	cmd := f.handleKey(tea.KeyMsg{Type: tea.KeyCtrlQ})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestView(t *testing.T) {
	f := newFixture(t, Config{Headers: []string{"Name"}, TSV: "hello"})
	f.send(frameMsg{})
	view := f.View()
	assert.Contains(t, view, "Name")
	assert.Contains(t, view, "hello")
	assert.Contains(t, view, "A1")
}

func TestClipboard_CopyThroughKeys(t *testing.T) {
	f := newFixture(t, Config{TSV: "a\tb"})
	f.key(tea.KeyShiftRight)
	f.key(tea.KeyCtrlC)
	f.queue.Drain()
	assert.Equal(t, "a\tb", f.clip.Text)
}

func TestLoadScripts(t *testing.T) {
	f := newFixture(t, Config{})
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "macros.js", `
bus.registerAction("fill.hello", () => { grid.set(0, 0, "hello"); return "ok"; });
console.log("registered");
`)

	require.NoError(t, f.LoadScripts(context.Background(), path))
	require.NotNil(t, f.Macros())
	assert.Equal(t, "Loaded 1 script(s)", f.Status())
	assert.True(t, f.Bus().HasAction("fill.hello"))

	f.key(tea.KeyCtrlP)
	f.typeText("fill.hello")
	f.key(tea.KeyEnter)
	assert.Equal(t, "hello", f.Model().Get(0, 0))
	assert.True(t, f.History().CanUndo())

	entries := f.log.Entries()
	var found bool
	for _, e := range entries {
		if e.Message == "registered" {
			found = true
		}
	}
	assert.True(t, found, "console output is logged")

	bad := testutil.WriteFile(t, dir, "bad.js", `throw new Error("boom")`)
	err := f.LoadScripts(context.Background(), bad)
	require.Error(t, err)
	assert.ErrorContains(t, err, "boom")
}

func TestJournal(t *testing.T) {
	f := newFixture(t, Config{Journal: true})
	f.typeText("x")
	f.key(tea.KeyEnter)
	require.Len(t, f.History().Journal(), 1)
	assert.Equal(t, "x", f.Model().Get(0, 0))

	var buf bytes.Buffer
	require.NoError(t, f.History().WriteJournal(&buf))
	assert.Contains(t, buf.String(), "op:")
}
