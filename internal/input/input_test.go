package input

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/joeycumines/gridedit/internal/actions"
	"github.com/joeycumines/gridedit/internal/bus"
	"github.com/joeycumines/gridedit/internal/clipboard"
	"github.com/joeycumines/gridedit/internal/editor"
	"github.com/joeycumines/gridedit/internal/grid"
	"github.com/joeycumines/gridedit/internal/history"
	"github.com/joeycumines/gridedit/internal/render"
	"github.com/joeycumines/gridedit/internal/schedule"
	"github.com/joeycumines/gridedit/internal/selection"
)

type memClipboard struct{ text string }

func (m *memClipboard) WriteText(_ context.Context, text string) error {
	m.text = text
	return nil
}

func (m *memClipboard) ReadText(context.Context) (string, error) { return m.text, nil }

type fixture struct {
	model    *grid.Model
	sel      *selection.Selection
	hist     *history.Manager
	queue    *schedule.Queue
	frames   *schedule.Frames
	clock    *schedule.FakeClock
	bus      *bus.Bus
	renderer *render.Renderer
	editor   *editor.Editor
	mem      *memClipboard
	keyboard *Keyboard
	mouse    *Mouse
}

func newFixture(t *testing.T, rows, cols int, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		model:  grid.New(rows, cols),
		queue:  &schedule.Queue{},
		frames: schedule.NewFrames(),
		clock:  schedule.NewFakeClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
		mem:    &memClipboard{},
	}
	f.sel = selection.New(f.model)
	f.hist = history.NewManager(f.model)
	f.bus = bus.New(f.queue)
	f.renderer = render.New(f.model, f.sel, f.bus, f.frames)
	f.renderer.SetViewport(80, 24)
	f.renderer.Render()
	f.editor = editor.New(f.model, f.sel, f.hist, f.bus, f.renderer)
	f.renderer.SetEditSurface(f.editor)
	cb := clipboard.New(f.model, f.sel, f.hist, f.bus,
		clipboard.WithWriter(f.mem), clipboard.WithReader(f.mem), clipboard.WithClock(f.clock.Now),
		clipboard.WithView(f.renderer))
	_, err := actions.Register(actions.Deps{
		Model:     f.model,
		Selection: f.sel,
		History:   f.hist,
		Bus:       f.bus,
		Renderer:  f.renderer,
		Editor:    f.editor,
		Clipboard: cb,
	})
	require.NoError(t, err)

	opts = append([]Option{WithClock(f.clock.Now), WithDebounce(0)}, opts...)
	f.keyboard = NewKeyboard(f.model, f.sel, f.editor, f.bus, f.renderer, opts...)
	f.mouse = NewMouse(f.model, f.sel, f.hist, f.editor, f.bus, f.renderer, f.frames, opts...)
	return f
}

// cellPoint returns a position inside the cell's box.
func (f *fixture) cellPoint(t *testing.T, r, c int) (int, int) {
	t.Helper()
	x, ok := f.renderer.ColumnX(c)
	require.True(t, ok)
	y, ok := f.renderer.RowY(r)
	require.True(t, ok)
	return x + 1, y
}

// settle runs deferred events and pending frames.
func (f *fixture) settle() {
	f.queue.Drain()
	f.frames.Flush()
	f.queue.Drain()
}
