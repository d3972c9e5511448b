package app

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// frameMsg flushes the frame queue.
type frameMsg struct{}

// timerMsg runs a callback that was scheduled on the timer queue.
type timerMsg struct{ fn func() }

var _ tea.Model = (*App)(nil)

func (a *App) Init() tea.Cmd {
	return a.schedule()
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := a.handle(msg)
	a.queue.Drain()
	return a, tea.Batch(cmd, a.schedule())
}

func (a *App) handle(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		a.help.Width = msg.Width
		a.layout()
		return nil

	case frameMsg:
		a.tickPending = false
		a.frames.Flush()
		return nil

	case timerMsg:
		msg.fn()
		return nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case tea.MouseMsg:
		if _, h := a.renderer.Viewport(); msg.Y < h {
			a.mouse.HandleMouse(msg)
		}
		return nil
	}

	var cmds []tea.Cmd
	if a.prompt.open() {
		var cmd tea.Cmd
		a.prompt.input, cmd = a.prompt.input.Update(msg)
		cmds = append(cmds, cmd)
	}
	cmds = append(cmds, a.editor.Update(msg))
	return tea.Batch(cmds...)
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	if a.prompt.open() {
		return a.promptKey(msg)
	}
	if key.Matches(msg, a.keys.Quit) {
		a.logger.Info("quit requested")
		return tea.Quit
	}
	if !a.editor.Editing() {
		switch {
		case key.Matches(msg, a.keys.Help):
			a.help.ShowAll = !a.help.ShowAll
			a.layout()
			return nil
		case key.Matches(msg, a.keys.Filter):
			return a.openPrompt(promptFilter)
		case key.Matches(msg, a.keys.Run):
			return a.openPrompt(promptRun)
		}
	}
	_, cmd := a.keyboard.HandleKey(msg)
	return cmd
}

// schedule turns pending frames into a single tick and hands queued timers
// to the runtime.
func (a *App) schedule() tea.Cmd {
	var cmds []tea.Cmd
	if a.frames.Pending() && !a.tickPending {
		a.tickPending = true
		cmds = append(cmds, tea.Tick(a.cfg.FrameInterval, func(time.Time) tea.Msg { return frameMsg{} }))
	}
	a.timers.Take(func(d time.Duration, fn func()) {
		cmds = append(cmds, tea.Tick(d, func(time.Time) tea.Msg { return timerMsg{fn: fn} }))
	})
	return tea.Batch(cmds...)
}

// layout gives the grid everything above the status and help lines.
func (a *App) layout() {
	if a.width <= 0 || a.height <= 0 {
		return
	}
	h := a.height - 1 - lipgloss.Height(a.helpView())
	a.renderer.SetViewport(a.width, max(h, 3))
}

func (a *App) View() string {
	if a.width <= 0 || a.height <= 0 {
		return ""
	}
	return a.zones.Scan(lipgloss.JoinVertical(lipgloss.Left,
		a.renderer.View(),
		a.statusView(),
		a.helpView(),
	))
}

func (a *App) helpView() string {
	return a.help.View(a.keys)
}
