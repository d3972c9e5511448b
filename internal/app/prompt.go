package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/joeycumines/gridedit/internal/actions"
	"github.com/joeycumines/gridedit/internal/argv"
	"github.com/joeycumines/gridedit/internal/bus"
)

type promptKind int

const (
	promptNone promptKind = iota
	// promptFilter filters rows as the user types. A leading "=" makes the
	// text an expression instead of a search.
	promptFilter
	// promptRun invokes a bus action by name, with optional arguments.
	promptRun
)

type prompt struct {
	kind  promptKind
	input textinput.Model
	// prev is restored when a filter prompt is dismissed.
	prev actions.FilterRequest
}

func (p *prompt) open() bool { return p.kind != promptNone }

func (a *App) openPrompt(kind promptKind) tea.Cmd {
	in := textinput.New()
	in.CharLimit = 512
	in.Width = max(a.width-12, 10)
	switch kind {
	case promptFilter:
		in.Prompt = "Filter: "
		in.Placeholder = "text, or =expression"
		prev := a.actions.Filter()
		a.prompt.prev = prev
		switch {
		case prev.Expr != "":
			in.SetValue("=" + prev.Expr)
		default:
			in.SetValue(prev.Query)
		}
	case promptRun:
		in.Prompt = "Run: "
		in.Placeholder = "action [payload]"
		in.ShowSuggestions = true
		in.SetSuggestions(a.bus.Actions())
	}
	a.bus.Emit(bus.EventDismiss, nil)
	a.prompt.kind = kind
	a.prompt.input = in
	return a.prompt.input.Focus()
}

func (a *App) closePrompt() {
	a.prompt.input.Blur()
	a.prompt.kind = promptNone
}

func (a *App) promptKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		if a.prompt.kind == promptFilter {
			a.filter.Cancel()
			a.restoreFilter(a.prompt.prev)
		}
		a.closePrompt()
		return nil
	case tea.KeyEnter:
		value := a.prompt.input.Value()
		kind := a.prompt.kind
		a.closePrompt()
		switch kind {
		case promptFilter:
			a.filter.Cancel()
			a.applyFilter(value)
		case promptRun:
			a.runAction(value)
		}
		return nil
	}

	before := a.prompt.input.Value()
	var cmd tea.Cmd
	a.prompt.input, cmd = a.prompt.input.Update(msg)
	if value := a.prompt.input.Value(); a.prompt.kind == promptFilter && value != before {
		a.filter.Call(func() { a.applyFilter(value) })
	}
	return cmd
}

func filterRequest(text string) actions.FilterRequest {
	text = strings.TrimSpace(text)
	if expr, ok := strings.CutPrefix(text, "="); ok {
		return actions.FilterRequest{Col: -1, Expr: strings.TrimSpace(expr)}
	}
	return actions.FilterRequest{Col: -1, Query: text}
}

// applyFilter filters on the prompt text. Failures are reported on the
// status line by the action itself.
func (a *App) applyFilter(text string) {
	if _, err := a.bus.Act("view.filter", filterRequest(text)); err != nil {
		a.logger.Debug("filter rejected", "text", text, "error", err)
	}
}

func (a *App) restoreFilter(prev actions.FilterRequest) {
	if prev == a.actions.Filter() {
		return
	}
	_, _ = a.actions.ApplyFilter(prev)
}

// runAction invokes the action named on the line. Arguments after the name
// become the payload (see argv.Parse).
func (a *App) runAction(text string) {
	inv, err := argv.Parse(text)
	switch {
	case errors.Is(err, argv.ErrEmpty):
		return
	case err != nil:
		a.setStatus(fmt.Sprintf("Run: %v", err))
		return
	}
	res, err := a.bus.Act(inv.Name, inv.Payload)
	switch {
	case err != nil:
		a.logger.Warn("action failed", "action", inv.Name, "error", err)
		a.setStatus(fmt.Sprintf("%s: %v", inv.Name, err))
	case res != nil:
		a.setStatus(fmt.Sprintf("%s: %v", inv.Name, res))
	default:
		a.setStatus(inv.Name)
	}
}
