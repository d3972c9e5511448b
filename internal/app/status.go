package app

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/joeycumines/gridedit/internal/grid"
	"github.com/joeycumines/gridedit/internal/render"
)

func (a *App) theme() render.Theme {
	if a.cfg.Theme != nil {
		return *a.cfg.Theme
	}
	return render.DefaultTheme()
}

// statusView is the line under the grid: the prompt while one is open,
// otherwise the selection, the latest message and the view state.
func (a *App) statusView() string {
	theme := a.theme()
	base := theme.Header.Style().Width(a.width).MaxWidth(a.width)
	if a.prompt.open() {
		return base.Render(a.prompt.input.View())
	}

	left := " " + a.position() + " "
	right := " " + a.viewState() + " "

	msg, warn := a.status, false
	if a.cfg.Log != nil {
		if e, ok := a.cfg.Log.Latest(slog.LevelWarn); ok && e.Time.After(a.statusAt) {
			msg, warn = e.String(), true
		}
	}
	room := a.width - lipgloss.Width(left) - lipgloss.Width(right)
	msg = ansi.Truncate(strings.ReplaceAll(msg, "\n", " "), max(room, 0), "…")
	msgStyle := lipgloss.NewStyle()
	if warn {
		msgStyle = theme.HeaderActive.Style()
	}
	pad := strings.Repeat(" ", max(room-lipgloss.Width(msg), 0))

	return base.Render(theme.HeaderActive.Style().Render(left) + msgStyle.Render(msg) + pad + right)
}

// position describes the selection: the active cell, the primary range
// when it spans several cells, and the number of extra cells.
func (a *App) position() string {
	var b strings.Builder
	if cell, ok := a.editor.EditingCell(); ok {
		fmt.Fprintf(&b, "EDIT %s", grid.ToA1(cell.R, cell.C))
		return b.String()
	}
	active := a.sel.Active()
	b.WriteString(grid.ToA1(active.R, active.C))
	if rng := a.sel.Range(); !rng.IsSingle() {
		rows, cols := rng.Size()
		fmt.Fprintf(&b, " %s (%d×%d)", rng, rows, cols)
	}
	if n := len(a.sel.Extras()); n > 0 {
		fmt.Fprintf(&b, " +%d", n)
	}
	return b.String()
}

func (a *App) viewState() string {
	var parts []string
	if rows := a.renderer.RowIndexList(); rows != nil {
		parts = append(parts, fmt.Sprintf("%d/%d rows", len(rows), a.model.Rows()))
	}
	if s, ok := a.actions.Sort(); ok {
		dir := "A→Z"
		if s.Desc {
			dir = "Z→A"
		}
		parts = append(parts, dir)
	}
	parts = append(parts, fmt.Sprintf("%d%%", int(math.Round(a.renderer.Zoom()*100))))
	return strings.Join(parts, "  ")
}
