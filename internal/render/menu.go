package render

import (
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"
)

// MenuItem is one context menu entry. An empty Action is a separator.
type MenuItem struct {
	Label    string
	Shortcut string
	Action   string
}

// ContextMenuItems is the context menu, in display order.
var ContextMenuItems = []MenuItem{
	{Label: "Copy", Shortcut: "Ctrl+C", Action: "clipboard.copy"},
	{Label: "Cut", Shortcut: "Ctrl+X", Action: "clipboard.cut"},
	{Label: "Paste", Shortcut: "Ctrl+V", Action: "clipboard.paste"},
	{},
	{Label: "Insert row below", Shortcut: "Ctrl+O", Action: "row.insertBelow"},
	{Label: "Delete row", Shortcut: "Ctrl+K", Action: "row.delete"},
	{Label: "Insert column right", Action: "col.insertRight"},
	{Label: "Delete column", Action: "col.delete"},
	{},
	{Label: "Auto-fit column", Action: "col.autofit"},
}

type contextMenu struct {
	visible    bool
	x, y, w, h int
	selected   int
}

func menuSize() (w, h int) {
	inner := 0
	for _, it := range ContextMenuItems {
		n := runewidth.StringWidth(it.Label)
		if it.Shortcut != "" {
			n += 2 + runewidth.StringWidth(it.Shortcut)
		}
		inner = max(inner, n)
	}
	return inner + 4, len(ContextMenuItems) + 2
}

// ShowContextMenu opens the menu with its top-left corner at (x, y),
// shifted left and up as needed to stay inside the viewport.
func (r *Renderer) ShowContextMenu(x, y int) {
	w, h := menuSize()
	x = max(min(x, r.width-w), 0)
	y = max(min(y, r.height-h), 0)
	r.menu = contextMenu{visible: true, x: x, y: y, w: w, h: h, selected: nextItem(-1, 1)}
}

// HideContextMenu closes the menu.
func (r *Renderer) HideContextMenu() { r.menu.visible = false }

// MenuVisible reports whether the context menu is open.
func (r *Renderer) MenuVisible() bool { return r.menu.visible }

// MenuPosition returns the menu's top-left corner.
func (r *Renderer) MenuPosition() (x, y int) { return r.menu.x, r.menu.y }

// MenuMove moves the keyboard highlight by delta items, skipping
// separators and wrapping around.
func (r *Renderer) MenuMove(delta int) {
	if !r.menu.visible || delta == 0 {
		return
	}
	step := 1
	if delta < 0 {
		step, delta = -1, -delta
	}
	for range delta {
		r.menu.selected = nextItem(r.menu.selected, step)
	}
}

// MenuSelected returns the action of the highlighted item.
func (r *Renderer) MenuSelected() (string, bool) {
	if !r.menu.visible || r.menu.selected < 0 {
		return "", false
	}
	return ContextMenuItems[r.menu.selected].Action, true
}

func nextItem(from, step int) int {
	n := len(ContextMenuItems)
	i := from
	for range n {
		i = ((i+step)%n + n) % n
		if ContextMenuItems[i].Action != "" {
			return i
		}
	}
	return -1
}

func (r *Renderer) menuZone(i int) string {
	return r.prefix + "menu-" + strconv.Itoa(i)
}

// MenuItemAt resolves a mouse event against the open menu. inside is true
// for any position on the menu, action is empty for borders and
// separators.
func (r *Renderer) MenuItemAt(msg tea.MouseMsg) (action string, inside bool) {
	m := r.menu
	if !m.visible {
		return "", false
	}
	if r.zones != nil {
		for i, it := range ContextMenuItems {
			if it.Action == "" {
				continue
			}
			if z := r.zones.Get(r.menuZone(i)); z != nil && !z.IsZero() && z.InBounds(msg) {
				return it.Action, true
			}
		}
	}
	if msg.X < m.x || msg.X >= m.x+m.w || msg.Y < m.y || msg.Y >= m.y+m.h {
		return "", false
	}
	i := msg.Y - m.y - 1
	if msg.X > m.x && msg.X < m.x+m.w-1 && i >= 0 && i < len(ContextMenuItems) {
		return ContextMenuItems[i].Action, true
	}
	return "", true
}

func (r *Renderer) drawMenu(frame *canvas) {
	m := r.menu
	if !m.visible {
		return
	}
	normal := frame.style(r.theme.Menu.Style())
	hot := frame.style(r.theme.MenuSelected.Style())
	inner := m.w - 2

	frame.text(m.x, m.y, m.w, "╭"+strings.Repeat("─", inner)+"╮", normal)
	for i, it := range ContextMenuItems {
		y := m.y + 1 + i
		if it.Action == "" {
			frame.text(m.x, y, m.w, "├"+strings.Repeat("─", inner)+"┤", normal)
			continue
		}
		style := normal
		if i == m.selected {
			style = hot
		}
		label := " " + it.Label
		pad := inner - 1 - runewidth.StringWidth(label) - runewidth.StringWidth(it.Shortcut)
		line := label + strings.Repeat(" ", max(pad, 1)) + it.Shortcut + " "
		frame.text(m.x, y, 1, "│", normal)
		frame.text(m.x+1, y, inner, line, style)
		frame.text(m.x+m.w-1, y, 1, "│", normal)
		frame.mark(m.x+1, y, inner, 1, r.menuZone(i))
	}
	frame.text(m.x, m.y+m.h-1, m.w, "╰"+strings.Repeat("─", inner)+"╯", normal)
}
