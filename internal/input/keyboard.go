package input

import (
	"log/slog"
	"slices"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/joeycumines/gridedit/internal/actions"
	"github.com/joeycumines/gridedit/internal/bus"
	"github.com/joeycumines/gridedit/internal/editor"
	"github.com/joeycumines/gridedit/internal/grid"
	"github.com/joeycumines/gridedit/internal/render"
	"github.com/joeycumines/gridedit/internal/selection"
)

// Keyboard handles keys for the grid.
type Keyboard struct {
	model  *grid.Model
	sel    *selection.Selection
	editor *editor.Editor
	bus    *bus.Bus
	view   *render.Renderer
	options

	last       time.Time
	processing bool
}

func NewKeyboard(m *grid.Model, sel *selection.Selection, ed *editor.Editor, b *bus.Bus, view *render.Renderer, opts ...Option) *Keyboard {
	return &Keyboard{
		model:   m,
		sel:     sel,
		editor:  ed,
		bus:     b,
		view:    view,
		options: newOptions(opts),
	}
}

// KeyMap returns the bindings in use, for the help view.
func (k *Keyboard) KeyMap() KeyMap { return k.keys }

// HandleKey processes a key. It reports whether the key was consumed,
// which includes shortcuts dropped by the debounce window. Movement and
// typing are never debounced.
func (k *Keyboard) HandleKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	if k.processing {
		return true, nil
	}
	k.processing = true
	defer func() { k.processing = false }()

	if k.editor.Editing() {
		if action, ok := k.keys.FormatShortcut(msg); ok {
			k.act(action, nil)
			return true, nil
		}
		return k.editor.HandleKey(msg)
	}

	if k.view.MenuVisible() && k.menuKey(msg) {
		return true, nil
	}

	k.bus.Emit(bus.EventDismiss, nil)

	if msg.Paste {
		k.act("clipboard.paste", string(msg.Runes))
		return true, nil
	}
	if key.Matches(msg, k.keys.Escape) {
		return true, nil
	}
	for _, s := range k.keys.Shortcuts {
		if key.Matches(msg, s.Binding) {
			k.shortcut(s.Action, nil)
			return true, nil
		}
	}
	if (msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace) && !msg.Alt {
		initial := string(msg.Runes)
		if msg.Type == tea.KeySpace {
			initial = " "
		}
		k.act("edit.start", editor.StartOptions{Initial: &initial})
		if k.editor.Editing() {
			k.editor.SetFillAll(!k.sel.Range().IsSingle())
		}
		return true, nil
	}

	switch {
	case key.Matches(msg, k.keys.Up):
		k.move(-1, 0, false)
	case key.Matches(msg, k.keys.Down), key.Matches(msg, k.keys.Below):
		k.move(1, 0, false)
	case key.Matches(msg, k.keys.Left):
		k.move(0, -1, false)
	case key.Matches(msg, k.keys.Right), key.Matches(msg, k.keys.Next):
		k.move(0, 1, false)
	case key.Matches(msg, k.keys.Prev):
		k.move(0, -1, false)
	case key.Matches(msg, k.keys.Above):
		k.move(-1, 0, false)
	case key.Matches(msg, k.keys.ExtendUp):
		k.move(-1, 0, true)
	case key.Matches(msg, k.keys.ExtendDown):
		k.move(1, 0, true)
	case key.Matches(msg, k.keys.ExtendLeft):
		k.move(0, -1, true)
	case key.Matches(msg, k.keys.ExtendRight):
		k.move(0, 1, true)
	case key.Matches(msg, k.keys.Home):
		k.sel.ExtendTo(k.sel.Active().R, 0)
		k.bus.Emit(bus.EventSelectionChanged, nil)
	case key.Matches(msg, k.keys.End):
		k.sel.ExtendTo(k.sel.Active().R, k.model.Cols()-1)
		k.bus.Emit(bus.EventSelectionChanged, nil)
	case key.Matches(msg, k.keys.Clear):
		k.shortcut("cells.clear", nil)
	case key.Matches(msg, k.keys.SortAsc):
		k.shortcut("view.sort", actions.SortRequest{Col: k.sel.Active().C})
	case key.Matches(msg, k.keys.SortDesc):
		k.shortcut("view.sort", actions.SortRequest{Col: k.sel.Active().C, Desc: true})
	default:
		return false, nil
	}
	return true, nil
}

// menuKey drives the open context menu. Keys it does not use close the
// menu and fall through.
func (k *Keyboard) menuKey(msg tea.KeyMsg) bool {
	switch {
	case key.Matches(msg, k.keys.MenuUp):
		k.view.MenuMove(-1)
	case key.Matches(msg, k.keys.MenuDown):
		k.view.MenuMove(1)
	case key.Matches(msg, k.keys.MenuSelect):
		action, ok := k.view.MenuSelected()
		k.view.HideContextMenu()
		if ok {
			k.act(action, nil)
		}
	case key.Matches(msg, k.keys.MenuClose):
		k.view.HideContextMenu()
	default:
		k.view.HideContextMenu()
		return false
	}
	return true
}

// move steps the active cell, or the active corner when extending. Rows
// step through the displayed order, so moves follow a filter or sort.
func (k *Keyboard) move(dr, dc int, extend bool) {
	active := k.sel.Active()
	r := k.stepRow(active.R, dr)
	c := min(max(active.C+dc, 0), k.model.Cols()-1)
	if extend {
		k.sel.ExtendTo(r, c)
	} else {
		k.sel.SetActive(r, c)
	}
	k.bus.Emit(bus.EventSelectionChanged, nil)
}

func (k *Keyboard) stepRow(r, dr int) int {
	if dr == 0 {
		return r
	}
	rows := k.view.DisplayedRows()
	if i := slices.Index(rows, r); i >= 0 {
		return rows[min(max(i+dr, 0), len(rows)-1)]
	}
	return min(max(r+dr, 0), k.model.Rows()-1)
}

// shortcut runs an action unless another shortcut ran within the debounce
// window, so a held key does not repeat edits.
func (k *Keyboard) shortcut(name string, payload any) {
	now := k.now()
	if k.debounce > 0 && !k.last.IsZero() && now.Sub(k.last) < k.debounce {
		k.logger.Debug("shortcut debounced", slog.String("action", name))
		return
	}
	k.last = now
	k.act(name, payload)
}

func (k *Keyboard) act(name string, payload any) {
	if _, err := k.bus.Act(name, payload); err != nil {
		k.logger.Warn("key action failed", slog.String("action", name), slog.Any("error", err))
	}
}
