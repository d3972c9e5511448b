package input

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Shortcut binds a key to a bus action.
type Shortcut struct {
	Binding key.Binding
	Action  string
}

// KeyMap holds the grid's key bindings. It implements help.KeyMap.
type KeyMap struct {
	Up, Down, Left, Right                         key.Binding
	ExtendUp, ExtendDown, ExtendLeft, ExtendRight key.Binding
	Next, Prev, Below, Above                      key.Binding
	Home, End                                     key.Binding
	Clear                                         key.Binding
	SortAsc, SortDesc                             key.Binding
	Escape                                        key.Binding

	// Shortcuts run bus actions, checked in order.
	Shortcuts []Shortcut

	MenuUp, MenuDown, MenuSelect, MenuClose key.Binding

	Filter, Run, Help, Quit key.Binding
}

// DefaultKeyMap returns the default bindings. Terminals cannot report
// ctrl+enter, ctrl+delete or shift+space, and ctrl+i is tab, so those
// shortcuts use other chords.
func DefaultKeyMap() KeyMap {
	shortcut := func(action string, keys []string, helpKey, desc string) Shortcut {
		return Shortcut{
			Binding: key.NewBinding(key.WithKeys(keys...), key.WithHelp(helpKey, desc)),
			Action:  action,
		}
	}
	return KeyMap{
		Up:          key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "up")),
		Down:        key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "down")),
		Left:        key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "left")),
		Right:       key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "right")),
		ExtendUp:    key.NewBinding(key.WithKeys("shift+up"), key.WithHelp("shift+↑", "extend up")),
		ExtendDown:  key.NewBinding(key.WithKeys("shift+down"), key.WithHelp("shift+↓", "extend down")),
		ExtendLeft:  key.NewBinding(key.WithKeys("shift+left"), key.WithHelp("shift+←", "extend left")),
		ExtendRight: key.NewBinding(key.WithKeys("shift+right"), key.WithHelp("shift+→", "extend right")),
		Next:        key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next cell")),
		Prev:        key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous cell")),
		Below:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "cell below")),
		Above:       key.NewBinding(key.WithKeys("shift+enter")),
		Home:        key.NewBinding(key.WithKeys("home"), key.WithHelp("home", "extend to row start")),
		End:         key.NewBinding(key.WithKeys("end"), key.WithHelp("end", "extend to row end")),
		Clear:       key.NewBinding(key.WithKeys("delete", "backspace"), key.WithHelp("del", "clear")),
		SortAsc:     key.NewBinding(key.WithKeys("alt+up"), key.WithHelp("alt+↑", "sort A→Z")),
		SortDesc:    key.NewBinding(key.WithKeys("alt+down"), key.WithHelp("alt+↓", "sort Z→A")),
		Escape:      key.NewBinding(key.WithKeys("esc")),

		Shortcuts: []Shortcut{
			shortcut("format.bold", []string{"ctrl+b"}, "ctrl+b", "bold"),
			shortcut("format.italic", []string{"alt+i"}, "alt+i", "italic"),
			shortcut("format.underline", []string{"ctrl+u"}, "ctrl+u", "underline"),
			shortcut("clipboard.copy", []string{"ctrl+c"}, "ctrl+c", "copy"),
			shortcut("clipboard.cut", []string{"ctrl+x"}, "ctrl+x", "cut"),
			shortcut("clipboard.paste", []string{"ctrl+v"}, "ctrl+v", "paste"),
			shortcut("select.all", []string{"ctrl+a"}, "ctrl+a", "select all"),
			shortcut("fill.down", []string{"ctrl+d"}, "ctrl+d", "fill down"),
			shortcut("undo", []string{"ctrl+z"}, "ctrl+z", "undo"),
			shortcut("redo", []string{"ctrl+y"}, "ctrl+y", "redo"),
			shortcut("select.col", []string{"ctrl+@"}, "ctrl+space", "select column"),
			shortcut("select.row", []string{"alt+ "}, "alt+space", "select row"),
			shortcut("row.insertBelow", []string{"ctrl+o"}, "ctrl+o", "insert row"),
			shortcut("row.delete", []string{"ctrl+k"}, "ctrl+k", "delete row"),
			shortcut("edit.start", []string{"f2"}, "f2", "edit"),
			shortcut("menu.open", []string{"f10"}, "f10", "menu"),
			shortcut("view.clear", []string{"ctrl+r"}, "ctrl+r", "clear filter/sort"),
			shortcut("zoom.in", []string{"alt+="}, "alt+=", "zoom in"),
			shortcut("zoom.out", []string{"alt+-"}, "alt+-", "zoom out"),
		},

		MenuUp:     key.NewBinding(key.WithKeys("up", "shift+tab")),
		MenuDown:   key.NewBinding(key.WithKeys("down", "tab")),
		MenuSelect: key.NewBinding(key.WithKeys("enter")),
		MenuClose:  key.NewBinding(key.WithKeys("esc", "f10")),

		Filter: key.NewBinding(key.WithKeys("ctrl+f"), key.WithHelp("ctrl+f", "filter")),
		Run:    key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("ctrl+p", "run action")),
		Help:   key.NewBinding(key.WithKeys("f1"), key.WithHelp("f1", "help")),
		Quit:   key.NewBinding(key.WithKeys("ctrl+q"), key.WithHelp("ctrl+q", "quit")),
	}
}

// FormatShortcut returns the format toggle bound to k, if any. These are
// the only shortcuts honoured while a cell is being edited.
func (k KeyMap) FormatShortcut(msg tea.KeyMsg) (string, bool) {
	for _, s := range k.Shortcuts {
		if strings.HasPrefix(s.Action, "format.") && key.Matches(msg, s.Binding) {
			return s.Action, true
		}
	}
	return "", false
}

func (k KeyMap) shortcut(action string) key.Binding {
	for _, s := range k.Shortcuts {
		if s.Action == action {
			return s.Binding
		}
	}
	return key.Binding{}
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.shortcut("edit.start"),
		k.shortcut("undo"),
		k.shortcut("clipboard.copy"),
		k.shortcut("clipboard.paste"),
		k.shortcut("menu.open"),
		k.Filter,
		k.Help,
		k.Quit,
	}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	var actions []key.Binding
	for _, s := range k.Shortcuts {
		actions = append(actions, s.Binding)
	}
	third := (len(actions) + 2) / 3
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right, k.ExtendUp, k.ExtendDown, k.ExtendLeft, k.ExtendRight},
		{k.Next, k.Prev, k.Below, k.Home, k.End, k.Clear, k.SortAsc, k.SortDesc},
		actions[:third],
		actions[third : 2*third],
		append(actions[2*third:], k.Filter, k.Run, k.Help, k.Quit),
	}
}
