package render

import (
	"fmt"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/lipgloss"

	"github.com/joeycumines/gridedit/internal/grid"
)

// Colors is one themed element.
type Colors struct {
	FG   string `toml:"fg"`
	BG   string `toml:"bg"`
	Bold bool   `toml:"bold"`
}

// Style converts c to a lipgloss style.
func (c Colors) Style() lipgloss.Style {
	s := lipgloss.NewStyle()
	if c.FG != "" {
		s = s.Foreground(Color(c.FG))
	}
	if c.BG != "" {
		s = s.Background(Color(c.BG))
	}
	if c.Bold {
		s = s.Bold(true)
	}
	return s
}

// Theme holds the colors of every part of the grid.
type Theme struct {
	Name           string `toml:"name"`
	Cell           Colors `toml:"cell"`
	Gridline       Colors `toml:"gridline"`
	Header         Colors `toml:"header"`
	HeaderActive   Colors `toml:"header_active"`
	Selection      Colors `toml:"selection"`
	Active         Colors `toml:"active"`
	Menu           Colors `toml:"menu"`
	MenuSelected   Colors `toml:"menu_selected"`
	Popup          Colors `toml:"popup"`
	PopupSelected  Colors `toml:"popup_selected"`
	ScrollbarThumb Colors `toml:"scrollbar_thumb"`
	ScrollbarTrack Colors `toml:"scrollbar_track"`
}

// DefaultTheme is used when no theme file is configured.
func DefaultTheme() Theme {
	return Theme{
		Name:           "default",
		Gridline:       Colors{FG: "240"},
		Header:         Colors{FG: "252", BG: "236"},
		HeaderActive:   Colors{FG: "230", BG: "24", Bold: true},
		Selection:      Colors{BG: "24"},
		Active:         Colors{FG: "230", BG: "31", Bold: true},
		Menu:           Colors{FG: "252", BG: "237"},
		MenuSelected:   Colors{FG: "230", BG: "57"},
		Popup:          Colors{FG: "252", BG: "238"},
		PopupSelected:  Colors{FG: "230", BG: "57"},
		ScrollbarThumb: Colors{BG: "57"},
		ScrollbarTrack: Colors{FG: "240"},
	}
}

// ParseTheme decodes a TOML theme over the defaults. Unknown keys are an
// error so that typos do not silently fall back.
func ParseTheme(text string) (Theme, error) {
	theme := DefaultTheme()
	md, err := toml.Decode(text, &theme)
	if err != nil {
		return Theme{}, fmt.Errorf("parse theme: %w", err)
	}
	if err := undecoded(md); err != nil {
		return Theme{}, err
	}
	return theme, nil
}

// LoadTheme reads a TOML theme file.
func LoadTheme(path string) (Theme, error) {
	theme := DefaultTheme()
	md, err := toml.DecodeFile(path, &theme)
	if err != nil {
		return Theme{}, fmt.Errorf("load theme %s: %w", path, err)
	}
	if err := undecoded(md); err != nil {
		return Theme{}, fmt.Errorf("load theme %s: %w", path, err)
	}
	return theme, nil
}

func undecoded(md toml.MetaData) error {
	keys := md.Undecoded()
	if len(keys) == 0 {
		return nil
	}
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.String()
	}
	slices.Sort(names)
	return fmt.Errorf("unknown theme keys: %s", strings.Join(names, ", "))
}

var namedColors = map[string]string{
	"black":   "#000000",
	"white":   "#ffffff",
	"red":     "#ff0000",
	"green":   "#008000",
	"lime":    "#00ff00",
	"blue":    "#0000ff",
	"yellow":  "#ffff00",
	"orange":  "#ffa500",
	"purple":  "#800080",
	"pink":    "#ffc0cb",
	"gray":    "#808080",
	"grey":    "#808080",
	"silver":  "#c0c0c0",
	"navy":    "#000080",
	"teal":    "#008080",
	"maroon":  "#800000",
	"olive":   "#808000",
	"aqua":    "#00ffff",
	"cyan":    "#00ffff",
	"fuchsia": "#ff00ff",
	"magenta": "#ff00ff",
	"brown":   "#a52a2a",
}

// Color converts a cell color value to a terminal color. It accepts
// #rgb and #rrggbb hex, ANSI palette numbers and common color names.
func Color(s string) lipgloss.TerminalColor {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "transparent" || s == "inherit" {
		return lipgloss.NoColor{}
	}
	if hex, ok := namedColors[s]; ok {
		return lipgloss.Color(hex)
	}
	if len(s) == 4 && s[0] == '#' {
		return lipgloss.Color(string([]byte{'#', s[1], s[1], s[2], s[2], s[3], s[3]}))
	}
	return lipgloss.Color(s)
}

// formatStyle maps cell formatting to a style. Font family and size have
// no terminal equivalent and are ignored.
func formatStyle(base lipgloss.Style, f grid.Format) lipgloss.Style {
	s := base
	if f.Bold {
		s = s.Bold(true)
	}
	if f.Italic {
		s = s.Italic(true)
	}
	if f.Underline {
		s = s.Underline(true)
	}
	if f.Color != "" {
		s = s.Foreground(Color(f.Color))
	}
	if f.Bg != "" {
		s = s.Background(Color(f.Bg))
	}
	return s
}
