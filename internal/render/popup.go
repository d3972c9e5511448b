package render

import (
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
)

const (
	popupMaxRows  = 8
	popupMaxWidth = 40
)

// popupGeometry records where the suggestion popup was last drawn.
type popupGeometry struct {
	visible    bool
	x, y, w, h int
	first      int
	count      int
}

// layoutPopup places the suggestion list below the edited cell, or above
// it when there is no room below, clamped to the viewport.
func (r *Renderer) layoutPopup() (popupGeometry, []string, int) {
	if r.edit == nil {
		return popupGeometry{}, nil, -1
	}
	items, selected := r.edit.Suggestions()
	x, y, cw, ok := r.editorBox()
	if !ok || len(items) == 0 {
		return popupGeometry{}, nil, -1
	}
	w := cw
	for _, it := range items {
		w = max(w, displayWidth(it)+2)
	}
	w = min(w, popupMaxWidth, r.width)
	h := min(len(items), popupMaxRows)

	top := y + 1
	if top+h > r.height-1 && y-h >= colHeaderHeight {
		top = y - h
	}
	top = max(min(top, r.height-h), 0)
	x = max(min(x, r.width-w), 0)

	first := 0
	if selected >= h {
		first = selected - h + 1
	}
	first = min(first, len(items)-h)
	return popupGeometry{visible: true, x: x, y: top, w: w, h: h, first: first, count: len(items)}, items, selected
}

func (r *Renderer) suggestionZone(i int) string {
	return r.prefix + "suggest-" + strconv.Itoa(i)
}

func (r *Renderer) drawPopup(frame *canvas) {
	g, items, selected := r.layoutPopup()
	r.popup = g
	if !g.visible {
		return
	}
	normal := frame.style(r.theme.Popup.Style())
	hot := frame.style(r.theme.PopupSelected.Style())
	for k := range g.h {
		i := g.first + k
		style := normal
		if i == selected {
			style = hot
		}
		frame.text(g.x, g.y+k, g.w, fitWidth(" "+items[i], g.w, "left"), style)
		frame.mark(g.x, g.y+k, g.w, 1, r.suggestionZone(i))
	}
}

// SuggestionAt returns the index of the suggestion under a mouse event.
func (r *Renderer) SuggestionAt(msg tea.MouseMsg) (int, bool) {
	g := r.popup
	if !g.visible {
		return -1, false
	}
	if r.zones != nil {
		for k := range g.h {
			i := g.first + k
			if z := r.zones.Get(r.suggestionZone(i)); z != nil && !z.IsZero() && z.InBounds(msg) {
				return i, true
			}
		}
	}
	if msg.X < g.x || msg.X >= g.x+g.w || msg.Y < g.y || msg.Y >= g.y+g.h {
		return -1, false
	}
	return g.first + msg.Y - g.y, true
}
