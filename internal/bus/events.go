package bus

// Events shared between the editor's components.
const (
	// EventSelectionChanged is emitted after the selection moves. The
	// payload is a SelectionChange or nil.
	EventSelectionChanged = "selection.changed"
	// EventDismiss closes transient UI such as the context menu.
	EventDismiss = "ui.dismiss"
	// EventStatus carries a one-line message for the status bar, as a
	// string payload. An empty string clears it.
	EventStatus = "ui.status"
)

// SelectionChange is the payload of EventSelectionChanged.
type SelectionChange struct {
	// NoScroll suppresses scrolling the active cell into view.
	NoScroll bool
}

// ShouldScroll reports whether a selection.changed payload asks for the
// active cell to be scrolled into view.
func ShouldScroll(payload any) bool {
	switch p := payload.(type) {
	case SelectionChange:
		return !p.NoScroll
	case *SelectionChange:
		return p == nil || !p.NoScroll
	}
	return true
}
