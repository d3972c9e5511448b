// Package scrollbar provides a visual scrollbar component for Bubble Tea applications.
package scrollbar

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Orientation selects the axis a scrollbar is drawn along.
type Orientation int

const (
	Vertical Orientation = iota
	Horizontal
)

// Model defines the state of the scrollbar.
type Model struct {
	// Orientation is the drawing axis. Vertical bars render one cell per
	// line; horizontal bars render a single line.
	Orientation Orientation
	// ContentSize is the total extent of the scrollable content.
	ContentSize int
	// ViewportSize is the extent of the visible window.
	ViewportSize int
	// Offset is the current scroll position.
	Offset int

	// ThumbStyle is the style applied to the scrollbar thumb.
	ThumbStyle lipgloss.Style
	// TrackStyle is the style applied to the scrollbar track (background).
	TrackStyle lipgloss.Style

	// ThumbChar is the character used to render the thumb.
	ThumbChar string
	// TrackChar is the character used to render the track.
	TrackChar string
}

// Option is used to set options in New.
type Option func(*Model)

// New creates a new scrollbar model with default settings.
func New(opts ...Option) Model {
	m := Model{
		ThumbChar: " ",
		TrackChar: "│",
		ThumbStyle: lipgloss.NewStyle().
			Background(lipgloss.Color("57")),
		TrackStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")),
	}

	for _, opt := range opts {
		opt(&m)
	}

	return m
}

// WithOrientation sets the drawing axis, switching the default track
// character to match.
func WithOrientation(o Orientation) Option {
	return func(m *Model) {
		m.Orientation = o
		if o == Horizontal && m.TrackChar == "│" {
			m.TrackChar = "─"
		}
	}
}

// WithStyles sets the styles for the thumb and track.
func WithStyles(thumb, track lipgloss.Style) Option {
	return func(m *Model) {
		m.ThumbStyle = thumb
		m.TrackStyle = track
	}
}

// Thumb returns the start and length of the thumb along the track. When the
// content fits in the viewport the thumb fills the track.
func (m Model) Thumb() (start, length int) {
	size := m.ViewportSize
	if size <= 0 {
		return 0, 0
	}
	content := max(m.ContentSize, 0)
	if content == 0 || content <= size {
		return 0, size
	}

	maxOffset := content - size
	offset := min(max(m.Offset, 0), maxOffset)

	// length ~= size^2 / content
	sizeF := float64(size)
	length = int(clamp(sizeF, 1, sizeF*(sizeF/float64(content))))
	length = min(max(length, 1), size)

	maxStart := size - length
	if maxStart > 0 {
		start = int(float64(offset) / float64(maxOffset) * float64(maxStart))
	}
	return min(max(start, 0), maxStart), length
}

// OffsetAt maps a position along the track to the scroll offset that
// would centre the thumb there, for click-to-jump.
func (m Model) OffsetAt(pos int) int {
	maxOffset := m.ContentSize - m.ViewportSize
	if maxOffset <= 0 || m.ViewportSize <= 1 {
		return 0
	}
	_, length := m.Thumb()
	travel := m.ViewportSize - length
	if travel <= 0 {
		return 0
	}
	pos = min(max(pos-length/2, 0), travel)
	return pos * maxOffset / travel
}

// View renders the scrollbar, exactly ViewportSize cells along its axis.
func (m Model) View() string {
	if m.ViewportSize <= 0 {
		return ""
	}
	start, length := m.Thumb()

	// Non-breaking spaces keep lipgloss from dropping background escapes.
	thumbChar, trackChar := m.ThumbChar, m.TrackChar
	if thumbChar == " " {
		thumbChar = " "
	}
	if trackChar == " " {
		trackChar = " "
	}

	sep := "\n"
	if m.Orientation == Horizontal {
		sep = ""
	}
	var s strings.Builder
	for i := range m.ViewportSize {
		if start <= i && i < start+length {
			s.WriteString(m.ThumbStyle.Render(thumbChar))
		} else {
			s.WriteString(m.TrackStyle.Render(trackChar))
		}
		if i < m.ViewportSize-1 {
			s.WriteString(sep)
		}
	}
	return s.String()
}

// clamp restricts x to be between low and high.
func clamp(high, low, x float64) float64 {
	switch {
	case high < x:
		return high
	case x < low:
		return low
	default:
		return x
	}
}
