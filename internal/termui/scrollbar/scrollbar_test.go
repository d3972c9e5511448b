package scrollbar

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func plain(content, viewport, offset int, o Orientation) Model {
	m := New(WithOrientation(o), WithStyles(lipgloss.NewStyle(), lipgloss.NewStyle()))
	m.ContentSize, m.ViewportSize, m.Offset = content, viewport, offset
	m.ThumbChar, m.TrackChar = "T", "."
	return m
}

func TestThumbMath(t *testing.T) {
	tests := []struct {
		name               string
		content, viewport  int
		offset             int
		wantStart, wantLen int
	}{
		{"fits", 10, 10, 0, 0, 10},
		{"double", 20, 10, 0, 0, 5},
		{"double at end", 20, 10, 10, 5, 5},
		{"huge content", 1000, 10, 0, 0, 1},
		{"empty content", 0, 10, 0, 0, 10},
		{"offset above max", 20, 10, 999, 5, 5},
		{"negative offset", 20, 10, -5, 0, 5},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			for _, o := range []Orientation{Vertical, Horizontal} {
				m := plain(tc.content, tc.viewport, tc.offset, o)
				start, length := m.Thumb()
				assert.Equal(t, tc.wantStart, start)
				assert.Equal(t, tc.wantLen, length)

				view := m.View()
				if o == Vertical {
					lines := strings.Split(view, "\n")
					require.Len(t, lines, tc.viewport)
					view = strings.Join(lines, "")
				}
				assert.Equal(t, tc.wantLen, strings.Count(view, "T"))
				assert.Equal(t, tc.wantStart, strings.Index(view, "T"))
			}
		})
	}
}

func TestZeroViewport(t *testing.T) {
	m := plain(10, 0, 0, Vertical)
	assert.Empty(t, m.View())
	start, length := m.Thumb()
	assert.Zero(t, start)
	assert.Zero(t, length)
}

func TestHorizontalIsOneLine(t *testing.T) {
	m := New(WithOrientation(Horizontal))
	m.ContentSize, m.ViewportSize = 40, 8
	assert.NotContains(t, m.View(), "\n")
	assert.Equal(t, "─", m.TrackChar)
}

func TestOffsetAt(t *testing.T) {
	m := plain(20, 10, 0, Vertical)
	assert.Equal(t, 0, m.OffsetAt(0))
	assert.Equal(t, 10, m.OffsetAt(9))
	assert.Equal(t, 0, plain(5, 10, 0, Vertical).OffsetAt(7))
}

func TestOutputStyles(t *testing.T) {
	{
		colorProfile := lipgloss.ColorProfile()
		t.Cleanup(func() {
			lipgloss.SetColorProfile(colorProfile)
		})
	}
	lipgloss.SetColorProfile(termenv.TrueColor)

	m := New(WithStyles(
		lipgloss.NewStyle().Background(lipgloss.Color("#FF0000")),
		lipgloss.NewStyle().Background(lipgloss.Color("#000000")),
	))
	m.ContentSize, m.ViewportSize = 20, 10
	m.ThumbChar, m.TrackChar = " ", " "

	lines := strings.Split(m.View(), "\n")
	for i := range 5 {
		assert.Contains(t, lines[i], "\x1b[48;2;255;0;0m", "row %d", i)
	}
	for i := 5; i < 10; i++ {
		assert.Contains(t, lines[i], "\x1b[48;2;0;0;0m", "row %d", i)
	}
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 5.0, clamp(10, 1, 5))
	assert.Equal(t, 10.0, clamp(10, 1, 15))
	assert.Equal(t, 1.0, clamp(10, 1, 0.5))
}
