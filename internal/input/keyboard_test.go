package input

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeycumines/gridedit/internal/grid"
)

func keyType(t tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: t} }

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func TestKeyboard_Moves(t *testing.T) {
	f := newFixture(t, 10, 5)
	for _, tc := range []struct {
		msg  tea.KeyMsg
		want grid.Rect
	}{
		{keyType(tea.KeyUp), grid.CellRect(0, 0)},
		{keyType(tea.KeyDown), grid.CellRect(1, 0)},
		{keyType(tea.KeyRight), grid.CellRect(1, 1)},
		{keyType(tea.KeyShiftDown), grid.Rect{R0: 1, C0: 1, R1: 2, C1: 1}},
		{keyType(tea.KeyShiftRight), grid.Rect{R0: 1, C0: 1, R1: 2, C1: 2}},
		{keyType(tea.KeyTab), grid.CellRect(2, 3)},
		{keyType(tea.KeyShiftTab), grid.CellRect(2, 2)},
		{keyType(tea.KeyEnter), grid.CellRect(3, 2)},
		{keyType(tea.KeyEnd), grid.Rect{R0: 3, C0: 2, R1: 3, C1: 4}},
	} {
		ok, _ := f.keyboard.HandleKey(tc.msg)
		require.True(t, ok, tc.msg.String())
		assert.Equal(t, tc.want, f.sel.Range(), tc.msg.String())
	}
}

func TestKeyboard_TypingStartsEdit(t *testing.T) {
	f := newFixture(t, 5, 5)
	f.sel.ExtendTo(1, 1)

	ok, _ := f.keyboard.HandleKey(runes("x"))
	require.True(t, ok)
	require.True(t, f.editor.Editing())
	assert.Equal(t, "x", f.editor.Value())
	assert.True(t, f.editor.FillAll())

	f.keyboard.HandleKey(runes("y"))
	assert.Equal(t, "xy", f.editor.Value())

	f.keyboard.HandleKey(keyType(tea.KeyCtrlB))
	assert.True(t, f.editor.Editing(), "format shortcuts keep the edit open")
	assert.True(t, f.model.Format(0, 0).Bold)
}

func TestKeyboard_Shortcuts(t *testing.T) {
	f := newFixture(t, 5, 5)
	f.model.Set(0, 0, "v")

	f.keyboard.HandleKey(keyType(tea.KeyCtrlB))
	assert.True(t, f.model.Format(0, 0).Bold)
	f.keyboard.HandleKey(keyType(tea.KeyDelete))
	assert.Empty(t, f.model.Get(0, 0))
	f.keyboard.HandleKey(keyType(tea.KeyCtrlZ))
	assert.Equal(t, "v", f.model.Get(0, 0))
	f.keyboard.HandleKey(keyType(tea.KeyCtrlY))
	assert.Empty(t, f.model.Get(0, 0))

	f.keyboard.HandleKey(keyType(tea.KeyCtrlO))
	assert.Equal(t, 6, f.model.Rows())
	assert.Equal(t, grid.Rect{R0: 1, C0: 0, R1: 1, C1: 4}, f.sel.Range())

	f.keyboard.HandleKey(keyType(tea.KeyCtrlA))
	assert.Equal(t, f.model.Bounds(), f.sel.Range())

	ok, _ := f.keyboard.HandleKey(keyType(tea.KeyEsc))
	assert.True(t, ok)
	ok, _ = f.keyboard.HandleKey(keyType(tea.KeyF5))
	assert.False(t, ok)
}

func TestKeyboard_DebounceShortcuts(t *testing.T) {
	f := newFixture(t, 10, 5, WithDebounce(50*time.Millisecond))
	ctrlO := keyType(tea.KeyCtrlO)
	f.keyboard.HandleKey(ctrlO)
	ok, _ := f.keyboard.HandleKey(ctrlO)
	assert.True(t, ok, "dropped keys are still consumed")
	assert.Equal(t, 11, f.model.Rows())

	f.clock.Advance(50 * time.Millisecond)
	f.keyboard.HandleKey(ctrlO)
	assert.Equal(t, 12, f.model.Rows())
}

func TestKeyboard_DebounceSkipsMovementAndTyping(t *testing.T) {
	f := newFixture(t, 10, 5, WithDebounce(50*time.Millisecond))
	f.keyboard.HandleKey(keyType(tea.KeyDown))
	f.keyboard.HandleKey(keyType(tea.KeyDown))
	assert.Equal(t, grid.Cell{R: 2}, f.sel.Active())

	f.clock.Advance(30 * time.Millisecond)
	f.keyboard.HandleKey(runes("x"))
	require.True(t, f.editor.Editing())
	assert.Equal(t, "x", f.editor.Value())
}

func TestKeyboard_Menu(t *testing.T) {
	f := newFixture(t, 5, 5)
	f.model.Set(0, 0, "v")

	f.keyboard.HandleKey(keyType(tea.KeyF10))
	require.True(t, f.renderer.MenuVisible())
	f.keyboard.HandleKey(keyType(tea.KeyEsc))
	assert.False(t, f.renderer.MenuVisible())

	f.keyboard.HandleKey(keyType(tea.KeyF10))
	f.keyboard.HandleKey(keyType(tea.KeyDown))
	action, ok := f.renderer.MenuSelected()
	require.True(t, ok)
	assert.Equal(t, "clipboard.cut", action)
	f.keyboard.HandleKey(keyType(tea.KeyUp))
	f.keyboard.HandleKey(keyType(tea.KeyEnter))
	assert.False(t, f.renderer.MenuVisible())
	assert.Equal(t, "v", f.mem.text)
	assert.Equal(t, "v", f.model.Get(0, 0), "copy, not cut")
}

func TestKeyboard_Paste(t *testing.T) {
	f := newFixture(t, 5, 5)
	f.sel.SetActive(1, 1)
	msg := runes("a\tb\nc\td")
	msg.Paste = true
	f.keyboard.HandleKey(msg)
	assert.Equal(t, [][]string{{"a", "b"}, {"c", "d"}}, f.model.GetRange(grid.Rect{R0: 1, C0: 1, R1: 2, C1: 2}))
	assert.False(t, f.editor.Editing())
}

func TestKeyboard_FollowsDisplayedRows(t *testing.T) {
	f := newFixture(t, 6, 2)
	for _, r := range []int{0, 2, 4} {
		f.model.Set(r, 0, "a")
	}
	_, err := f.bus.Act("view.filter", "a")
	require.NoError(t, err)

	f.keyboard.HandleKey(keyType(tea.KeyDown))
	assert.Equal(t, grid.Cell{R: 2}, f.sel.Active())
	f.keyboard.HandleKey(keyType(tea.KeyDown))
	f.keyboard.HandleKey(keyType(tea.KeyDown))
	assert.Equal(t, grid.Cell{R: 4}, f.sel.Active())
}

func TestKeyboard_SortKeys(t *testing.T) {
	f := newFixture(t, 4, 2)
	for r, v := range []string{"b", "c", "", "a"} {
		f.model.Set(r, 0, v)
	}
	f.keyboard.HandleKey(tea.KeyMsg{Type: tea.KeyUp, Alt: true})
	assert.Equal(t, []int{3, 0, 1, 2}, f.renderer.RowIndexList())
	f.keyboard.HandleKey(tea.KeyMsg{Type: tea.KeyDown, Alt: true})
	assert.Equal(t, []int{1, 0, 3}, f.renderer.RowIndexList())
}

func TestKeyMap_Help(t *testing.T) {
	k := DefaultKeyMap()
	assert.NotEmpty(t, k.ShortHelp())
	cols := k.FullHelp()
	require.Len(t, cols, 5)
	n := 0
	for _, c := range cols[2:] {
		n += len(c)
	}
	assert.Equal(t, len(k.Shortcuts)+4, n)

	action, ok := k.FormatShortcut(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("i"), Alt: true})
	assert.True(t, ok)
	assert.Equal(t, "format.italic", action)
	_, ok = k.FormatShortcut(keyType(tea.KeyCtrlC))
	assert.False(t, ok)
}
