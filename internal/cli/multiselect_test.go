package cli

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func press(m multiSelectModel, keys ...tea.KeyMsg) (multiSelectModel, tea.Cmd) {
	var cmd tea.Cmd
	for _, key := range keys {
		var next tea.Model
		next, cmd = m.Update(key)
		m = next.(multiSelectModel)
	}
	return m, cmd
}

var (
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyUp    = tea.KeyMsg{Type: tea.KeyUp}
	keySpace = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyAll   = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}}
	keyQuit  = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}}
)

func TestMultiSelectModel(t *testing.T) {
	items := []string{"Registry", "Router", "Vault"}

	t.Run("toggle and confirm", func(t *testing.T) {
		m, cmd := press(newMultiSelectModel(items, "pick"), keyDown, keyDown, keySpace, keyUp, keyUp, keySpace, keyEnter)
		assert.True(t, m.done)
		assert.NotNil(t, cmd)
		assert.Equal(t, []string{"Registry", "Vault"}, m.chosen())
		assert.Empty(t, m.View())
	})

	t.Run("enter needs a selection", func(t *testing.T) {
		m, cmd := press(newMultiSelectModel(items, "pick"), keyEnter)
		assert.False(t, m.done)
		assert.Nil(t, cmd)
	})

	t.Run("select all toggles", func(t *testing.T) {
		m, _ := press(newMultiSelectModel(items, "pick"), keyAll)
		assert.Equal(t, items, m.chosen())
		m, _ = press(m, keyAll)
		assert.Empty(t, m.chosen())
	})

	t.Run("cursor stays in range", func(t *testing.T) {
		m, _ := press(newMultiSelectModel(items, "pick"), keyUp, keyDown, keyDown, keyDown, keyDown)
		assert.Equal(t, 2, m.cursor)
	})

	t.Run("quit cancels", func(t *testing.T) {
		m, _ := press(newMultiSelectModel(items, "pick"), keySpace, keyQuit)
		assert.True(t, m.cancelled)
		assert.False(t, m.done)
	})

	t.Run("view lists items", func(t *testing.T) {
		view := newMultiSelectModel(items, "pick").View()
		assert.Contains(t, view, "pick")
		assert.Contains(t, view, "Router")
	})
}
