package inspect

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muurk/pktdecode/internal/packet"
)

func newTestModel(t *testing.T, hex string) Model {
	t.Helper()
	packets, err := packet.Decode(hex)
	require.NoError(t, err)

	m := NewModel("test", packets)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 20})
	return updated.(Model)
}

func press(t *testing.T, m Model, keys ...tea.KeyMsg) Model {
	t.Helper()
	for _, k := range keys {
		updated, _ := m.Update(k)
		m = updated.(Model)
	}
	return m
}

var (
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyUp    = tea.KeyMsg{Type: tea.KeyUp}
	keyLeft  = tea.KeyMsg{Type: tea.KeyLeft}
	keyRight = tea.KeyMsg{Type: tea.KeyRight}
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModel_Navigation(t *testing.T) {
	// (eq (sum 1 3) (product 2 2))
	m := newTestModel(t, "9C0141080250320F1802104A08")
	assert.Equal(t, 7, m.Visible())
	assert.Equal(t, packet.TypeEqual, m.Selected().Head().TypeID)

	m = press(t, m, keyDown)
	assert.Equal(t, packet.TypeSum, m.Selected().Head().TypeID)

	m = press(t, m, keyDown, keyDown)
	lit, ok := m.Selected().(*packet.Literal)
	require.True(t, ok)
	assert.Equal(t, uint64(3), lit.Value)

	// Left on a leaf jumps to its parent.
	m = press(t, m, keyLeft)
	assert.Equal(t, packet.TypeSum, m.Selected().Head().TypeID)

	m = press(t, m, keyUp, keyUp)
	assert.Equal(t, packet.TypeEqual, m.Selected().Head().TypeID, "cursor stops at the top")

	m = press(t, m, runes("j"), runes("j"), runes("j"), runes("j"), runes("j"), runes("j"), runes("j"))
	assert.Equal(t, packet.TypeLiteral, m.Selected().Head().TypeID, "cursor stops at the bottom")
}

func TestModel_Collapse(t *testing.T) {
	m := newTestModel(t, "9C0141080250320F1802104A08")

	m = press(t, m, keyDown, keyEnter)
	assert.Equal(t, 5, m.Visible(), "collapsing sum hides two literals")
	assert.Equal(t, packet.TypeSum, m.Selected().Head().TypeID)

	m = press(t, m, keyRight)
	assert.Equal(t, 7, m.Visible())

	m = press(t, m, runes("c"))
	assert.Equal(t, 1, m.Visible())
	assert.Equal(t, packet.TypeEqual, m.Selected().Head().TypeID)

	m = press(t, m, runes("e"))
	assert.Equal(t, 7, m.Visible())
}

func TestModel_View(t *testing.T) {
	m := newTestModel(t, "9C0141080250320F1802104A08")
	m = press(t, m, keyDown)

	view := m.View()
	for _, want := range []string{"test", "value: 4", "version sum: 8", "(sum 1 3)", "quit"} {
		assert.True(t, strings.Contains(view, want), "view missing %q:\n%s", want, view)
	}
}

func TestModel_ViewShowsEvaluationErrors(t *testing.T) {
	m := newTestModel(t, "080000") // min with no operands
	assert.Contains(t, m.View(), "Arity Error")
}

func TestModel_Quit(t *testing.T) {
	m := newTestModel(t, "D2FE28")
	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestModel_Empty(t *testing.T) {
	m := NewModel("empty", nil)
	assert.Equal(t, "Loading...", m.View())

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 20})
	m = press(t, updated.(Model), keyDown, keyEnter, keyLeft)
	assert.Nil(t, m.Selected())
	assert.Contains(t, m.View(), "no packets")
}
