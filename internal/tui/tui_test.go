package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qalgos/internal/circuit"
	"qalgos/internal/qft"
	"qalgos/internal/sim"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	demos, err := DefaultDemos(3, nil)
	require.NoError(t, err)
	return New(context.Background(), sim.New(sim.WithSeed(1)), demos, 2)
}

func press(t *testing.T, m Model, keys ...tea.KeyMsg) Model {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(Model)
	}
	return m
}

var (
	keyRight    = tea.KeyMsg{Type: tea.KeyRight}
	keyLeft     = tea.KeyMsg{Type: tea.KeyLeft}
	keyTab      = tea.KeyMsg{Type: tea.KeyTab}
	keyShiftTab = tea.KeyMsg{Type: tea.KeyShiftTab}
	keyEnter    = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc      = tea.KeyMsg{Type: tea.KeyEsc}
	keyDown     = tea.KeyMsg{Type: tea.KeyDown}
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestDefaultDemos(t *testing.T) {
	demos, err := DefaultDemos(4, circuit.X)
	require.NoError(t, err)
	require.Len(t, demos, 3)
	assert.Equal(t, "QFT", demos[0].Name)
	assert.Equal(t, 10, demos[0].Circuit.Depth())
	assert.Len(t, demos[0].Qubits, 4)
	assert.Equal(t, "Grover", demos[1].Name)
	assert.Equal(t, "Teleport", demos[2].Name)
	assert.Contains(t, demos[2].Description, "X")

	_, err = DefaultDemos(0, nil)
	assert.ErrorIs(t, err, qft.ErrInvalidQubitCount)
	_, err = DefaultDemos(64, nil)
	assert.ErrorIs(t, err, sim.ErrTooManyQubits)
	_, err = DefaultDemos(2, circuit.CNOT)
	assert.Error(t, err)
}

func TestViewBeforeResize(t *testing.T) {
	assert.Equal(t, "Loading...", newTestModel(t).View())
}

func TestMoveCursor(t *testing.T) {
	m := newTestModel(t)
	assert.Equal(t, 0, m.Cursor())

	m = press(t, m, keyLeft)
	assert.Equal(t, 0, m.Cursor(), "cursor stays on the first moment")

	m = press(t, m, keyRight, keyRight, runes("l"), keyLeft)
	assert.Equal(t, 2, m.Cursor())

	m = press(t, m, runes("G"))
	assert.Equal(t, 5, m.Cursor())
	m = press(t, m, keyRight)
	assert.Equal(t, 5, m.Cursor(), "cursor stays on the last moment")

	m = press(t, m, runes("g"))
	assert.Equal(t, 0, m.Cursor())
}

func TestStateFollowsCursor(t *testing.T) {
	m := newTestModel(t)
	st, err := m.State()
	require.NoError(t, err)
	assert.Equal(t, "0.71|000⟩ + 0.71|001⟩", st.DiracNotation(2))

	m = press(t, m, runes("G"))
	st, err = m.State()
	require.NoError(t, err)
	for i, a := range st.State.Amplitudes {
		assert.InDelta(t, 1/8.0, real(a)*real(a)+imag(a)*imag(a), 1e-9, "amplitude %d", i)
	}
}

func TestCycleDemos(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, keyRight, keyTab)
	assert.Equal(t, "Grover", m.Demo().Name)
	assert.Equal(t, 0, m.Cursor(), "switching demo resets the cursor")

	// moment 0 prepares the ancilla and both search qubits at once
	var first []string
	for _, op := range m.Demo().Circuit.Moments()[0].Operations() {
		first = append(first, op.String())
	}
	assert.Equal(t, []string{"X(ancilla)", "H(q(0))", "H(q(1))"}, first)

	st, err := m.State()
	require.NoError(t, err)
	assert.Equal(t, "0.5|001⟩ + 0.5|011⟩ + 0.5|101⟩ + 0.5|111⟩", st.DiracNotation(2))

	m = press(t, m, keyTab)
	assert.Equal(t, "Teleport", m.Demo().Name)
	m = press(t, m, keyTab)
	assert.Equal(t, "QFT", m.Demo().Name)
	m = press(t, m, keyShiftTab)
	assert.Equal(t, "Teleport", m.Demo().Name)
}

func TestPicker(t *testing.T) {
	m := newTestModel(t)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = next.(Model)

	m = press(t, m, runes("d"))
	assert.Contains(t, m.View(), "Choose Demo")

	m = press(t, m, keyRight)
	assert.Equal(t, 0, m.Cursor(), "picker has the keyboard")

	m = press(t, m, keyEsc)
	assert.NotContains(t, m.View(), "Choose Demo")
	assert.Equal(t, "QFT", m.Demo().Name)

	m = press(t, m, runes("d"), keyDown, keyDown, keyEnter)
	assert.Equal(t, "Teleport", m.Demo().Name)
	assert.NotContains(t, m.View(), "Choose Demo")
}

func TestView(t *testing.T) {
	m := newTestModel(t)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = next.(Model)

	view := m.View()
	assert.Contains(t, view, "QFT")
	assert.Contains(t, view, "State after moment 1/6")
	assert.Contains(t, view, "0.71|000⟩ + 0.71|001⟩")
	assert.Contains(t, view, "P(1)=0.50")
	assert.Contains(t, view, "P(1)=0.00")
	assert.Contains(t, view, "▼")
	assert.Contains(t, view, "quit")
}

func TestViewGroverMeasurement(t *testing.T) {
	m := newTestModel(t)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = next.(Model)
	m = press(t, m, keyTab, runes("G"))

	view := m.View()
	assert.Contains(t, view, "measured q(0),q(1)=11")
	assert.Contains(t, view, "P(1)=1.00")
}

func TestQuit(t *testing.T) {
	for _, k := range []tea.KeyMsg{runes("q"), {Type: tea.KeyCtrlC}} {
		_, cmd := newTestModel(t).Update(k)
		require.NotNil(t, cmd, k.String())
		assert.IsType(t, tea.QuitMsg{}, cmd(), k.String())
	}
}

func TestSpliceLineAt(t *testing.T) {
	assert.Equal(t, "heXYo world", spliceLineAt("hello world", "XY", 2))
	assert.Equal(t, "ab  X", spliceLineAt("ab", "X", 4))
	assert.Equal(t, "a\nXY\nc", overlayAt("a\nbb\nc", "XY", 0, 1))
}

func TestRenderBar(t *testing.T) {
	bar := renderBar(0.5)
	assert.Contains(t, bar, "██████████")
	assert.Contains(t, bar, "░░░░░░░░░░")
}
