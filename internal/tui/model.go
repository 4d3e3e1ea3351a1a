// Package tui is an interactive viewer that steps through the moments of the
// demo circuits and shows the simulated state after each one.
package tui

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"qalgos/internal/circuit"
	"qalgos/internal/sim"
)

// focus represents which part of the viewer has keyboard input.
type focus int

const (
	focusCircuit focus = iota
	focusPicker
)

// Model represents the viewer state.
type Model struct {
	ctx      context.Context
	sim      *sim.Simulator
	demos    []Demo
	demo     int
	cursor   int // moment whose output state is shown
	decimals int

	state *sim.StateResult
	err   error

	focus      focus
	pickerItem int

	keys     keyMap
	help     help.Model
	viewport viewport.Model
	width    int
	height   int
}

// New returns a viewer over demos. It panics if demos is empty.
func New(ctx context.Context, s *sim.Simulator, demos []Demo, decimals int) Model {
	if len(demos) == 0 {
		panic("tui: no demos")
	}
	keys := defaultKeyMap()
	vp := viewport.New(0, 0)
	vp.KeyMap = viewport.KeyMap{Up: keys.Up, Down: keys.Down}

	m := Model{
		ctx:      ctx,
		sim:      s,
		demos:    demos,
		decimals: decimals,
		keys:     keys,
		help:     help.New(),
		viewport: vp,
	}
	m.refresh()
	return m
}

// Demo returns the demo being shown.
func (m Model) Demo() Demo {
	return m.demos[m.demo]
}

// Cursor returns the index of the moment under the cursor.
func (m Model) Cursor() int {
	return m.cursor
}

// State returns the simulated state after the cursor moment and the error,
// if any, that simulating it produced.
func (m Model) State() (*sim.StateResult, error) {
	return m.state, m.err
}

// refresh re-simulates the current demo up to and including the cursor
// moment and redraws the diagram.
func (m *Model) refresh() {
	d := m.demos[m.demo]
	prefix := d.Circuit.Prefix(m.cursor + 1)

	var opts []sim.SimulateOption
	if d.Qubits != nil {
		opts = append(opts, sim.WithQubitOrder(d.Qubits))
	} else {
		opts = append(opts, sim.WithQubitOrder(d.Circuit.Qubits()))
	}
	m.state, m.err = m.sim.Simulate(m.ctx, prefix, opts...)
	if m.err != nil {
		zap.L().Warn("viewer simulation failed",
			zap.String("demo", d.Name),
			zap.Int("moment", m.cursor),
			zap.Error(m.err))
	}
	m.viewport.SetContent(circuit.Diagram(d.Circuit, circuit.WithCursor(m.cursor)))
}

func (m *Model) selectDemo(i int) {
	n := len(m.demos)
	m.demo = ((i % n) + n) % n
	m.cursor = 0
	m.viewport.GotoTop()
	m.refresh()
}

func (m *Model) moveCursor(k int) {
	last := max(m.Demo().Circuit.Depth()-1, 0)
	k = min(max(k, 0), last)
	if k == m.cursor {
		return
	}
	m.cursor = k
	m.refresh()
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width

	panelW := max(width-4, 10)
	stateH := len(m.Demo().Circuit.Qubits()) + 6
	m.viewport.Width = panelW - 2
	m.viewport.Height = max(height-stateH-8, minPanelH)
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.focus == focusPicker {
			switch {
			case key.Matches(msg, m.keys.Up):
				m.pickerItem = (m.pickerItem + len(m.demos) - 1) % len(m.demos)
			case key.Matches(msg, m.keys.Down):
				m.pickerItem = (m.pickerItem + 1) % len(m.demos)
			case key.Matches(msg, m.keys.Select):
				m.focus = focusCircuit
				m.selectDemo(m.pickerItem)
				m.resize(m.width, m.height)
			case key.Matches(msg, m.keys.Cancel), key.Matches(msg, m.keys.Picker):
				m.focus = focusCircuit
			}
			return m, nil
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Prev):
			m.moveCursor(m.cursor - 1)
		case key.Matches(msg, m.keys.Next):
			m.moveCursor(m.cursor + 1)
		case key.Matches(msg, m.keys.First):
			m.moveCursor(0)
		case key.Matches(msg, m.keys.Last):
			m.moveCursor(m.Demo().Circuit.Depth() - 1)
		case key.Matches(msg, m.keys.NextDemo):
			m.selectDemo(m.demo + 1)
			m.resize(m.width, m.height)
		case key.Matches(msg, m.keys.PrevDemo):
			m.selectDemo(m.demo - 1)
			m.resize(m.width, m.height)
		case key.Matches(msg, m.keys.Picker):
			m.focus = focusPicker
			m.pickerItem = m.demo
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		default:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}
	panelW := max(m.width-4, 10)

	circuitPanel := m.renderCircuitPanel(panelW)
	statePanel := m.renderStatePanel(panelW)
	controlsPanel := controlsStyle.Width(panelW).Render(m.help.View(m.keys))

	frame := lipgloss.JoinVertical(lipgloss.Left, m.renderTabs(), circuitPanel, statePanel, controlsPanel)

	if m.focus == focusPicker {
		frame = overlayAt(frame, m.renderPicker(), 2, 2)
	}
	return frame
}

// renderCircuitPanel renders the diagram of the current demo.
func (m Model) renderCircuitPanel(width int) string {
	d := m.Demo()
	var sb strings.Builder

	sb.WriteString(titleStyle.Render(d.Name))
	sb.WriteString(dimStyle.Render("  " + d.Description))
	sb.WriteString("\n")
	sb.WriteString(m.viewport.View())

	return circuitStyle.Width(width).Render(sb.String())
}

// renderStatePanel renders the state after the cursor moment: its Dirac
// notation, measurement outcomes and one P(1) bar per qubit.
func (m Model) renderStatePanel(width int) string {
	var sb strings.Builder

	depth := m.Demo().Circuit.Depth()
	sb.WriteString(titleStyle.Render(fmt.Sprintf("State after moment %d/%d", m.cursor+1, depth)))
	sb.WriteString("\n")

	if m.err != nil {
		sb.WriteString(errorStyle.Render(m.err.Error()))
		return stateStyle.Width(width).Render(sb.String())
	}

	sb.WriteString(m.state.DiracNotation(m.decimals))
	sb.WriteString("\n")
	for _, k := range m.state.Keys() {
		bits := make([]string, len(m.state.Measurements[k]))
		for i, b := range m.state.Measurements[k] {
			bits[i] = fmt.Sprint(b)
		}
		sb.WriteString(measureStyle.Render(fmt.Sprintf("measured %s=%s", k, strings.Join(bits, ""))))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	for i, p := range m.state.State.QubitProbabilities() {
		sb.WriteString(qubitLabelStyle.Render(fmt.Sprintf("%-*s", labelW, m.state.QubitOrder[i])))
		sb.WriteString(renderBar(p.Prob1))
		sb.WriteString(dimStyle.Render(fmt.Sprintf(" P(1)=%.2f", p.Prob1)))
		sb.WriteString("\n")
	}

	return stateStyle.Width(width).Render(strings.TrimRight(sb.String(), "\n"))
}

func renderBar(p float64) string {
	filled := min(max(int(math.Round(p*barW)), 0), barW)
	return barStyle.Render(strings.Repeat("█", filled)) + dimStyle.Render(strings.Repeat("░", barW-filled))
}
