package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"qalgos/internal/circuit"
	"qalgos/internal/grover"
	"qalgos/internal/qft"
	"qalgos/internal/sim"
	"qalgos/internal/teleport"
)

// Demo is one circuit the viewer can step through.
type Demo struct {
	Name        string
	Description string
	Circuit     *circuit.Circuit
	// Qubits fixes the simulation order; nil uses the circuit's own order.
	Qubits []circuit.Qubit
}

// DefaultDemos builds the QFT, Grover and teleportation circuits. A nil
// message gate prepares the teleported qubit with H. The QFT is limited to
// sim.MaxQubits.
func DefaultDemos(qftQubits int, message circuit.Gate) ([]Demo, error) {
	if err := sim.CheckQubits(qftQubits); err != nil {
		return nil, err
	}
	qubits, err := qft.NewQubits(qftQubits)
	if err != nil {
		return nil, err
	}
	qc, err := qft.Build(qubits)
	if err != nil {
		return nil, fmt.Errorf("build qft demo: %w", err)
	}
	gc, err := grover.Build(grover.Oracle11())
	if err != nil {
		return nil, fmt.Errorf("build grover demo: %w", err)
	}
	if message == nil {
		message = circuit.H
	}
	tc, err := teleport.Build(message)
	if err != nil {
		return nil, fmt.Errorf("build teleport demo: %w", err)
	}
	return []Demo{
		{Name: "QFT", Description: fmt.Sprintf("%d-qubit Fourier transform", qftQubits), Circuit: qc, Qubits: qubits},
		{Name: "Grover", Description: "two-qubit search for |11⟩", Circuit: gc},
		{Name: "Teleport", Description: fmt.Sprintf("teleport %s·|0⟩ to Bob", message.Name()), Circuit: tc},
	}, nil
}

// renderTabs renders the demo names as a tab row.
func (m Model) renderTabs() string {
	var sb strings.Builder
	for i, d := range m.demos {
		name := " " + d.Name + " "
		if i == m.demo {
			sb.WriteString(activeStyle.Render(name))
		} else {
			sb.WriteString(dimStyle.Render(name))
		}
		if i < len(m.demos)-1 {
			sb.WriteString(dimStyle.Render("│"))
		}
	}
	return sb.String()
}

// renderPicker renders the floating demo-picker popup.
func (m Model) renderPicker() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Choose Demo"))
	sb.WriteString("\n")
	sb.WriteString(dimStyle.Render(strings.Repeat("─", pickerW)))
	sb.WriteString("\n")

	for i, d := range m.demos {
		if i == m.pickerItem {
			sb.WriteString(pickerSelectedStyle.Render(" ▸ "))
			sb.WriteString(pickerSelectedStyle.Render(fmt.Sprintf("%-10s", d.Name)))
		} else {
			sb.WriteString("   ")
			sb.WriteString(pickerNormalStyle.Render(fmt.Sprintf("%-10s", d.Name)))
		}
		sb.WriteString(dimStyle.Render(fmt.Sprintf("%d moments", d.Circuit.Depth())))
		sb.WriteString("\n")
	}
	sb.WriteString(dimStyle.Render(" ↑↓ Select  ⏎ Ok  Esc ✕"))

	return pickerBorderStyle.Render(sb.String())
}

// overlayAt composites overlay on top of bg with its top-left corner at
// visible column x of line y.
func overlayAt(bg, overlay string, x, y int) string {
	bgLines := strings.Split(bg, "\n")
	for i, ovLine := range strings.Split(overlay, "\n") {
		idx := y + i
		if idx < 0 || idx >= len(bgLines) {
			continue
		}
		bgLines[idx] = spliceLineAt(bgLines[idx], ovLine, x)
	}
	return strings.Join(bgLines, "\n")
}

// spliceLineAt replaces the visible columns of line starting at x with
// overlay, keeping the escape sequences on either side intact.
func spliceLineAt(line, overlay string, x int) string {
	prefix := ansi.Truncate(line, x, "")
	if w := ansi.StringWidth(prefix); w < x {
		prefix += strings.Repeat(" ", x-w)
	}
	suffix := ansi.TruncateLeft(line, x+ansi.StringWidth(overlay), "")
	return prefix + overlay + suffix
}
