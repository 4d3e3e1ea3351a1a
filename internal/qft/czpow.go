package qft

import (
	"fmt"
	"math"

	"qalgos/internal/circuit"
)

// CZPow is the controlled phase of the QFT layout. It multiplies the |11⟩
// component of (control, target) by exp(i·π/2^(D-1)), where D is the index
// distance between the two qubits.
type CZPow struct {
	D int

	adjoint bool
}

var (
	_ circuit.Unitary   = CZPow{}
	_ circuit.PhaseGate = CZPow{}
	_ circuit.Adjointer = CZPow{}
)

func (g CZPow) Name() string   { return "CZPOW" }
func (g CZPow) NumQubits() int { return 2 }

func (g CZPow) DiagramInfo() []string {
	label := fmt.Sprintf("CZ(%d)", g.D)
	if g.adjoint {
		label += "†"
	}
	return []string{"@", label}
}

// PhaseAngle is π/2^(D-1), negated for the adjoint.
func (g CZPow) PhaseAngle() float64 {
	theta := math.Ldexp(math.Pi, 1-g.D)
	if g.adjoint {
		return -theta
	}
	return theta
}

// Phase is the |11⟩ factor. D=1 gives exactly -1 and D=2 exactly i.
func (g CZPow) Phase() complex128 {
	return circuit.UnitPhase(g.PhaseAngle())
}

func (g CZPow) Unitary() circuit.Matrix {
	return circuit.ControlledPhaseMatrix(g.Phase())
}

func (g CZPow) Adjoint() circuit.Gate {
	return CZPow{D: g.D, adjoint: !g.adjoint}
}

// IsAdjoint reports whether g applies the conjugate phase.
func (g CZPow) IsAdjoint() bool {
	return g.adjoint
}
