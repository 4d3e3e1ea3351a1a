// Package qft builds the quantum Fourier transform from Hadamards and CZPow
// gates and checks it with an inverse round trip.
package qft

import (
	"errors"
	"fmt"
	"math"

	"qalgos/internal/circuit"
)

var ErrInvalidQubitCount = errors.New("qft needs at least one qubit")

// NewQubits allocates n line qubits.
func NewQubits(n int) ([]circuit.Qubit, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidQubitCount, n)
	}
	return circuit.LineQubits(n), nil
}

// Operations returns the QFT gate sequence on qubits. Working from the
// highest index down, each qubit gets a Hadamard followed by one CZPow from
// every lower qubit, the distance j selecting CZPow(j).
func Operations(qubits []circuit.Qubit) ([]circuit.Operation, error) {
	n := len(qubits)
	if n < 1 {
		return nil, ErrInvalidQubitCount
	}
	ops := make([]circuit.Operation, 0, n*(n+1)/2)
	for i := range n {
		target := qubits[n-1-i]
		ops = append(ops, circuit.Op(circuit.H, target))
		for j := 1; j < n-i; j++ {
			ops = append(ops, circuit.Op(CZPow{D: j}, qubits[n-1-i-j], target))
		}
	}
	return ops, nil
}

// Build returns the QFT circuit on qubits. Every operation gets its own
// moment, so the diagram reads qubit by qubit like the textbook layout.
func Build(qubits []circuit.Qubit) (*circuit.Circuit, error) {
	ops, err := Operations(qubits)
	if err != nil {
		return nil, err
	}
	return circuit.NewBuilder().Append(circuit.InsertNew, ops...).Build()
}

// InverseOperations returns the inverse QFT gate sequence on qubits, written
// out on its own: the QFT sequence in reverse order with every CZPow(j)
// replaced by a controlled phase of -π/2^(j-1).
func InverseOperations(qubits []circuit.Qubit) ([]circuit.Operation, error) {
	n := len(qubits)
	if n < 1 {
		return nil, ErrInvalidQubitCount
	}
	ops := make([]circuit.Operation, 0, n*(n+1)/2)
	for i := n - 1; i >= 0; i-- {
		target := qubits[n-1-i]
		for j := n - i - 1; j >= 1; j-- {
			phase := circuit.CPhase{Theta: -math.Ldexp(math.Pi, 1-j)}
			ops = append(ops, circuit.Op(phase, qubits[n-1-i-j], target))
		}
		ops = append(ops, circuit.Op(circuit.H, target))
	}
	return ops, nil
}

// Inverse returns the inverse QFT circuit on qubits, one operation per
// moment. It does not derive from Build, so a round trip through both
// checks the forward layout.
func Inverse(qubits []circuit.Qubit) (*circuit.Circuit, error) {
	ops, err := InverseOperations(qubits)
	if err != nil {
		return nil, err
	}
	return circuit.NewBuilder().Append(circuit.InsertNew, ops...).Build()
}
