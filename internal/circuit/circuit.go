// Package circuit describes quantum circuits as ordered moments of gate
// applications on line or named qubits.
package circuit

import (
	"errors"
	"fmt"
	"slices"
)

// ErrNotInvertible is returned when a circuit contains an operation without
// an adjoint, such as a measurement.
var ErrNotInvertible = errors.New("operation is not invertible")

// Circuit is an immutable sequence of moments. Build one with a Builder.
type Circuit struct {
	moments []Moment
}

// New returns a circuit made of the given moments.
func New(moments ...Moment) *Circuit {
	return &Circuit{moments: slices.Clone(moments)}
}

// Moments returns a copy of the circuit's moments.
func (c *Circuit) Moments() []Moment {
	return slices.Clone(c.moments)
}

// Depth is the number of moments.
func (c *Circuit) Depth() int {
	return len(c.moments)
}

// Operations returns every operation in moment order.
func (c *Circuit) Operations() []Operation {
	var ops []Operation
	for _, m := range c.moments {
		ops = append(ops, m.ops...)
	}
	return ops
}

// Qubits returns the sorted set of qubits the circuit acts on.
func (c *Circuit) Qubits() []Qubit {
	var qubits []Qubit
	for _, op := range c.Operations() {
		qubits = append(qubits, op.Qubits...)
	}
	return SortQubits(qubits)
}

// GateCounts tallies operations by gate name.
func (c *Circuit) GateCounts() map[string]int {
	counts := make(map[string]int)
	for _, op := range c.Operations() {
		counts[op.Gate.Name()]++
	}
	return counts
}

// HasMeasurements reports whether any operation is a measurement.
func (c *Circuit) HasMeasurements() bool {
	return slices.ContainsFunc(c.Operations(), func(op Operation) bool {
		return IsMeasurement(op.Gate)
	})
}

// Prefix returns the circuit made of the first k moments.
func (c *Circuit) Prefix(k int) *Circuit {
	k = min(max(k, 0), len(c.moments))
	return New(c.moments[:k]...)
}

// Inverse returns the circuit that undoes c: moments in reverse order with
// every gate replaced by its adjoint.
func (c *Circuit) Inverse() (*Circuit, error) {
	moments := make([]Moment, 0, len(c.moments))
	for i := len(c.moments) - 1; i >= 0; i-- {
		var m Moment
		for _, op := range c.moments[i].ops {
			adj, ok := op.Gate.(Adjointer)
			if !ok || IsMeasurement(op.Gate) {
				return nil, fmt.Errorf("%s: %w", op, ErrNotInvertible)
			}
			m.ops = append(m.ops, Operation{Gate: adj.Adjoint(), Qubits: slices.Clone(op.Qubits)})
		}
		moments = append(moments, m)
	}
	return &Circuit{moments: moments}, nil
}

func (c *Circuit) String() string {
	return Diagram(c)
}
