package circuit

import (
	"cmp"
	"fmt"
	"slices"
)

// Qubit identifies one wire of a circuit, either by position on a line or by name.
type Qubit struct {
	index int
	name  string
	named bool
}

// LineQubit returns the qubit at position i of the line.
func LineQubit(i int) Qubit {
	return Qubit{index: i}
}

// LineQubits returns the qubits 0..n-1 of the line.
func LineQubits(n int) []Qubit {
	qubits := make([]Qubit, 0, max(n, 0))
	for i := range n {
		qubits = append(qubits, LineQubit(i))
	}
	return qubits
}

// NamedQubit returns a qubit labelled by name.
func NamedQubit(name string) Qubit {
	return Qubit{name: name, named: true}
}

// Index returns the line position, or -1 for named qubits.
func (q Qubit) Index() int {
	if q.named {
		return -1
	}
	return q.index
}

// Name returns the label of a named qubit, or "" for line qubits.
func (q Qubit) Name() string {
	return q.name
}

func (q Qubit) IsNamed() bool {
	return q.named
}

func (q Qubit) String() string {
	if q.named {
		return q.name
	}
	return fmt.Sprintf("q(%d)", q.index)
}

// Compare orders line qubits by index ahead of named qubits ordered by name.
func Compare(a, b Qubit) int {
	switch {
	case a.named != b.named:
		if a.named {
			return 1
		}
		return -1
	case a.named:
		return cmp.Compare(a.name, b.name)
	default:
		return cmp.Compare(a.index, b.index)
	}
}

// SortQubits returns a sorted copy of qubits with duplicates removed.
func SortQubits(qubits []Qubit) []Qubit {
	sorted := slices.Clone(qubits)
	slices.SortFunc(sorted, Compare)
	return slices.Compact(sorted)
}
