package circuit

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	ErrNilGate         = errors.New("operation has no gate")
	ErrArity           = errors.New("gate arity does not match qubit count")
	ErrDuplicateQubit  = errors.New("qubit used twice in one operation")
	ErrMomentCollision = errors.New("qubit already acted on in this moment")
)

// Operation is a gate applied to an ordered list of qubits.
type Operation struct {
	Gate   Gate
	Qubits []Qubit
}

// Op places g on a copy of qubits. The placement is validated when it is
// added to a Builder or Moment.
func Op(g Gate, qubits ...Qubit) Operation {
	return Operation{Gate: g, Qubits: slices.Clone(qubits)}
}

// OnEach places the single-qubit gate g on every qubit.
func OnEach(g Gate, qubits ...Qubit) []Operation {
	ops := make([]Operation, len(qubits))
	for i, q := range qubits {
		ops[i] = Op(g, q)
	}
	return ops
}

// Measure measures qubits under a key made of their comma-joined names.
func Measure(qubits ...Qubit) Operation {
	names := make([]string, len(qubits))
	for i, q := range qubits {
		names[i] = q.String()
	}
	return MeasureWithKey(strings.Join(names, ","), qubits...)
}

// MeasureWithKey measures qubits and records the outcome under key.
func MeasureWithKey(key string, qubits ...Qubit) Operation {
	return Op(MeasureGate{Key: key, N: len(qubits)}, qubits...)
}

// Acts reports whether the operation touches q.
func (o Operation) Acts(q Qubit) bool {
	return slices.Contains(o.Qubits, q)
}

func (o Operation) String() string {
	names := make([]string, len(o.Qubits))
	for i, q := range o.Qubits {
		names[i] = q.String()
	}
	name := "<nil>"
	if o.Gate != nil {
		name = o.Gate.Name()
	}
	return fmt.Sprintf("%s(%s)", name, strings.Join(names, ", "))
}

func (o Operation) validate() error {
	if o.Gate == nil {
		return fmt.Errorf("%s: %w", o, ErrNilGate)
	}
	if o.Gate.NumQubits() != len(o.Qubits) {
		return fmt.Errorf("%s: %w: want %d, got %d", o, ErrArity, o.Gate.NumQubits(), len(o.Qubits))
	}
	for i, q := range o.Qubits {
		if slices.Contains(o.Qubits[i+1:], q) {
			return fmt.Errorf("%s: %w: %s", o, ErrDuplicateQubit, q)
		}
	}
	return nil
}

// Moment is a set of operations that act on disjoint qubits and happen at the
// same time step.
type Moment struct {
	ops []Operation
}

// NewMoment validates ops and groups them into one moment.
func NewMoment(ops ...Operation) (Moment, error) {
	var m Moment
	for _, op := range ops {
		if err := op.validate(); err != nil {
			return Moment{}, err
		}
		if m.Touches(op.Qubits) {
			return Moment{}, fmt.Errorf("%s: %w", op, ErrMomentCollision)
		}
		m.ops = append(m.ops, op)
	}
	return m, nil
}

// Operations returns a copy of the moment's operations.
func (m Moment) Operations() []Operation {
	return slices.Clone(m.ops)
}

func (m Moment) Len() int {
	return len(m.ops)
}

// OperationOn returns the operation acting on q, if any.
func (m Moment) OperationOn(q Qubit) (Operation, bool) {
	for _, op := range m.ops {
		if op.Acts(q) {
			return op, true
		}
	}
	return Operation{}, false
}

// Touches reports whether any operation in the moment acts on one of qubits.
func (m Moment) Touches(qubits []Qubit) bool {
	for _, q := range qubits {
		if _, ok := m.OperationOn(q); ok {
			return true
		}
	}
	return false
}

func (m Moment) with(op Operation) Moment {
	ops := make([]Operation, len(m.ops), len(m.ops)+1)
	copy(ops, m.ops)
	return Moment{ops: append(ops, op)}
}
