package circuit

import (
	"go.uber.org/multierr"
)

// InsertStrategy decides into which moment an appended operation goes.
type InsertStrategy int

const (
	// InsertEarliest puts the operation into the moment right after the last
	// one touching its qubits.
	InsertEarliest InsertStrategy = iota
	// InsertNew opens a fresh moment at the end for every operation.
	InsertNew
	// InsertNewThenInline opens a fresh moment for the first operation and
	// places the rest inline.
	InsertNewThenInline
	// InsertInline adds to the last moment unless that would reuse a qubit,
	// in which case a new moment is opened.
	InsertInline
)

func (s InsertStrategy) String() string {
	switch s {
	case InsertEarliest:
		return "EARLIEST"
	case InsertNew:
		return "NEW"
	case InsertNewThenInline:
		return "NEW_THEN_INLINE"
	case InsertInline:
		return "INLINE"
	default:
		return "UNKNOWN"
	}
}

// Builder assembles a circuit. Invalid operations are skipped and their
// errors reported together by Build.
type Builder struct {
	moments []Moment
	err     error
}

func NewBuilder() *Builder {
	return &Builder{}
}

// Append places ops one by one following strategy.
func (b *Builder) Append(strategy InsertStrategy, ops ...Operation) *Builder {
	placedFirst := false
	for _, op := range ops {
		if err := op.validate(); err != nil {
			b.err = multierr.Append(b.err, err)
			continue
		}
		switch strategy {
		case InsertNew:
			b.appendNew(op)
		case InsertNewThenInline:
			if placedFirst {
				b.appendInline(op)
			} else {
				b.appendNew(op)
			}
		case InsertInline:
			b.appendInline(op)
		default:
			b.appendEarliest(op)
		}
		placedFirst = true
	}
	return b
}

// Build returns the assembled circuit, or every validation error collected
// by Append.
func (b *Builder) Build() (*Circuit, error) {
	if b.err != nil {
		return nil, b.err
	}
	return New(b.moments...), nil
}

func (b *Builder) appendNew(op Operation) {
	b.moments = append(b.moments, Moment{ops: []Operation{op}})
}

func (b *Builder) appendInline(op Operation) {
	last := len(b.moments) - 1
	if last >= 0 && b.canPlaceAt(last, op.Qubits) {
		b.moments[last] = b.moments[last].with(op)
		return
	}
	b.appendNew(op)
}

func (b *Builder) appendEarliest(op Operation) {
	idx := len(b.moments)
	for idx > 0 && b.canPlaceAt(idx-1, op.Qubits) {
		idx--
	}
	if idx == len(b.moments) {
		b.appendNew(op)
		return
	}
	b.moments[idx] = b.moments[idx].with(op)
}

// canPlaceAt checks that no operation in moment idx uses any of qubits.
func (b *Builder) canPlaceAt(idx int, qubits []Qubit) bool {
	return !b.moments[idx].Touches(qubits)
}
