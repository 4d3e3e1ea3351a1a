// Package grover runs a two-bit Grover search whose oracle marks |11⟩.
package grover

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"qalgos/internal/circuit"
	"qalgos/internal/sim"
)

// Search register and oracle ancilla.
var (
	Q0      = circuit.LineQubit(0)
	Q1      = circuit.LineQubit(1)
	Ancilla = circuit.NamedQubit("ancilla")
)

// MeasurementKey is the key the search register is measured under.
const MeasurementKey = "q(0),q(1)"

// Marked is the bit string the oracle marks.
const Marked = "11"

// Oracle11 flips the ancilla iff both search qubits are 1.
func Oracle11() circuit.Operation {
	return circuit.Op(circuit.TOFFOLI, Q0, Q1, Ancilla)
}

// Build returns one Grover iteration around oracle: the ancilla is prepared
// in |−⟩, the search register in uniform superposition, and the diffusion
// operator follows the oracle before both search qubits are measured.
func Build(oracle circuit.Operation) (*circuit.Circuit, error) {
	return circuit.NewBuilder().
		Append(circuit.InsertEarliest, circuit.Op(circuit.X, Ancilla)).
		Append(circuit.InsertEarliest, circuit.OnEach(circuit.H, Q0, Q1, Ancilla)...).
		Append(circuit.InsertEarliest, oracle).
		// 2|ψ⟩⟨ψ| - I
		Append(circuit.InsertEarliest, circuit.OnEach(circuit.H, Q0, Q1)...).
		Append(circuit.InsertEarliest, circuit.OnEach(circuit.X, Q1, Q0)...).
		Append(circuit.InsertEarliest, circuit.Op(circuit.H, Q1)).
		Append(circuit.InsertEarliest, circuit.Op(circuit.CNOT, Q0, Q1)).
		Append(circuit.InsertEarliest, circuit.Op(circuit.H, Q1)).
		Append(circuit.InsertEarliest, circuit.OnEach(circuit.X, Q1, Q0)...).
		Append(circuit.InsertEarliest, circuit.OnEach(circuit.H, Q0, Q1)...).
		Append(circuit.InsertEarliest, circuit.Measure(Q0, Q1)).
		Build()
}

// Options configures one Grover pipeline run.
type Options struct {
	Repetitions int
	JSON        bool
}

func DefaultOptions() Options {
	return Options{Repetitions: 5}
}

// Report summarises a Grover pipeline run.
type Report struct {
	RunID   string
	Circuit *circuit.Circuit
	Result  *sim.Result
	Counts  sim.Counts
}

// Run builds the search circuit with Oracle11, samples it and prints the
// outcomes.
func Run(ctx context.Context, s *sim.Simulator, opts Options, w io.Writer) (*Report, error) {
	runID := uuid.NewString()
	log := zap.L().With(zap.String("run_id", runID), zap.String("pipeline", "grover"))

	c, err := Build(Oracle11())
	if err != nil {
		return nil, fmt.Errorf("build grover: %w", err)
	}
	fmt.Fprintf(w, "%s\n\n", c)

	res, err := s.Run(ctx, c, opts.Repetitions)
	if err != nil {
		return nil, fmt.Errorf("run grover: %w", err)
	}
	counts := res.Counts(MeasurementKey)
	fmt.Fprintln(w, res)
	if opts.JSON {
		fmt.Fprint(w, counts.Pretty())
	} else {
		fmt.Fprintf(w, "counts: %s\n", counts)
	}

	if hits := counts[Marked]; int(hits) != opts.Repetitions {
		log.Warn("marked item not found in every repetition",
			zap.Uint32("hits", hits),
			zap.Int("repetitions", opts.Repetitions))
	} else {
		log.Info("grover search complete", zap.Int("repetitions", opts.Repetitions))
	}
	return &Report{RunID: runID, Circuit: c, Result: res, Counts: counts}, nil
}
