package qft

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"math/cmplx"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"qalgos/internal/circuit"
	"qalgos/internal/qasm"
	"qalgos/internal/sim"
)

var ErrRoundTrip = errors.New("inverse qft did not recover the all-zero state")

const roundTripTolerance = 1e-6

// Options configures one QFT pipeline run.
type Options struct {
	Qubits    int
	Decimals  int
	PrintQASM bool
}

// DefaultOptions is a 10-qubit transform printed with two decimals.
func DefaultOptions() Options {
	return Options{Qubits: 10, Decimals: 2}
}

// Report summarises a QFT pipeline run.
type Report struct {
	RunID     string
	Circuit   *circuit.Circuit
	Inverse   *circuit.Circuit
	Output    *sim.StateResult
	Recovered *sim.StateResult
	// RecoveredAmplitude is |⟨0…0|ψ⟩| after the inverse transform.
	RecoveredAmplitude float64
}

// Run builds the QFT, simulates it from |0…0⟩, feeds the output through the
// inverse QFT and checks that the all-zero state comes back.
func Run(ctx context.Context, s *sim.Simulator, opts Options, w io.Writer) (*Report, error) {
	return run(ctx, s, opts, w, Build)
}

func run(ctx context.Context, s *sim.Simulator, opts Options, w io.Writer, build func([]circuit.Qubit) (*circuit.Circuit, error)) (*Report, error) {
	runID := uuid.NewString()
	log := zap.L().With(zap.String("run_id", runID), zap.String("pipeline", "qft"))

	qubits, err := NewQubits(opts.Qubits)
	if err != nil {
		return nil, err
	}
	c, err := build(qubits)
	if err != nil {
		return nil, fmt.Errorf("build qft: %w", err)
	}
	log.Info("built qft circuit",
		zap.Int("qubits", len(qubits)),
		zap.Int("moments", c.Depth()),
		zap.Any("gates", c.GateCounts()))
	fmt.Fprintf(w, "%s\n\n", c)

	if opts.PrintQASM {
		src, err := qasm.Export(c)
		if err != nil {
			return nil, fmt.Errorf("export qft: %w", err)
		}
		fmt.Fprintf(w, "%s\n", src)
	}

	out, err := s.Simulate(ctx, c, sim.WithQubitOrder(qubits))
	if err != nil {
		return nil, fmt.Errorf("simulate qft: %w", err)
	}
	fmt.Fprintf(w, "%s\n\n", out.DiracNotation(opts.Decimals))

	inv, err := Inverse(qubits)
	if err != nil {
		return nil, fmt.Errorf("build inverse qft: %w", err)
	}
	fmt.Fprintf(w, "%s\n\n", inv)

	back, err := s.Simulate(ctx, inv, sim.WithQubitOrder(qubits), sim.WithInitialState(out.State.Amplitudes))
	if err != nil {
		return nil, fmt.Errorf("simulate inverse qft: %w", err)
	}
	fmt.Fprintf(w, "%s\n\n", back.DiracNotation(opts.Decimals))

	report := &Report{
		RunID:              runID,
		Circuit:            c,
		Inverse:            inv,
		Output:             out,
		Recovered:          back,
		RecoveredAmplitude: cmplx.Abs(back.State.Amplitudes[0]),
	}
	fmt.Fprintf(w, "|0…0⟩ amplitude after round trip: %.6f\n", report.RecoveredAmplitude)
	if math.Abs(report.RecoveredAmplitude-1) > roundTripTolerance {
		log.Error("qft round trip failed", zap.Float64("amplitude", report.RecoveredAmplitude))
		return report, fmt.Errorf("%w: |amplitude| = %g", ErrRoundTrip, report.RecoveredAmplitude)
	}
	log.Info("qft round trip recovered all-zero state", zap.Float64("amplitude", report.RecoveredAmplitude))
	return report, nil
}
