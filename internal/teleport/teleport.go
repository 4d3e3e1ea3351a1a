// Package teleport runs single-qubit teleportation from Message to Bob
// through an entangled pair shared by Alice and Bob.
package teleport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"qalgos/internal/circuit"
	"qalgos/internal/sim"
)

var (
	ErrNotSingleQubit   = errors.New("message preparation must be a single-qubit unitary gate")
	ErrTeleportMismatch = errors.New("bob's state differs from the prepared message")
)

// Protocol roles.
var (
	Message = circuit.NamedQubit("Message")
	Alice   = circuit.NamedQubit("Alice")
	Bob     = circuit.NamedQubit("Bob")
)

// MeasurementKey is the key of Alice's Bell-basis measurement.
const MeasurementKey = "Message,Alice"

const blochTolerance = 1e-6

// Build returns the teleportation circuit for a message prepared from |0⟩
// by prep. Bob's corrections are controlled by the measured qubits, which
// the measurement has already collapsed, so they act as classical control.
func Build(prep circuit.Gate) (*circuit.Circuit, error) {
	if prep == nil || prep.NumQubits() != 1 || circuit.IsMeasurement(prep) {
		return nil, ErrNotSingleQubit
	}
	return circuit.NewBuilder().
		Append(circuit.InsertEarliest, circuit.Op(prep, Message)).
		// Bell pair between Alice and Bob.
		Append(circuit.InsertEarliest, circuit.Op(circuit.H, Alice), circuit.Op(circuit.CNOT, Alice, Bob)).
		// Alice's Bell-basis measurement.
		Append(circuit.InsertEarliest,
			circuit.Op(circuit.CNOT, Message, Alice),
			circuit.Op(circuit.H, Message),
			circuit.Measure(Message, Alice)).
		// Bob's corrections.
		Append(circuit.InsertEarliest, circuit.Op(circuit.CNOT, Alice, Bob), circuit.Op(circuit.CZ, Message, Bob)).
		Build()
}

// Options configures one teleportation run. A nil MessageGate means H.
type Options struct {
	MessageGate circuit.Gate
	Decimals    int
}

func DefaultOptions() Options {
	return Options{MessageGate: circuit.H, Decimals: 2}
}

// Report summarises a teleportation run.
type Report struct {
	RunID   string
	Circuit *circuit.Circuit
	Result  *sim.StateResult
	// Message is the Bloch vector of prep|0⟩, Bob the one of Bob's qubit
	// after the protocol.
	Message [3]float64
	Bob     [3]float64
}

// Run teleports the message state and checks that Bob ends up holding it.
func Run(ctx context.Context, s *sim.Simulator, opts Options, w io.Writer) (*Report, error) {
	runID := uuid.NewString()
	log := zap.L().With(zap.String("run_id", runID), zap.String("pipeline", "teleport"))

	prep := opts.MessageGate
	if prep == nil {
		prep = circuit.H
	}
	c, err := Build(prep)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(w, "%s\n\n", c)

	res, err := s.Simulate(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("simulate teleportation: %w", err)
	}
	fmt.Fprintf(w, "measurements: %s=%s\n", MeasurementKey, bits(res.Measurements[MeasurementKey]))
	fmt.Fprintf(w, "output vector: %s\n\n", res.DiracNotation(opts.Decimals))

	message, err := messageBloch(ctx, s, prep)
	if err != nil {
		return nil, err
	}
	bob, err := res.BlochVector(Bob)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(w, "message bloch vector: %s\n", formatBloch(message))
	fmt.Fprintf(w, "bob bloch vector:     %s\n", formatBloch(bob))

	report := &Report{RunID: runID, Circuit: c, Result: res, Message: message, Bob: bob}
	for i := range message {
		if math.Abs(message[i]-bob[i]) > blochTolerance {
			log.Error("teleportation mismatch",
				zap.Float64s("message", message[:]),
				zap.Float64s("bob", bob[:]))
			return report, fmt.Errorf("%w: message %s, bob %s", ErrTeleportMismatch, formatBloch(message), formatBloch(bob))
		}
	}
	log.Info("teleported message",
		zap.String("gate", prep.Name()),
		zap.Ints("measurement", res.Measurements[MeasurementKey]))
	return report, nil
}

// messageBloch prepares the message on its own to get the reference state.
func messageBloch(ctx context.Context, s *sim.Simulator, prep circuit.Gate) ([3]float64, error) {
	c, err := circuit.NewBuilder().Append(circuit.InsertEarliest, circuit.Op(prep, Message)).Build()
	if err != nil {
		return [3]float64{}, err
	}
	res, err := s.Simulate(ctx, c)
	if err != nil {
		return [3]float64{}, fmt.Errorf("simulate message: %w", err)
	}
	return res.BlochVector(Message)
}

func formatBloch(v [3]float64) string {
	return fmt.Sprintf("x=%.3f y=%.3f z=%.3f", v[0], v[1], v[2])
}

func bits(b []int) string {
	out := make([]byte, len(b))
	for i, v := range b {
		out[i] = byte('0' + v)
	}
	return string(out)
}
