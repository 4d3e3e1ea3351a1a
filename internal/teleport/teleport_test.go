package teleport

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qalgos/internal/circuit"
	"qalgos/internal/sim"
)

func TestBuildLayout(t *testing.T) {
	c, err := Build(circuit.H)
	require.NoError(t, err)

	var got [][]string
	for _, m := range c.Moments() {
		var ops []string
		for _, op := range m.Operations() {
			ops = append(ops, op.String())
		}
		got = append(got, ops)
	}
	assert.Equal(t, [][]string{
		{"H(Message)", "H(Alice)"},
		{"CNOT(Alice, Bob)"},
		{"CNOT(Message, Alice)"},
		{"H(Message)"},
		{"MEASURE(Message, Alice)"},
		{"CNOT(Alice, Bob)"},
		{"CZ(Message, Bob)"},
	}, got)
	assert.Equal(t, []circuit.Qubit{Alice, Bob, Message}, c.Qubits())
}

func TestBuildRejectsNonSingleQubitGates(t *testing.T) {
	for _, g := range []circuit.Gate{nil, circuit.CNOT, circuit.TOFFOLI, circuit.MeasureGate{Key: "m", N: 1}} {
		_, err := Build(g)
		assert.ErrorIs(t, err, ErrNotSingleQubit)
	}
}

func TestBobReceivesMessage(t *testing.T) {
	tests := []struct {
		name string
		prep circuit.Gate
		want [3]float64
	}{
		{name: "hadamard", prep: circuit.H, want: [3]float64{1, 0, 0}},
		{name: "x", prep: circuit.X, want: [3]float64{0, 0, -1}},
		{name: "t", prep: circuit.T, want: [3]float64{0, 0, 1}},
		{name: "ry(pi/3)", prep: circuit.RY(math.Pi / 3), want: [3]float64{math.Sqrt(3) / 2, 0, 0.5}},
		{name: "rx(0.7)", prep: circuit.RX(0.7), want: [3]float64{0, -math.Sin(0.7), math.Cos(0.7)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Build(tt.prep)
			require.NoError(t, err)
			outcomes := make(map[string]bool)
			for seed := range uint64(64) {
				res, err := sim.New(sim.WithSeed(seed)).Simulate(context.Background(), c)
				require.NoError(t, err)
				outcomes[bits(res.Measurements[MeasurementKey])] = true

				bob, err := res.BlochVector(Bob)
				require.NoError(t, err)
				assert.InDeltaSlice(t, tt.want[:], bob[:], 1e-9, "seed %d", seed)
			}
			// every Bell outcome is equally likely
			assert.Len(t, outcomes, 4)
		})
	}
}

func TestBobAmplitudesForHadamard(t *testing.T) {
	c, err := Build(circuit.H)
	require.NoError(t, err)
	res, err := sim.New(sim.WithSeed(11)).Simulate(context.Background(), c)
	require.NoError(t, err)

	// Message and Alice are collapsed, so Bob's amplitudes sit on the two
	// basis states that agree with the outcome. Qubit order is Alice, Bob,
	// Message.
	m := res.Measurements[MeasurementKey]
	a0, err := res.Amplitude(fmt.Sprintf("%d0%d", m[1], m[0]))
	require.NoError(t, err)
	a1, err := res.Amplitude(fmt.Sprintf("%d1%d", m[1], m[0]))
	require.NoError(t, err)

	assert.InDelta(t, 1/math.Sqrt2, cmplx.Abs(a0), 1e-9)
	assert.InDelta(t, 1/math.Sqrt2, cmplx.Abs(a1), 1e-9)
	// equal relative phase: |+⟩ up to a global phase
	assert.InDelta(t, 0, cmplx.Abs(a1/a0-1), 1e-9)
}

func TestRun(t *testing.T) {
	var out bytes.Buffer
	report, err := Run(context.Background(), sim.New(sim.WithSeed(5)), DefaultOptions(), &out)
	require.NoError(t, err)
	assert.InDeltaSlice(t, report.Message[:], report.Bob[:], 1e-9)
	assert.NotEmpty(t, report.RunID)

	text := out.String()
	assert.Contains(t, text, "measurements: Message,Alice=")
	assert.Contains(t, text, "output vector: ")
	assert.Contains(t, text, "message bloch vector: x=1.000")
	assert.Contains(t, text, "bob bloch vector:     x=1.000")

	out.Reset()
	report, err = Run(context.Background(), sim.New(), Options{}, &out)
	require.NoError(t, err)
	assert.Equal(t, "H", report.Circuit.Operations()[0].Gate.Name())

	_, err = Run(context.Background(), sim.New(), Options{MessageGate: circuit.CZ}, &out)
	assert.ErrorIs(t, err, ErrNotSingleQubit)
}
