package qft

import (
	"bytes"
	"context"
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qalgos/internal/circuit"
	"qalgos/internal/sim"
)

func TestCZPowUnitary(t *testing.T) {
	for d := 1; d <= 12; d++ {
		g := CZPow{D: d}
		m := g.Unitary()
		assert.True(t, m.IsUnitary(1e-12), "d=%d", d)
		assert.InDelta(t, math.Pi/math.Pow(2, float64(d-1)), cmplx.Phase(m[3][3]), 1e-12, "d=%d", d)

		inv := g.Adjoint().(circuit.Unitary).Unitary()
		assert.True(t, inv.Mul(m).ApproxEqual(circuit.Identity(4), 1e-12), "d=%d", d)
	}
}

func TestCZPowExactPhases(t *testing.T) {
	assert.Equal(t, circuit.CZ.Unitary(), CZPow{D: 1}.Unitary())
	assert.Equal(t, complex128(-1), CZPow{D: 1}.Phase())
	assert.Equal(t, complex128(1i), CZPow{D: 2}.Phase())
	assert.Equal(t, complex128(1), CZPow{D: 0}.Phase())
	assert.Equal(t, complex128(-1i), CZPow{D: 2}.Adjoint().(CZPow).Phase())
}

func TestCZPowDiagramInfo(t *testing.T) {
	g := CZPow{D: 3}
	assert.Equal(t, 2, g.NumQubits())
	assert.Equal(t, []string{"@", "CZ(3)"}, g.DiagramInfo())

	adj := g.Adjoint().(CZPow)
	assert.True(t, adj.IsAdjoint())
	assert.Equal(t, []string{"@", "CZ(3)†"}, adj.DiagramInfo())
	assert.Equal(t, g, adj.Adjoint())
}

func TestLayoutGateCounts(t *testing.T) {
	for n := 1; n <= 8; n++ {
		qubits, err := NewQubits(n)
		require.NoError(t, err)
		c, err := Build(qubits)
		require.NoError(t, err)

		counts := c.GateCounts()
		assert.Equal(t, n, counts["H"], "n=%d", n)
		assert.Equal(t, n*(n-1)/2, counts["CZPOW"], "n=%d", n)
		assert.Equal(t, n*(n+1)/2, c.Depth(), "n=%d", n)

		for k, m := range c.Moments() {
			seen := make(map[circuit.Qubit]bool)
			for _, op := range m.Operations() {
				for _, q := range op.Qubits {
					assert.False(t, seen[q], "n=%d moment %d reuses %s", n, k, q)
					seen[q] = true
					assert.True(t, q.Index() >= 0 && q.Index() < n, "n=%d: %s out of range", n, q)
				}
			}
		}
	}
}

func TestLayoutOrder(t *testing.T) {
	q := circuit.LineQubits(3)
	ops, err := Operations(q)
	require.NoError(t, err)

	want := []circuit.Operation{
		circuit.Op(circuit.H, q[2]),
		circuit.Op(CZPow{D: 1}, q[1], q[2]),
		circuit.Op(CZPow{D: 2}, q[0], q[2]),
		circuit.Op(circuit.H, q[1]),
		circuit.Op(CZPow{D: 1}, q[0], q[1]),
		circuit.Op(circuit.H, q[0]),
	}
	assert.Equal(t, want, ops)
}

func TestLayoutSingleQubit(t *testing.T) {
	qubits, err := NewQubits(1)
	require.NoError(t, err)
	c, err := Build(qubits)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"H": 1}, c.GateCounts())
	assert.Equal(t, 1, c.Depth())
}

func TestInvalidQubitCount(t *testing.T) {
	for _, n := range []int{0, -1, -10} {
		_, err := NewQubits(n)
		assert.ErrorIs(t, err, ErrInvalidQubitCount)
	}
	_, err := Build(nil)
	assert.ErrorIs(t, err, ErrInvalidQubitCount)
	_, err = Run(context.Background(), sim.New(), Options{Qubits: 0}, &bytes.Buffer{})
	assert.ErrorIs(t, err, ErrInvalidQubitCount)
}

func TestTransformOfZeroIsUniform(t *testing.T) {
	qubits := circuit.LineQubits(4)
	c, err := Build(qubits)
	require.NoError(t, err)
	res, err := sim.New().Simulate(context.Background(), c, sim.WithQubitOrder(qubits))
	require.NoError(t, err)
	for i, a := range res.State.Amplitudes {
		assert.InDelta(t, 0.25, real(a), 1e-12, "amplitude %d", i)
		assert.InDelta(t, 0, imag(a), 1e-12, "amplitude %d", i)
	}
}

func TestInverseRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := sim.New()
	for n := 1; n <= 7; n++ {
		qubits := circuit.LineQubits(n)
		c, err := Build(qubits)
		require.NoError(t, err)
		inv, err := Inverse(qubits)
		require.NoError(t, err)
		assert.Equal(t, c.Depth(), inv.Depth())

		// start from a non-trivial basis state so phases matter
		start := make([]complex128, 1<<n)
		start[len(start)-1] = 1
		out, err := s.Simulate(ctx, c, sim.WithQubitOrder(qubits), sim.WithInitialState(start))
		require.NoError(t, err)
		back, err := s.Simulate(ctx, inv, sim.WithQubitOrder(qubits), sim.WithInitialState(out.State.Amplitudes))
		require.NoError(t, err)
		assert.InDelta(t, 1, sim.Fidelity(start, back.State.Amplitudes), 1e-6, "n=%d", n)
	}
}

func TestRun(t *testing.T) {
	var out bytes.Buffer
	report, err := Run(context.Background(), sim.New(sim.WithSeed(7)), Options{Qubits: 3, Decimals: 2, PrintQASM: true}, &out)
	require.NoError(t, err)

	assert.InDelta(t, 1, report.RecoveredAmplitude, 1e-6)
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, "|000⟩", report.Recovered.DiracNotation(2))
	assert.Equal(t, 6, report.Circuit.Depth())

	text := out.String()
	assert.Contains(t, text, "OPENQASM 2.0;")
	assert.Contains(t, text, "cu1(pi/2) q[0], q[2];")
	assert.Contains(t, text, "P(-1.57)")
	assert.Contains(t, text, "0.35|000⟩ + 0.35|001⟩")
	assert.Contains(t, text, "|0…0⟩ amplitude after round trip: 1.000000")
}

func TestInverseLayout(t *testing.T) {
	q := circuit.LineQubits(3)
	ops, err := InverseOperations(q)
	require.NoError(t, err)

	want := []circuit.Operation{
		circuit.Op(circuit.H, q[0]),
		circuit.Op(circuit.CPhase{Theta: -math.Pi}, q[0], q[1]),
		circuit.Op(circuit.H, q[1]),
		circuit.Op(circuit.CPhase{Theta: -math.Pi / 2}, q[0], q[2]),
		circuit.Op(circuit.CPhase{Theta: -math.Pi}, q[1], q[2]),
		circuit.Op(circuit.H, q[2]),
	}
	assert.Equal(t, want, ops)

	_, err = Inverse(nil)
	assert.ErrorIs(t, err, ErrInvalidQubitCount)
}

func TestInverseUndoesEveryBasisState(t *testing.T) {
	ctx := context.Background()
	s := sim.New()
	qubits := circuit.LineQubits(4)
	c, err := Build(qubits)
	require.NoError(t, err)
	inv, err := Inverse(qubits)
	require.NoError(t, err)

	for b := range 1 << len(qubits) {
		start := make([]complex128, 1<<len(qubits))
		start[b] = 1
		out, err := s.Simulate(ctx, c, sim.WithQubitOrder(qubits), sim.WithInitialState(start))
		require.NoError(t, err)
		back, err := s.Simulate(ctx, inv, sim.WithQubitOrder(qubits), sim.WithInitialState(out.State.Amplitudes))
		require.NoError(t, err)
		assert.InDelta(t, 1, sim.Fidelity(start, back.State.Amplitudes), 1e-9, "basis state %d", b)
	}
}

func TestRunDetectsBrokenLayout(t *testing.T) {
	// a stray X in front of the transform moves |0…0⟩ to another basis state
	broken := func(qubits []circuit.Qubit) (*circuit.Circuit, error) {
		ops, err := Operations(qubits)
		if err != nil {
			return nil, err
		}
		ops = append([]circuit.Operation{circuit.Op(circuit.X, qubits[0])}, ops...)
		return circuit.NewBuilder().Append(circuit.InsertNew, ops...).Build()
	}

	var out bytes.Buffer
	report, err := run(context.Background(), sim.New(), Options{Qubits: 3, Decimals: 2}, &out, broken)
	assert.ErrorIs(t, err, ErrRoundTrip)
	require.NotNil(t, report)
	assert.InDelta(t, 0, report.RecoveredAmplitude, 1e-9)
	assert.Equal(t, "|100⟩", report.Recovered.DiracNotation(2))
	assert.Contains(t, out.String(), "|0…0⟩ amplitude after round trip: 0.000000")
}
