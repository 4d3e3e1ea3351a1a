package grover

import (
	"bytes"
	"context"
	"testing"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qalgos/internal/circuit"
	"qalgos/internal/sim"
)

func TestBuildLayout(t *testing.T) {
	c, err := Build(Oracle11())
	require.NoError(t, err)

	want := heredoc.Doc(`
		q(0):    ───H───────@───H───X───────@───X───H───────M───
		                    │               │               │
		q(1):    ───H───────@───H───X───H───X───H───X───H───M───
		                    │
		ancilla: ───X───H───X───────────────────────────────────`)
	assert.Equal(t, want, c.String())
	assert.Equal(t, map[string]int{"X": 5, "H": 9, "TOFFOLI": 1, "CNOT": 1, "MEASURE": 1}, c.GateCounts())
}

func TestMarkedItemAlwaysFound(t *testing.T) {
	c, err := Build(Oracle11())
	require.NoError(t, err)

	for seed := range uint64(10) {
		res, err := sim.New(sim.WithSeed(seed)).Run(context.Background(), c, 5)
		require.NoError(t, err)
		assert.Equal(t, sim.Counts{Marked: 5}, res.Counts(MeasurementKey))
		assert.Equal(t, "q(0),q(1)=11111, 11111", res.String())
	}
}

func TestOracleIsAParameter(t *testing.T) {
	// An oracle that marks nothing leaves the search register uniform.
	unmarked := circuit.Op(circuit.X, Ancilla)
	c, err := Build(unmarked)
	require.NoError(t, err)
	res, err := sim.New(sim.WithSeed(3)).Run(context.Background(), c, 400)
	require.NoError(t, err)
	counts := res.Counts(MeasurementKey)
	for _, bits := range []string{"00", "01", "10", "11"} {
		assert.Greater(t, counts[bits], uint32(50), bits)
	}
}

func TestRun(t *testing.T) {
	var out bytes.Buffer
	report, err := Run(context.Background(), sim.New(), DefaultOptions(), &out)
	require.NoError(t, err)
	assert.Equal(t, 5, report.Result.Repetitions)
	assert.NotEmpty(t, report.RunID)
	assert.Contains(t, out.String(), "q(0),q(1)=11111, 11111\n")
	assert.Contains(t, out.String(), `counts: {"11":5}`)

	out.Reset()
	_, err = Run(context.Background(), sim.New(), Options{Repetitions: 3, JSON: true}, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "{\n  \"11\": 3\n}\n")

	_, err = Run(context.Background(), sim.New(), Options{Repetitions: 0}, &out)
	assert.ErrorIs(t, err, sim.ErrInvalidRepetitions)
}
