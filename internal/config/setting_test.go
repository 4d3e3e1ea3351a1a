package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"qalgos/internal/circuit"
)

func TestParseSetting(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Setting
	}{
		{
			name: "empty",
			in:   "",
			want: DefaultSetting(),
		},
		{
			name: "partial override",
			in: heredoc.Doc(`
				[qft]
				qubits = 4
				print_qasm = true

				[teleport]
				message_gate = "ry(pi/3)"
			`),
			want: Setting{
				Simulator: SimulatorSetting{Decimals: 2},
				QFT:       QFTSetting{Qubits: 4, PrintQASM: true},
				Grover:    GroverSetting{Repetitions: 5},
				Teleport:  TeleportSetting{MessageGate: "ry(pi/3)"},
			},
		},
		{
			name: "full",
			in: heredoc.Doc(`
				[simulator]
				seed = 42
				decimals = 3

				[qft]
				qubits = 1

				[grover]
				repetitions = 100

				[teleport]
				message_gate = "x"
			`),
			want: Setting{
				Simulator: SimulatorSetting{Seed: 42, Decimals: 3},
				QFT:       QFTSetting{Qubits: 1},
				Grover:    GroverSetting{Repetitions: 100},
				Teleport:  TeleportSetting{MessageGate: "x"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSetting(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSettingRejectsBadValues(t *testing.T) {
	in := heredoc.Doc(`
		[simulator]
		decimals = -1

		[qft]
		qubits = 0

		[grover]
		repetitions = 0

		[teleport]
		message_gate = "cx"
	`)
	_, err := ParseSetting(in)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidSetting)
	errs := multierr.Errors(err)
	require.Len(t, errs, 4)
	assert.Contains(t, errs[0].Error(), "simulator.decimals")
	assert.Contains(t, errs[1].Error(), "qft.qubits")
	assert.Contains(t, errs[2].Error(), "grover.repetitions")
	assert.Contains(t, errs[3].Error(), "teleport.message_gate")
}

func TestParseSettingRejectsUnknownKeys(t *testing.T) {
	_, err := ParseSetting("[qft]\nqbits = 3\n")
	assert.ErrorIs(t, err, ErrInvalidSetting)
	assert.Contains(t, err.Error(), "qft.qbits")

	_, err = ParseSetting("[qft\n")
	assert.Error(t, err)
}

func TestLoadSetting(t *testing.T) {
	dir := t.TempDir()

	s, err := LoadSetting(filepath.Join(dir, "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultSetting(), s)

	path := filepath.Join(dir, "qalgos.toml")
	require.NoError(t, os.WriteFile(path, []byte("[grover]\nrepetitions = 7\n"), 0o600))
	s, err = LoadSetting(path)
	require.NoError(t, err)
	assert.Equal(t, 7, s.Grover.Repetitions)

	require.NoError(t, os.WriteFile(path, []byte("[grover]\nrepetitions = -7\n"), 0o600))
	_, err = LoadSetting(path)
	assert.ErrorIs(t, err, ErrInvalidSetting)
	assert.Contains(t, err.Error(), path)
}

func TestMessageGate(t *testing.T) {
	g, err := DefaultSetting().MessageGate()
	require.NoError(t, err)
	assert.Equal(t, circuit.H, g)

	s := DefaultSetting()
	s.Teleport.MessageGate = "nope"
	_, err = s.MessageGate()
	assert.Error(t, err)
}
