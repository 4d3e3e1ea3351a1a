package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"qalgos/internal/circuit"
	"qalgos/internal/qasm"
	"qalgos/internal/sim"
)

var ErrInvalidSetting = errors.New("invalid setting")

const (
	MaxQubits   = sim.MaxQubits
	MaxDecimals = 15
)

type SimulatorSetting struct {
	// Seed 0 draws a fresh seed for every run.
	Seed     uint64 `toml:"seed"`
	Decimals int    `toml:"decimals"`
}

type QFTSetting struct {
	Qubits    int  `toml:"qubits"`
	PrintQASM bool `toml:"print_qasm"`
}

type GroverSetting struct {
	Repetitions int `toml:"repetitions"`
}

type TeleportSetting struct {
	MessageGate string `toml:"message_gate"`
}

// Setting is the content of the demo setting file.
type Setting struct {
	Simulator SimulatorSetting `toml:"simulator"`
	QFT       QFTSetting       `toml:"qft"`
	Grover    GroverSetting    `toml:"grover"`
	Teleport  TeleportSetting  `toml:"teleport"`
}

// DefaultSetting reproduces the fixed demo instances: a 10-qubit QFT, five
// Grover repetitions and a Hadamard-prepared message.
func DefaultSetting() Setting {
	return Setting{
		Simulator: SimulatorSetting{Decimals: 2},
		QFT:       QFTSetting{Qubits: 10},
		Grover:    GroverSetting{Repetitions: 5},
		Teleport:  TeleportSetting{MessageGate: "h"},
	}
}

// LoadSetting reads the setting file at path on top of the defaults. A
// missing file is not an error.
func LoadSetting(path string) (Setting, error) {
	bytes, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		zap.L().Debug("setting file not found, using defaults", zap.String("path", path))
		return DefaultSetting(), nil
	}
	if err != nil {
		zap.L().Error("failed to read setting file", zap.String("path", path), zap.Error(err))
		return Setting{}, err
	}
	s, err := ParseSetting(string(bytes))
	if err != nil {
		return Setting{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// ParseSetting decodes tomlString on top of the defaults and validates the
// result. Unknown keys are rejected.
func ParseSetting(tomlString string) (Setting, error) {
	s := DefaultSetting()
	md, err := toml.Decode(tomlString, &s)
	if err != nil {
		zap.L().Error("failed to parse setting", zap.Error(err))
		return Setting{}, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Setting{}, fmt.Errorf("%w: unknown keys %s", ErrInvalidSetting, strings.Join(keys, ", "))
	}
	if err := s.Validate(); err != nil {
		return Setting{}, err
	}
	zap.L().Debug("parsed setting", zap.Any("setting", s))
	return s, nil
}

// Validate reports every out-of-range value at once.
func (s Setting) Validate() error {
	var err error
	if s.Simulator.Decimals < 0 || s.Simulator.Decimals > MaxDecimals {
		err = multierr.Append(err, fmt.Errorf("%w: simulator.decimals must be in [0, %d], got %d", ErrInvalidSetting, MaxDecimals, s.Simulator.Decimals))
	}
	if s.QFT.Qubits < 1 || s.QFT.Qubits > MaxQubits {
		err = multierr.Append(err, fmt.Errorf("%w: qft.qubits must be in [1, %d], got %d", ErrInvalidSetting, MaxQubits, s.QFT.Qubits))
	}
	if s.Grover.Repetitions < 1 {
		err = multierr.Append(err, fmt.Errorf("%w: grover.repetitions must be at least 1, got %d", ErrInvalidSetting, s.Grover.Repetitions))
	}
	if _, gerr := s.MessageGate(); gerr != nil {
		err = multierr.Append(err, fmt.Errorf("%w: teleport.message_gate: %w", ErrInvalidSetting, gerr))
	}
	return err
}

// MessageGate resolves teleport.message_gate to a single-qubit gate.
func (s Setting) MessageGate() (circuit.Gate, error) {
	g, err := qasm.ParseGate(s.Teleport.MessageGate)
	if err != nil {
		return nil, err
	}
	if g.NumQubits() != 1 {
		return nil, fmt.Errorf("%s acts on %d qubits", g.Name(), g.NumQubits())
	}
	return g, nil
}
