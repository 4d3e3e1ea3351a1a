// Package sim evolves circuits on a dense state vector and samples their
// measurements.
package sim

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"

	"go.uber.org/zap"

	"qalgos/internal/circuit"
)

var (
	ErrUnsupportedGate    = errors.New("gate has no simulation kernel or matrix")
	ErrUnknownQubit       = errors.New("qubit missing from qubit order")
	ErrInvalidRepetitions = errors.New("repetitions must be at least 1")
	ErrTooManyQubits      = errors.New("too many qubits for the state vector")
)

// MaxQubits is the widest circuit the simulator accepts; its state vector
// takes 16 MiB.
const MaxQubits = 20

// CheckQubits reports ErrTooManyQubits when n qubits exceed MaxQubits.
func CheckQubits(n int) error {
	if n > MaxQubits {
		return fmt.Errorf("%w: %d qubits, at most %d", ErrTooManyQubits, n, MaxQubits)
	}
	return nil
}

// Simulator runs circuits on a state vector. Measurement outcomes are drawn
// from the simulator's random source.
type Simulator struct {
	rng *rand.Rand
	log *zap.Logger
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithSeed makes measurement sampling reproducible.
func WithSeed(seed uint64) Option {
	return func(s *Simulator) {
		s.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}

// WithLogger sets the logger used for simulation traces. The global zap
// logger is used otherwise.
func WithLogger(log *zap.Logger) Option {
	return func(s *Simulator) {
		s.log = log
	}
}

// New returns a simulator seeded from the runtime's random source unless
// WithSeed is given.
func New(opts ...Option) *Simulator {
	s := &Simulator{rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Simulator) logger() *zap.Logger {
	if s.log != nil {
		return s.log
	}
	return zap.L()
}

type simulateConfig struct {
	order   []circuit.Qubit
	initial []complex128
}

// SimulateOption configures a single Simulate call.
type SimulateOption func(*simulateConfig)

// WithQubitOrder fixes the qubit order of the state vector. It must contain
// every qubit of the circuit and may contain more.
func WithQubitOrder(order []circuit.Qubit) SimulateOption {
	return func(c *simulateConfig) {
		c.order = slices.Clone(order)
	}
}

// WithInitialState starts the simulation from amps instead of |0…0⟩.
func WithInitialState(amps []complex128) SimulateOption {
	return func(c *simulateConfig) {
		c.initial = amps
	}
}

// Simulate evolves the state through every moment of c. Measurements
// collapse the state and their outcomes are returned with the final state.
func (s *Simulator) Simulate(ctx context.Context, c *circuit.Circuit, opts ...SimulateOption) (*StateResult, error) {
	var cfg simulateConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	order := cfg.order
	if order == nil {
		order = c.Qubits()
	}
	if err := CheckQubits(len(order)); err != nil {
		return nil, err
	}
	pos, err := positions(c, order)
	if err != nil {
		return nil, err
	}

	state := NewStateVector(len(order))
	if cfg.initial != nil {
		if state, err = FromAmplitudes(cfg.initial, len(order)); err != nil {
			return nil, err
		}
	}

	res := &StateResult{State: state, QubitOrder: order, Measurements: make(map[string][]int)}
	err = s.evolve(ctx, c, state, pos, func(key string, bits []int) {
		if _, seen := res.Measurements[key]; !seen {
			res.keys = append(res.keys, key)
		}
		res.Measurements[key] = bits
	})
	if err != nil {
		return nil, err
	}
	s.logger().Debug("simulated circuit",
		zap.Int("qubits", len(order)),
		zap.Int("moments", c.Depth()),
		zap.Int("measurements", len(res.keys)))
	return res, nil
}

// Run simulates c repetitions times from |0…0⟩ and records every
// measurement outcome.
func (s *Simulator) Run(ctx context.Context, c *circuit.Circuit, repetitions int) (*Result, error) {
	if repetitions < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidRepetitions, repetitions)
	}
	order := c.Qubits()
	if err := CheckQubits(len(order)); err != nil {
		return nil, err
	}
	pos, err := positions(c, order)
	if err != nil {
		return nil, err
	}

	res := &Result{Repetitions: repetitions, Records: make(map[string][][]int)}
	for range repetitions {
		err := s.evolve(ctx, c, NewStateVector(len(order)), pos, func(key string, bits []int) {
			if _, seen := res.Records[key]; !seen {
				res.keys = append(res.keys, key)
			}
			res.Records[key] = append(res.Records[key], bits)
		})
		if err != nil {
			return nil, err
		}
	}
	s.logger().Debug("sampled circuit",
		zap.Int("qubits", len(order)),
		zap.Int("repetitions", repetitions),
		zap.Strings("keys", res.keys))
	return res, nil
}

func (s *Simulator) evolve(ctx context.Context, c *circuit.Circuit, state *StateVector, pos map[circuit.Qubit]int, record func(string, []int)) error {
	for k, m := range c.Moments() {
		if err := ctx.Err(); err != nil {
			return err
		}
		for _, op := range m.Operations() {
			p := make([]int, len(op.Qubits))
			for i, q := range op.Qubits {
				p[i] = pos[q]
			}
			if mg, ok := op.Gate.(circuit.MeasureGate); ok {
				record(mg.Key, state.measure(p, s.rng))
				continue
			}
			if err := state.apply(op.Gate, p); err != nil {
				return fmt.Errorf("moment %d: %s: %w", k, op, err)
			}
		}
	}
	return nil
}

// positions maps every qubit of order to its state vector position and
// checks that c uses no qubit outside order.
func positions(c *circuit.Circuit, order []circuit.Qubit) (map[circuit.Qubit]int, error) {
	pos := make(map[circuit.Qubit]int, len(order))
	for i, q := range order {
		pos[q] = i
	}
	for _, q := range c.Qubits() {
		if _, ok := pos[q]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownQubit, q)
		}
	}
	return pos, nil
}
