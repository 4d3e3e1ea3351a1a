package circuit

import (
	"fmt"
	"math"
	"math/cmplx"
)

// Gate is an operation of fixed arity that can be placed on qubits.
type Gate interface {
	// Name identifies the gate kind, e.g. "H" or "CNOT".
	Name() string
	// NumQubits is the number of qubits the gate acts on.
	NumQubits() int
	// DiagramInfo returns one diagram label per qubit, in placement order.
	DiagramInfo() []string
}

// Unitary is implemented by gates that expose their matrix. Row and column
// indices are big-endian over the operation's qubits: the first qubit is the
// most significant bit.
type Unitary interface {
	Gate
	Unitary() Matrix
}

// Adjointer is implemented by gates that can be inverted.
type Adjointer interface {
	Adjoint() Gate
}

// PhaseGate is implemented by two-qubit controlled-phase gates that multiply
// |11⟩ by exp(i·PhaseAngle()).
type PhaseGate interface {
	Gate
	PhaseAngle() float64
}

// fixedGate is a parameterless built-in gate.
type fixedGate struct {
	name   string
	labels []string
	matrix Matrix
}

func (g *fixedGate) Name() string          { return g.name }
func (g *fixedGate) NumQubits() int        { return len(g.labels) }
func (g *fixedGate) DiagramInfo() []string { return append([]string(nil), g.labels...) }
func (g *fixedGate) Unitary() Matrix       { return g.matrix.Clone() }
func (g *fixedGate) String() string        { return g.name }

func (g *fixedGate) Adjoint() Gate {
	switch g {
	case S:
		return SDG
	case SDG:
		return S
	case T:
		return TDG
	case TDG:
		return T
	}
	return g
}

var (
	invSqrt2 = complex(1/math.Sqrt2, 0)
	tPhase   = cmplx.Rect(1, math.Pi/4)
)

// Built-in gates.
var (
	H = &fixedGate{name: "H", labels: []string{"H"}, matrix: Matrix{
		{invSqrt2, invSqrt2},
		{invSqrt2, -invSqrt2},
	}}
	X = &fixedGate{name: "X", labels: []string{"X"}, matrix: Matrix{
		{0, 1},
		{1, 0},
	}}
	Y = &fixedGate{name: "Y", labels: []string{"Y"}, matrix: Matrix{
		{0, -1i},
		{1i, 0},
	}}
	Z = &fixedGate{name: "Z", labels: []string{"Z"}, matrix: Matrix{
		{1, 0},
		{0, -1},
	}}
	S = &fixedGate{name: "S", labels: []string{"S"}, matrix: Matrix{
		{1, 0},
		{0, 1i},
	}}
	SDG = &fixedGate{name: "SDG", labels: []string{"S†"}, matrix: Matrix{
		{1, 0},
		{0, -1i},
	}}
	T = &fixedGate{name: "T", labels: []string{"T"}, matrix: Matrix{
		{1, 0},
		{0, tPhase},
	}}
	TDG = &fixedGate{name: "TDG", labels: []string{"T†"}, matrix: Matrix{
		{1, 0},
		{0, cmplx.Conj(tPhase)},
	}}
	CNOT = &fixedGate{name: "CNOT", labels: []string{"@", "X"}, matrix: Matrix{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 0, 1},
		{0, 0, 1, 0},
	}}
	CZ = &fixedGate{name: "CZ", labels: []string{"@", "@"}, matrix: Matrix{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, -1},
	}}
	TOFFOLI = &fixedGate{name: "TOFFOLI", labels: []string{"@", "@", "X"}, matrix: toffoliMatrix()}
)

func toffoliMatrix() Matrix {
	m := Identity(8)
	m[6][6], m[6][7] = 0, 1
	m[7][6], m[7][7] = 1, 0
	return m
}

// Rotation rotates a single qubit by Theta radians about the X, Y or Z axis.
type Rotation struct {
	Axis  byte
	Theta float64
}

func RX(theta float64) Rotation { return Rotation{Axis: 'x', Theta: theta} }
func RY(theta float64) Rotation { return Rotation{Axis: 'y', Theta: theta} }
func RZ(theta float64) Rotation { return Rotation{Axis: 'z', Theta: theta} }

func (r Rotation) Name() string   { return fmt.Sprintf("R%c", r.Axis-'a'+'A') }
func (r Rotation) NumQubits() int { return 1 }

func (r Rotation) DiagramInfo() []string {
	return []string{fmt.Sprintf("R%c(%.3g)", r.Axis, r.Theta)}
}

func (r Rotation) Adjoint() Gate {
	return Rotation{Axis: r.Axis, Theta: -r.Theta}
}

func (r Rotation) Unitary() Matrix {
	c := complex(math.Cos(r.Theta/2), 0)
	s := math.Sin(r.Theta / 2)
	switch r.Axis {
	case 'x':
		return Matrix{{c, complex(0, -s)}, {complex(0, -s), c}}
	case 'y':
		return Matrix{{c, complex(-s, 0)}, {complex(s, 0), c}}
	default:
		phase := cmplx.Rect(1, r.Theta/2)
		return Matrix{{cmplx.Conj(phase), 0}, {0, phase}}
	}
}

// CPhase multiplies the |11⟩ component of its two qubits by exp(i·Theta).
type CPhase struct {
	Theta float64
}

func (g CPhase) Name() string          { return "CPHASE" }
func (g CPhase) NumQubits() int        { return 2 }
func (g CPhase) PhaseAngle() float64   { return g.Theta }
func (g CPhase) Adjoint() Gate         { return CPhase{Theta: -g.Theta} }
func (g CPhase) Unitary() Matrix       { return ControlledPhaseMatrix(UnitPhase(g.Theta)) }
func (g CPhase) DiagramInfo() []string { return []string{"@", fmt.Sprintf("P(%.3g)", g.Theta)} }

// MeasureGate measures its qubits in the computational basis and records the
// outcome bits under Key.
type MeasureGate struct {
	Key string
	N   int
}

func (g MeasureGate) Name() string   { return "MEASURE" }
func (g MeasureGate) NumQubits() int { return g.N }

func (g MeasureGate) DiagramInfo() []string {
	labels := make([]string, g.N)
	for i := range labels {
		labels[i] = "M"
	}
	return labels
}

// IsMeasurement reports whether g is a measurement.
func IsMeasurement(g Gate) bool {
	_, ok := g.(MeasureGate)
	return ok
}

// UnitPhase returns exp(i·theta), exact at multiples of π/2.
func UnitPhase(theta float64) complex128 {
	turns := theta / (math.Pi / 2)
	if r := math.Round(turns); math.Abs(turns-r) < 1e-15 {
		switch int64(r) % 4 {
		case 0:
			return 1
		case 1, -3:
			return 1i
		case 2, -2:
			return -1
		case 3, -1:
			return -1i
		}
	}
	return cmplx.Rect(1, theta)
}

// ControlledPhaseMatrix returns diag(1, 1, 1, phase).
func ControlledPhaseMatrix(phase complex128) Matrix {
	m := Identity(4)
	m[3][3] = phase
	return m
}
