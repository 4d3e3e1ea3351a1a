package sim

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"math/rand/v2"

	"qalgos/internal/circuit"
)

// ErrInvalidState is returned for amplitude vectors that are not a
// normalised state over 2^n basis states.
var ErrInvalidState = errors.New("invalid state vector")

const normTolerance = 1e-6

// StateVector holds one complex amplitude per computational basis state.
// Position 0 of the qubit order is the most significant bit of the index.
type StateVector struct {
	Amplitudes []complex128
	NumQubits  int
}

// NewStateVector returns |0…0⟩ over numQubits qubits. Callers keep
// numQubits within MaxQubits.
func NewStateVector(numQubits int) *StateVector {
	amps := make([]complex128, 1<<numQubits)
	amps[0] = 1
	return &StateVector{Amplitudes: amps, NumQubits: numQubits}
}

// FromAmplitudes validates amps and wraps a copy of it as a state over
// numQubits qubits.
func FromAmplitudes(amps []complex128, numQubits int) (*StateVector, error) {
	if err := CheckQubits(numQubits); err != nil {
		return nil, err
	}
	if numQubits < 0 {
		return nil, fmt.Errorf("%w: %d qubits", ErrInvalidState, numQubits)
	}
	if len(amps) != 1<<numQubits {
		return nil, fmt.Errorf("%w: %d amplitudes for %d qubits", ErrInvalidState, len(amps), numQubits)
	}
	s := &StateVector{Amplitudes: append([]complex128(nil), amps...), NumQubits: numQubits}
	if norm := s.Norm(); math.Abs(norm-1) > normTolerance {
		return nil, fmt.Errorf("%w: norm %g", ErrInvalidState, norm)
	}
	return s, nil
}

func (s *StateVector) Clone() *StateVector {
	amps := make([]complex128, len(s.Amplitudes))
	copy(amps, s.Amplitudes)
	return &StateVector{Amplitudes: amps, NumQubits: s.NumQubits}
}

// Norm returns the 2-norm of the amplitudes.
func (s *StateVector) Norm() float64 {
	sum := 0.0
	for _, a := range s.Amplitudes {
		sum += prob(a)
	}
	return math.Sqrt(sum)
}

// Probabilities returns |a|² per basis state.
func (s *StateVector) Probabilities() []float64 {
	probs := make([]float64, len(s.Amplitudes))
	for i, a := range s.Amplitudes {
		probs[i] = prob(a)
	}
	return probs
}

// bit returns the index mask of qubit position p.
func (s *StateVector) bit(p int) int {
	return 1 << (s.NumQubits - 1 - p)
}

// apply dispatches one gate on the qubit positions pos.
func (s *StateVector) apply(g circuit.Gate, pos []int) error {
	switch g {
	case circuit.H:
		s.applyH(pos[0])
	case circuit.X:
		s.applyX(pos[0])
	case circuit.Y:
		s.applyY(pos[0])
	case circuit.Z:
		s.applyZ(pos[0])
	case circuit.S:
		s.applyPhase(pos[0], 1i)
	case circuit.SDG:
		s.applyPhase(pos[0], -1i)
	case circuit.T:
		s.applyPhase(pos[0], cmplx.Rect(1, math.Pi/4))
	case circuit.TDG:
		s.applyPhase(pos[0], cmplx.Rect(1, -math.Pi/4))
	case circuit.CNOT:
		s.applyCX(pos[0], pos[1])
	case circuit.CZ:
		s.applyCZ(pos[0], pos[1])
	case circuit.TOFFOLI:
		s.applyCCX(pos[0], pos[1], pos[2])
	default:
		switch g := g.(type) {
		case circuit.Rotation:
			switch g.Axis {
			case 'x':
				s.applyRX(pos[0], g.Theta)
			case 'y':
				s.applyRY(pos[0], g.Theta)
			default:
				s.applyRZ(pos[0], g.Theta)
			}
		case circuit.Unitary:
			return s.applyMatrix(g.Unitary(), pos)
		default:
			return fmt.Errorf("%w: %s", ErrUnsupportedGate, g.Name())
		}
	}
	return nil
}

func (s *StateVector) applyH(q int) {
	hFactor := complex(1.0/math.Sqrt2, 0)
	bit := s.bit(q)
	for i := range s.Amplitudes {
		if i&bit == 0 {
			j := i | bit
			a, b := s.Amplitudes[i], s.Amplitudes[j]
			s.Amplitudes[i] = hFactor * (a + b)
			s.Amplitudes[j] = hFactor * (a - b)
		}
	}
}

func (s *StateVector) applyX(q int) {
	bit := s.bit(q)
	for i := range s.Amplitudes {
		if i&bit == 0 {
			j := i | bit
			s.Amplitudes[i], s.Amplitudes[j] = s.Amplitudes[j], s.Amplitudes[i]
		}
	}
}

func (s *StateVector) applyY(q int) {
	bit := s.bit(q)
	for i := range s.Amplitudes {
		if i&bit == 0 {
			j := i | bit
			s.Amplitudes[i], s.Amplitudes[j] = -1i*s.Amplitudes[j], 1i*s.Amplitudes[i]
		}
	}
}

func (s *StateVector) applyZ(q int) {
	s.applyPhase(q, -1)
}

// applyPhase multiplies every amplitude with qubit q set by factor.
func (s *StateVector) applyPhase(q int, factor complex128) {
	bit := s.bit(q)
	for i := range s.Amplitudes {
		if i&bit != 0 {
			s.Amplitudes[i] *= factor
		}
	}
}

func (s *StateVector) applyRX(q int, theta float64) {
	bit := s.bit(q)
	c := complex(math.Cos(theta/2), 0)
	js := complex(0, -math.Sin(theta/2))
	for i := range s.Amplitudes {
		if i&bit == 0 {
			j := i | bit
			a, b := s.Amplitudes[i], s.Amplitudes[j]
			s.Amplitudes[i] = c*a + js*b
			s.Amplitudes[j] = js*a + c*b
		}
	}
}

func (s *StateVector) applyRY(q int, theta float64) {
	bit := s.bit(q)
	c := complex(math.Cos(theta/2), 0)
	sn := complex(math.Sin(theta/2), 0)
	for i := range s.Amplitudes {
		if i&bit == 0 {
			j := i | bit
			a, b := s.Amplitudes[i], s.Amplitudes[j]
			s.Amplitudes[i] = c*a - sn*b
			s.Amplitudes[j] = sn*a + c*b
		}
	}
}

func (s *StateVector) applyRZ(q int, theta float64) {
	bit := s.bit(q)
	phase := cmplx.Rect(1, theta/2)
	for i := range s.Amplitudes {
		if i&bit != 0 {
			s.Amplitudes[i] *= phase
		} else {
			s.Amplitudes[i] *= cmplx.Conj(phase)
		}
	}
}

func (s *StateVector) applyCX(control, target int) {
	cBit := s.bit(control)
	tBit := s.bit(target)
	for i := range s.Amplitudes {
		if i&cBit != 0 && i&tBit == 0 {
			j := i | tBit
			s.Amplitudes[i], s.Amplitudes[j] = s.Amplitudes[j], s.Amplitudes[i]
		}
	}
}

func (s *StateVector) applyCZ(control, target int) {
	s.applyControlledPhase(control, target, -1)
}

func (s *StateVector) applyControlledPhase(control, target int, phase complex128) {
	mask := s.bit(control) | s.bit(target)
	for i := range s.Amplitudes {
		if i&mask == mask {
			s.Amplitudes[i] *= phase
		}
	}
}

func (s *StateVector) applyCCX(c1, c2, target int) {
	cMask := s.bit(c1) | s.bit(c2)
	tBit := s.bit(target)
	for i := range s.Amplitudes {
		if i&cMask == cMask && i&tBit == 0 {
			j := i | tBit
			s.Amplitudes[i], s.Amplitudes[j] = s.Amplitudes[j], s.Amplitudes[i]
		}
	}
}

// applyMatrix applies a 2^k×2^k matrix to the k qubit positions pos, the
// first position being the most significant bit of the matrix index.
func (s *StateVector) applyMatrix(m circuit.Matrix, pos []int) error {
	k := len(pos)
	if len(m) != 1<<k {
		return fmt.Errorf("%w: %d×%d matrix on %d qubits", circuit.ErrArity, len(m), len(m), k)
	}
	masks := make([]int, k)
	opMask := 0
	for i, p := range pos {
		masks[i] = s.bit(p)
		opMask |= masks[i]
	}
	// offset[r] is the amplitude index offset of local basis state r.
	offset := make([]int, 1<<k)
	for r := range offset {
		for i := range k {
			if r&(1<<(k-1-i)) != 0 {
				offset[r] |= masks[i]
			}
		}
	}
	in := make([]complex128, len(offset))
	for base := range s.Amplitudes {
		if base&opMask != 0 {
			continue
		}
		for r, off := range offset {
			in[r] = s.Amplitudes[base|off]
		}
		for r, off := range offset {
			var sum complex128
			for c, a := range in {
				sum += m[r][c] * a
			}
			s.Amplitudes[base|off] = sum
		}
	}
	return nil
}

// measure samples the qubits at pos, collapses the state onto the outcome
// and returns the observed bits in pos order.
func (s *StateVector) measure(pos []int, rng *rand.Rand) []int {
	mask := 0
	for _, p := range pos {
		mask |= s.bit(p)
	}
	r := rng.Float64()
	acc := 0.0
	chosen := -1
	last := -1
	for i, a := range s.Amplitudes {
		p := prob(a)
		if p == 0 {
			continue
		}
		last = i
		acc += p
		if r < acc {
			chosen = i
			break
		}
	}
	if chosen < 0 {
		chosen = last
	}
	outcome := chosen & mask

	norm := 0.0
	for i, a := range s.Amplitudes {
		if i&mask == outcome {
			norm += prob(a)
		}
	}
	scale := complex(1/math.Sqrt(norm), 0)
	for i := range s.Amplitudes {
		if i&mask == outcome {
			s.Amplitudes[i] *= scale
		} else {
			s.Amplitudes[i] = 0
		}
	}

	bits := make([]int, len(pos))
	for i, p := range pos {
		if outcome&s.bit(p) != 0 {
			bits[i] = 1
		}
	}
	return bits
}

// QubitProbability is the marginal distribution of one qubit.
type QubitProbability struct {
	Prob0 float64
	Prob1 float64
}

// QubitProbabilities returns the marginal distribution of every qubit in
// qubit order.
func (s *StateVector) QubitProbabilities() []QubitProbability {
	probs := make([]QubitProbability, s.NumQubits)
	for i, a := range s.Amplitudes {
		p := prob(a)
		for q := range s.NumQubits {
			if i&s.bit(q) != 0 {
				probs[q].Prob1 += p
			} else {
				probs[q].Prob0 += p
			}
		}
	}
	return probs
}

// BlochVector returns the Bloch vector (x, y, z) of the reduced state of the
// qubit at position p. Its length is 1 iff that qubit is not entangled with
// the rest.
func (s *StateVector) BlochVector(p int) [3]float64 {
	bit := s.bit(p)
	var coherence complex128
	z := 0.0
	for i, a := range s.Amplitudes {
		if i&bit != 0 {
			z -= prob(a)
			continue
		}
		z += prob(a)
		coherence += cmplx.Conj(a) * s.Amplitudes[i|bit]
	}
	return [3]float64{2 * real(coherence), 2 * imag(coherence), z}
}

func prob(a complex128) float64 {
	return real(a)*real(a) + imag(a)*imag(a)
}
