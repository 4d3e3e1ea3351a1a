package sim

import (
	"fmt"
	"math/cmplx"
	"slices"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/tidwall/pretty"
	"go.uber.org/zap"

	"qalgos/internal/circuit"
)

var jsonIter = jsoniter.ConfigCompatibleWithStandardLibrary

// StateResult is the outcome of Simulate.
type StateResult struct {
	State        *StateVector
	QubitOrder   []circuit.Qubit
	Measurements map[string][]int

	keys []string
}

// Keys returns measurement keys in the order they were first measured.
func (r *StateResult) Keys() []string {
	return slices.Clone(r.keys)
}

// Position returns the state vector position of q.
func (r *StateResult) Position(q circuit.Qubit) (int, bool) {
	i := slices.Index(r.QubitOrder, q)
	return i, i >= 0
}

// BlochVector returns the Bloch vector of q's reduced state.
func (r *StateResult) BlochVector(q circuit.Qubit) ([3]float64, error) {
	p, ok := r.Position(q)
	if !ok {
		return [3]float64{}, fmt.Errorf("%w: %s", ErrUnknownQubit, q)
	}
	return r.State.BlochVector(p), nil
}

// Amplitude returns the amplitude of the basis state given as a bit string
// in qubit order, e.g. "010".
func (r *StateResult) Amplitude(bits string) (complex128, error) {
	if len(bits) != r.State.NumQubits {
		return 0, fmt.Errorf("%w: basis state %q for %d qubits", ErrInvalidState, bits, r.State.NumQubits)
	}
	idx := 0
	for _, b := range bits {
		idx <<= 1
		switch b {
		case '0':
		case '1':
			idx |= 1
		default:
			return 0, fmt.Errorf("%w: basis state %q", ErrInvalidState, bits)
		}
	}
	return r.State.Amplitudes[idx], nil
}

// DiracNotation renders the final state, see DiracNotation.
func (r *StateResult) DiracNotation(decimals int) string {
	return DiracNotation(r.State.Amplitudes, r.State.NumQubits, decimals)
}

func (r *StateResult) String() string {
	var sb strings.Builder
	sb.WriteString("measurements: ")
	if len(r.keys) == 0 {
		sb.WriteString("(no measurements)")
	}
	for i, key := range r.keys {
		if i > 0 {
			sb.WriteString(" ")
		}
		fmt.Fprintf(&sb, "%s=%s", key, bitString(r.Measurements[key]))
	}
	sb.WriteString("\noutput vector: ")
	sb.WriteString(r.DiracNotation(2))
	return sb.String()
}

// Result is the outcome of Run: for every key, the bits measured in every
// repetition.
type Result struct {
	Repetitions int
	Records     map[string][][]int

	keys []string
}

// Keys returns measurement keys in the order they were first measured.
func (r *Result) Keys() []string {
	return slices.Clone(r.keys)
}

// Histogram counts outcomes of key as integers, the first measured qubit
// being the most significant bit.
func (r *Result) Histogram(key string) map[int]int {
	hist := make(map[int]int)
	for _, bits := range r.Records[key] {
		v := 0
		for _, b := range bits {
			v = v<<1 | b
		}
		hist[v]++
	}
	return hist
}

// Counts tallies outcomes of key by bit string.
func (r *Result) Counts(key string) Counts {
	counts := make(Counts)
	for _, bits := range r.Records[key] {
		counts[bitString(bits)]++
	}
	return counts
}

// String lists, per key, each qubit's outcomes across repetitions.
func (r *Result) String() string {
	lines := make([]string, 0, len(r.keys))
	for _, key := range r.keys {
		records := r.Records[key]
		if len(records) == 0 {
			continue
		}
		rows := make([]string, len(records[0]))
		for q := range rows {
			var sb strings.Builder
			for _, bits := range records {
				fmt.Fprintf(&sb, "%d", bits[q])
			}
			rows[q] = sb.String()
		}
		lines = append(lines, key+"="+strings.Join(rows, ", "))
	}
	return strings.Join(lines, "\n")
}

// Counts maps measured bit strings to how often they occurred.
type Counts map[string]uint32

func (c Counts) String() string {
	st, err := jsonIter.Marshal(c)
	if err != nil {
		zap.L().Error("failed to marshal counts", zap.Error(err))
		return ""
	}
	return string(st)
}

// Pretty returns the counts as indented JSON.
func (c Counts) Pretty() string {
	return string(pretty.Pretty([]byte(c.String())))
}

// Total is the number of recorded shots.
func (c Counts) Total() uint32 {
	var total uint32
	for _, n := range c {
		total += n
	}
	return total
}

// MostFrequent returns the most common outcome, the smallest bit string
// winning ties.
func (c Counts) MostFrequent() (string, uint32) {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	best, bestN := "", uint32(0)
	for _, k := range keys {
		if c[k] > bestN {
			best, bestN = k, c[k]
		}
	}
	return best, bestN
}

// Fidelity returns |⟨a|b⟩|² of two amplitude vectors of equal length.
func Fidelity(a, b []complex128) float64 {
	var overlap complex128
	for i := range min(len(a), len(b)) {
		overlap += cmplx.Conj(a[i]) * b[i]
	}
	return prob(overlap)
}

func bitString(bits []int) string {
	var sb strings.Builder
	for _, b := range bits {
		fmt.Fprintf(&sb, "%d", b)
	}
	return sb.String()
}
