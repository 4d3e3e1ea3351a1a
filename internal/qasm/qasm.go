// Package qasm converts circuits to and from the OpenQASM 2.0 subset used by
// the demos.
package qasm

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"qalgos/internal/circuit"
)

var (
	ErrUnsupportedGate = errors.New("gate has no qasm form")
	ErrUnknownGate     = errors.New("unknown gate")
	ErrBadParam        = errors.New("bad gate parameter")
	ErrSyntax          = errors.New("qasm syntax error")
	ErrRegister        = errors.New("bad register reference")
)

// Pre-compiled regexps for QASM parsing.
var (
	gateRegex          = regexp.MustCompile(`^([a-z]\w*)\s*(?:\(\s*(` + paramPattern + `(?:\s*,\s*` + paramPattern + `)*)\s*\))?\s+([^;]+?)\s*;?$`)
	gateSpecRegex      = regexp.MustCompile(`^([a-z]\w*)\s*(?:\(\s*(` + paramPattern + `(?:\s*,\s*` + paramPattern + `)*)\s*\))?$`)
	operandRegex       = regexp.MustCompile(`^(\w+)\[(\d+)\]$`)
	measureRegex       = regexp.MustCompile(`^measure\s+(\w+)\[(\d+)\]\s*->\s*(\w+)\[(\d+)\];?$`)
	qregRegex          = regexp.MustCompile(`^qreg\s+(\w+)\[(\d+)\];?$`)
	cregRegex          = regexp.MustCompile(`^creg\s+(\w+)\[(\d+)\];?$`)
	qubitCommentRegex  = regexp.MustCompile(`^//\s*(\w+)\[(\d+)\]:\s*(\S+)$`)
	keyCommentRegex    = regexp.MustCompile(`^//\s*(\w+):\s*(\S+)$`)
	lineQubitNameRegex = regexp.MustCompile(`^q\((\d+)\)$`)
)

type namedGate struct {
	name string
	gate circuit.Gate
}

// fixedGates lists the parameterless gates by QASM name. The first entry for
// a gate is the name it is exported under.
var fixedGates = []namedGate{
	{"h", circuit.H},
	{"x", circuit.X},
	{"y", circuit.Y},
	{"z", circuit.Z},
	{"s", circuit.S},
	{"sdg", circuit.SDG},
	{"t", circuit.T},
	{"tdg", circuit.TDG},
	{"cx", circuit.CNOT},
	{"cnot", circuit.CNOT},
	{"cz", circuit.CZ},
	{"ccx", circuit.TOFFOLI},
	{"toffoli", circuit.TOFFOLI},
}

// Export writes c as OpenQASM 2.0. Qubits are numbered in circuit order and
// the qubit names are kept in comments so Parse can restore them.
// Measurement keys become one classical register each.
func Export(c *circuit.Circuit) (string, error) {
	qubits := c.Qubits()
	index := make(map[circuit.Qubit]int, len(qubits))
	for i, q := range qubits {
		index[q] = i
	}

	var keys []string
	sizes := make(map[string]int)
	for _, op := range c.Operations() {
		if mg, ok := op.Gate.(circuit.MeasureGate); ok {
			if _, seen := sizes[mg.Key]; !seen {
				keys = append(keys, mg.Key)
			}
			sizes[mg.Key] = max(sizes[mg.Key], mg.N)
		}
	}

	var sb strings.Builder
	sb.WriteString("OPENQASM 2.0;\n")
	sb.WriteString("include \"qelib1.inc\";\n\n")
	for i, q := range qubits {
		fmt.Fprintf(&sb, "// q[%d]: %s\n", i, q)
	}
	fmt.Fprintf(&sb, "qreg q[%d];\n", max(len(qubits), 1))
	for i, key := range keys {
		fmt.Fprintf(&sb, "// m%d: %s\n", i, key)
		fmt.Fprintf(&sb, "creg m%d[%d];\n", i, sizes[key])
	}
	sb.WriteString("\n")

	for _, op := range c.Operations() {
		if mg, ok := op.Gate.(circuit.MeasureGate); ok {
			reg := slices.Index(keys, mg.Key)
			for j, q := range op.Qubits {
				fmt.Fprintf(&sb, "measure q[%d] -> m%d[%d];\n", index[q], reg, j)
			}
			continue
		}
		name, err := qasmName(op.Gate)
		if err != nil {
			return "", fmt.Errorf("%s: %w", op, err)
		}
		operands := make([]string, len(op.Qubits))
		for i, q := range op.Qubits {
			operands[i] = fmt.Sprintf("q[%d]", index[q])
		}
		fmt.Fprintf(&sb, "%s %s;\n", name, strings.Join(operands, ", "))
	}
	return sb.String(), nil
}

func qasmName(g circuit.Gate) (string, error) {
	switch g := g.(type) {
	case circuit.Rotation:
		return fmt.Sprintf("r%c(%s)", g.Axis, formatParam(g.Theta)), nil
	case circuit.PhaseGate:
		if g.NumQubits() == 2 {
			return fmt.Sprintf("cu1(%s)", formatParam(g.PhaseAngle())), nil
		}
	}
	for _, ng := range fixedGates {
		if ng.gate == g {
			return ng.name, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedGate, g.Name())
}

// ParseGate resolves a gate spec such as "h", "sdg" or "ry(pi/3)".
func ParseGate(spec string) (circuit.Gate, error) {
	spec = strings.ToLower(strings.TrimSpace(spec))
	matches := gateSpecRegex.FindStringSubmatch(spec)
	if matches == nil {
		return nil, fmt.Errorf("%w: %q", ErrSyntax, spec)
	}
	params, err := parseParams(matches[2])
	if err != nil {
		return nil, err
	}
	return gateFor(matches[1], params)
}

func gateFor(name string, params []float64) (circuit.Gate, error) {
	want := 0
	var g circuit.Gate
	switch name {
	case "rx", "ry", "rz":
		want = 1
		if len(params) == want {
			g = circuit.Rotation{Axis: name[1], Theta: params[0]}
		}
	case "cu1", "cp", "cphase":
		want = 1
		if len(params) == want {
			g = circuit.CPhase{Theta: params[0]}
		}
	default:
		i := slices.IndexFunc(fixedGates, func(ng namedGate) bool { return ng.name == name })
		if i < 0 {
			return nil, fmt.Errorf("%w: %q", ErrUnknownGate, name)
		}
		g = fixedGates[i].gate
	}
	if len(params) != want {
		return nil, fmt.Errorf("%w: %s takes %d parameters, got %d", ErrBadParam, name, want, len(params))
	}
	return g, nil
}

type register struct {
	offset int
	size   int
}

// pendingMeasure collects consecutive measure statements into one classical
// register so they become a single measurement.
type pendingMeasure struct {
	reg    string
	qubits map[int]circuit.Qubit
}

type parser struct {
	qregs   map[string]register
	cregs   map[string]int
	nqubits int
	names   map[string]string // "q[2]" -> qubit name
	keys    map[string]string // creg -> measurement key

	moments []circuit.Moment
	builder *circuit.Builder
	pending *pendingMeasure
}

// Parse reads an OpenQASM 2.0 program into a circuit. Operations are placed
// as early as possible; a barrier starts a new moment for everything after
// it.
func Parse(src string) (*circuit.Circuit, error) {
	p := &parser{
		qregs:   make(map[string]register),
		cregs:   make(map[string]int),
		names:   make(map[string]string),
		keys:    make(map[string]string),
		builder: circuit.NewBuilder(),
	}
	for n, line := range strings.Split(src, "\n") {
		if err := p.parseLine(strings.TrimSpace(line)); err != nil {
			return nil, fmt.Errorf("line %d: %w", n+1, err)
		}
	}
	if err := p.cut(); err != nil {
		return nil, err
	}
	return circuit.New(p.moments...), nil
}

func (p *parser) parseLine(line string) error {
	switch {
	case line == "":
		return nil
	case strings.HasPrefix(line, "//"):
		if m := qubitCommentRegex.FindStringSubmatch(line); m != nil {
			p.names[m[1]+"["+m[2]+"]"] = m[3]
		} else if m := keyCommentRegex.FindStringSubmatch(line); m != nil {
			p.keys[m[1]] = m[2]
		}
		return nil
	case strings.HasPrefix(line, "OPENQASM"), strings.HasPrefix(line, "include"):
		return nil
	case strings.HasPrefix(line, "qreg"):
		m := qregRegex.FindStringSubmatch(line)
		if m == nil {
			return fmt.Errorf("%w: %q", ErrSyntax, line)
		}
		size, _ := strconv.Atoi(m[2])
		if _, dup := p.qregs[m[1]]; dup {
			return fmt.Errorf("%w: qreg %s declared twice", ErrRegister, m[1])
		}
		p.qregs[m[1]] = register{offset: p.nqubits, size: size}
		p.nqubits += size
		return nil
	case strings.HasPrefix(line, "creg"):
		m := cregRegex.FindStringSubmatch(line)
		if m == nil {
			return fmt.Errorf("%w: %q", ErrSyntax, line)
		}
		p.cregs[m[1]], _ = strconv.Atoi(m[2])
		return nil
	case strings.HasPrefix(line, "barrier"):
		return p.cut()
	case strings.HasPrefix(line, "measure"):
		return p.parseMeasure(line)
	}

	if err := p.flushMeasure(); err != nil {
		return err
	}
	m := gateRegex.FindStringSubmatch(line)
	if m == nil {
		return fmt.Errorf("%w: %q", ErrSyntax, line)
	}
	params, err := parseParams(m[2])
	if err != nil {
		return err
	}
	g, err := gateFor(m[1], params)
	if err != nil {
		return err
	}
	var qubits []circuit.Qubit
	for _, operand := range strings.Split(m[3], ",") {
		q, err := p.qubit(strings.TrimSpace(operand))
		if err != nil {
			return err
		}
		qubits = append(qubits, q)
	}
	return p.add(circuit.Op(g, qubits...))
}

func (p *parser) parseMeasure(line string) error {
	m := measureRegex.FindStringSubmatch(line)
	if m == nil {
		return fmt.Errorf("%w: %q", ErrSyntax, line)
	}
	q, err := p.qubit(m[1] + "[" + m[2] + "]")
	if err != nil {
		return err
	}
	reg := m[3]
	bit, _ := strconv.Atoi(m[4])
	size, ok := p.cregs[reg]
	if !ok || bit >= size {
		return fmt.Errorf("%w: %s[%d]", ErrRegister, reg, bit)
	}
	if p.pending != nil && p.pending.reg == reg {
		if _, taken := p.pending.qubits[bit]; !taken {
			p.pending.qubits[bit] = q
			return nil
		}
	}
	if err := p.flushMeasure(); err != nil {
		return err
	}
	p.pending = &pendingMeasure{reg: reg, qubits: map[int]circuit.Qubit{bit: q}}
	return nil
}

func (p *parser) qubit(operand string) (circuit.Qubit, error) {
	m := operandRegex.FindStringSubmatch(operand)
	if m == nil {
		return circuit.Qubit{}, fmt.Errorf("%w: %q", ErrSyntax, operand)
	}
	reg, ok := p.qregs[m[1]]
	i, _ := strconv.Atoi(m[2])
	if !ok || i >= reg.size {
		return circuit.Qubit{}, fmt.Errorf("%w: %s", ErrRegister, operand)
	}
	name, ok := p.names[operand]
	if !ok {
		return circuit.LineQubit(reg.offset + i), nil
	}
	if lm := lineQubitNameRegex.FindStringSubmatch(name); lm != nil {
		idx, _ := strconv.Atoi(lm[1])
		return circuit.LineQubit(idx), nil
	}
	return circuit.NamedQubit(name), nil
}

func (p *parser) add(op circuit.Operation) error {
	if _, err := circuit.NewMoment(op); err != nil {
		return err
	}
	p.builder.Append(circuit.InsertEarliest, op)
	return nil
}

func (p *parser) flushMeasure() error {
	if p.pending == nil {
		return nil
	}
	pm := p.pending
	p.pending = nil
	bits := make([]int, 0, len(pm.qubits))
	for b := range pm.qubits {
		bits = append(bits, b)
	}
	slices.Sort(bits)
	qubits := make([]circuit.Qubit, len(bits))
	for i, b := range bits {
		qubits[i] = pm.qubits[b]
	}
	key, ok := p.keys[pm.reg]
	if !ok {
		key = pm.reg
	}
	return p.add(circuit.MeasureWithKey(key, qubits...))
}

// cut closes the current segment so later operations cannot move before it.
func (p *parser) cut() error {
	if err := p.flushMeasure(); err != nil {
		return err
	}
	seg, err := p.builder.Build()
	if err != nil {
		return err
	}
	p.moments = append(p.moments, seg.Moments()...)
	p.builder = circuit.NewBuilder()
	return nil
}
