package circuit

import (
	"slices"
	"strings"
	"unicode/utf8"
)

// ──────────────────────────── Diagram options ────────────────────────────

type diagramConfig struct {
	cursor int
	marker string
}

// DiagramOption configures Diagram.
type DiagramOption func(*diagramConfig)

// WithCursor marks the column of moment k with a header marker.
func WithCursor(k int) DiagramOption {
	return func(c *diagramConfig) {
		c.cursor = k
	}
}

// WithCursorMarker replaces the default "▼" cursor marker.
func WithCursorMarker(marker string) DiagramOption {
	return func(c *diagramConfig) {
		c.marker = marker
	}
}

// ──────────────────────────── Rendering ────────────────────────────

const wireGap = "───"

// Diagram renders c as text: one wire per qubit, one column per moment and a
// vertical connector between the qubits of every multi-qubit operation. A
// moment whose operations would cross each other is spread over several
// columns; the cursor marks the first of them.
func Diagram(c *Circuit, opts ...DiagramOption) string {
	cfg := diagramConfig{cursor: -1, marker: "▼"}
	for _, opt := range opts {
		opt(&cfg)
	}

	qubits := c.Qubits()
	if len(qubits) == 0 {
		return ""
	}
	rowOf := make(map[Qubit]int, len(qubits))
	labelW := 0
	for i, q := range qubits {
		rowOf[q] = i
		labelW = max(labelW, visualLen(q.String())+2)
	}

	// Qubit rows sit at even line indices, connector rows between them.
	lines := make([]strings.Builder, 2*len(qubits)-1)
	for i := range lines {
		if i%2 == 0 {
			lines[i].WriteString(padRight(qubits[i/2].String()+": ", labelW, " ") + wireGap)
		} else {
			lines[i].WriteString(strings.Repeat(" ", labelW+visualLen(wireGap)))
		}
	}

	var header strings.Builder
	header.WriteString(strings.Repeat(" ", labelW+visualLen(wireGap)))

	for k, m := range c.moments {
		for ci, ops := range diagramColumns(m, rowOf) {
			w := columnWidth(ops)
			cells := make([]string, len(lines))
			for i := range cells {
				if i%2 == 0 {
					cells[i] = strings.Repeat("─", w)
				} else {
					cells[i] = strings.Repeat(" ", w)
				}
			}

			for _, op := range ops {
				labels := op.Gate.DiagramInfo()
				for i, q := range op.Qubits {
					cells[2*rowOf[q]] = padRight(labelAt(labels, i), w, "─")
				}
				minR, maxR := rowSpan(op, rowOf)
				for r := minR; r < maxR; r++ {
					cells[2*r+1] = padRight("│", w, " ")
					if r > minR && !op.Acts(qubits[r]) {
						cells[2*r] = padRight("┼", w, "─")
					}
				}
			}

			for i, cell := range cells {
				if i%2 == 0 {
					lines[i].WriteString(cell + wireGap)
				} else {
					lines[i].WriteString(cell + "   ")
				}
			}
			if k == cfg.cursor && ci == 0 {
				header.WriteString(padRight(cfg.marker, w, " ") + "   ")
			} else {
				header.WriteString(strings.Repeat(" ", w) + "   ")
			}
		}
	}

	out := make([]string, 0, len(lines)+1)
	if cfg.cursor >= 0 && cfg.cursor < len(c.moments) {
		out = append(out, strings.TrimRight(header.String(), " "))
	}
	for i := range lines {
		out = append(out, strings.TrimRight(lines[i].String(), " "))
	}
	return strings.Join(out, "\n")
}

// diagramColumns splits m into columns in which the row spans of the
// operations do not overlap, so a connector never runs through another gate.
// An empty moment still gets one column.
func diagramColumns(m Moment, rowOf map[Qubit]int) [][]Operation {
	var cols [][]Operation
	var spans [][][2]int
	for _, op := range m.ops {
		lo, hi := rowSpan(op, rowOf)
		placed := false
		for i := range cols {
			if !slices.ContainsFunc(spans[i], func(sp [2]int) bool { return lo <= sp[1] && sp[0] <= hi }) {
				cols[i] = append(cols[i], op)
				spans[i] = append(spans[i], [2]int{lo, hi})
				placed = true
				break
			}
		}
		if !placed {
			cols = append(cols, []Operation{op})
			spans = append(spans, [][2]int{{lo, hi}})
		}
	}
	if len(cols) == 0 {
		cols = [][]Operation{nil}
	}
	return cols
}

// rowSpan returns the first and last diagram row op touches.
func rowSpan(op Operation, rowOf map[Qubit]int) (lo, hi int) {
	lo, hi = len(rowOf), -1
	for _, q := range op.Qubits {
		r := rowOf[q]
		lo, hi = min(lo, r), max(hi, r)
	}
	return lo, hi
}

// columnWidth returns the width needed by the widest label in ops.
func columnWidth(ops []Operation) int {
	w := 1
	for _, op := range ops {
		for _, label := range op.Gate.DiagramInfo() {
			w = max(w, visualLen(label))
		}
	}
	return w
}

func labelAt(labels []string, i int) string {
	if i < len(labels) {
		return labels[i]
	}
	return "?"
}

// padRight fills s with fill up to width visual characters.
func padRight(s string, width int, fill string) string {
	n := visualLen(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(fill, width-n)
}

func visualLen(s string) int {
	return utf8.RuneCountInString(s)
}
