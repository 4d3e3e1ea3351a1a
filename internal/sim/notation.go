package sim

import (
	"fmt"
	"math"
	"strings"
)

// DiracNotation renders amplitudes as a sum of kets, e.g.
// "0.71|00⟩ + 0.71|11⟩". Coefficients are rounded to decimals places and
// terms that round to zero are dropped.
func DiracNotation(amps []complex128, numQubits, decimals int) string {
	var terms []string
	for i, a := range amps {
		re, im := roundTo(real(a), decimals), roundTo(imag(a), decimals)
		if re == 0 && im == 0 {
			continue
		}
		ket := "|" + basisLabel(i, numQubits) + "⟩"
		switch {
		case im == 0 && re == 1:
			terms = append(terms, ket)
		case im == 0 && re == -1:
			terms = append(terms, "-"+ket)
		case im == 0:
			terms = append(terms, fmt.Sprintf("%.*g%s", decimals, re, ket))
		case re == 0:
			terms = append(terms, fmt.Sprintf("%.*gj%s", decimals, im, ket))
		default:
			terms = append(terms, fmt.Sprintf("(%.*g%+.*gj)%s", decimals, re, decimals, im, ket))
		}
	}
	if len(terms) == 0 {
		return "0"
	}
	return strings.ReplaceAll(strings.Join(terms, " + "), " + -", " - ")
}

func roundTo(x float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	r := math.Round(x*p) / p
	if r == 0 {
		return 0 // drop negative zero
	}
	return r
}

func basisLabel(i, numQubits int) string {
	if numQubits == 0 {
		return ""
	}
	return fmt.Sprintf("%0*b", numQubits, i)
}
