package circuit

import "math/cmplx"

// Matrix is a dense square complex matrix, row-major.
type Matrix [][]complex128

// Identity returns the n×n identity.
func Identity(n int) Matrix {
	m := make(Matrix, n)
	for i := range m {
		m[i] = make([]complex128, n)
		m[i][i] = 1
	}
	return m
}

func (m Matrix) Clone() Matrix {
	c := make(Matrix, len(m))
	for i, row := range m {
		c[i] = append([]complex128(nil), row...)
	}
	return c
}

// Dagger returns the conjugate transpose.
func (m Matrix) Dagger() Matrix {
	d := make(Matrix, len(m))
	for i := range d {
		d[i] = make([]complex128, len(m))
		for j := range d[i] {
			d[i][j] = cmplx.Conj(m[j][i])
		}
	}
	return d
}

// Mul returns m·o.
func (m Matrix) Mul(o Matrix) Matrix {
	n := len(m)
	p := make(Matrix, n)
	for i := range p {
		p[i] = make([]complex128, n)
		for k := range n {
			if m[i][k] == 0 {
				continue
			}
			for j := range n {
				p[i][j] += m[i][k] * o[k][j]
			}
		}
	}
	return p
}

// ApproxEqual reports whether every entry of m is within tol of o.
func (m Matrix) ApproxEqual(o Matrix, tol float64) bool {
	if len(m) != len(o) {
		return false
	}
	for i := range m {
		if len(m[i]) != len(o[i]) {
			return false
		}
		for j := range m[i] {
			if cmplx.Abs(m[i][j]-o[i][j]) > tol {
				return false
			}
		}
	}
	return true
}

// IsUnitary reports whether m†·m is the identity within tol.
func (m Matrix) IsUnitary(tol float64) bool {
	return m.Dagger().Mul(m).ApproxEqual(Identity(len(m)), tol)
}
