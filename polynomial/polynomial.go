// Package polynomial provides dense univariate polynomials over the BLS12-381
// scalar field, with the evaluation, division and interpolation primitives
// commitment schemes are built from.
package polynomial

import (
	"errors"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

// ErrDuplicatePoints is returned when an interpolation point set contains the
// same point twice.
var ErrDuplicatePoints = errors.New("duplicate interpolation points")

// Polynomial interpreted as ∑_{i<len(p)}p[i]Xⁱ
type Polynomial []fr.Element

// Eval returns p(x)
func (p Polynomial) Eval(x *fr.Element) fr.Element {
	var res fr.Element
	n := len(p)
	if n == 0 {
		return res
	}
	res.Set(&p[n-1])
	for i := n - 2; i >= 0; i-- {
		res.Mul(&res, x).Add(&res, &p[i])
	}
	return res
}

// Clone returns a deep copy of p
func (p Polynomial) Clone() Polynomial {
	r := make(Polynomial, len(p))
	copy(r, p)
	return r
}

// Degree returns len(p)-1; trailing zero coefficients count toward the degree
// of the representation.
func (p Polynomial) Degree() int {
	return len(p) - 1
}

// Equal returns true if p and q have the same coefficients
func (p Polynomial) Equal(q Polynomial) bool {
	if len(p) != len(q) {
		return false
	}
	for i := range p {
		if !p[i].Equal(&q[i]) {
			return false
		}
	}
	return true
}

// Add returns p+q without modifying p or q
func (p Polynomial) Add(q Polynomial) Polynomial {
	if len(q) > len(p) {
		p, q = q, p
	}
	r := p.Clone()
	for i := range q {
		r[i].Add(&r[i], &q[i])
	}
	return r
}

// Sub returns p-q without modifying p or q
func (p Polynomial) Sub(q Polynomial) Polynomial {
	n := len(p)
	if len(q) > n {
		n = len(q)
	}
	r := make(Polynomial, n)
	copy(r, p)
	for i := range q {
		r[i].Sub(&r[i], &q[i])
	}
	return r
}

// DivideByLinear returns the quotient and remainder of p divided by (X-z),
// using synthetic division. The remainder is p(z).
func (p Polynomial) DivideByLinear(z fr.Element) (Polynomial, fr.Element) {
	var rem fr.Element
	if len(p) == 0 {
		return nil, rem
	}
	f := p.Clone()

	var t fr.Element
	for i := len(f) - 2; i >= 0; i-- {
		t.Mul(&f[i+1], &z)
		f[i].Add(&f[i], &t)
	}

	// f[0] accumulated p(z); the quotient is of degree deg(p)-1
	rem.Set(&f[0])
	return f[1:], rem
}

// Mul returns a*b (schoolbook product)
func Mul(a, b Polynomial) Polynomial {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	res := make(Polynomial, len(a)+len(b)-1)
	var t fr.Element
	for i := range a {
		for j := range b {
			t.Mul(&a[i], &b[j])
			res[i+j].Add(&res[i+j], &t)
		}
	}
	return res
}

// Vanishing returns Z_S(X) = ∏_{s∈S}(X-s) for the point set S
func Vanishing(points []fr.Element) Polynomial {
	res := make(Polynomial, len(points)+1)
	res[0].SetOne()
	var t fr.Element
	for i := range points {
		// multiply the degree-i prefix by (X - points[i])
		for j := i + 1; j > 0; j-- {
			t.Mul(&res[j], &points[i])
			res[j].Sub(&res[j-1], &t)
		}
		res[0].Neg(&res[0]).Mul(&res[0], &points[i])
	}
	return res
}

// Interpolate returns the unique polynomial of degree < len(points) taking
// value values[i] at points[i], by Lagrange interpolation. The points must be
// pairwise distinct.
func Interpolate(points, values []fr.Element) (Polynomial, error) {
	if len(points) != len(values) {
		return nil, errors.New("interpolate: points and values length mismatch")
	}
	k := len(points)
	if k == 0 {
		return nil, nil
	}

	// denominators d_i = ∏_{j≠i}(x_i - x_j)
	dens := make([]fr.Element, k)
	var t fr.Element
	for i := 0; i < k; i++ {
		dens[i].SetOne()
		for j := 0; j < k; j++ {
			if j == i {
				continue
			}
			t.Sub(&points[i], &points[j])
			if t.IsZero() {
				return nil, ErrDuplicatePoints
			}
			dens[i].Mul(&dens[i], &t)
		}
	}
	dens = fr.BatchInvert(dens)

	z := Vanishing(points)
	res := make(Polynomial, k)
	var c fr.Element
	for i := 0; i < k; i++ {
		// numerator Z_S/(X-x_i); exact since x_i is a root of Z_S
		num, _ := z.DivideByLinear(points[i])
		c.Mul(&values[i], &dens[i])
		for j := range num {
			t.Mul(&num[j], &c)
			res[j].Add(&res[j], &t)
		}
	}
	return res, nil
}
