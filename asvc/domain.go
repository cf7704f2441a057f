// Package asvc implements aggregatable subvector commitments over BLS12-381.
//
// A vector of n scalars is committed as the unique polynomial of degree <n
// taking the vector's values over the n-th roots of unity. Position proofs
// are KZG openings at the corresponding root; they can be maintained
// incrementally as the vector changes, and any number of position proofs
// (possibly across several vectors) aggregate into a single G₁ witness.
//
// The construction follows the aSVC scheme (Tomescu et al., "Aggregatable
// Subvector Commitments for Stateless Cryptocurrencies").
package asvc

import (
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr/fft"

	"github.com/consensys/polycommit/polynomial"
)

// Domain of evaluation: the n-th roots of unity, n a power of two. Vector
// index i maps to the evaluation point ωⁱ.
type Domain struct {
	Cardinality    uint64
	CardinalityInv fr.Element
	Generator      fr.Element
	GeneratorInv   fr.Element

	// Roots[i] = ωⁱ
	Roots []fr.Element

	fft *fft.Domain
}

// NewDomain builds the evaluation domain of the smallest power-of-two
// cardinality ≥ n.
func NewDomain(n uint64) *Domain {
	f := fft.NewDomain(n)

	d := &Domain{
		Cardinality:    f.Cardinality,
		CardinalityInv: f.CardinalityInv,
		Generator:      f.Generator,
		GeneratorInv:   f.GeneratorInv,
		fft:            f,
	}
	d.Roots = make([]fr.Element, d.Cardinality)
	d.Roots[0].SetOne()
	for i := 1; i < len(d.Roots); i++ {
		d.Roots[i].Mul(&d.Roots[i-1], &d.Generator)
	}
	return d
}

// interpolate returns the coefficients of the degree <n polynomial whose
// evaluations over the domain are values, in natural order.
func (d *Domain) interpolate(values []fr.Element) polynomial.Polynomial {
	coeffs := make([]fr.Element, d.Cardinality)
	copy(coeffs, values)
	d.fft.FFTInverse(coeffs, fft.DIF)
	fft.BitReverse(coeffs)
	return coeffs
}
