package asvc

import (
	"errors"
	"math/big"

	"github.com/bits-and-blooms/bitset"
	"github.com/consensys/gnark-crypto/ecc"
	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"golang.org/x/sync/errgroup"

	"github.com/consensys/polycommit/kzg"
	"github.com/consensys/polycommit/polynomial"
)

var (
	// ErrIndexOutOfRange vector position outside [0, n), or a vector longer
	// than the domain
	ErrIndexOutOfRange = errors.New("vector index out of range")

	// ErrDuplicateIndex the same position claimed twice in one subvector
	// proof or one commitment's claim group
	ErrDuplicateIndex = errors.New("duplicate vector index")
)

// VectorCommitment is the committed vector together with its digest and the
// cached coefficient form of the interpolating polynomial. The cache is
// maintained incrementally by Update and rebuilt on first use after
// deserialization; operations taking a *VectorCommitment must not run
// concurrently on the same instance.
type VectorCommitment struct {
	Commitment kzg.Digest
	Values     []fr.Element

	p polynomial.Polynomial
}

func (vc *VectorCommitment) poly(d *Domain) polynomial.Polynomial {
	if vc.p == nil {
		vc.p = d.interpolate(vc.Values)
	}
	return vc.p
}

// CommitVector commits to values over pk's domain. Vectors shorter than the
// domain are zero-padded; longer ones are refused. The commitment is a multi
// exponentiation of the values against the Lagrange bases, no interpolation
// needed; the coefficient cache is interpolated concurrently.
func CommitVector(values []fr.Element, pk *ProvingKey, opts ...Option) (*VectorCommitment, error) {
	n := int(pk.Domain.Cardinality)
	if len(values) > n {
		return nil, ErrIndexOutOfRange
	}
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}

	vc := &VectorCommitment{Values: make([]fr.Element, n)}
	copy(vc.Values, values)

	var g errgroup.Group
	g.Go(func() error {
		_, err := vc.Commitment.MultiExp(pk.Lagrange, vc.Values, ecc.MultiExpConfig{NbTasks: cfg.nbTasks})
		return err
	})
	g.Go(func() error {
		vc.p = pk.Domain.interpolate(vc.Values)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vc, nil
}

// ProvePosition opens the vector at position i: a KZG opening of the
// interpolating polynomial at ωⁱ.
func ProvePosition(vc *VectorCommitment, i uint64, pk *ProvingKey) (kzg.OpeningProof, error) {
	if i >= pk.Domain.Cardinality {
		return kzg.OpeningProof{}, ErrIndexOutOfRange
	}
	return kzg.Open(vc.poly(pk.Domain), pk.Domain.Roots[i], pk.Srs.Pk)
}

// ProvePositions opens a subvector: one proof certifying every listed
// position. Indices must be distinct.
func ProvePositions(vc *VectorCommitment, indices []uint64, pk *ProvingKey) (kzg.BatchProof, error) {
	if len(indices) == 0 {
		return kzg.BatchProof{}, kzg.ErrEmptyClaimSet
	}
	n := pk.Domain.Cardinality
	seen := bitset.New(uint(n))
	points := make([]fr.Element, len(indices))
	values := make([]fr.Element, len(indices))
	for k, idx := range indices {
		if idx >= n {
			return kzg.BatchProof{}, ErrIndexOutOfRange
		}
		if seen.Test(uint(idx)) {
			return kzg.BatchProof{}, ErrDuplicateIndex
		}
		seen.Set(uint(idx))
		points[k] = pk.Domain.Roots[idx]
		values[k] = vc.Values[idx]
	}
	return kzg.BatchOpen(vc.poly(pk.Domain), points, values, pk.Srs.Pk)
}

// VerifyPosition checks that proof certifies value proof.ClaimedValue at
// position i of the vector committed in digest.
func VerifyPosition(digest kzg.Digest, proof *kzg.OpeningProof, i uint64, vk *VerifyingKey) (bool, error) {
	if i >= vk.Domain.Cardinality {
		return false, ErrIndexOutOfRange
	}
	if !proof.Point.Equal(&vk.Domain.Roots[i]) {
		return false, nil
	}
	return kzg.Verify(&digest, proof, vk.Kzg)
}

// VerifyPositions checks a subvector proof against the listed positions,
// aligned with the proof's points.
func VerifyPositions(digest kzg.Digest, proof *kzg.BatchProof, indices []uint64, vk *VerifyingKey) (bool, error) {
	if len(indices) == 0 {
		return false, kzg.ErrEmptyClaimSet
	}
	if len(indices) != len(proof.Points) {
		return false, kzg.ErrInconsistentClaim
	}
	for k, idx := range indices {
		if idx >= vk.Domain.Cardinality {
			return false, ErrIndexOutOfRange
		}
		if !proof.Points[k].Equal(&vk.Domain.Roots[idx]) {
			return false, nil
		}
	}
	return kzg.BatchVerify(&digest, proof, vk.Kzg)
}

// Update sets position i to value, adjusting the commitment with a single
// scalar multiplication and the coefficient cache with O(n) field operations;
// nothing is recommitted. It returns δ = value - old. Proofs issued against
// the previous commitment become stale; UpdateProof repairs them.
func Update(vc *VectorCommitment, i uint64, value fr.Element, pk *ProvingKey) (fr.Element, error) {
	if i >= pk.Domain.Cardinality {
		return fr.Element{}, ErrIndexOutOfRange
	}

	var delta fr.Element
	delta.Sub(&value, &vc.Values[i])
	if delta.IsZero() {
		return delta, nil
	}
	vc.poly(pk.Domain) // ensure the cache exists before patching it
	vc.Values[i] = value

	// C' = C + [δ]·[Lᵢ(τ)]G₁
	var deltaBig big.Int
	delta.BigInt(&deltaBig)
	var dl bls12381.G1Affine
	dl.ScalarMultiplication(&pk.Lagrange[i], &deltaBig)
	vc.Commitment.Add(&vc.Commitment, &dl)

	// p += δ·Lᵢ, coefficient j of Lᵢ being (ωⁱ/n)·ωⁱ⁽ⁿ⁻¹⁻ʲ⁾
	var c fr.Element
	c.Mul(&pk.Domain.Roots[i], &pk.Domain.CardinalityInv).Mul(&c, &delta)
	for j := int(pk.Domain.Cardinality) - 1; j >= 0; j-- {
		vc.p[j].Add(&vc.p[j], &c)
		if j > 0 {
			c.Mul(&c, &pk.Domain.Roots[i])
		}
	}

	return delta, nil
}

// UpdateProof repairs a position-j opening proof after position i changed by
// delta, in O(1) group operations using the update keys.
func UpdateProof(proof *kzg.OpeningProof, j, i uint64, delta fr.Element, pk *ProvingKey) error {
	n := pk.Domain.Cardinality
	if i >= n || j >= n {
		return ErrIndexOutOfRange
	}

	var cBig big.Int
	var t bls12381.G1Affine

	if i == j {
		// the witness moves along the update key, the claimed value by δ
		delta.BigInt(&cBig)
		t.ScalarMultiplication(&pk.U[i], &cBig)
		proof.H.Add(&proof.H, &t)
		proof.ClaimedValue.Add(&proof.ClaimedValue, &delta)
		return nil
	}

	// Lᵢ/(X-ωʲ) = (ωⁱ/n)·A/((X-ωⁱ)(X-ωʲ)) = (ωⁱ/n)·(ωⁱ-ωʲ)⁻¹·(Aᵢ-Aⱼ)
	var c fr.Element
	c.Sub(&pk.Domain.Roots[i], &pk.Domain.Roots[j])
	c.Inverse(&c)
	var s fr.Element
	s.Mul(&pk.Domain.Roots[i], &pk.Domain.CardinalityInv)
	c.Mul(&c, &s).Mul(&c, &delta)
	c.BigInt(&cBig)

	var diff bls12381.G1Affine
	diff.Sub(&pk.A[i], &pk.A[j])
	t.ScalarMultiplication(&diff, &cBig)
	proof.H.Add(&proof.H, &t)
	return nil
}
