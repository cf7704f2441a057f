// Package kzg implements KZG polynomial commitments over BLS12-381.
//
// A commitment is a single G₁ point binding the committer to one polynomial.
// Openings certify the polynomial's value at one point (OpeningProof) or at a
// set of points (BatchProof); either way the proof is a single G₁ point and
// verification is one pairing check. A rejected proof is reported as a false
// verdict, never as an error.
package kzg

import (
	"errors"
	"math/big"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/consensys/gnark-crypto/ecc"

	"github.com/consensys/polycommit/polynomial"
)

var (
	// ErrInvalidSRS empty or malformed setup input
	ErrInvalidSRS = errors.New("srs: empty or malformed setup input")

	// ErrDegreeExceeded polynomial size out of range for the SRS (empty or
	// larger than the power sequence)
	ErrDegreeExceeded = errors.New("polynomial degree exceeds srs capacity")

	// ErrInconsistentClaim a batch claim disagrees with the committed
	// polynomial, or claim shapes do not line up
	ErrInconsistentClaim = errors.New("claimed values inconsistent with the polynomial")

	// ErrEmptyClaimSet batch or aggregation call without any claim
	ErrEmptyClaimSet = errors.New("empty claim set")
)

// Digest commitment of a polynomial.
type Digest = bls12381.G1Affine

// OpeningProof KZG proof for opening at a single point.
type OpeningProof struct {
	// Point at which the polynomial is opened
	Point fr.Element

	// ClaimedValue purported value at Point
	ClaimedValue fr.Element

	// H quotient commitment [(p(X) - p(z))/(X - z)]G₁
	H bls12381.G1Affine
}

// BatchProof KZG proof for opening a single polynomial at several points.
type BatchProof struct {
	// Points at which the polynomial is opened
	Points []fr.Element

	// ClaimedValues purported values, aligned with Points
	ClaimedValues []fr.Element

	// H quotient commitment [(p(X) - I(X))/Z_S(X)]G₁, I interpolating the
	// claimed values over the point set, Z_S vanishing on it
	H bls12381.G1Affine
}

// Commit commits to a polynomial using a multi exponentiation with the SRS.
// It is assumed that the polynomial is in canonical form, in Montgomery form.
func Commit(p polynomial.Polynomial, pk ProvingKey, nbTasks ...int) (Digest, error) {
	if len(p) == 0 || len(p) > len(pk.G1) {
		return Digest{}, ErrDegreeExceeded
	}

	var config ecc.MultiExpConfig
	if len(nbTasks) > 0 {
		config.NbTasks = nbTasks[0]
	}

	var res Digest
	if _, err := res.MultiExp(pk.G1[:len(p)], p, config); err != nil {
		return Digest{}, err
	}
	return res, nil
}

// Open computes an opening proof of p at point.
func Open(p polynomial.Polynomial, point fr.Element, pk ProvingKey) (OpeningProof, error) {
	if len(p) == 0 || len(p) > len(pk.G1) {
		return OpeningProof{}, ErrDegreeExceeded
	}

	res := OpeningProof{
		Point:        point,
		ClaimedValue: p.Eval(&point),
	}

	// h = (p - p(z))/(X - z); the division is exact since z is a root of the
	// numerator
	num := p.Clone()
	num[0].Sub(&num[0], &res.ClaimedValue)
	h, _ := num.DivideByLinear(point)

	if len(h) > 0 {
		c, err := Commit(h, pk)
		if err != nil {
			return OpeningProof{}, err
		}
		res.H.Set(&c)
	}

	return res, nil
}

// Verify verifies a single-point opening proof.
// The verdict is the boolean; the error reports malformed requests only.
func Verify(commitment *Digest, proof *OpeningProof, vk VerifyingKey) (bool, error) {
	if len(vk.G1) == 0 || len(vk.G2) < 2 {
		return false, ErrInvalidSRS
	}

	// e(C - [y]G₁ + [z]H, G₂) == e(H, [τ]G₂)
	var yBig, zBig big.Int
	proof.ClaimedValue.BigInt(&yBig)
	proof.Point.BigInt(&zBig)

	var yG, zH, lhs bls12381.G1Affine
	yG.ScalarMultiplication(&vk.G1[0], &yBig)
	zH.ScalarMultiplication(&proof.H, &zBig)
	lhs.Sub(commitment, &yG)
	lhs.Add(&lhs, &zH)

	var negTauG2 bls12381.G2Affine
	negTauG2.Neg(&vk.G2[1])

	return bls12381.PairingCheck(
		[]bls12381.G1Affine{lhs, proof.H},
		[]bls12381.G2Affine{vk.G2[0], negTauG2},
	)
}

// BatchOpen opens p at every point of points with a single proof.
//
// claimedValues are the values the proof will certify; they must match p's
// evaluations (ErrInconsistentClaim otherwise). Passing nil claims p's actual
// evaluations, computed in-call.
func BatchOpen(p polynomial.Polynomial, points, claimedValues []fr.Element, pk ProvingKey) (BatchProof, error) {
	if len(points) == 0 {
		return BatchProof{}, ErrEmptyClaimSet
	}
	if len(p) == 0 || len(p) > len(pk.G1) {
		return BatchProof{}, ErrDegreeExceeded
	}
	if claimedValues == nil {
		claimedValues = make([]fr.Element, len(points))
		for i := range points {
			claimedValues[i] = p.Eval(&points[i])
		}
	}
	if len(claimedValues) != len(points) {
		return BatchProof{}, ErrInconsistentClaim
	}

	i, err := polynomial.Interpolate(points, claimedValues)
	if err != nil {
		return BatchProof{}, err
	}

	// q = (p - I)/Z_S by successive linear divisions; a non-zero remainder
	// means a claimed value disagrees with p
	q := p.Sub(i)
	var rem fr.Element
	for j := range points {
		q, rem = q.DivideByLinear(points[j])
		if !rem.IsZero() {
			return BatchProof{}, ErrInconsistentClaim
		}
	}

	res := BatchProof{
		Points:        points,
		ClaimedValues: claimedValues,
	}
	if len(q) > 0 {
		c, err := Commit(q, pk)
		if err != nil {
			return BatchProof{}, err
		}
		res.H.Set(&c)
	}

	return res, nil
}

// BatchVerify verifies a batch proof with a single pairing check, independent
// of the number of points. The verifier commits to the interpolation of the
// claimed values itself (over the G₁ powers) and to the vanishing polynomial
// of the point set (over the G₂ powers).
func BatchVerify(commitment *Digest, proof *BatchProof, vk VerifyingKey) (bool, error) {
	k := len(proof.Points)
	if k == 0 {
		return false, ErrEmptyClaimSet
	}
	if len(proof.ClaimedValues) != k {
		return false, ErrInconsistentClaim
	}
	if len(vk.G1) < k || len(vk.G2) < k+1 {
		return false, ErrDegreeExceeded
	}

	// [Z_S(τ)]G₂
	zs := polynomial.Vanishing(proof.Points)
	var zsG2 bls12381.G2Affine
	if _, err := zsG2.MultiExp(vk.G2[:len(zs)], zs, ecc.MultiExpConfig{}); err != nil {
		return false, err
	}

	// [I(τ)]G₁
	i, err := polynomial.Interpolate(proof.Points, proof.ClaimedValues)
	if err != nil {
		return false, err
	}
	var iG1 bls12381.G1Affine
	if _, err := iG1.MultiExp(vk.G1[:len(i)], i, ecc.MultiExpConfig{}); err != nil {
		return false, err
	}

	// e(C - [I(τ)]G₁, G₂) == e(H, [Z_S(τ)]G₂)
	var fMinusI bls12381.G1Affine
	fMinusI.Sub(commitment, &iG1)

	var negG2 bls12381.G2Affine
	negG2.Neg(&vk.G2[0])

	return bls12381.PairingCheck(
		[]bls12381.G1Affine{proof.H, fMinusI},
		[]bls12381.G2Affine{zsG2, negG2},
	)
}

// BatchVerifyMultiPoints verifies m single-point proofs for m commitments at
// possibly distinct points with two pairings instead of 2m, folding the
// individual checks with verifier-local random scalars.
func BatchVerifyMultiPoints(digests []Digest, proofs []OpeningProof, vk VerifyingKey) (bool, error) {
	if len(digests) != len(proofs) {
		return false, ErrInconsistentClaim
	}
	if len(digests) == 0 {
		return false, ErrEmptyClaimSet
	}
	if len(vk.G1) == 0 || len(vk.G2) < 2 {
		return false, ErrInvalidSRS
	}

	if len(digests) == 1 {
		return Verify(&digests[0], &proofs[0], vk)
	}

	randoms := make([]fr.Element, len(digests))
	randoms[0].SetOne()
	for i := 1; i < len(randoms); i++ {
		randoms[i].MustSetRandom()
	}

	hs := make([]bls12381.G1Affine, len(proofs))
	for i := range proofs {
		hs[i] = proofs[i].H
	}

	// W = ∑ λᵢHᵢ
	var foldedH bls12381.G1Affine
	if _, err := foldedH.MultiExp(hs, randoms, ecc.MultiExpConfig{}); err != nil {
		return false, err
	}

	// ∑ λᵢ(Cᵢ - [yᵢ]G₁ + [zᵢ]Hᵢ), assembled as three multi exponentiations
	var foldedC bls12381.G1Affine
	if _, err := foldedC.MultiExp(digests, randoms, ecc.MultiExpConfig{}); err != nil {
		return false, err
	}

	var sumY, t fr.Element
	zl := make([]fr.Element, len(proofs))
	for i := range proofs {
		t.Mul(&randoms[i], &proofs[i].ClaimedValue)
		sumY.Add(&sumY, &t)
		zl[i].Mul(&randoms[i], &proofs[i].Point)
	}

	var sumYBig big.Int
	sumY.BigInt(&sumYBig)
	var yG bls12381.G1Affine
	yG.ScalarMultiplication(&vk.G1[0], &sumYBig)

	var zH bls12381.G1Affine
	if _, err := zH.MultiExp(hs, zl, ecc.MultiExpConfig{}); err != nil {
		return false, err
	}

	var lhs bls12381.G1Affine
	lhs.Sub(&foldedC, &yG)
	lhs.Add(&lhs, &zH)

	var negTauG2 bls12381.G2Affine
	negTauG2.Neg(&vk.G2[1])

	return bls12381.PairingCheck(
		[]bls12381.G1Affine{lhs, foldedH},
		[]bls12381.G2Affine{vk.G2[0], negTauG2},
	)
}
