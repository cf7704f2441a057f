package kzg

import (
	"fmt"
	"math/big"
	"runtime"
	"time"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/consensys/gnark-crypto/ecc"
	"golang.org/x/sync/errgroup"

	"github.com/consensys/polycommit/logger"
)

// ProvingKey used to create or open commitments
type ProvingKey struct {
	G1 []bls12381.G1Affine // [G₁ [τ]G₁ , [τ²]G₁, ... ]
}

// VerifyingKey used to verify openings. G1 shares the proving key's backing
// array; the power tails beyond G1[0] and G2[1] are only touched by batch and
// aggregated verification, where the verifier commits to interpolation and
// vanishing polynomials itself.
type VerifyingKey struct {
	G1 []bls12381.G1Affine // [G₁ [τ]G₁ , [τ²]G₁, ... ]
	G2 []bls12381.G2Affine // [G₂, [τ]G₂, [τ²]G₂, ... ]
}

// SRS stores the result of the MPC ("powers of tau"). The maximum degree of a
// committable polynomial is len(Pk.G1)-1. It is shared read-only by every
// commitment operation; nothing mutates it after construction.
type SRS struct {
	Pk ProvingKey
	Vk VerifyingKey
}

// NewSRS returns a new SRS using tau as the stated trapdoor. The G₂ sequence
// has the same length as the G₁ one, so every proof shape this package
// produces can be verified. tau is read once and not retained: outside of
// tests, the secret must live only inside the setup that produced it.
func NewSRS(size uint64, tau *big.Int) (*SRS, error) {
	if size == 0 {
		return nil, ErrInvalidSRS
	}

	log := logger.Logger().With().Str("package", "kzg").Uint64("size", size).Logger()
	start := time.Now()

	var alpha fr.Element
	alpha.SetBigInt(tau)

	alphas := make([]fr.Element, size)
	alphas[0].SetOne()
	for i := 1; i < len(alphas); i++ {
		alphas[i].Mul(&alphas[i-1], &alpha)
	}

	_, _, g1Gen, g2Gen := bls12381.Generators()

	var srs SRS
	srs.Pk.G1 = bls12381.BatchScalarMultiplicationG1(&g1Gen, alphas)
	srs.Vk.G1 = srs.Pk.G1
	srs.Vk.G2 = bls12381.BatchScalarMultiplicationG2(&g2Gen, alphas)

	log.Debug().Dur("took", time.Since(start)).Msg("srs generated")
	return &srs, nil
}

// LoadSRS builds an SRS from ceremony output. The powers-of-tau relation is
// assumed, not verified: callers holding untrusted input run Validate
// separately. The slices are shared, not copied.
func LoadSRS(g1 []bls12381.G1Affine, g2 []bls12381.G2Affine) (*SRS, error) {
	if len(g1) == 0 || len(g2) < 2 {
		return nil, ErrInvalidSRS
	}
	var srs SRS
	srs.Pk.G1 = g1
	srs.Vk.G1 = g1
	srs.Vk.G2 = g2
	return &srs, nil
}

// Validate checks the structural consistency of the SRS: every point in its
// prime-order subgroup, and both power sequences geometric in the same τ
// (same-ratio pairing checks over random linear combinations, so the cost is
// two multi exponentiations and two pairing products rather than one pairing
// per power). It cannot establish that τ was destroyed after setup.
func (srs *SRS) Validate() error {
	if len(srs.Pk.G1) == 0 || len(srs.Vk.G2) < 2 {
		return ErrInvalidSRS
	}
	if srs.Pk.G1[0].IsInfinity() || srs.Vk.G2[0].IsInfinity() {
		return fmt.Errorf("%w: identity base point", ErrInvalidSRS)
	}

	var g errgroup.Group

	g.Go(func() error {
		for i := range srs.Pk.G1 {
			if !srs.Pk.G1[i].IsInSubGroup() {
				return fmt.Errorf("%w: G1[%d] not in the prime-order subgroup", ErrInvalidSRS, i)
			}
		}
		if len(srs.Pk.G1) == 1 {
			return nil
		}
		l1, l2 := linearCombinationG1(srs.Pk.G1)
		if !sameRatio(l1, l2, srs.Vk.G2[1], srs.Vk.G2[0]) {
			return fmt.Errorf("%w: G1 powers are not consecutive powers of tau", ErrInvalidSRS)
		}
		return nil
	})

	g.Go(func() error {
		for i := range srs.Vk.G2 {
			if !srs.Vk.G2[i].IsInSubGroup() {
				return fmt.Errorf("%w: G2[%d] not in the prime-order subgroup", ErrInvalidSRS, i)
			}
		}
		if len(srs.Pk.G1) == 1 {
			// without [τ]G₁ the G2 sequence cannot be tied to the same τ
			return nil
		}
		m1, m2 := linearCombinationG2(srs.Vk.G2)
		if !sameRatio(srs.Pk.G1[1], srs.Pk.G1[0], m1, m2) {
			return fmt.Errorf("%w: G2 powers do not match the G1 tau", ErrInvalidSRS)
		}
		return nil
	})

	return g.Wait()
}

// sameRatio checks that e(a₁, a₂) = e(b₁, b₂)
func sameRatio(a1, b1 bls12381.G1Affine, a2, b2 bls12381.G2Affine) bool {
	var na2 bls12381.G2Affine
	na2.Neg(&a2)
	res, err := bls12381.PairingCheck(
		[]bls12381.G1Affine{a1, b1},
		[]bls12381.G2Affine{na2, b2})
	if err != nil {
		panic(err)
	}
	return res
}

// L1 = ∑ rᵢAᵢ, L2 = ∑ rᵢAᵢ₊₁ in G1
func linearCombinationG1(A []bls12381.G1Affine) (L1, L2 bls12381.G1Affine) {
	nc := runtime.NumCPU()
	n := len(A)
	r := make([]fr.Element, n-1)
	for i := 0; i < n-1; i++ {
		r[i].MustSetRandom()
	}
	chDone := make(chan struct{})
	go func() {
		L1.MultiExp(A[:n-1], r, ecc.MultiExpConfig{NbTasks: nc / 2})
		close(chDone)
	}()
	L2.MultiExp(A[1:], r, ecc.MultiExpConfig{NbTasks: nc / 2})
	<-chDone
	return
}

// L1 = ∑ rᵢAᵢ, L2 = ∑ rᵢAᵢ₊₁ in G2
func linearCombinationG2(A []bls12381.G2Affine) (L1, L2 bls12381.G2Affine) {
	nc := runtime.NumCPU()
	n := len(A)
	r := make([]fr.Element, n-1)
	for i := 0; i < n-1; i++ {
		r[i].MustSetRandom()
	}
	chDone := make(chan struct{})
	go func() {
		L1.MultiExp(A[:n-1], r, ecc.MultiExpConfig{NbTasks: nc / 2})
		close(chDone)
	}()
	L2.MultiExp(A[1:], r, ecc.MultiExpConfig{NbTasks: nc / 2})
	<-chDone
	return
}
