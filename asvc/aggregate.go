package asvc

import (
	"encoding/binary"
	"math/big"
	"time"

	"github.com/bits-and-blooms/bitset"
	"github.com/consensys/gnark-crypto/ecc"
	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	fiatshamir "github.com/consensys/gnark-crypto/fiat-shamir"

	"github.com/consensys/polycommit/kzg"
	"github.com/consensys/polycommit/logger"
	"github.com/consensys/polycommit/polynomial"
)

// Claim states that the vector committed in Commitment holds Value at
// position Index.
type Claim struct {
	Commitment kzg.Digest
	Index      uint64
	Value      fr.Element
}

// ProvedClaim is a claim together with the opening proof witness backing it.
type ProvedClaim struct {
	Claim
	H bls12381.G1Affine
}

// AggregatedProof certifies a set of claims, possibly spanning several vector
// commitments, with a single G₁ witness.
type AggregatedProof struct {
	W      bls12381.G1Affine
	Claims []Claim
}

// claimGroup collects the positions (as indices into the flat claim slice)
// claimed against one commitment.
type claimGroup struct {
	commitment kzg.Digest
	claims     []int
}

// groupClaims partitions claims by commitment, in order of first appearance.
// Within a group positions must be distinct; across groups they may repeat.
func groupClaims(claims []Claim, n uint64) ([]claimGroup, error) {
	var groups []claimGroup
	byCommitment := make(map[[bls12381.SizeOfG1AffineCompressed]byte]int)
	var seen []*bitset.BitSet
	for k := range claims {
		if claims[k].Index >= n {
			return nil, ErrIndexOutOfRange
		}
		key := claims[k].Commitment.Bytes()
		g, ok := byCommitment[key]
		if !ok {
			g = len(groups)
			byCommitment[key] = g
			groups = append(groups, claimGroup{commitment: claims[k].Commitment})
			seen = append(seen, bitset.New(uint(n)))
		}
		if seen[g].Test(uint(claims[k].Index)) {
			return nil, ErrDuplicateIndex
		}
		seen[g].Set(uint(claims[k].Index))
		groups[g].claims = append(groups[g].claims, k)
	}
	return groups, nil
}

// deriveChallenge binds every claim (commitment, position, value) into the
// Fiat-Shamir transcript and squeezes the folding challenge. Claims are bound
// in slice order, so prover and verifier agree as long as the claim list is
// transmitted as is.
func deriveChallenge(claims []Claim, cfg *config) (fr.Element, error) {
	var r fr.Element
	if cfg.challenge != nil {
		r.Set(cfg.challenge)
		return r, nil
	}

	fs := fiatshamir.NewTranscript(cfg.challengeHash, "r")
	var buf [bls12381.SizeOfG1AffineUncompressed]byte
	var idx [8]byte
	for k := range claims {
		buf = claims[k].Commitment.RawBytes()
		if err := fs.Bind("r", buf[:]); err != nil {
			return r, err
		}
		binary.BigEndian.PutUint64(idx[:], claims[k].Index)
		if err := fs.Bind("r", idx[:]); err != nil {
			return r, err
		}
		if err := fs.Bind("r", claims[k].Value.Marshal()); err != nil {
			return r, err
		}
	}
	b, err := fs.ComputeChallenge("r")
	if err != nil {
		return r, err
	}
	r.SetBytes(b)
	return r, nil
}

// Aggregate folds the proved claims into a single constant-size proof.
//
// Per commitment, the position proofs fold into one subvector witness with
// weights 1/A'_I(ωⁱ), A_I the vanishing polynomial of the claimed positions;
// the per-commitment witnesses then fold under powers of a Fiat-Shamir
// challenge bound to every claim.
func Aggregate(claims []ProvedClaim, vk *VerifyingKey, opts ...Option) (AggregatedProof, error) {
	var agg AggregatedProof
	if len(claims) == 0 {
		return agg, kzg.ErrEmptyClaimSet
	}
	cfg, err := newConfig(opts...)
	if err != nil {
		return agg, err
	}

	log := logger.Logger().With().Str("package", "asvc").Int("claims", len(claims)).Logger()
	start := time.Now()

	agg.Claims = make([]Claim, len(claims))
	for k := range claims {
		agg.Claims[k] = claims[k].Claim
	}

	groups, err := groupClaims(agg.Claims, vk.Domain.Cardinality)
	if err != nil {
		return agg, err
	}

	r, err := deriveChallenge(agg.Claims, &cfg)
	if err != nil {
		return agg, err
	}

	// π_I = Σ_{i∈I} πᵢ/A'_I(ωⁱ), with A'_I(ωⁱ) = Π_{j∈I, j≠i}(ωⁱ-ωʲ)
	folds := make([]bls12381.G1Affine, len(groups))
	for g := range groups {
		in := groups[g].claims
		den := make([]fr.Element, len(in))
		witnesses := make([]bls12381.G1Affine, len(in))
		var t fr.Element
		for a := range in {
			den[a].SetOne()
			rootA := &vk.Domain.Roots[agg.Claims[in[a]].Index]
			for b := range in {
				if b == a {
					continue
				}
				t.Sub(rootA, &vk.Domain.Roots[agg.Claims[in[b]].Index])
				den[a].Mul(&den[a], &t)
			}
			witnesses[a] = claims[in[a]].H
		}
		weights := fr.BatchInvert(den)
		if _, err := folds[g].MultiExp(witnesses, weights, ecc.MultiExpConfig{NbTasks: cfg.nbTasks}); err != nil {
			return agg, err
		}
	}

	powers := make([]fr.Element, len(groups))
	powers[0].SetOne()
	for g := 1; g < len(powers); g++ {
		powers[g].Mul(&powers[g-1], &r)
	}
	if _, err := agg.W.MultiExp(folds, powers, ecc.MultiExpConfig{NbTasks: cfg.nbTasks}); err != nil {
		return agg, err
	}

	log.Debug().Dur("took", time.Since(start)).Int("commitments", len(groups)).Msg("claims aggregated")
	return agg, nil
}

// VerifyAggregated checks an aggregated proof against its claims: one pairing
// per distinct commitment, plus one for the witness. An aggregation over m
// claims needs len(vk.Kzg.G2) ≥ m+1.
func VerifyAggregated(agg *AggregatedProof, vk *VerifyingKey, opts ...Option) (bool, error) {
	if len(agg.Claims) == 0 {
		return false, kzg.ErrEmptyClaimSet
	}
	cfg, err := newConfig(opts...)
	if err != nil {
		return false, err
	}

	groups, err := groupClaims(agg.Claims, vk.Domain.Cardinality)
	if err != nil {
		return false, err
	}

	m := len(agg.Claims)
	if len(vk.Kzg.G1) < m || len(vk.Kzg.G2) < m+1 {
		return false, kzg.ErrDegreeExceeded
	}

	r, err := deriveChallenge(agg.Claims, &cfg)
	if err != nil {
		return false, err
	}

	// per group: the claimed positions, their vanishing polynomial A_I and
	// the interpolation R_I of the claimed values
	points := make([][]fr.Element, len(groups))
	remainders := make([]polynomial.Polynomial, len(groups))
	var all []fr.Element
	for g := range groups {
		in := groups[g].claims
		points[g] = make([]fr.Element, len(in))
		values := make([]fr.Element, len(in))
		for a := range in {
			points[g][a] = vk.Domain.Roots[agg.Claims[in[a]].Index]
			values[a] = agg.Claims[in[a]].Value
		}
		all = append(all, points[g]...)
		if remainders[g], err = polynomial.Interpolate(points[g], values); err != nil {
			return false, err
		}
	}

	// A = Π_g A_{I_g}, the vanishing polynomial of the claim multiset, and
	// F_g = A/A_{I_g}, exact by construction
	vanishing := polynomial.Vanishing(all)
	cofactors := make([]polynomial.Polynomial, len(groups))
	for g := range groups {
		cofactors[g] = vanishing
		for _, z := range points[g] {
			cofactors[g], _ = cofactors[g].DivideByLinear(z)
		}
	}

	// e(r⁰(C₀-[R₀(τ)]₁), [F₀(τ)]₂)·…·e(-W, [A(τ)]₂) == 1
	g1Terms := make([]bls12381.G1Affine, len(groups)+1)
	g2Terms := make([]bls12381.G2Affine, len(groups)+1)
	var rPow fr.Element
	rPow.SetOne()
	var rBig big.Int
	for g := range groups {
		var ri bls12381.G1Affine
		if _, err := ri.MultiExp(vk.Kzg.G1[:len(remainders[g])], remainders[g], ecc.MultiExpConfig{NbTasks: cfg.nbTasks}); err != nil {
			return false, err
		}
		g1Terms[g].Sub(&groups[g].commitment, &ri)
		rPow.BigInt(&rBig)
		g1Terms[g].ScalarMultiplication(&g1Terms[g], &rBig)
		rPow.Mul(&rPow, &r)

		if _, err := g2Terms[g].MultiExp(vk.Kzg.G2[:len(cofactors[g])], cofactors[g], ecc.MultiExpConfig{NbTasks: cfg.nbTasks}); err != nil {
			return false, err
		}
	}
	g1Terms[len(groups)].Neg(&agg.W)
	if _, err := g2Terms[len(groups)].MultiExp(vk.Kzg.G2[:len(vanishing)], vanishing, ecc.MultiExpConfig{NbTasks: cfg.nbTasks}); err != nil {
		return false, err
	}

	return bls12381.PairingCheck(g1Terms, g2Terms)
}
