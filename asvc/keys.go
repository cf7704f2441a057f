package asvc

import (
	"math/big"
	"time"

	"github.com/consensys/gnark-crypto/ecc"
	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/consensys/polycommit/internal/utils"
	"github.com/consensys/polycommit/kzg"
	"github.com/consensys/polycommit/logger"
	"github.com/consensys/polycommit/polynomial"
)

// ProvingKey holds the per-position commitment bases of a domain: the
// Lagrange basis commitments vectors are committed against, and the aSVC
// update keys that make incremental proof maintenance O(1).
type ProvingKey struct {
	Domain *Domain
	Srs    *kzg.SRS

	// Lagrange[i] = [Lᵢ(τ)]G₁
	Lagrange []bls12381.G1Affine

	// A[i] = [Aᵢ(τ)]G₁ with Aᵢ = (Xⁿ-1)/(X-ωⁱ)
	A []bls12381.G1Affine

	// U[i] = [(Lᵢ(τ)-1)/(τ-ωⁱ)]G₁, the update key of position i
	U []bls12381.G1Affine
}

// VerifyingKey carries what verifiers need: the domain and the KZG verifying
// key, whose G1/G2 power tails serve batch and aggregated verification.
type VerifyingKey struct {
	Domain *Domain
	Kzg    kzg.VerifyingKey
}

// DeriveKeys computes the aSVC proving and verifying keys for domain from an
// SRS of capacity ≥ n. O(n²) group operations overall, parallelized over
// positions; meant for the moderate vector sizes the scheme targets.
func DeriveKeys(srs *kzg.SRS, domain *Domain) (*ProvingKey, *VerifyingKey, error) {
	n := int(domain.Cardinality)
	if len(srs.Pk.G1) < n {
		return nil, nil, kzg.ErrDegreeExceeded
	}

	log := logger.Logger().With().Str("package", "asvc").Uint64("n", domain.Cardinality).Logger()
	start := time.Now()

	pk := &ProvingKey{
		Domain:   domain,
		Srs:      srs,
		Lagrange: make([]bls12381.G1Affine, n),
		A:        make([]bls12381.G1Affine, n),
		U:        make([]bls12381.G1Affine, n),
	}

	// one position at a time: Aᵢ = (Xⁿ-1)/(X-ωⁱ) = Σ_j ωⁱ⁽ⁿ⁻¹⁻ʲ⁾Xʲ in closed
	// form, Lᵢ = (ωⁱ/n)·Aᵢ, and the update key from the exact division of
	// Lᵢ-1 by (X-ωⁱ). Inner multi exponentiations run single-task since the
	// positions are already spread across the CPUs.
	utils.Parallelize(n, func(begin, end int) {
		coeffs := make(polynomial.Polynomial, n)
		var s fr.Element
		var sBig big.Int
		for i := begin; i < end; i++ {
			root := &domain.Roots[i]

			coeffs[n-1].SetOne()
			for j := n - 2; j >= 0; j-- {
				coeffs[j].Mul(&coeffs[j+1], root)
			}
			pk.A[i].MultiExp(srs.Pk.G1[:n], coeffs, ecc.MultiExpConfig{NbTasks: 1})

			// Lᵢ(τ) is a scalar multiple of Aᵢ(τ)
			s.Mul(root, &domain.CardinalityInv)
			s.BigInt(&sBig)
			pk.Lagrange[i].ScalarMultiplication(&pk.A[i], &sBig)

			// uᵢ = [(Lᵢ(τ)-1)/(τ-ωⁱ)]G₁; the remainder vanishes since
			// Lᵢ(ωⁱ) = 1
			li := make(polynomial.Polynomial, n)
			for j := range li {
				li[j].Mul(&coeffs[j], &s)
			}
			var one fr.Element
			one.SetOne()
			li[0].Sub(&li[0], &one)
			q, _ := li.DivideByLinear(*root)
			if len(q) > 0 {
				pk.U[i].MultiExp(srs.Pk.G1[:len(q)], q, ecc.MultiExpConfig{NbTasks: 1})
			}
		}
	})

	vk := &VerifyingKey{
		Domain: domain,
		Kzg:    srs.Vk,
	}

	log.Debug().Dur("took", time.Since(start)).Msg("asvc keys derived")
	return pk, vk, nil
}
