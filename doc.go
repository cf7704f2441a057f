// Package polycommit provides pairing-based polynomial and vector commitments
// over BLS12-381.
//
// polycommit implements two related primitives:
//   - KZG polynomial commitments: constant-size commitments with openings at
//     one point or at many points (package kzg)
//   - aSVC vector commitments: commit to a fixed-size vector, prove and verify
//     single positions, update commitments and proofs incrementally, and
//     aggregate position proofs across several commitments into one
//     constant-size proof (package asvc)
//
// The scalar field, curve arithmetic and pairings come from
// github.com/consensys/gnark-crypto.
package polycommit

import (
	"github.com/blang/semver/v4"
	"github.com/consensys/gnark-crypto/ecc"
)

var Version = semver.MustParse("0.1.0")

// Curve returns the curve polycommit operates on.
func Curve() ecc.ID {
	return ecc.BLS12_381
}
