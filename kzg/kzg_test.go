package kzg

import (
	"math/big"
	"testing"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"

	"github.com/consensys/polycommit/io"
	"github.com/consensys/polycommit/polynomial"
)

const srsSize = 256

var testSrs *SRS

func init() {
	var err error
	testSrs, err = NewSRS(srsSize, new(big.Int).SetInt64(42))
	if err != nil {
		panic(err)
	}
}

func randomPolynomial(size int) polynomial.Polynomial {
	p := make(polynomial.Polynomial, size)
	for i := range p {
		p[i].MustSetRandom()
	}
	return p
}

func genFr() gopter.Gen {
	return func(genParams *gopter.GenParameters) *gopter.GenResult {
		var elmt fr.Element
		elmt.MustSetRandom()
		return gopter.NewGenResult(elmt, gopter.NoShrinker)
	}
}

func TestCommitOpenVerify(t *testing.T) {
	assert := require.New(t)

	p := randomPolynomial(60)
	digest, err := Commit(p, testSrs.Pk)
	assert.NoError(err)

	var point fr.Element
	point.SetUint64(2771)
	proof, err := Open(p, point, testSrs.Pk)
	assert.NoError(err)

	expected := p.Eval(&point)
	assert.True(proof.ClaimedValue.Equal(&expected))

	ok, err := Verify(&digest, &proof, testSrs.Vk)
	assert.NoError(err)
	assert.True(ok)

	// a tampered claim must be rejected, without error
	tampered := proof
	tampered.ClaimedValue.SetUint64(1)
	ok, err = Verify(&digest, &tampered, testSrs.Vk)
	assert.NoError(err)
	assert.False(ok)

	// a proof against another commitment must be rejected
	q := randomPolynomial(60)
	otherDigest, err := Commit(q, testSrs.Pk)
	assert.NoError(err)
	ok, err = Verify(&otherDigest, &proof, testSrs.Vk)
	assert.NoError(err)
	assert.False(ok)
}

func TestOpenConstantPolynomial(t *testing.T) {
	assert := require.New(t)

	p := make(polynomial.Polynomial, 1)
	p[0].SetUint64(87)

	digest, err := Commit(p, testSrs.Pk)
	assert.NoError(err)

	var point fr.Element
	point.MustSetRandom()
	proof, err := Open(p, point, testSrs.Pk)
	assert.NoError(err)
	assert.True(proof.H.IsInfinity())

	ok, err := Verify(&digest, &proof, testSrs.Vk)
	assert.NoError(err)
	assert.True(ok)
}

func TestDegreeGuard(t *testing.T) {
	assert := require.New(t)

	tooBig := randomPolynomial(srsSize + 1)
	_, err := Commit(tooBig, testSrs.Pk)
	assert.ErrorIs(err, ErrDegreeExceeded)

	var point fr.Element
	point.MustSetRandom()
	_, err = Open(tooBig, point, testSrs.Pk)
	assert.ErrorIs(err, ErrDegreeExceeded)

	var empty polynomial.Polynomial
	_, err = Commit(empty, testSrs.Pk)
	assert.ErrorIs(err, ErrDegreeExceeded)
}

func TestBatchOpenVerify(t *testing.T) {
	assert := require.New(t)

	p := randomPolynomial(40)
	digest, err := Commit(p, testSrs.Pk)
	assert.NoError(err)

	points := make([]fr.Element, 5)
	for i := range points {
		points[i].SetUint64(uint64(100 + i))
	}

	proof, err := BatchOpen(p, points, nil, testSrs.Pk)
	assert.NoError(err)
	assert.Len(proof.ClaimedValues, len(points))

	ok, err := BatchVerify(&digest, &proof, testSrs.Vk)
	assert.NoError(err)
	assert.True(ok)

	// flipping any claimed value must flip the verdict
	tampered := BatchProof{
		Points:        proof.Points,
		ClaimedValues: append([]fr.Element{}, proof.ClaimedValues...),
		H:             proof.H,
	}
	var one fr.Element
	one.SetOne()
	tampered.ClaimedValues[2].Add(&tampered.ClaimedValues[2], &one)
	ok, err = BatchVerify(&digest, &tampered, testSrs.Vk)
	assert.NoError(err)
	assert.False(ok)
}

func TestBatchOpenGuards(t *testing.T) {
	assert := require.New(t)

	p := randomPolynomial(40)

	points := make([]fr.Element, 4)
	for i := range points {
		points[i].SetUint64(uint64(i))
	}

	// claims disagreeing with the polynomial
	wrong := make([]fr.Element, len(points))
	for i := range wrong {
		wrong[i].SetUint64(uint64(i + 1000))
	}
	_, err := BatchOpen(p, points, wrong, testSrs.Pk)
	assert.ErrorIs(err, ErrInconsistentClaim)

	// mismatched shapes
	_, err = BatchOpen(p, points, wrong[:2], testSrs.Pk)
	assert.ErrorIs(err, ErrInconsistentClaim)

	// duplicate points
	dup := append([]fr.Element{}, points...)
	dup[3] = dup[0]
	_, err = BatchOpen(p, dup, nil, testSrs.Pk)
	assert.ErrorIs(err, polynomial.ErrDuplicatePoints)

	// no points at all
	_, err = BatchOpen(p, nil, nil, testSrs.Pk)
	assert.ErrorIs(err, ErrEmptyClaimSet)
}

func TestBatchVerifyCapacity(t *testing.T) {
	assert := require.New(t)

	// an SRS of capacity 3 cannot verify a 5-point batch: the vanishing
	// polynomial needs the 6th G2 power
	small, err := NewSRS(4, new(big.Int).SetInt64(42))
	assert.NoError(err)

	p := randomPolynomial(4)
	digest, err := Commit(p, small.Pk)
	assert.NoError(err)

	points := make([]fr.Element, 5)
	for i := range points {
		points[i].SetUint64(uint64(7 + i))
	}
	proof, err := BatchOpen(p, points, nil, small.Pk)
	assert.NoError(err)

	_, err = BatchVerify(&digest, &proof, small.Vk)
	assert.ErrorIs(err, ErrDegreeExceeded)

	// the large SRS verifies the same proof
	ok, err := BatchVerify(&digest, &proof, testSrs.Vk)
	assert.NoError(err)
	assert.True(ok)
}

func TestBatchVerifyMultiPoints(t *testing.T) {
	assert := require.New(t)

	const m = 4
	digests := make([]Digest, m)
	proofs := make([]OpeningProof, m)
	for i := 0; i < m; i++ {
		p := randomPolynomial(30 + i)
		var err error
		digests[i], err = Commit(p, testSrs.Pk)
		assert.NoError(err)

		var point fr.Element
		point.MustSetRandom()
		proofs[i], err = Open(p, point, testSrs.Pk)
		assert.NoError(err)
	}

	ok, err := BatchVerifyMultiPoints(digests, proofs, testSrs.Vk)
	assert.NoError(err)
	assert.True(ok)

	// single proof goes through the direct path
	ok, err = BatchVerifyMultiPoints(digests[:1], proofs[:1], testSrs.Vk)
	assert.NoError(err)
	assert.True(ok)

	// one corrupted claim poisons the whole batch
	proofs[2].ClaimedValue.SetUint64(99)
	ok, err = BatchVerifyMultiPoints(digests, proofs, testSrs.Vk)
	assert.NoError(err)
	assert.False(ok)

	_, err = BatchVerifyMultiPoints(digests[:2], proofs[:3], testSrs.Vk)
	assert.ErrorIs(err, ErrInconsistentClaim)

	_, err = BatchVerifyMultiPoints(nil, nil, testSrs.Vk)
	assert.ErrorIs(err, ErrEmptyClaimSet)
}

func TestLoadSRS(t *testing.T) {
	assert := require.New(t)

	_, err := LoadSRS(nil, testSrs.Vk.G2)
	assert.ErrorIs(err, ErrInvalidSRS)

	_, err = LoadSRS(testSrs.Pk.G1, testSrs.Vk.G2[:1])
	assert.ErrorIs(err, ErrInvalidSRS)

	srs, err := LoadSRS(testSrs.Pk.G1, testSrs.Vk.G2)
	assert.NoError(err)
	assert.Equal(len(testSrs.Pk.G1), len(srs.Vk.G1))
}

func TestSRSValidate(t *testing.T) {
	assert := require.New(t)

	assert.NoError(testSrs.Validate())

	cloneG1 := func() []bls12381.G1Affine {
		g1 := make([]bls12381.G1Affine, len(testSrs.Pk.G1))
		copy(g1, testSrs.Pk.G1)
		return g1
	}
	cloneG2 := func() []bls12381.G2Affine {
		g2 := make([]bls12381.G2Affine, len(testSrs.Vk.G2))
		copy(g2, testSrs.Vk.G2)
		return g2
	}

	// break the G1 geometric sequence
	g1 := cloneG1()
	g1[3] = g1[2]
	bad, err := LoadSRS(g1, cloneG2())
	assert.NoError(err)
	assert.ErrorIs(bad.Validate(), ErrInvalidSRS)

	// break the G2 side
	g2 := cloneG2()
	g2[2] = g2[1]
	bad, err = LoadSRS(cloneG1(), g2)
	assert.NoError(err)
	assert.ErrorIs(bad.Validate(), ErrInvalidSRS)
}

func TestSerialization(t *testing.T) {
	assert := require.New(t)

	small, err := NewSRS(8, new(big.Int).SetInt64(42))
	assert.NoError(err)

	// the SRS round trips through both the compressed and the raw encodings
	assert.NoError(io.RoundTripCheck(small, func() any { return new(SRS) }))
	assert.NoError(io.RoundTripCheck(&small.Pk, func() any { return new(ProvingKey) }))
	assert.NoError(io.RoundTripCheck(&small.Vk, func() any { return new(VerifyingKey) }))

	p := randomPolynomial(8)
	var point fr.Element
	point.MustSetRandom()
	proof, err := Open(p, point, small.Pk)
	assert.NoError(err)
	assert.NoError(io.RoundTripCheck(&proof, func() any { return new(OpeningProof) }))

	points := make([]fr.Element, 3)
	for i := range points {
		points[i].SetUint64(uint64(i + 5))
	}
	batch, err := BatchOpen(p, points, nil, small.Pk)
	assert.NoError(err)
	assert.NoError(io.RoundTripCheck(&batch, func() any { return new(BatchProof) }))
}

func TestOpeningProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 10

	properties := gopter.NewProperties(parameters)

	properties.Property("opening a random polynomial at a random point verifies", prop.ForAll(
		func(point fr.Element) bool {
			p := randomPolynomial(32)
			digest, err := Commit(p, testSrs.Pk)
			if err != nil {
				return false
			}
			proof, err := Open(p, point, testSrs.Pk)
			if err != nil {
				return false
			}
			ok, err := Verify(&digest, &proof, testSrs.Vk)
			return err == nil && ok
		},
		genFr(),
	))

	properties.Property("distinct polynomials commit to distinct digests", prop.ForAll(
		func(_ fr.Element) bool {
			p := randomPolynomial(16)
			q := randomPolynomial(16)
			if p.Equal(q) {
				return true
			}
			dp, err := Commit(p, testSrs.Pk)
			if err != nil {
				return false
			}
			dq, err := Commit(q, testSrs.Pk)
			if err != nil {
				return false
			}
			return !dp.Equal(&dq)
		},
		genFr(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func BenchmarkCommit(b *testing.B) {
	p := randomPolynomial(srsSize)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Commit(p, testSrs.Pk)
	}
}

func BenchmarkOpen(b *testing.B) {
	p := randomPolynomial(srsSize)
	var point fr.Element
	point.MustSetRandom()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Open(p, point, testSrs.Pk)
	}
}

func BenchmarkVerify(b *testing.B) {
	p := randomPolynomial(srsSize)
	var point fr.Element
	point.MustSetRandom()
	digest, err := Commit(p, testSrs.Pk)
	if err != nil {
		b.Fatal(err)
	}
	proof, err := Open(p, point, testSrs.Pk)
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Verify(&digest, &proof, testSrs.Vk)
	}
}
