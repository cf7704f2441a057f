package polynomial

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"
)

func randomPolynomial(size int) Polynomial {
	p := make(Polynomial, size)
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

func TestEval(t *testing.T) {
	assert := require.New(t)

	// p = 3 + X + 2X³
	p := make(Polynomial, 4)
	p[0].SetUint64(3)
	p[1].SetOne()
	p[3].SetUint64(2)

	var x fr.Element
	x.SetUint64(2)
	y := p.Eval(&x)

	var expected fr.Element
	expected.SetUint64(21)
	assert.True(y.Equal(&expected))

	var empty Polynomial
	zero := empty.Eval(&x)
	assert.True(zero.IsZero())
}

func TestDivideByLinear(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("p == q·(X-z) + p(z)", prop.ForAll(
		func(z fr.Element) bool {
			p := randomPolynomial(10)
			q, rem := p.DivideByLinear(z)

			pz := p.Eval(&z)
			if !rem.Equal(&pz) {
				return false
			}

			var minusZ fr.Element
			minusZ.Neg(&z)
			back := Mul(q, Polynomial{minusZ, fr.One()})
			back[0].Add(&back[0], &rem)
			return back.Equal(p)
		},
		genFr(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestVanishing(t *testing.T) {
	assert := require.New(t)

	points := make([]fr.Element, 5)
	for i := range points {
		points[i].MustSetRandom()
	}

	z := Vanishing(points)
	assert.Equal(len(points)+1, len(z))
	assert.True(z[len(points)].IsOne())

	for i := range points {
		y := z.Eval(&points[i])
		assert.True(y.IsZero())
	}

	var notRoot fr.Element
	notRoot.SetUint64(0xdeadbeef)
	y := z.Eval(&notRoot)
	assert.False(y.IsZero())
}

func TestInterpolate(t *testing.T) {
	assert := require.New(t)

	k := 6
	points := make([]fr.Element, k)
	values := make([]fr.Element, k)
	for i := 0; i < k; i++ {
		points[i].SetUint64(uint64(i + 1))
		values[i].MustSetRandom()
	}

	p, err := Interpolate(points, values)
	assert.NoError(err)
	assert.Equal(k, len(p))

	for i := 0; i < k; i++ {
		y := p.Eval(&points[i])
		assert.True(y.Equal(&values[i]))
	}

	points[3] = points[0]
	_, err = Interpolate(points, values)
	assert.ErrorIs(err, ErrDuplicatePoints)

	_, err = Interpolate(points[:k-1], values)
	assert.Error(err)
}

func TestAddSub(t *testing.T) {
	assert := require.New(t)

	p := randomPolynomial(8)
	q := randomPolynomial(5)

	r := p.Add(q).Sub(q)
	assert.True(r.Equal(p))

	s := p.Sub(p)
	for i := range s {
		assert.True(s[i].IsZero())
	}
}
