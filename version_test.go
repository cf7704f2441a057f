package polycommit

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/stretchr/testify/require"
)

func TestVersion(t *testing.T) {
	assert := require.New(t)

	assert.NoError(Version.Validate())
	assert.NotEqual(uint64(0), Version.Major+Version.Minor+Version.Patch, "version must be set")
}

func TestCurve(t *testing.T) {
	assert := require.New(t)
	assert.Equal(ecc.BLS12_381, Curve())
}
