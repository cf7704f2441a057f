package asvc

import (
	"crypto/sha256"
	"errors"
	"hash"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

// Option allows to alter the configuration of an aggregation or commitment
// operation.
type Option func(*config) error

type config struct {
	challengeHash hash.Hash
	challenge     *fr.Element
	nbTasks       int
}

// WithChallengeHash sets the hash function the Fiat-Shamir transcript uses to
// derive the aggregation folding challenge. Prover and verifier sides of an
// aggregation must agree on it. Defaults to sha256.
func WithChallengeHash(h hash.Hash) Option {
	return func(c *config) error {
		c.challengeHash = h
		return nil
	}
}

// WithChallenge sets the folding challenge explicitly instead of deriving it
// from the claims. Meant for verifier-supplied randomness: the challenge must
// be sampled after the claim set is fixed.
func WithChallenge(r fr.Element) Option {
	return func(c *config) error {
		c.challenge = &r
		return nil
	}
}

// WithNbTasks caps the number of CPUs the multi exponentiations use.
func WithNbTasks(n int) Option {
	return func(c *config) error {
		if n < 1 {
			return errors.New("invalid number of tasks")
		}
		c.nbTasks = n
		return nil
	}
}

func newConfig(opts ...Option) (config, error) {
	c := config{
		challengeHash: sha256.New(),
	}
	for _, opt := range opts {
		if err := opt(&c); err != nil {
			return config{}, err
		}
	}
	return c, nil
}
