package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher(t *testing.T) {
	t.Parallel()

	// Minimum cost keeps the test fast; the algorithm is the same.
	hasher := NewBcryptHasher(bcrypt.MinCost)

	t.Run("hash and compare round trip", func(t *testing.T) {
		t.Parallel()

		hashed, err := hasher.Hash("correct horse battery staple")
		require.NoError(t, err)
		assert.NotEqual(t, "correct horse battery staple", hashed)

		assert.NoError(t, hasher.Compare(hashed, "correct horse battery staple"))
	})

	t.Run("wrong password fails comparison", func(t *testing.T) {
		t.Parallel()

		hashed, err := hasher.Hash("correct horse battery staple")
		require.NoError(t, err)

		assert.Error(t, hasher.Compare(hashed, "wrong password"))
	})

	t.Run("zero cost selects the bcrypt default", func(t *testing.T) {
		t.Parallel()

		h := NewBcryptHasher(0)
		assert.Equal(t, bcrypt.DefaultCost, h.cost)
	})
}
