package accounts_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-accounts"
)

func TestHashPassword(t *testing.T) {
	t.Run("hashes and verifies", func(t *testing.T) {
		hash, err := accounts.HashPassword("secret123")
		require.NoError(t, err)
		assert.NotEqual(t, "secret123", hash)
		assert.NoError(t, accounts.ComparePasswordAndHash("secret123", hash))
	})

	t.Run("rejects empty password", func(t *testing.T) {
		_, err := accounts.HashPassword("")
		assert.ErrorIs(t, err, accounts.ErrNoEmptyString)
	})

	t.Run("mismatch returns sentinel", func(t *testing.T) {
		hash, err := accounts.HashPassword("secret123")
		require.NoError(t, err)

		err = accounts.ComparePasswordAndHash("wrong", hash)
		assert.ErrorIs(t, err, accounts.ErrMismatchedHashAndPassword)
	})
}
