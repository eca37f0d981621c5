package accounts_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-accounts"
)

func TestVerifyCredentials(t *testing.T) {
	repo := setupRepo(t)
	provider := accounts.NewUserProvider(repo.Users())
	ctx := context.Background()

	created := registerUser(t, repo, "login@example.com", "secret123", accounts.RoleTeacher, "")

	t.Run("valid credentials", func(t *testing.T) {
		user, err := provider.VerifyCredentials(ctx, "login@example.com", "secret123")
		require.NoError(t, err)
		assert.Equal(t, created.ID, user.ID)
	})

	t.Run("case insensitive email", func(t *testing.T) {
		user, err := provider.VerifyCredentials(ctx, "LOGIN@Example.com", "secret123")
		require.NoError(t, err)
		assert.Equal(t, created.ID, user.ID)
	})

	t.Run("tracks successful logins", func(t *testing.T) {
		before, err := repo.Users().GetActive(ctx, created.ID)
		require.NoError(t, err)

		_, err = provider.VerifyCredentials(ctx, "login@example.com", "secret123")
		require.NoError(t, err)

		after, err := repo.Users().GetActive(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, before.LoginCount+1, after.LoginCount)
		assert.NotNil(t, after.LastLoginAt)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := provider.VerifyCredentials(ctx, "login@example.com", "wrong-password")
		assert.ErrorIs(t, err, accounts.ErrInvalidCredentials)
	})

	t.Run("unknown account fails identically", func(t *testing.T) {
		_, err := provider.VerifyCredentials(ctx, "nobody@example.com", "secret123")
		assert.ErrorIs(t, err, accounts.ErrInvalidCredentials)
	})

	t.Run("soft deleted account cannot login", func(t *testing.T) {
		victim := registerUser(t, repo, "deleted@example.com", "secret123", accounts.RoleTeacher, "")
		_, err := repo.Users().SoftDelete(ctx, victim.ID)
		require.NoError(t, err)

		_, err = provider.VerifyCredentials(ctx, "deleted@example.com", "secret123")
		assert.ErrorIs(t, err, accounts.ErrInvalidCredentials)

		_, err = repo.Users().Restore(ctx, victim.ID)
		require.NoError(t, err)

		user, err := provider.VerifyCredentials(ctx, "deleted@example.com", "secret123")
		require.NoError(t, err)
		assert.Equal(t, victim.ID, user.ID)
	})
}

func TestVerifyAdminCredentials(t *testing.T) {
	repo := setupRepo(t)
	provider := accounts.NewUserProvider(repo.Users())
	ctx := context.Background()

	registerUser(t, repo, "root@example.com", "secret123", accounts.RoleAdmin, "")
	registerUser(t, repo, "teach@example.com", "secret123", accounts.RoleTeacher, "")

	t.Run("admin passes", func(t *testing.T) {
		user, err := provider.VerifyAdminCredentials(ctx, "root@example.com", "secret123")
		require.NoError(t, err)
		assert.True(t, user.IsAdmin())
	})

	t.Run("non admin fails like a bad password", func(t *testing.T) {
		_, err := provider.VerifyAdminCredentials(ctx, "teach@example.com", "secret123")
		assert.ErrorIs(t, err, accounts.ErrInvalidCredentials)
	})
}
