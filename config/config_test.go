package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-accounts/config"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("TOKEN_SIGNING_SECRET", "a-secret-long-enough-to-pass-validation")
	t.Setenv("CLASSROOM_SERVICE_API_KEY", "classroom-key")
	t.Setenv("GAME_SERVICE_API_KEY", "game-key")
	t.Setenv("STORE_SERVICE_API_KEY", "store-key")
}

func TestLoad(t *testing.T) {
	t.Run("loads with defaults", func(t *testing.T) {
		setRequiredEnv(t)

		cfg, err := config.Load()
		require.NoError(t, err)

		assert.Equal(t, ":3000", cfg.HTTPAddr)
		assert.Equal(t, 24, cfg.TokenExpirationHours)
		assert.Equal(t, "accounts", cfg.TokenIssuer)
		assert.Len(t, cfg.ServiceKeys(), 3)
	})

	t.Run("missing signing secret fails startup", func(t *testing.T) {
		t.Setenv("TOKEN_SIGNING_SECRET", "")
		t.Setenv("CLASSROOM_SERVICE_API_KEY", "classroom-key")
		t.Setenv("GAME_SERVICE_API_KEY", "game-key")
		t.Setenv("STORE_SERVICE_API_KEY", "store-key")

		_, err := config.Load()
		assert.Error(t, err)
	})

	t.Run("short signing secret fails startup", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("TOKEN_SIGNING_SECRET", "too-short")

		_, err := config.Load()
		assert.Error(t, err)
	})

	t.Run("missing service key fails startup", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("GAME_SERVICE_API_KEY", "")

		_, err := config.Load()
		assert.Error(t, err)
	})

	t.Run("sanitized copy hides secrets", func(t *testing.T) {
		setRequiredEnv(t)

		cfg, err := config.Load()
		require.NoError(t, err)

		clean := cfg.Sanitized()
		assert.Equal(t, "[REDACTED]", clean.TokenSigningSecret)
		assert.Equal(t, "[REDACTED]", clean.GameServiceAPIKey)
		assert.NotEqual(t, cfg.TokenSigningSecret, clean.TokenSigningSecret)
	})
}
