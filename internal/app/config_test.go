package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("secret is required", func(t *testing.T) {
		t.Setenv("TOKEN_SECRET", "")
		_, err := LoadConfig()
		require.Error(t, err)
	})

	t.Run("defaults", func(t *testing.T) {
		t.Setenv("TOKEN_SECRET", "s3cret")
		cfg, err := LoadConfig()
		require.NoError(t, err)
		require.Equal(t, 8080, cfg.Port)
		require.Equal(t, 7*24*time.Hour, cfg.AccessTTL)
		require.Equal(t, 30*24*time.Hour, cfg.RefreshTTL)
		require.True(t, cfg.Dev())
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("TOKEN_SECRET", "s3cret")
		t.Setenv("ENV", "prod")
		t.Setenv("PORT", "9000")
		t.Setenv("ACCESS_TOKEN_TTL", "1h")
		cfg, err := LoadConfig()
		require.NoError(t, err)
		require.Equal(t, 9000, cfg.Port)
		require.Equal(t, time.Hour, cfg.AccessTTL)
		require.False(t, cfg.Dev())
	})
}
