package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := parse()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, ":5000", cfg.Server.Addr)
	assert.Equal(t, int64(10*1024*1024), cfg.Server.MaxBodyBytes)
	assert.Equal(t, "https://api.paystack.co", cfg.Paystack.BaseURL)
	assert.Equal(t, 48*time.Hour, cfg.Downloads.TokenTTL)
	assert.Equal(t, 3, cfg.Downloads.MaxDownloads)
	assert.Equal(t, 100, cfg.RateLimit.GeneralLimit)
	assert.Equal(t, 5, cfg.RateLimit.DownloadLimit)
}

func TestParseEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_ADDR", ":8080")
	t.Setenv("DOWNLOAD_MAX_DOWNLOADS", "5")
	t.Setenv("DOWNLOAD_TOKEN_TTL", "24h")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("SERVER_TRUST_PROXY", "false")

	cfg, err := parse()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 5, cfg.Downloads.MaxDownloads)
	assert.Equal(t, 24*time.Hour, cfg.Downloads.TokenTTL)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Server.AllowedOrigins)
	assert.False(t, cfg.Server.TrustProxy)
}

func TestParseIgnoresMalformedValues(t *testing.T) {
	t.Setenv("DOWNLOAD_MAX_DOWNLOADS", "many")
	t.Setenv("SERVER_TRUST_PROXY", "maybe")

	cfg, err := parse()
	require.NoError(t, err)

	// Malformed values fall back to defaults instead of failing startup.
	assert.Equal(t, 3, cfg.Downloads.MaxDownloads)
	assert.True(t, cfg.Server.TrustProxy)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := parse()
		require.NoError(t, err)
		return cfg
	}

	t.Run("development defaults pass", func(t *testing.T) {
		assert.NoError(t, base().Validate())
	})

	t.Run("production requires secrets", func(t *testing.T) {
		cfg := base()
		cfg.Environment = "production"

		err := cfg.Validate()

		require.Error(t, err)
		assert.Contains(t, err.Error(), "PAYSTACK_SECRET_KEY")
		assert.Contains(t, err.Error(), "PAYSTACK_WEBHOOK_SECRET")
		assert.Contains(t, err.Error(), "ENCRYPTION_KEY")
	})

	t.Run("encryption key must be 32 bytes when set", func(t *testing.T) {
		cfg := base()
		cfg.EncryptionKey = "too-short"

		err := cfg.Validate()

		require.Error(t, err)
		assert.Contains(t, err.Error(), "ENCRYPTION_KEY must be exactly 32 bytes")

		cfg.EncryptionKey = "0123456789abcdef0123456789abcdef"
		assert.NoError(t, cfg.Validate())
	})

	t.Run("non-positive entitlement settings are refused", func(t *testing.T) {
		cfg := base()
		cfg.Downloads.MaxDownloads = 0

		err := cfg.Validate()

		require.Error(t, err)
		assert.Contains(t, err.Error(), "DOWNLOAD_MAX_DOWNLOADS")
	})

	t.Run("collects multiple problems at once", func(t *testing.T) {
		cfg := base()
		cfg.Downloads.TokenTTL = 0
		cfg.RateLimit.GeneralLimit = 0

		err := cfg.Validate()

		require.Error(t, err)
		assert.Contains(t, err.Error(), "DOWNLOAD_TOKEN_TTL")
		assert.Contains(t, err.Error(), "rate limits")
	})
}

func TestEnvironmentHelpers(t *testing.T) {
	cfg := &Config{Environment: "production"}
	assert.True(t, cfg.IsProduction())
	assert.False(t, cfg.IsDevelopment())

	cfg.Environment = "development"
	assert.True(t, cfg.IsDevelopment())
}
