package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	unsetEnv(t, "CLERK_WEBHOOK_SECRET", "DB_DRIVER", "SIGN_IN_URL", "ADMIN_TOKEN_TTL")

	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, "/sign-in", cfg.App.SignInURL)
	assert.Equal(t, 12*time.Hour, cfg.Admin.TokenTTL)
	assert.False(t, cfg.WebhookSecretConfigured())
}

func TestParseOverrides(t *testing.T) {
	t.Setenv("CLERK_WEBHOOK_SECRET", "whsec_abc")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("DB_DSN", "file::memory:")
	t.Setenv("APP_PORT", "8081")
	t.Setenv("CACHE_HOST", "redis")

	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "file::memory:", cfg.Database.DSN)
	assert.Equal(t, "0.0.0.0:8081", cfg.Addr())
	assert.True(t, cfg.WebhookSecretConfigured())
	assert.True(t, cfg.CacheEnabled())
}

func TestParseRejectsUnknownDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "oracle")

	_, err := Parse()
	assert.Error(t, err)
}

func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}
