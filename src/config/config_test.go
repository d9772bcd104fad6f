package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir()) // no .env in scope
	for _, key := range []string{"PORT", "DB_HOST", "JWT_SECRET", "ENV_FILE_PATHS", "PROBE_TIMEOUT", "AUTH_RATE_LIMIT_PER_MINUTE", "COOKIE_SECURE"} {
		unsetEnv(t, key)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Port)
	assert.Equal(t, "localhost", cfg.DBHost)
	assert.Equal(t, []string{".env", "server/.env"}, cfg.EnvFilePaths)
	assert.Equal(t, 30*time.Second, cfg.ProbeTimeout)
	assert.Equal(t, 5, cfg.AuthRateLimitPerMinute)
	assert.False(t, cfg.CookieSecure)
	assert.True(t, cfg.JWTSecretGenerated)
	assert.Len(t, cfg.JWTSecret, 48)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "8081")
	t.Setenv("JWT_SECRET", "a-very-long-secret-value-for-tests-0123")
	t.Setenv("ENV_FILE_PATHS", " /tmp/a.env , /tmp/b.env ,")
	t.Setenv("ALLOWED_ORIGINS", "https://gamehost.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Port)
	assert.False(t, cfg.JWTSecretGenerated)
	assert.Equal(t, []string{"/tmp/a.env", "/tmp/b.env"}, cfg.EnvFilePaths)
	assert.Equal(t, []string{"https://gamehost.example"}, cfg.AllowedOrigins)
}

func TestDatabaseURL(t *testing.T) {
	cfg := &Config{
		DBHost:     "db",
		DBPort:     5433,
		DBUser:     "admin",
		DBPassword: "p@ss word",
		DBName:     "site",
		DBSSLMode:  "disable",
	}

	assert.Equal(t, "postgres://admin:p%40ss%20word@db:5433/site?sslmode=disable", cfg.DatabaseURL())
}

// unsetEnv removes key for the duration of the test
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}
