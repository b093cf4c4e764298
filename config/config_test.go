package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unsetEnv clears key for the duration of the test; t.Setenv restores it.
func unsetEnv(t *testing.T, key string) {
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "DB_DRIVER", "DB_PATH", "AUTH_MODE", "REQUIRE_AUTH", "JWT_TTL", "CORS_ALLOWED_ORIGINS", "FRONTEND_URL"} {
		unsetEnv(t, key)
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, "./jobs.db", cfg.DBPath)
	assert.Equal(t, AuthModePerUser, cfg.AuthMode)
	assert.True(t, cfg.RequireAuth)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.False(t, cfg.SharedSecret())
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/jobs")
	t.Setenv("AUTH_MODE", "shared_secret")
	t.Setenv("REQUIRE_AUTH", "false")
	t.Setenv("JWT_TTL", "90m")
	t.Setenv("BCRYPT_COST", "not-a-number")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test/, http://b.test")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, DriverPostgres, cfg.DBDriver)
	assert.True(t, cfg.SharedSecret())
	assert.False(t, cfg.RequireAuth)
	assert.Equal(t, 90*time.Minute, cfg.JWTTTL)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
}

func TestLoadConfigRejectsUnknownValues(t *testing.T) {
	t.Setenv("DB_DRIVER", "mysql")
	t.Setenv("AUTH_MODE", "per_user")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_DRIVER")

	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("AUTH_MODE", "oauth")
	_, err = LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AUTH_MODE")
}

func TestLoadConfigRejectsEmptyOrigins(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("AUTH_MODE", "per_user")
	t.Setenv("CORS_ALLOWED_ORIGINS", " , ")

	_, err := LoadConfig()
	var cfgErr *Error
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "CORS_ALLOWED_ORIGINS", cfgErr.Key)

	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	_, err = LoadConfig()
	assert.ErrorAs(t, err, &cfgErr)
}
