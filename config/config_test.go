package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromMissingFileUsesDefaults(t *testing.T) {
	clearEnv(t, "APP_PORT", "DB_DRIVER", "DB_PORT", "DB_MAX_RETRIES", "REDIS_HOST", "CACHE_TTL_SECONDS")

	c, err := LoadFrom(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.Equal(t, "8080", c.AppPort)
	assert.Equal(t, "postgres", c.DBDriver)
	assert.Equal(t, "5432", c.DBPort)
	assert.Equal(t, 3, c.DBMaxRetries)
	assert.Equal(t, 60, c.CacheTTLSeconds)
	assert.False(t, c.RedisEnabled())
}

func TestLoadFromJSONSections(t *testing.T) {
	clearEnv(t, "APP_PORT", "JWT_SECRET", "DB_DRIVER", "DB_PORT", "DB_NAME", "REDIS_HOST", "REDIS_PORT", "LOG_LEVEL")

	path := writeConfig(t, `{
		"app": {"AppPort": "9000", "JWTSecret": "s3cret", "AllowedOrigins": ["https://a.example"]},
		"database": {"Driver": "mysql", "DBName": "cracker", "MaxRetries": 5},
		"redis": {"RedisHost": "cache", "RedisPort": 6380},
		"log": {"Level": "debug", "Compress": true}
	}`)

	c, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "9000", c.AppPort)
	assert.Equal(t, "s3cret", c.JWTSecret)
	assert.Equal(t, []string{"https://a.example"}, c.AllowedOrigins)
	assert.Equal(t, "mysql", c.DBDriver)
	assert.Equal(t, "3306", c.DBPort)
	assert.Equal(t, "cracker", c.DBName)
	assert.Equal(t, 5, c.DBMaxRetries)
	assert.Equal(t, "cache", c.RedisHost)
	assert.Equal(t, 6380, c.RedisPort)
	assert.True(t, c.RedisEnabled())
	assert.Equal(t, "debug", c.LogLevel)
	assert.True(t, c.LogCompress)
}

func TestEnvOverridesJSON(t *testing.T) {
	clearEnv(t, "DATABASE_URI", "DATABASE_URL")
	path := writeConfig(t, `{"app": {"AppPort": "9000"}, "database": {"Driver": "mysql"}}`)
	t.Setenv("APP_PORT", "7000")
	t.Setenv("DB_DRIVER", "POSTGRES")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("DATABASE_URL", "postgres://u:p@db/cracker")

	c, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "7000", c.AppPort)
	assert.Equal(t, "postgres", c.DBDriver)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, c.AllowedOrigins)
	assert.Equal(t, "postgres://u:p@db/cracker", c.DatabaseURI)
}

func TestLoadFromInvalidJSON(t *testing.T) {
	path := writeConfig(t, `{"app": `)
	c, err := LoadFrom(path)
	assert.Error(t, err)
	assert.NotEmpty(t, c.AppPort)
}

func TestValidate(t *testing.T) {
	c := AppConfig{DBDriver: "postgres"}
	assert.ErrorIs(t, c.Validate(), ErrMissingJWTSecret)

	c.JWTSecret = "x"
	assert.NoError(t, c.Validate())

	c.DBDriver = "sqlite"
	assert.Error(t, c.Validate())
}

func TestSetAndGet(t *testing.T) {
	Set(AppConfig{AppPort: "1234", JWTSecret: "k"})
	assert.Equal(t, "1234", Get().AppPort)
}

func TestEnvIntOverrides(t *testing.T) {
	path := writeConfig(t, `{"database": {"MaxRetries": 4}}`)
	t.Setenv("DB_MAX_RETRIES", "abc")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "")
	t.Setenv("DB_MAX_IDLE_CONNS", "2")
	t.Setenv("DB_MAX_OPEN_CONNS", " 8 ")
	t.Setenv("LOG_MAX_SIZE_MB", "50")
	t.Setenv("LOG_MAX_BACKUPS", "1")
	t.Setenv("LOG_MAX_AGE_DAYS", "oops")

	c, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, 4, c.DBMaxRetries, "malformed value keeps the configured one")
	assert.Equal(t, 60, c.RateLimitPerMinute)
	assert.Equal(t, 2, c.DBMaxIdleConns)
	assert.Equal(t, 8, c.DBMaxOpenConns)
	assert.Equal(t, 50, c.LogMaxSizeMB)
	assert.Equal(t, 1, c.LogMaxBackups)
	assert.Equal(t, 7, c.LogMaxAgeDays)
}
