package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "segredo")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_NAME", "")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, "/api/v1", cfg.BasePath)
	assert.Equal(t, BackendMemory, cfg.StorageBackend)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiration)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Contains(t, cfg.DatabaseURL, "/warung_digital?sslmode=disable")
	assert.False(t, cfg.UsesRedis())
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "segredo")
	t.Setenv("STORAGE_BACKEND", "Postgres")
	t.Setenv("EVENTS_RELAY", "redis")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("DATABASE_URL", "postgres://x@y/z")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, BackendPostgres, cfg.StorageBackend)
	assert.Equal(t, "postgres://x@y/z", cfg.DatabaseURL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.True(t, cfg.UsesRedis())
}

func TestFromEnv_Invalid(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "segredo")
	t.Setenv("STORAGE_BACKEND", "localstorage")
	_, err := FromEnv()
	assert.Error(t, err)

	t.Setenv("STORAGE_BACKEND", "memory")
	t.Setenv("JWT_SECRET_KEY", "")
	_, err = FromEnv()
	assert.Error(t, err)
}

func TestLocation(t *testing.T) {
	cfg := &Config{}
	assert.Equal(t, time.Local, cfg.Location())

	cfg.Timezone = "UTC"
	assert.Equal(t, time.UTC, cfg.Location())
}

func TestValidate_RejectsUnknownTimezone(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "segredo")
	t.Setenv("APP_TIMEZONE", "Nowhere/Atlantis")

	_, err := FromEnv()
	assert.ErrorContains(t, err, "APP_TIMEZONE")
}
