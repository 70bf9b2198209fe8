package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_RequiereJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_ValoresPorDefectoYEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DB_AUTO_MIGRATE", "false")
	t.Setenv("REDIS_TTL_SECONDS", "60")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, "0.0.0.0:9090", cfg.HTTP.Addr())
	assert.False(t, cfg.DB.AutoMigrate)
	assert.Equal(t, time.Minute, cfg.Redis.TTL)
	assert.Equal(t, "VND", cfg.App.Currency)
	assert.Equal(t, int64(10*1024*1024), cfg.Storage.MaxUploadBytes())
}

func TestDBConfig_ConnectionString(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss:word", DBName: "bo", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%3Aword@db:5432/bo?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://x@y/z"
	assert.Equal(t, "postgres://x@y/z", c.ConnectionString())
}

func TestAppConfig_LocationInvalidaUsaUTC(t *testing.T) {
	assert.Equal(t, time.UTC, AppConfig{Timezone: "No/Existe"}.Location())
}
