package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "datalayer", cfg.AppName)
	assert.Equal(t, "0.0.0.0:8080", cfg.Address())
	assert.Equal(t, "logs", cfg.Redis.KeyPrefix)
	assert.Equal(t, "servicepulse", cfg.Elastic.IndexPrefix)
	assert.True(t, cfg.Outbox.Enabled)
	assert.Equal(t, 5*time.Second, cfg.Context.RequestTimeout)
	assert.Equal(t, 3*time.Second, cfg.Context.HealthCheckTimeout)
	assert.Contains(t, cfg.Database.URL, "postgres://")
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DATABASE_URL", "postgres://app:secret@db:5432/prod")
	t.Setenv("ELASTIC_ADDRESSES", "http://es1:9200, http://es2:9200")
	t.Setenv("OUTBOX_ENABLED", "false")
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "10")
	t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", "30s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9090", cfg.Address())
	assert.Equal(t, "postgres://app:secret@db:5432/prod", cfg.Database.URL)
	assert.Equal(t, []string{"http://es1:9200", "http://es2:9200"}, cfg.Elastic.Addresses)
	assert.False(t, cfg.Outbox.Enabled)

	// bare integers are read as seconds, duration strings verbatim
	assert.Equal(t, 10*time.Second, cfg.Context.RequestTimeout)
	assert.Equal(t, 30*time.Second, cfg.Context.ShutdownTimeout)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("DB_MAX_OPEN_CONNS", "lots")
	t.Setenv("OUTBOX_ENABLED", "sure")
	t.Setenv("SERVER_READ_TIMEOUT", "soon")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.Outbox.Enabled)
	assert.Equal(t, 10*time.Second, cfg.HTTP.ReadTimeout)
}
