package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.Equal(t, 140, cfg.Cache.Collection.Capacity)
	assert.Equal(t, time.Minute, cfg.Cache.Collection.TTL())
	assert.Equal(t, 300, cfg.Cache.Entity.Capacity)
	assert.Equal(t, 2*time.Minute, cfg.Cache.Entity.TTL())
	assert.Equal(t, 80, cfg.Cache.Stats.Capacity)
	assert.Equal(t, 30*time.Second, cfg.Cache.Stats.TTL())
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL())
	assert.True(t, cfg.Seed.DemoData)
	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("CACHE_BACKEND", "redis")
	t.Setenv("CACHE_STATS_TTL_SECONDS", "5")
	t.Setenv("AUTH_TOKEN_TTL_HOURS", "2")
	t.Setenv("HTTP_REQUEST_TIMEOUT_SECONDS", "0")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "redis", cfg.Cache.Backend)
	assert.Equal(t, 5*time.Second, cfg.Cache.Stats.TTL())
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL())
	assert.False(t, cfg.Seed.DemoData)
	assert.Zero(t, cfg.App.RequestTimeout())
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "unknown cache backend", key: "CACHE_BACKEND", val: "memcached"},
		{name: "short jwt secret", key: "AUTH_JWT_SECRET", val: "short"},
		{name: "bad redis db", key: "REDIS_DB", val: "x"},
		{name: "zero region capacity", key: "CACHE_ENTITY_CAPACITY", val: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
