package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")

	cfg := Load()

	assert.Equal(t, StorageDriverMemory, cfg.Database.Driver)
	assert.Equal(t, 5, cfg.Support.RagTopK)
	assert.Equal(t, 0.12, cfg.Support.RagMinScore)
	assert.Equal(t, 6, cfg.Support.MaxTurnsEscalate)
	assert.Equal(t, UnknownSessionCreate, cfg.Support.UnknownSessionPolicy)
	assert.Equal(t, 30*time.Second, cfg.Ai.CapabilityTimeout)
	require.NoError(t, cfg.Validate())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("RAG_MIN_SCORE", "0.3")
	t.Setenv("CAPABILITY_TIMEOUT", "5s")
	t.Setenv("UNKNOWN_SESSION_POLICY", "REJECT")
	t.Setenv("RAG_TOP_K", "not-a-number")

	cfg := Load()

	assert.Equal(t, 0.3, cfg.Support.RagMinScore)
	assert.Equal(t, 5*time.Second, cfg.Ai.CapabilityTimeout)
	assert.Equal(t, UnknownSessionReject, cfg.Support.UnknownSessionPolicy)
	assert.Equal(t, 5, cfg.Support.RagTopK)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{name: "postgres without dsn", mutate: func(c *Config) { c.Database.Driver = StorageDriverPostgres; c.Database.Connection = "" }},
		{name: "unknown backend", mutate: func(c *Config) { c.Support.RagBackend = "bm25" }},
		{name: "min score out of range", mutate: func(c *Config) { c.Support.RagMinScore = 1.5 }},
		{name: "unknown session policy", mutate: func(c *Config) { c.Support.UnknownSessionPolicy = "ignore" }},
		{name: "redis lock without url", mutate: func(c *Config) { c.Support.SessionLockDriver = LockDriverRedis; c.App.RedisURL = "" }},
		{name: "zero max turns", mutate: func(c *Config) { c.Support.MaxTurnsEscalate = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("STORAGE_DRIVER", "memory")
			cfg := Load()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrConfiguration)
		})
	}
}
