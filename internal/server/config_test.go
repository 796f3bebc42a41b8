package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.hcl"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "localhost:8080", cfg.Address())
	assert.Equal(t, "history.jsonl", cfg.Ledger.Path)
	assert.Equal(t, 250*time.Millisecond, cfg.OracleTimeout())
	assert.Equal(t, 10*time.Minute, cfg.AdaptationInterval())
	assert.True(t, cfg.AdaptOnMatchStart())
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cardcricket.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`
server {
  port      = 9090
  log_level = "debug"
}

catalog {
  path       = "cards.yaml"
  cache_size = 32
}

oracle {
  url        = "http://localhost:5000"
  timeout_ms = 100
}

adaptation {
  interval       = "30s"
  on_match_start = false
}
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "localhost:9090", cfg.Address())
	assert.Equal(t, "cards.yaml", cfg.Catalog.Path)
	assert.Equal(t, 32, cfg.Catalog.CacheSize)
	assert.Equal(t, "http://localhost:5000", cfg.Oracle.URL)
	assert.Equal(t, 100*time.Millisecond, cfg.OracleTimeout())
	assert.Equal(t, 5, cfg.Oracle.Burst)
	assert.Equal(t, 30*time.Second, cfg.AdaptationInterval())
	assert.False(t, cfg.AdaptOnMatchStart())
	assert.Equal(t, DefaultRetainCompleted, cfg.RetainCompleted())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port", func(c *Config) { c.Server.Port = 70000 }},
		{"log level", func(c *Config) { c.Server.LogLevel = "loud" }},
		{"interval", func(c *Config) { c.Adaptation.Interval = "often" }},
		{"cache", func(c *Config) { c.Catalog.CacheSize = -1 }},
		{"burst", func(c *Config) { c.Oracle.Burst = -2 }},
		{"retention", func(c *Config) { c.Server.RetainCompleted = "0s" }},
		{"retention format", func(c *Config) { c.Server.RetainCompleted = "a while" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadConfigRejectsBadHCL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.hcl")
	require.NoError(t, os.WriteFile(path, []byte("server {\n  port = \n"), 0o644))
	_, err := LoadConfig(path)
	require.Error(t, err)
}

func TestSampleConfigLoads(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join("..", "..", "configs", "cardcricket.hcl"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "configs/cards.yaml", cfg.Catalog.Path)
	assert.Equal(t, "history.csv", cfg.Ledger.LegacyCSV)
	assert.Empty(t, cfg.Oracle.URL)
	assert.Equal(t, 5*time.Minute, cfg.RetainCompleted())
}
