package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "environment: test\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.Environment)
	assert.Equal(t, 8090, cfg.Server.HTTP.Port)
	assert.Equal(t, "memory", cfg.Session.Backend)
	assert.Equal(t, "/api/v1/ews/consents/upload", cfg.Upstream.UploadPath)
	assert.False(t, cfg.Upstream.Required)
	assert.True(t, cfg.Demo.Enabled)
	assert.True(t, cfg.Fixtures.SimulateLatency)
	assert.Equal(t, "/metrics", cfg.Metrics.Endpoint)
}

func TestLoadOverridesFromFile(t *testing.T) {
	path := writeConfig(t, `
environment: production
server:
  http:
    port: 9000
upstream:
  sentinel_base_url: "http://sentinel:8080"
  required: true
session:
  backend: redis
demo:
  enabled: false
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, 9000, cfg.Server.HTTP.Port)
	assert.Equal(t, "http://sentinel:8080", cfg.Upstream.SentinelBaseURL)
	assert.True(t, cfg.Upstream.Required)
	assert.Equal(t, "redis", cfg.Session.Backend)
	assert.False(t, cfg.Demo.Enabled)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestUpstreamTimeout(t *testing.T) {
	cfg := UpstreamConfig{Timeout: 10}
	assert.Equal(t, "10s", cfg.UpstreamTimeout().String())
}
