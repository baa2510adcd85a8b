package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	yaml := `
server:
  port: "9090"
  mode: release
gateway:
  base_url: "http://gateway.local/api/"
  timeout_seconds: 5
session:
  ttl_minutes: 30
storage:
  type: minio
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.Equal(t, "http://gateway.local/api", cfg.Gateway.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Gateway.Timeout)
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
	assert.Equal(t, "dashboard_session", cfg.Session.CookieName)
}

func TestLoadConfigDefaultsWithoutFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("GATEWAY_BASE_URL", "http://env-gateway:8081")
	t.Setenv("STORAGE_TYPE", "minio")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "http://env-gateway:8081", cfg.Gateway.BaseURL)
	assert.Equal(t, time.Duration(0), cfg.Gateway.Timeout)
	assert.Equal(t, "memory", cfg.Session.Store)
	assert.Equal(t, 120*time.Minute, cfg.Session.TTL)
	assert.Equal(t, 20, cfg.Redis.PoolSize)
	assert.Equal(t, 3*time.Second, cfg.Redis.Timeout)
	assert.Equal(t, 5, cfg.Storage.KeepExports)
}
