package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdirTemp runs the test from an empty directory so no stray config.yaml is picked up
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, time.Second, cfg.Fetch.RequestDelay)
	assert.Equal(t, 3, cfg.Fetch.MaxRetries)
	assert.False(t, cfg.Fetch.Headless)
	assert.Equal(t, "https://api.perfit.ai/v1", cfg.API.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.Equal(t, "memory", cfg.Storage.Sync)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, []string{"chrome-extension://*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 500*time.Millisecond, cfg.Watch.Interval)
}

func TestLoad_Environment(t *testing.T) {
	chdirTemp(t)
	t.Setenv("PERFIT_API_BASE_URL", "http://localhost:9000/v1")
	t.Setenv("PERFIT_SERVER_PORT", "9090")
	t.Setenv("PERFIT_FETCH_HEADLESS", "true")
	t.Setenv("PERFIT_LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9000/v1", cfg.API.BaseURL)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.True(t, cfg.Fetch.Headless)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_File(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "config"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config", "config.yaml"), []byte(`
fetch:
  request_delay: 250ms
  max_retries: 5
storage:
  local_path: data/perfit.db
  sync: redis
  redis_addr: localhost:6379
sites:
  file: sites.yaml
`), 0644))

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 250*time.Millisecond, cfg.Fetch.RequestDelay)
	assert.Equal(t, 5, cfg.Fetch.MaxRetries)
	assert.Equal(t, "data/perfit.db", cfg.Storage.LocalPath)
	assert.Equal(t, "redis", cfg.Storage.Sync)
	assert.Equal(t, "localhost:6379", cfg.Storage.RedisAddr)
	assert.Equal(t, "sites.yaml", cfg.Sites.File)

	options := cfg.FetchOptions()
	assert.Equal(t, 250*time.Millisecond, options.RequestDelay)
	assert.Equal(t, 5, options.MaxRetries)
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	dir := chdirTemp(t)

	_, err := Load(filepath.Join(dir, "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		rule string
	}{
		{"unknown sync backend", map[string]string{"PERFIT_STORAGE_SYNC": "s3"}, "oneof"},
		{"redis without address", map[string]string{"PERFIT_STORAGE_SYNC": "redis"}, "required_if"},
		{"bad log level", map[string]string{"PERFIT_LOG_LEVEL": "loud"}, "oneof"},
		{"bad api url", map[string]string{"PERFIT_API_BASE_URL": "not a url"}, "url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chdirTemp(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load("")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.rule)
		})
	}
}
