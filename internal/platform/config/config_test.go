package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 5001, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "http://api.qrserver.com/v1/create-qr-code/", cfg.Renderer.Endpoint)
	assert.Equal(t, 30*time.Second, cfg.Renderer.Timeout)
	assert.Equal(t, 10, cfg.Renderer.Margin)
	assert.False(t, cfg.Storage.Restricted)
	assert.Equal(t, "static/qr_codes", cfg.Storage.DefaultDir())
	assert.Equal(t, []string{"static/qr_codes", "downloads"}, cfg.Storage.AllowedDirs())
	assert.False(t, cfg.Cache.Enabled)
	assert.False(t, cfg.History.Enabled)
	assert.Equal(t, 60, cfg.RateLimit.GeneratePerMinute)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Zero(t, cfg.Storage.PreviewTTL)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
server:
  port: 8080
renderer:
  timeout: 5s
cache:
  enabled: true
  addr: redis:6379
storage:
  download_dirs:
    - out
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	assert.Equal(t, 5*time.Second, cfg.Renderer.Timeout)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, "redis:6379", cfg.Cache.Addr)
	assert.Equal(t, []string{"out"}, cfg.Storage.DownloadDirs)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("VERCEL", "1")
	t.Setenv("SECRET_KEY", "from-env")
	t.Setenv("SERVER_PORT", "9000")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.True(t, cfg.Storage.Restricted)
	assert.Equal(t, "from-env", cfg.Server.SecretKey)
	assert.Equal(t, 9000, cfg.Server.Port)
}

func TestLoad_PreviewTTL(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want time.Duration
	}{
		{name: "Normal Mode Keeps Files", env: map[string]string{}, want: 0},
		{name: "Restricted Mode Default", env: map[string]string{"VERCEL": "1"}, want: DefaultRestrictedPreviewTTL},
		{name: "Restricted Mode Explicit", env: map[string]string{"VERCEL": "1", "STORAGE_PREVIEW_TTL": "2h"}, want: 2 * time.Hour},
		{name: "Normal Mode Explicit", env: map[string]string{"STORAGE_PREVIEW_TTL": "30m"}, want: 30 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Storage.PreviewTTL)
		})
	}
}

func TestLoad_ConfigPathEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alt.yaml")
	require.NoError(t, os.WriteFile(path, []byte("history:\n  enabled: true\n"), 0644))
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.True(t, cfg.History.Enabled)
}

func TestLoad_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestStorageConfig(t *testing.T) {
	normal := StorageConfig{
		PreviewDir:   "static/qr_codes",
		DownloadDirs: []string{"static/qr_codes", "downloads"},
		TempRoot:     "/tmp",
	}
	restricted := normal
	restricted.Restricted = true
	at := time.UnixMilli(1700000000123)

	t.Run("Normal", func(t *testing.T) {
		assert.Equal(t, "static/qr_codes", normal.DefaultDir())
		assert.Equal(t, "/static/qr_codes/a.png?t=1700000000123", normal.PreviewURL("a.png", at))
		assert.Equal(t, []string{"static/qr_codes", "downloads"}, normal.ListDirs())
		assert.Equal(t, []string{"static/qr_codes", "downloads"}, normal.AllowedDirs())

		dir, err := normal.ServerDir("./downloads")
		require.NoError(t, err)
		assert.True(t, filepath.IsAbs(dir))
		assert.Equal(t, "downloads", filepath.Base(dir))
	})

	t.Run("Restricted", func(t *testing.T) {
		assert.Equal(t, "/tmp/qr_codes", restricted.DefaultDir())
		assert.Equal(t, "/tmp/qr_codes/a.png?t=1700000000123", restricted.PreviewURL("a.png", at))
		assert.Empty(t, restricted.ListDirs())
		assert.Equal(t, []string{"/tmp"}, restricted.AllowedDirs())

		dir, err := restricted.ServerDir("/home/user/anything")
		require.NoError(t, err)
		assert.Equal(t, "/tmp", dir)
	})

	assert.Equal(t, "/tmp/qr_codes", normal.TempPreviewDir())
}
