package configs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.HTTP.Host)
	assert.Equal(t, uint16(8080), cfg.HTTP.Port)
	assert.Equal(t, []string{"*"}, cfg.HTTP.AllowedOrigins)
	assert.Equal(t, 20, cfg.RateLimiter.RequestsPerTimeFrame)
	assert.Equal(t, 5*time.Second, cfg.RateLimiter.TimeFrame)
	assert.Equal(t, "billboard", cfg.Realtime.DefaultRoom)
	assert.Equal(t, 64, cfg.Realtime.SendBuffer)
	assert.Equal(t, 30*time.Second, cfg.Realtime.StatsInterval)
	assert.Equal(t, uint(500), cfg.SubmissionStore.Capacity)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
http:
  port: 9090
realtime:
  default_room: lobby
  send_buffer: 16
submission_store:
  capacity: 42
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, uint16(9090), cfg.HTTP.Port)
	assert.Equal(t, "lobby", cfg.Realtime.DefaultRoom)
	assert.Equal(t, 16, cfg.Realtime.SendBuffer)
	assert.Equal(t, uint(42), cfg.SubmissionStore.Capacity)

	// Untouched keys still get defaults.
	assert.Equal(t, "0.0.0.0", cfg.HTTP.Host)
	assert.Equal(t, 20, cfg.RateLimiter.RequestsPerTimeFrame)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "7070")
	t.Setenv("REALTIME_DEFAULT_ROOM", "pop-up")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, uint16(7070), cfg.HTTP.Port)
	assert.Equal(t, "pop-up", cfg.Realtime.DefaultRoom)
}

func TestLoad_MissingFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
