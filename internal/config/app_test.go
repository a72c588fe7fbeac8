package config

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewAppConfig_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DOCCHAT_RUNTIME_PATH", dir)

	cfg := NewAppConfig(context.Background())

	assert.Equal(t, dir, cfg.GetRuntimePath())
	assert.Equal(t, "http://localhost:8000", cfg.GetServerURL())
	assert.Equal(t, 2*time.Second, cfg.GetPollInterval())
	assert.Equal(t, 900, cfg.GetPollMaxAttempts())
	assert.Equal(t, "cli-local", cfg.SessionID)
	assert.Equal(t, filepath.Join(dir, "session.db"), cfg.GetDatabasePath())
	assert.Equal(t, filepath.Join(dir, "docchat.log"), cfg.GetLogPath())
	assert.False(t, cfg.IsTelegramSelected())
}

func TestNewAppConfig_Overrides(t *testing.T) {
	t.Setenv("DOCCHAT_RUNTIME_PATH", t.TempDir())
	t.Setenv("DOCCHAT_SERVER_URL", "http://backend:9000")
	t.Setenv("DOCCHAT_POLL_INTERVAL", "500ms")
	t.Setenv("DOCCHAT_POLL_MAX_ATTEMPTS", "0")

	cfg := NewAppConfig(context.Background())

	assert.Equal(t, "http://backend:9000", cfg.GetServerURL())
	assert.Equal(t, 500*time.Millisecond, cfg.GetPollInterval())
	assert.Zero(t, cfg.GetPollMaxAttempts())
}

func TestGetRuntimePath_Relative(t *testing.T) {
	t.Setenv("DOCCHAT_RUNTIME_PATH", "")
	assert.True(t, filepath.IsAbs(GetRuntimePath()))
	assert.Equal(t, ".docchat", filepath.Base(GetRuntimePath()))
}
