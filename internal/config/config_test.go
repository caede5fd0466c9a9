package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "server:\n  port: \"9090\"\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "bolt", cfg.Store.Driver)
	assert.Equal(t, 2, cfg.Assistant.MaxRetries)
	assert.Equal(t, 60*time.Second, cfg.Assistant.Timeout())
	assert.Equal(t, 600*time.Millisecond, cfg.Assistant.RetryDelay())
	assert.Equal(t, time.Minute, cfg.Assistant.HealthInterval())
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, "assistant:\n  base_url: \"http://file\"\n")
	t.Setenv("UIGUIDE_ASSISTANT_BASE_URL", "http://env")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://env", cfg.Assistant.BaseURL)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
