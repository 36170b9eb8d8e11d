package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "127.0.0.1:8700", cfg.ListenAddr)
	assert.Equal(t, 100, cfg.WindowSize)
	assert.Equal(t, 300, cfg.CooldownSeconds)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Empty(t, cfg.ModelDir)
	assert.Empty(t, cfg.RedisAddr)
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
listen_addr: "127.0.0.1:9999"
model_dir: /opt/models
cooldown_seconds: 60
watch_model_dir: true
logging:
  level: debug
  development: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9999", cfg.ListenAddr)
	assert.Equal(t, "/opt/models", cfg.ModelDir)
	assert.Equal(t, 60, cfg.CooldownSeconds)
	assert.True(t, cfg.WatchModelDir)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// Unset fields keep their defaults.
	assert.Equal(t, 100, cfg.WindowSize)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("LISTEN_ADDR", "127.0.0.1:7001")
	t.Setenv("MODEL_DIR", "/env/models")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:7001", cfg.ListenAddr)
	assert.Equal(t, "/env/models", cfg.ModelDir)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.WindowSize = 0
	require.Error(t, cfg.Validate())

	cfg = Default()
	cfg.CooldownSeconds = -1
	require.Error(t, cfg.Validate())

	cfg = Default()
	cfg.ListenAddr = ""
	require.Error(t, cfg.Validate())

	require.NoError(t, Default().Validate())
}

func TestBuildLogger(t *testing.T) {
	logger, err := Default().Logging.BuildLogger()
	require.NoError(t, err)
	require.NotNil(t, logger)

	_, err = LoggingConfig{Level: "nope"}.BuildLogger()
	require.Error(t, err)
}
