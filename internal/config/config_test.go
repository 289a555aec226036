package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := load(env(nil))
	require.NoError(t, err)
	assert.Equal(t, DefaultLibrary(), cfg)
	assert.Equal(t, 5*time.Millisecond, cfg.RetryInterval)
	assert.Zero(t, cfg.ReadyTimeout)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rdpcore.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: debug\nretry_interval: 10ms\nready_timeout: 2s\n"), 0o600))

	cfg, err := load(env(map[string]string{EnvConfigFile: path}))
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 10*time.Millisecond, cfg.RetryInterval)
	assert.Equal(t, 2*time.Second, cfg.ReadyTimeout)

	cfg, err = load(env(map[string]string{
		EnvConfigFile:   path,
		EnvLogLevel:     "error",
		EnvReadyTimeout: "500ms",
	}))
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.LogLevel)
	assert.Equal(t, 10*time.Millisecond, cfg.RetryInterval)
	assert.Equal(t, 500*time.Millisecond, cfg.ReadyTimeout)
}

func TestLoadErrors(t *testing.T) {
	_, err := load(env(map[string]string{EnvConfigFile: filepath.Join(t.TempDir(), "missing.yaml")}))
	assert.Error(t, err)

	_, err = load(env(map[string]string{EnvRetryInterval: "soon"}))
	assert.ErrorContains(t, err, EnvRetryInterval)

	_, err = load(env(map[string]string{EnvRetryInterval: "0s"}))
	assert.Error(t, err)

	_, err = load(env(map[string]string{EnvReadyTimeout: "-1s"}))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: [\n"), 0o600))
	_, err = load(env(map[string]string{EnvConfigFile: path}))
	assert.Error(t, err)
}
