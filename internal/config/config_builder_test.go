package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_DefaultsOnly(t *testing.T) {
	dataDir := t.TempDir()

	cfg, err := newConfigBuilder().
		withFlags([]string{"-data-dir", dataDir}).
		build()
	require.NoError(t, err)

	assert.Equal(t, dataDir, cfg.App.DataDir)
	assert.Equal(t, DefaultVersion, cfg.App.Version)
	assert.Equal(t, filepath.Join(dataDir, "agent.db"), cfg.Storage.DSN)
	assert.Equal(t, DefaultListenAddress, cfg.Server.HTTPAddress)
	assert.Equal(t, DefaultRemoteBaseURL, cfg.Remote.BaseURL)
	assert.Equal(t, DefaultPollInterval, cfg.Bundle.PollInterval)
	assert.Equal(t, DefaultStreamBackoff, cfg.Bundle.StreamBackoff)
}

func TestBuild_FlagsOverrideEnv(t *testing.T) {
	t.Setenv("SERVER_ADDRESS", "127.0.0.1:9000")
	t.Setenv("REMOTE_BASE_URL", "https://env.example.com")

	cfg, err := newConfigBuilder().
		withEnv().
		withFlags([]string{"-data-dir", t.TempDir(), "-a", "127.0.0.1:9100"}).
		build()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9100", cfg.Server.HTTPAddress)
	assert.Equal(t, "https://env.example.com", cfg.Remote.BaseURL)
}

func TestBuild_JSONOverridesAll(t *testing.T) {
	dataDir := t.TempDir()
	jsonPath := filepath.Join(dataDir, "config.json")
	jsonBody := `{
		"server": {"http_address": "127.0.0.1:9300", "request_timeout": "45s"},
		"remote": {"base_url": "https://json.example.com"},
		"bundle": {"poll_interval": "15m"}
	}`
	require.NoError(t, os.WriteFile(jsonPath, []byte(jsonBody), 0o600))

	cfg, err := newConfigBuilder().
		withFlags([]string{"-data-dir", dataDir, "-a", "127.0.0.1:9200", "-c", jsonPath}).
		withJSON().
		build()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9300", cfg.Server.HTTPAddress)
	assert.Equal(t, 45*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, "https://json.example.com", cfg.Remote.BaseURL)
	assert.Equal(t, 15*time.Minute, cfg.Bundle.PollInterval)
}

func TestBuild_InvalidRemoteURL(t *testing.T) {
	_, err := newConfigBuilder().
		withFlags([]string{"-data-dir", t.TempDir(), "-remote-url", "not-a-url"}).
		build()
	assert.ErrorIs(t, err, ErrInvalidRemoteConfigs)
}

func TestBuild_MissingJSONFile(t *testing.T) {
	_, err := newConfigBuilder().
		withFlags([]string{"-data-dir", t.TempDir(), "-c", "/no/such/file.json"}).
		withJSON().
		build()
	assert.Error(t, err)
}
