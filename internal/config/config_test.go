package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, DefaultServerName, cfg.Server.Name)
	assert.Equal(t, DefaultServerVersion, cfg.Server.Version)
	assert.Equal(t, DefaultPort, cfg.Server.Port)
	assert.Equal(t, DefaultTimeoutSeconds, cfg.Teamwork.RequestTimeoutSeconds)
	assert.Equal(t, DefaultLogLevel, cfg.Logging.Level)
}

func TestLoadConfigWithPathMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfigWithPath(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)

	assert.Equal(t, DefaultServerName, cfg.Server.Name)
	assert.Equal(t, ":3005", cfg.ListenAddr())
}

func TestGatewayEnvFallback(t *testing.T) {
	t.Setenv("TEAMWORK_DOMAIN", "acme.teamwork.com")
	t.Setenv("TEAMWORK_ACCESS_TOKEN", "env-token")

	cfg, err := LoadConfigWithPath(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)

	assert.Equal(t, "acme.teamwork.com", cfg.Teamwork.Domain)
	assert.Equal(t, "env-token", cfg.Teamwork.AccessToken)
}

func TestGatewayEnvDoesNotOverrideFileValues(t *testing.T) {
	t.Setenv("TEAMWORK_DOMAIN", "env.teamwork.com")

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"server": {"name": "teamwork-mcp", "port": 4000},
		"teamwork": {"domain": "file.teamwork.com", "request_timeout_seconds": 15},
		"logging": {"level": "debug"}
	}`), 0644))

	cfg, err := LoadConfigWithPath(path)
	require.NoError(t, err)

	assert.Equal(t, "file.teamwork.com", cfg.Teamwork.Domain)
	assert.Equal(t, ":4000", cfg.ListenAddr())
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestRequestTimeoutGuardsZero(t *testing.T) {
	cfg := NewConfig()
	cfg.Teamwork.RequestTimeoutSeconds = 0

	assert.Equal(t, DefaultTimeoutSeconds, int(cfg.RequestTimeout().Seconds()))
}

func TestSaveToFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.json")

	cfg := NewConfig()
	cfg.Server.Port = 3100
	require.NoError(t, cfg.SaveToFile(path))
	assert.Equal(t, path, cfg.GetConfigPath())

	loaded, err := LoadConfigWithPath(path)
	require.NoError(t, err)
	assert.Equal(t, 3100, loaded.Server.Port)
}
