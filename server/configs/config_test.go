package configs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadReadsTOMLAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[server]
tcpPort = 24000
logLevel = "DEBUG"

[player]
defaultAvatars = [1001, 1309]
`), 0o644))
	t.Setenv("RPG_SERVER_HTTPPORT", "24001")
	t.Setenv("RPG_AUTH_DUMMYTOKEN", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 24000, cfg.Server.TCPPort)
	assert.Equal(t, 24001, cfg.Server.HTTPPort)
	assert.Equal(t, "DEBUG", cfg.Server.LogLevel)
	assert.Equal(t, "from-env", cfg.Auth.DummyToken)
	assert.Equal(t, []uint32{1001, 1309}, cfg.Player.DefaultAvatars)
	assert.Equal(t, 256, cfg.Session.QueueSize)
}

func TestExampleConfigRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "config.toml")

	written, err := CreateExampleConfigFile(path)
	require.NoError(t, err)
	assert.True(t, written)

	written, err = CreateExampleConfigFile(path)
	require.NoError(t, err)
	assert.False(t, written)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", cfg.Redis.Address)
	assert.Equal(t, Default().Session, cfg.Session)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg.Server.TCPPort = 70000
	cfg.Auth.EnableDummyAuth = false
	cfg.Player.DefaultAvatars = nil
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tcpPort")
	assert.Contains(t, err.Error(), "redis.address")
	assert.Contains(t, err.Error(), "defaultAvatars")
}

func TestAllowedOrigins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[server]
allowedOrigins = ["https://play.example.com", "http://localhost:8080"]
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://play.example.com", "http://localhost:8080"}, cfg.Server.AllowedOrigins)
	assert.Empty(t, Default().Server.AllowedOrigins)

	cfg.Server.AllowedOrigins = []string{"*", "play.example.com"}
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"play.example.com" is not an origin`)
	assert.NotContains(t, err.Error(), `"*"`)
}
