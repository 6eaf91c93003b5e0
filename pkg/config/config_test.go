package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Server struct {
		Port int `mapstructure:"port"`
	} `mapstructure:"server"`
	Gateway struct {
		Provider string `mapstructure:"provider"`
	} `mapstructure:"gateway"`
}

func TestLoadFileWithEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bibpay.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 8080\ngateway:\n  provider: pagarme\n"), 0o600))

	t.Setenv("CONFIG_PATH", path)
	t.Setenv("BIBPAY_SERVER_PORT", "9090")

	cfg, err := Load("bibpay", nil)
	require.NoError(t, err)

	var out sample
	require.NoError(t, cfg.Unmarshal(&out))
	assert.Equal(t, 9090, out.Server.Port)
	assert.Equal(t, "pagarme", out.Gateway.Provider)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "nope"))

	_, err := Load("bibpay", nil)
	assert.Error(t, err)
}

func TestLoadDefaultsOnly(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("BIBPAY_GATEWAY_PROVIDER", "stripe")

	cfg, err := Load("bibpay", map[string]interface{}{
		"server.port":      8080,
		"gateway.provider": "pagarme",
	})
	require.NoError(t, err)

	var out sample
	require.NoError(t, cfg.Unmarshal(&out))
	assert.Equal(t, 8080, out.Server.Port)
	assert.Equal(t, "stripe", out.Gateway.Provider)
}
