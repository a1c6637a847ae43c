package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
port: "7070"
logLevel: debug
apiBaseURL: https://api.example.com
tokenFile: /tmp/tokobuku-token
pageSize: 25
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "https://api.example.com", cfg.APIBaseURL)
	assert.Equal(t, "/tmp/tokobuku-token", cfg.TokenFile)
	assert.Equal(t, 25, cfg.PageSize)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
port: "7070"
apiBaseURL: https://file.example.com
tokenFile: /tmp/tokobuku-token
`)
	t.Setenv("TOKOBUKU_API_BASE_URL", "https://env.example.com")
	t.Setenv("TOKOBUKU_PORT", "9090")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://env.example.com", cfg.APIBaseURL)
	assert.Equal(t, "9090", cfg.Port)
}

func TestDefaults(t *testing.T) {
	path := writeConfig(t, `
port: "7070"
apiBaseURL: https://api.example.com
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, defaultPageSize, cfg.PageSize)
	assert.NotEmpty(t, cfg.TokenFile, "token file should default under the home dir")
}

func TestMissingRequiredFields(t *testing.T) {
	path := writeConfig(t, `
logLevel: info
`)

	_, err := Load(path)
	require.Error(t, err)
}

func TestMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
