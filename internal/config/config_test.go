// file: internal/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600),
		"Failed to write test config file.")
	return path
}

func TestLoadFromFile_ValidConfig_PopulatesFields(t *testing.T) {
	t.Setenv("OURA_ACCESS_TOKEN", "")

	path := writeTestConfig(t, `
server:
  name: "Test Oura Server"
  log_level: "debug"

oura:
  access_token: "file-token"
  base_url: "http://localhost:9999/v2"

auth:
  token_path: "~/.config/test/token.json"
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err, "LoadFromFile should succeed for a valid config file.")

	assert.Equal(t, "Test Oura Server", cfg.Server.Name, "Server name should come from the file.")
	assert.Equal(t, "debug", cfg.Server.LogLevel, "Log level should come from the file.")
	assert.Equal(t, "file-token", cfg.Oura.AccessToken, "Access token should come from the file.")
	assert.Equal(t, "http://localhost:9999/v2", cfg.Oura.BaseURL, "Base URL should come from the file.")
	assert.Equal(t, "~/.config/test/token.json", cfg.Auth.TokenPath, "Token path should come from the file.")
}

func TestLoadFromFile_NonexistentFile_ReturnsError(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err, "LoadFromFile should return an error for a missing file.")
}

func TestLoadFromFile_MalformedYAML_ReturnsError(t *testing.T) {
	path := writeTestConfig(t, "server: [not a mapping")
	_, err := LoadFromFile(path)
	assert.Error(t, err, "LoadFromFile should return an error for malformed YAML.")
}

func TestLoadFromFile_EnvVarOverridesFileValue(t *testing.T) {
	t.Setenv("OURA_ACCESS_TOKEN", "env-token")
	t.Setenv("OURA_BASE_URL", "http://localhost:1234/v2")

	path := writeTestConfig(t, `
oura:
  access_token: "file-token"
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err, "LoadFromFile should succeed.")

	assert.Equal(t, "env-token", cfg.Oura.AccessToken,
		"Environment variable should override the config file token.")
	assert.Equal(t, "http://localhost:1234/v2", cfg.Oura.BaseURL,
		"Environment variable should override the base URL.")
}

func TestDefaultConfig_SetsDefaults(t *testing.T) {
	t.Setenv("OURA_ACCESS_TOKEN", "")

	cfg := DefaultConfig()

	assert.Equal(t, "Oura MCP", cfg.Server.Name, "Default server name should be set.")
	assert.Equal(t, "info", cfg.Server.LogLevel, "Default log level should be info.")
	assert.NotEmpty(t, cfg.Auth.TokenPath, "Default token path should be set.")
	assert.Empty(t, cfg.Oura.BaseURL, "Base URL should default to empty (production API).")
}

func TestValidate_MissingToken_ReturnsError(t *testing.T) {
	cfg := &Config{}
	err := cfg.Validate()
	require.Error(t, err, "Validate should fail without an access token.")
	assert.Contains(t, err.Error(), "OURA_ACCESS_TOKEN",
		"Validation error should name the missing credential.")
}

func TestValidate_TokenPresent_Succeeds(t *testing.T) {
	cfg := &Config{Oura: OuraConfig{AccessToken: "tok"}}
	assert.NoError(t, cfg.Validate(), "Validate should succeed with a token present.")
}
