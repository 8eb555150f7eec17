// Package config handles loading, parsing, and validating application configuration.
// It defines the structure for configuration settings, provides default values,
// loads settings from files (YAML), and applies overrides from environment variables.
// file: internal/config/config.go
package config

import (
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/ouramcp/internal/logging"
	"gopkg.in/yaml.v3"
)

// ServerConfig contains settings specific to the MCP server component.
type ServerConfig struct {
	// Name is the human-readable name for the server, potentially displayed in logs or client UIs.
	Name string `yaml:"name"`
	// LogLevel controls the minimum severity of emitted log entries (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`
}

// OuraConfig contains settings required for talking to the Oura Ring v2 API.
type OuraConfig struct {
	// AccessToken is the personal access token used as the bearer credential
	// on every upstream request. Required.
	AccessToken string `yaml:"access_token"`
	// BaseURL overrides the upstream API base URL. Empty means the production API.
	BaseURL string `yaml:"base_url,omitempty"`
}

// AuthConfig contains settings related to credential storage.
type AuthConfig struct {
	// TokenPath specifies the file path where the access token is stored when
	// secure OS storage (keychain/keyring) is unavailable.
	// Supports '~' expansion for home directory.
	TokenPath string `yaml:"token_path"`
}

// Config is the root configuration structure for the application.
type Config struct {
	// Server holds general server settings.
	Server ServerConfig `yaml:"server"`
	// Oura holds credentials and endpoint settings for the Oura API.
	Oura OuraConfig `yaml:"oura"`
	// Auth holds credential storage settings.
	Auth AuthConfig `yaml:"auth"`
}

// DefaultConfig returns a configuration populated with default values.
// It reads the initial access token from the OURA_ACCESS_TOKEN environment
// variable and sets a default token path within the user's config directory.
func DefaultConfig() *Config {
	homeDir, err := os.UserHomeDir()
	tokenPath := ""
	if err == nil {
		tokenPath = filepath.Join(homeDir, ".config", "ouramcp", "oura_token.json")
	} else {
		tokenPath = "oura_token.json" //nolint:gosec // G101: Fallback path, not a secret itself.
	}

	cfg := &Config{
		Server: ServerConfig{
			Name:     "Oura MCP",
			LogLevel: "info",
		},
		Oura: OuraConfig{
			AccessToken: os.Getenv("OURA_ACCESS_TOKEN"),
		},
		Auth: AuthConfig{
			TokenPath: tokenPath,
		},
	}
	applyEnvironmentOverrides(cfg, logging.GetLogger("config_default"))
	return cfg
}

// LoadFromFile loads configuration from the specified YAML file path.
// It starts with default values, merges the values from the YAML file,
// and finally applies any environment variable overrides.
// Supports '~' expansion in the file path.
func LoadFromFile(path string) (*Config, error) {
	if len(path) > 0 && path[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, errors.Wrap(err, "failed to get home directory to expand path")
		}
		path = filepath.Join(homeDir, path[1:])
	}

	// #nosec G304 -- Path comes from command-line flag or default, considered trusted input.
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config file: %s", path)
	}

	config := DefaultConfig()

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, errors.Wrapf(err, "failed to parse config file YAML: %s", path)
	}

	applyEnvironmentOverrides(config, logging.GetLogger("config_load"))
	return config, nil
}

// Validate checks that the configuration is usable. A missing access token is
// fatal: the server must refuse to start rather than fail on the first call.
func (c *Config) Validate() error {
	if c.Oura.AccessToken == "" {
		return errors.New("OURA_ACCESS_TOKEN is not set (checked environment, config file, and token storage)")
	}
	return nil
}

// applyEnvironmentOverrides applies configuration overrides from environment variables.
// Environment variables take precedence over values set in configuration files or defaults.
func applyEnvironmentOverrides(config *Config, logger logging.Logger) {
	tokenSource := "default"
	if config.Oura.AccessToken != "" {
		tokenSource = "config file"
	}

	if tokenEnv := os.Getenv("OURA_ACCESS_TOKEN"); tokenEnv != "" {
		config.Oura.AccessToken = tokenEnv
		tokenSource = "environment variable"
	}

	logger.Debug("Oura access token source determined.", "source", tokenSource)
	if config.Oura.AccessToken == "" {
		logger.Warn("Required OURA_ACCESS_TOKEN is missing (checked environment and config file).")
	}

	if baseURL := os.Getenv("OURA_BASE_URL"); baseURL != "" {
		logger.Debug("Overriding Oura base URL from environment.", "envVar", "OURA_BASE_URL", "value", baseURL)
		config.Oura.BaseURL = baseURL
	}

	if serverName := os.Getenv("SERVER_NAME"); serverName != "" {
		logger.Debug("Overriding server name from environment.", "envVar", "SERVER_NAME", "value", serverName)
		config.Server.Name = serverName
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		logger.Debug("Overriding log level from environment.", "envVar", "LOG_LEVEL", "value", logLevel)
		config.Server.LogLevel = logLevel
	}

	if tokenPath := os.Getenv("OURAMCP_TOKEN_PATH"); tokenPath != "" {
		logger.Debug("Overriding auth token path from environment.", "envVar", "OURAMCP_TOKEN_PATH", "value", tokenPath)
		if len(tokenPath) > 0 && tokenPath[0] == '~' {
			homeDir, err := os.UserHomeDir()
			if err == nil {
				tokenPath = filepath.Join(homeDir, tokenPath[1:])
			} else {
				logger.Warn("Could not expand '~' in OURAMCP_TOKEN_PATH env var.", "error", err)
			}
		}
		config.Auth.TokenPath = tokenPath
	}
}
