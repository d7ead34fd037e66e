package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/equipbook/bookings-mcp/internal/common"
)

// Config represents the application configuration.
type Config struct {
	Server  ServerConfig         `toml:"server"`
	API     APIConfig            `toml:"api"`
	Catalog CatalogConfig        `toml:"catalog"`
	Logging common.LoggingConfig `toml:"logging"`
}

// ServerConfig holds MCP server settings.
type ServerConfig struct {
	Name string `toml:"name"`
	Port string `toml:"port"`
}

// APIConfig holds settings for the upstream bookings API.
type APIConfig struct {
	URL               string            `toml:"url"`
	Timeout           string            `toml:"timeout"`
	BearerToken       string            `toml:"bearer_token"`
	Headers           map[string]string `toml:"headers"`
	MaxResponseBytes  int64             `toml:"max_response_bytes"`
	MaxErrorBodyBytes int64             `toml:"max_error_body_bytes"`
}

// GetTimeout parses and returns the per-call timeout duration
func (c *APIConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return 10 * time.Second
	}
	return d
}

// CatalogConfig holds settings for the endpoint catalog source.
// Source can be "embedded" (default), "file", or "url".
type CatalogConfig struct {
	Source  string `toml:"source"`
	Path    string `toml:"path"`
	URL     string `toml:"url"`
	Retries int    `toml:"retries"`
}

// LoadFromFile loads configuration with priority: defaults -> file -> env.
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files with priority:
// defaults -> file1 -> file2 -> ... -> env.
// Later files override earlier files. Missing files are skipped.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		err = toml.Unmarshal(data, config)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies BOOKMCP_* environment variable overrides to config.
func applyEnvOverrides(config *Config) {
	if url := os.Getenv("BOOKMCP_API_URL"); url != "" {
		config.API.URL = url
	}
	if token := os.Getenv("BOOKMCP_API_TOKEN"); token != "" {
		config.API.BearerToken = token
	}
	if timeout := os.Getenv("BOOKMCP_API_TIMEOUT"); timeout != "" {
		if _, err := time.ParseDuration(timeout); err == nil {
			config.API.Timeout = timeout
		}
	}
	if port := os.Getenv("BOOKMCP_PORT"); port != "" {
		if _, err := strconv.Atoi(port); err == nil {
			config.Server.Port = port
		}
	}
	if source := os.Getenv("BOOKMCP_CATALOG_SOURCE"); source != "" {
		config.Catalog.Source = source
	}
	if path := os.Getenv("BOOKMCP_CATALOG_PATH"); path != "" {
		config.Catalog.Path = path
	}
	if url := os.Getenv("BOOKMCP_CATALOG_URL"); url != "" {
		config.Catalog.URL = url
	}
	if level := os.Getenv("BOOKMCP_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config.
func ApplyFlagOverrides(config *Config, port string) {
	if port != "" {
		config.Server.Port = port
	}
}
