package config

import "github.com/equipbook/bookings-mcp/internal/common"

// NewDefaultConfig creates a configuration with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Name: "Bookings-MCP",
			Port: "4243",
		},
		API: APIConfig{
			URL:               "http://localhost:8000",
			Timeout:           "10s",
			MaxResponseBytes:  4 << 20,
			MaxErrorBodyBytes: 8 << 10,
		},
		Catalog: CatalogConfig{
			Source:  "embedded",
			Retries: 3,
		},
		Logging: common.LoggingConfig{
			Level:      "info",
			Outputs:    []string{"console", "file"},
			FilePath:   "logs/bookings-mcp.log",
			MaxSizeMB:  100,
			MaxBackups: 3,
		},
	}
}
