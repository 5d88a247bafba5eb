// Package config loads triage-mcp configuration from TOML files,
// environment variables, and CLI flags.
package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/bobmcallan/triage-mcp/internal/common"
)

// Config represents the application configuration.
type Config struct {
	Server  ServerConfig         `toml:"server"`
	API     APIConfig            `toml:"api"`
	Logging common.LoggingConfig `toml:"logging"`
}

// ServerConfig contains MCP server settings.
type ServerConfig struct {
	Name string `toml:"name"`
	Port string `toml:"port"`
}

// APIConfig contains upstream Issue Triage API settings.
// BaseURL and BearerToken are mandatory; the environment variables
// API_BASE_URL and API_BEARER_TOKEN override values from file.
type APIConfig struct {
	BaseURL     string `toml:"base_url"`
	BearerToken string `toml:"bearer_token"`
	Timeout     string `toml:"timeout"`
}

// GetTimeout parses and returns the request timeout duration
func (c *APIConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Name: "Triage-MCP",
			Port: "4250",
		},
		API: APIConfig{
			Timeout: "30s",
		},
		Logging: common.LoggingConfig{
			Level:      "info",
			Outputs:    []string{"console", "file"},
			FilePath:   "logs/triage-mcp.log",
			MaxSizeMB:  100,
			MaxBackups: 3,
		},
	}
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
// Later files override earlier files; missing files are skipped.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config.
// API_BASE_URL and API_BEARER_TOKEN are unprefixed; everything else
// uses the TRIAGE_ prefix.
func applyEnvOverrides(config *Config) {
	if base := os.Getenv("API_BASE_URL"); base != "" {
		config.API.BaseURL = base
	}
	if token := os.Getenv("API_BEARER_TOKEN"); token != "" {
		config.API.BearerToken = token
	}
	if timeout := os.Getenv("TRIAGE_API_TIMEOUT"); timeout != "" {
		config.API.Timeout = timeout
	}
	if port := os.Getenv("TRIAGE_MCP_PORT"); port != "" {
		config.Server.Port = port
	}
	if level := os.Getenv("TRIAGE_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if path := os.Getenv("TRIAGE_LOG_FILE"); path != "" {
		config.Logging.FilePath = path
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config.
func ApplyFlagOverrides(config *Config, port string) {
	if port != "" {
		config.Server.Port = port
	}
}

// Validate checks mandatory configuration and returns a list of
// human-readable issues. An empty list means the config is usable.
func (c *Config) Validate() []string {
	var issues []string

	if c.API.BaseURL == "" {
		issues = append(issues, "api.base_url is required (set API_BASE_URL or [api] base_url)")
	} else if u, err := url.Parse(c.API.BaseURL); err != nil || !u.IsAbs() || u.Host == "" {
		issues = append(issues, fmt.Sprintf("api.base_url %q must be an absolute URL (e.g. https://triage.example.com)", c.API.BaseURL))
	}

	if c.API.BearerToken == "" {
		issues = append(issues, "api.bearer_token is required (set API_BEARER_TOKEN or [api] bearer_token)")
	}

	if c.API.Timeout != "" {
		if _, err := time.ParseDuration(c.API.Timeout); err != nil {
			issues = append(issues, fmt.Sprintf("api.timeout %q is not a valid duration (e.g. 30s, 2m)", c.API.Timeout))
		}
	}

	return issues
}
