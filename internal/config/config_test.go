package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	if cfg.Server.Name != "Triage-MCP" {
		t.Errorf("expected default server name Triage-MCP, got %s", cfg.Server.Name)
	}
	if cfg.Server.Port != "4250" {
		t.Errorf("expected default port 4250, got %s", cfg.Server.Port)
	}
	if cfg.API.BaseURL != "" {
		t.Errorf("expected empty default base URL, got %s", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != "30s" {
		t.Errorf("expected default timeout 30s, got %s", cfg.API.Timeout)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected default log level info, got %s", cfg.Logging.Level)
	}
}

func TestLoadFromFiles_NoFiles(t *testing.T) {
	cfg, err := LoadFromFiles()
	if err != nil {
		t.Fatalf("LoadFromFiles with no files should not error: %v", err)
	}
	if cfg.Server.Port != "4250" {
		t.Errorf("expected default port 4250, got %s", cfg.Server.Port)
	}
}

func TestLoadFromFiles_MissingFileSkipped(t *testing.T) {
	cfg, err := LoadFromFiles("/nonexistent/triage-mcp.toml")
	if err != nil {
		t.Fatalf("missing config file should be skipped, got error: %v", err)
	}
	if cfg.Server.Name != "Triage-MCP" {
		t.Errorf("expected defaults for missing file, got name %s", cfg.Server.Name)
	}
}

func TestLoadFromFiles_ValidTOML(t *testing.T) {
	// Neutralize any ambient overrides so the file values are observable.
	t.Setenv("API_BASE_URL", "")
	t.Setenv("API_BEARER_TOKEN", "")

	dir := t.TempDir()
	tomlPath := filepath.Join(dir, "test.toml")

	content := `
[server]
name = "Triage-MCP-Dev"
port = "9090"

[api]
base_url = "https://triage.example.com"
bearer_token = "secret-token"
timeout = "5s"

[logging]
level = "debug"
`
	if err := os.WriteFile(tomlPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFiles(tomlPath)
	if err != nil {
		t.Fatalf("LoadFromFiles failed: %v", err)
	}

	if cfg.Server.Name != "Triage-MCP-Dev" {
		t.Errorf("expected name Triage-MCP-Dev, got %s", cfg.Server.Name)
	}
	if cfg.Server.Port != "9090" {
		t.Errorf("expected port 9090, got %s", cfg.Server.Port)
	}
	if cfg.API.BaseURL != "https://triage.example.com" {
		t.Errorf("expected base URL https://triage.example.com, got %s", cfg.API.BaseURL)
	}
	if cfg.API.BearerToken != "secret-token" {
		t.Errorf("expected bearer token secret-token, got %s", cfg.API.BearerToken)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level debug, got %s", cfg.Logging.Level)
	}
}

func TestLoadFromFiles_PartialOverride(t *testing.T) {
	dir := t.TempDir()
	tomlPath := filepath.Join(dir, "partial.toml")

	// Only override the port; everything else should stay default
	content := `
[server]
port = "3000"
`
	if err := os.WriteFile(tomlPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFiles(tomlPath)
	if err != nil {
		t.Fatalf("LoadFromFiles failed: %v", err)
	}

	if cfg.Server.Port != "3000" {
		t.Errorf("expected port 3000, got %s", cfg.Server.Port)
	}
	if cfg.Server.Name != "Triage-MCP" {
		t.Errorf("expected default name Triage-MCP, got %s", cfg.Server.Name)
	}
	if cfg.API.Timeout != "30s" {
		t.Errorf("expected default timeout 30s, got %s", cfg.API.Timeout)
	}
}

func TestLoadFromFiles_InvalidTOML(t *testing.T) {
	dir := t.TempDir()
	tomlPath := filepath.Join(dir, "bad.toml")

	if err := os.WriteFile(tomlPath, []byte("this is not [valid toml"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFromFiles(tomlPath); err == nil {
		t.Fatal("expected error for invalid TOML, got nil")
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://env.example.com")
	t.Setenv("API_BEARER_TOKEN", "env-token")
	t.Setenv("TRIAGE_MCP_PORT", "5555")
	t.Setenv("TRIAGE_LOG_LEVEL", "warn")

	cfg, err := LoadFromFiles()
	if err != nil {
		t.Fatalf("LoadFromFiles failed: %v", err)
	}

	if cfg.API.BaseURL != "https://env.example.com" {
		t.Errorf("expected env base URL, got %s", cfg.API.BaseURL)
	}
	if cfg.API.BearerToken != "env-token" {
		t.Errorf("expected env bearer token, got %s", cfg.API.BearerToken)
	}
	if cfg.Server.Port != "5555" {
		t.Errorf("expected env port 5555, got %s", cfg.Server.Port)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("expected env log level warn, got %s", cfg.Logging.Level)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	tomlPath := filepath.Join(dir, "test.toml")

	content := `
[api]
base_url = "https://file.example.com"
bearer_token = "file-token"
`
	if err := os.WriteFile(tomlPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("API_BASE_URL", "https://env.example.com")
	t.Setenv("API_BEARER_TOKEN", "")

	cfg, err := LoadFromFiles(tomlPath)
	if err != nil {
		t.Fatalf("LoadFromFiles failed: %v", err)
	}

	if cfg.API.BaseURL != "https://env.example.com" {
		t.Errorf("env should override file, got %s", cfg.API.BaseURL)
	}
	if cfg.API.BearerToken != "file-token" {
		t.Errorf("file value should survive when env is unset, got %s", cfg.API.BearerToken)
	}
}

func TestApplyFlagOverrides(t *testing.T) {
	cfg := NewDefaultConfig()

	ApplyFlagOverrides(cfg, "7777")
	if cfg.Server.Port != "7777" {
		t.Errorf("expected flag port 7777, got %s", cfg.Server.Port)
	}

	ApplyFlagOverrides(cfg, "")
	if cfg.Server.Port != "7777" {
		t.Errorf("empty flag should not override, got %s", cfg.Server.Port)
	}
}

func TestGetTimeout_Valid(t *testing.T) {
	api := APIConfig{Timeout: "5s"}
	if got := api.GetTimeout(); got != 5*time.Second {
		t.Errorf("expected 5s, got %v", got)
	}
}

func TestGetTimeout_InvalidFallsBack(t *testing.T) {
	api := APIConfig{Timeout: "not-a-duration"}
	if got := api.GetTimeout(); got != 30*time.Second {
		t.Errorf("expected 30s fallback, got %v", got)
	}
}

func TestValidate_AllPresent(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.API.BaseURL = "https://triage.example.com"
	cfg.API.BearerToken = "token"

	if issues := cfg.Validate(); len(issues) != 0 {
		t.Errorf("expected no issues, got %v", issues)
	}
}

func TestValidate_MissingBaseURL(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.API.BearerToken = "token"

	issues := cfg.Validate()
	if len(issues) != 1 {
		t.Fatalf("expected 1 issue, got %d: %v", len(issues), issues)
	}
	if !strings.Contains(issues[0], "api.base_url") {
		t.Errorf("issue should mention api.base_url, got %q", issues[0])
	}
}

func TestValidate_MissingBearerToken(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.API.BaseURL = "https://triage.example.com"

	issues := cfg.Validate()
	if len(issues) != 1 {
		t.Fatalf("expected 1 issue, got %d: %v", len(issues), issues)
	}
	if !strings.Contains(issues[0], "api.bearer_token") {
		t.Errorf("issue should mention api.bearer_token, got %q", issues[0])
	}
}

func TestValidate_RelativeBaseURL(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.API.BaseURL = "/not/absolute"
	cfg.API.BearerToken = "token"

	issues := cfg.Validate()
	if len(issues) != 1 {
		t.Fatalf("expected 1 issue, got %d: %v", len(issues), issues)
	}
	if !strings.Contains(issues[0], "absolute URL") {
		t.Errorf("issue should mention absolute URL, got %q", issues[0])
	}
}

func TestValidate_BadTimeout(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.API.BaseURL = "https://triage.example.com"
	cfg.API.BearerToken = "token"
	cfg.API.Timeout = "fast"

	issues := cfg.Validate()
	if len(issues) != 1 {
		t.Fatalf("expected 1 issue, got %d: %v", len(issues), issues)
	}
	if !strings.Contains(issues[0], "api.timeout") {
		t.Errorf("issue should mention api.timeout, got %q", issues[0])
	}
}
