package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/triage-mcp/internal/common"
	"github.com/bobmcallan/triage-mcp/internal/config"
	"github.com/bobmcallan/triage-mcp/internal/mcp"
)

// configPaths is a custom flag type that allows multiple -config flags.
type configPaths []string

func (c *configPaths) String() string {
	return fmt.Sprintf("%v", *c)
}

func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

var (
	configFiles configPaths
	stdio       = flag.Bool("stdio", false, "Use stdio transport (for Claude Desktop)")
	catalogFile = flag.String("catalog", "", "Path to a JSON tool catalog (replaces the built-in toolset)")
	serverPort  = flag.String("port", "", "HTTP port (overrides config)")
	showVersion = flag.Bool("version", false, "Print version information")
)

func init() {
	flag.Var(&configFiles, "config", "Configuration file path (can be specified multiple times)")
	flag.Var(&configFiles, "c", "Configuration file path (shorthand)")
}

func main() {
	flag.Parse()

	common.LoadVersionFromFile()

	if *showVersion {
		fmt.Printf("triage-mcp version %s\n", common.GetFullVersion())
		os.Exit(0)
	}

	// .env is a development convenience; a missing file is not an error.
	_ = godotenv.Load()

	// Auto-discover config file if not specified.
	if len(configFiles) == 0 {
		for _, path := range configSearchPaths() {
			if _, err := os.Stat(path); err == nil {
				configFiles = append(configFiles, path)
				break
			}
		}
	}

	cfg, err := config.LoadFromFiles(configFiles...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	config.ApplyFlagOverrides(cfg, *serverPort)

	// Validate mandatory configuration before touching the network.
	if issues := cfg.Validate(); len(issues) > 0 {
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Configuration error: mandatory fields are missing or invalid.")
		fmt.Fprintln(os.Stderr, "")
		for _, issue := range issues {
			fmt.Fprintf(os.Stderr, "  - %s\n", issue)
		}
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Values can be set via TOML file, API_BASE_URL and API_BEARER_TOKEN,")
		fmt.Fprintln(os.Stderr, "TRIAGE_* environment variables, or CLI flags.")
		fmt.Fprintln(os.Stderr, "")
		os.Exit(1)
	}

	logger := common.NewLoggerFromConfig(cfg.Logging)

	defs := mcp.DefaultCatalog()
	if *catalogFile != "" {
		defs, err = mcp.LoadCatalogFile(*catalogFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load tool catalog: %v\n", err)
			os.Exit(1)
		}
	}
	catalog, err := mcp.NewCatalog(defs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid tool catalog: %v\n", err)
		os.Exit(1)
	}

	logger.Info().
		Str("version", common.GetVersion()).
		Str("api_url", cfg.API.BaseURL).
		Str("config_files", fmt.Sprintf("%v", configFiles)).
		Int("tools", catalog.Len()).
		Msg("configuration loaded")

	bridge := mcp.NewBridge(catalog, cfg.API.BaseURL, cfg.API.BearerToken, cfg.API.GetTimeout(), logger)
	mcpServer := mcp.NewServer(cfg, bridge, logger)

	if *stdio {
		// Stdio transport — reads stdin, writes stdout
		if err := server.ServeStdio(mcpServer); err != nil {
			fmt.Fprintf(os.Stderr, "stdio server error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Streamable HTTP transport — listens on configured port
	httpServer := server.NewStreamableHTTPServer(mcpServer,
		server.WithStateLess(true),
	)

	fmt.Fprintf(os.Stderr, "Starting MCP Streamable HTTP on :%s\n", cfg.Server.Port)

	errChan := make(chan error, 1)
	go func() {
		errChan <- httpServer.Start(":" + cfg.Server.Port)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			fmt.Fprintf(os.Stderr, "http server error: %v\n", err)
			os.Exit(1)
		}
	case <-sigChan:
		logger.Info().Msg("shutdown signal received")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			logger.Warn().Str("error", err.Error()).Msg("server shutdown failed")
		}
		logger.Info().Msg("server stopped")
	}
}

// configSearchPaths returns TOML files to auto-discover (first match wins).
// Binary-relative paths are tried first so the config is found even when the
// working directory differs from the binary location.
func configSearchPaths() []string {
	candidates := []string{
		"triage-mcp.toml",
		"config/triage-mcp.toml",
	}

	exe, err := os.Executable()
	if err != nil {
		return candidates
	}
	binDir := filepath.Dir(exe)

	paths := []string{
		filepath.Join(binDir, "triage-mcp.toml"),
		filepath.Join(binDir, "config", "triage-mcp.toml"),
	}
	paths = append(paths, candidates...)

	// Deduplicate via absolute path.
	seen := make(map[string]bool, len(paths))
	deduped := make([]string, 0, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			abs = p
		}
		if seen[abs] {
			continue
		}
		seen[abs] = true
		deduped = append(deduped, p)
	}
	return deduped
}
