package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/triage-mcp/internal/common"
	"github.com/bobmcallan/triage-mcp/internal/config"
)

// settingsURI is the resource URI exposing the resolved configuration.
const settingsURI = "config://settings"

// NewServer assembles the MCP server: capabilities, every catalog tool,
// and the settings resource. The same server instance backs both the stdio
// and the streamable HTTP transport.
func NewServer(cfg *config.Config, bridge *Bridge, logger *common.Logger) *server.MCPServer {
	s := server.NewMCPServer(
		cfg.Server.Name,
		common.GetVersion(),
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, false),
	)

	count := RegisterTools(s, bridge)

	s.AddResource(mcp.NewResource(
		settingsURI,
		"settings",
		mcp.WithResourceDescription("Resolved bridge configuration with the bearer token masked"),
		mcp.WithMIMEType("application/json"),
	), settingsHandler(cfg))

	logger.Info().
		Int("tools", count).
		Str("api_url", cfg.API.BaseURL).
		Msg("MCP server initialized")
	return s
}

// settingsHandler reports the resolved configuration. The bearer token is
// never echoed; the resource only reveals whether one is set.
func settingsHandler(cfg *config.Config) server.ResourceHandlerFunc {
	return func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		settings := map[string]interface{}{
			"base_url":     cfg.API.BaseURL,
			"bearer_token": nil,
			"timeout":      cfg.API.GetTimeout().String(),
		}
		if cfg.API.BearerToken != "" {
			settings["bearer_token"] = "***"
		}
		data, err := json.MarshalIndent(settings, "", "  ")
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      request.Params.URI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	}
}
