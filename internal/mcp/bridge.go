// Package mcp implements the bridge between MCP tool calls and the
// upstream issue triage REST API. A static catalog declares the tools, the
// builder validates arguments and assembles HTTP requests, the dispatcher
// executes them, and the normalizer turns whatever came back into a result
// an MCP client can use.
package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/triage-mcp/internal/common"
)

// Bridge is the single entry point the MCP transport calls. It wires the
// catalog, builder, and dispatcher together and owns no per-call state, so
// one Bridge serves concurrent invocations.
type Bridge struct {
	catalog    *Catalog
	builder    *Builder
	dispatcher *Dispatcher
	logger     *common.Logger
}

func NewBridge(catalog *Catalog, baseURL, token string, timeout time.Duration, logger *common.Logger) *Bridge {
	return &Bridge{
		catalog:    catalog,
		builder:    NewBuilder(baseURL, token),
		dispatcher: NewDispatcher(timeout, logger),
		logger:     logger,
	}
}

// Catalog returns the tool table backing this bridge.
func (b *Bridge) Catalog() *Catalog {
	return b.catalog
}

// Invoke runs one tool call end to end. Unknown tools and invalid
// arguments are rejected before any network activity; only a call that
// passes validation reaches the upstream API. Every invocation gets its
// own correlation id so its log lines can be traced as a unit.
func (b *Bridge) Invoke(ctx context.Context, toolName string, args map[string]interface{}) Result {
	correlationID := uuid.New().String()
	ctx = WithCorrelationID(ctx, correlationID)
	logger := b.logger.WithCorrelationId(correlationID)

	td, ok := b.catalog.Lookup(toolName)
	if !ok {
		logger.Warn().Str("tool", toolName).Msg("unknown tool requested")
		return Result{
			Kind:    ErrKindUnknownTool,
			Message: fmt.Sprintf("unknown tool %q", toolName),
		}
	}

	br, err := b.builder.Build(td, args)
	if err != nil {
		logger.Warn().
			Str("tool", toolName).
			Str("error", err.Error()).
			Msg("rejected tool arguments")
		return Result{Kind: ErrKindValidation, Message: err.Error()}
	}

	logger.Debug().
		Str("tool", toolName).
		Str("method", br.Method).
		Str("url", br.URL).
		Msg("invoking tool")

	result := Normalize(b.dispatcher.Dispatch(ctx, br))
	if result.Ok {
		logger.Debug().Str("tool", toolName).Msg("tool call succeeded")
	} else {
		logger.Warn().
			Str("tool", toolName).
			Str("kind", string(result.Kind)).
			Str("error", result.Message).
			Msg("tool call failed")
	}
	return result
}

// ToolHandler adapts one catalog tool to an mcp-go handler. Failures become
// MCP error results rather than protocol errors, so the client always gets
// text it can show.
func ToolHandler(b *Bridge, toolName string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result := b.Invoke(ctx, toolName, request.GetArguments())
		if !result.Ok {
			return errorResult(result.Message), nil
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{mcp.NewTextContent(result.Content)},
		}, nil
	}
}

func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(message)},
		IsError: true,
	}
}

// RegisterTools registers every catalog tool on the MCP server and returns
// the number registered.
func RegisterTools(s *server.MCPServer, b *Bridge) int {
	count := 0
	for _, td := range b.catalog.Tools() {
		s.AddTool(BuildMCPTool(td), ToolHandler(b, td.Name))
		count++
	}
	return count
}
