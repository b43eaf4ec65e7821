// Package mcpserver exposes the scrubbing pipeline as MCP tools so agents can
// sanitize records and run batches without touching the raw PII themselves.
package mcpserver

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/SamuelRCrider/scrub-go/core"
)

// Server is the MCP server for the scrubber
type Server struct {
	mcp    *server.MCPServer
	base   core.Config
	logger zerolog.Logger
}

// Deps holds what the server needs from the caller
type Deps struct {
	// BaseConfig supplies defaults for scrub_batch arguments
	BaseConfig core.Config
	Logger     zerolog.Logger
}

// New creates and configures a new MCP server with all tools registered
func New(deps Deps) *Server {
	s := &Server{
		base:   deps.BaseConfig.Normalize(),
		logger: deps.Logger,
	}

	s.mcp = server.NewMCPServer(
		"scrub-mcp",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	s.registerTools()

	return s
}

// ServeStdio starts the MCP server on stdin/stdout
func (s *Server) ServeStdio() error {
	s.logger.Info().Msg("Starting MCP stdio server")
	return server.ServeStdio(s.mcp)
}

// MCP returns the underlying server, mainly for embedding in other transports
func (s *Server) MCP() *server.MCPServer {
	return s.mcp
}

// jsonResult serializes v to JSON and wraps it in a text tool result
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
