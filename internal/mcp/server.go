package mcp

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/huddlehq/huddle/internal/server/middleware"
	"github.com/huddlehq/huddle/internal/service"
	"github.com/huddlehq/huddle/internal/store"
)

// MCPServer wraps the mcp-go server with huddle-specific tool registrations.
// It exposes the authenticated project's board, pivot log, submission, and
// vault metadata as MCP tools so AI agents can work alongside the team.
type MCPServer struct {
	store  *store.Store
	vault  *service.VaultService
	logger *slog.Logger
	server *server.MCPServer
}

// NewMCPServer creates an MCPServer pre-loaded with all huddle tools. The
// returned server is ready to serve over stdio or HTTP.
func NewMCPServer(st *store.Store, vault *service.VaultService, logger *slog.Logger) *MCPServer {
	s := &MCPServer{
		store:  st,
		vault:  vault,
		logger: logger,
	}

	mcpServer := server.NewMCPServer(
		"Huddle Team API",
		"0.1.0",
		server.WithResourceCapabilities(true, false),
		server.WithToolCapabilities(true),
	)

	s.registerTools(mcpServer)
	s.registerResources(mcpServer)

	s.server = mcpServer
	return s
}

// Server returns the underlying mcp-go MCPServer instance. Useful for
// advanced configuration or testing.
func (s *MCPServer) Server() *server.MCPServer {
	return s.server
}

// ServeStdioAs starts the MCP server in stdio mode, for clients that launch
// the server as a subprocess. Stdio clients authenticate once at launch, so
// every tool call runs as the given principal.
func (s *MCPServer) ServeStdioAs(p *service.Principal) error {
	s.logger.Info("starting MCP server in stdio mode")
	return server.ServeStdio(s.server, server.WithStdioContextFunc(
		func(ctx context.Context) context.Context {
			return context.WithValue(ctx, middleware.AuthPrincipalKey, p)
		},
	))
}

// HTTPHandler returns the Streamable HTTP handler for mounting on the main
// router. The surrounding auth middleware decides which project the tools
// operate on; tool handlers read the principal from the request context.
func (s *MCPServer) HTTPHandler() http.Handler {
	return server.NewStreamableHTTPServer(s.server,
		server.WithStateLess(true),
	)
}

func readOnlyAnnotation() mcp.ToolAnnotation {
	return mcp.ToolAnnotation{
		ReadOnlyHint: boolPtr(true),
	}
}

func mutatingAnnotation() mcp.ToolAnnotation {
	return mcp.ToolAnnotation{
		ReadOnlyHint: boolPtr(false),
	}
}

func boolPtr(b bool) *bool {
	return &b
}
