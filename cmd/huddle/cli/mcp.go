package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	hmcp "github.com/huddlehq/huddle/internal/mcp"
	"github.com/huddlehq/huddle/internal/service"
)

func newMCPCmd() *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP server over stdio",
		Long: `Start a Model Context Protocol (MCP) server that exposes the project board,
pivot log, submission, and vault metadata as tools for AI agents.

In stdio mode the server communicates over stdin/stdout using JSON-RPC,
suitable for clients that launch the server as a subprocess. A project token
identifies which project the tools operate on; pass it with --token or the
HUDDLE_TOKEN env var. (The HTTP transport is served by 'huddle serve' at
/mcp, authenticated per request.)`,
		Example: `  huddle mcp --token <project-token>
  HUDDLE_TOKEN=<project-token> huddle mcp`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMCP(token)
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "Project token (default: HUDDLE_TOKEN env var)")

	return cmd
}

func runMCP(token string) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if token == "" {
		token = os.Getenv("HUDDLE_TOKEN")
	}
	if token == "" {
		return fmt.Errorf("a project token is required (--token or HUDDLE_TOKEN)")
	}

	cfg := loadConfig()
	secret, err := resolveJWTSecret(cfg)
	if err != nil {
		return err
	}

	authSvc := service.NewAuthService(secret, 0)
	principal, err := authSvc.ValidateToken(token)
	if err != nil {
		return fmt.Errorf("invalid project token: %w", err)
	}

	st, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	vaultSvc := service.NewVaultService(st)
	mcpSrv := hmcp.NewMCPServer(st, vaultSvc, logger)

	logger.Info("serving MCP over stdio", "project", principal.ProjectID, "member", principal.Name)
	return mcpSrv.ServeStdioAs(principal)
}
