// ABOUTME: MCP server subcommand
// ABOUTME: Starts the MCP server for Claude Desktop integration
package cli

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/warmpath/handlers"
	"github.com/harperreed/warmpath/workspace"
)

// MCPCommand starts the MCP server on stdio. Logs go to the logger, never
// stdout, since stdout carries the protocol.
func MCPCommand(ctx context.Context, ws *workspace.Workspace, logger *log.Logger, version string) error {
	logger.Info("starting MCP server", "version", version)

	server := handlers.NewServer(ws, version)
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		return err
	}
	logger.Info("MCP server stopped")
	return nil
}
