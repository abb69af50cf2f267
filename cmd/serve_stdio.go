package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	mcpserver "github.com/mark3labs/mcp-go/server"
)

// runStdioServer runs the server with STDIO transport until stdin closes or
// ctx is cancelled.
func runStdioServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, logger *slog.Logger) error {
	stdioServer := mcpserver.NewStdioServer(mcpSrv)
	stdioServer.SetErrorLogger(slog.NewLogLogger(logger.Handler(), slog.LevelError))

	// Don't print to stdout in stdio mode as it interferes with MCP communication
	if err := ignoreCanceled(stdioServer.Listen(ctx, os.Stdin, os.Stdout)); err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}
