package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/prathamesh1010/mcp-k8s/internal/logging"
	"github.com/prathamesh1010/mcp-k8s/internal/server"
)

// newServeCmd creates the Cobra command for starting the MCP server.
func newServeCmd() *cobra.Command {
	config := ServeConfig{
		Chat: ChatConfig{Transport: chatTransportWebSocket},
	}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP Kubernetes server",
		Long: `Start the mcp-k8s server to manage pods and deployments via the
Model Context Protocol.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - sse: Server-Sent Events over HTTP
  - streamable-http: Streamable HTTP transport

With --enable-chat the server also runs the chat dispatch loop. Chat relays
connect over WebSocket to --chat-addr and send plain commands such as
"deploy nginx", "scale nginx to 3" or "list pods".`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(config)
		},
	}

	// Transport flags
	cmd.Flags().StringVar(&config.Transport, "transport", transportStdio, "Transport type: stdio, sse, or streamable-http")
	cmd.Flags().StringVar(&config.HTTPAddr, "http-addr", ":8080", "HTTP server address (for sse and streamable-http transports)")
	cmd.Flags().StringVar(&config.SSEEndpoint, "sse-endpoint", "/sse", "SSE endpoint path (for sse transport)")
	cmd.Flags().StringVar(&config.MessageEndpoint, "message-endpoint", "/message", "Message endpoint path (for sse transport)")
	cmd.Flags().StringVar(&config.HTTPEndpoint, "http-endpoint", "/mcp", "HTTP endpoint path (for streamable-http transport)")

	addKubernetesFlags(cmd, &config.Kubernetes)

	// Chat flags
	cmd.Flags().BoolVar(&config.Chat.Enabled, "enable-chat", false, "Run the chat dispatch loop behind a WebSocket bridge")
	addChatFlags(cmd, &config.Chat)

	cmd.Flags().StringVar(&config.MetricsAddr, "metrics-addr", server.DefaultMetricsAddr, "Metrics server address, used when INSTRUMENTATION_ENABLED=true (empty disables)")
	cmd.Flags().BoolVar(&config.EnableHSTS, "enable-hsts", os.Getenv("ENABLE_HSTS") == "true", "Send Strict-Transport-Security on HTTP responses")
	cmd.Flags().BoolVar(&config.DebugMode, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&config.LogFormat, "log-format", "text", "Log format: text or json")

	return cmd
}

// runServe contains the main server logic with support for multiple transports
func runServe(config ServeConfig) error {
	if err := config.Validate(); err != nil {
		return err
	}

	// Logs go to stderr so the stdio transport keeps stdout for MCP.
	logger := logging.NewLogger(os.Stderr, logLevel(config.DebugMode), config.LogFormat)

	// Setup graceful shutdown - listen for both SIGINT and SIGTERM
	shutdownCtx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	serverContext, err := newServerContext(shutdownCtx, config.Kubernetes, logger, config.DebugMode)
	if err != nil {
		return err
	}
	defer func() {
		if err := serverContext.Shutdown(); err != nil {
			logger.Error("error during server context shutdown", logging.Err(err))
		}
	}()

	mcpSrv, err := newMCPServer(serverContext)
	if err != nil {
		return err
	}

	var chatRT *chatRuntime
	if config.Chat.Enabled {
		chatRT, err = newChatRuntime(config.Chat, serverContext, nil, nil)
		if err != nil {
			return fmt.Errorf("failed to set up chat: %w", err)
		}
	}

	healthChecker := server.NewHealthChecker(serverContext)
	if chatRT != nil {
		healthChecker.SetChatStatus(chatRT.bridge.Clients)
	}

	ctx, stop := context.WithCancel(shutdownCtx)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	if err := startMetricsServer(gctx, g, config.MetricsAddr, serverContext); err != nil {
		return err
	}

	g.Go(func() error {
		defer stop()
		switch config.Transport {
		case transportSSE:
			logger.Info("starting MCP server", logging.Transport(config.Transport))
			return runSSEServer(gctx, mcpSrv, config, healthChecker, serverContext)
		case transportStreamableHTTP:
			logger.Info("starting MCP server", logging.Transport(config.Transport))
			return runStreamableHTTPServer(gctx, mcpSrv, config, healthChecker, serverContext)
		default:
			return runStdioServer(gctx, mcpSrv, logger)
		}
	})

	if chatRT != nil {
		chatRT.start(gctx, g, stop, config.Chat, serverContext, config.EnableHSTS)
	}

	return g.Wait()
}
