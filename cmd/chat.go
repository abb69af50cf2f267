package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/prathamesh1010/mcp-k8s/internal/logging"
	"github.com/prathamesh1010/mcp-k8s/internal/server"
)

// ChatCommandConfig holds all configuration for the chat command.
type ChatCommandConfig struct {
	Kubernetes KubernetesConfig
	Chat       ChatConfig

	MetricsAddr string
	EnableHSTS  bool
	DebugMode   bool
	LogFormat   string
}

// Validate checks the chat and Kubernetes settings.
func (c ChatCommandConfig) Validate() error {
	if err := c.Chat.Validate(); err != nil {
		return err
	}
	return c.Kubernetes.Validate()
}

// newChatCmd creates the Cobra command that runs only the chat dispatch loop.
func newChatCmd() *cobra.Command {
	config := ChatCommandConfig{
		Chat: ChatConfig{Enabled: true},
	}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Run the chat command loop without an MCP transport",
		Long: `Run the chat dispatch loop on its own. Every line received from the chat
channel is interpreted as a command and answered on the same channel.

Chat transports:
  - websocket: relays connect to --chat-addr (default)
  - console: lines are read from stdin and replies written to stdout

Commands:
  deploy <template>        create a deployment from a template (nginx, redis, myapp)
  scale <template> to <n>  set the replica count of a deployment
  delete <template>        delete a deployment
  list pods                list pods in the namespace`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(config, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&config.Chat.Transport, "chat-transport", chatTransportWebSocket, "Chat transport: websocket or console")
	addChatFlags(cmd, &config.Chat)
	addKubernetesFlags(cmd, &config.Kubernetes)

	cmd.Flags().StringVar(&config.MetricsAddr, "metrics-addr", server.DefaultMetricsAddr, "Metrics server address, used when INSTRUMENTATION_ENABLED=true (empty disables)")
	cmd.Flags().BoolVar(&config.EnableHSTS, "enable-hsts", os.Getenv("ENABLE_HSTS") == "true", "Send Strict-Transport-Security on HTTP responses")
	cmd.Flags().BoolVar(&config.DebugMode, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&config.LogFormat, "log-format", "text", "Log format: text or json")

	return cmd
}

// runChat runs the dispatch loop until the channel closes or a signal
// arrives. in and out back the console transport.
func runChat(config ChatCommandConfig, in io.Reader, out io.Writer) error {
	if err := config.Validate(); err != nil {
		return err
	}

	logger := logging.NewLogger(os.Stderr, logLevel(config.DebugMode), config.LogFormat)

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

	chatRT, err := newChatRuntime(config.Chat, serverContext, in, out)
	if err != nil {
		return fmt.Errorf("failed to set up chat: %w", err)
	}

	ctx, stop := context.WithCancel(shutdownCtx)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	if err := startMetricsServer(gctx, g, config.MetricsAddr, serverContext); err != nil {
		return err
	}
	chatRT.start(gctx, g, stop, config.Chat, serverContext, config.EnableHSTS)

	return g.Wait()
}
