package cmd

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/prathamesh1010/mcp-k8s/internal/dispatch"
	"github.com/prathamesh1010/mcp-k8s/internal/interpreter"
	"github.com/prathamesh1010/mcp-k8s/internal/k8s"
	"github.com/prathamesh1010/mcp-k8s/internal/server"
	"github.com/prathamesh1010/mcp-k8s/internal/server/middleware"
)

// Transport type constants for the MCP server.
const (
	transportStdio          = "stdio"
	transportSSE            = "sse"
	transportStreamableHTTP = "streamable-http"
)

// Chat transport constants.
const (
	chatTransportWebSocket = "websocket"
	chatTransportConsole   = "console"
)

const (
	defaultChatAddr     = ":8081"
	defaultChatEndpoint = "/chat"
)

// KubernetesConfig holds the Kubernetes client flags shared by serve and chat.
type KubernetesConfig struct {
	Namespace          string
	Kubeconfig         string
	Context            string
	InCluster          bool
	NonDestructiveMode bool
	DryRun             bool
	// AllowedOperations are exempt from non-destructive mode.
	AllowedOperations    []string
	RestrictedNamespaces []string
	QPSLimit             float32
	BurstLimit           int
}

// Validate checks the safety and rate limit settings.
func (k KubernetesConfig) Validate() error {
	for _, op := range k.AllowedOperations {
		if !slices.Contains(k8s.Operations, op) {
			return fmt.Errorf("unknown operation %q in --allowed-operations (supported: %s)", op, strings.Join(k8s.Operations, ", "))
		}
	}
	if slices.Contains(k.RestrictedNamespaces, k.Namespace) {
		return fmt.Errorf("--namespace %q is listed in --restricted-namespaces", k.Namespace)
	}
	if k.QPSLimit <= 0 {
		return fmt.Errorf("--qps-limit must be positive")
	}
	if k.BurstLimit <= 0 {
		return fmt.Errorf("--burst-limit must be positive")
	}
	return nil
}

// ChatConfig holds configuration of the chat dispatch loop.
type ChatConfig struct {
	Enabled        bool
	Transport      string
	Addr           string
	Endpoint       string
	Templates      string
	PollInterval   time.Duration
	AllowedOrigins string
}

// ServeConfig holds all configuration for the serve command.
type ServeConfig struct {
	// Transport settings
	Transport string
	HTTPAddr  string

	// Endpoint paths
	SSEEndpoint     string
	MessageEndpoint string
	HTTPEndpoint    string

	Kubernetes KubernetesConfig
	Chat       ChatConfig

	// MetricsAddr is where /metrics is served when instrumentation is enabled.
	MetricsAddr string
	EnableHSTS  bool

	DebugMode bool
	LogFormat string
}

// Validate checks the transport and chat settings.
func (c ServeConfig) Validate() error {
	if !slices.Contains([]string{transportStdio, transportSSE, transportStreamableHTTP}, c.Transport) {
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, sse, streamable-http)", c.Transport)
	}
	if c.Chat.Enabled {
		// serve keeps stdin for MCP, so the chat loop is always bridged.
		if c.Chat.Transport != chatTransportWebSocket {
			return fmt.Errorf("serve only supports the %s chat transport", chatTransportWebSocket)
		}
		if c.Transport != transportStdio && c.Chat.Addr == c.HTTPAddr {
			return fmt.Errorf("--chat-addr must differ from --http-addr (%s)", c.HTTPAddr)
		}
		if err := c.Chat.Validate(); err != nil {
			return err
		}
	}
	return c.Kubernetes.Validate()
}

// Validate checks the chat transport and its listener settings.
func (c ChatConfig) Validate() error {
	switch c.Transport {
	case chatTransportWebSocket:
		if c.Addr == "" {
			return fmt.Errorf("--chat-addr is required for the %s chat transport", chatTransportWebSocket)
		}
		if len(c.Endpoint) == 0 || c.Endpoint[0] != '/' {
			return fmt.Errorf("--chat-endpoint must start with '/' (got %q)", c.Endpoint)
		}
		if _, err := middleware.ParseAllowedOrigins(c.AllowedOrigins); err != nil {
			return err
		}
	case chatTransportConsole:
	default:
		return fmt.Errorf("unsupported chat transport: %s (supported: %s, %s)", c.Transport, chatTransportWebSocket, chatTransportConsole)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("--poll-interval must be positive")
	}
	return nil
}

// logLevel maps the debug flag onto a slog level name.
func logLevel(debug bool) string {
	if debug {
		return "debug"
	}
	return "info"
}

func addKubernetesFlags(cmd *cobra.Command, k *KubernetesConfig) {
	cmd.Flags().StringVar(&k.Namespace, "namespace", server.NewDefaultConfig().DefaultNamespace, "Namespace used when a tool call or chat command does not name one")
	cmd.Flags().StringVar(&k.Kubeconfig, "kubeconfig", "", "Path to the kubeconfig file (default: KUBECONFIG or ~/.kube/config)")
	cmd.Flags().StringVar(&k.Context, "context", "", "Kubeconfig context to use (default: current context)")
	cmd.Flags().BoolVar(&k.InCluster, "in-cluster", false, "Use in-cluster authentication (service account token) instead of kubeconfig")
	cmd.Flags().BoolVar(&k.NonDestructiveMode, "non-destructive", false, "Block create, delete and scale operations")
	cmd.Flags().BoolVar(&k.DryRun, "dry-run", false, "Send mutating requests with server-side dry run")
	cmd.Flags().StringSliceVar(&k.AllowedOperations, "allowed-operations", nil, "Operations exempt from --non-destructive (create, delete, scale)")
	cmd.Flags().StringSliceVar(&k.RestrictedNamespaces, "restricted-namespaces", nil, "Namespaces no operation may touch")
	cmd.Flags().Float32Var(&k.QPSLimit, "qps-limit", 20.0, "QPS limit for Kubernetes API calls")
	cmd.Flags().IntVar(&k.BurstLimit, "burst-limit", 30, "Burst limit for Kubernetes API calls")
}

func addChatFlags(cmd *cobra.Command, c *ChatConfig) {
	cmd.Flags().StringVar(&c.Addr, "chat-addr", defaultChatAddr, "Listen address of the chat WebSocket bridge")
	cmd.Flags().StringVar(&c.Endpoint, "chat-endpoint", defaultChatEndpoint, "Path of the chat WebSocket endpoint")
	cmd.Flags().StringVar(&c.Templates, "templates", "", "YAML or JSON file with deployment templates (default: built-in "+strings.Join(interpreter.DefaultCatalog().Names(), ", ")+")")
	cmd.Flags().DurationVar(&c.PollInterval, "poll-interval", dispatch.DefaultPollInterval, "Wait between two polls of the chat channel")
	cmd.Flags().StringVar(&c.AllowedOrigins, "chat-allowed-origins", "", "Comma-separated origins allowed to open the chat WebSocket (default: any)")
}
