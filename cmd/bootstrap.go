package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"

	"github.com/prathamesh1010/mcp-k8s/internal/chat"
	"github.com/prathamesh1010/mcp-k8s/internal/dispatch"
	"github.com/prathamesh1010/mcp-k8s/internal/instrumentation"
	"github.com/prathamesh1010/mcp-k8s/internal/interpreter"
	"github.com/prathamesh1010/mcp-k8s/internal/k8s"
	"github.com/prathamesh1010/mcp-k8s/internal/logging"
	"github.com/prathamesh1010/mcp-k8s/internal/server"
	"github.com/prathamesh1010/mcp-k8s/internal/server/middleware"
	"github.com/prathamesh1010/mcp-k8s/internal/tools/pod"
)

// newServerContext builds the Kubernetes client, the instrumentation
// provider and the ServerContext tying them together.
func newServerContext(ctx context.Context, k KubernetesConfig, logger *slog.Logger, debug bool) (*server.ServerContext, error) {
	k8sClient, err := k8s.NewClient(clientConfig(k, logger, debug))
	if err != nil {
		return nil, fmt.Errorf("failed to create Kubernetes client: %w", err)
	}

	instrumentationConfig := instrumentation.DefaultConfig()
	instrumentationConfig.ServiceVersion = rootCmd.Version
	provider, err := instrumentation.NewProvider(ctx, instrumentationConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	if provider.Enabled() {
		logger.Info("OpenTelemetry instrumentation enabled",
			"metrics", instrumentationConfig.MetricsExporter,
			"tracing", instrumentationConfig.TracingExporter)
	}

	opts := append([]server.Option{
		server.WithK8sClient(k8sClient),
		server.WithLogger(logger),
		server.WithInstrumentationProvider(provider),
	}, safetyOptions(k)...)
	sc, err := server.NewServerContext(ctx, opts...)
	if err != nil {
		_ = provider.Shutdown(context.Background())
		return nil, fmt.Errorf("failed to create server context: %w", err)
	}
	return sc, nil
}

// clientConfig maps the Kubernetes flags onto the client settings. The
// safety fields must agree with safetyOptions so the tool-level check and
// the client enforce the same policy.
func clientConfig(k KubernetesConfig, logger *slog.Logger, debug bool) *k8s.ClientConfig {
	return &k8s.ClientConfig{
		KubeconfigPath:       k.Kubeconfig,
		Context:              k.Context,
		InCluster:            k.InCluster,
		NonDestructiveMode:   k.NonDestructiveMode,
		DryRun:               k.DryRun,
		AllowedOperations:    k.AllowedOperations,
		RestrictedNamespaces: k.RestrictedNamespaces,
		QPSLimit:             k.QPSLimit,
		BurstLimit:           k.BurstLimit,
		Timeout:              30 * time.Second,
		DebugMode:            debug,
		Logger:               logger,
	}
}

func safetyOptions(k KubernetesConfig) []server.Option {
	return []server.Option{
		server.WithDefaultNamespace(k.Namespace),
		server.WithNonDestructiveMode(k.NonDestructiveMode),
		server.WithDryRun(k.DryRun),
		server.WithAllowedOperations(k.AllowedOperations),
	}
}

// newMCPServer creates the MCP server with the pod tools registered.
func newMCPServer(sc *server.ServerContext) (*mcpserver.MCPServer, error) {
	mcpSrv := mcpserver.NewMCPServer(sc.Config().ServerName, rootCmd.Version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithRecovery(),
	)

	if err := pod.RegisterPodTools(mcpSrv, sc); err != nil {
		return nil, fmt.Errorf("failed to register pod tools: %w", err)
	}
	return mcpSrv, nil
}

// chatRuntime is a dispatch loop bound to its channel. bridge is nil for
// the console transport.
type chatRuntime struct {
	loop   *dispatch.Loop
	bridge *chat.Bridge
}

func newChatRuntime(cfg ChatConfig, sc *server.ServerContext, in io.Reader, out io.Writer) (*chatRuntime, error) {
	catalog, err := interpreter.LoadCatalog(cfg.Templates)
	if err != nil {
		return nil, err
	}

	rt := &chatRuntime{}
	var channel chat.Channel
	switch cfg.Transport {
	case chatTransportConsole:
		channel = chat.NewConsole(in, out)
	case chatTransportWebSocket:
		origins, err := middleware.ParseAllowedOrigins(cfg.AllowedOrigins)
		if err != nil {
			return nil, err
		}
		rt.bridge = chat.NewBridge(
			chat.WithBridgeLogger(sc.Logger()),
			chat.WithBridgeMetrics(sc.Metrics()),
			chat.WithCheckOrigin(middleware.OriginChecker(origins)),
		)
		channel = rt.bridge
	default:
		return nil, fmt.Errorf("unsupported chat transport: %s", cfg.Transport)
	}

	rt.loop = dispatch.New(channel, sc.Executor(), interpreter.New(catalog),
		dispatch.WithNamespace(sc.Config().DefaultNamespace),
		dispatch.WithPollInterval(cfg.PollInterval),
		dispatch.WithLogger(sc.Logger()),
		dispatch.WithMetrics(sc.Metrics()),
	)
	return rt, nil
}

// start runs the dispatch loop and, for the WebSocket transport, the bridge
// listener. stop is called when the loop ends so the rest of the group
// follows it down.
func (rt *chatRuntime) start(ctx context.Context, g *errgroup.Group, stop context.CancelFunc, cfg ChatConfig, sc *server.ServerContext, enableHSTS bool) {
	g.Go(func() error {
		defer stop()
		return rt.loop.Run(ctx)
	})

	if rt.bridge == nil {
		return
	}
	g.Go(func() error {
		defer func() { _ = rt.bridge.Close() }()
		sc.Logger().Info("chat bridge starting",
			"addr", cfg.Addr,
			"endpoint", cfg.Endpoint)
		return serveHTTP(ctx, "chat", newHTTPServer(cfg.Addr, chatHandler(rt.bridge, cfg.Endpoint, sc, enableHSTS)), sc.Logger())
	})
}

// chatHandler mounts the bridge next to the health endpoints.
func chatHandler(bridge *chat.Bridge, endpoint string, sc *server.ServerContext, enableHSTS bool) http.Handler {
	mux := http.NewServeMux()
	mux.Handle(endpoint, bridge)

	healthChecker := server.NewHealthChecker(sc)
	healthChecker.SetChatStatus(bridge.Clients)
	healthChecker.RegisterHealthEndpoints(mux)

	var handler http.Handler = mux
	handler = middleware.HTTPMetrics(sc.InstrumentationProvider())(handler)
	handler = middleware.SecurityHeaders(enableHSTS)(handler)
	return handler
}

// newHTTPServer applies the listener timeouts. WriteTimeout stays unset
// because SSE and WebSocket connections are long lived.
func newHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// serveHTTP runs srv until ctx is done, then shuts it down gracefully.
func serveHTTP(ctx context.Context, name string, srv *http.Server, logger *slog.Logger) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverDone <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received, stopping HTTP server", "server", name)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down %s server: %w", name, err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("%s server stopped with error: %w", name, err)
		}
		logger.Info("HTTP server stopped normally", "server", name)
	}

	logger.Info("HTTP server gracefully stopped", "server", name)
	return nil
}

// startMetricsServer serves the Prometheus endpoint on its own address
// when instrumentation is enabled.
func startMetricsServer(ctx context.Context, g *errgroup.Group, addr string, sc *server.ServerContext) error {
	provider := sc.InstrumentationProvider()
	if addr == "" || !provider.Enabled() {
		return nil
	}

	metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
		Addr:                    addr,
		InstrumentationProvider: provider,
	})
	if err != nil {
		return fmt.Errorf("failed to create metrics server: %w", err)
	}

	logger := sc.Logger()
	g.Go(func() error {
		serverDone := make(chan error, 1)
		go func() {
			defer close(serverDone)
			if err := metricsServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serverDone <- err
			}
		}()
		logger.Info("metrics server started",
			"addr", metricsServer.Addr(),
			"endpoint", provider.Config().PrometheusEndpoint)

		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				logger.Error("error shutting down metrics server", logging.Err(err))
			}
			return nil
		case err := <-serverDone:
			if err != nil {
				return fmt.Errorf("metrics server stopped with error: %w", err)
			}
			return nil
		}
	})
	return nil
}

// ignoreCanceled maps a context cancellation to a clean exit.
func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
