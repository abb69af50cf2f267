package server

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/prathamesh1010/mcp-k8s/internal/executor"
	"github.com/prathamesh1010/mcp-k8s/internal/instrumentation"
	"github.com/prathamesh1010/mcp-k8s/internal/k8s"
)

// ServerContext encapsulates all dependencies needed by the MCP tools and
// the chat loop, and owns their shutdown.
type ServerContext struct {
	// Core dependencies
	k8sClient k8s.Client
	executor  *executor.Executor
	logger    *slog.Logger
	config    *Config

	// OpenTelemetry instrumentation; may be nil.
	instrumentationProvider *instrumentation.Provider

	// Context management
	ctx    context.Context
	cancel context.CancelFunc

	// Lifecycle management
	mu       sync.RWMutex
	shutdown bool
}

// NewServerContext creates a new ServerContext with default values.
// Use the provided functional options to customize the context.
func NewServerContext(ctx context.Context, opts ...Option) (*ServerContext, error) {
	serverCtx, cancel := context.WithCancel(ctx)

	sc := &ServerContext{
		ctx:    serverCtx,
		cancel: cancel,
		config: NewDefaultConfig(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		if err := opt(sc); err != nil {
			cancel()
			return nil, err
		}
	}

	if err := sc.validate(); err != nil {
		cancel()
		return nil, err
	}

	// The executor shares the client, logger and metrics so tool calls and
	// chat commands are observed the same way.
	if sc.executor == nil {
		sc.executor = executor.New(sc.k8sClient,
			executor.WithLogger(sc.logger),
			executor.WithMetrics(sc.instrumentationProvider.Metrics()),
		)
	}

	return sc, nil
}

// Context returns the server context for cancellation and deadlines.
func (sc *ServerContext) Context() context.Context {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.ctx
}

// K8sClient returns the Kubernetes client interface.
func (sc *ServerContext) K8sClient() k8s.Client {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.k8sClient
}

// Executor returns the action executor shared by tools and the chat loop.
func (sc *ServerContext) Executor() *executor.Executor {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.executor
}

// Logger returns the structured logger.
func (sc *ServerContext) Logger() *slog.Logger {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.logger
}

// Config returns the server configuration.
func (sc *ServerContext) Config() *Config {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.config
}

// InstrumentationProvider returns the instrumentation provider, or nil.
func (sc *ServerContext) InstrumentationProvider() *instrumentation.Provider {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.instrumentationProvider
}

// Metrics returns the metrics recorder. The result is nil-safe.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	return sc.InstrumentationProvider().Metrics()
}

// InClusterMode reports whether the Kubernetes client uses service
// account credentials.
func (sc *ServerContext) InClusterMode() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	if sc.k8sClient == nil {
		return false
	}
	return sc.k8sClient.InCluster()
}

// Shutdown cancels the context and flushes instrumentation.
// It is safe to call more than once.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.logger.Info("Shutting down server context")

	if sc.cancel != nil {
		sc.cancel()
	}

	var err error
	if sc.instrumentationProvider != nil {
		// The server context is already cancelled; use a fresh one so
		// exporters can flush.
		if shutdownErr := sc.instrumentationProvider.Shutdown(context.Background()); shutdownErr != nil {
			sc.logger.Warn("Failed to shut down instrumentation", "error", shutdownErr)
			err = shutdownErr
		}
	}

	sc.shutdown = true
	sc.logger.Info("Server context shutdown complete")
	return err
}

// IsShutdown returns true if the server context has been shutdown.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// validate ensures all required dependencies are set.
func (sc *ServerContext) validate() error {
	if sc.k8sClient == nil {
		return ErrMissingK8sClient
	}
	if sc.logger == nil {
		return ErrMissingLogger
	}
	if sc.config == nil {
		return ErrMissingConfig
	}
	return nil
}

// Config holds the server configuration.
type Config struct {
	// Server settings
	ServerName string `json:"serverName"`
	Version    string `json:"version"`

	// Kubernetes settings
	DefaultNamespace string `json:"defaultNamespace"`
	KubeConfigPath   string `json:"kubeConfigPath"`
	DefaultContext   string `json:"defaultContext"`
	InCluster        bool   `json:"inCluster"`

	// Non-destructive mode settings
	NonDestructiveMode bool `json:"nonDestructiveMode"`
	DryRun             bool `json:"dryRun"`

	// Logging settings
	LogLevel  string `json:"logLevel"`
	LogFormat string `json:"logFormat"`

	// Operations that stay allowed in non-destructive mode.
	AllowedOperations []string `json:"allowedOperations"`
}

// NewDefaultConfig creates a configuration with sensible defaults.
func NewDefaultConfig() *Config {
	return &Config{
		ServerName:        "mcp-k8s",
		Version:           "0.1.0",
		DefaultNamespace:  "default",
		LogLevel:          "info",
		LogFormat:         "text",
		AllowedOperations: []string{k8s.OperationList, k8s.OperationLogs},
	}
}

// Clone creates a deep copy of the configuration.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}

	clone := *c
	if c.AllowedOperations != nil {
		clone.AllowedOperations = make([]string, len(c.AllowedOperations))
		copy(clone.AllowedOperations, c.AllowedOperations)
	}
	return &clone
}
