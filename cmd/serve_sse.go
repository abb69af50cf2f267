package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/prathamesh1010/mcp-k8s/internal/logging"
	"github.com/prathamesh1010/mcp-k8s/internal/server"
	"github.com/prathamesh1010/mcp-k8s/internal/server/middleware"
)

// runSSEServer runs the server with SSE transport. The SSE server owns the
// http.Server so its Shutdown can close open event streams.
func runSSEServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, config ServeConfig, healthChecker *server.HealthChecker, sc *server.ServerContext) error {
	logger := sc.Logger()

	mux := http.NewServeMux()
	httpServer := newHTTPServer(config.HTTPAddr, nil)

	sseServer := mcpserver.NewSSEServer(mcpSrv,
		mcpserver.WithSSEEndpoint(config.SSEEndpoint),
		mcpserver.WithMessageEndpoint(config.MessageEndpoint),
		mcpserver.WithHTTPServer(httpServer),
	)
	mux.Handle(config.SSEEndpoint, sseServer)
	mux.Handle(config.MessageEndpoint, sseServer)
	healthChecker.RegisterHealthEndpoints(mux)

	var handler http.Handler = mux
	handler = middleware.HTTPMetrics(sc.InstrumentationProvider())(handler)
	handler = middleware.SecurityHeaders(config.EnableHSTS)(handler)
	httpServer.Handler = handler

	logger.Debug("SSE server configured",
		"addr", config.HTTPAddr,
		"sse_endpoint", config.SSEEndpoint,
		"message_endpoint", config.MessageEndpoint)
	logger.Info("SSE server starting",
		"addr", config.HTTPAddr,
		"sse_endpoint", config.SSEEndpoint,
		"message_endpoint", config.MessageEndpoint,
		"health_endpoints", []string{"/healthz", "/readyz"})

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := sseServer.Start(config.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverDone <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received, stopping SSE server")
		healthChecker.SetReady(false)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := sseServer.Shutdown(shutdownCtx); err != nil {
			logger.Debug("SSE shutdown failed", logging.Err(err))
			return fmt.Errorf("error shutting down SSE server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("SSE server stopped with error: %w", err)
		}
		logger.Info("SSE server stopped normally")
	}

	logger.Info("SSE server gracefully stopped")
	return nil
}
