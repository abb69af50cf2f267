package cmd

import (
	"context"
	"net/http"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/prathamesh1010/mcp-k8s/internal/server"
	"github.com/prathamesh1010/mcp-k8s/internal/server/middleware"
)

// runStreamableHTTPServer runs the server with Streamable HTTP transport
func runStreamableHTTPServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, config ServeConfig, healthChecker *server.HealthChecker, sc *server.ServerContext) error {
	mux := http.NewServeMux()

	mcpHandler := mcpserver.NewStreamableHTTPServer(mcpSrv,
		mcpserver.WithEndpointPath(config.HTTPEndpoint),
	)
	mux.Handle(config.HTTPEndpoint, mcpHandler)

	// Metrics are served on a separate metrics server, see startMetricsServer.
	healthChecker.RegisterHealthEndpoints(mux)

	sc.Logger().Info("streamable HTTP server starting",
		"addr", config.HTTPAddr,
		"endpoint", config.HTTPEndpoint,
		"health_endpoints", []string{"/healthz", "/readyz"})

	var handler http.Handler = mux
	handler = middleware.HTTPMetrics(sc.InstrumentationProvider())(handler)
	handler = middleware.SecurityHeaders(config.EnableHSTS)(handler)

	go func() {
		<-ctx.Done()
		healthChecker.SetReady(false)
	}()

	return serveHTTP(ctx, "streamable-http", newHTTPServer(config.HTTPAddr, handler), sc.Logger())
}
