// Package server holds the ServerContext shared by the MCP tool handlers and
// the chat dispatch loop, plus the HTTP plumbing around them.
//
// A ServerContext bundles the Kubernetes client, the action executor built on
// top of it, a *slog.Logger, the server Config and the optional
// instrumentation provider. Dependencies are injected with functional
// options:
//
//	sc, err := server.NewServerContext(ctx,
//		server.WithK8sClient(client),
//		server.WithLogger(logger),
//		server.WithDefaultNamespace("games"),
//		server.WithInstrumentationProvider(provider),
//	)
//
// When no executor is supplied one is created from the client, the logger and
// the provider's metrics. Shutdown cancels the context and flushes telemetry;
// it is safe to call more than once.
//
// HealthChecker serves /healthz, /readyz and /healthz/detailed for the HTTP
// transports. MetricsServer exposes the Prometheus endpoint on its own
// address so scrapes stay off the MCP listener.
package server
