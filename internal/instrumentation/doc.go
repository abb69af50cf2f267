// Package instrumentation provides OpenTelemetry instrumentation for mcp-k8s.
//
// # Metrics
//
// Server/HTTP Metrics:
//   - http_requests_total: Counter of HTTP requests by method, path, and status
//   - http_request_duration_seconds: Histogram of HTTP request durations
//
// Kubernetes Operation Metrics:
//   - kubernetes_operations_total: Counter of deployment operations by operation and status
//   - kubernetes_operation_duration_seconds: Histogram of operation durations
//   - kubernetes_pod_operations_total: Counter of pod operations
//   - kubernetes_pod_operation_duration_seconds: Histogram of pod operation durations
//
// Front-end Metrics:
//   - mcp_tool_calls_total, mcp_tool_call_duration_seconds: MCP tool invocations
//   - chat_commands_total: chat lines by interpreted action and outcome
//   - chat_bridge_connections: connected chat bridge clients
//
// Namespace and resource_type labels are only attached to Kubernetes
// operation metrics when METRICS_DETAILED_LABELS=true.
//
// # Tracing
//
// Spans are created for MCP tool invocations (tool.<name>), chat commands
// (chat.<action>) and Kubernetes API calls (k8s.<operation>).
//
// # Configuration
//
// Instrumentation can be configured via environment variables:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: false)
//   - METRICS_EXPORTER: Metrics exporter type (prometheus, otlp, stdout, default: prometheus)
//   - TRACING_EXPORTER: Tracing exporter type (otlp, stdout, none, default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 0.1)
//   - OTEL_SERVICE_NAME: Service name (default: mcp-k8s)
//
// Stdout exporters write to stderr so the stdio transport is not disturbed.
//
// # Example Usage
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	provider.Metrics().RecordK8sOperation(ctx, "scale", "deployment", "default", "success", time.Since(start))
package instrumentation
