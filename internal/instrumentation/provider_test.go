package instrumentation

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

func TestNewProvider_Disabled(t *testing.T) {
	provider, err := NewProvider(context.Background(), Config{Enabled: false})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if provider.Enabled() {
		t.Error("expected provider to be disabled")
	}
	if provider.Metrics() != nil {
		t.Error("expected nil metrics when disabled")
	}
	if provider.PrometheusHandler() != nil {
		t.Error("expected nil prometheus handler when disabled")
	}
	if err := provider.Shutdown(context.Background()); err != nil {
		t.Errorf("unexpected shutdown error: %v", err)
	}
}

func TestNewProvider_NilSafe(t *testing.T) {
	var provider *Provider
	if provider.Enabled() || provider.Metrics() != nil || provider.PrometheusHandler() != nil {
		t.Error("nil provider should behave as disabled")
	}
	if err := provider.Shutdown(context.Background()); err != nil {
		t.Errorf("unexpected shutdown error: %v", err)
	}
}

func TestNewProvider_InvalidConfig(t *testing.T) {
	_, err := NewProvider(context.Background(), Config{
		Enabled:         true,
		MetricsExporter: "graphite",
		TracingExporter: TracingExporterNone,
	})
	if err == nil {
		t.Fatal("expected an error for unknown exporter")
	}
}

func TestNewProvider_Prometheus(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()

	provider, err := NewProvider(ctx, Config{
		ServiceName:     "mcp-k8s-test",
		ServiceVersion:  "test",
		Enabled:         true,
		MetricsExporter: MetricsExporterPrometheus,
		TracingExporter: TracingExporterNone,
	}, WithMetricReader(reader))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer func() { _ = provider.Shutdown(ctx) }()

	if !provider.Enabled() {
		t.Error("expected provider to be enabled")
	}
	if provider.Config().ServiceName != "mcp-k8s-test" {
		t.Errorf("unexpected service name %q", provider.Config().ServiceName)
	}

	provider.Metrics().RecordChatCommand(ctx, "list", StatusSuccess)

	if points := counterPoints(t, reader, "chat_commands_total"); len(points) != 1 {
		t.Fatalf("expected chat command recorded, got %d points", len(points))
	}

	handler := provider.PrometheusHandler()
	if handler == nil {
		t.Fatal("expected prometheus handler")
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "chat_commands_total") {
		t.Error("expected chat_commands_total in scrape output")
	}
}

func TestNewProvider_StdoutExporters(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer

	provider, err := NewProvider(ctx, Config{
		ServiceName:       "mcp-k8s-test",
		Enabled:           true,
		MetricsExporter:   MetricsExporterStdout,
		TracingExporter:   TracingExporterStdout,
		TraceSamplingRate: 1.0,
	}, WithExportWriter(&buf))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if provider.PrometheusHandler() != nil {
		t.Error("expected no prometheus handler for stdout exporter")
	}

	provider.Metrics().RecordToolCall(ctx, "list_pods", StatusSuccess, time.Millisecond)
	_, span := StartToolSpan(ctx, "list_pods")
	span.End()

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := provider.Shutdown(shutdownCtx); err != nil {
		t.Fatalf("unexpected shutdown error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "mcp_tool_calls_total") {
		t.Error("expected metrics to be flushed to the export writer")
	}
	if !strings.Contains(out, "tool.list_pods") {
		t.Error("expected span to be flushed to the export writer")
	}
}
