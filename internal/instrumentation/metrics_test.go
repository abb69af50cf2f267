package instrumentation

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// newTestMetrics returns metrics backed by a ManualReader.
func newTestMetrics(t *testing.T, detailedLabels bool) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	metrics, err := NewMetrics(provider.Meter("test"), detailedLabels)
	if err != nil {
		t.Fatalf("expected no error creating metrics, got %v", err)
	}
	return metrics, reader
}

// counterPoints collects the data points of an Int64 sum by name.
func counterPoints(t *testing.T, reader *sdkmetric.ManualReader, name string) []metricdata.DataPoint[int64] {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect failed: %v", err)
	}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("metric %s is %T, not an int64 sum", name, m.Data)
			}
			return sum.DataPoints
		}
	}
	return nil
}

func hasAttr(set attribute.Set, key, value string) bool {
	v, ok := set.Value(attribute.Key(key))
	return ok && v.AsString() == value
}

func TestNewMetrics(t *testing.T) {
	metrics, _ := newTestMetrics(t, false)

	if metrics.httpRequestsTotal == nil {
		t.Error("expected httpRequestsTotal to be initialized")
	}
	if metrics.httpRequestDuration == nil {
		t.Error("expected httpRequestDuration to be initialized")
	}
	if metrics.k8sOperationsTotal == nil {
		t.Error("expected k8sOperationsTotal to be initialized")
	}
	if metrics.k8sPodOperationsTotal == nil {
		t.Error("expected k8sPodOperationsTotal to be initialized")
	}
	if metrics.toolCallsTotal == nil {
		t.Error("expected toolCallsTotal to be initialized")
	}
	if metrics.chatCommandsTotal == nil {
		t.Error("expected chatCommandsTotal to be initialized")
	}
	if metrics.chatConnections == nil {
		t.Error("expected chatConnections to be initialized")
	}
	if metrics.detailedLabels {
		t.Error("expected detailedLabels to be false")
	}
}

func TestMetrics_RecordHTTPRequest(t *testing.T) {
	metrics, reader := newTestMetrics(t, false)

	metrics.RecordHTTPRequest(context.Background(), "GET", "/healthz", 200, 5*time.Millisecond)

	points := counterPoints(t, reader, "http_requests_total")
	if len(points) != 1 {
		t.Fatalf("expected 1 data point, got %d", len(points))
	}
	if points[0].Value != 1 {
		t.Errorf("expected count 1, got %d", points[0].Value)
	}
	if !hasAttr(points[0].Attributes, attrStatus, "200") {
		t.Error("expected status=200 attribute")
	}
}

func TestMetrics_RecordK8sOperation_Labels(t *testing.T) {
	tests := []struct {
		name           string
		detailedLabels bool
		wantNamespace  bool
	}{
		{"low cardinality", false, false},
		{"detailed", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metrics, reader := newTestMetrics(t, tt.detailedLabels)

			metrics.RecordK8sOperation(context.Background(), OperationScale, "deployments", "default", StatusSuccess, time.Second)

			points := counterPoints(t, reader, "kubernetes_operations_total")
			if len(points) != 1 {
				t.Fatalf("expected 1 data point, got %d", len(points))
			}
			if !hasAttr(points[0].Attributes, attrOperation, OperationScale) {
				t.Error("expected operation attribute")
			}
			if got := hasAttr(points[0].Attributes, attrNamespace, "default"); got != tt.wantNamespace {
				t.Errorf("namespace attribute present = %v, want %v", got, tt.wantNamespace)
			}
		})
	}
}

func TestMetrics_RecordPodOperation(t *testing.T) {
	metrics, reader := newTestMetrics(t, false)

	metrics.RecordPodOperation(context.Background(), OperationLogs, "default", StatusError, time.Second)

	points := counterPoints(t, reader, "kubernetes_pod_operations_total")
	if len(points) != 1 || !hasAttr(points[0].Attributes, attrStatus, StatusError) {
		t.Fatalf("unexpected pod operation points: %+v", points)
	}
}

func TestMetrics_RecordToolCall(t *testing.T) {
	metrics, reader := newTestMetrics(t, false)

	metrics.RecordToolCall(context.Background(), "list_pods", StatusSuccess, time.Millisecond)
	metrics.RecordToolCall(context.Background(), "list_pods", StatusSuccess, time.Millisecond)

	points := counterPoints(t, reader, "mcp_tool_calls_total")
	if len(points) != 1 {
		t.Fatalf("expected 1 data point, got %d", len(points))
	}
	if points[0].Value != 2 {
		t.Errorf("expected count 2, got %d", points[0].Value)
	}
	if !hasAttr(points[0].Attributes, attrTool, "list_pods") {
		t.Error("expected tool attribute")
	}
}

func TestMetrics_RecordChatCommand(t *testing.T) {
	metrics, reader := newTestMetrics(t, false)

	metrics.RecordChatCommand(context.Background(), "deploy", StatusSuccess)
	metrics.RecordChatCommand(context.Background(), "none", StatusRejected)

	points := counterPoints(t, reader, "chat_commands_total")
	if len(points) != 2 {
		t.Fatalf("expected 2 data points, got %d", len(points))
	}
}

func TestMetrics_ChatConnections(t *testing.T) {
	metrics, reader := newTestMetrics(t, false)
	ctx := context.Background()

	metrics.IncrementChatConnections(ctx, "websocket")
	metrics.IncrementChatConnections(ctx, "websocket")
	metrics.DecrementChatConnections(ctx, "websocket")

	points := counterPoints(t, reader, "chat_bridge_connections")
	if len(points) != 1 {
		t.Fatalf("expected 1 data point, got %d", len(points))
	}
	if points[0].Value != 1 {
		t.Errorf("expected 1 connection, got %d", points[0].Value)
	}
}

func TestMetrics_NilReceiver(t *testing.T) {
	var metrics *Metrics
	ctx := context.Background()

	// None of these should panic.
	metrics.RecordHTTPRequest(ctx, "GET", "/", 200, time.Second)
	metrics.RecordK8sOperation(ctx, OperationList, "pods", "default", StatusSuccess, time.Second)
	metrics.RecordPodOperation(ctx, OperationList, "default", StatusSuccess, time.Second)
	metrics.RecordToolCall(ctx, "list_pods", StatusSuccess, time.Second)
	metrics.RecordChatCommand(ctx, "list", StatusSuccess)
	metrics.IncrementChatConnections(ctx, "websocket")
	metrics.DecrementChatConnections(ctx, "websocket")
}

func TestMetrics_ZeroValue(t *testing.T) {
	metrics := &Metrics{}
	metrics.RecordHTTPRequest(context.Background(), "GET", "/", 200, time.Second)
	metrics.RecordChatCommand(context.Background(), "list", StatusSuccess)
}

func TestMetrics_ConcurrentRecording(t *testing.T) {
	metrics, reader := newTestMetrics(t, false)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			metrics.RecordChatCommand(ctx, "list", StatusSuccess)
		}()
	}
	wg.Wait()

	points := counterPoints(t, reader, "chat_commands_total")
	if len(points) != 1 || points[0].Value != 50 {
		t.Fatalf("expected a single point with value 50, got %+v", points)
	}
}
