package logging

import (
	"bytes"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeHost(t *testing.T) {
	tests := []struct {
		name     string
		host     string
		expected string
	}{
		{
			name:     "empty host",
			host:     "",
			expected: "<empty>",
		},
		{
			name:     "hostname without IP",
			host:     "https://api.cluster.example.com:6443",
			expected: "https://api.cluster.example.com:6443",
		},
		{
			name:     "IP address URL",
			host:     "https://192.168.1.100:6443",
			expected: "https://<redacted-ip>:6443",
		},
		{
			name:     "bare IP address",
			host:     "192.168.1.100",
			expected: "<redacted-ip>",
		},
		{
			name:     "IP with port no scheme",
			host:     "10.0.0.1:6443",
			expected: "<redacted-ip>:6443",
		},
		// IPv6 tests
		{
			name:     "IPv6 address URL with brackets",
			host:     "https://[2001:db8::1]:6443",
			expected: "https://<redacted-ip>:6443",
		},
		{
			name:     "bare IPv6 address",
			host:     "2001:db8::1",
			expected: "<redacted-ip>",
		},
		{
			name:     "IPv6 with brackets no scheme",
			host:     "[2001:db8:85a3::8a2e:370:7334]:6443",
			expected: "<redacted-ip>:6443",
		},
		{
			name:     "full IPv6 address",
			host:     "2001:0db8:85a3:0000:0000:8a2e:0370:7334",
			expected: "<redacted-ip>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SanitizeHost(tt.host)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestSlogAttributes(t *testing.T) {
	// Test that all attribute functions return correct types and keys
	t.Run("Operation", func(t *testing.T) {
		attr := Operation("list")
		assert.Equal(t, KeyOperation, attr.Key)
		assert.Equal(t, "list", attr.Value.String())
	})

	t.Run("Namespace", func(t *testing.T) {
		attr := Namespace("default")
		assert.Equal(t, KeyNamespace, attr.Key)
		assert.Equal(t, "default", attr.Value.String())
	})

	t.Run("ResourceType", func(t *testing.T) {
		attr := ResourceType("pods")
		assert.Equal(t, KeyResourceType, attr.Key)
		assert.Equal(t, "pods", attr.Value.String())
	})

	t.Run("ResourceName", func(t *testing.T) {
		attr := ResourceName("my-pod")
		assert.Equal(t, KeyResourceName, attr.Key)
		assert.Equal(t, "my-pod", attr.Value.String())
	})


	t.Run("Status", func(t *testing.T) {
		attr := Status(StatusSuccess)
		assert.Equal(t, KeyStatus, attr.Key)
		assert.Equal(t, StatusSuccess, attr.Value.String())
	})

	t.Run("Err with nil", func(t *testing.T) {
		attr := Err(nil)
		assert.Equal(t, KeyError, attr.Key)
		assert.Equal(t, "", attr.Value.String())
	})

	t.Run("Err with error", func(t *testing.T) {
		testErr := fmt.Errorf("test error message")
		attr := Err(testErr)
		assert.Equal(t, KeyError, attr.Key)
		assert.Equal(t, "test error message", attr.Value.String())
	})

	t.Run("SanitizedErr with nil", func(t *testing.T) {
		attr := SanitizedErr(nil)
		assert.Equal(t, KeyError, attr.Key)
		assert.Equal(t, "", attr.Value.String())
	})

	t.Run("SanitizedErr with IP in error message", func(t *testing.T) {
		testErr := fmt.Errorf("failed to connect to https://192.168.1.100:6443: connection refused")
		attr := SanitizedErr(testErr)
		assert.Equal(t, KeyError, attr.Key)
		assert.NotContains(t, attr.Value.String(), "192.168.1.100", "IP address should be sanitized")
		assert.Contains(t, attr.Value.String(), "<redacted-ip>", "IP should be replaced with redacted marker")
		assert.Contains(t, attr.Value.String(), "connection refused", "rest of error should be preserved")
	})

	t.Run("SanitizedErr with hostname only", func(t *testing.T) {
		testErr := fmt.Errorf("failed to connect to https://api.cluster.example.com:6443")
		attr := SanitizedErr(testErr)
		assert.Equal(t, KeyError, attr.Key)
		assert.Contains(t, attr.Value.String(), "api.cluster.example.com", "hostname should be preserved")
	})


	t.Run("Host", func(t *testing.T) {
		attr := Host("https://192.168.1.1:6443")
		assert.Equal(t, KeyHost, attr.Key)
		assert.NotContains(t, attr.Value.String(), "192.168")
	})

}

func TestWithOperationLogger(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, nil)
	logger := slog.New(handler)

	opLogger := WithOperation(logger, "test.operation")
	opLogger.Info("test message")

	output := buf.String()
	assert.Contains(t, output, "operation")
	assert.Contains(t, output, "test.operation")
}

func TestWithToolLogger(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, nil)
	logger := slog.New(handler)

	toolLogger := WithTool(logger, "list_pods")
	toolLogger.Info("test message")

	output := buf.String()
	assert.Contains(t, output, "tool")
	assert.Contains(t, output, "list_pods")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLevel(tt.level))
		})
	}
}

func TestNewLogger(t *testing.T) {
	t.Run("json format", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf, "info", FormatJSON)
		logger.Info("hello", Action("deploy"))

		output := buf.String()
		assert.Contains(t, output, `"msg":"hello"`)
		assert.Contains(t, output, `"action":"deploy"`)
	})

	t.Run("text format", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf, "info", FormatText)
		logger.Info("hello", Target("nginx"))

		output := buf.String()
		assert.Contains(t, output, "msg=hello")
		assert.Contains(t, output, "target=nginx")
	})

	t.Run("debug suppressed at info level", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf, "info", FormatJSON)
		logger.Debug("hidden")
		assert.Empty(t, buf.String())
	})
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abc...(3 more bytes)", Truncate("abcdef", 3))
	assert.Equal(t, "unbounded", Truncate("unbounded", 0))
}
