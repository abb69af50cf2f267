package tools

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/prathamesh1010/mcp-k8s/internal/instrumentation"
	"github.com/prathamesh1010/mcp-k8s/internal/logging"
	"github.com/prathamesh1010/mcp-k8s/internal/server"
)

// ToolHandler is the signature for MCP tool handler functions that take ServerContext.
type ToolHandler func(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error)

// WrapWithAuditLogging wraps a tool handler so that every invocation is
// traced, counted in the tool metrics and logged with its outcome.
//
// A result with IsError set counts as rejected (bad arguments or blocked
// by non-destructive mode). A JSON body reporting success=false counts as
// an error.
func WrapWithAuditLogging(
	toolName string,
	handler ToolHandler,
	sc *server.ServerContext,
) func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if sc.IsShutdown() {
			return nil, server.ErrServerShutdown
		}

		args := request.GetArguments()
		namespace, _ := args["namespace"].(string)
		podName, _ := args["pod_name"].(string)

		attrs := instrumentation.NewSpanAttributeBuilder().
			WithNamespace(namespace).
			WithResource("pod", podName).
			Build()
		ctx, span := instrumentation.StartToolSpan(ctx, toolName, attrs...)
		defer span.End()

		logger := logging.WithTool(sc.Logger(), toolName)
		start := time.Now()

		result, err := handler(ctx, request, sc)

		status := outcome(result, err)
		duration := time.Since(start)
		sc.Metrics().RecordToolCall(ctx, toolName, status, duration)

		logAttrs := []any{
			logging.Namespace(namespace),
			logging.Status(status),
			slog.Duration(logging.KeyDuration, duration),
		}
		if podName != "" {
			logAttrs = append(logAttrs, logging.ResourceName(podName))
		}
		if traceID := instrumentation.GetTraceID(ctx); traceID != "" {
			logAttrs = append(logAttrs, slog.String(logging.KeyTraceID, traceID))
		}

		switch status {
		case instrumentation.StatusSuccess:
			instrumentation.SetSpanSuccess(span)
			logger.Info("tool call completed", logAttrs...)
		case instrumentation.StatusRejected:
			logger.Info("tool call rejected", append(logAttrs, slog.String(logging.KeyError, resultText(result)))...)
		default:
			failure := err
			if failure == nil {
				failure = errors.New(resultText(result))
			}
			instrumentation.SetSpanError(span, failure)
			logger.Warn("tool call failed", append(logAttrs, logging.Err(failure))...)
		}

		return result, err
	}
}

func outcome(result *mcp.CallToolResult, err error) string {
	switch {
	case err != nil || result == nil:
		return instrumentation.StatusError
	case result.IsError:
		return instrumentation.StatusRejected
	}
	if body, ok := decodeResponse(result); ok && !body.Success {
		return instrumentation.StatusError
	}
	return instrumentation.StatusSuccess
}

// resultText returns the first text content of result.
func resultText(result *mcp.CallToolResult) string {
	if result == nil {
		return ""
	}
	for _, content := range result.Content {
		if text, ok := content.(mcp.TextContent); ok {
			return text.Text
		}
	}
	return ""
}
