package tools

import (
	"fmt"
	"math"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/prathamesh1010/mcp-k8s/internal/server"
)

// NamespaceParam declares the optional namespace argument, defaulting to
// the server's configured namespace.
func NamespaceParam(sc *server.ServerContext) mcp.ToolOption {
	return mcp.WithString("namespace",
		mcp.Description("Kubernetes namespace"),
		mcp.DefaultString(sc.Config().DefaultNamespace),
	)
}

// Namespace returns the namespace argument or the configured default.
func Namespace(args map[string]interface{}, sc *server.ServerContext) string {
	if ns, ok := args["namespace"].(string); ok && strings.TrimSpace(ns) != "" {
		return strings.TrimSpace(ns)
	}
	return sc.Config().DefaultNamespace
}

// RequiredString returns a non-empty string argument. When it is missing
// the second return value is the tool error result to send back.
func RequiredString(args map[string]interface{}, name string) (string, *mcp.CallToolResult) {
	value, ok := args[name].(string)
	if !ok || strings.TrimSpace(value) == "" {
		return "", mcp.NewToolResultError(fmt.Sprintf("%s is required", name))
	}
	return strings.TrimSpace(value), nil
}

// OptionalNonNegativeInt returns a whole-number argument, or zero when it
// is absent. JSON numbers arrive as float64.
func OptionalNonNegativeInt(args map[string]interface{}, name string) (int64, *mcp.CallToolResult) {
	raw, ok := args[name]
	if !ok || raw == nil {
		return 0, nil
	}
	value, ok := raw.(float64)
	if !ok || value < 0 || value != math.Trunc(value) || value > math.MaxInt32 {
		return 0, mcp.NewToolResultError(fmt.Sprintf("%s must be a non-negative integer", name))
	}
	return int64(value), nil
}
