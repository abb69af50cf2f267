package tools

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// Response is the common envelope every tool returns. Tools embed it in
// their own response types.
type Response struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// ErrorResponse is returned when the cluster call failed.
func ErrorResponse(message string) Response {
	return Response{Success: false, Error: message}
}

// JSONResult marshals v into a text result.
func JSONResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// decodeResponse reads the envelope back from a JSON text result.
func decodeResponse(result *mcp.CallToolResult) (Response, bool) {
	var body Response
	if err := json.Unmarshal([]byte(resultText(result)), &body); err != nil {
		return Response{}, false
	}
	return body, true
}
