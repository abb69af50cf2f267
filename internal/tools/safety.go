// Package tools provides shared utilities for MCP tool handlers.
package tools

import (
	"fmt"
	"slices"

	"github.com/mark3labs/mcp-go/mcp"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/prathamesh1010/mcp-k8s/internal/server"
)

// CheckMutatingOperation returns an error result when operation is blocked
// by non-destructive mode, nil when it may proceed.
//
// Operations are allowed if:
//   - NonDestructiveMode is disabled, OR
//   - DryRun mode is enabled (the API server validates without persisting), OR
//   - The operation is listed in AllowedOperations
func CheckMutatingOperation(sc *server.ServerContext, operation string) *mcp.CallToolResult {
	config := sc.Config()
	if !config.NonDestructiveMode || config.DryRun {
		return nil
	}
	if slices.Contains(config.AllowedOperations, operation) {
		return nil
	}

	return mcp.NewToolResultError(fmt.Sprintf(
		"%s operations are not allowed in non-destructive mode (use --dry-run to validate without applying)",
		cases.Title(language.English).String(operation),
	))
}
