// Package executor turns single Kubernetes calls into caller-facing results.
//
// Each Executor method performs exactly one API request through a
// k8s.Client. Failures are not returned as errors: they come back as
// Result{Success: false} with the failure text in Message, so both the
// chat loop and the MCP tools can relay them as-is. Every call is logged,
// traced and counted.
package executor
