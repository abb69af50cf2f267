// Package logging provides structured logging utilities for mcp-k8s.
//
// This package centralizes logging patterns to ensure consistent, structured logging
// throughout the codebase using the standard library's slog package.
//
// # Key Features
//
//   - Logger construction from level/format flags (NewLogger)
//   - Consistent attribute naming across the tool and chat front-ends
//   - Host/URL sanitization for security
//
// # Usage Patterns
//
// Create a logger with standard attributes:
//
//	logger := logging.WithOperation(slog.Default(), "deployment.scale")
//	logger.Info("scaling deployment",
//	    logging.Namespace("default"),
//	    logging.ResourceName("nginx"))
//
// Chat lines are player-controlled free text; pass them through Truncate
// before attaching them to a log record.
//
// # Security Considerations
//
// API server URLs have IP addresses redacted to prevent topology leakage, and
// SanitizedErr applies the same redaction to error text returned by the API.
package logging
