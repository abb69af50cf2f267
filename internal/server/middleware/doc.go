// Package middleware provides HTTP middleware for the MCP transports and the
// chat bridge: request metrics, security headers and WebSocket origin checks.
package middleware
