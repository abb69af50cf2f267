// Package cmd provides the command-line interface for mcp-k8s.
//
// Command Structure:
//
//	mcp-k8s [flags]                 # Starts the MCP server (default)
//	mcp-k8s serve [flags]           # Explicitly starts the MCP server
//	mcp-k8s chat [flags]            # Runs only the chat command loop
//	mcp-k8s version                 # Shows version information
//	mcp-k8s self-update             # Updates to latest release
//
// The serve command supports the stdio, sse and streamable-http transports.
// With --enable-chat it also runs the chat dispatch loop behind a WebSocket
// bridge on --chat-addr. The MCP transport, the chat loop, the bridge and the
// metrics server run in one errgroup; when any of them stops the others are
// shut down.
//
//	mcp-k8s serve --transport streamable-http --http-addr :9000 --enable-chat
//	mcp-k8s chat --chat-transport console --namespace games
//
// Logs are written to stderr so the stdio transport owns stdout.
package cmd
