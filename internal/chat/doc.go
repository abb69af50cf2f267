// Package chat provides the chat channels the dispatch loop reads
// commands from and posts replies to.
//
// Three implementations are available:
//
//   - Bridge: a WebSocket endpoint a game-side relay connects to. Inbound
//     frames are {"message": "..."} objects (plain text is also accepted),
//     outbound frames are {"message": "...", "timestamp": "..."}.
//   - Console: reads lines from an io.Reader and writes replies to an
//     io.Writer.
//   - Memory: an in-process queue used by tests and embedders.
//
// Poll never blocks. Events are returned in arrival order and each event
// is returned exactly once.
package chat
