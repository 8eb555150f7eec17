// Package state defines the specific states and events for the MCP connection lifecycle.
// file: internal/mcp/state/states.go
package state

import "github.com/dkoosis/ouramcp/internal/fsm"

// MCP states based on the protocol lifecycle.
const (
	StateUninitialized fsm.State = "uninitialized" // Connection established, pre-initialization.
	StateInitializing  fsm.State = "initializing"  // Initialize request received, awaiting initialized notification.
	StateInitialized   fsm.State = "initialized"   // Handshake complete, ready for general requests.
	StateShuttingDown  fsm.State = "shuttingDown"  // Shutdown request received, awaiting exit.
	StateShutdown      fsm.State = "shutdown"      // Exit notification received, connection effectively closed.
)

// IsTerminal returns true if the state represents a terminal state from which
// no further transitions should normally occur.
func IsTerminal(s fsm.State) bool {
	return s == StateShutdown
}
