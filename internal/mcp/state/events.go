// file: internal/mcp/state/events.go
package state

import "github.com/dkoosis/ouramcp/internal/fsm"

// MCP events representing triggers for state transitions. These correspond
// to specific MCP requests or notifications being received.
const (
	EventInitializeRequest      fsm.Event = "rcvd_initialize_request"       // Client sent 'initialize'.
	EventClientInitialized      fsm.Event = "rcvd_client_initialized_notif" // Client sent 'notifications/initialized'.
	EventShutdownRequest        fsm.Event = "rcvd_shutdown_request"         // Client sent 'shutdown'.
	EventExitNotification       fsm.Event = "rcvd_exit_notification"        // Client sent 'exit'.
	EventMCPRequest             fsm.Event = "rcvd_mcp_request"              // Any other request (e.g., tools/list).
	EventMCPNotification        fsm.Event = "rcvd_mcp_notification"         // Any other notification (e.g., $/cancelRequest).
	EventTransportErrorOccurred fsm.Event = "transport_error"               // An underlying transport error happened.
)

// EventForMethod maps an incoming MCP method string to a corresponding FSM
// event. Returns an empty event if the method doesn't have a specific
// lifecycle event; such methods are gated on the Initialized state instead.
func EventForMethod(method string) fsm.Event {
	switch method {
	case "initialize":
		return EventInitializeRequest
	case "shutdown":
		return EventShutdownRequest
	case "exit":
		return EventExitNotification
	case "notifications/initialized":
		return EventClientInitialized
	default:
		return ""
	}
}
