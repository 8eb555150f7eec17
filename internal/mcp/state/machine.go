// file: internal/mcp/state/machine.go
package state

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/dkoosis/ouramcp/internal/fsm"
	"github.com/dkoosis/ouramcp/internal/logging"
	"github.com/dkoosis/ouramcp/internal/mcp/mcperrors"
)

// MCPStateMachine represents the state machine for an MCP connection
// lifecycle. It embeds the generic FSM interface for core functionality.
type MCPStateMachine struct {
	fsm.FSM
	logger logging.Logger
}

// NewMCPStateMachine creates and configures a new state machine for the MCP
// lifecycle.
func NewMCPStateMachine(logger logging.Logger) (*MCPStateMachine, error) {
	if logger == nil {
		logger = logging.GetNoopLogger()
	}
	log := logger.WithField("component", "mcp_state_machine")

	fsmBuilder := fsm.NewFSM(StateUninitialized, log)

	// Initialization flow.
	fsmBuilder.AddTransition(fsm.Transition{
		From:  []fsm.State{StateUninitialized},
		Event: EventInitializeRequest,
		To:    StateInitializing,
	})
	fsmBuilder.AddTransition(fsm.Transition{
		From:  []fsm.State{StateInitializing},
		Event: EventClientInitialized,
		To:    StateInitialized,
	})

	// Operational flow: requests and notifications keep the connection in
	// the Initialized state.
	fsmBuilder.AddTransition(fsm.Transition{
		From:  []fsm.State{StateInitialized},
		Event: EventMCPRequest,
		To:    StateInitialized,
	})
	fsmBuilder.AddTransition(fsm.Transition{
		From:  []fsm.State{StateInitialized},
		Event: EventMCPNotification,
		To:    StateInitialized,
	})

	// Shutdown flow.
	fsmBuilder.AddTransition(fsm.Transition{
		From:  []fsm.State{StateInitialized},
		Event: EventShutdownRequest,
		To:    StateShuttingDown,
	})
	fsmBuilder.AddTransition(fsm.Transition{
		From:  []fsm.State{StateInitialized, StateShuttingDown},
		Event: EventExitNotification,
		To:    StateShutdown,
	})

	// Transport errors terminate the connection from any live state.
	fsmBuilder.AddTransition(fsm.Transition{
		From:  []fsm.State{StateUninitialized, StateInitializing, StateInitialized, StateShuttingDown},
		Event: EventTransportErrorOccurred,
		To:    StateShutdown,
	})

	if err := fsmBuilder.Build(); err != nil {
		log.Error("Failed to build MCP state machine.", "error", err)
		return nil, errors.Wrap(err, "failed to build MCP state machine configuration")
	}

	log.Info("MCP state machine built successfully.")
	return &MCPStateMachine{
		FSM:    fsmBuilder,
		logger: log,
	}, nil
}

// ValidateMethod checks if receiving a specific MCP method is valid in the
// current state. It maps the method name to a lifecycle event and checks if
// that event can trigger a transition from the current state.
// Returns an ErrRequestSequence protocol error if the method is not allowed.
func (m *MCPStateMachine) ValidateMethod(method string) error {
	currentState := m.CurrentState()

	// Ping is a liveness probe, permitted in any state.
	if method == "ping" {
		return nil
	}

	event := EventForMethod(method)

	// Methods without a lifecycle event are standard operational requests
	// or notifications, allowed only once the handshake has completed.
	if event == "" {
		if currentState == StateInitialized {
			return nil
		}
		m.logger.Warn("Received standard MCP method in non-initialized state.",
			"method", method, "state", currentState)
		return mcperrors.NewProtocolError(
			mcperrors.ErrRequestSequence,
			fmt.Sprintf("Method '%s' not allowed before initialization (state: '%s')", method, currentState),
			nil,
			map[string]interface{}{"method": method, "state": currentState},
		)
	}

	// CanTransition only checks that the event is defined for the state;
	// guards are evaluated during the actual Transition call.
	if !m.CanTransition(event) {
		m.logger.Warn("Received out-of-sequence MCP lifecycle method.",
			"method", method, "event", event, "state", currentState)
		return mcperrors.NewProtocolError(
			mcperrors.ErrRequestSequence,
			fmt.Sprintf("Method '%s' (event '%s') not allowed in current state '%s'", method, event, currentState),
			nil,
			map[string]interface{}{"method": method, "event": event, "state": currentState},
		)
	}

	return nil
}

// TriggerEvent attempts to transition the state machine based on an event.
func (m *MCPStateMachine) TriggerEvent(ctx context.Context, event fsm.Event, data interface{}) error {
	m.logger.Debug("Triggering FSM event.", "event", event, "state", m.CurrentState())
	if err := m.Transition(ctx, event, data); err != nil {
		m.logger.Error("Failed to trigger FSM event.", "event", event, "state", m.CurrentState(), "error", err)
		return err
	}
	return nil
}
