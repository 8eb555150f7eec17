// file: internal/mcp/state/machine_test.go
package state

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoosis/ouramcp/internal/logging"
	"github.com/dkoosis/ouramcp/internal/mcp/mcperrors"
)

func setupTestMCPStateMachine(t *testing.T) *MCPStateMachine {
	t.Helper()
	m, err := NewMCPStateMachine(logging.GetNoopLogger())
	require.NoError(t, err, "Failed to create new MCP state machine for test.")
	require.NotNil(t, m, "NewMCPStateMachine should return a non-nil instance.")
	return m
}

func TestMCPStateMachine_NewMCPStateMachine_StartsUninitialized(t *testing.T) {
	m := setupTestMCPStateMachine(t)
	assert.Equal(t, StateUninitialized, m.CurrentState(), "Initial state should be Uninitialized.")
}

func TestMCPStateMachine_ValidTransitions_FollowLifecycle(t *testing.T) {
	m := setupTestMCPStateMachine(t)
	ctx := context.Background()

	require.NoError(t, m.Transition(ctx, EventInitializeRequest, nil),
		"Transition on EventInitializeRequest should succeed.")
	assert.Equal(t, StateInitializing, m.CurrentState(), "State should be Initializing.")

	require.NoError(t, m.Transition(ctx, EventClientInitialized, nil),
		"Transition on EventClientInitialized should succeed.")
	assert.Equal(t, StateInitialized, m.CurrentState(), "State should be Initialized.")

	require.NoError(t, m.Transition(ctx, EventMCPRequest, nil),
		"Transition on EventMCPRequest should succeed.")
	assert.Equal(t, StateInitialized, m.CurrentState(), "State should remain Initialized.")
	require.NoError(t, m.Transition(ctx, EventMCPNotification, nil),
		"Transition on EventMCPNotification should succeed.")
	assert.Equal(t, StateInitialized, m.CurrentState(), "State should remain Initialized.")

	require.NoError(t, m.Transition(ctx, EventShutdownRequest, nil),
		"Transition on EventShutdownRequest should succeed.")
	assert.Equal(t, StateShuttingDown, m.CurrentState(), "State should be ShuttingDown.")

	require.NoError(t, m.Transition(ctx, EventExitNotification, nil),
		"Transition on EventExitNotification should succeed.")
	assert.Equal(t, StateShutdown, m.CurrentState(), "State should be Shutdown.")
	assert.True(t, IsTerminal(m.CurrentState()), "Shutdown should be a terminal state.")
}

func TestMCPStateMachine_ValidateMethod_AllowsCorrectSequence(t *testing.T) {
	m := setupTestMCPStateMachine(t)
	ctx := context.Background()

	assert.NoError(t, m.ValidateMethod("initialize"), "Initialize should be allowed in Uninitialized state.")
	assert.NoError(t, m.ValidateMethod("ping"), "Ping should be allowed in any state.")

	_ = m.Transition(ctx, EventInitializeRequest, nil)
	require.Equal(t, StateInitializing, m.CurrentState())

	assert.NoError(t, m.ValidateMethod("notifications/initialized"),
		"notifications/initialized should be allowed in Initializing state.")

	_ = m.Transition(ctx, EventClientInitialized, nil)
	require.Equal(t, StateInitialized, m.CurrentState())

	assert.NoError(t, m.ValidateMethod("tools/list"), "tools/list should be allowed in Initialized state.")
	assert.NoError(t, m.ValidateMethod("tools/call"), "tools/call should be allowed in Initialized state.")
	assert.NoError(t, m.ValidateMethod("resources/read"), "resources/read should be allowed in Initialized state.")
	assert.NoError(t, m.ValidateMethod("$/cancelRequest"), "$/cancelRequest should be allowed in Initialized state.")
	assert.NoError(t, m.ValidateMethod("shutdown"), "shutdown should be allowed in Initialized state.")
	assert.NoError(t, m.ValidateMethod("exit"), "exit should be allowed in Initialized state.")

	_ = m.Transition(ctx, EventShutdownRequest, nil)
	require.Equal(t, StateShuttingDown, m.CurrentState())

	assert.NoError(t, m.ValidateMethod("exit"), "exit should be allowed in ShuttingDown state.")
}

func TestMCPStateMachine_ValidateMethod_RejectsIncorrectSequence(t *testing.T) {
	m := setupTestMCPStateMachine(t)
	ctx := context.Background()

	assertErrorCode(t, mcperrors.ErrRequestSequence, m.ValidateMethod("tools/list"))
	assertErrorCode(t, mcperrors.ErrRequestSequence, m.ValidateMethod("shutdown"))
	assertErrorCode(t, mcperrors.ErrRequestSequence, m.ValidateMethod("exit"))
	assertErrorCode(t, mcperrors.ErrRequestSequence, m.ValidateMethod("notifications/initialized"))

	_ = m.Transition(ctx, EventInitializeRequest, nil)
	require.Equal(t, StateInitializing, m.CurrentState())

	assertErrorCode(t, mcperrors.ErrRequestSequence, m.ValidateMethod("initialize"))
	assertErrorCode(t, mcperrors.ErrRequestSequence, m.ValidateMethod("tools/list"))

	_ = m.Transition(ctx, EventClientInitialized, nil)
	require.Equal(t, StateInitialized, m.CurrentState())

	assertErrorCode(t, mcperrors.ErrRequestSequence, m.ValidateMethod("initialize"))

	_ = m.Transition(ctx, EventShutdownRequest, nil)
	require.Equal(t, StateShuttingDown, m.CurrentState())

	assertErrorCode(t, mcperrors.ErrRequestSequence, m.ValidateMethod("tools/list"))
	assertErrorCode(t, mcperrors.ErrRequestSequence, m.ValidateMethod("shutdown"))

	_ = m.Transition(ctx, EventExitNotification, nil)
	require.Equal(t, StateShutdown, m.CurrentState())

	assertErrorCode(t, mcperrors.ErrRequestSequence, m.ValidateMethod("tools/list"))
	assertErrorCode(t, mcperrors.ErrRequestSequence, m.ValidateMethod("initialize"))
}

func TestMCPStateMachine_Reset_ReturnsToUninitialized(t *testing.T) {
	m := setupTestMCPStateMachine(t)
	ctx := context.Background()

	_ = m.Transition(ctx, EventInitializeRequest, nil)
	_ = m.Transition(ctx, EventClientInitialized, nil)
	require.Equal(t, StateInitialized, m.CurrentState())

	require.NoError(t, m.Reset())

	assert.Equal(t, StateUninitialized, m.CurrentState(), "State should be reset to Uninitialized.")
	assert.NoError(t, m.ValidateMethod("initialize"), "Initialize should be allowed after reset.")
	require.Error(t, m.ValidateMethod("tools/list"), "tools/list should be rejected after reset.")
}

// assertErrorCode checks the error is a *mcperrors.BaseError with the expected code.
func assertErrorCode(t *testing.T, expectedCode mcperrors.ErrorCode, err error) {
	t.Helper()
	require.Error(t, err, "Expected an error but got nil.")
	var mcpErr *mcperrors.BaseError
	require.ErrorAs(t, err, &mcpErr, "Error should be assertable as *mcperrors.BaseError. Got: %T", err)
	assert.Equal(t, expectedCode, mcpErr.Code, "MCP error code mismatch.")
}
