// file: internal/mcp/handlers_core.go
package mcp

import (
	"context"
	"encoding/json"

	"github.com/cockroachdb/errors"

	"github.com/dkoosis/ouramcp/internal/mcptypes"
)

// handleInitialize handles the initialize request. The advertised protocol
// version is fixed; a client requesting a different revision still receives
// this server's version per the MCP version negotiation rules.
func (s *Server) handleInitialize(_ context.Context, params json.RawMessage) (json.RawMessage, error) {
	var req mcptypes.InitializeRequest
	if err := json.Unmarshal(params, &req); err != nil {
		return nil, errors.Wrap(err, "invalid params for initialize")
	}
	s.logger.Info("Handling initialize request.",
		"clientName", req.ClientInfo.Name,
		"clientVersion", req.ClientInfo.Version,
		"requestedProtocolVersion", req.ProtocolVersion)

	caps := mcptypes.ServerCapabilities{
		Tools:     &mcptypes.ToolsCapability{ListChanged: false},
		Resources: &mcptypes.ResourcesCapability{ListChanged: false, Subscribe: false},
	}

	result := mcptypes.InitializeResult{
		ProtocolVersion: protocolVersion,
		ServerInfo: &mcptypes.Implementation{
			Name:    s.config.Server.Name,
			Version: s.version,
		},
		Capabilities: caps,
		Instructions: "Provides read access to Oura Ring health data: sleep, activity, readiness, SpO2, workouts, sessions, and tags.",
	}

	resultBytes, err := json.Marshal(result)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal InitializeResult")
	}
	return resultBytes, nil
}

// handlePing handles the ping liveness request.
func (s *Server) handlePing(_ context.Context, _ json.RawMessage) (json.RawMessage, error) {
	s.logger.Debug("Handling ping request.")
	return json.RawMessage(`{}`), nil
}

// handleShutdown handles the shutdown request. The connection stays open
// until the client sends the exit notification.
func (s *Server) handleShutdown(_ context.Context, _ json.RawMessage) (json.RawMessage, error) {
	s.logger.Info("Handling shutdown request, awaiting exit notification.")
	return json.RawMessage(`null`), nil
}

// handleExitNotification handles the exit notification by stopping the
// processing loop.
func (s *Server) handleExitNotification(_ context.Context, _ json.RawMessage) error {
	s.logger.Info("Received exit notification, stopping server.")
	if s.cancelServe != nil {
		s.cancelServe()
	}
	return nil
}

// handleInitializedNotification handles the notifications/initialized
// notification completing the handshake. The lifecycle transition itself
// happens in advanceLifecycle.
func (s *Server) handleInitializedNotification(_ context.Context, _ json.RawMessage) error {
	s.logger.Info("Client initialization complete, connection operational.")
	return nil
}

// handleCancelRequestNotification acknowledges a $/cancelRequest
// notification. In-flight request cancellation is not supported; the
// notification is logged and discarded.
func (s *Server) handleCancelRequestNotification(_ context.Context, params json.RawMessage) error {
	var req struct {
		ID json.RawMessage `json:"id"`
	}
	_ = json.Unmarshal(params, &req)
	s.logger.Debug("Received cancellation notification, ignoring.", "targetID", string(req.ID))
	return nil
}
