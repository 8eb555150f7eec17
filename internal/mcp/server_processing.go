// file: internal/mcp/server_processing.go
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/dkoosis/ouramcp/internal/mcp/mcperrors"
	"github.com/dkoosis/ouramcp/internal/mcptypes"
	"github.com/dkoosis/ouramcp/internal/transport"
)

// serverProcessing runs the main server loop, reading messages and
// dispatching them through the middleware chain.
func (s *Server) serverProcessing(ctx context.Context, handlerFunc mcptypes.MessageHandler) error {
	if handlerFunc == nil {
		return errors.New("serve called with nil handler function")
	}
	if s.transport == nil {
		return errors.New("serve called but server transport is nil")
	}
	s.logger.Info("Server processing loop started.")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Context canceled, stopping server loop.")
			return ctx.Err()
		default:
			if err := s.processNextMessage(ctx, handlerFunc); err != nil {
				if s.isTerminalError(err) {
					s.logger.Info("Terminal error received, stopping server loop.", "reason", err)
					return err
				}
				s.logger.Error("Non-terminal error processing message.", "error", fmt.Sprintf("%+v", err))
			}
		}
	}
}

// processNextMessage reads, processes, and responds to a single message.
// It returns a non-nil error only for terminal conditions; other processing
// errors are reported to the client as JSON-RPC error responses.
func (s *Server) processNextMessage(ctx context.Context, handlerFunc mcptypes.MessageHandler) error {
	msgBytes, readErr := s.transport.ReadMessage(ctx)
	if readErr != nil {
		return s.handleTransportReadError(readErr)
	}

	method, idStr := s.extractMessageInfo(msgBytes)

	respBytes, handleErr := handlerFunc(ctx, msgBytes)
	if handleErr != nil {
		if writeErr := s.handleProcessingError(ctx, msgBytes, method, idStr, handleErr); writeErr != nil {
			return errors.Wrap(writeErr, "failed to write error response after processing error")
		}
		return nil
	}

	if respBytes != nil {
		if writeErr := s.writeResponse(ctx, respBytes, method, idStr); writeErr != nil {
			return errors.Wrap(writeErr, "failed to write successful response")
		}
	} else if idStr != "null" && idStr != "unknown" {
		s.logger.Warn("Handler returned nil response bytes for a non-notification request.",
			"method", method, "id", idStr)
	}
	return nil
}

// handleTransportReadError decides if a read error is terminal. Non-terminal
// read errors are logged and nil is returned so the loop continues.
func (s *Server) handleTransportReadError(readErr error) error {
	isEOF := errors.Is(readErr, io.EOF)
	isClosed := transport.IsClosedError(readErr)
	isContextDone := errors.Is(readErr, context.Canceled) || errors.Is(readErr, context.DeadlineExceeded)

	if isEOF || isClosed || isContextDone {
		return readErr
	}

	s.logger.Error("Non-terminal error reading message from transport.", "error", fmt.Sprintf("%+v", readErr))
	return nil
}

// handleProcessingError logs a processing error and sends a JSON-RPC error
// response. Returns an error only if writing the response fails.
func (s *Server) handleProcessingError(ctx context.Context, msgBytes []byte, method, idForLog string, handleErr error) error {
	s.logger.Warn("Error processing message via handler.",
		"method", method,
		"requestID", idForLog,
		"error", fmt.Sprintf("%+v", handleErr))

	// Null IDs are not valid in responses; substitute 0.
	responseID := extractRequestID(msgBytes)
	if responseID == nil || string(responseID) == "null" {
		responseID = json.RawMessage("0")
	}

	errRespBytes, creationErr := s.createErrorResponse(handleErr, responseID)
	if creationErr != nil {
		s.logger.Error("Failed to create error response.",
			"creationError", fmt.Sprintf("%+v", creationErr),
			"originalError", fmt.Sprintf("%+v", handleErr))
		return creationErr
	}

	if writeErr := s.writeResponse(ctx, errRespBytes, method, string(responseID)); writeErr != nil {
		s.logger.Error("Failed to write error response.",
			"method", method,
			"responseID", string(responseID),
			"writeError", fmt.Sprintf("%+v", writeErr))
		return writeErr
	}
	return nil
}

// createErrorResponse builds the byte representation of a JSON-RPC error
// response using the MCP error taxonomy mapping.
func (s *Server) createErrorResponse(err error, responseID json.RawMessage) ([]byte, error) {
	code, message, data := mcperrors.MapMCPErrorToJSONRPC(err)
	s.logger.Error("Generating JSON-RPC error response.",
		"jsonrpcErrorCode", code,
		"jsonrpcErrorMessage", message,
		"originalError", fmt.Sprintf("%+v", err),
		"requestID", string(responseID))

	payload := mcptypes.JSONRPCErrorPayload{
		Code:    code,
		Message: message,
	}
	if len(data) > 0 {
		payload.Data = data
	}

	errorResponse := mcptypes.JSONRPCErrorContainer{
		JSONRPC: "2.0",
		ID:      responseID,
		Error:   payload,
	}

	responseBytes, marshalErr := json.Marshal(errorResponse)
	if marshalErr != nil {
		return nil, errors.Wrap(marshalErr, "failed to marshal error response object")
	}
	return responseBytes, nil
}

// writeResponse sends response bytes through the transport.
func (s *Server) writeResponse(ctx context.Context, respBytes []byte, method, id string) error {
	if s.transport == nil {
		return errors.New("cannot write response: transport is nil")
	}
	if writeErr := s.transport.WriteMessage(ctx, respBytes); writeErr != nil {
		s.logger.Error("Failed to write response.",
			"method", method,
			"requestID", id,
			"responseSize", len(respBytes),
			"error", fmt.Sprintf("%+v", writeErr))
		return writeErr
	}
	return nil
}

// isTerminalError checks if an error signifies the end of the connection.
func (s *Server) isTerminalError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, io.EOF) {
		return true
	}
	var transportErr *transport.Error
	if errors.As(err, &transportErr) {
		return transportErr.Code == transport.ErrTransportClosed ||
			transportErr.Code == transport.ErrWriteTimeout ||
			transportErr.Code == transport.ErrReadTimeout
	}
	return transport.IsClosedError(err)
}

// extractMessageInfo gets the method name and ID from raw message bytes for
// logging. The ID is "unknown" if missing, "null" if explicitly null, or the
// raw JSON value otherwise.
func (s *Server) extractMessageInfo(msgBytes []byte) (method string, id string) {
	id = "unknown"

	var parsed struct {
		Method *string         `json:"method"`
		ID     json.RawMessage `json:"id"`
	}
	_ = json.Unmarshal(msgBytes, &parsed)

	if parsed.Method != nil {
		method = *parsed.Method
	}
	if parsed.ID != nil {
		id = string(parsed.ID)
	}
	return method, id
}

// extractRequestID gets the ID from raw message bytes for use in a response.
// Invalid array or object IDs are treated as null.
func extractRequestID(msgBytes []byte) json.RawMessage {
	var request struct {
		ID json.RawMessage `json:"id"`
	}
	_ = json.Unmarshal(msgBytes, &request)
	if request.ID != nil {
		idStr := strings.TrimSpace(string(request.ID))
		if strings.HasPrefix(idStr, "[") || strings.HasPrefix(idStr, "{") {
			return json.RawMessage("null")
		}
		return request.ID
	}
	return json.RawMessage("null")
}
