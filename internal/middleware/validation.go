// file: internal/middleware/validation.go
package middleware

import (
	"context"
	"encoding/json"

	"github.com/cockroachdb/errors"

	"github.com/dkoosis/ouramcp/internal/logging"
	"github.com/dkoosis/ouramcp/internal/mcptypes"
	"github.com/dkoosis/ouramcp/internal/transport"
)

// ValidationMiddleware checks that incoming messages are structurally valid
// JSON-RPC 2.0 before they reach the method handlers.
type ValidationMiddleware struct {
	options mcptypes.ValidationOptions
	logger  logging.Logger
}

// DefaultValidationOptions returns the standard middleware configuration:
// validation enabled, strict, with ping exempted.
func DefaultValidationOptions() mcptypes.ValidationOptions {
	return mcptypes.ValidationOptions{
		Enabled:    true,
		StrictMode: true,
		SkipTypes:  map[string]bool{"ping": true},
	}
}

// NewValidationMiddleware creates validation middleware with the given options.
func NewValidationMiddleware(options mcptypes.ValidationOptions, logger logging.Logger) *ValidationMiddleware {
	if logger == nil {
		logger = logging.GetNoopLogger()
	}
	return &ValidationMiddleware{
		options: options,
		logger:  logger.WithField("middleware", "validation"),
	}
}

// Middleware returns the chainable middleware function.
func (m *ValidationMiddleware) Middleware() mcptypes.MiddlewareFunc {
	return func(next mcptypes.MessageHandler) mcptypes.MessageHandler {
		return func(ctx context.Context, message []byte) ([]byte, error) {
			return m.handleMessage(ctx, message, next)
		}
	}
}

func (m *ValidationMiddleware) handleMessage(ctx context.Context, message []byte, next mcptypes.MessageHandler) ([]byte, error) {
	if next == nil {
		return nil, errors.New("validation middleware reached end of chain without a final handler")
	}
	if !m.options.Enabled {
		return next(ctx, message)
	}

	method, reqID := identifyMessage(message)
	if method != "" && m.options.SkipTypes[method] {
		return next(ctx, message)
	}

	if err := transport.ValidateMessage(message); err != nil {
		if !m.options.StrictMode {
			m.logger.Warn("Message failed validation, continuing in non-strict mode.",
				"method", method, "error", err)
			return next(ctx, message)
		}
		m.logger.Debug("Rejecting invalid message.", "method", method, "error", err)
		return createValidationErrorResponse(reqID, err)
	}

	return next(ctx, message)
}

// identifyMessage extracts the method and request ID from a raw message
// without full validation. Either may be absent.
func identifyMessage(message []byte) (string, json.RawMessage) {
	var probe struct {
		Method string          `json:"method"`
		ID     json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(message, &probe); err != nil {
		return "", nil
	}
	return probe.Method, probe.ID
}

// createValidationErrorResponse builds a JSON-RPC error response for a message
// that failed structural validation. The error code comes from the transport
// error mapping.
func createValidationErrorResponse(reqID json.RawMessage, validationErr error) ([]byte, error) {
	code, errMsg, data := transport.MapErrorToJSONRPC(validationErr)

	if len(reqID) == 0 || string(reqID) == "null" {
		reqID = json.RawMessage("0")
	}

	payload := mcptypes.JSONRPCErrorPayload{
		Code:    code,
		Message: errMsg,
	}
	if len(data) > 0 {
		payload.Data = data
	}

	response := mcptypes.JSONRPCErrorContainer{
		JSONRPC: "2.0",
		ID:      reqID,
		Error:   payload,
	}

	responseBytes, err := json.Marshal(response)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal validation error response")
	}
	return responseBytes, nil
}
