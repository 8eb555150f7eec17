// Package mcperrors defines domain-specific error types and codes for the MCP
// (Model Context Protocol) layer. These errors carry more context than standard
// Go errors and map internal issues to appropriate JSON-RPC error responses.
// file: internal/mcp/mcperrors/errors.go
package mcperrors

import (
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/dkoosis/ouramcp/internal/transport"
)

// ErrorCode defines domain-specific error codes for the MCP layer.
type ErrorCode int

// Domain-specific error codes for the MCP layer.
const (
	// Auth errors (1000-1999).
	ErrAuthFailure ErrorCode = 1000 + iota
	ErrAuthExpired
	ErrAuthInvalid
	ErrAuthMissing

	// Oura API errors (2000-2999).
	ErrOuraAPIFailure ErrorCode = 2000 + iota
	ErrOuraInvalidResponse
	ErrOuraServiceUnavailable
	ErrOuraUnauthorized

	// Resource errors (3000-3999).
	ErrResourceNotFound ErrorCode = 3000 + iota
	ErrResourceForbidden
	ErrResourceInvalid

	// Protocol errors (4000-4999).
	ErrProtocolInvalid ErrorCode = 4000 + iota

	// Internal errors mapped to JSON-RPC standard codes.
	ErrParseError     ErrorCode = -32700
	ErrInvalidRequest ErrorCode = -32600
	ErrMethodNotFound ErrorCode = -32601
	ErrInvalidParams  ErrorCode = -32602
	ErrInternalError  ErrorCode = -32603

	// Server-defined protocol errors within the reserved range (-32000 to -32099).
	ErrRequestSequence ErrorCode = -32001 // Invalid message sequence for current state.
	ErrServiceNotFound ErrorCode = -32002 // Routing found no service for the request.
)

// BaseError is the common base for custom MCP error types. It implements
// the error interface and adds structured context like codes and key-value
// details.
type BaseError struct {
	// Code is a numeric error code for categorization.
	Code ErrorCode
	// Message is a human-readable error message intended primarily for logging.
	Message string
	// Cause is the underlying error that led to this error.
	Cause error
	// Context contains additional key-value details relevant to the error.
	Context map[string]interface{}
}

// Error implements the standard Go error interface.
func (e *BaseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("MCPError (Code: %d): %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("MCPError (Code: %d): %s", e.Code, e.Message)
}

// Unwrap returns the underlying error, enabling errors.Is and errors.As.
func (e *BaseError) Unwrap() error {
	return e.Cause
}

// WithContext adds a key-value pair to the error's context map.
// Returns the modified error pointer for chaining.
func (e *BaseError) WithContext(key string, value interface{}) *BaseError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// Each concrete error type embeds BaseError by value, so its own Unwrap must
// expose the embedded base: the promoted BaseError.Unwrap would skip straight
// to Cause and errors.As would never see a *BaseError in the chain.

// AuthError represents an authentication or authorization error.
type AuthError struct {
	BaseError
}

// Unwrap exposes the embedded BaseError to errors.As/errors.Is.
func (e *AuthError) Unwrap() error { return &e.BaseError }

// OuraError represents an error related to interactions with the Oura API.
type OuraError struct {
	BaseError
}

// Unwrap exposes the embedded BaseError to errors.As/errors.Is.
func (e *OuraError) Unwrap() error { return &e.BaseError }

// ResourceError represents an error related to accessing an MCP resource.
type ResourceError struct {
	BaseError
}

// Unwrap exposes the embedded BaseError to errors.As/errors.Is.
func (e *ResourceError) Unwrap() error { return &e.BaseError }

// ProtocolError represents a violation of MCP protocol rules or sequence.
type ProtocolError struct {
	BaseError
}

// Unwrap exposes the embedded BaseError to errors.As/errors.Is.
func (e *ProtocolError) Unwrap() error { return &e.BaseError }

// InvalidParamsError represents an error due to invalid method parameters.
type InvalidParamsError struct {
	BaseError
}

// Unwrap exposes the embedded BaseError to errors.As/errors.Is.
func (e *InvalidParamsError) Unwrap() error { return &e.BaseError }

// MethodNotFoundError represents an error when a requested method is not found.
type MethodNotFoundError struct {
	BaseError
}

// Unwrap exposes the embedded BaseError to errors.As/errors.Is.
func (e *MethodNotFoundError) Unwrap() error { return &e.BaseError }

// ServiceNotFoundError represents an error when a requested service cannot be
// found in the registry.
type ServiceNotFoundError struct {
	BaseError
}

// Unwrap exposes the embedded BaseError to errors.As/errors.Is.
func (e *ServiceNotFoundError) Unwrap() error { return &e.BaseError }

// InternalError represents a generic internal server error.
type InternalError struct {
	BaseError
}

// Unwrap exposes the embedded BaseError to errors.As/errors.Is.
func (e *InternalError) Unwrap() error { return &e.BaseError }

// ParseError represents a JSON parsing error.
type ParseError struct {
	BaseError
}

// Unwrap exposes the embedded BaseError to errors.As/errors.Is.
func (e *ParseError) Unwrap() error { return &e.BaseError }

// InvalidRequestError represents an invalid JSON-RPC request structure error.
type InvalidRequestError struct {
	BaseError
}

// Unwrap exposes the embedded BaseError to errors.As/errors.Is.
func (e *InvalidRequestError) Unwrap() error { return &e.BaseError }

// NewAuthError creates a new authentication error. Use constants like
// ErrAuthFailure, ErrAuthExpired, ErrAuthInvalid, ErrAuthMissing for the code.
func NewAuthError(code ErrorCode, message string, cause error, context map[string]interface{}) error {
	if code < 1000 || code > 1999 {
		code = ErrAuthFailure
	}
	return &AuthError{
		BaseError: BaseError{
			Code:    code,
			Message: message,
			Cause:   errors.WithStack(cause),
			Context: context,
		},
	}
}

// NewOuraError creates a new Oura API error. Use constants like
// ErrOuraAPIFailure, ErrOuraInvalidResponse for the code.
func NewOuraError(code ErrorCode, message string, cause error, context map[string]interface{}) error {
	if code < 2000 || code > 2999 {
		code = ErrOuraAPIFailure
	}
	return &OuraError{
		BaseError: BaseError{
			Code:    code,
			Message: message,
			Cause:   errors.WithStack(cause),
			Context: context,
		},
	}
}

// NewResourceError creates a new resource error. Use constants like
// ErrResourceNotFound, ErrResourceForbidden, ErrResourceInvalid for the code.
func NewResourceError(code ErrorCode, message string, cause error, context map[string]interface{}) error {
	if code < 3000 || code > 3999 {
		code = ErrResourceNotFound
	}
	return &ResourceError{
		BaseError: BaseError{
			Code:    code,
			Message: message,
			Cause:   errors.WithStack(cause),
			Context: context,
		},
	}
}

// NewProtocolError creates a new protocol error with the provided code.
func NewProtocolError(code ErrorCode, message string, cause error, context map[string]interface{}) error {
	return &ProtocolError{
		BaseError: BaseError{
			Code:    code,
			Message: message,
			Cause:   errors.WithStack(cause),
			Context: context,
		},
	}
}

// NewInvalidParamsError creates an error for invalid parameters (maps to -32602).
func NewInvalidParamsError(message string, cause error, context map[string]interface{}) error {
	return &InvalidParamsError{
		BaseError: BaseError{
			Code:    ErrInvalidParams,
			Message: message,
			Cause:   errors.WithStack(cause),
			Context: context,
		},
	}
}

// NewMethodNotFoundError creates an error for method not found (maps to -32601).
func NewMethodNotFoundError(message string, cause error, context map[string]interface{}) error {
	return &MethodNotFoundError{
		BaseError: BaseError{
			Code:    ErrMethodNotFound,
			Message: message,
			Cause:   errors.WithStack(cause),
			Context: context,
		},
	}
}

// NewServiceNotFoundError creates an error when a service lookup fails.
func NewServiceNotFoundError(message string, cause error, context map[string]interface{}) error {
	return &ServiceNotFoundError{
		BaseError: BaseError{
			Code:    ErrServiceNotFound,
			Message: message,
			Cause:   errors.WithStack(cause),
			Context: context,
		},
	}
}

// NewInternalError creates a generic internal server error (maps to -32603).
func NewInternalError(message string, cause error, context map[string]interface{}) error {
	return &InternalError{
		BaseError: BaseError{
			Code:    ErrInternalError,
			Message: message,
			Cause:   errors.WithStack(cause),
			Context: context,
		},
	}
}

// NewParseError creates a JSON parse error (maps to -32700).
func NewParseError(message string, cause error, context map[string]interface{}) error {
	return &ParseError{
		BaseError: BaseError{
			Code:    ErrParseError,
			Message: message,
			Cause:   errors.WithStack(cause),
			Context: context,
		},
	}
}

// NewInvalidRequestError creates an invalid request structure error (maps to -32600).
func NewInvalidRequestError(message string, cause error, context map[string]interface{}) error {
	return &InvalidRequestError{
		BaseError: BaseError{
			Code:    ErrInvalidRequest,
			Message: message,
			Cause:   errors.WithStack(cause),
			Context: context,
		},
	}
}

// MapMCPErrorToJSONRPC translates an MCP error (or any error) into JSON-RPC
// error components.
func MapMCPErrorToJSONRPC(err error) (code int, message string, data map[string]interface{}) {
	data = make(map[string]interface{})

	var baseErr *BaseError
	if !errors.As(err, &baseErr) {
		code = transport.JSONRPCInternalError
		message = "An internal server error occurred."
		data["goErrorType"] = fmt.Sprintf("%T", err)
		data["detail"] = err.Error()
		return code, message, data
	}

	switch baseErr.Code {
	case ErrParseError:
		code = transport.JSONRPCParseError
		message = "Parse error."
		data["detail"] = baseErr.Message
	case ErrInvalidRequest:
		code = transport.JSONRPCInvalidRequest
		message = "Invalid Request."
		data["detail"] = baseErr.Message
	case ErrMethodNotFound:
		code = transport.JSONRPCMethodNotFound
		message = "Method not found."
		data["detail"] = baseErr.Message
	case ErrInvalidParams:
		code = transport.JSONRPCInvalidParams
		message = "Invalid params."
		data["detail"] = baseErr.Message
	case ErrInternalError:
		code = transport.JSONRPCInternalError
		message = "Internal error."
		data["detail"] = baseErr.Message

	// Implementation-defined server errors (-32000 to -32099).
	case ErrServiceNotFound:
		code = -32000
		message = "Service unavailable."
		data["detail"] = baseErr.Message
	case ErrRequestSequence:
		code = -32001
		message = "Invalid Request Sequence."
		data["detail"] = baseErr.Message
	case ErrResourceNotFound:
		code = -32002
		message = "Resource not found."
		data["detail"] = baseErr.Message
	case ErrResourceInvalid:
		code = -32003
		message = "Invalid resource identifier."
		data["detail"] = baseErr.Message
	case ErrAuthFailure, ErrAuthInvalid, ErrAuthExpired, ErrAuthMissing:
		code = -32010
		message = "Authentication required or failed."
		data["detail"] = baseErr.Message
	case ErrOuraAPIFailure, ErrOuraInvalidResponse, ErrOuraServiceUnavailable:
		code = -32020
		message = "Could not communicate with the Oura API."
		data["detail"] = baseErr.Message
	case ErrOuraUnauthorized:
		code = -32021
		message = "Oura API rejected the credential."
		data["detail"] = baseErr.Message
	case ErrProtocolInvalid:
		code = transport.JSONRPCInvalidRequest
		message = "Invalid Request (Protocol)."
		data["detail"] = baseErr.Message
		data["internalCode"] = baseErr.Code

	default:
		code = transport.JSONRPCInternalError
		message = "An unspecified internal error occurred."
		data["detail"] = baseErr.Message
		data["internalCode"] = baseErr.Code
	}

	// Merge context from the BaseError, limited to fields safe for clients.
	if baseErr.Context != nil {
		for k, v := range baseErr.Context {
			switch k {
			case "uri", "toolName", "method", "service", "state":
				if _, exists := data[k]; !exists {
					data[k] = v
				}
			default:
			}
		}
	}

	if len(data) == 0 {
		data = nil
	}

	return code, message, data
}
