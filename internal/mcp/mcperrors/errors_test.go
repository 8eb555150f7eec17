// file: internal/mcp/mcperrors/errors_test.go
package mcperrors

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoosis/ouramcp/internal/transport"
)

func TestErrorsAs_TypedError_ExposesBaseError(t *testing.T) {
	err := NewMethodNotFoundError("no such method", nil, map[string]interface{}{"method": "bogus"})

	var baseErr *BaseError
	require.True(t, errors.As(err, &baseErr), "errors.As should surface the embedded BaseError.")
	assert.Equal(t, ErrMethodNotFound, baseErr.Code, "The domain code should survive unwrapping.")
	assert.Equal(t, "no such method", baseErr.Message, "The message should survive unwrapping.")
}

func TestErrorsAs_WrappedTypedError_ExposesBaseError(t *testing.T) {
	inner := NewProtocolError(ErrRequestSequence, "request before initialize", nil, nil)
	wrapped := errors.Wrap(inner, "dispatch failed")

	var baseErr *BaseError
	require.True(t, errors.As(wrapped, &baseErr),
		"errors.As should find the BaseError through additional wrapping.")
	assert.Equal(t, ErrRequestSequence, baseErr.Code, "The domain code should survive wrapping.")
}

func TestMapMCPErrorToJSONRPC_MethodNotFound_ReturnsMethodNotFoundCode(t *testing.T) {
	err := NewMethodNotFoundError("method 'bogus' not found", nil, map[string]interface{}{"method": "bogus"})

	code, message, data := MapMCPErrorToJSONRPC(err)
	assert.Equal(t, transport.JSONRPCMethodNotFound, code, "Unknown methods should map to -32601.")
	assert.Equal(t, "Method not found.", message, "The client-facing message should be the standard one.")
	require.NotNil(t, data, "Data should carry the detail.")
	assert.Equal(t, "method 'bogus' not found", data["detail"], "Data should include the internal message.")
	assert.Equal(t, "bogus", data["method"], "Whitelisted context keys should be propagated.")
}

func TestMapMCPErrorToJSONRPC_RequestSequence_ReturnsSequenceCode(t *testing.T) {
	err := NewProtocolError(ErrRequestSequence, "tools/list before initialize", nil, nil)

	code, message, _ := MapMCPErrorToJSONRPC(err)
	assert.Equal(t, -32001, code, "Sequence violations should map to -32001.")
	assert.Equal(t, "Invalid Request Sequence.", message, "The sequence message should be used.")
}

func TestMapMCPErrorToJSONRPC_ResourceNotFound_ReturnsResourceCode(t *testing.T) {
	err := NewResourceError(ErrResourceNotFound, "no such resource", nil, map[string]interface{}{"uri": "oura://nope"})

	code, _, data := MapMCPErrorToJSONRPC(err)
	assert.Equal(t, -32002, code, "Unknown resources should map to -32002.")
	require.NotNil(t, data, "Data should carry context.")
	assert.Equal(t, "oura://nope", data["uri"], "The resource URI should be propagated.")
}

func TestMapMCPErrorToJSONRPC_WrappedTypedError_KeepsDomainCode(t *testing.T) {
	inner := NewMethodNotFoundError("no handler", nil, nil)
	wrapped := errors.Wrap(inner, "routing failed")

	code, _, _ := MapMCPErrorToJSONRPC(wrapped)
	assert.Equal(t, transport.JSONRPCMethodNotFound, code,
		"Wrapping a typed error should not change its JSON-RPC code.")
}

func TestMapMCPErrorToJSONRPC_PlainError_ReturnsInternalError(t *testing.T) {
	code, message, data := MapMCPErrorToJSONRPC(errors.New("boom"))

	assert.Equal(t, transport.JSONRPCInternalError, code, "Untyped errors should map to -32603.")
	assert.Equal(t, "An internal server error occurred.", message, "Untyped errors should get the generic message.")
	require.NotNil(t, data, "Data should carry the detail.")
	assert.Contains(t, data["detail"], "boom", "Data should include the original error text.")
}

func TestMapMCPErrorToJSONRPC_ContextFiltering_DropsUnlistedKeys(t *testing.T) {
	err := NewProtocolError(ErrRequestSequence, "bad sequence", nil, map[string]interface{}{
		"state":  "uninitialized",
		"secret": "do-not-leak",
	})

	_, _, data := MapMCPErrorToJSONRPC(err)
	require.NotNil(t, data, "Data should carry context.")
	assert.Equal(t, "uninitialized", data["state"], "Whitelisted keys should be propagated.")
	assert.NotContains(t, data, "secret", "Unlisted context keys should not reach the client.")
}
