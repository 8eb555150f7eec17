// file: internal/transport/transport_test.go
package transport

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoosis/ouramcp/internal/logging"
)

func TestValidateMessage_ValidRequest_Succeeds(t *testing.T) {
	msg := []byte(`{"jsonrpc":"2.0","id":1,"method":"tools/list","params":{}}`)
	assert.NoError(t, ValidateMessage(msg), "A well-formed request should validate.")
}

func TestValidateMessage_ValidNotification_Succeeds(t *testing.T) {
	msg := []byte(`{"jsonrpc":"2.0","method":"notifications/initialized"}`)
	assert.NoError(t, ValidateMessage(msg), "A well-formed notification should validate.")
}

func TestValidateMessage_InvalidCases_ReturnError(t *testing.T) {
	cases := []struct {
		name    string
		message string
	}{
		{"MalformedJSON", `{"jsonrpc":"2.0",`},
		{"MissingVersion", `{"id":1,"method":"ping"}`},
		{"WrongVersion", `{"jsonrpc":"1.0","id":1,"method":"ping"}`},
		{"EmptyMethod", `{"jsonrpc":"2.0","id":1,"method":""}`},
		{"ReservedMethod", `{"jsonrpc":"2.0","id":1,"method":"rpc.internal"}`},
		{"NonStringMethod", `{"jsonrpc":"2.0","id":1,"method":42}`},
		{"BadParamsType", `{"jsonrpc":"2.0","id":1,"method":"ping","params":"nope"}`},
		{"RequestWithResult", `{"jsonrpc":"2.0","id":1,"method":"ping","result":{}}`},
		{"ResponseWithoutID", `{"jsonrpc":"2.0","result":{}}`},
		{"ResponseWithBoth", `{"jsonrpc":"2.0","id":1,"result":{},"error":{"code":-1,"message":"x"}}`},
		{"ResponseWithNeither", `{"jsonrpc":"2.0","id":1}`},
		{"ErrorNotObject", `{"jsonrpc":"2.0","id":1,"error":"boom"}`},
		{"ErrorMissingCode", `{"jsonrpc":"2.0","id":1,"error":{"message":"x"}}`},
		{"ErrorMissingMessage", `{"jsonrpc":"2.0","id":1,"error":{"code":-1}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Error(t, ValidateMessage([]byte(tc.message)),
				"Message should fail validation.")
		})
	}
}

func TestNDJSONTransport_ReadMessage_ReturnsSingleLine(t *testing.T) {
	input := `{"jsonrpc":"2.0","id":1,"method":"ping"}` + "\n"
	tr := NewNDJSONTransport(strings.NewReader(input), io.Discard, nil, logging.GetNoopLogger())

	msg, err := tr.ReadMessage(context.Background())
	require.NoError(t, err, "Reading a valid NDJSON line should succeed.")
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":1,"method":"ping"}`, string(msg),
		"Read message should match the written line.")
}

func TestNDJSONTransport_ReadMessage_EOF_ReturnsClosedError(t *testing.T) {
	tr := NewNDJSONTransport(strings.NewReader(""), io.Discard, nil, logging.GetNoopLogger())

	_, err := tr.ReadMessage(context.Background())
	require.Error(t, err, "Reading from an empty stream should fail.")

	var transportErr *Error
	require.ErrorAs(t, err, &transportErr, "Error should be a transport.Error.")
	assert.Equal(t, ErrTransportClosed, transportErr.Code, "EOF should map to ErrTransportClosed.")
}

func TestNDJSONTransport_WriteMessage_AppendsNewline(t *testing.T) {
	var buf bytes.Buffer
	tr := NewNDJSONTransport(strings.NewReader(""), &buf, nil, logging.GetNoopLogger())

	msg := []byte(`{"jsonrpc":"2.0","id":1,"result":{}}`)
	require.NoError(t, tr.WriteMessage(context.Background(), msg),
		"Writing a valid message should succeed.")
	assert.Equal(t, string(msg)+"\n", buf.String(),
		"Written message should be newline-terminated.")
}

func TestNDJSONTransport_WriteAfterClose_ReturnsClosedError(t *testing.T) {
	var buf bytes.Buffer
	tr := NewNDJSONTransport(strings.NewReader(""), &buf, nil, logging.GetNoopLogger())
	require.NoError(t, tr.Close(), "Close should succeed.")

	err := tr.WriteMessage(context.Background(), []byte(`{"jsonrpc":"2.0","id":1,"result":{}}`))
	assert.True(t, IsClosedError(err), "Write after close should yield a closed error.")
}

// recordingCloser tracks whether Close was called.
type recordingCloser struct {
	closed bool
}

func (c *recordingCloser) Close() error {
	c.closed = true
	return nil
}

func TestNDJSONTransport_Close_ClosesUnderlyingCloser(t *testing.T) {
	var buf bytes.Buffer
	closer := &recordingCloser{}
	tr := NewNDJSONTransport(strings.NewReader(""), &buf, closer, logging.GetNoopLogger())

	require.NoError(t, tr.Close(), "Closing the transport should succeed.")
	assert.True(t, closer.closed, "The underlying closer should be closed with the transport.")
}

func TestInMemoryTransportPair_RoundTrip(t *testing.T) {
	pair := NewInMemoryTransportPair()
	t.Cleanup(pair.CloseChannels)

	ctx := context.Background()
	msg := []byte(`{"jsonrpc":"2.0","id":7,"method":"ping"}`)

	require.NoError(t, pair.ClientTransport.WriteMessage(ctx, msg),
		"Client write should succeed.")

	got, err := pair.ServerTransport.ReadMessage(ctx)
	require.NoError(t, err, "Server read should succeed.")
	assert.Equal(t, msg, got, "Server should receive exactly what the client wrote.")
}

func TestMapErrorToJSONRPC_ParseError_MapsToStandardCode(t *testing.T) {
	err := NewParseError([]byte("not json"), nil)
	code, message, _ := MapErrorToJSONRPC(err)
	assert.Equal(t, JSONRPCParseError, code, "Parse errors should map to -32700.")
	assert.Equal(t, "Parse error", message, "Parse errors should use the standard message.")
}
