// Package transport defines interfaces and implementations for sending and
// receiving MCP messages as newline-delimited JSON over byte streams.
// file: internal/transport/transport.go
package transport

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/dkoosis/ouramcp/internal/logging"
)

// MaxMessageSize defines the maximum allowed size for a single JSON-RPC
// message in bytes. This helps prevent memory exhaustion.
const MaxMessageSize = 1024 * 1024 // 1MB.

// Transport defines the interface for sending and receiving JSON-RPC messages.
// Implementations must be concurrency-safe.
type Transport interface {
	// ReadMessage reads a single JSON-RPC message from the transport.
	// It returns the raw message bytes, or an error if reading fails.
	// The context allows for cancellation of long-running reads.
	ReadMessage(ctx context.Context) ([]byte, error)

	// WriteMessage sends a single JSON-RPC message over the transport.
	// The context allows for cancellation of long-running writes.
	WriteMessage(ctx context.Context, message []byte) error

	// Close shuts down the transport, closing any underlying connections.
	// Any blocked Read or Write operations will be unblocked and return errors.
	Close() error
}

func preview(message []byte) string {
	return string(message[:minInt(len(message), 100)])
}

func invalidMessage(message []byte, format string, args ...interface{}) *Error {
	err := NewError(ErrInvalidMessage, fmt.Sprintf(format, args...), nil)
	return err.WithContext("messagePreview", preview(message))
}

// ValidateMessage performs validation on a JSON-RPC message according to the
// JSON-RPC 2.0 specification (https://www.jsonrpc.org/specification).
func ValidateMessage(message []byte) error {
	var msg map[string]interface{}
	if err := json.Unmarshal(message, &msg); err != nil {
		return NewParseError(message, err)
	}

	version, ok := msg["jsonrpc"]
	if !ok {
		return invalidMessage(message, "missing 'jsonrpc' field")
	}
	if version != "2.0" {
		return invalidMessage(message, "unsupported JSON-RPC version %v", version)
	}

	hasMethod := false
	if method, exists := msg["method"]; exists {
		hasMethod = true
		methodStr, ok := method.(string)
		if !ok {
			return invalidMessage(message, "method must be a string")
		}
		if methodStr == "" {
			return invalidMessage(message, "method cannot be empty")
		}
		if strings.HasPrefix(methodStr, "rpc.") {
			return invalidMessage(message, "method names starting with 'rpc.' are reserved")
		}
	}

	hasID := false
	if id, exists := msg["id"]; exists {
		hasID = true
		switch id.(type) {
		case string, float64, nil, json.Number:
		default:
			return invalidMessage(message, "invalid request ID type %T", id)
		}
	}

	_, hasResult := msg["result"]
	errorObj, hasError := msg["error"]

	if hasMethod {
		// Request (with id) or notification (without).
		if params, exists := msg["params"]; exists {
			switch params.(type) {
			case map[string]interface{}, []interface{}:
			default:
				return invalidMessage(message, "params must be an object or array")
			}
		}
		if hasResult {
			return invalidMessage(message, "request or notification cannot contain 'result' field")
		}
		if hasError {
			return invalidMessage(message, "request or notification cannot contain 'error' field")
		}
		return nil
	}

	// Response: must have id and exactly one of result or error.
	if !hasID {
		return invalidMessage(message, "response message must contain 'id' field")
	}
	if hasError {
		if err := validateErrorObject(message, errorObj); err != nil {
			return err
		}
	}
	if !hasResult && !hasError {
		return invalidMessage(message, "response message must contain either 'result' or 'error' field")
	}
	if hasResult && hasError {
		return invalidMessage(message, "response message cannot contain both 'result' and 'error' fields")
	}
	if _, exists := msg["params"]; exists {
		return invalidMessage(message, "response message cannot contain 'params' field")
	}
	return nil
}

func validateErrorObject(message []byte, errorObj interface{}) error {
	errorMap, ok := errorObj.(map[string]interface{})
	if !ok {
		return invalidMessage(message, "error must be an object")
	}
	code, exists := errorMap["code"]
	if !exists {
		return invalidMessage(message, "error object must contain 'code' field")
	}
	switch code.(type) {
	case float64, json.Number:
	default:
		return invalidMessage(message, "error code must be a number")
	}
	text, exists := errorMap["message"]
	if !exists {
		return invalidMessage(message, "error object must contain 'message' field")
	}
	if _, ok := text.(string); !ok {
		return invalidMessage(message, "error message must be a string")
	}
	return nil
}

// minInt returns the smaller of x or y.
func minInt(x, y int) int {
	if x < y {
		return x
	}
	return y
}

// NDJSONTransport implements the Transport interface for newline-delimited
// JSON over arbitrary reader/writer pairs, typically stdin/stdout.
type NDJSONTransport struct {
	reader    *bufio.Reader
	writer    io.Writer
	closer    io.Closer
	logger    logging.Logger
	writeLock sync.Mutex // Ensures atomic writes.
	closed    bool
	closeLock sync.RWMutex
}

// NewNDJSONTransport creates a transport that reads and writes NDJSON
// messages from the provided reader and writer. closer may be nil.
func NewNDJSONTransport(reader io.Reader, writer io.Writer, closer io.Closer, logger logging.Logger) Transport {
	if logger == nil {
		logger = logging.GetNoopLogger()
	}
	return &NDJSONTransport{
		reader: bufio.NewReader(reader),
		writer: writer,
		closer: closer,
		logger: logger.WithField("component", "ndjson_transport"),
	}
}

func (t *NDJSONTransport) isClosed() bool {
	t.closeLock.RLock()
	defer t.closeLock.RUnlock()
	return t.closed
}

// ReadMessage implements Transport.ReadMessage for NDJSON.
// It reads a single line of JSON data delimited by a newline character.
func (t *NDJSONTransport) ReadMessage(ctx context.Context) ([]byte, error) {
	if t.isClosed() {
		return nil, NewClosedError("read")
	}

	type readResult struct {
		data []byte
		err  error
	}
	resultCh := make(chan readResult, 1)

	// Read in a separate goroutine so context cancellation can interrupt.
	go func() {
		var buffer bytes.Buffer
		totalSize := 0
		for {
			line, prefix, err := t.reader.ReadLine()
			if err != nil {
				if err == io.EOF {
					resultCh <- readResult{nil, NewError(ErrTransportClosed, "connection closed by peer", io.EOF)}
				} else {
					resultCh <- readResult{nil, NewError(ErrGeneric, "failed to read message line", err)}
				}
				return
			}

			buffer.Write(line)
			totalSize += len(line)

			if totalSize > MaxMessageSize {
				fragment := buffer.Bytes()
				resultCh <- readResult{nil, NewMessageSizeError(totalSize, MaxMessageSize, fragment[:minInt(len(fragment), 100)])}
				return
			}

			if !prefix {
				break
			}
		}

		message := buffer.Bytes()
		t.logger.Debug("Received raw message.", "size", len(message), "contentPreview", preview(message))

		if err := ValidateMessage(message); err != nil {
			t.logger.Warn("Invalid message received.", "validationError", err)
			resultCh <- readResult{nil, err}
			return
		}

		resultCh <- readResult{message, nil}
	}()

	select {
	case <-ctx.Done():
		t.logger.Warn("Context cancelled while reading message.", "error", ctx.Err())
		return nil, NewTimeoutError("read", ctx.Err())
	case result := <-resultCh:
		if result.err != nil {
			t.logger.Error("Error processing read message.", "error", result.err)
		}
		return result.data, result.err
	}
}

// WriteMessage implements Transport.WriteMessage for NDJSON.
// It writes a single line of JSON data with a trailing newline character.
func (t *NDJSONTransport) WriteMessage(ctx context.Context, message []byte) error {
	if t.isClosed() {
		return NewClosedError("write")
	}

	if err := ValidateMessage(message); err != nil {
		return err
	}

	if len(message) > MaxMessageSize {
		return NewMessageSizeError(len(message), MaxMessageSize, message[:minInt(len(message), 100)])
	}

	resultCh := make(chan error, 1)

	t.writeLock.Lock()
	defer t.writeLock.Unlock()

	go func() {
		buf := make([]byte, len(message)+1)
		copy(buf, message)
		buf[len(message)] = '\n'

		t.logger.Debug("Writing message.", "size", len(buf), "contentPreview", preview(message))
		n, err := t.writer.Write(buf)
		if err == nil && n < len(buf) {
			err = io.ErrShortWrite
		}
		resultCh <- err
	}()

	select {
	case <-ctx.Done():
		t.logger.Warn("Context cancelled while writing message.", "error", ctx.Err())
		return NewTimeoutError("write", ctx.Err())
	case err := <-resultCh:
		if err != nil {
			t.logger.Error("Failed to write message.", "error", err)
			return NewError(ErrGeneric, "failed to write message", err)
		}
		return nil
	}
}

// Close implements Transport.Close.
func (t *NDJSONTransport) Close() error {
	t.closeLock.Lock()
	defer t.closeLock.Unlock()

	if t.closed {
		return nil
	}

	t.logger.Info("Closing NDJSON transport.")
	t.closed = true

	if t.closer != nil {
		if err := t.closer.Close(); err != nil {
			return NewError(ErrTransportClosed, "failed to close underlying transport stream", err)
		}
	}

	return nil
}
