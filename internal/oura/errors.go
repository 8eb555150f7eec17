// file: internal/oura/errors.go
package oura

import (
	"fmt"
)

// ConfigurationError indicates the client could not be constructed, most
// commonly because no access token was supplied. It is fatal at startup.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return "oura configuration error: " + e.Message
}

// NewConfigurationError creates a ConfigurationError with the given message.
func NewConfigurationError(message string) error {
	return &ConfigurationError{Message: message}
}

// UpstreamHTTPError indicates the Oura API answered with a non-2xx status.
// It carries the status code and the raw response body so callers can
// surface both to the user.
type UpstreamHTTPError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamHTTPError) Error() string {
	return fmt.Sprintf("oura API returned HTTP %d: %s", e.StatusCode, e.Body)
}

// NewUpstreamHTTPError creates an UpstreamHTTPError from a status code and
// response body.
func NewUpstreamHTTPError(statusCode int, body []byte) error {
	return &UpstreamHTTPError{StatusCode: statusCode, Body: string(body)}
}

// TransportError indicates a network-level failure (DNS, TLS, connection
// reset) before any HTTP status was received.
type TransportError struct {
	Cause error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("oura API transport failure: %v", e.Cause)
}

// Unwrap returns the underlying cause.
func (e *TransportError) Unwrap() error {
	return e.Cause
}

// NewTransportError wraps a network-level failure.
func NewTransportError(cause error) error {
	return &TransportError{Cause: cause}
}
