// file: internal/mcptypes/interfaces.go
package mcptypes

import (
	"context"
)

// MessageHandler is a function type for handling MCP messages.
// It processes a message (as JSON bytes) and returns a response (as JSON bytes)
// or an error if processing fails.
type MessageHandler func(ctx context.Context, message []byte) ([]byte, error)

// MiddlewareFunc is a function that wraps a MessageHandler with additional
// functionality such as validation or logging.
type MiddlewareFunc func(handler MessageHandler) MessageHandler

// Chain represents a middleware chain that can be built and executed.
type Chain interface {
	// Use adds a middleware function to the chain.
	Use(middleware MiddlewareFunc) Chain

	// Handler returns the final composed handler function.
	Handler() MessageHandler
}

// ValidationOptions contains configuration options for validation middleware.
type ValidationOptions struct {
	// Enabled controls whether validation is performed at all. Defaults to true.
	Enabled bool

	// StrictMode enables strict validation of message structures. If false,
	// validation errors are logged but processing continues. If true, validation
	// errors result in immediate JSON-RPC error responses.
	StrictMode bool

	// SkipTypes defines a set of method names (e.g., "ping") for which
	// incoming validation should be skipped.
	SkipTypes map[string]bool
}

// ValidatorInterface defines common operations for a schema validator.
type ValidatorInterface interface {
	// Validate validates data against the schema registered under name.
	Validate(ctx context.Context, name string, data []byte) error

	// HasSchema checks if a schema exists for the given name.
	HasSchema(name string) bool

	// IsInitialized returns whether the validator has been initialized.
	IsInitialized() bool
}
