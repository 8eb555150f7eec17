// Package services defines the common interface for backend service
// integrations, allowing the core MCP server to interact with them generically.
// file: internal/services/service.go
package services

import (
	"context"
	"encoding/json"

	"github.com/dkoosis/ouramcp/internal/mcptypes"
)

// Service defines the standard interface for backend service integrations.
// Each service implementation provides its specific capabilities (tools,
// resources) and handles requests routed to it by the main MCP server.
// Configuration specific to a service is handled during its instantiation.
type Service interface {
	// GetName returns the unique identifier for the service (e.g., "oura").
	// This name is used for routing requests and should be lowercase.
	GetName() string

	// GetTools returns the MCP Tool definitions provided by this service.
	GetTools() []mcptypes.Tool

	// GetResources returns the MCP Resource definitions provided by this
	// service. Resource URIs use a scheme related to the service name
	// (e.g., "oura://personal_info").
	GetResources() []mcptypes.Resource

	// ReadResource handles requests to read data from a resource provided by
	// this service. Returns the resource content (typically []interface{}
	// containing mcptypes.TextResourceContents) or an error if reading fails.
	ReadResource(ctx context.Context, uri string) ([]interface{}, error)

	// CallTool handles requests to execute a tool provided by this service.
	// Returns an error only if *handling* the call fails; failures within
	// the tool's own logic (e.g., an upstream API error) are reported inside
	// the returned result with IsError=true.
	CallTool(ctx context.Context, name string, args json.RawMessage) (*mcptypes.CallToolResult, error)

	// Initialize performs any necessary setup for the service after
	// instantiation, such as verifying credentials. Called once before the
	// service is used by the MCP server.
	Initialize(ctx context.Context) error

	// Shutdown performs cleanup tasks for the service before the
	// application exits.
	Shutdown() error

	// IsAuthenticated returns true if the service currently has the
	// credentials needed to perform its operations.
	IsAuthenticated() bool
}
