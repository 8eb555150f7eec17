// Package mcptypes defines shared types and interfaces for the MCP (Model Context Protocol)
// server and middleware components. It acts as a neutral package that can be imported by
// both mcp and middleware packages, preventing circular dependencies.
// file: internal/mcptypes/types.go
package mcptypes

import (
	"encoding/json"
)

// Implementation describes the name and version of an MCP client or server.
type Implementation struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// ClientCapabilities describes features supported by the client.
type ClientCapabilities struct {
	Roots    *RootsCapability    `json:"roots,omitempty"`
	Sampling *SamplingCapability `json:"sampling,omitempty"`
}

// RootsCapability indicates client support for filesystem roots.
type RootsCapability struct {
	ListChanged bool `json:"listChanged,omitempty"`
}

// SamplingCapability indicates client support for LLM sampling requests.
type SamplingCapability struct{}

// ServerCapabilities describes features supported by the server.
type ServerCapabilities struct {
	Tools     *ToolsCapability     `json:"tools,omitempty"`
	Resources *ResourcesCapability `json:"resources,omitempty"`
	Logging   *LoggingCapability   `json:"logging,omitempty"`
}

// ToolsCapability indicates server support for tools.
type ToolsCapability struct {
	ListChanged bool `json:"listChanged,omitempty"`
}

// ResourcesCapability indicates server support for resources.
type ResourcesCapability struct {
	ListChanged bool `json:"listChanged,omitempty"`
	Subscribe   bool `json:"subscribe,omitempty"`
}

// LoggingCapability indicates server support for log level control.
type LoggingCapability struct{}

// InitializeRequest represents the parameters for the 'initialize' request.
type InitializeRequest struct {
	ProtocolVersion string             `json:"protocolVersion"`
	ClientInfo      Implementation     `json:"clientInfo"`
	Capabilities    ClientCapabilities `json:"capabilities"`
}

// InitializeResult represents the successful result of an 'initialize' request.
type InitializeResult struct {
	ProtocolVersion string             `json:"protocolVersion"`
	ServerInfo      *Implementation    `json:"serverInfo"`
	Capabilities    ServerCapabilities `json:"capabilities"`
	Instructions    string             `json:"instructions,omitempty"`
}

// Tool represents a tool that the server offers to the client.
type Tool struct {
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	InputSchema json.RawMessage  `json:"inputSchema"`
	Annotations *ToolAnnotations `json:"annotations,omitempty"`
}

// ToolAnnotations contains additional information about a tool.
type ToolAnnotations struct {
	Title           string `json:"title,omitempty"`
	ReadOnlyHint    bool   `json:"readOnlyHint,omitempty"`
	IdempotentHint  bool   `json:"idempotentHint,omitempty"`
	OpenWorldHint   bool   `json:"openWorldHint,omitempty"`
	DestructiveHint bool   `json:"destructiveHint,omitempty"`
}

// ListToolsResult represents the successful result of a 'tools/list' request.
type ListToolsResult struct {
	Tools      []Tool `json:"tools"`
	NextCursor string `json:"nextCursor,omitempty"`
}

// CallToolRequest represents the parameters for the 'tools/call' request.
// Arguments stay raw; the tool handler parses its own argument shape.
type CallToolRequest struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// CallToolResult represents the result of a tool call. Tool failures are
// reported through IsError with explanatory content, not as protocol errors.
type CallToolResult struct {
	Content []Content `json:"content"`
	IsError bool      `json:"isError,omitempty"`
}

// Resource represents a resource that the server offers to the client.
type Resource struct {
	Name        string `json:"name"`
	URI         string `json:"uri"`
	Description string `json:"description,omitempty"`
	MimeType    string `json:"mimeType,omitempty"`
}

// ListResourcesResult represents the successful result of a 'resources/list' request.
type ListResourcesResult struct {
	Resources  []Resource `json:"resources"`
	NextCursor string     `json:"nextCursor,omitempty"`
}

// ReadResourceRequest represents the parameters for the 'resources/read' request.
type ReadResourceRequest struct {
	URI string `json:"uri"`
}

// ReadResourceResult represents the successful result of a 'resources/read' request.
type ReadResourceResult struct {
	Contents []interface{} `json:"contents"`
}

// ResourceContents represents the base contents of a resource.
type ResourceContents struct {
	URI      string `json:"uri"`
	MimeType string `json:"mimeType,omitempty"`
}

// TextResourceContents represents the contents of a text resource.
type TextResourceContents struct {
	ResourceContents
	Text string `json:"text"`
}

// BlobResourceContents represents the contents of a binary resource.
type BlobResourceContents struct {
	ResourceContents
	Blob string `json:"blob"` // Base64 encoded.
}

// Content represents a content item in a tool result or message.
// Fulfilled by specific content types like TextContent.
type Content interface {
	GetType() string
}

// TextContent represents a text content item.
type TextContent struct {
	Type string `json:"type"` // Always "text".
	Text string `json:"text"`
}

// GetType returns the type of content ("text").
func (t TextContent) GetType() string {
	return "text"
}

// JSONRPCErrorPayload represents the 'error' object in a JSON-RPC error response.
type JSONRPCErrorPayload struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// JSONRPCErrorContainer represents the full JSON-RPC error response object.
type JSONRPCErrorContainer struct {
	JSONRPC string              `json:"jsonrpc"`
	Error   JSONRPCErrorPayload `json:"error"`
	ID      json.RawMessage     `json:"id"`
}
