// file: internal/oura/helpers.go
package oura

import (
	"encoding/json"
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/dkoosis/ouramcp/internal/mcptypes"
)

// --- Tool Result Helpers ---

// successToolResult creates a successful tool result with text content.
func (s *Service) successToolResult(text string) *mcptypes.CallToolResult {
	return &mcptypes.CallToolResult{
		IsError: false,
		Content: []mcptypes.Content{mcptypes.TextContent{Type: "text", Text: text}},
	}
}

// simpleToolErrorResult creates an error tool result with a text message.
func (s *Service) simpleToolErrorResult(errorMessage string) *mcptypes.CallToolResult {
	return &mcptypes.CallToolResult{
		IsError: true,
		Content: []mcptypes.Content{mcptypes.TextContent{Type: "text", Text: errorMessage}},
	}
}

// apiErrorResult renders a client facade failure as tool output. Each error
// variant gets its own text form; upstream HTTP failures embed the status
// code and the raw response body.
func (s *Service) apiErrorResult(action string, err error) *mcptypes.CallToolResult {
	var httpErr *UpstreamHTTPError
	var transportErr *TransportError

	switch {
	case errors.As(err, &httpErr):
		return s.simpleToolErrorResult(fmt.Sprintf(
			"Oura API error while %s: HTTP %d: %s", action, httpErr.StatusCode, httpErr.Body))
	case errors.As(err, &transportErr):
		return s.simpleToolErrorResult(fmt.Sprintf(
			"Could not reach the Oura API while %s: %v.", action, transportErr.Cause))
	default:
		return s.simpleToolErrorResult(fmt.Sprintf("Error %s: %v.", action, err))
	}
}

// invalidToolArgumentsError creates a result for unparseable tool arguments.
func (s *Service) invalidToolArgumentsError(toolName string, err error) *mcptypes.CallToolResult {
	msg := fmt.Sprintf("Invalid arguments for tool '%s': %v.", toolName, err)
	s.logger.Warn("Rejected tool arguments.", "toolName", toolName, "error", err)
	return s.simpleToolErrorResult(msg)
}

// serviceNotInitializedError creates a result when the service has not been
// initialized.
func (s *Service) serviceNotInitializedError() *mcptypes.CallToolResult {
	return s.simpleToolErrorResult("Oura service is not initialized.")
}

// unknownToolError creates a result for an unrecognized tool name.
func (s *Service) unknownToolError(toolName string) *mcptypes.CallToolResult {
	return s.simpleToolErrorResult(fmt.Sprintf("Unknown Oura tool requested: %s.", toolName))
}

// --- Resource Content Helpers ---

// textResourceContent wraps text in the standard resource content envelope.
func textResourceContent(uri, mimeType, text string) []interface{} {
	return []interface{}{
		mcptypes.TextResourceContents{
			ResourceContents: mcptypes.ResourceContents{URI: uri, MimeType: mimeType},
			Text:             text,
		},
	}
}

// jsonResourceContent wraps a raw JSON payload as resource content.
func jsonResourceContent(uri string, payload json.RawMessage) []interface{} {
	return textResourceContent(uri, "application/json", string(payload))
}

// resourceErrorContent renders a facade failure as resource content. Resource
// reads never propagate fetch failures; they report them as text.
func (s *Service) resourceErrorContent(uri, action string, err error) []interface{} {
	var httpErr *UpstreamHTTPError
	var transportErr *TransportError

	var text string
	switch {
	case errors.As(err, &httpErr):
		text = fmt.Sprintf("Oura API error while %s: HTTP %d: %s", action, httpErr.StatusCode, httpErr.Body)
	case errors.As(err, &transportErr):
		text = fmt.Sprintf("Could not reach the Oura API while %s: %v.", action, transportErr.Cause)
	default:
		text = fmt.Sprintf("Error %s: %v.", action, err)
	}
	return textResourceContent(uri, "text/plain", text)
}

// --- Schema Definition Helpers ---

// mustMarshalJSON marshals v to JSON and panics on error. Used for static
// schemas, where failure indicates a programming error.
func mustMarshalJSON(v interface{}) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("failed to marshal static JSON schema: %v", err))
	}
	return json.RawMessage(data)
}

// emptyInputSchema returns a schema for tools that take no arguments.
func emptyInputSchema() json.RawMessage {
	return mustMarshalJSON(map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	})
}

// dateRangeInputSchema defines the shared argument shape for the collection
// tools: a required date range plus an optional continuation token.
func dateRangeInputSchema() json.RawMessage {
	return mustMarshalJSON(map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"start_date": map[string]interface{}{
				"type":        "string",
				"description": "Start of the date range (inclusive), formatted YYYY-MM-DD.",
			},
			"end_date": map[string]interface{}{
				"type":        "string",
				"description": "End of the date range (inclusive), formatted YYYY-MM-DD.",
			},
			"next_token": map[string]interface{}{
				"type":        "string",
				"description": "Optional. Continuation token from a previous response to fetch the next page.",
			},
		},
		"required":             []string{"start_date", "end_date"},
		"additionalProperties": false,
	})
}
