// file: internal/mcp/handlers_tools.go
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/dkoosis/ouramcp/internal/mcptypes"
	"github.com/dkoosis/ouramcp/internal/schema"
)

// handleToolsList handles the tools/list request by aggregating tool
// definitions from all registered services.
func (s *Server) handleToolsList(_ context.Context, _ json.RawMessage) (json.RawMessage, error) {
	tools := make([]mcptypes.Tool, 0)
	for _, svc := range s.services {
		tools = append(tools, svc.GetTools()...)
	}

	result := mcptypes.ListToolsResult{Tools: tools}
	resultBytes, err := json.Marshal(result)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal ListToolsResult")
	}

	s.logger.Debug("Handled tools/list request.", "toolCount", len(tools))
	return resultBytes, nil
}

// handleToolCall handles the tools/call request. Failures inside the tool,
// including argument validation and upstream API errors, are reported through
// the result's IsError flag rather than as protocol errors.
func (s *Server) handleToolCall(ctx context.Context, params json.RawMessage) (json.RawMessage, error) {
	var req mcptypes.CallToolRequest
	if err := json.Unmarshal(params, &req); err != nil {
		return nil, errors.Wrap(err, "invalid params structure for tools/call")
	}

	s.logger.Info("Handling tools/call request.", "toolName", req.Name)

	svc, found := s.toolToService[req.Name]
	if !found {
		s.logger.Warn("Tool not found during tools/call.", "toolName", req.Name)
		return marshalToolResult(toolErrorResult("Error: Tool not found: " + req.Name))
	}

	if err := s.validator.Validate(ctx, req.Name, req.Arguments); err != nil {
		s.logger.Warn("Tool arguments failed validation.", "toolName", req.Name, "error", err)
		return marshalToolResult(toolErrorResult(formatValidationFailure(req.Name, err)))
	}

	callResult, err := svc.CallTool(ctx, req.Name, req.Arguments)
	if err != nil {
		return nil, errors.Wrapf(err, "service '%s' failed handling tool '%s'", svc.GetName(), req.Name)
	}

	return marshalToolResult(callResult)
}

// toolErrorResult builds a CallToolResult reporting a tool-level failure.
func toolErrorResult(message string) *mcptypes.CallToolResult {
	return &mcptypes.CallToolResult{
		IsError: true,
		Content: []mcptypes.Content{
			mcptypes.TextContent{Type: "text", Text: message},
		},
	}
}

// marshalToolResult marshals a CallToolResult into raw response bytes.
func marshalToolResult(result *mcptypes.CallToolResult) (json.RawMessage, error) {
	resultBytes, err := json.Marshal(result)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal CallToolResult")
	}
	return resultBytes, nil
}

// formatValidationFailure renders an argument validation error for the
// client-visible tool result.
func formatValidationFailure(toolName string, err error) string {
	var valErr *schema.ValidationError
	if errors.As(err, &valErr) {
		return fmt.Sprintf("Error calling %s: invalid arguments: %s", toolName, valErr.Message)
	}
	return fmt.Sprintf("Error calling %s: invalid arguments.", toolName)
}
