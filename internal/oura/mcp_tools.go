// file: internal/oura/mcp_tools.go
package oura

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dkoosis/ouramcp/internal/mcptypes"
)

// toolCollections maps each collection tool name to the collection it
// fetches. getPersonalInfo is handled separately since it takes no
// arguments and targets a different endpoint.
var toolCollections = map[string]Collection{
	"getSessions":       CollectionSession,
	"getDailyActivity":  CollectionDailyActivity,
	"getDailySleep":     CollectionDailySleep,
	"getDailySpo2":      CollectionDailySpo2,
	"getDailyReadiness": CollectionDailyReadiness,
	"getSleep":          CollectionSleep,
	"getSleepTime":      CollectionSleepTime,
	"getWorkout":        CollectionWorkout,
	"getEnhancedTag":    CollectionEnhancedTag,
}

// GetTools returns the MCP tools provided by this service: one per
// collection plus personal info.
func (s *Service) GetTools() []mcptypes.Tool {
	return []mcptypes.Tool{
		{
			Name:        "getPersonalInfo",
			Description: "Retrieves personal info (age, weight, height, biological sex, email) for the Oura account.",
			InputSchema: emptyInputSchema(),
			Annotations: &mcptypes.ToolAnnotations{Title: "Get Personal Info", ReadOnlyHint: true},
		},
		{
			Name:        "getSessions",
			Description: "Retrieves moment and rest session data for a date range.",
			InputSchema: dateRangeInputSchema(),
			Annotations: &mcptypes.ToolAnnotations{Title: "Get Sessions", ReadOnlyHint: true},
		},
		{
			Name:        "getDailyActivity",
			Description: "Retrieves daily activity summaries (steps, calories, activity score) for a date range.",
			InputSchema: dateRangeInputSchema(),
			Annotations: &mcptypes.ToolAnnotations{Title: "Get Daily Activity", ReadOnlyHint: true},
		},
		{
			Name:        "getDailySleep",
			Description: "Retrieves daily sleep summaries and sleep scores for a date range.",
			InputSchema: dateRangeInputSchema(),
			Annotations: &mcptypes.ToolAnnotations{Title: "Get Daily Sleep", ReadOnlyHint: true},
		},
		{
			Name:        "getDailySpo2",
			Description: "Retrieves daily blood oxygen saturation (SpO2) averages for a date range.",
			InputSchema: dateRangeInputSchema(),
			Annotations: &mcptypes.ToolAnnotations{Title: "Get Daily SpO2", ReadOnlyHint: true},
		},
		{
			Name:        "getDailyReadiness",
			Description: "Retrieves daily readiness scores and contributors for a date range.",
			InputSchema: dateRangeInputSchema(),
			Annotations: &mcptypes.ToolAnnotations{Title: "Get Daily Readiness", ReadOnlyHint: true},
		},
		{
			Name:        "getSleep",
			Description: "Retrieves detailed sleep period data (stages, heart rate, HRV) for a date range.",
			InputSchema: dateRangeInputSchema(),
			Annotations: &mcptypes.ToolAnnotations{Title: "Get Sleep Periods", ReadOnlyHint: true},
		},
		{
			Name:        "getSleepTime",
			Description: "Retrieves recommended bedtime windows for a date range.",
			InputSchema: dateRangeInputSchema(),
			Annotations: &mcptypes.ToolAnnotations{Title: "Get Sleep Time", ReadOnlyHint: true},
		},
		{
			Name:        "getWorkout",
			Description: "Retrieves workout records for a date range.",
			InputSchema: dateRangeInputSchema(),
			Annotations: &mcptypes.ToolAnnotations{Title: "Get Workouts", ReadOnlyHint: true},
		},
		{
			Name:        "getEnhancedTag",
			Description: "Retrieves enhanced tags (user-logged events and annotations) for a date range.",
			InputSchema: dateRangeInputSchema(),
			Annotations: &mcptypes.ToolAnnotations{Title: "Get Enhanced Tags", ReadOnlyHint: true},
		},
	}
}

// CallTool routes MCP tool calls to the appropriate handler. Failures in
// the tool logic are reported inside the result, never raised.
func (s *Service) CallTool(ctx context.Context, name string, args json.RawMessage) (*mcptypes.CallToolResult, error) {
	if !s.isInitialized() {
		return s.serviceNotInitializedError(), nil
	}

	if name == "getPersonalInfo" {
		return s.handleGetPersonalInfo(ctx), nil
	}
	if collection, ok := toolCollections[name]; ok {
		return s.handleGetCollection(ctx, name, collection, args), nil
	}
	return s.unknownToolError(name), nil
}

// handleGetPersonalInfo fetches the personal info document.
func (s *Service) handleGetPersonalInfo(ctx context.Context) *mcptypes.CallToolResult {
	s.logger.Debug("Executing getPersonalInfo tool.")
	payload, err := s.client.GetPersonalInfo(ctx)
	if err != nil {
		return s.apiErrorResult("fetching personal info", err)
	}
	return s.successToolResult(string(payload))
}

// handleGetCollection fetches one page of the given collection using the
// caller-supplied date range and optional continuation token.
func (s *Service) handleGetCollection(ctx context.Context, toolName string, collection Collection, args json.RawMessage) *mcptypes.CallToolResult {
	var params struct {
		StartDate string `json:"start_date"`
		EndDate   string `json:"end_date"`
		NextToken string `json:"next_token,omitempty"`
	}
	if err := json.Unmarshal(args, &params); err != nil {
		return s.invalidToolArgumentsError(toolName, err)
	}

	s.logger.Debug("Executing collection tool.",
		"toolName", toolName,
		"collection", collection,
		"startDate", params.StartDate,
		"endDate", params.EndDate,
		"paginated", params.NextToken != "")

	dates := DateRange{StartDate: params.StartDate, EndDate: params.EndDate}
	payload, err := s.client.GetCollection(ctx, collection, dates, params.NextToken)
	if err != nil {
		return s.apiErrorResult(fmt.Sprintf("fetching %s data", collection), err)
	}
	return s.successToolResult(string(payload))
}
