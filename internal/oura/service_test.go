// file: internal/oura/service_test.go
package oura

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoosis/ouramcp/internal/config"
	"github.com/dkoosis/ouramcp/internal/logging"
	"github.com/dkoosis/ouramcp/internal/mcptypes"
)

// setupTestService builds an initialized Service backed by the given HTTP
// handler. The returned service uses a fixed clock of 2025-06-15 UTC.
func setupTestService(t *testing.T, handler http.Handler) *Service {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.DefaultConfig()
	cfg.Oura.AccessToken = "test-token"
	cfg.Oura.BaseURL = server.URL

	service := NewService(cfg, logging.GetNoopLogger())
	service.now = func() time.Time {
		return time.Date(2025, time.June, 15, 10, 30, 0, 0, time.UTC)
	}
	require.NoError(t, service.Initialize(context.Background()), "Service initialization should succeed.")
	return service
}

// resultText extracts the single text content item from a tool result.
func resultText(t *testing.T, result *mcptypes.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result, "Tool result should not be nil.")
	require.Len(t, result.Content, 1, "Tool result should contain one content item.")
	text, ok := result.Content[0].(mcptypes.TextContent)
	require.True(t, ok, "Content item should be TextContent.")
	return text.Text
}

func TestService_Initialize_NoToken_ReturnsConfigurationError(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Oura.AccessToken = ""
	cfg.Auth.TokenPath = t.TempDir() + "/missing_token.json"

	service := NewService(cfg, logging.GetNoopLogger())
	err := service.Initialize(context.Background())
	require.Error(t, err, "Initialize should fail when no token is available.")

	var cfgErr *ConfigurationError
	assert.True(t, errors.As(err, &cfgErr), "Error should be a ConfigurationError.")
	assert.False(t, service.IsAuthenticated(), "Service should not report as authenticated.")
}

func TestService_GetTools_ListsAllTools(t *testing.T) {
	service := setupTestService(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))

	tools := service.GetTools()
	require.Len(t, tools, 10, "Service should expose ten tools.")

	names := make(map[string]bool, len(tools))
	for _, tool := range tools {
		names[tool.Name] = true
		assert.NotEmpty(t, tool.Description, "Tool %s should have a description.", tool.Name)
		assert.NotEmpty(t, tool.InputSchema, "Tool %s should have an input schema.", tool.Name)
	}
	for _, expected := range []string{
		"getPersonalInfo", "getSessions", "getDailyActivity", "getDailySleep",
		"getDailySpo2", "getDailyReadiness", "getSleep", "getSleepTime",
		"getWorkout", "getEnhancedTag",
	} {
		assert.True(t, names[expected], "Tool list should include %s.", expected)
	}
}

func TestService_GetResources_ListsAllResources(t *testing.T) {
	service := setupTestService(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))

	resources := service.GetResources()
	require.Len(t, resources, 5, "Service should expose five resources.")

	uris := make(map[string]bool, len(resources))
	for _, resource := range resources {
		uris[resource.URI] = true
		assert.Equal(t, "application/json", resource.MimeType, "Resource %s should declare JSON content.", resource.URI)
	}
	for _, expected := range []string{
		"oura://personal_info", "oura://sessions/recent", "oura://activity/recent",
		"oura://sleep/recent", "oura://readiness/recent",
	} {
		assert.True(t, uris[expected], "Resource list should include %s.", expected)
	}
}

func TestService_CallTool_GetPersonalInfo_ReturnsBody(t *testing.T) {
	service := setupTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/usercollection/personal_info", r.URL.Path, "Request should target personal_info.")
		_, _ = w.Write([]byte(`{"id":"u1","age":42}`))
	}))

	result, err := service.CallTool(context.Background(), "getPersonalInfo", json.RawMessage(`{}`))
	require.NoError(t, err, "CallTool should not return a protocol error.")
	assert.False(t, result.IsError, "Successful call should not be flagged as an error.")
	assert.JSONEq(t, `{"id":"u1","age":42}`, resultText(t, result), "Result text should be the upstream body.")
}

func TestService_CallTool_CollectionTool_ForwardsDateRange(t *testing.T) {
	service := setupTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/usercollection/workout", r.URL.Path, "Request should target the workout collection.")
		q := r.URL.Query()
		assert.Equal(t, "2025-05-01", q.Get("start_date"), "start_date should be forwarded.")
		assert.Equal(t, "2025-05-31", q.Get("end_date"), "end_date should be forwarded.")
		_, _ = w.Write([]byte(`{"data":[{"activity":"running"}]}`))
	}))

	args := json.RawMessage(`{"start_date":"2025-05-01","end_date":"2025-05-31"}`)
	result, err := service.CallTool(context.Background(), "getWorkout", args)
	require.NoError(t, err, "CallTool should not return a protocol error.")
	assert.False(t, result.IsError, "Successful call should not be flagged as an error.")
	assert.Contains(t, resultText(t, result), "running", "Result should contain the upstream payload.")
}

func TestService_CallTool_UpstreamFailure_ReportsAsToolError(t *testing.T) {
	service := setupTestService(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"bad token"}`))
	}))

	result, err := service.CallTool(context.Background(), "getDailySleep",
		json.RawMessage(`{"start_date":"2025-06-01","end_date":"2025-06-07"}`))
	require.NoError(t, err, "Upstream failures should not surface as protocol errors.")
	assert.True(t, result.IsError, "Upstream failure should be flagged as a tool error.")

	text := resultText(t, result)
	assert.Contains(t, text, "401", "Error text should include the HTTP status code.")
	assert.Contains(t, text, `{"detail":"bad token"}`, "Error text should include the response body.")
}

func TestService_CallTool_NetworkFailure_ReportsAsToolError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
	server.Close()

	cfg := config.DefaultConfig()
	cfg.Oura.AccessToken = "test-token"
	cfg.Oura.BaseURL = server.URL
	service := NewService(cfg, logging.GetNoopLogger())
	require.NoError(t, service.Initialize(context.Background()), "Service initialization should succeed.")

	result, err := service.CallTool(context.Background(), "getPersonalInfo", json.RawMessage(`{}`))
	require.NoError(t, err, "Network failures should not surface as protocol errors.")
	assert.True(t, result.IsError, "Network failure should be flagged as a tool error.")
	assert.Contains(t, resultText(t, result), "Could not reach the Oura API",
		"Error text should explain the connectivity failure.")
}

func TestService_CallTool_UnknownTool_ReportsAsToolError(t *testing.T) {
	service := setupTestService(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))

	result, err := service.CallTool(context.Background(), "getHeartRateVariance", nil)
	require.NoError(t, err, "Unknown tools should not surface as protocol errors.")
	assert.True(t, result.IsError, "Unknown tool should be flagged as a tool error.")
	assert.Contains(t, resultText(t, result), "getHeartRateVariance", "Error text should name the tool.")
}

func TestService_CallTool_NotInitialized_ReportsAsToolError(t *testing.T) {
	service := NewService(config.DefaultConfig(), logging.GetNoopLogger())

	result, err := service.CallTool(context.Background(), "getPersonalInfo", nil)
	require.NoError(t, err, "Uninitialized service should not surface a protocol error.")
	assert.True(t, result.IsError, "Uninitialized service should flag a tool error.")
}

func TestService_ReadResource_RecentWindow_UsesFixedClock(t *testing.T) {
	service := setupTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/usercollection/daily_sleep", r.URL.Path, "Recent sleep should map to daily_sleep.")
		q := r.URL.Query()
		assert.Equal(t, "2025-06-08", q.Get("start_date"), "Window should start seven days before today.")
		assert.Equal(t, "2025-06-15", q.Get("end_date"), "Window should end today.")
		_, ok := q["next_token"]
		assert.False(t, ok, "Recency resources should not paginate.")
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))

	contents, err := service.ReadResource(context.Background(), "oura://sleep/recent")
	require.NoError(t, err, "ReadResource should succeed.")
	require.Len(t, contents, 1, "Resource read should yield one content item.")

	text, ok := contents[0].(mcptypes.TextResourceContents)
	require.True(t, ok, "Content item should be TextResourceContents.")
	assert.Equal(t, "oura://sleep/recent", text.URI, "Content should echo the resource URI.")
	assert.Equal(t, "application/json", text.MimeType, "Content should be JSON.")
	assert.JSONEq(t, `{"data":[]}`, text.Text, "Content should carry the upstream body.")
}

func TestService_ReadResource_UpstreamFailure_ReportsAsTextContent(t *testing.T) {
	service := setupTestService(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"detail":"rate limited"}`))
	}))

	contents, err := service.ReadResource(context.Background(), "oura://readiness/recent")
	require.NoError(t, err, "Fetch failures should not surface as protocol errors.")
	require.Len(t, contents, 1, "Resource read should yield one content item.")

	text, ok := contents[0].(mcptypes.TextResourceContents)
	require.True(t, ok, "Content item should be TextResourceContents.")
	assert.Equal(t, "text/plain", text.MimeType, "Failure content should be plain text.")
	assert.Contains(t, text.Text, "429", "Failure text should include the HTTP status code.")
	assert.Contains(t, text.Text, "rate limited", "Failure text should include the response body.")
}

func TestService_ReadResource_UnknownURI_ReturnsError(t *testing.T) {
	service := setupTestService(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))

	contents, err := service.ReadResource(context.Background(), "oura://heart_rate/recent")
	assert.Nil(t, contents, "No content should be returned for an unknown URI.")
	require.Error(t, err, "Unknown resource URIs should produce an error.")
	assert.Contains(t, err.Error(), "oura://heart_rate/recent", "Error should name the URI.")
}

func TestService_RecentWindow_FormatsDates(t *testing.T) {
	service := NewService(config.DefaultConfig(), logging.GetNoopLogger())
	service.now = func() time.Time {
		return time.Date(2025, time.January, 3, 0, 0, 0, 0, time.UTC)
	}

	window := service.recentWindow()
	assert.Equal(t, "2024-12-27", window.StartDate, "Window start should cross the year boundary correctly.")
	assert.Equal(t, "2025-01-03", window.EndDate, "Window end should be today.")
}
