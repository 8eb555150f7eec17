// file: internal/oura/client_test.go
package oura

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoosis/ouramcp/internal/logging"
)

// newTestClient builds a Client pointed at the given test server.
func newTestClient(t *testing.T, token string, server *httptest.Server) *Client {
	t.Helper()
	client, err := NewClient(token, logging.GetNoopLogger(), WithBaseURL(server.URL))
	require.NoError(t, err, "NewClient should succeed with a non-empty token.")
	return client
}

func TestNewClient_EmptyToken_ReturnsConfigurationError(t *testing.T) {
	client, err := NewClient("", logging.GetNoopLogger())
	assert.Nil(t, client, "No client should be returned without a token.")
	require.Error(t, err, "NewClient should fail without a token.")

	var cfgErr *ConfigurationError
	assert.True(t, errors.As(err, &cfgErr), "Error should be a ConfigurationError.")
}

func TestClient_GetPersonalInfo_SendsBearerTokenWithoutQuery(t *testing.T) {
	var gotAuth string
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.RawQuery
		assert.Equal(t, "/usercollection/personal_info", r.URL.Path, "Request path should target personal_info.")
		_, _ = w.Write([]byte(`{"id":"abc","age":34}`))
	}))
	defer server.Close()

	client := newTestClient(t, "secret-token", server)

	payload, err := client.GetPersonalInfo(context.Background())
	require.NoError(t, err, "GetPersonalInfo should succeed on a 200 response.")
	assert.Equal(t, "Bearer secret-token", gotAuth, "Authorization header should carry the exact token.")
	assert.Empty(t, gotQuery, "personal_info requests should not carry query parameters.")
	assert.JSONEq(t, `{"id":"abc","age":34}`, string(payload), "Response body should pass through unmodified.")
}

func TestClient_GetCollection_SendsDateRangeParams(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/usercollection/daily_sleep", r.URL.Path, "Request path should include the collection name.")
		q := r.URL.Query()
		assert.Equal(t, "2025-06-01", q.Get("start_date"), "start_date should be forwarded.")
		assert.Equal(t, "2025-06-07", q.Get("end_date"), "end_date should be forwarded.")
		_, ok := q["next_token"]
		assert.False(t, ok, "next_token should be absent when not supplied.")
		_, _ = w.Write([]byte(`{"data":[],"next_token":null}`))
	}))
	defer server.Close()

	client := newTestClient(t, "tok", server)

	dates := DateRange{StartDate: "2025-06-01", EndDate: "2025-06-07"}
	payload, err := client.GetCollection(context.Background(), CollectionDailySleep, dates, "")
	require.NoError(t, err, "GetCollection should succeed on a 200 response.")
	assert.JSONEq(t, `{"data":[],"next_token":null}`, string(payload), "Response body should pass through unmodified.")
}

func TestClient_GetCollection_ForwardsNextToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "page-2-token", r.URL.Query().Get("next_token"), "next_token should be forwarded verbatim.")
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer server.Close()

	client := newTestClient(t, "tok", server)

	dates := DateRange{StartDate: "2025-06-01", EndDate: "2025-06-07"}
	_, err := client.GetCollection(context.Background(), CollectionWorkout, dates, "page-2-token")
	require.NoError(t, err, "GetCollection with a next_token should succeed.")
}

func TestClient_GetCollection_UnknownCollection_ReturnsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Error("No request should be issued for an unknown collection.")
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(t, "tok", server)

	_, err := client.GetCollection(context.Background(), Collection("bogus"), DateRange{}, "")
	require.Error(t, err, "GetCollection should reject an unknown collection before issuing a request.")
}

func TestClient_Get_Non2xxStatus_ReturnsUpstreamHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"bad token"}`))
	}))
	defer server.Close()

	client := newTestClient(t, "expired", server)

	_, err := client.GetPersonalInfo(context.Background())
	require.Error(t, err, "A 401 response should produce an error.")

	var httpErr *UpstreamHTTPError
	require.True(t, errors.As(err, &httpErr), "Error should be an UpstreamHTTPError.")
	assert.Equal(t, http.StatusUnauthorized, httpErr.StatusCode, "Status code should be preserved.")
	assert.Equal(t, `{"detail":"bad token"}`, httpErr.Body, "Response body should be preserved verbatim.")
}

func TestClient_Get_NetworkFailure_ReturnsTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
	server.Close() // Closed server refuses connections.

	client, err := NewClient("tok", logging.GetNoopLogger(), WithBaseURL(server.URL))
	require.NoError(t, err, "NewClient should succeed.")

	_, err = client.GetPersonalInfo(context.Background())
	require.Error(t, err, "A connection failure should produce an error.")

	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr), "Error should be a TransportError.")
	assert.Error(t, transportErr.Cause, "TransportError should carry the underlying cause.")
}

func TestClient_Get_InvalidJSONBody_ReturnsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`not json at all`))
	}))
	defer server.Close()

	client := newTestClient(t, "tok", server)

	_, err := client.GetPersonalInfo(context.Background())
	require.Error(t, err, "An invalid JSON body on a 200 response should produce an error.")

	var httpErr *UpstreamHTTPError
	assert.False(t, errors.As(err, &httpErr), "Invalid JSON on success is not an upstream HTTP error.")
}
