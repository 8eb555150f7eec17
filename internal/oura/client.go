// file: internal/oura/client.go
package oura

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"github.com/cockroachdb/errors"

	"github.com/dkoosis/ouramcp/internal/logging"
)

// DefaultBaseURL is the production Oura API v2 endpoint.
const DefaultBaseURL = "https://api.ouraring.com/v2"

// DateRange is an inclusive pair of calendar dates in YYYY-MM-DD form.
// Dates pass through to the API without local validation; malformed values
// are rejected upstream.
type DateRange struct {
	StartDate string
	EndDate   string
}

// Client is the facade over the Oura REST API. It holds the bearer
// credential and base URL, and issues exactly one HTTP GET per call with no
// retries and no local timeout. The credential is read-only, so a Client is
// safe for concurrent reuse.
type Client struct {
	accessToken string
	baseURL     string
	httpClient  *http.Client
	logger      logging.Logger
}

// Option configures a Client during construction.
type Option func(*Client)

// WithBaseURL overrides the API base URL. Used for tests and self-hosted
// proxies.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// NewClient creates an Oura API client with the given personal access token.
// An empty token is a ConfigurationError; the process must not start
// without a credential.
func NewClient(accessToken string, logger logging.Logger, opts ...Option) (*Client, error) {
	if accessToken == "" {
		return nil, NewConfigurationError("access token is empty")
	}
	if logger == nil {
		logger = logging.GetNoopLogger()
	}

	client := &Client{
		accessToken: accessToken,
		baseURL:     DefaultBaseURL,
		httpClient:  &http.Client{},
		logger:      logger.WithField("component", "oura_client"),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// GetPersonalInfo fetches the account's personal info document. The endpoint
// takes no query parameters and is not paginated.
func (c *Client) GetPersonalInfo(ctx context.Context) (json.RawMessage, error) {
	return c.get(ctx, "usercollection/personal_info", nil)
}

// GetCollection fetches one page of a collection for the given date range.
// A non-empty nextToken continues a previous page; the token is forwarded
// verbatim and never sent as an empty key. The caller decides whether to
// follow the next_token the response may contain.
func (c *Client) GetCollection(ctx context.Context, collection Collection, dates DateRange, nextToken string) (json.RawMessage, error) {
	if !collection.Valid() {
		return nil, errors.Newf("unknown oura collection: %q", collection)
	}

	query := url.Values{}
	query.Set("start_date", dates.StartDate)
	query.Set("end_date", dates.EndDate)
	if nextToken != "" {
		query.Set("next_token", nextToken)
	}

	return c.get(ctx, "usercollection/"+string(collection), query)
}

// get performs a single authenticated GET and returns the raw JSON body on
// any 2xx status. Non-2xx statuses become UpstreamHTTPError; network
// failures become TransportError.
func (c *Client) get(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	requestURL := c.baseURL + "/" + path
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to build request for %s", path)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	c.logger.Debug("Issuing Oura API request.", "path", path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, NewTransportError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewTransportError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("Oura API request failed.", "path", path, "status", resp.StatusCode)
		return nil, NewUpstreamHTTPError(resp.StatusCode, body)
	}

	if !json.Valid(body) {
		return nil, errors.Newf("oura API returned invalid JSON for %s (status %d)", path, resp.StatusCode)
	}
	return json.RawMessage(body), nil
}
