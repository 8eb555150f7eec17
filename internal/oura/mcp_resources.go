// file: internal/oura/mcp_resources.go
package oura

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/dkoosis/ouramcp/internal/mcp/mcperrors"
	"github.com/dkoosis/ouramcp/internal/mcptypes"
)

// resourceCollections maps the "recent" resource URIs to the collections
// they fetch over the trailing-week window.
var resourceCollections = map[string]Collection{
	"oura://sessions/recent":  CollectionSession,
	"oura://activity/recent":  CollectionDailyActivity,
	"oura://sleep/recent":     CollectionDailySleep,
	"oura://readiness/recent": CollectionDailyReadiness,
}

// GetResources returns the MCP resources provided by this service.
func (s *Service) GetResources() []mcptypes.Resource {
	return []mcptypes.Resource{
		{
			Name:        "Personal Info",
			URI:         "oura://personal_info",
			Description: "Personal info for the Oura account: age, weight, height, biological sex, email.",
			MimeType:    "application/json",
		},
		{
			Name:        "Recent Sessions",
			URI:         "oura://sessions/recent",
			Description: "Moment and rest sessions from the last 7 days.",
			MimeType:    "application/json",
		},
		{
			Name:        "Recent Activity",
			URI:         "oura://activity/recent",
			Description: "Daily activity summaries from the last 7 days.",
			MimeType:    "application/json",
		},
		{
			Name:        "Recent Sleep",
			URI:         "oura://sleep/recent",
			Description: "Daily sleep summaries from the last 7 days.",
			MimeType:    "application/json",
		},
		{
			Name:        "Recent Readiness",
			URI:         "oura://readiness/recent",
			Description: "Daily readiness scores from the last 7 days.",
			MimeType:    "application/json",
		},
	}
}

// ReadResource handles MCP resource read requests. Fetch failures become
// textual content; only unknown URIs and server state problems are errors.
func (s *Service) ReadResource(ctx context.Context, uri string) ([]interface{}, error) {
	if !s.isInitialized() {
		return nil, errors.New("oura service is not initialized")
	}

	if uri == "oura://personal_info" {
		return s.readPersonalInfoResource(ctx), nil
	}
	if collection, ok := resourceCollections[uri]; ok {
		return s.readRecentCollectionResource(ctx, uri, collection), nil
	}

	return nil, mcperrors.NewResourceError(
		mcperrors.ErrResourceNotFound,
		fmt.Sprintf("Unknown Oura resource URI: %s", uri),
		nil,
		map[string]interface{}{"uri": uri},
	)
}

func (s *Service) readPersonalInfoResource(ctx context.Context) []interface{} {
	payload, err := s.client.GetPersonalInfo(ctx)
	if err != nil {
		return s.resourceErrorContent("oura://personal_info", "fetching personal info", err)
	}
	return jsonResourceContent("oura://personal_info", payload)
}

func (s *Service) readRecentCollectionResource(ctx context.Context, uri string, collection Collection) []interface{} {
	window := s.recentWindow()
	s.logger.Debug("Reading recent collection resource.",
		"uri", uri, "collection", collection,
		"startDate", window.StartDate, "endDate", window.EndDate)

	payload, err := s.client.GetCollection(ctx, collection, window, "")
	if err != nil {
		return s.resourceErrorContent(uri, fmt.Sprintf("fetching recent %s data", collection), err)
	}
	return jsonResourceContent(uri, payload)
}
