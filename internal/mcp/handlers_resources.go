// file: internal/mcp/handlers_resources.go
package mcp

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/dkoosis/ouramcp/internal/mcp/mcperrors"
	"github.com/dkoosis/ouramcp/internal/mcptypes"
	"github.com/dkoosis/ouramcp/internal/services"
)

// handleResourcesList handles the resources/list request by aggregating
// resource definitions from all registered services.
func (s *Server) handleResourcesList(_ context.Context, _ json.RawMessage) (json.RawMessage, error) {
	resources := make([]mcptypes.Resource, 0)
	for _, svc := range s.services {
		resources = append(resources, svc.GetResources()...)
	}

	result := mcptypes.ListResourcesResult{Resources: resources}
	resultBytes, err := json.Marshal(result)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal ListResourcesResult")
	}

	s.logger.Debug("Handled resources/list request.", "resourceCount", len(resources))
	return resultBytes, nil
}

// handleResourcesRead handles the resources/read request. The URI scheme
// identifies which service owns the resource.
func (s *Server) handleResourcesRead(ctx context.Context, params json.RawMessage) (json.RawMessage, error) {
	var req mcptypes.ReadResourceRequest
	if err := json.Unmarshal(params, &req); err != nil {
		return nil, errors.Wrap(err, "invalid params for resources/read")
	}

	s.logger.Info("Handling resources/read request.", "uri", req.URI)

	svc := s.serviceForURI(req.URI)
	if svc == nil {
		return nil, mcperrors.NewResourceError(
			mcperrors.ErrResourceNotFound,
			"Resource not found: "+req.URI,
			nil,
			map[string]interface{}{"uri": req.URI},
		)
	}

	contents, err := svc.ReadResource(ctx, req.URI)
	if err != nil {
		return nil, err
	}

	result := mcptypes.ReadResourceResult{Contents: contents}
	resultBytes, marshalErr := json.Marshal(result)
	if marshalErr != nil {
		return nil, errors.Wrap(marshalErr, "failed to marshal ReadResourceResult")
	}
	return resultBytes, nil
}

// serviceForURI finds the service whose name matches the URI scheme.
func (s *Server) serviceForURI(uri string) services.Service {
	for _, svc := range s.services {
		if strings.HasPrefix(uri, svc.GetName()+"://") {
			return svc
		}
	}
	return nil
}
