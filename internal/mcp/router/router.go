// Package router provides a routing mechanism for dispatching MCP method calls.
// file: internal/mcp/router/router.go
package router

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/dkoosis/ouramcp/internal/logging"
	"github.com/dkoosis/ouramcp/internal/mcp/mcperrors"
)

// Handler defines the function signature for handling MCP requests that
// expect a response. It receives the context and raw parameters, returning
// raw result bytes or an error.
type Handler func(ctx context.Context, params json.RawMessage) (json.RawMessage, error)

// NotificationHandler defines the function signature for handling MCP
// notifications (no response expected).
type NotificationHandler func(ctx context.Context, params json.RawMessage) error

// Route defines the mapping between an MCP method name and its handler(s).
type Route struct {
	Method              string              // The MCP method name (e.g., "initialize", "tools/list").
	Handler             Handler             // Handler for requests expecting a response.
	NotificationHandler NotificationHandler // Handler for notifications.
}

// Router defines the interface for an MCP method router.
type Router interface {
	// AddRoute registers a handler for a specific MCP method.
	AddRoute(route Route) error
	// Route dispatches an incoming message to the appropriate registered handler.
	Route(ctx context.Context, method string, params json.RawMessage, isNotification bool) (json.RawMessage, error)
	// GetRoutes returns the registered method names, sorted.
	GetRoutes() []string
}

type router struct {
	routes map[string]Route
	mu     sync.RWMutex
	logger logging.Logger
}

// NewRouter creates a new Router instance.
func NewRouter(logger logging.Logger) Router {
	if logger == nil {
		logger = logging.GetNoopLogger()
	}
	return &router{
		routes: make(map[string]Route),
		logger: logger.WithField("component", "mcp_router"),
	}
}

// AddRoute registers a new route. Returns an error if the method is already
// registered or the route has no handler.
func (r *router) AddRoute(route Route) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if route.Method == "" {
		return fmt.Errorf("cannot register route with empty method name")
	}
	if route.Handler == nil && route.NotificationHandler == nil {
		return fmt.Errorf("route for method '%s' must have at least one handler", route.Method)
	}

	if _, exists := r.routes[route.Method]; exists {
		r.logger.Warn("Attempted to register duplicate route.", "method", route.Method)
		return fmt.Errorf("route for method '%s' already registered", route.Method)
	}

	r.routes[route.Method] = route
	r.logger.Debug("Registered route.", "method", route.Method)
	return nil
}

// Route looks up the handler for the given method and executes it,
// distinguishing requests from notifications.
func (r *router) Route(ctx context.Context, method string, params json.RawMessage, isNotification bool) (json.RawMessage, error) {
	r.mu.RLock()
	route, exists := r.routes[method]
	r.mu.RUnlock()

	if !exists {
		r.logger.Warn("Method not found in router.", "method", method)
		return nil, mcperrors.NewMethodNotFoundError(
			fmt.Sprintf("Method '%s' not found", method),
			nil,
			map[string]interface{}{"method": method},
		)
	}

	if isNotification {
		if route.NotificationHandler != nil {
			r.logger.Debug("Routing to notification handler.", "method", method)
			return nil, route.NotificationHandler(ctx, params)
		}
		// Clients may send a notification to a request method; execute the
		// handler but discard the result.
		if route.Handler != nil {
			r.logger.Warn("Received notification for request-only method, discarding result.", "method", method)
			_, err := route.Handler(ctx, params)
			return nil, err
		}
		r.logger.Error("No suitable handler found for notification.", "method", method)
		return nil, mcperrors.NewInternalError(
			fmt.Sprintf("internal router error: no handler configured for notification method '%s'", method),
			nil,
			map[string]interface{}{"method": method},
		)
	}

	if route.Handler != nil {
		r.logger.Debug("Routing to request handler.", "method", method)
		return route.Handler(ctx, params)
	}

	// A request hit a notification-only method; it cannot produce a response.
	r.logger.Error("Received request for notification-only method.", "method", method)
	return nil, mcperrors.NewMethodNotFoundError(
		fmt.Sprintf("Method '%s' is notification-only and cannot produce a response", method),
		nil,
		map[string]interface{}{"method": method},
	)
}

// GetRoutes returns a sorted slice of registered method names.
func (r *router) GetRoutes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	methods := make([]string, 0, len(r.routes))
	for method := range r.routes {
		methods = append(methods, method)
	}
	sort.Strings(methods)
	return methods
}
