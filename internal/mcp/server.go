// Package mcp implements the Model Context Protocol server core: the
// connection lifecycle, method routing, and the bridge between MCP requests
// and the registered backend services.
// file: internal/mcp/server.go
package mcp

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/dkoosis/ouramcp/internal/config"
	"github.com/dkoosis/ouramcp/internal/logging"
	"github.com/dkoosis/ouramcp/internal/mcp/router"
	"github.com/dkoosis/ouramcp/internal/mcp/state"
	"github.com/dkoosis/ouramcp/internal/mcptypes"
	"github.com/dkoosis/ouramcp/internal/metrics"
	"github.com/dkoosis/ouramcp/internal/middleware"
	"github.com/dkoosis/ouramcp/internal/schema"
	"github.com/dkoosis/ouramcp/internal/services"
	"github.com/dkoosis/ouramcp/internal/transport"
)

// protocolVersion is the MCP revision this server speaks. The initialize
// response always advertises this version regardless of what the client
// requested.
const protocolVersion = "2024-11-05"

// ServerOptions contains configurable options for the MCP server.
type ServerOptions struct {
	// RequestTimeout specifies the maximum duration for processing a request.
	RequestTimeout time.Duration

	// ShutdownTimeout specifies the maximum duration to wait for graceful shutdown.
	ShutdownTimeout time.Duration

	// Debug enables additional debug logging.
	Debug bool
}

// Server represents an MCP server instance. It owns the transport, the
// connection state machine, and the registry of backend services whose tools
// and resources it exposes.
type Server struct {
	config  *config.Config
	options ServerOptions
	logger  logging.Logger
	version string

	transport    transport.Transport
	router       router.Router
	stateMachine *state.MCPStateMachine
	validator    *schema.ToolValidator
	metrics      *metrics.Collector

	services      []services.Service
	toolToService map[string]services.Service

	// cancelServe stops the processing loop; set while serving.
	cancelServe context.CancelFunc
}

// NewServer creates a new MCP server with the given configuration and options.
func NewServer(cfg *config.Config, opts ServerOptions, version string, logger logging.Logger) (*Server, error) {
	if logger == nil {
		logger = logging.GetNoopLogger()
	}
	log := logger.WithField("component", "mcp_server")

	stateMachine, err := state.NewMCPStateMachine(logger)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create MCP state machine")
	}

	server := &Server{
		config:        cfg,
		options:       opts,
		logger:        log,
		version:       version,
		router:        router.NewRouter(logger),
		stateMachine:  stateMachine,
		validator:     schema.NewToolValidator(logger),
		metrics:       metrics.NewCollector(),
		toolToService: make(map[string]services.Service),
	}

	if err := server.registerCoreRoutes(); err != nil {
		return nil, errors.Wrap(err, "failed to register core MCP routes")
	}

	return server, nil
}

// RegisterService adds a backend service whose tools and resources the
// server will expose. Must be called before Serve.
func (s *Server) RegisterService(svc services.Service) error {
	if svc == nil {
		return errors.New("cannot register nil service")
	}
	for _, existing := range s.services {
		if existing.GetName() == svc.GetName() {
			return errors.Newf("service '%s' already registered", svc.GetName())
		}
	}

	for _, tool := range svc.GetTools() {
		if _, taken := s.toolToService[tool.Name]; taken {
			return errors.Newf("tool '%s' already provided by another service", tool.Name)
		}
		s.toolToService[tool.Name] = svc
	}

	s.services = append(s.services, svc)
	s.logger.Info("Registered service.", "service", svc.GetName(), "tools", len(svc.GetTools()))
	return nil
}

// registerCoreRoutes wires the MCP protocol methods into the router.
func (s *Server) registerCoreRoutes() error {
	routes := []router.Route{
		{Method: "initialize", Handler: s.handleInitialize},
		{Method: "ping", Handler: s.handlePing},
		{Method: "shutdown", Handler: s.handleShutdown},
		{Method: "exit", NotificationHandler: s.handleExitNotification},
		{Method: "notifications/initialized", NotificationHandler: s.handleInitializedNotification},
		{Method: "$/cancelRequest", NotificationHandler: s.handleCancelRequestNotification},
		{Method: "tools/list", Handler: s.handleToolsList},
		{Method: "tools/call", Handler: s.handleToolCall},
		{Method: "resources/list", Handler: s.handleResourcesList},
		{Method: "resources/read", Handler: s.handleResourcesRead},
	}

	for _, route := range routes {
		if err := s.router.AddRoute(route); err != nil {
			return errors.Wrapf(err, "failed to add route for method '%s'", route.Method)
		}
	}
	s.logger.Debug("Core MCP routes registered.", "methods", s.router.GetRoutes())
	return nil
}

// ServeSTDIO starts the server using standard input/output as the transport.
// This is the mode used when the server is launched by an MCP client such as
// Claude Desktop.
func (s *Server) ServeSTDIO(ctx context.Context) error {
	s.logger.Info("Starting server with stdio transport.")
	t := transport.NewNDJSONTransport(os.Stdin, os.Stdout, os.Stdin, s.logger)
	return s.Serve(ctx, t)
}

// Serve initializes the registered services and processes messages on the
// given transport until the context is canceled, the client exits, or the
// transport closes.
func (s *Server) Serve(ctx context.Context, t transport.Transport) error {
	if t == nil {
		return errors.New("serve called with nil transport")
	}
	s.transport = t

	serveCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	s.cancelServe = cancel

	if err := s.initializeServices(serveCtx); err != nil {
		return err
	}

	validationOpts := middleware.DefaultValidationOptions()
	validationMiddleware := middleware.NewValidationMiddleware(validationOpts, s.logger)

	chain := middleware.NewChain(s.handleMessage)
	chain.Use(validationMiddleware.Middleware())
	handler := chain.Handler()

	err := s.serverProcessing(serveCtx, handler)
	if errors.Is(err, context.Canceled) && ctx.Err() == nil {
		// The loop was stopped by an exit notification, not by the caller.
		return nil
	}
	return err
}

// initializeServices runs service setup and registers tool argument schemas.
func (s *Server) initializeServices(ctx context.Context) error {
	allTools := make([]mcptypes.Tool, 0)
	for _, svc := range s.services {
		if err := svc.Initialize(ctx); err != nil {
			return errors.Wrapf(err, "failed to initialize service '%s'", svc.GetName())
		}
		allTools = append(allTools, svc.GetTools()...)
	}

	if err := s.validator.RegisterTools(allTools); err != nil {
		return errors.Wrap(err, "failed to register tool schemas")
	}
	return nil
}

// handleMessage dispatches a single validated JSON-RPC message. It enforces
// the connection lifecycle, routes the method, and wraps the handler result
// in a JSON-RPC response envelope. Notifications return nil bytes.
func (s *Server) handleMessage(ctx context.Context, message []byte) ([]byte, error) {
	var request struct {
		Method string          `json:"method"`
		ID     json.RawMessage `json:"id"`
		Params json.RawMessage `json:"params"`
	}
	if err := json.Unmarshal(message, &request); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal JSON-RPC message")
	}

	isNotification := len(request.ID) == 0 || string(request.ID) == "null"

	if s.options.Debug {
		s.logger.Debug("Processing message.",
			"method", request.Method, "id", string(request.ID), "size", len(message))
	}

	if err := s.stateMachine.ValidateMethod(request.Method); err != nil {
		return nil, err
	}

	if err := s.advanceLifecycle(ctx, request.Method, isNotification); err != nil {
		return nil, err
	}

	// The request deadline bounds handler execution only; the caller's
	// context stays live for writing the error response.
	routeCtx := ctx
	if s.options.RequestTimeout > 0 {
		var cancel context.CancelFunc
		routeCtx, cancel = context.WithTimeout(ctx, s.options.RequestTimeout)
		defer cancel()
	}

	resultBytes, err := s.router.Route(routeCtx, request.Method, request.Params, isNotification)
	if isNotification {
		s.metrics.RecordNotification(request.Method)
	} else {
		s.metrics.RecordRequest(request.Method, err == nil)
	}
	if err != nil {
		return nil, err
	}
	if isNotification {
		return nil, nil
	}

	response := struct {
		JSONRPC string          `json:"jsonrpc"`
		ID      json.RawMessage `json:"id"`
		Result  json.RawMessage `json:"result"`
	}{
		JSONRPC: "2.0",
		ID:      request.ID,
		Result:  resultBytes,
	}

	responseBytes, marshalErr := json.Marshal(response)
	if marshalErr != nil {
		return nil, errors.Wrap(marshalErr, "failed to marshal JSON-RPC response")
	}
	return responseBytes, nil
}

// advanceLifecycle triggers the state machine event corresponding to the
// method. Ping is a liveness probe and never moves the machine.
func (s *Server) advanceLifecycle(ctx context.Context, method string, isNotification bool) error {
	if method == "ping" {
		return nil
	}

	event := state.EventForMethod(method)
	if event == "" {
		if isNotification {
			event = state.EventMCPNotification
		} else {
			event = state.EventMCPRequest
		}
	}

	if err := s.stateMachine.TriggerEvent(ctx, event, nil); err != nil {
		return errors.Wrapf(err, "lifecycle transition failed for method '%s'", method)
	}
	return nil
}

// Shutdown initiates a graceful shutdown of the server: the processing loop
// is stopped, services are shut down, and the transport is closed.
func (s *Server) Shutdown(ctx context.Context) error {
	snapshot := s.metrics.Snapshot()
	s.logger.Info("Shutting down server.",
		"uptime", snapshot.Uptime.String(),
		"totalRequests", snapshot.TotalRequests,
		"failedRequests", snapshot.FailedRequests,
		"totalNotifications", snapshot.TotalNotifications)

	if s.cancelServe != nil {
		s.cancelServe()
	}

	for _, svc := range s.services {
		if err := svc.Shutdown(); err != nil {
			s.logger.Error("Service shutdown failed.", "service", svc.GetName(), "error", err)
		}
	}
	if err := s.validator.Shutdown(); err != nil {
		s.logger.Error("Validator shutdown failed.", "error", err)
	}

	if s.transport != nil {
		if err := s.transport.Close(); err != nil && !transport.IsClosedError(err) {
			return errors.Wrap(err, "failed to close transport")
		}
	}
	return nil
}
