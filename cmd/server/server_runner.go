// Package server provides the runner and setup logic for the main Oura MCP
// server process. It handles server lifecycle management including
// configuration loading, service registration, signal handling, and graceful
// shutdown, plus the auxiliary token-storage commands.
// file: cmd/server/server_runner.go
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/dkoosis/ouramcp/internal/config"
	"github.com/dkoosis/ouramcp/internal/logging"
	"github.com/dkoosis/ouramcp/internal/mcp"
	"github.com/dkoosis/ouramcp/internal/oura"
)

// RunOptions bundles the serve command's settings.
type RunOptions struct {
	ConfigPath      string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	Debug           bool
	Version         string
}

// Run starts the MCP server on stdio and blocks until the client disconnects
// or a termination signal arrives.
func Run(opts RunOptions) error {
	startTime := time.Now()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger, cfg, err := loadConfig(opts.ConfigPath, opts.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed during logging/config setup: %+v\n", err)
		return err
	}

	logger.Info("Starting Oura MCP server.",
		"config_path", opts.ConfigPath,
		"request_timeout", opts.RequestTimeout,
		"shutdown_timeout", opts.ShutdownTimeout,
		"debug_mode", opts.Debug)

	serverOpts := mcp.ServerOptions{
		RequestTimeout:  opts.RequestTimeout,
		ShutdownTimeout: opts.ShutdownTimeout,
		Debug:           opts.Debug,
	}
	srv, err := mcp.NewServer(cfg, serverOpts, opts.Version, logger)
	if err != nil {
		logger.Error("Failed to create MCP server.", "error", err)
		return errors.Wrap(err, "failed to create MCP server")
	}

	ouraService := oura.NewService(cfg, logger.WithField("component", "oura_service"))
	if err := srv.RegisterService(ouraService); err != nil {
		logger.Error("Failed to register Oura service.", "error", err)
		return errors.Wrap(err, "failed to register Oura service")
	}

	logger.Info("Server startup complete, serving on stdio.",
		"startup_time_ms", time.Since(startTime).Milliseconds())

	serveErr := srv.ServeSTDIO(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), opts.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Error during server shutdown.", "error", err)
	}

	if serveErr != nil && !errors.Is(serveErr, context.Canceled) {
		logger.Error("Server terminated with error.", "error", fmt.Sprintf("%+v", serveErr))
		return serveErr
	}
	logger.Info("Server stopped.", "uptime", time.Since(startTime).String())
	return nil
}

// loadConfig sets up the logger and loads configuration from the given path,
// falling back to defaults plus environment variables when no path is given.
func loadConfig(configPath string, debug bool) (logging.Logger, *config.Config, error) {
	logger := logging.GetLogger("server")

	var cfg *config.Config
	if configPath != "" {
		loaded, err := config.LoadFromFile(configPath)
		if err != nil {
			return logger, nil, errors.Wrap(err, "failed to load configuration")
		}
		cfg = loaded
	} else {
		logger.Debug("No config file specified, using defaults and environment.")
		cfg = config.DefaultConfig()
	}

	if debug {
		cfg.Server.LogLevel = "debug"
	}
	return logger, cfg, nil
}
