// file: cmd/main.go
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/dkoosis/ouramcp/cmd/server"
	"github.com/dkoosis/ouramcp/internal/logging"
)

// Version information - should be set during build via ldflags.
var (
	Version    = "0.1.0-dev"
	commitHash = "unknown" //nolint:unused // Set via ldflags during build
	buildDate  = "unknown" //nolint:unused // Set via ldflags during build
)

func main() {
	// A local .env file may carry OURA_ACCESS_TOKEN during development.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		serveCmd := flag.NewFlagSet("serve", flag.ExitOnError)
		serveConfigPath := serveCmd.String("config", "", "Path to configuration file.")
		requestTimeout := serveCmd.Duration("request-timeout", 30*time.Second, "Timeout for JSON-RPC requests.")
		shutdownTimeout := serveCmd.Duration("shutdown-timeout", 5*time.Second, "Timeout for graceful shutdown.")
		debug := serveCmd.Bool("debug", false, "Enable debug logging.")

		if err := serveCmd.Parse(os.Args[2:]); err != nil {
			log.Fatalf("Failed to parse serve command flags: %+v", err)
		}

		if *debug {
			logging.SetupDefaultLogger("debug")
		} else {
			logging.SetupDefaultLogger("info")
		}

		opts := server.RunOptions{
			ConfigPath:      *serveConfigPath,
			RequestTimeout:  *requestTimeout,
			ShutdownTimeout: *shutdownTimeout,
			Debug:           *debug,
			Version:         Version,
		}
		if err := server.Run(opts); err != nil {
			logger := logging.GetLogger("main")
			logger.Error("Server failed.", "error", fmt.Sprintf("%+v", err))
			os.Exit(1)
		}

	case "store-token":
		storeCmd := flag.NewFlagSet("store-token", flag.ExitOnError)
		storeConfigPath := storeCmd.String("config", "", "Path to configuration file.")

		if err := storeCmd.Parse(os.Args[2:]); err != nil {
			log.Fatalf("Failed to parse store-token command flags: %+v", err)
		}

		logging.SetupDefaultLogger("info")
		if err := server.RunStoreToken(*storeConfigPath, storeCmd.Args()); err != nil {
			log.Fatalf("Storing token failed: %+v", err)
		}

	case "diagnose-keyring":
		diagnoseCmd := flag.NewFlagSet("diagnose-keyring", flag.ExitOnError)
		if err := diagnoseCmd.Parse(os.Args[2:]); err != nil {
			log.Fatalf("Failed to parse diagnose-keyring command flags: %+v", err)
		}

		logging.SetupDefaultLogger("debug")
		server.RunKeyringDiagnostics()

	default:
		printUsage()
		os.Exit(1)
	}
}

// printUsage prints usage information for the command.
func printUsage() {
	log.Println("Usage:")
	log.Println("  ouramcp serve [options]            - Start the Oura MCP server on stdio")
	log.Println("  ouramcp store-token <token>        - Store an Oura access token for later runs")
	log.Println("  ouramcp diagnose-keyring           - Test and diagnose OS keyring access")
	log.Println("\nRun 'ouramcp <command> -h' for help on a specific command.")
}

// getDefaultConfigPath returns the default path for the configuration file.
//
//nolint:unused // Kept for future flag defaults.
func getDefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Printf("Warning: Could not get user home directory: %v. Using relative fallback config path.", err)
		return "configs/ouramcp.yaml"
	}
	return filepath.Join(homeDir, ".config", "ouramcp", "ouramcp.yaml")
}
