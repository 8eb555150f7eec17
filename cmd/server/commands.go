// file: cmd/server/commands.go
package server

import (
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/dkoosis/ouramcp/internal/config"
	"github.com/dkoosis/ouramcp/internal/logging"
	"github.com/dkoosis/ouramcp/internal/oura"
)

// RunStoreToken persists an Oura access token so later serve runs can pick it
// up without OURA_ACCESS_TOKEN in the environment. The token is the first
// positional argument.
func RunStoreToken(configPath string, args []string) error {
	logger := logging.GetLogger("store_token")

	if len(args) < 1 || args[0] == "" {
		return errors.New("usage: ouramcp store-token <access-token>")
	}
	token := args[0]

	var cfg *config.Config
	if configPath != "" {
		loaded, err := config.LoadFromFile(configPath)
		if err != nil {
			return errors.Wrap(err, "failed to load configuration")
		}
		cfg = loaded
	} else {
		cfg = config.DefaultConfig()
	}

	storage, err := oura.NewTokenStorage(cfg.Auth.TokenPath, logger)
	if err != nil {
		return errors.Wrap(err, "failed to create token storage")
	}
	if err := storage.SaveToken(token); err != nil {
		return errors.Wrap(err, "failed to save token")
	}

	fmt.Println("Access token stored. Run 'ouramcp serve' to start the server.")
	return nil
}

// RunKeyringDiagnostics probes the OS keyring and prints which operations
// work, to help troubleshoot token storage on locked-down systems.
func RunKeyringDiagnostics() {
	logger := logging.GetLogger("keyring_diag")
	storage := oura.NewSecureTokenStorage(logger)

	fmt.Println("=== OS Keyring Diagnostics ===")
	fmt.Printf("Keyring Service: %s\n", storage.ServiceName())
	fmt.Printf("Keyring User:    %s\n", storage.UserName())

	fmt.Println("\nAvailability check:")
	fmt.Printf("Keyring reported as available: %t\n", storage.IsAvailable())

	fmt.Println("\nRunning keyring operations test:")
	results := storage.Diagnose()
	fmt.Printf("%-18s: %v\n", "Set Operation", results["set_success"])
	fmt.Printf("%-18s: %v\n", "Get Operation", results["get_success"])
	fmt.Printf("%-18s: %v\n", "Delete Operation", results["delete_success"])

	if !results["set_success"] {
		fmt.Println("\nThe keyring rejected writes. Token storage will fall back to a")
		fmt.Println("file under the configured auth token_path.")
	}
}
