// file: internal/oura/token_storage_secure.go
package oura

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/zalando/go-keyring"

	"github.com/dkoosis/ouramcp/internal/logging"
)

const (
	keyringService = "OuraMCP"
	keyringUser    = "OuraAccessToken"
)

// SecureTokenStorage stores the access token in the OS keychain.
type SecureTokenStorage struct {
	logger logging.Logger
}

var _ TokenStorage = (*SecureTokenStorage)(nil)

// NewSecureTokenStorage creates a keyring-backed token storage instance.
func NewSecureTokenStorage(logger logging.Logger) *SecureTokenStorage {
	if logger == nil {
		logger = logging.GetNoopLogger()
	}
	return &SecureTokenStorage{
		logger: logger.WithField("component", "secure_token_storage"),
	}
}

// IsAvailable checks if the OS keyring service is accessible.
func (s *SecureTokenStorage) IsAvailable() bool {
	_, err := keyring.Get(keyringService, keyringUser)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			s.logger.Debug("Keyring service accessible, no token stored yet.")
			return true
		}
		s.logger.Warn("Keyring service inaccessible or permissions insufficient.", "error", err)
		return false
	}
	s.logger.Debug("Keyring service accessible with an existing token.")
	return true
}

// SaveToken saves the token record to the OS keyring.
func (s *SecureTokenStorage) SaveToken(token string) error {
	if token == "" {
		return errors.New("cannot save empty token to keyring")
	}

	data := TokenData{
		Token:     token,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return errors.Wrap(err, "failed to encode token data for secure storage")
	}

	if err := keyring.Set(keyringService, keyringUser, string(jsonData)); err != nil {
		s.logger.Error("keyring.Set operation failed.", "error", fmt.Sprintf("%+v", err))
		return errors.Wrap(err, "failed to save token to system keyring")
	}

	s.logger.Info("Access token saved to system keyring.")
	return nil
}

// LoadToken loads the token from the OS keyring. A missing entry is not an
// error.
func (s *SecureTokenStorage) LoadToken() (string, error) {
	jsonData, err := keyring.Get(keyringService, keyringUser)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			s.logger.Debug("No access token found in system keyring.")
			return "", nil
		}
		s.logger.Error("keyring.Get operation failed.", "error", fmt.Sprintf("%+v", err))
		return "", errors.Wrap(err, "failed to load token from system keyring")
	}

	var data TokenData
	if err := json.Unmarshal([]byte(jsonData), &data); err != nil {
		s.logger.Error("Token data in keyring is corrupted, attempting deletion.", "error", err)
		_ = s.DeleteToken()
		return "", errors.Wrap(err, "failed to parse token data from secure storage")
	}

	s.logger.Debug("Loaded access token from system keyring.")
	return data.Token, nil
}

// DeleteToken removes the token from the OS keyring.
func (s *SecureTokenStorage) DeleteToken() error {
	if err := keyring.Delete(keyringService, keyringUser); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil
		}
		return errors.Wrap(err, "failed to delete token from system keyring")
	}
	s.logger.Info("Access token deleted from system keyring.")
	return nil
}

// ServiceName returns the keyring service identifier used for token entries.
func (s *SecureTokenStorage) ServiceName() string {
	return keyringService
}

// UserName returns the keyring user identifier used for token entries.
func (s *SecureTokenStorage) UserName() string {
	return keyringUser
}

// Diagnose exercises set, get, and delete against a probe keyring entry and
// reports which operations succeeded. Used by the diagnose-keyring command.
func (s *SecureTokenStorage) Diagnose() map[string]bool {
	const probeUser = "OuraKeyringProbe"
	const probeValue = "probe"
	results := map[string]bool{
		"set_success":    false,
		"get_success":    false,
		"delete_success": false,
	}

	if err := keyring.Set(keyringService, probeUser, probeValue); err != nil {
		s.logger.Warn("Keyring set probe failed.", "error", err)
		return results
	}
	results["set_success"] = true

	value, err := keyring.Get(keyringService, probeUser)
	if err != nil {
		s.logger.Warn("Keyring get probe failed.", "error", err)
	} else {
		results["get_success"] = value == probeValue
	}

	if err := keyring.Delete(keyringService, probeUser); err != nil {
		s.logger.Warn("Keyring delete probe failed.", "error", err)
	} else {
		results["delete_success"] = true
	}
	return results
}
