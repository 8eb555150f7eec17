// file: internal/oura/token_storage.go
package oura

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/dkoosis/ouramcp/internal/logging"
)

// TokenStorage defines the interface for persisting the Oura access token
// between runs.
type TokenStorage interface {
	// SaveToken stores the token, replacing any existing entry.
	SaveToken(token string) error

	// LoadToken returns the stored token, or "" if none is stored.
	LoadToken() (string, error)

	// DeleteToken removes any stored token.
	DeleteToken() error
}

// TokenData is the persisted token record.
type TokenData struct {
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewTokenStorage creates the most appropriate token storage implementation:
// the OS keyring when available, otherwise a file under tokenPath.
func NewTokenStorage(tokenPath string, logger logging.Logger) (TokenStorage, error) {
	if logger == nil {
		logger = logging.GetNoopLogger()
	}

	secureStorage := NewSecureTokenStorage(logger)
	if secureStorage.IsAvailable() {
		logger.Info("Using secure token storage (OS keyring).")
		return secureStorage, nil
	}

	logger.Info("Secure token storage not available, falling back to file-based storage.",
		"path", tokenPath)
	return NewFileTokenStorage(tokenPath, logger)
}

// FileTokenStorage persists the token in a JSON file. Used as a fallback
// when the OS keyring is not accessible.
type FileTokenStorage struct {
	path   string
	logger logging.Logger
	mutex  sync.RWMutex
}

var _ TokenStorage = (*FileTokenStorage)(nil)

// NewFileTokenStorage creates a file-backed token storage instance, creating
// the parent directory if needed.
func NewFileTokenStorage(path string, logger logging.Logger) (*FileTokenStorage, error) {
	if logger == nil {
		logger = logging.GetNoopLogger()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, errors.Wrap(err, "failed to create token directory")
	}

	return &FileTokenStorage{
		path:   path,
		logger: logger.WithField("component", "file_token_storage"),
	}, nil
}

// SaveToken writes the token record with owner-only permissions.
func (s *FileTokenStorage) SaveToken(token string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if token == "" {
		return errors.New("cannot save empty token")
	}

	data := TokenData{
		Token:     token,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal token data")
	}

	if err := os.WriteFile(s.path, jsonData, 0600); err != nil {
		return errors.Wrap(err, "failed to write token file")
	}

	s.logger.Debug("Saved access token to file.")
	return nil
}

// LoadToken reads the stored token. A missing file is not an error.
func (s *FileTokenStorage) LoadToken() (string, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		s.logger.Debug("Token file does not exist.")
		return "", nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return "", errors.Wrap(err, "failed to read token file")
	}

	var tokenData TokenData
	if err := json.Unmarshal(data, &tokenData); err != nil {
		return "", errors.Wrap(err, "failed to parse token data")
	}

	s.logger.Debug("Loaded access token from file.")
	return tokenData.Token, nil
}

// DeleteToken removes the token file if present.
func (s *FileTokenStorage) DeleteToken() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return nil
	}

	if err := os.Remove(s.path); err != nil {
		return errors.Wrap(err, "failed to delete token file")
	}

	s.logger.Debug("Deleted token file.")
	return nil
}
