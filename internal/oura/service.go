// file: internal/oura/service.go
package oura

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/dkoosis/ouramcp/internal/config"
	"github.com/dkoosis/ouramcp/internal/logging"
)

// recentWindowDays is the trailing window used by the "recent" resources.
const recentWindowDays = 7

// Service exposes Oura Ring data as MCP tools and resources. It owns the
// API client facade and resolves the access token at initialization time.
type Service struct {
	config *config.Config
	logger logging.Logger

	client       *Client
	tokenStorage TokenStorage

	mu          sync.RWMutex
	initialized bool

	// now supplies the clock for recency windows; replaced in tests.
	now func() time.Time
}

// NewService creates an Oura service. Initialize must be called before use.
func NewService(cfg *config.Config, logger logging.Logger) *Service {
	if logger == nil {
		logger = logging.GetNoopLogger()
	}
	return &Service{
		config: cfg,
		logger: logger.WithField("service", "oura"),
		now:    time.Now,
	}
}

// GetName returns the service identifier used for routing.
func (s *Service) GetName() string {
	return "oura"
}

// Initialize resolves the access token and constructs the API client.
// Resolution order: environment/config (already merged into the config),
// then stored token. A missing credential is fatal, not a per-call error.
func (s *Service) Initialize(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	token := s.config.Oura.AccessToken
	if token == "" {
		storage, err := NewTokenStorage(s.config.Auth.TokenPath, s.logger)
		if err != nil {
			s.logger.Warn("Could not open token storage.", "error", err)
		} else {
			s.tokenStorage = storage
			stored, loadErr := storage.LoadToken()
			if loadErr != nil {
				s.logger.Warn("Could not load stored token.", "error", loadErr)
			} else if stored != "" {
				s.logger.Info("Using access token from token storage.")
				token = stored
			}
		}
	}

	if token == "" {
		return NewConfigurationError(
			"no access token found: set OURA_ACCESS_TOKEN, add it to the config file, or store it with the store-token command")
	}

	client, err := NewClient(token, s.logger, WithBaseURL(s.config.Oura.BaseURL))
	if err != nil {
		return errors.Wrap(err, "failed to construct Oura client")
	}

	s.client = client
	s.initialized = true
	s.logger.Info("Oura service initialized.")
	return nil
}

// Shutdown performs cleanup tasks before the application exits.
func (s *Service) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initialized = false
	s.logger.Debug("Oura service shut down.")
	return nil
}

// IsAuthenticated returns true once a credential has been resolved.
func (s *Service) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initialized && s.client != nil
}

// isInitialized reports whether Initialize completed.
func (s *Service) isInitialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initialized
}

// recentWindow computes the trailing window used by recency resources:
// start = today minus seven days, end = today, both YYYY-MM-DD, read from
// the clock at call time.
func (s *Service) recentWindow() DateRange {
	today := s.now()
	return DateRange{
		StartDate: today.AddDate(0, 0, -recentWindowDays).Format("2006-01-02"),
		EndDate:   today.Format("2006-01-02"),
	}
}
