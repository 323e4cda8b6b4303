package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ulisesh/arcade-services/pkg/logging"
)

// Static errors for err113 compliance.
var (
	ErrNoConfigPersister = errors.New("no config persister configured")
)

// ConfigPersister writes refreshed tokens back to wherever the CLI keeps
// its configuration, keyed by the API endpoint they belong to.
type ConfigPersister interface {
	UpdateAPIToken(apiEndpoint, token string, expiresAt time.Time, refreshToken string) error
}

// ConfigTokenManager wraps an OAuth2TokenManager and persists every token it
// obtains, so a CLI session survives the process that logged in.
type ConfigTokenManager struct {
	oauth2Manager   *OAuth2TokenManager
	configPersister ConfigPersister
	apiEndpoint     string
	logger          zerolog.Logger
	mutex           sync.Mutex
	persistedToken  string
	persistedExpiry time.Time
}

// NewConfigTokenManager creates a config-persisting token manager. An
// initial token restored from config seeds the wrapped manager.
func NewConfigTokenManager(config *OAuth2Config, configPersister ConfigPersister, apiEndpoint string, initialToken string, initialExpiry time.Time) *ConfigTokenManager {
	oauth2Manager := NewOAuth2TokenManager(config)

	if initialToken != "" {
		oauth2Manager.SetToken(initialToken, initialExpiry)
	}

	return &ConfigTokenManager{
		oauth2Manager:   oauth2Manager,
		configPersister: configPersister,
		apiEndpoint:     apiEndpoint,
		logger:          logging.NewLogger("auth"),
		persistedToken:  initialToken,
		persistedExpiry: initialExpiry,
	}
}

// GetToken returns a valid access token, persisting it when the wrapped
// manager had to obtain a new one.
func (m *ConfigTokenManager) GetToken(ctx context.Context) (string, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	token, err := m.oauth2Manager.GetToken(ctx)
	if err != nil {
		return "", err
	}

	current := m.oauth2Manager.store.Get()
	if current != nil && (current.AccessToken != m.persistedToken || !current.ExpiresAt.Equal(m.persistedExpiry)) {
		if persistErr := m.persistToken(current); persistErr != nil {
			// A failed persist costs a re-login later, not this request.
			m.logger.Warn().Err(persistErr).Msg("failed to persist refreshed token")
		}

		m.persistedToken = current.AccessToken
		m.persistedExpiry = current.ExpiresAt
	}

	return token, nil
}

// RefreshToken forces a token refresh and persists the result.
func (m *ConfigTokenManager) RefreshToken(ctx context.Context) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if err := m.oauth2Manager.RefreshToken(ctx); err != nil {
		return err
	}

	current := m.oauth2Manager.store.Get()
	if current != nil {
		if persistErr := m.persistToken(current); persistErr != nil {
			m.logger.Warn().Err(persistErr).Msg("failed to persist refreshed token")
		}

		m.persistedToken = current.AccessToken
		m.persistedExpiry = current.ExpiresAt
	}

	return nil
}

// SetToken stores a token obtained outside the manager, typically during
// login, and remembers it as already persisted.
func (m *ConfigTokenManager) SetToken(token string, expiresAt time.Time) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.oauth2Manager.SetToken(token, expiresAt)
	m.persistedToken = token
	m.persistedExpiry = expiresAt
}

// TokenExpiry returns the current token's expiration time, zero when no
// token is stored.
func (m *ConfigTokenManager) TokenExpiry() time.Time {
	token := m.oauth2Manager.store.Get()
	if token == nil {
		return time.Time{}
	}

	return token.ExpiresAt
}

func (m *ConfigTokenManager) persistToken(token *Token) error {
	if m.configPersister == nil {
		return ErrNoConfigPersister
	}

	err := m.configPersister.UpdateAPIToken(m.apiEndpoint, token.AccessToken, token.ExpiresAt, token.RefreshToken)
	if err != nil {
		return fmt.Errorf("updating stored token: %w", err)
	}

	return nil
}
