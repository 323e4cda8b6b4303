package commands

import (
	"fmt"
	"sync"
	"time"
)

// ConfigPersister saves refreshed OAuth tokens back to the CLI config file so
// sessions survive between invocations.
type ConfigPersister struct {
	mutex sync.Mutex
}

// NewConfigPersister creates a new config persister.
func NewConfigPersister() *ConfigPersister {
	return &ConfigPersister{}
}

// UpdateAPIToken updates the stored token for the given API endpoint.
func (p *ConfigPersister) UpdateAPIToken(apiEndpoint, token string, expiresAt time.Time, refreshToken string) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	config := loadConfig()

	// The refreshed token belongs to the endpoint the session was opened
	// against. Refuse to overwrite credentials for a different target.
	if config.API != "" && config.API != apiEndpoint {
		return fmt.Errorf("%w: %s", ErrAPIConfigNotFound, apiEndpoint)
	}

	config.Token = token

	if !expiresAt.IsZero() {
		config.TokenExpiresAt = &expiresAt
	}

	if refreshToken != "" {
		config.RefreshToken = refreshToken
	}

	now := time.Now()
	config.LastRefreshed = &now

	err := saveConfigStruct(config)
	if err != nil {
		return fmt.Errorf("saving refreshed token: %w", err)
	}

	return nil
}
