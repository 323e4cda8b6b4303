// Package auth obtains, stores and refreshes the OAuth2 tokens used against
// an Arcade Services deployment.
package auth

import (
	"sync"
	"time"

	"github.com/ulisesh/arcade-services/internal/constants"
)

// Token is an OAuth2 token as returned by the auth endpoint. ExpiresAt is
// derived from ExpiresIn when the token is obtained; a zero ExpiresAt means
// the expiry is unknown and the token is treated as long-lived.
type Token struct {
	AccessToken  string    `json:"access_token"`
	TokenType    string    `json:"token_type"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresIn    int       `json:"expires_in,omitempty"`
	ExpiresAt    time.Time `json:"-"`
}

// Valid reports whether the token can still be used. Tokens within the
// expiration buffer count as expired so a request started now does not
// outlive them.
func (t *Token) Valid() bool {
	if t == nil || t.AccessToken == "" {
		return false
	}

	if t.ExpiresAt.IsZero() {
		return true
	}

	return time.Until(t.ExpiresAt) > constants.TokenExpirationBuffer
}

// TokenStore holds the current token behind a lock so token managers can be
// shared between goroutines.
type TokenStore struct {
	mutex sync.RWMutex
	token *Token
}

// NewTokenStore creates an empty token store.
func NewTokenStore() *TokenStore {
	return &TokenStore{}
}

// Get returns the stored token, or nil.
func (s *TokenStore) Get() *Token {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.token
}

// Set replaces the stored token.
func (s *TokenStore) Set(token *Token) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.token = token
}

// Clear removes the stored token.
func (s *TokenStore) Clear() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.token = nil
}
