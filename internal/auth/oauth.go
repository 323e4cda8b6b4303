package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-cleanhttp"

	"github.com/ulisesh/arcade-services/internal/constants"
)

// Static errors for err113 compliance.
var (
	ErrNoValidCredentials = errors.New("no valid credentials available")
	ErrNoTokenURL         = errors.New("no token URL configured")
	ErrTokenRequestFailed = errors.New("token request failed")
)

// OAuth2Config holds the credentials and endpoint used to obtain tokens.
type OAuth2Config struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
	RefreshToken string
	AccessToken  string
	Scopes       []string
}

// OAuth2TokenManager obtains tokens from the auth endpoint and hands out the
// stored one while it stays valid. Grant selection follows the available
// credentials: refresh token, then password, then client credentials.
type OAuth2TokenManager struct {
	config     *OAuth2Config
	store      *TokenStore
	httpClient *http.Client
	mutex      sync.Mutex
}

// NewOAuth2TokenManager creates a token manager. A configured AccessToken
// seeds the store so it is served until it expires.
func NewOAuth2TokenManager(config *OAuth2Config) *OAuth2TokenManager {
	httpClient := cleanhttp.DefaultClient()
	httpClient.Timeout = constants.ShortHTTPTimeout

	manager := &OAuth2TokenManager{
		config:     config,
		store:      NewTokenStore(),
		httpClient: httpClient,
	}

	if config.AccessToken != "" {
		manager.store.Set(&Token{
			AccessToken:  config.AccessToken,
			RefreshToken: config.RefreshToken,
			TokenType:    "bearer",
		})
	}

	return manager
}

// GetToken returns a valid access token, obtaining a fresh one when the
// stored token is missing or expired.
func (m *OAuth2TokenManager) GetToken(ctx context.Context) (string, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if token := m.store.Get(); token.Valid() {
		return token.AccessToken, nil
	}

	token, err := m.fetchToken(ctx)
	if err != nil {
		return "", err
	}

	m.store.Set(token)

	return token.AccessToken, nil
}

// RefreshToken discards the stored token's remaining lifetime and obtains a
// fresh one.
func (m *OAuth2TokenManager) RefreshToken(ctx context.Context) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	token, err := m.fetchToken(ctx)
	if err != nil {
		return err
	}

	m.store.Set(token)

	return nil
}

// SetToken stores a token obtained elsewhere, such as one restored from the
// CLI config file.
func (m *OAuth2TokenManager) SetToken(token string, expiresAt time.Time) {
	m.store.Set(&Token{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   expiresAt,
	})
}

func (m *OAuth2TokenManager) fetchToken(ctx context.Context) (*Token, error) {
	if m.config.TokenURL == "" {
		return nil, ErrNoTokenURL
	}

	// A rotated refresh token on the stored token supersedes the
	// configured one.
	refreshToken := m.config.RefreshToken
	if stored := m.store.Get(); stored != nil && stored.RefreshToken != "" {
		refreshToken = stored.RefreshToken
	}

	form := url.Values{}

	switch {
	case refreshToken != "":
		form.Set("grant_type", "refresh_token")
		form.Set("refresh_token", refreshToken)
	case m.config.Username != "" && m.config.Password != "":
		form.Set("grant_type", "password")
		form.Set("username", m.config.Username)
		form.Set("password", m.config.Password)
	case m.config.ClientID != "" && m.config.ClientSecret != "":
		form.Set("grant_type", "client_credentials")
	default:
		return nil, ErrNoValidCredentials
	}

	if len(m.config.Scopes) > 0 {
		form.Set("scope", strings.Join(m.config.Scopes, " "))
	}

	return m.requestToken(ctx, form)
}

type tokenErrorResponse struct {
	Error       string `json:"error"`
	Description string `json:"error_description"`
}

func (m *OAuth2TokenManager) requestToken(ctx context.Context, form url.Values) (*Token, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.config.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating token request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", constants.ContentTypeJSON)

	if m.config.ClientID != "" {
		req.SetBasicAuth(m.config.ClientID, m.config.ClientSecret)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting token: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp tokenErrorResponse
		if jsonErr := json.Unmarshal(body, &errResp); jsonErr == nil && errResp.Error != "" {
			return nil, fmt.Errorf("%w: %s: %s", ErrTokenRequestFailed, errResp.Error, errResp.Description)
		}

		return nil, fmt.Errorf("%w with status %d", ErrTokenRequestFailed, resp.StatusCode)
	}

	var token Token
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, fmt.Errorf("decoding token response: %w", err)
	}

	if token.ExpiresIn > 0 {
		token.ExpiresAt = time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
	}

	return &token, nil
}

// NewAuthTokenManager creates a token manager for a deployment's auth
// endpoint using the client_credentials grant. authURL is the endpoint
// advertised by the service root document.
func NewAuthTokenManager(authURL, clientID, clientSecret string) *OAuth2TokenManager {
	return NewOAuth2TokenManager(&OAuth2Config{
		TokenURL:     strings.TrimSuffix(authURL, "/") + "/oauth/token",
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Scopes:       []string{"arcade.read", "arcade.write"},
	})
}

// NewAuthTokenManagerWithPassword creates a token manager that authenticates
// a user with the password grant, identifying the calling application with
// clientID.
func NewAuthTokenManagerWithPassword(authURL, clientID, clientSecret, username, password string) *OAuth2TokenManager {
	return NewOAuth2TokenManager(&OAuth2Config{
		TokenURL:     strings.TrimSuffix(authURL, "/") + "/oauth/token",
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Username:     username,
		Password:     password,
		Scopes:       []string{"arcade.read", "arcade.write"},
	})
}
