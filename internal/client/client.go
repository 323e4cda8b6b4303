// Package client implements the concrete API client behind pkg/arcade.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ulisesh/arcade-services/internal/auth"
	"github.com/ulisesh/arcade-services/internal/constants"
	"github.com/ulisesh/arcade-services/internal/http"
	"github.com/ulisesh/arcade-services/pkg/arcade"
)

// Static errors for err113 compliance.
var (
	ErrNoTokenManagerConfigured = errors.New("no token manager configured")
)

// Client implements the arcade.Client interface.
type Client struct {
	httpClient   *http.Client
	tokenManager http.TokenManager
	baseURL      string

	// Resource clients
	jobs   arcade.JobsClient
	builds arcade.BuildsClient
	queues arcade.QueuesClient
}

// createTokenManager creates the appropriate token manager for the
// credentials present in config. The returned manager may be nil, which
// means requests go out unauthenticated.
func createTokenManager(config *arcade.Config) http.TokenManager {
	if config.AccessToken != "" && config.Username != "" && config.Password != "" {
		return createFallbackTokenManager(config)
	}

	if config.AccessToken != "" {
		return &staticTokenManager{token: config.AccessToken}
	}

	if config.ClientID != "" && config.ClientSecret != "" {
		return createOAuth2TokenManager(config)
	}

	if config.Username != "" && config.Password != "" {
		return createPasswordTokenManager(config)
	}

	return nil // No authentication
}

// createFallbackTokenManager creates a manager that serves the supplied
// access token while it remains valid, then switches to the password grant.
func createFallbackTokenManager(config *arcade.Config) http.TokenManager {
	oauthConfig := &auth.OAuth2Config{
		TokenURL:     getTokenURL(config),
		ClientID:     constants.DefaultCLIClientID,
		ClientSecret: "",
		Username:     config.Username,
		Password:     config.Password,
	}

	return newFallbackTokenManager(config.AccessToken, auth.NewOAuth2TokenManager(oauthConfig))
}

// createOAuth2TokenManager creates a client_credentials grant manager.
func createOAuth2TokenManager(config *arcade.Config) http.TokenManager {
	oauthConfig := &auth.OAuth2Config{
		TokenURL:     getTokenURL(config),
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		Username:     config.Username,
		Password:     config.Password,
		RefreshToken: config.RefreshToken,
	}

	return auth.NewOAuth2TokenManager(oauthConfig)
}

// createPasswordTokenManager creates a password grant manager using the
// default CLI client ID.
func createPasswordTokenManager(config *arcade.Config) http.TokenManager {
	oauthConfig := &auth.OAuth2Config{
		TokenURL:     getTokenURL(config),
		ClientID:     constants.DefaultCLIClientID,
		ClientSecret: "",
		Username:     config.Username,
		Password:     config.Password,
		RefreshToken: config.RefreshToken,
	}

	return auth.NewOAuth2TokenManager(oauthConfig)
}

// getTokenURL returns the token URL from config or a conventional fallback.
// arcadeclient.New discovers the real endpoint from /api/info before the
// config reaches this point.
func getTokenURL(config *arcade.Config) string {
	if config.TokenURL != "" {
		return config.TokenURL
	}

	return config.APIEndpoint + "/oauth/token"
}

// createHTTPClientOptions builds HTTP client options from config.
func createHTTPClientOptions(config *arcade.Config) []http.Option {
	var httpOpts []http.Option

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(config.Logger))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	if config.HTTPTimeout > 0 {
		httpOpts = append(httpOpts, http.WithHTTPTimeout(config.HTTPTimeout))
	}

	if config.SkipTLSVerify {
		httpOpts = append(httpOpts, http.WithTLSSkipVerify(true))
	}

	if config.RetryMax > 0 {
		retryWaitMin := constants.DefaultRetryWaitMin
		retryWaitMax := constants.DefaultRetryWaitMax

		if config.RetryWaitMin > 0 {
			retryWaitMin = config.RetryWaitMin
		}

		if config.RetryWaitMax > 0 {
			retryWaitMax = config.RetryWaitMax
		}

		httpOpts = append(httpOpts, http.WithRetryConfig(config.RetryMax, retryWaitMin, retryWaitMax))
	}

	if config.ResponseHandler != nil {
		httpOpts = append(httpOpts, http.WithResponseHandler(config.ResponseHandler))
	}

	if config.Metrics != nil {
		chain := arcade.NewInterceptorChain()
		chain.AddRequestInterceptor(arcade.MetricsRequestInterceptor(config.Metrics))
		chain.AddResponseInterceptor(arcade.MetricsResponseInterceptor(config.Metrics))
		httpOpts = append(httpOpts, http.WithInterceptors(chain))
	}

	return httpOpts
}

// New creates a client from config, selecting a token manager according to
// the credential precedence documented on arcade.Config.
func New(ctx context.Context, config *arcade.Config) (*Client, error) {
	if config == nil {
		return nil, arcade.ErrConfigRequired
	}

	if config.APIEndpoint == "" {
		return nil, arcade.ErrAPIEndpointRequired
	}

	return NewWithTokenManager(config, createTokenManager(config))
}

// NewWithTokenManager creates a client with a caller-supplied token manager.
// A nil manager produces an unauthenticated client.
func NewWithTokenManager(config *arcade.Config, tokenManager http.TokenManager) (*Client, error) {
	if config == nil {
		return nil, arcade.ErrConfigRequired
	}

	if config.APIEndpoint == "" {
		return nil, arcade.ErrAPIEndpointRequired
	}

	httpClient := http.NewClient(config.APIEndpoint, tokenManager, createHTTPClientOptions(config)...)

	client := &Client{
		httpClient:   httpClient,
		tokenManager: tokenManager,
		baseURL:      config.APIEndpoint,
	}

	client.initializeResourceClients()

	return client, nil
}

// GetTokenManager returns the token manager for this client.
func (c *Client) GetTokenManager() http.TokenManager {
	return c.tokenManager
}

// GetToken returns the current access token from the token manager.
func (c *Client) GetToken(ctx context.Context) (string, error) {
	if c.tokenManager == nil {
		return "", ErrNoTokenManagerConfigured
	}

	token, err := c.tokenManager.GetToken(ctx)
	if err != nil {
		return "", fmt.Errorf("getting token: %w", err)
	}

	return token, nil
}

// Info implements arcade.Client.Info.
func (c *Client) Info(ctx context.Context) (*arcade.APIInfo, error) {
	resp, err := c.httpClient.Get(ctx, "/api/info", nil)
	if err != nil {
		return nil, fmt.Errorf("getting API info: %w", err)
	}

	var info arcade.APIInfo

	err = json.Unmarshal(resp.Body, &info)
	if err != nil {
		return nil, fmt.Errorf("parsing info response: %w", err)
	}

	return &info, nil
}

// Resource client accessors

// Jobs implements arcade.Client.Jobs.
func (c *Client) Jobs() arcade.JobsClient {
	return c.jobs
}

// Builds implements arcade.Client.Builds.
func (c *Client) Builds() arcade.BuildsClient {
	return c.builds
}

// Queues implements arcade.Client.Queues.
func (c *Client) Queues() arcade.QueuesClient {
	return c.queues
}

// initializeResourceClients initializes all resource-specific clients.
func (c *Client) initializeResourceClients() {
	c.jobs = NewJobsClient(c.httpClient)
	c.builds = NewBuildsClient(c.httpClient)
	c.queues = NewQueuesClient(c.httpClient)
}

// staticTokenManager provides a static token.
type staticTokenManager struct {
	token string
}

func (m *staticTokenManager) GetToken(ctx context.Context) (string, error) {
	return m.token, nil
}

func (m *staticTokenManager) RefreshToken(ctx context.Context) error {
	return arcade.ErrStaticTokenCannotRefresh
}

func (m *staticTokenManager) SetToken(token string, expiresAt time.Time) {
	m.token = token
}

// fallbackTokenManager serves a static token until it expires, then switches
// to an OAuth2 manager for the rest of the client's life.
type fallbackTokenManager struct {
	mutex        sync.Mutex
	staticToken  string
	staticExpiry time.Time
	oauthManager http.TokenManager
	usingOAuth   bool
}

func newFallbackTokenManager(staticToken string, oauthManager http.TokenManager) *fallbackTokenManager {
	// An unparseable token has no known expiry; it is served until a refresh
	// is forced.
	expiry, err := auth.TokenExpiry(staticToken)
	if err != nil {
		expiry = time.Time{}
	}

	return &fallbackTokenManager{
		staticToken:  staticToken,
		staticExpiry: expiry,
		oauthManager: oauthManager,
	}
}

func (m *fallbackTokenManager) GetToken(ctx context.Context) (string, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if !m.usingOAuth && m.staticTokenValid() {
		return m.staticToken, nil
	}

	m.usingOAuth = true

	token, err := m.oauthManager.GetToken(ctx)
	if err != nil {
		return "", fmt.Errorf("getting OAuth token: %w", err)
	}

	return token, nil
}

func (m *fallbackTokenManager) RefreshToken(ctx context.Context) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	// A static token cannot be renewed; a forced refresh switches to OAuth
	// permanently and fetches a fresh token.
	if !m.usingOAuth {
		m.usingOAuth = true

		_, err := m.oauthManager.GetToken(ctx)
		if err != nil {
			return fmt.Errorf("getting OAuth token during refresh: %w", err)
		}

		return nil
	}

	err := m.oauthManager.RefreshToken(ctx)
	if err != nil {
		return fmt.Errorf("refreshing OAuth token: %w", err)
	}

	return nil
}

func (m *fallbackTokenManager) SetToken(token string, expiresAt time.Time) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.usingOAuth {
		m.oauthManager.SetToken(token, expiresAt)

		return
	}

	m.staticToken = token
	m.staticExpiry = expiresAt
}

// staticTokenValid reports whether the static token can still be served. A
// zero expiry means the token carried no exp claim and never ages out here.
func (m *fallbackTokenManager) staticTokenValid() bool {
	if m.staticToken == "" {
		return false
	}

	if m.staticExpiry.IsZero() {
		return true
	}

	return time.Until(m.staticExpiry) > constants.TokenExpirationBuffer
}
