// Package http wraps the HTTP transport used to talk to an Arcade Services
// deployment: URL building, bearer decoration, request correlation and the
// non-success response handling contract.
package http

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"

	"github.com/ulisesh/arcade-services/internal/constants"
	"github.com/ulisesh/arcade-services/pkg/arcade"
)

// TokenManager supplies bearer tokens for outgoing requests.
type TokenManager interface {
	GetToken(ctx context.Context) (string, error)
	RefreshToken(ctx context.Context) error
	SetToken(token string, expiresAt time.Time)
}

// Request describes an API request. Path is joined onto the client's base
// URL unless it is already absolute, which is how Link header URLs are
// followed without re-deriving them.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Body    any
	Headers map[string]string
}

// Response is a fully read API response.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// Client executes API requests. Retries are disabled unless the caller opts
// in with WithRetryConfig.
type Client struct {
	baseURL      string
	httpClient   *retryablehttp.Client
	tokenManager TokenManager
	userAgent    string
	logger       *zerolog.Logger
	debug        bool
	interceptors *arcade.InterceptorChain
	handler      arcade.ResponseHandler
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for debug logging.
func WithLogger(logger *zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables request and response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithRetryConfig enables transport-level retries for transient failures.
func WithRetryConfig(maxRetries int, minWait, maxWait time.Duration) Option {
	return func(c *Client) {
		c.httpClient.RetryMax = maxRetries
		c.httpClient.RetryWaitMin = minWait
		c.httpClient.RetryWaitMax = maxWait
	}
}

// WithHTTPTimeout sets the per-request timeout.
func WithHTTPTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.HTTPClient.Timeout = timeout
	}
}

// WithTLSSkipVerify disables TLS certificate verification. Development use
// only.
func WithTLSSkipVerify(skip bool) Option {
	return func(c *Client) {
		transport, ok := c.httpClient.HTTPClient.Transport.(*http.Transport)
		if !ok {
			return
		}

		if transport.TLSClientConfig == nil {
			transport.TLSClientConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}

		transport.TLSClientConfig.InsecureSkipVerify = skip
	}
}

// WithInterceptors replaces the client's interceptor chain.
func WithInterceptors(chain *arcade.InterceptorChain) Option {
	return func(c *Client) {
		if chain != nil {
			c.interceptors = chain
		}
	}
}

// WithResponseHandler replaces the handler consulted on non-success
// responses.
func WithResponseHandler(handler arcade.ResponseHandler) Option {
	return func(c *Client) {
		if handler != nil {
			c.handler = handler
		}
	}
}

// NewClient creates an API client for the given base URL. tokenManager may
// be nil for unauthenticated endpoints.
func NewClient(baseURL string, tokenManager TokenManager, opts ...Option) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient = cleanhttp.DefaultPooledClient()
	retryClient.HTTPClient.Timeout = constants.DefaultHTTPTimeout
	retryClient.RetryMax = 0
	retryClient.Logger = nil
	// Surface the final response instead of a generic "giving up" error so
	// status failures keep their body and headers.
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	client := &Client{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		httpClient:   retryClient,
		tokenManager: tokenManager,
		userAgent:    constants.DefaultUserAgent,
		interceptors: arcade.NewInterceptorChain(),
		handler:      arcade.DefaultResponseHandler(),
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do executes req and reads the response fully. A non-success status is run
// through the client's response handler exactly once, before anyone decodes
// the body; the handler's verdict is returned alongside the response, so
// callers always get status, headers and body even on failure.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	fullURL := c.buildURL(req.Path, req.Query)

	var bodyBytes []byte

	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}

		bodyBytes = data
	}

	mirror := &arcade.Request{
		Method:   req.Method,
		URL:      fullURL,
		Headers:  make(http.Header),
		Body:     bodyBytes,
		Metadata: make(map[string]any),
	}

	c.defaultHeaders(mirror.Headers, bodyBytes != nil)

	if err := c.authorize(ctx, mirror.Headers); err != nil {
		return nil, err
	}

	for key, value := range req.Headers {
		mirror.Headers.Set(key, value)
	}

	if err := c.interceptors.ExecuteRequestInterceptors(ctx, mirror); err != nil {
		return nil, err
	}

	if c.debug && c.logger != nil {
		c.logger.Debug().
			Str("method", req.Method).
			Str("url", fullURL).
			Msg("HTTP Request")
	}

	httpReq, err := c.newHTTPRequest(ctx, req.Method, fullURL, bodyBytes)
	if err != nil {
		return nil, err
	}

	httpReq.Header = mirror.Headers

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}

	defer func() {
		_ = httpResp.Body.Close()
	}()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       respBody,
	}

	mirrorResp := &arcade.Response{
		StatusCode: resp.StatusCode,
		Headers:    resp.Headers,
		Body:       respBody,
	}

	if resp.StatusCode >= http.StatusBadRequest {
		mirrorResp.Error = c.handler.HandleResponse(ctx, mirror, mirrorResp)
	}

	if c.debug && c.logger != nil {
		c.logger.Debug().
			Str("method", req.Method).
			Str("url", fullURL).
			Int("status_code", resp.StatusCode).
			Msg("HTTP Response")
	}

	if err := c.interceptors.ExecuteResponseInterceptors(ctx, mirror, mirrorResp); err != nil {
		return resp, err
	}

	return resp, mirrorResp.Error
}

// Get executes a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodGet, Path: path, Query: query})
}

// Post executes a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPost, Path: path, Body: body})
}

// Put executes a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPut, Path: path, Body: body})
}

// Patch executes a PATCH request with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPatch, Path: path, Body: body})
}

// Delete executes a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodDelete, Path: path})
}

func (c *Client) newHTTPRequest(ctx context.Context, method, fullURL string, body []byte) (*retryablehttp.Request, error) {
	var rawBody any
	if body != nil {
		rawBody = body
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, method, fullURL, rawBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	return httpReq, nil
}

func (c *Client) defaultHeaders(headers http.Header, hasBody bool) {
	headers.Set("Accept", constants.ContentTypeJSON)
	headers.Set("User-Agent", c.userAgent)
	headers.Set(constants.HeaderRequestID, uuid.NewString())

	if hasBody {
		headers.Set("Content-Type", constants.ContentTypeJSON)
	}
}

func (c *Client) authorize(ctx context.Context, headers http.Header) error {
	if c.tokenManager == nil {
		return nil
	}

	token, err := c.tokenManager.GetToken(ctx)
	if err != nil {
		return fmt.Errorf("getting token: %w", err)
	}

	if token != "" {
		headers.Set(constants.HeaderAuthorization, "Bearer "+token)
	}

	return nil
}

// buildURL joins path onto the base URL. Absolute paths pass through
// untouched so server-issued Link URLs are requested verbatim.
func (c *Client) buildURL(path string, query url.Values) string {
	target := path
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		target = c.baseURL + path
	}

	if len(query) > 0 {
		separator := "?"
		if strings.Contains(target, "?") {
			separator = "&"
		}

		target += separator + query.Encode()
	}

	return target
}
