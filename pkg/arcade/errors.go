package arcade

import (
	"encoding/json"
	"errors"
	"fmt"
)

// APIError is a single error entry from an API error body.
type APIError struct {
	Code   int    `json:"code"   yaml:"code"`
	Title  string `json:"title"  yaml:"title"`
	Detail string `json:"detail" yaml:"detail"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s (code: %d)", e.Title, e.Detail, e.Code)
}

// ResponseError represents a non-success response from the API. StatusCode
// and RequestID are populated from the HTTP response, Errors from its body.
type ResponseError struct {
	StatusCode int        `json:"-"      yaml:"-"`
	RequestID  string     `json:"-"      yaml:"-"`
	Errors     []APIError `json:"errors" yaml:"errors"`
}

func (e *ResponseError) Error() string {
	if len(e.Errors) == 0 {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}

	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	return fmt.Sprintf("multiple errors: %v", e.Errors)
}

// FirstError returns the first error or nil.
func (e *ResponseError) FirstError() *APIError {
	if len(e.Errors) > 0 {
		return &e.Errors[0]
	}

	return nil
}

// Common error codes.
const (
	ErrorCodeBadRequest       = 1005
	ErrorCodeNotAuthenticated = 1002
	ErrorCodeNotAuthorized    = 1003
	ErrorCodeNotFound         = 1010
	ErrorCodeUnprocessable    = 1008
	ErrorCodeTooManyRequests  = 1013
	ErrorCodeServerError      = 1050
)

// Common static errors that can be wrapped with context.
var (
	ErrMissingRelation  = errors.New("link entry missing rel parameter")
	ErrNoMoreItems      = errors.New("no more items")
	ErrPageNotNavigable = errors.New("page has no fetch function")
	ErrEmptyLink        = errors.New("empty link URL")
	ErrDecodeFailed     = errors.New("failed to decode response body")

	ErrConfigRequired           = errors.New("config is required")
	ErrAPIEndpointRequired      = errors.New("API endpoint is required")
	ErrStaticTokenCannotRefresh = errors.New("static token cannot be refreshed")
	ErrNotAuthenticated         = errors.New("not authenticated")
	ErrCircuitBreakerOpen       = errors.New("circuit breaker is open")

	ErrInfoRequestFailed = errors.New("info request failed")
	ErrNoAuthLinkInInfo  = errors.New("API info has no auth or login link")
	ErrSkipTLSOnlyInDev  = errors.New("skipping TLS verification requires development mode")
)

// IsNotFound reports whether the error is a not-found error.
func IsNotFound(err error) bool {
	return matchesErrorCode(err, ErrorCodeNotFound, 404)
}

// IsUnauthorized reports whether the error is an authentication failure.
func IsUnauthorized(err error) bool {
	return matchesErrorCode(err, ErrorCodeNotAuthenticated, 401)
}

// IsForbidden reports whether the error is an authorization failure.
func IsForbidden(err error) bool {
	return matchesErrorCode(err, ErrorCodeNotAuthorized, 403)
}

func matchesErrorCode(err error, code int, status int) bool {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.Code == code
	}

	errResp := &ResponseError{}
	if errors.As(err, &errResp) {
		first := errResp.FirstError()
		if first != nil {
			return first.Code == code
		}

		return errResp.StatusCode == status
	}

	return false
}

// ParseResponseError parses an error response body. The status code is
// attached so callers can branch on it even when the body carries no
// structured errors.
func ParseResponseError(data []byte, statusCode int) (*ResponseError, error) {
	errResp := ResponseError{StatusCode: statusCode}

	if len(data) > 0 {
		err := json.Unmarshal(data, &errResp)
		if err != nil {
			return nil, fmt.Errorf("unmarshaling response error: %w", err)
		}
	}

	return &errResp, nil
}
