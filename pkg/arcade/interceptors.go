package arcade

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/ulisesh/arcade-services/internal/constants"
)

// Request mirrors an outgoing HTTP request for interceptors and response
// handlers. Mutations to Headers and Metadata are visible to the transport.
type Request struct {
	Method   string
	URL      string
	Headers  http.Header
	Body     []byte
	Metadata map[string]any
}

// Response mirrors a received HTTP response for interceptors and response
// handlers.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	Error      error
}

// RequestInterceptor runs before a request is sent and may mutate it.
type RequestInterceptor func(ctx context.Context, req *Request) error

// ResponseInterceptor runs after a response arrives.
type ResponseInterceptor func(ctx context.Context, req *Request, resp *Response) error

// InterceptorChain holds interceptors and runs them in registration order.
// The first error stops the chain.
type InterceptorChain struct {
	requestInterceptors  []RequestInterceptor
	responseInterceptors []ResponseInterceptor
}

// NewInterceptorChain creates an empty interceptor chain.
func NewInterceptorChain() *InterceptorChain {
	return &InterceptorChain{}
}

// AddRequestInterceptor appends a request interceptor.
func (c *InterceptorChain) AddRequestInterceptor(interceptor RequestInterceptor) {
	c.requestInterceptors = append(c.requestInterceptors, interceptor)
}

// AddResponseInterceptor appends a response interceptor.
func (c *InterceptorChain) AddResponseInterceptor(interceptor ResponseInterceptor) {
	c.responseInterceptors = append(c.responseInterceptors, interceptor)
}

// ExecuteRequestInterceptors runs the request interceptors in order.
func (c *InterceptorChain) ExecuteRequestInterceptors(ctx context.Context, req *Request) error {
	for _, interceptor := range c.requestInterceptors {
		if err := interceptor(ctx, req); err != nil {
			return fmt.Errorf("running request interceptor: %w", err)
		}
	}

	return nil
}

// ExecuteResponseInterceptors runs the response interceptors in order.
func (c *InterceptorChain) ExecuteResponseInterceptors(ctx context.Context, req *Request, resp *Response) error {
	for _, interceptor := range c.responseInterceptors {
		if err := interceptor(ctx, req, resp); err != nil {
			return fmt.Errorf("running response interceptor: %w", err)
		}
	}

	return nil
}

// ResponseHandler decides what a non-success response means for a page
// fetch. The fetcher invokes it exactly once per non-success response,
// before the body is decoded. Returning an error aborts the fetch with that
// error; returning nil continues into decoding the (possibly error) body.
type ResponseHandler interface {
	HandleResponse(ctx context.Context, req *Request, resp *Response) error
}

// ResponseHandlerFunc adapts a function to the ResponseHandler interface.
type ResponseHandlerFunc func(ctx context.Context, req *Request, resp *Response) error

// HandleResponse implements ResponseHandler.
func (f ResponseHandlerFunc) HandleResponse(ctx context.Context, req *Request, resp *Response) error {
	return f(ctx, req, resp)
}

// DefaultResponseHandler aborts on every non-success response, surfacing the
// body as a ResponseError.
func DefaultResponseHandler() ResponseHandler {
	return ResponseHandlerFunc(func(_ context.Context, _ *Request, resp *Response) error {
		respErr, err := ParseResponseError(resp.Body, resp.StatusCode)
		if err != nil {
			return &ResponseError{StatusCode: resp.StatusCode}
		}

		if resp.Headers != nil {
			respErr.RequestID = resp.Headers.Get(constants.HeaderRequestID)
		}

		return respErr
	})
}

// LoggingInterceptor logs requests at debug level.
func LoggingInterceptor(logger zerolog.Logger) RequestInterceptor {
	return func(_ context.Context, req *Request) error {
		logger.Debug().
			Str("method", req.Method).
			Str("url", req.URL).
			Msg("API Request")

		return nil
	}
}

// LoggingResponseInterceptor logs responses, errors at error level.
func LoggingResponseInterceptor(logger zerolog.Logger) ResponseInterceptor {
	return func(_ context.Context, req *Request, resp *Response) error {
		event := logger.Debug()
		if resp.Error != nil {
			event = logger.Error().Err(resp.Error)
		}

		event.
			Str("method", req.Method).
			Str("url", req.URL).
			Int("status_code", resp.StatusCode).
			Msg("API Response")

		return nil
	}
}

// RateLimitInterceptor caps outgoing requests per second with a token
// bucket. The refill goroutine lives for the life of the process.
func RateLimitInterceptor(requestsPerSecond int) RequestInterceptor {
	tokens := make(chan struct{}, requestsPerSecond)
	for range requestsPerSecond {
		tokens <- struct{}{}
	}

	go func() {
		ticker := time.NewTicker(time.Second / time.Duration(requestsPerSecond))
		defer ticker.Stop()

		for range ticker.C {
			select {
			case tokens <- struct{}{}:
			default:
			}
		}
	}()

	return func(ctx context.Context, _ *Request) error {
		select {
		case <-tokens:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// HeaderInterceptor adds custom headers to requests.
func HeaderInterceptor(headers map[string]string) RequestInterceptor {
	return func(_ context.Context, req *Request) error {
		if req.Headers == nil {
			req.Headers = make(http.Header)
		}

		for key, value := range headers {
			req.Headers.Set(key, value)
		}

		return nil
	}
}

// UserAgentInterceptor overrides the User-Agent header.
func UserAgentInterceptor(userAgent string) RequestInterceptor {
	return HeaderInterceptor(map[string]string{"User-Agent": userAgent})
}

// MetricsRequestInterceptor records the request start time for the matching
// response interceptor.
func MetricsRequestInterceptor(collector MetricsCollector) RequestInterceptor {
	return func(_ context.Context, req *Request) error {
		if req.Metadata == nil {
			req.Metadata = make(map[string]any)
		}

		req.Metadata["start_time"] = time.Now()

		return nil
	}
}

// MetricsResponseInterceptor feeds request outcomes to a MetricsCollector.
func MetricsResponseInterceptor(collector MetricsCollector) ResponseInterceptor {
	return func(_ context.Context, req *Request, resp *Response) error {
		var duration time.Duration

		if req.Metadata != nil {
			if startTime, ok := req.Metadata["start_time"].(time.Time); ok {
				duration = time.Since(startTime)
			}
		}

		collector.RecordRequest(req.Method, req.URL, resp.StatusCode, duration)

		if resp.Error != nil || resp.StatusCode >= 400 {
			collector.RecordError(req.Method, req.URL, resp.StatusCode, resp.Error)
		}

		return nil
	}
}

// Circuit breaker states.
const (
	breakerClosed   = "closed"
	breakerOpen     = "open"
	breakerHalfOpen = "half-open"
)

// CircuitBreakerConfig tunes the circuit breaker interceptors.
type CircuitBreakerConfig struct {
	// Threshold is the number of failures before opening.
	Threshold int
	// Timeout is the time before a half-open probe is allowed.
	Timeout time.Duration
	// SuccessThreshold is the number of successes to close again.
	SuccessThreshold int
}

// CircuitBreaker tracks circuit state across requests.
type CircuitBreaker struct {
	config      *CircuitBreakerConfig
	failures    int
	successes   int
	state       string
	lastFailure time.Time
}

// NewCircuitBreaker creates a circuit breaker; nil config uses defaults.
func NewCircuitBreaker(config *CircuitBreakerConfig) *CircuitBreaker {
	if config == nil {
		config = &CircuitBreakerConfig{
			Threshold:        constants.CircuitBreakerThreshold,
			Timeout:          constants.CircuitBreakerTimeout,
			SuccessThreshold: constants.CircuitBreakerSuccessThreshold,
		}
	}

	return &CircuitBreaker{
		config: config,
		state:  breakerClosed,
	}
}

// CircuitBreakerRequestInterceptor rejects requests while the circuit is
// open.
func CircuitBreakerRequestInterceptor(breaker *CircuitBreaker) RequestInterceptor {
	return func(_ context.Context, req *Request) error {
		if breaker.state == breakerOpen {
			if time.Since(breaker.lastFailure) > breaker.config.Timeout {
				breaker.state = breakerHalfOpen
				breaker.successes = 0
			} else {
				return ErrCircuitBreakerOpen
			}
		}

		return nil
	}
}

// CircuitBreakerResponseInterceptor updates circuit state from responses.
func CircuitBreakerResponseInterceptor(breaker *CircuitBreaker) ResponseInterceptor {
	return func(_ context.Context, req *Request, resp *Response) error {
		if resp.Error != nil || resp.StatusCode >= 500 {
			breaker.failures++
			breaker.lastFailure = time.Now()

			if breaker.failures >= breaker.config.Threshold || breaker.state == breakerHalfOpen {
				breaker.state = breakerOpen
			}

			return nil
		}

		switch breaker.state {
		case breakerHalfOpen:
			breaker.successes++
			if breaker.successes >= breaker.config.SuccessThreshold {
				breaker.state = breakerClosed
				breaker.failures = 0
			}
		case breakerClosed:
			breaker.failures = 0
		}

		return nil
	}
}
