package arcade

import (
	"errors"
	"net/url"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsCollector receives request outcomes from the metrics interceptors.
type MetricsCollector interface {
	// RecordRequest is called once per completed request.
	RecordRequest(method, rawURL string, statusCode int, duration time.Duration)

	// RecordError is called additionally for failed requests. err is nil
	// when the failure is a non-success status without a transport error.
	RecordError(method, rawURL string, statusCode int, err error)
}

// Prometheus metrics for client operations.
var (
	clientRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arcade_client_requests_total",
		Help: "Total API requests by endpoint and status",
	}, []string{"method", "endpoint", "status"})

	clientRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "arcade_client_request_duration_seconds",
		Help:    "API request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"method", "endpoint"})

	clientErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arcade_client_errors_total",
		Help: "Total API errors by class",
	}, []string{"class"})
)

// ErrorClass represents a classification of request failures.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassNetwork represents transport errors with no response.
	ErrorClassNetwork ErrorClass = "network"
)

// ClassifyError maps a request outcome to an ErrorClass.
func ClassifyError(statusCode int, err error) ErrorClass {
	respErr := &ResponseError{}
	if err != nil && !errors.As(err, &respErr) {
		return ErrorClassNetwork
	}

	if statusCode >= 500 {
		return ErrorClassServer
	}

	return ErrorClassClient
}

// PrometheusMetrics implements MetricsCollector on the package's Prometheus
// collectors, registered with the default registry via promauto. Endpoint
// labels carry only the URL path to bound cardinality.
type PrometheusMetrics struct{}

// NewPrometheusMetrics creates a Prometheus-backed collector.
func NewPrometheusMetrics() *PrometheusMetrics {
	return &PrometheusMetrics{}
}

// RecordRequest implements MetricsCollector.
func (m *PrometheusMetrics) RecordRequest(method, rawURL string, statusCode int, duration time.Duration) {
	endpoint := endpointLabel(rawURL)

	clientRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	clientRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordError implements MetricsCollector.
func (m *PrometheusMetrics) RecordError(method, rawURL string, statusCode int, err error) {
	clientErrorsTotal.WithLabelValues(string(ClassifyError(statusCode, err))).Inc()
}

func endpointLabel(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Path == "" {
		return rawURL
	}

	return parsed.Path
}
