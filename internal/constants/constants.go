package constants

import "time"

// Permissions for the config directory and the files inside it.
const (
	ConfigDirPerm  = 0750
	ConfigFilePerm = 0600
)

// HTTP timeouts.
const (
	// DefaultHTTPTimeout applies to regular API requests.
	DefaultHTTPTimeout = 30 * time.Second

	// ShortHTTPTimeout applies to quick one-shot calls such as endpoint
	// discovery and export connections.
	ShortHTTPTimeout = 10 * time.Second
)

// Retry limits. The transport ships with retries disabled; these are the
// defaults applied when a caller opts in via WithRetryConfig.
const (
	DefaultRetryMax     = 3
	DefaultRetryWaitMin = 1 * time.Second
	DefaultRetryWaitMax = 10 * time.Second
)

// HTTP header names.
const (
	// HeaderLink carries pagination relations on collection responses.
	HeaderLink = "Link"

	// HeaderRequestID correlates a request with server-side logs.
	HeaderRequestID = "X-Request-Id"

	// HeaderAuthorization carries the bearer token.
	HeaderAuthorization = "Authorization"
)

// HTTP header values.
const (
	ContentTypeJSON = "application/json"

	// DefaultUserAgent identifies the client when the caller sets none.
	DefaultUserAgent = "arcade-client/1.0"
)

// Pagination limits.
const (
	// DefaultPageSize is the per-page size the CLI requests.
	DefaultPageSize = 50

	// DefaultMaxPages bounds --all-pages walks against link cycles.
	DefaultMaxPages = 50
)

// Job polling.
const (
	// DefaultPollInterval is the wait between job state checks.
	DefaultPollInterval = 2 * time.Second

	// DefaultJobPollTimeout bounds a poll that the caller left open-ended.
	DefaultJobPollTimeout = 5 * time.Minute
)

// Token handling.
const (
	// TokenExpirationBuffer treats a token expiring this soon as expired,
	// so a request started now does not outlive it.
	TokenExpirationBuffer = 30 * time.Second

	// TokenPartsCount is the number of dot-separated segments in a JWT.
	TokenPartsCount = 3

	// DefaultCLIClientID is the OAuth client used for password grants when
	// the caller does not supply one.
	DefaultCLIClientID = "arcade-cli"
)

// Circuit breaker defaults.
const (
	// CircuitBreakerThreshold is the failure count that opens the circuit.
	CircuitBreakerThreshold = 5

	// CircuitBreakerSuccessThreshold is the success count that closes it.
	CircuitBreakerSuccessThreshold = 2

	// CircuitBreakerTimeout is the open period before a half-open probe.
	CircuitBreakerTimeout = 30 * time.Second
)

// Output formats accepted by --output.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// Display strings.
const (
	// NotAvailable fills table cells that have no value.
	NotAvailable = "N/A"

	// MaskedSecret replaces credentials in rendered config output.
	MaskedSecret = "***"

	// ConfirmationYes is the answer destructive prompts require.
	ConfirmationYes = "yes"

	JSONIndentSize = 2
)
