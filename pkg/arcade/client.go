package arcade

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// JobsClient provides access to job resources.
type JobsClient interface {
	// Create submits a new job to its queue.
	Create(ctx context.Context, request *JobRequest) (*Job, error)

	// Get fetches one job by correlation ID.
	Get(ctx context.Context, jobID string) (*Job, error)

	// List fetches the first page of jobs matching params.
	List(ctx context.Context, params *QueryParams) (*Page[Job], error)

	// Cancel requests cancellation of a job.
	Cancel(ctx context.Context, jobID string) error

	// PollUntilComplete polls a job until it reaches a terminal state or the
	// poll window closes. The last observed job is returned alongside any
	// terminal error.
	PollUntilComplete(ctx context.Context, jobID string) (*Job, error)

	// WorkItems fetches the first page of a job's work items.
	WorkItems(ctx context.Context, jobID string, params *QueryParams) (*Page[WorkItem], error)

	// WorkItem fetches one work item of a job by name.
	WorkItem(ctx context.Context, jobID, name string) (*WorkItem, error)
}

// BuildsClient provides access to build resources.
type BuildsClient interface {
	// Get fetches one build by numeric ID.
	Get(ctx context.Context, buildID int64) (*Build, error)

	// List fetches the first page of builds matching params.
	List(ctx context.Context, params *QueryParams) (*Page[Build], error)
}

// QueuesClient provides access to machine queue resources.
type QueuesClient interface {
	// Get fetches one queue by ID.
	Get(ctx context.Context, queueID string) (*QueueInfo, error)

	// List fetches the first page of queues matching params.
	List(ctx context.Context, params *QueryParams) (*Page[QueueInfo], error)
}

// Client is the full API surface. Construct one with the arcadeclient
// package. List operations return the first Page of the collection; walk the
// rest with Page.Walk or the package-level helpers.
type Client interface {
	Jobs() JobsClient
	Builds() BuildsClient
	Queues() QueuesClient

	// Info fetches the service root document, including discovery links.
	Info(ctx context.Context) (*APIInfo, error)
}

// Config represents client configuration for building a Client.
//
// # Authentication precedence
//
// The concrete client applies the following precedence:
//  1. AccessToken: if set, it is used directly as a static Bearer token.
//  2. AccessToken + Username/Password: the token is tried first; once it
//     expires the client falls back to the password grant.
//  3. ClientID/ClientSecret: uses the OAuth2 client_credentials grant.
//  4. Username/Password: uses the OAuth2 password grant with the default
//     CLI client ID.
//  5. No credentials: requests are sent without authentication.
//
// # Token URL discovery
//
// If authentication is required and TokenURL is not provided,
// arcadeclient.New discovers the token endpoint from the API root
// ("/api/info" → links.auth, falling back to links.login).
//
// # Timeouts, retries, and TLS
//
// Per-request timeouts should be controlled via the context passed to client
// methods. The transport performs no retries unless RetryMax is set; page
// walking never retries regardless. SkipTLSVerify is intended for local
// development only.
type Config struct {
	// APIEndpoint: base URL for the API (e.g., "https://arcade.example.com").
	// arcadeclient.New normalizes this value by trimming a trailing slash and
	// adding "https://" if no scheme is present.
	APIEndpoint string

	// ClientID: OAuth2 client ID for the client_credentials grant.
	ClientID string
	// ClientSecret: OAuth2 client secret used with ClientID.
	ClientSecret string
	// Username: account username for the OAuth2 password grant.
	Username string
	// Password: account password for the OAuth2 password grant.
	Password string
	// RefreshToken: optional refresh token used to renew access tokens.
	RefreshToken string
	// AccessToken: if set, used directly as a Bearer token.
	AccessToken string
	// TokenURL: full OAuth2 token endpoint. If empty and authentication is
	// required, arcadeclient.New discovers it from the API root.
	TokenURL string

	// HTTPTimeout: transport-level timeout; zero means the default.
	HTTPTimeout time.Duration
	// RetryMax: maximum number of transport retries for transient failures
	// (>=500, 429, and connection errors). Zero disables retrying.
	RetryMax int
	// RetryWaitMin: minimum backoff between retries. Applied when RetryMax > 0.
	RetryWaitMin time.Duration
	// RetryWaitMax: maximum backoff between retries. Applied when RetryMax > 0.
	RetryWaitMax time.Duration
	// Debug: enables verbose HTTP request/response logging.
	Debug bool
	// Logger: optional logger used by the HTTP layer; nil uses the package
	// default.
	Logger *zerolog.Logger
	// SkipTLSVerify: if true, TLS verification is skipped. Intended for local
	// development.
	SkipTLSVerify bool
	// UserAgent: overrides the default User-Agent header sent by the client.
	UserAgent string
	// ResponseHandler: decides what non-success responses mean for page
	// fetches. Nil uses DefaultResponseHandler.
	ResponseHandler ResponseHandler
	// Metrics: optional collector; when set, the transport records every
	// request outcome through it.
	Metrics MetricsCollector
}
