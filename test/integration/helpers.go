//go:build integration

package integration

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ulisesh/arcade-services/internal/constants"
	"github.com/ulisesh/arcade-services/pkg/arcade"
	"github.com/ulisesh/arcade-services/pkg/arcadeclient"
)

// TestConfig holds configuration for integration tests.
type TestConfig struct {
	APIEndpoint string
	Token       string
	Username    string
	Password    string
	TestQueue   string
	Verbose     bool
}

// LoadTestConfig loads configuration from environment variables.
func LoadTestConfig() *TestConfig {
	return &TestConfig{
		APIEndpoint: os.Getenv("ARCADE_API_ENDPOINT"),
		Token:       os.Getenv("ARCADE_TOKEN"),
		Username:    os.Getenv("ARCADE_USERNAME"),
		Password:    os.Getenv("ARCADE_PASSWORD"),
		TestQueue:   os.Getenv("ARCADE_TEST_QUEUE"),
		Verbose:     os.Getenv("ARCADE_VERBOSE") == "true",
	}
}

// SkipIfMissingConfig skips the test if required config is missing.
func (config *TestConfig) SkipIfMissingConfig(t *testing.T) {
	if config.APIEndpoint == "" {
		t.Skip("ARCADE_API_ENDPOINT not set, skipping integration test")
	}
}

// SkipIfNoTestQueue skips tests that submit real jobs.
func (config *TestConfig) SkipIfNoTestQueue(t *testing.T) {
	if config.TestQueue == "" {
		t.Skip("ARCADE_TEST_QUEUE not set, skipping job submission test")
	}
}

// NewTestClient builds a client from the test configuration.
func NewTestClient(t *testing.T, config *TestConfig) arcade.Client {
	t.Helper()

	ctx := context.Background()

	// Real-network tests tolerate transient failures at the transport.
	clientConfig := &arcade.Config{
		APIEndpoint: config.APIEndpoint,
		AccessToken: config.Token,
		Username:    config.Username,
		Password:    config.Password,
		RetryMax:    constants.DefaultRetryMax,
		Debug:       config.Verbose,
	}

	client, err := arcadeclient.New(ctx, clientConfig)
	require.NoError(t, err, "creating integration test client")

	return client
}

// GenerateTestName creates a unique test resource name.
func GenerateTestName(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().Unix())
}
