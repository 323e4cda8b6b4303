package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/ulisesh/arcade-services/internal/http"
	"github.com/ulisesh/arcade-services/pkg/arcade"
)

// BuildsClient implements arcade.BuildsClient.
type BuildsClient struct {
	httpClient *http.Client
}

// NewBuildsClient creates a new builds client.
func NewBuildsClient(httpClient *http.Client) *BuildsClient {
	return &BuildsClient{httpClient: httpClient}
}

// Get implements arcade.BuildsClient.Get.
func (c *BuildsClient) Get(ctx context.Context, buildID int64) (*arcade.Build, error) {
	path := "/api/builds/" + strconv.FormatInt(buildID, 10)

	resp, err := c.httpClient.Get(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("getting build: %w", err)
	}

	var build arcade.Build

	err = json.Unmarshal(resp.Body, &build)
	if err != nil {
		return nil, fmt.Errorf("parsing build: %w", err)
	}

	return &build, nil
}

// List implements arcade.BuildsClient.List.
func (c *BuildsClient) List(ctx context.Context, params *arcade.QueryParams) (*arcade.Page[arcade.Build], error) {
	var query url.Values
	if params != nil {
		query = params.ToValues()
	}

	return fetchPage[arcade.Build](ctx, c.httpClient, "/api/builds", query)
}
