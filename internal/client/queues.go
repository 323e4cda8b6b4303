package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/ulisesh/arcade-services/internal/http"
	"github.com/ulisesh/arcade-services/pkg/arcade"
)

// QueuesClient implements arcade.QueuesClient.
type QueuesClient struct {
	httpClient *http.Client
}

// NewQueuesClient creates a new queues client.
func NewQueuesClient(httpClient *http.Client) *QueuesClient {
	return &QueuesClient{httpClient: httpClient}
}

// Get implements arcade.QueuesClient.Get.
func (c *QueuesClient) Get(ctx context.Context, queueID string) (*arcade.QueueInfo, error) {
	path := "/api/queues/" + queueID

	resp, err := c.httpClient.Get(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("getting queue: %w", err)
	}

	var queue arcade.QueueInfo

	err = json.Unmarshal(resp.Body, &queue)
	if err != nil {
		return nil, fmt.Errorf("parsing queue: %w", err)
	}

	return &queue, nil
}

// List implements arcade.QueuesClient.List.
func (c *QueuesClient) List(ctx context.Context, params *arcade.QueryParams) (*arcade.Page[arcade.QueueInfo], error) {
	var query url.Values
	if params != nil {
		query = params.ToValues()
	}

	return fetchPage[arcade.QueueInfo](ctx, c.httpClient, "/api/queues", query)
}
