package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/ulisesh/arcade-services/internal/constants"
	"github.com/ulisesh/arcade-services/internal/http"
	"github.com/ulisesh/arcade-services/pkg/arcade"
)

// JobsClient implements arcade.JobsClient.
// Static errors for err113 compliance.
var (
	ErrJobFailed    = errors.New("job failed")
	ErrJobCancelled = errors.New("job cancelled")
)

type JobsClient struct {
	httpClient   *http.Client
	pollInterval time.Duration
	pollTimeout  time.Duration
}

// NewJobsClient creates a new jobs client.
func NewJobsClient(httpClient *http.Client) *JobsClient {
	return &JobsClient{
		httpClient:   httpClient,
		pollInterval: constants.DefaultPollInterval,
		pollTimeout:  constants.DefaultJobPollTimeout,
	}
}

// Create implements arcade.JobsClient.Create.
func (c *JobsClient) Create(ctx context.Context, request *arcade.JobRequest) (*arcade.Job, error) {
	resp, err := c.httpClient.Post(ctx, "/api/jobs", request)
	if err != nil {
		return nil, fmt.Errorf("creating job: %w", err)
	}

	var job arcade.Job

	err = json.Unmarshal(resp.Body, &job)
	if err != nil {
		return nil, fmt.Errorf("parsing job: %w", err)
	}

	return &job, nil
}

// Get implements arcade.JobsClient.Get.
func (c *JobsClient) Get(ctx context.Context, jobID string) (*arcade.Job, error) {
	path := "/api/jobs/" + jobID

	resp, err := c.httpClient.Get(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("getting job: %w", err)
	}

	var job arcade.Job

	err = json.Unmarshal(resp.Body, &job)
	if err != nil {
		return nil, fmt.Errorf("parsing job: %w", err)
	}

	return &job, nil
}

// List implements arcade.JobsClient.List.
func (c *JobsClient) List(ctx context.Context, params *arcade.QueryParams) (*arcade.Page[arcade.Job], error) {
	var query url.Values
	if params != nil {
		query = params.ToValues()
	}

	return fetchPage[arcade.Job](ctx, c.httpClient, "/api/jobs", query)
}

// Cancel implements arcade.JobsClient.Cancel.
func (c *JobsClient) Cancel(ctx context.Context, jobID string) error {
	path := "/api/jobs/" + jobID + "/actions/cancel"

	_, err := c.httpClient.Post(ctx, path, nil)
	if err != nil {
		return fmt.Errorf("cancelling job: %w", err)
	}

	return nil
}

// WorkItems implements arcade.JobsClient.WorkItems.
func (c *JobsClient) WorkItems(ctx context.Context, jobID string, params *arcade.QueryParams) (*arcade.Page[arcade.WorkItem], error) {
	var query url.Values
	if params != nil {
		query = params.ToValues()
	}

	path := "/api/jobs/" + jobID + "/workitems"

	return fetchPage[arcade.WorkItem](ctx, c.httpClient, path, query)
}

// WorkItem implements arcade.JobsClient.WorkItem.
func (c *JobsClient) WorkItem(ctx context.Context, jobID, name string) (*arcade.WorkItem, error) {
	path := "/api/jobs/" + jobID + "/workitems/" + name

	resp, err := c.httpClient.Get(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("getting work item: %w", err)
	}

	var item arcade.WorkItem

	err = json.Unmarshal(resp.Body, &item)
	if err != nil {
		return nil, fmt.Errorf("parsing work item: %w", err)
	}

	return &item, nil
}

// PollUntilComplete implements arcade.JobsClient.PollUntilComplete.
// It polls the job until it reaches a terminal state (finished, failed, or
// cancelled).
func (c *JobsClient) PollUntilComplete(ctx context.Context, jobID string) (*arcade.Job, error) {
	pollCtx, cancel := context.WithTimeout(ctx, c.pollTimeout)
	defer cancel()

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	// First check immediately
	job, err := c.Get(pollCtx, jobID)
	if err != nil {
		return nil, fmt.Errorf("getting job status: %w", err)
	}

	if isJobTerminal(job) {
		return job, terminalJobError(job)
	}

	// Poll until complete or timeout
	for {
		select {
		case <-pollCtx.Done():
			// Return the last known state on timeout
			return job, fmt.Errorf("timeout waiting for job to complete: %w", pollCtx.Err())
		case <-ticker.C:
			job, err = c.Get(pollCtx, jobID)
			if err != nil {
				return nil, fmt.Errorf("getting job status: %w", err)
			}

			if isJobTerminal(job) {
				return job, terminalJobError(job)
			}
		}
	}
}

// isJobTerminal reports whether the job reached a terminal state.
func isJobTerminal(job *arcade.Job) bool {
	switch job.State {
	case arcade.JobStateFinished, arcade.JobStateFailed, arcade.JobStateCancelled:
		return true
	default:
		return false
	}
}

// terminalJobError maps a terminal job state to its sentinel error, nil for a
// clean finish.
func terminalJobError(job *arcade.Job) error {
	switch job.State {
	case arcade.JobStateFailed:
		return fmt.Errorf("%w: %s", ErrJobFailed, job.ID)
	case arcade.JobStateCancelled:
		return fmt.Errorf("%w: %s", ErrJobCancelled, job.ID)
	default:
		return nil
	}
}
