//go:build integration

package integration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ulisesh/arcade-services/pkg/arcade"
)

func TestInfoWorkflow(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingConfig(t)

	client := NewTestClient(t, config)

	info, err := client.Info(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, info.Name)
	assert.NotEmpty(t, info.Version)
}

func TestQueueListing(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingConfig(t)

	client := NewTestClient(t, config)
	ctx := context.Background()

	page, err := client.Queues().List(ctx, nil)
	require.NoError(t, err)

	for _, queue := range page.Items() {
		assert.NotEmpty(t, queue.ID)
	}
}

func TestJobWalking(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingConfig(t)

	client := NewTestClient(t, config)
	ctx := context.Background()

	// Small pages force the walker across real page boundaries.
	params := arcade.NewQueryParams().WithPerPage(2)

	page, err := client.Jobs().List(ctx, params)
	require.NoError(t, err)

	walker := page.Walk()
	seen := make(map[string]bool)
	count := 0

	for count < 20 {
		job, err := walker.Next(ctx)
		if errors.Is(err, arcade.ErrNoMoreItems) {
			break
		}

		require.NoError(t, err)
		assert.False(t, seen[job.ID], "job %s yielded twice", job.ID)
		seen[job.ID] = true
		count++
	}

	// Exhaustion stays repeatable.
	if count < 20 {
		_, err = walker.Next(ctx)
		assert.ErrorIs(t, err, arcade.ErrNoMoreItems)
	}
}

func TestSubmitCancelWorkflow(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingConfig(t)
	config.SkipIfNoTestQueue(t)

	client := NewTestClient(t, config)
	ctx := context.Background()

	request := &arcade.JobRequest{
		Name:    GenerateTestName("integration"),
		QueueID: config.TestQueue,
		WorkItems: []arcade.WorkItemRequest{
			{Name: "noop", Command: "exit 0"},
		},
	}

	job, err := client.Jobs().Create(ctx, request)
	require.NoError(t, err)
	require.NotEmpty(t, job.ID)

	defer func() {
		// Best-effort cleanup; the job may already be terminal.
		_ = client.Jobs().Cancel(ctx, job.ID)
	}()

	fetched, err := client.Jobs().Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, job.ID, fetched.ID)
	assert.Equal(t, request.Name, fetched.Name)

	cancelCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	err = client.Jobs().Cancel(cancelCtx, job.ID)
	require.NoError(t, err)
}
