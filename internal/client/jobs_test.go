package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internalhttp "github.com/ulisesh/arcade-services/internal/http"
	"github.com/ulisesh/arcade-services/pkg/arcade"
)

func TestJobsClient_Create(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "/api/jobs", request.URL.Path)
		assert.Equal(t, "POST", request.Method)

		var jobReq arcade.JobRequest

		require.NoError(t, json.NewDecoder(request.Body).Decode(&jobReq))
		assert.Equal(t, "build-main", jobReq.Name)
		assert.Equal(t, "ubuntu.2204.amd64", jobReq.QueueID)
		assert.Len(t, jobReq.WorkItems, 1)
		assert.Equal(t, "compile", jobReq.WorkItems[0].Name)

		job := arcade.Job{
			ID:      "job-1",
			Name:    jobReq.Name,
			QueueID: jobReq.QueueID,
			State:   arcade.JobStateWaiting,
			Created: time.Now(),
		}

		writer.Header().Set("Content-Type", "application/json")
		writer.WriteHeader(http.StatusAccepted)
		_ = json.NewEncoder(writer).Encode(job)
	}))
	defer server.Close()

	jobs := NewJobsClient(internalhttp.NewClient(server.URL, nil))

	job, err := jobs.Create(context.Background(), &arcade.JobRequest{
		Name:    "build-main",
		QueueID: "ubuntu.2204.amd64",
		WorkItems: []arcade.WorkItemRequest{
			{Name: "compile", Command: "build.sh --ci"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "job-1", job.ID)
	assert.Equal(t, "build-main", job.Name)
	assert.Equal(t, arcade.JobStateWaiting, job.State)
}

func TestJobsClient_Get(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "/api/jobs/job-1", request.URL.Path)
		assert.Equal(t, "GET", request.Method)

		started := time.Now().Add(-time.Minute)
		job := arcade.Job{
			ID:      "job-1",
			Name:    "build-main",
			QueueID: "ubuntu.2204.amd64",
			Source:  "ci/public",
			State:   arcade.JobStateRunning,
			Created: time.Now().Add(-2 * time.Minute),
			Started: &started,
			Properties: map[string]string{
				"branch": "main",
			},
		}

		writer.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(writer).Encode(job)
	}))
	defer server.Close()

	jobs := NewJobsClient(internalhttp.NewClient(server.URL, nil))

	job, err := jobs.Get(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, "job-1", job.ID)
	assert.Equal(t, "build-main", job.Name)
	assert.Equal(t, "ci/public", job.Source)
	assert.Equal(t, arcade.JobStateRunning, job.State)
	assert.NotNil(t, job.Started)
	assert.Equal(t, "main", job.Properties["branch"])
}

func TestJobsClient_Get_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set("Content-Type", "application/json")
		writer.WriteHeader(http.StatusNotFound)
		_, _ = writer.Write([]byte(`{"errors":[{"code":1010,"title":"ResourceNotFound","detail":"job not found"}]}`))
	}))
	defer server.Close()

	jobs := NewJobsClient(internalhttp.NewClient(server.URL, nil))

	job, err := jobs.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.Nil(t, job)
	assert.Contains(t, err.Error(), "getting job")

	var respErr *arcade.ResponseError

	require.ErrorAs(t, err, &respErr)
	assert.Equal(t, http.StatusNotFound, respErr.StatusCode)
	assert.True(t, arcade.IsNotFound(err))
}

func TestJobsClient_Cancel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "/api/jobs/job-1/actions/cancel", request.URL.Path)
		assert.Equal(t, "POST", request.Method)

		writer.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	jobs := NewJobsClient(internalhttp.NewClient(server.URL, nil))

	err := jobs.Cancel(context.Background(), "job-1")
	require.NoError(t, err)
}

func TestJobsClient_List_QueryParams(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "/api/jobs", request.URL.Path)

		query := request.URL.Query()
		assert.Equal(t, "2", query.Get("page"))
		assert.Equal(t, "10", query.Get("per_page"))
		assert.Equal(t, arcade.JobStateRunning, query.Get("states"))

		writer.Header().Set("Content-Type", "application/json")
		_, _ = writer.Write([]byte(`[]`))
	}))
	defer server.Close()

	jobs := NewJobsClient(internalhttp.NewClient(server.URL, nil))

	params := arcade.NewQueryParams().
		WithPage(2).
		WithPerPage(10).
		WithFilter("states", arcade.JobStateRunning)

	page, err := jobs.List(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, 0, page.Count())
}

func TestJobsClient_List_WalksAllPages(t *testing.T) {
	server := newPageServer(t, map[string]pageFixture{
		"/api/jobs": {
			body:  `[{"id":"job-1"},{"id":"job-2"}]`,
			links: map[string]string{"next": "/api/jobs/page/2"},
		},
		"/api/jobs/page/2": {
			body: `[{"id":"job-3"}]`,
		},
	})
	defer server.Close()

	jobs := NewJobsClient(internalhttp.NewClient(server.URL(), nil))

	page, err := jobs.List(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Count())

	// Listing alone never touches the next page.
	assert.Equal(t, 0, server.Hits("/api/jobs/page/2"))

	all, err := page.Walk().All(context.Background())
	require.NoError(t, err)

	ids := make([]string, 0, len(all))
	for _, job := range all {
		ids = append(ids, job.ID)
	}

	assert.Equal(t, []string{"job-1", "job-2", "job-3"}, ids)
	assert.Equal(t, 1, server.Hits("/api/jobs"))
	assert.Equal(t, 1, server.Hits("/api/jobs/page/2"))
}

func TestJobsClient_WorkItems(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "/api/jobs/job-1/workitems", request.URL.Path)
		assert.Equal(t, "GET", request.Method)

		writer.Header().Set("Content-Type", "application/json")
		_, _ = writer.Write([]byte(`[{"name":"compile","job_id":"job-1","state":"finished","exit_code":0},{"name":"test","job_id":"job-1","state":"running","exit_code":0}]`))
	}))
	defer server.Close()

	jobs := NewJobsClient(internalhttp.NewClient(server.URL, nil))

	page, err := jobs.WorkItems(context.Background(), "job-1", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Count())
	assert.Equal(t, "compile", page.Item(0).Name)
	assert.Equal(t, "test", page.Item(1).Name)
	assert.False(t, page.HasNext())
}

func TestJobsClient_WorkItem(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "/api/jobs/job-1/workitems/compile", request.URL.Path)
		assert.Equal(t, "GET", request.Method)

		finished := time.Now()
		item := arcade.WorkItem{
			Name:        "compile",
			JobID:       "job-1",
			State:       arcade.WorkItemStateFinished,
			ExitCode:    0,
			MachineName: "bld-agent-07",
			Queued:      time.Now().Add(-5 * time.Minute),
			Finished:    &finished,
			ConsoleURL:  "https://arcade.example.com/logs/job-1/compile",
		}

		writer.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(writer).Encode(item)
	}))
	defer server.Close()

	jobs := NewJobsClient(internalhttp.NewClient(server.URL, nil))

	item, err := jobs.WorkItem(context.Background(), "job-1", "compile")
	require.NoError(t, err)
	assert.Equal(t, "compile", item.Name)
	assert.Equal(t, arcade.WorkItemStateFinished, item.State)
	assert.Equal(t, "bld-agent-07", item.MachineName)
	assert.NotNil(t, item.Finished)
}

func TestJobsClient_PollUntilComplete_Success(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "/api/jobs/job-1", request.URL.Path)

		attempts++

		state := arcade.JobStateRunning
		if attempts > 2 {
			state = arcade.JobStateFinished
		}

		job := arcade.Job{ID: "job-1", Name: "build-main", State: state, Created: time.Now()}

		writer.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(writer).Encode(job)
	}))
	defer server.Close()

	jobs := NewJobsClient(internalhttp.NewClient(server.URL, nil))

	// Use a shorter poll interval for testing
	jobs.pollInterval = 10 * time.Millisecond

	job, err := jobs.PollUntilComplete(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, "job-1", job.ID)
	assert.Equal(t, arcade.JobStateFinished, job.State)
	assert.Equal(t, 3, attempts)
}

func TestJobsClient_PollUntilComplete_Failed(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		attempts++

		state := arcade.JobStateRunning
		if attempts > 1 {
			state = arcade.JobStateFailed
		}

		job := arcade.Job{ID: "job-1", Name: "build-main", State: state, Created: time.Now()}

		writer.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(writer).Encode(job)
	}))
	defer server.Close()

	jobs := NewJobsClient(internalhttp.NewClient(server.URL, nil))

	jobs.pollInterval = 10 * time.Millisecond

	job, err := jobs.PollUntilComplete(context.Background(), "job-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrJobFailed)
	assert.NotNil(t, job)
	assert.Equal(t, arcade.JobStateFailed, job.State)
}

func TestJobsClient_PollUntilComplete_Cancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		job := arcade.Job{ID: "job-1", Name: "build-main", State: arcade.JobStateCancelled, Created: time.Now()}

		writer.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(writer).Encode(job)
	}))
	defer server.Close()

	jobs := NewJobsClient(internalhttp.NewClient(server.URL, nil))

	job, err := jobs.PollUntilComplete(context.Background(), "job-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrJobCancelled)
	assert.Equal(t, arcade.JobStateCancelled, job.State)
}

func TestJobsClient_PollUntilComplete_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		// Always running
		job := arcade.Job{ID: "job-1", Name: "build-main", State: arcade.JobStateRunning, Created: time.Now()}

		writer.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(writer).Encode(job)
	}))
	defer server.Close()

	jobs := NewJobsClient(internalhttp.NewClient(server.URL, nil))

	// Use a shorter poll interval and timeout for testing
	jobs.pollInterval = 10 * time.Millisecond
	jobs.pollTimeout = 50 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	job, err := jobs.PollUntilComplete(ctx, "job-1")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "timeout waiting for job to complete") ||
		strings.Contains(err.Error(), "context deadline exceeded"),
		"Expected timeout error, got: %v", err)

	if job != nil {
		assert.Equal(t, arcade.JobStateRunning, job.State)
	}
}
