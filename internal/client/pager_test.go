package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internalhttp "github.com/ulisesh/arcade-services/internal/http"
	"github.com/ulisesh/arcade-services/pkg/arcade"
)

var errPageRejected = errors.New("page rejected")

func TestFetchPage_SinglePage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "/api/jobs", request.URL.Path)

		writer.Header().Set("Content-Type", "application/json")
		_, _ = writer.Write([]byte(`[{"id":"job-1","name":"build-main","queue_id":"ubuntu.2204.amd64","state":"finished","created":"2026-08-01T10:00:00Z"},{"id":"job-2","name":"test-main","queue_id":"ubuntu.2204.amd64","state":"running","created":"2026-08-01T10:05:00Z"}]`))
	}))
	defer server.Close()

	httpClient := internalhttp.NewClient(server.URL, nil)

	page, err := fetchPage[arcade.Job](context.Background(), httpClient, "/api/jobs", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Count())
	assert.Equal(t, "job-1", page.Item(0).ID)
	assert.Equal(t, "job-2", page.Item(1).ID)
	assert.False(t, page.HasNext())
	assert.Empty(t, page.Relations())
}

func TestFetchPage_FollowsLinkHeader(t *testing.T) {
	server := newPageServer(t, map[string]pageFixture{
		"/api/jobs": {
			body:  `[{"id":"job-1"},{"id":"job-2"}]`,
			links: map[string]string{"next": "/api/jobs/page/2", "last": "/api/jobs/page/2"},
		},
		"/api/jobs/page/2": {
			body: `[{"id":"job-3"}]`,
		},
	})
	defer server.Close()

	httpClient := internalhttp.NewClient(server.URL(), nil)

	page, err := fetchPage[arcade.Job](context.Background(), httpClient, "/api/jobs", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Count())
	assert.True(t, page.HasNext())
	assert.NotEmpty(t, page.Links().Last)

	next, err := page.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, next.Count())
	assert.Equal(t, "job-3", next.Item(0).ID)
	assert.False(t, next.HasNext())

	assert.Equal(t, 1, server.Hits("/api/jobs"))
	assert.Equal(t, 1, server.Hits("/api/jobs/page/2"))
}

func TestFetchPage_MissingRelIsFatal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set("Link", `<http://arcade.example.com/api/jobs?page=2>; title="next"`)
		writer.Header().Set("Content-Type", "application/json")
		_, _ = writer.Write([]byte(`[{"id":"job-1"}]`))
	}))
	defer server.Close()

	httpClient := internalhttp.NewClient(server.URL, nil)

	page, err := fetchPage[arcade.Job](context.Background(), httpClient, "/api/jobs", nil)
	require.Error(t, err)
	assert.Nil(t, page)
	assert.ErrorIs(t, err, arcade.ErrMissingRelation)
	assert.Contains(t, err.Error(), "parsing pagination links")
}

func TestFetchPage_DecodeFailureIsFatal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set("Content-Type", "application/json")
		_, _ = writer.Write([]byte(`{"id":"job-1"}`))
	}))
	defer server.Close()

	httpClient := internalhttp.NewClient(server.URL, nil)

	page, err := fetchPage[arcade.Job](context.Background(), httpClient, "/api/jobs", nil)
	require.Error(t, err)
	assert.Nil(t, page)
	assert.ErrorIs(t, err, arcade.ErrDecodeFailed)
}

func TestFetchPage_ErrorResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set("Content-Type", "application/json")
		writer.WriteHeader(http.StatusNotFound)
		_, _ = writer.Write([]byte(`{"errors":[{"code":1010,"title":"ResourceNotFound","detail":"job collection not found"}]}`))
	}))
	defer server.Close()

	httpClient := internalhttp.NewClient(server.URL, nil)

	page, err := fetchPage[arcade.Job](context.Background(), httpClient, "/api/jobs", nil)
	require.Error(t, err)
	assert.Nil(t, page)
	assert.Contains(t, err.Error(), "fetching page")

	// The handler verdict aborts the fetch before any decoding: the error
	// body never reaches the JSON decoder.
	var respErr *arcade.ResponseError

	require.ErrorAs(t, err, &respErr)
	assert.Equal(t, http.StatusNotFound, respErr.StatusCode)
	assert.NotErrorIs(t, err, arcade.ErrDecodeFailed)
}

func TestFetchPage_HandlerInvokedOncePerFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusInternalServerError)
		_, _ = writer.Write([]byte(`{"oops":true}`))
	}))
	defer server.Close()

	calls := 0
	handler := arcade.ResponseHandlerFunc(func(ctx context.Context, req *arcade.Request, resp *arcade.Response) error {
		calls++

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

		return errPageRejected
	})

	httpClient := internalhttp.NewClient(server.URL, nil, internalhttp.WithResponseHandler(handler))

	page, err := fetchPage[arcade.Job](context.Background(), httpClient, "/api/jobs", nil)
	require.Error(t, err)
	assert.Nil(t, page)
	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, errPageRejected)
	assert.NotErrorIs(t, err, arcade.ErrDecodeFailed)
}

func TestFetchPage_HandlerContinue(t *testing.T) {
	t.Run("valid error body decodes as a page", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.Header().Set("Content-Type", "application/json")
			writer.WriteHeader(http.StatusNotFound)
			_, _ = writer.Write([]byte(`[]`))
		}))
		defer server.Close()

		calls := 0
		handler := arcade.ResponseHandlerFunc(func(ctx context.Context, req *arcade.Request, resp *arcade.Response) error {
			calls++

			return nil
		})

		httpClient := internalhttp.NewClient(server.URL, nil, internalhttp.WithResponseHandler(handler))

		page, err := fetchPage[arcade.Job](context.Background(), httpClient, "/api/jobs", nil)
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
		assert.Equal(t, 0, page.Count())
	})

	t.Run("undecodable error body still fails decode", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusBadGateway)
			_, _ = writer.Write([]byte(`upstream exploded`))
		}))
		defer server.Close()

		handler := arcade.ResponseHandlerFunc(func(ctx context.Context, req *arcade.Request, resp *arcade.Response) error {
			return nil
		})

		httpClient := internalhttp.NewClient(server.URL, nil, internalhttp.WithResponseHandler(handler))

		page, err := fetchPage[arcade.Job](context.Background(), httpClient, "/api/jobs", nil)
		require.Error(t, err)
		assert.Nil(t, page)
		assert.ErrorIs(t, err, arcade.ErrDecodeFailed)
	})
}
