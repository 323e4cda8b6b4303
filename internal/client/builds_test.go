package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internalhttp "github.com/ulisesh/arcade-services/internal/http"
	"github.com/ulisesh/arcade-services/pkg/arcade"
)

func TestBuildsClient_Get(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "/api/builds/42", request.URL.Path)
		assert.Equal(t, "GET", request.Method)

		build := arcade.Build{
			ID:           42,
			Repository:   "https://github.com/arcade/runtime",
			Branch:       "release/9.0",
			Commit:       "4f2c1a9",
			BuildNumber:  "20260801.3",
			DateProduced: time.Date(2026, 8, 1, 12, 30, 0, 0, time.UTC),
		}

		writer.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(writer).Encode(build)
	}))
	defer server.Close()

	builds := NewBuildsClient(internalhttp.NewClient(server.URL, nil))

	build, err := builds.Get(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), build.ID)
	assert.Equal(t, "https://github.com/arcade/runtime", build.Repository)
	assert.Equal(t, "release/9.0", build.Branch)
	assert.Equal(t, "20260801.3", build.BuildNumber)
}

func TestBuildsClient_Get_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set("Content-Type", "application/json")
		writer.WriteHeader(http.StatusNotFound)
		_, _ = writer.Write([]byte(`{"errors":[{"code":1010,"title":"ResourceNotFound","detail":"build 9000 not found"}]}`))
	}))
	defer server.Close()

	builds := NewBuildsClient(internalhttp.NewClient(server.URL, nil))

	build, err := builds.Get(context.Background(), 9000)
	require.Error(t, err)
	assert.Nil(t, build)
	assert.Contains(t, err.Error(), "getting build")
	assert.True(t, arcade.IsNotFound(err))
}

func TestBuildsClient_List(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "/api/builds", request.URL.Path)

		writer.Header().Set("Content-Type", "application/json")
		_, _ = writer.Write([]byte(`[{"id":1,"repository":"https://github.com/arcade/runtime","branch":"main"},{"id":2,"repository":"https://github.com/arcade/sdk","branch":"main"}]`))
	}))
	defer server.Close()

	builds := NewBuildsClient(internalhttp.NewClient(server.URL, nil))

	page, err := builds.List(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Count())
	assert.Equal(t, int64(1), page.Item(0).ID)
	assert.Equal(t, int64(2), page.Item(1).ID)
	assert.False(t, page.HasNext())
}

func TestBuildsClient_List_SkipsEmptyMiddlePages(t *testing.T) {
	server := newPageServer(t, map[string]pageFixture{
		"/api/builds": {
			body:  `[{"id":1},{"id":2}]`,
			links: map[string]string{"next": "/api/builds/page/2"},
		},
		"/api/builds/page/2": {
			body:  `[]`,
			links: map[string]string{"next": "/api/builds/page/3"},
		},
		"/api/builds/page/3": {
			body: `[{"id":3}]`,
		},
	})
	defer server.Close()

	builds := NewBuildsClient(internalhttp.NewClient(server.URL(), nil))

	page, err := builds.List(context.Background(), nil)
	require.NoError(t, err)

	walker := page.Walk()

	ids := make([]int64, 0, 3)

	for walker.HasNext() {
		build, err := walker.Next(context.Background())
		if err != nil {
			break
		}

		ids = append(ids, build.ID)
	}

	require.NoError(t, walker.Err())
	assert.Equal(t, []int64{1, 2, 3}, ids)

	// The empty page is fetched once on the way through, never retried.
	assert.Equal(t, 1, server.Hits("/api/builds"))
	assert.Equal(t, 1, server.Hits("/api/builds/page/2"))
	assert.Equal(t, 1, server.Hits("/api/builds/page/3"))
}
