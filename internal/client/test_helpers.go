package client

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/ulisesh/arcade-services/internal/constants"
	internalhttp "github.com/ulisesh/arcade-services/internal/http"
)

// NewTestClient creates an unauthenticated client against the given base URL.
func NewTestClient(baseURL string) *Client {
	httpClient := internalhttp.NewClient(baseURL, nil)

	client := &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
	}

	client.initializeResourceClients()

	return client
}

// pageFixture is one canned collection page: a raw JSON array body plus
// pagination links keyed by relation, as paths on the same server.
type pageFixture struct {
	body  string
	links map[string]string
}

// pageServer serves canned pages with Link headers and counts hits per path.
type pageServer struct {
	server *httptest.Server

	mu   sync.Mutex
	hits map[string]int
}

func newPageServer(t *testing.T, pages map[string]pageFixture) *pageServer {
	t.Helper()

	srv := &pageServer{hits: make(map[string]int)}

	srv.server = httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		srv.mu.Lock()
		srv.hits[request.URL.Path]++
		srv.mu.Unlock()

		fixture, ok := pages[request.URL.Path]
		if !ok {
			writer.Header().Set("Content-Type", constants.ContentTypeJSON)
			writer.WriteHeader(http.StatusNotFound)
			_, _ = writer.Write([]byte(`{"errors":[{"code":1010,"title":"ResourceNotFound","detail":"unknown page"}]}`))

			return
		}

		if header := srv.linkHeader(fixture.links); header != "" {
			writer.Header().Set(constants.HeaderLink, header)
		}

		writer.Header().Set("Content-Type", constants.ContentTypeJSON)
		_, _ = writer.Write([]byte(fixture.body))
	}))

	return srv
}

// linkHeader renders fixture links as one RFC 5988 header value with
// absolute URLs.
func (s *pageServer) linkHeader(links map[string]string) string {
	if len(links) == 0 {
		return ""
	}

	// Stable relation order keeps assertions deterministic.
	entries := make([]string, 0, len(links))

	for _, rel := range []string{"first", "prev", "next", "last"} {
		path, ok := links[rel]
		if !ok {
			continue
		}

		entries = append(entries, fmt.Sprintf("<%s%s>; rel=%q", s.server.URL, path, rel))
	}

	return strings.Join(entries, ", ")
}

func (s *pageServer) URL() string {
	return s.server.URL
}

// Hits reports how many requests the given path has served.
func (s *pageServer) Hits(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.hits[path]
}

// TotalHits reports the total number of requests served.
func (s *pageServer) TotalHits() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0
	for _, count := range s.hits {
		total += count
	}

	return total
}

func (s *pageServer) Close() {
	s.server.Close()
}
