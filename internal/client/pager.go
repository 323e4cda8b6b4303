package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/ulisesh/arcade-services/internal/constants"
	"github.com/ulisesh/arcade-services/internal/http"
	"github.com/ulisesh/arcade-services/pkg/arcade"
)

// fetchPage performs one collection GET and assembles an immutable Page from
// the response body and its Link header. The transport has already run the
// response handler by the time this returns, so a non-success verdict aborts
// before any decoding happens. A response without a Link header yields a page
// with no relations, which ends a walk normally.
func fetchPage[T any](ctx context.Context, httpClient *http.Client, path string, query url.Values) (*arcade.Page[T], error) {
	resp, err := httpClient.Get(ctx, path, query)
	if err != nil {
		return nil, fmt.Errorf("fetching page: %w", err)
	}

	var items []T

	err = json.Unmarshal(resp.Body, &items)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", arcade.ErrDecodeFailed, err)
	}

	relations, err := arcade.ParseLinkHeader(resp.Headers.Values(constants.HeaderLink)...)
	if err != nil {
		return nil, fmt.Errorf("parsing pagination links: %w", err)
	}

	fetch := func(ctx context.Context, pageURL string) (*arcade.Page[T], error) {
		// Link hrefs are absolute; the transport bypasses base URL joining
		// for them and any query travels inside the href itself.
		return fetchPage[T](ctx, httpClient, pageURL, nil)
	}

	return arcade.NewPage(items, relations, fetch), nil
}
