// Package arcade provides the domain types and client interfaces for working
// with the Arcade Services API.
//
// # Overview
//
// The arcade package defines the domain types (Job, WorkItem, Build,
// QueueInfo) and the interfaces for resource-oriented clients (JobsClient,
// BuildsClient, QueuesClient). A concrete implementation is provided by the
// arcadeclient package, which wires configuration, transport, authentication,
// and endpoint discovery. Most consumers should import arcadeclient to
// construct a client and then interact with the interfaces exposed here.
//
// Getting a client
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/ulisesh/arcade-services/pkg/arcade"
//	  "github.com/ulisesh/arcade-services/pkg/arcadeclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  cli, err := arcadeclient.New(ctx, &arcade.Config{APIEndpoint: "https://arcade.example.com"})
//	  if err != nil { log.Fatal(err) }
//
//	  // List the first page of jobs
//	  jobs, err := cli.Jobs().List(ctx, arcade.NewQueryParams().WithPerPage(50))
//	  if err != nil { log.Fatal(err) }
//	  _ = jobs
//	}
//
// # Pages and walking
//
// Collection endpoints return one Page at a time, carrying the items of that
// response plus the navigation links parsed from its Link header. A Page is
// a finite container over its own items only; the logical collection spans
// every page reachable through next links. Walk it lazily:
//
//	walker := jobs.Walk()
//	for walker.HasNext() {
//	  job, err := walker.Next(ctx)
//	  if err != nil { break }
//	  _ = job
//	}
//
// or collect everything at once:
//
//	all, err := arcade.AllPages(ctx, jobs, nil)
//	if err != nil { /* handle error */ }
//	_ = all
//
// The walker fetches at most one page at a time and never prefetches; a
// failed fetch is terminal.
//
// # Errors
//
// API errors are represented by APIError and ResponseError. Helpers such as
// IsNotFound, IsUnauthorized, and IsForbidden make it easy to branch on
// common cases. Non-success responses during page fetches are routed through
// a caller-supplied ResponseHandler, invoked once before the body is
// decoded.
//
// # Interceptors
//
// The package includes request/response interceptors (logging, headers,
// metrics, rate limiting, circuit breaking) which the transport runs on
// every request. The arcadeclient package composes these pieces for a
// sensible default client; applications with advanced needs can use the
// primitives directly.
package arcade
