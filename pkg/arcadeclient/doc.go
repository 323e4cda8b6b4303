// Package arcadeclient provides the primary entry point for constructing an
// Arcade build services API client that implements the arcade.Client
// interface.
//
// It layers configuration, HTTP transport, authentication, and token endpoint
// discovery on top of the resource interfaces and types defined in the arcade
// package. Most applications should import arcadeclient to build a client,
// then use the returned arcade.Client to access resource-specific clients:
// Jobs(), Builds(), and Queues().
//
// # Quick start
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
//
//	  // Minimal: just an API endpoint (no auth).
//	  cli, err := arcadeclient.New(ctx, &arcade.Config{APIEndpoint: "https://arcade.example.com"})
//	  if err != nil { log.Fatal(err) }
//
//	  // Or with an access token you already have:
//	  cli, err = arcadeclient.New(ctx, &arcade.Config{
//	    APIEndpoint: "https://arcade.example.com",
//	    AccessToken: "eyJhbGciOi...", // bearer token
//	  })
//
//	  // Or with username/password or client credentials. When credentials
//	  // are provided and no token URL is set, arcadeclient discovers the
//	  // auth endpoint from the API root (/api/info) and sets TokenURL
//	  // automatically.
//	  cli, err = arcadeclient.New(ctx, &arcade.Config{
//	    APIEndpoint: "https://arcade.example.com",
//	    Username:    "user",
//	    Password:    "pass",
//	    // alternatively:
//	    // ClientID:     "client-id",
//	    // ClientSecret: "client-secret",
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  // List the first page of jobs, then walk the rest lazily.
//	  page, err := cli.Jobs().List(ctx, arcade.NewQueryParams().WithPerPage(10))
//	  if err != nil { log.Fatal(err) }
//
//	  jobs, err := page.Walk().All(ctx)
//	  if err != nil { log.Fatal(err) }
//	  _ = jobs
//	}
//
// # TLS and development mode
//
// For local development, you can set Config.SkipTLSVerify=true. During
// endpoint discovery this is gated by the environment variable
// ARCADE_DEV_MODE to avoid accidental insecure usage in production
// environments.
//
// # Helpers
//
// The package also provides convenience constructors NewWithEndpoint,
// NewWithToken, NewWithClientCredentials, and NewWithPassword that wrap New
// with the appropriate configuration.
package arcadeclient
