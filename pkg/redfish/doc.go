// Package redfish models a Redfish service as a lazily materialized
// resource graph over an authenticated request pipeline.
//
// # Overview
//
// The package defines the value types and contracts of the client: Response
// (one completed HTTP exchange, with asynchronous-operation detection),
// Cache (pluggable response cache with memory, NATS KV, and no-op
// backends), Connector (the authenticated pipeline interface), Resource
// (the navigable graph node), and Root (the service root with login
// orchestration). The concrete connector lives in an internal package and
// is wired up by redfishclient, which most consumers should import to
// construct a client.
//
// Getting a client
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/openrack-io/redfish-client/pkg/redfish"
//	  "github.com/openrack-io/redfish-client/pkg/redfishclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//
//	  root, err := redfishclient.New(ctx, &redfish.Config{
//	    Endpoint: "https://bmc.example.com",
//	    Username: "admin",
//	    Password: "password",
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  system, err := root.Dig(ctx, "Systems", "Members", "0")
//	  if err != nil { log.Fatal(err) }
//	  _ = system
//	}
//
// # Navigation
//
// Field and Dig materialize values on demand: inline objects wrap without
// network access, cross-references (objects consisting solely of an
// "@odata.id" field) fetch through the shared connector, and arrays apply
// the rule element-wise. Whether invalid access fails loudly or yields an
// absent value is chosen at construction via Config.StrictNavigation.
//
// # Asynchronous operations
//
// Services answer long-running requests with 202 Accepted and a monitor
// address in the Location header. Resource.Wait polls the monitor until the
// operation completes, and is a no-op on responses that are already done,
// so callers never branch on synchronicity.
//
// # Errors
//
// Domain failures surface as typed sentinel errors (ErrInvalidCredentials,
// ErrResourceNotFound, ErrNoAddressableID, ErrAsyncTimeout, and the strict
// navigation errors). Helpers IsNotFound and IsUnauthorized branch on the
// common cases; transport failures propagate untranslated.
package redfish
