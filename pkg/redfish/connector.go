package redfish

import (
	"context"
	"io"
)

// AuthInfo carries the credential state handed to a connector. Setting it
// performs no I/O; Login does. A non-empty SessionPath selects session
// authentication, its absence selects basic authentication validated
// against AuthTestPath.
type AuthInfo struct {
	Username     string
	Password     string
	AuthTestPath string
	SessionPath  string
}

// Connector is the authenticated request pipeline the resource graph runs
// on: it owns transport configuration, default and auth headers, the
// response cache, and credential state. Implementations are not safe for
// concurrent use; callers serialize access externally.
type Connector interface {
	// Get issues a GET, consulting and populating the response cache.
	Get(ctx context.Context, path string) (*Response, error)
	// Post issues a POST with an optional JSON-encoded payload.
	Post(ctx context.Context, path string, payload interface{}) (*Response, error)
	// Patch issues a PATCH with an optional JSON-encoded payload.
	Patch(ctx context.Context, path string, payload interface{}) (*Response, error)
	// Delete issues a DELETE.
	Delete(ctx context.Context, path string) (*Response, error)

	// Reset evicts the cache entry for path, or the whole cache when path
	// is empty.
	Reset(ctx context.Context, path string) error

	// SetAuthInfo stores credentials and selects the auth mode without I/O.
	SetAuthInfo(info AuthInfo)
	// Login establishes the configured authentication. Failures surface as
	// ErrInvalidCredentials.
	Login(ctx context.Context) error
	// Logout tears down any server-side session and removes auth headers.
	Logout(ctx context.Context) error

	// Stream opens a long-lived GET carrying the auth headers and returns
	// the raw body for event-stream consumption.
	Stream(ctx context.Context, path string) (io.ReadCloser, error)
}
