package redfish

import "time"

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config represents client configuration for building a Redfish client.
//
// # Authentication
//
// Username and Password are optional. When both are set, the connector
// enables its single 401→login→retry step and Root.Login can establish
// either a server-tracked session (when the service root advertises a
// session collection) or per-request basic authentication.
//
// # Caching
//
// Cache selects the response cache backend. If nil, an in-memory cache with
// default sizing is used; CacheTypeNone disables caching entirely.
//
// # Timeouts and retries
//
// Per-request timeouts should generally be controlled via the context passed
// to client methods. RetryMax/RetryWaitMin/RetryWaitMax tune the transport's
// handling of transient failures (>=500, 429, and connection errors); they
// do not affect the authentication retry, which happens at most once.
type Config struct {
	// Endpoint: base URL of the service (e.g. "https://bmc.example.com").
	// redfishclient.New normalizes this value by trimming a trailing slash
	// and adding "https://" if no scheme is present.
	Endpoint string

	// Username for session or basic authentication.
	Username string
	// Password for session or basic authentication.
	Password string

	// DefaultHeaders are merged over the built-in defaults
	// (Accept: application/json, OData-Version: 4.0) for every request.
	DefaultHeaders map[string]string

	// Cache configures the response cache backend.
	Cache *CacheConfig

	// StrictNavigation makes missing-key and out-of-range access on a
	// Resource return typed errors instead of an absent value.
	StrictNavigation bool

	// RetryMax: maximum number of transport retries for transient failures.
	RetryMax int
	// RetryWaitMin: minimum backoff between transport retries.
	RetryWaitMin time.Duration
	// RetryWaitMax: maximum backoff between transport retries.
	RetryWaitMax time.Duration

	// WaitRetries: default monitor poll budget for Resource.Wait.
	WaitRetries int
	// WaitDelay: default pause between monitor polls.
	WaitDelay time.Duration

	// Debug enables verbose request/response logging when a Logger is set.
	Debug bool
	// Logger: optional structured logger used by the connector.
	Logger Logger
	// UserAgent overrides the default User-Agent header.
	UserAgent string
}
