package constants

import "time"

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests. Event
	// streams are exempt; they live until the context is cancelled.
	DefaultHTTPTimeout = 30 * time.Second
)

// Retry limits for the transport layer (transient 5xx/429/connection
// failures, not the single 401 re-authentication step).
const (
	// DefaultRetryMax is the default maximum number of transport retries.
	DefaultRetryMax = 3

	// DefaultRetryWaitMin is the minimum wait between transport retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum wait between transport retries.
	DefaultRetryWaitMax = 10 * time.Second
)

// Asynchronous operation polling.
const (
	// DefaultWaitRetries is the default monitor poll budget.
	DefaultWaitRetries = 10

	// DefaultWaitDelay is the default pause between monitor polls.
	DefaultWaitDelay = 1 * time.Second
)

// Default wire headers sent with every request.
const (
	// HeaderAccept is the default Accept value.
	HeaderAccept = "application/json"

	// HeaderODataVersion is the OData protocol version the service speaks.
	HeaderODataVersion = "4.0"

	// HeaderContentTypeJSON is sent with JSON-encoded request bodies.
	HeaderContentTypeJSON = "application/json"

	// HeaderSessionToken carries the session bearer token.
	HeaderSessionToken = "X-Auth-Token"
)

// Cache sizing.
const (
	// DefaultCacheSize is the default memory cache entry limit.
	DefaultCacheSize = 1000
)

// Graph navigation limits.
const (
	// MaxFragmentDepth caps the number of fragment path segments resolved
	// when addressing a sub-tree of a fetched document.
	MaxFragmentDepth = 32
)
