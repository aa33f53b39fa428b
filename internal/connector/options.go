package connector

import (
	"time"

	"github.com/openrack-io/redfish-client/pkg/redfish"
)

// Option configures a Connector at construction.
type Option func(*Connector)

// WithCache injects the response cache backend.
func WithCache(cache redfish.Cache) Option {
	return func(c *Connector) {
		c.cache = cache
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger redfish.Logger) Option {
	return func(c *Connector) {
		c.logger = logger
	}
}

// WithDebug enables request/response debug logging.
func WithDebug(debug bool) Option {
	return func(c *Connector) {
		c.debug = debug
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Connector) {
		c.userAgent = userAgent
	}
}

// WithRetryConfig tunes the transport's transient-failure retries. It does
// not affect the single 401 re-authentication step.
func WithRetryConfig(retryMax int, retryWaitMin, retryWaitMax time.Duration) Option {
	return func(c *Connector) {
		c.client.RetryMax = retryMax
		c.client.RetryWaitMin = retryWaitMin
		c.client.RetryWaitMax = retryWaitMax
	}
}

// WithDefaultHeaders merges extra default headers over the built-in ones.
func WithDefaultHeaders(headers map[string]string) Option {
	return func(c *Connector) {
		for name, value := range headers {
			c.defaultHeaders[name] = value
		}
	}
}
