// Package redfishclient provides the main entry point for creating Redfish
// service clients.
package redfishclient

import (
	"context"
	"fmt"
	"strings"

	"github.com/openrack-io/redfish-client/internal/connector"
	"github.com/openrack-io/redfish-client/internal/constants"
	"github.com/openrack-io/redfish-client/pkg/redfish"
)

// ServiceRootPath is where every conforming service publishes its root
// document.
const ServiceRootPath = "/redfish/v1"

// New builds the connector from config, fetches the service root, and
// returns it as a navigable Root. When credentials are configured the
// client logs in immediately, selecting session or basic authentication
// from what the service root advertises.
func New(ctx context.Context, config *redfish.Config) (*redfish.Root, error) {
	if config == nil {
		return nil, redfish.ErrConfigRequired
	}

	if config.Endpoint == "" {
		return nil, redfish.ErrEndpointRequired
	}

	endpoint := normalizeEndpoint(config.Endpoint)

	cache, err := redfish.NewCacheFromConfig(config.Cache)
	if err != nil {
		return nil, fmt.Errorf("building cache: %w", err)
	}

	conn := connector.New(endpoint, connectorOptions(config, cache)...)

	root, err := Connect(ctx, conn, config)
	if err != nil {
		return nil, err
	}

	if config.Username != "" && config.Password != "" {
		err = root.Login(ctx, config.Username, config.Password)
		if err != nil {
			return nil, err
		}
	}

	return root, nil
}

// Connect fetches the service root over an existing connector and wraps it.
func Connect(ctx context.Context, conn redfish.Connector, config *redfish.Config) (*redfish.Root, error) {
	opts := []redfish.ResourceOption{
		redfish.WithStrictNavigation(config.StrictNavigation),
		redfish.WithWaitDefaults(config.WaitRetries, config.WaitDelay),
	}

	resource, err := redfish.NewResourceFromID(ctx, conn, ServiceRootPath, opts...)
	if err != nil {
		return nil, fmt.Errorf("fetching service root: %w", err)
	}

	return redfish.NewRoot(resource), nil
}

// NewWithEndpoint creates an unauthenticated client for endpoint.
func NewWithEndpoint(ctx context.Context, endpoint string) (*redfish.Root, error) {
	return New(ctx, &redfish.Config{Endpoint: endpoint})
}

// NewWithCredentials creates a client and logs in with username/password.
func NewWithCredentials(ctx context.Context, endpoint, username, password string) (*redfish.Root, error) {
	return New(ctx, &redfish.Config{
		Endpoint: endpoint,
		Username: username,
		Password: password,
	})
}

// normalizeEndpoint trims a trailing slash and defaults the scheme to
// https.
func normalizeEndpoint(endpoint string) string {
	endpoint = strings.TrimSuffix(endpoint, "/")
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}

	return endpoint
}

func connectorOptions(config *redfish.Config, cache redfish.Cache) []connector.Option {
	opts := []connector.Option{connector.WithCache(cache)}

	if config.Logger != nil {
		opts = append(opts, connector.WithLogger(config.Logger))
	}

	if config.Debug {
		opts = append(opts, connector.WithDebug(true))
	}

	if config.UserAgent != "" {
		opts = append(opts, connector.WithUserAgent(config.UserAgent))
	}

	if len(config.DefaultHeaders) > 0 {
		opts = append(opts, connector.WithDefaultHeaders(config.DefaultHeaders))
	}

	if config.RetryMax > 0 {
		retryWaitMin := constants.DefaultRetryWaitMin
		retryWaitMax := constants.DefaultRetryWaitMax

		if config.RetryWaitMin > 0 {
			retryWaitMin = config.RetryWaitMin
		}

		if config.RetryWaitMax > 0 {
			retryWaitMax = config.RetryWaitMax
		}

		opts = append(opts, connector.WithRetryConfig(config.RetryMax, retryWaitMin, retryWaitMax))
	}

	return opts
}
