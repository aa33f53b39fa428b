package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/openrack-io/redfish-client/pkg/redfish"
	"github.com/openrack-io/redfish-client/pkg/redfishclient"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Output format constants.
const (
	OutputFormatJSON = "json"
	OutputFormatYAML = "yaml"
)

// configFromViper assembles the client configuration from flags, config
// file, and REDFISH_* environment variables.
func configFromViper() *redfish.Config {
	config := &redfish.Config{
		Endpoint:         viper.GetString("endpoint"),
		Username:         viper.GetString("username"),
		Password:         viper.GetString("password"),
		StrictNavigation: viper.GetBool("strict"),
	}

	if viper.GetBool("no-cache") {
		config.Cache = &redfish.CacheConfig{Type: redfish.CacheTypeNone}
	}

	return config
}

// connectRoot builds a client from the ambient configuration.
func connectRoot(ctx context.Context) (*redfish.Root, error) {
	return connectRootWith(ctx, configFromViper())
}

// connectRootWith builds a client from an explicit configuration.
func connectRootWith(ctx context.Context, config *redfish.Config) (*redfish.Root, error) {
	root, err := redfishclient.New(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connecting to service: %w", err)
	}

	return root, nil
}

// StandardJSONRenderer writes data as indented JSON to stdout.
func StandardJSONRenderer[T any](data T) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	err := encoder.Encode(data)
	if err != nil {
		return fmt.Errorf("encoding data to JSON: %w", err)
	}

	return nil
}

// StandardYAMLRenderer writes data as YAML to stdout.
func StandardYAMLRenderer[T any](data T) error {
	encoder := yaml.NewEncoder(os.Stdout)

	err := encoder.Encode(data)
	if err != nil {
		return fmt.Errorf("encoding data to YAML: %w", err)
	}

	return nil
}
