package commands

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/openrack-io/redfish-client/pkg/redfish"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewListCommand creates the ls command
func NewListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "ls PATH",
		Aliases: []string{"list"},
		Short:   "List a collection's members",
		Long:    "Fetch the collection resource at PATH and list its members",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runListCommand(cmd, args[0])
		},
	}
}

func runListCommand(cmd *cobra.Command, path string) error {
	root, err := connectRoot(cmd.Context())
	if err != nil {
		return err
	}

	collection, err := root.Fetch(cmd.Context(), path)
	if err != nil {
		return fmt.Errorf("fetching %s: %w", path, err)
	}

	// Member references are read off the raw document so listing a large
	// collection does not fetch every member.
	members, _ := collection.Raw()["Members"].([]interface{})

	output := viper.GetString("output")
	switch output {
	case OutputFormatJSON:
		return StandardJSONRenderer(members)
	case OutputFormatYAML:
		return StandardYAMLRenderer(members)
	default:
		return renderMemberTable(collection, members)
	}
}

func renderMemberTable(collection *redfish.Resource, members []interface{}) error {
	if len(members) == 0 {
		_, _ = os.Stdout.WriteString("No members found\n")

		return nil
	}

	name := collection.String("Name")
	if name != "" {
		_, _ = fmt.Fprintf(os.Stdout, "%s\n", name)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("#", "Member")

	for i, member := range members {
		reference, ok := member.(map[string]interface{})
		if !ok {
			continue
		}

		id, _ := reference[redfish.ODataIDKey].(string)
		_ = table.Append(fmt.Sprintf("%d", i), id)
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}
