package commands

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/ulisesh/arcade-services/pkg/arcade"
)

// NewInfoCommand creates the info command.
func NewInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show API information",
		Long:  "Display the target API's name, version, and advertised links",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()

			info, err := client.Info(ctx)
			if err != nil {
				return fmt.Errorf("getting API info: %w", err)
			}

			return renderObject(info, func(table *tablewriter.Table) {
				table.Header("Property", "Value")
				_ = table.Append("Name", info.Name)
				_ = table.Append("Version", info.Version)
				_ = table.Append("Links", formatInfoLinks(info.Links))
			})
		},
	}
}

// formatInfoLinks renders link names and targets in a stable order.
func formatInfoLinks(links map[string]arcade.Link) string {
	names := make([]string, 0, len(links))
	for name := range links {
		names = append(names, name)
	}

	sort.Strings(names)

	lines := make([]string, 0, len(names))
	for _, name := range names {
		lines = append(lines, fmt.Sprintf("%s: %s", name, links[name].Href))
	}

	return strings.Join(lines, "\n")
}
