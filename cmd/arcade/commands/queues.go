package commands

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/ulisesh/arcade-services/internal/constants"
	"github.com/ulisesh/arcade-services/pkg/arcade"
)

// NewQueuesCommand creates the queues command group.
func NewQueuesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "queues",
		Aliases: []string{"queue"},
		Short:   "Inspect machine queues",
		Long:    "List machine queues and display queue details",
	}

	cmd.AddCommand(newQueuesListCommand())
	cmd.AddCommand(newQueuesGetCommand())

	return cmd
}

func newQueuesListCommand() *cobra.Command {
	var (
		allPages  bool
		perPage   int
		available bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List queues",
		Long:  "List machine queues, optionally only those accepting work",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()

			params := arcade.NewQueryParams().WithPerPage(perPage)
			if available {
				params = params.WithFilter("available", "true")
			}

			page, err := client.Queues().List(ctx, params)
			if err != nil {
				return fmt.Errorf("listing queues: %w", err)
			}

			queues := page.Items()

			if allPages {
				queues, err = arcade.AllPages(ctx, page, &arcade.WalkOptions{MaxPages: constants.DefaultMaxPages})
				if err != nil {
					return fmt.Errorf("listing queues: %w", err)
				}
			} else if page.HasNext() {
				fmt.Fprintln(os.Stderr, "More results available, rerun with --all-pages")
			}

			return renderObject(queues, func(table *tablewriter.Table) {
				table.Header("ID", "Purpose", "OS", "Available", "Work Items")

				for _, queue := range queues {
					_ = table.Append(queue.ID, queue.Purpose, queue.OperatingSystem,
						strconv.FormatBool(queue.Available), strconv.Itoa(queue.WorkItemCount))
				}
			})
		},
	}

	cmd.Flags().BoolVar(&allPages, "all-pages", false, "fetch all pages of results")
	cmd.Flags().IntVar(&perPage, "per-page", constants.DefaultPageSize, "results per page")
	cmd.Flags().BoolVar(&available, "available", false, "only queues currently accepting work")

	return cmd
}

func newQueuesGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get QUEUE_ID",
		Short: "Show a queue",
		Long:  "Display one machine queue by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()

			queue, err := client.Queues().Get(ctx, args[0])
			if err != nil {
				return fmt.Errorf("getting queue: %w", err)
			}

			return renderObject(queue, func(table *tablewriter.Table) {
				table.Header("Property", "Value")
				_ = table.Append("ID", queue.ID)
				_ = table.Append("Purpose", queue.Purpose)
				_ = table.Append("OS", queue.OperatingSystem)
				_ = table.Append("Available", strconv.FormatBool(queue.Available))
				_ = table.Append("Work Items", strconv.Itoa(queue.WorkItemCount))
			})
		},
	}
}
