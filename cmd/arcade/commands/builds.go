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

// NewBuildsCommand creates the builds command group.
func NewBuildsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "builds",
		Aliases: []string{"build"},
		Short:   "Manage builds",
		Long:    "List and inspect builds produced by the service",
	}

	cmd.AddCommand(newBuildsListCommand())
	cmd.AddCommand(newBuildsGetCommand())

	return cmd
}

func newBuildsListCommand() *cobra.Command {
	var (
		allPages   bool
		perPage    int
		repository string
		branch     string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List builds",
		Long:  "List builds, optionally filtered by repository or branch",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()

			params := arcade.NewQueryParams().WithPerPage(perPage)
			if repository != "" {
				params = params.WithFilter("repositories", repository)
			}

			if branch != "" {
				params = params.WithFilter("branches", branch)
			}

			page, err := client.Builds().List(ctx, params)
			if err != nil {
				return fmt.Errorf("listing builds: %w", err)
			}

			builds := page.Items()

			if allPages {
				builds, err = arcade.AllPages(ctx, page, &arcade.WalkOptions{MaxPages: constants.DefaultMaxPages})
				if err != nil {
					return fmt.Errorf("listing builds: %w", err)
				}
			} else if page.HasNext() {
				fmt.Fprintln(os.Stderr, "More results available, rerun with --all-pages")
			}

			return renderObject(builds, func(table *tablewriter.Table) {
				table.Header("ID", "Repository", "Branch", "Build Number", "Produced")

				for _, build := range builds {
					_ = table.Append(strconv.FormatInt(build.ID, 10), build.Repository,
						build.Branch, build.BuildNumber, formatTime(build.DateProduced))
				}
			})
		},
	}

	cmd.Flags().BoolVar(&allPages, "all-pages", false, "fetch all pages of results")
	cmd.Flags().IntVar(&perPage, "per-page", constants.DefaultPageSize, "results per page")
	cmd.Flags().StringVar(&repository, "repository", "", "filter by repository")
	cmd.Flags().StringVar(&branch, "branch", "", "filter by branch")

	return cmd
}

func newBuildsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get BUILD_ID",
		Short: "Show a build",
		Long:  "Display one build by its numeric ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			buildID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("%w: %s", ErrInvalidBuildID, args[0])
			}

			client, err := CreateClient(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()

			build, err := client.Builds().Get(ctx, buildID)
			if err != nil {
				return fmt.Errorf("getting build: %w", err)
			}

			return renderObject(build, func(table *tablewriter.Table) {
				table.Header("Property", "Value")
				_ = table.Append("ID", strconv.FormatInt(build.ID, 10))
				_ = table.Append("Repository", build.Repository)
				_ = table.Append("Branch", build.Branch)
				_ = table.Append("Commit", build.Commit)
				_ = table.Append("Build Number", build.BuildNumber)
				_ = table.Append("Produced", formatTime(build.DateProduced))
			})
		},
	}
}
