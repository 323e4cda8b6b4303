package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ulisesh/arcade-services/internal/constants"
	"github.com/ulisesh/arcade-services/pkg/arcade"
)

// NewJobsCommand creates the jobs command group.
func NewJobsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "jobs",
		Aliases: []string{"job"},
		Short:   "Manage jobs",
		Long:    "List, inspect, submit, cancel, and poll jobs on machine queues",
	}

	cmd.AddCommand(newJobsListCommand())
	cmd.AddCommand(newJobsGetCommand())
	cmd.AddCommand(newJobsSubmitCommand())
	cmd.AddCommand(newJobsCancelCommand())
	cmd.AddCommand(newJobsWorkItemsCommand())
	cmd.AddCommand(newJobsPollCommand())

	return cmd
}

func newJobsListCommand() *cobra.Command {
	var (
		allPages bool
		perPage  int
		state    string
		queue    string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List jobs",
		Long:  "List jobs, optionally filtered by state or queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()

			params := arcade.NewQueryParams().WithPerPage(perPage)
			if state != "" {
				params = params.WithFilter("states", state)
			}

			if queue != "" {
				params = params.WithFilter("queue_ids", queue)
			}

			page, err := client.Jobs().List(ctx, params)
			if err != nil {
				return fmt.Errorf("listing jobs: %w", err)
			}

			jobs := page.Items()

			if allPages {
				jobs, err = arcade.AllPages(ctx, page, &arcade.WalkOptions{MaxPages: constants.DefaultMaxPages})
				if err != nil {
					return fmt.Errorf("listing jobs: %w", err)
				}
			} else if page.HasNext() {
				fmt.Fprintln(os.Stderr, "More results available, rerun with --all-pages")
			}

			return renderObject(jobs, func(table *tablewriter.Table) {
				table.Header("ID", "Name", "Queue", "State", "Created")

				for _, job := range jobs {
					_ = table.Append(job.ID, job.Name, job.QueueID, job.State, formatTime(job.Created))
				}
			})
		},
	}

	cmd.Flags().BoolVar(&allPages, "all-pages", false, "fetch all pages of results")
	cmd.Flags().IntVar(&perPage, "per-page", constants.DefaultPageSize, "results per page")
	cmd.Flags().StringVar(&state, "state", "", "filter by job state")
	cmd.Flags().StringVar(&queue, "queue", "", "filter by queue ID")

	return cmd
}

func newJobsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get JOB_ID",
		Short: "Show a job",
		Long:  "Display one job by its correlation ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()

			job, err := client.Jobs().Get(ctx, args[0])
			if err != nil {
				return fmt.Errorf("getting job: %w", err)
			}

			return renderJob(job)
		},
	}
}

func newJobsSubmitCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a job",
		Long:  "Submit a job definition from a JSON or YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			request, err := readJobRequest(file)
			if err != nil {
				return err
			}

			client, err := CreateClient(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()

			job, err := client.Jobs().Create(ctx, request)
			if err != nil {
				return fmt.Errorf("submitting job: %w", err)
			}

			fmt.Printf("Submitted job '%s' (%s) to queue %s\n", job.Name, job.ID, job.QueueID)

			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "path to the job definition file")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

// readJobRequest loads a job definition from a JSON or YAML file.
func readJobRequest(path string) (*arcade.JobRequest, error) {
	// Path comes from an explicit CLI flag.
	data, err := os.ReadFile(filepath.Clean(path)) // #nosec G304
	if err != nil {
		return nil, fmt.Errorf("reading job definition: %w", err)
	}

	var request arcade.JobRequest

	if strings.HasSuffix(path, ".json") {
		err = json.Unmarshal(data, &request)
	} else {
		err = yaml.Unmarshal(data, &request)
	}

	if err != nil {
		return nil, fmt.Errorf("parsing job definition: %w", err)
	}

	if request.Name == "" {
		return nil, ErrJobNameRequired
	}

	if request.QueueID == "" {
		return nil, ErrJobQueueRequired
	}

	return &request, nil
}

func newJobsCancelCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "cancel JOB_ID",
		Short: "Cancel a job",
		Long:  "Request cancellation of a job by its correlation ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				answer, err := promptLine(fmt.Sprintf("Really cancel job %s? (yes/no): ", args[0]))
				if err != nil {
					return err
				}

				if answer != constants.ConfirmationYes {
					fmt.Println("Cancellation aborted")

					return nil
				}
			}

			client, err := CreateClient(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()

			err = client.Jobs().Cancel(ctx, args[0])
			if err != nil {
				return fmt.Errorf("cancelling job: %w", err)
			}

			fmt.Printf("Cancelled job %s\n", args[0])

			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip the confirmation prompt")

	return cmd
}

func newJobsWorkItemsCommand() *cobra.Command {
	var (
		allPages bool
		perPage  int
	)

	cmd := &cobra.Command{
		Use:   "workitems JOB_ID [NAME]",
		Short: "List or show work items",
		Long:  "List a job's work items, or display one work item by name",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()

			if len(args) == 2 {
				item, err := client.Jobs().WorkItem(ctx, args[0], args[1])
				if err != nil {
					return fmt.Errorf("getting work item: %w", err)
				}

				return renderWorkItem(item)
			}

			params := arcade.NewQueryParams().WithPerPage(perPage)

			page, err := client.Jobs().WorkItems(ctx, args[0], params)
			if err != nil {
				return fmt.Errorf("listing work items: %w", err)
			}

			items := page.Items()

			if allPages {
				items, err = arcade.AllPages(ctx, page, &arcade.WalkOptions{MaxPages: constants.DefaultMaxPages})
				if err != nil {
					return fmt.Errorf("listing work items: %w", err)
				}
			} else if page.HasNext() {
				fmt.Fprintln(os.Stderr, "More results available, rerun with --all-pages")
			}

			return renderObject(items, func(table *tablewriter.Table) {
				table.Header("Name", "State", "Machine", "Exit Code", "Queued")

				for _, item := range items {
					_ = table.Append(item.Name, item.State, item.MachineName,
						fmt.Sprintf("%d", item.ExitCode), formatOptionalTime(item.Queued))
				}
			})
		},
	}

	cmd.Flags().BoolVar(&allPages, "all-pages", false, "fetch all pages of results")
	cmd.Flags().IntVar(&perPage, "per-page", constants.DefaultPageSize, "results per page")

	return cmd
}

func newJobsPollCommand() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "poll JOB_ID",
		Short: "Poll a job until it completes",
		Long:  "Poll a job until it reaches a terminal state, then display it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			job, pollErr := client.Jobs().PollUntilComplete(ctx, args[0])

			// Show the last observed state even when the job failed or
			// the window closed.
			if job != nil {
				err = renderJob(job)
				if err != nil {
					return err
				}
			}

			if pollErr != nil {
				return fmt.Errorf("polling job: %w", pollErr)
			}

			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", constants.DefaultJobPollTimeout, "how long to wait for completion")

	return cmd
}

// renderJob displays one job in the requested output format.
func renderJob(job *arcade.Job) error {
	return renderObject(job, func(table *tablewriter.Table) {
		table.Header("Property", "Value")
		_ = table.Append("ID", job.ID)
		_ = table.Append("Name", job.Name)
		_ = table.Append("Queue", job.QueueID)

		if job.Source != "" {
			_ = table.Append("Source", job.Source)
		}

		_ = table.Append("State", job.State)
		_ = table.Append("Created", formatTime(job.Created))
		_ = table.Append("Started", formatOptionalTime(job.Started))
		_ = table.Append("Finished", formatOptionalTime(job.Finished))

		if len(job.Properties) > 0 {
			_ = table.Append("Properties", formatProperties(job.Properties))
		}
	})
}

// renderWorkItem displays one work item in the requested output format.
func renderWorkItem(item *arcade.WorkItem) error {
	return renderObject(item, func(table *tablewriter.Table) {
		table.Header("Property", "Value")
		_ = table.Append("Name", item.Name)
		_ = table.Append("Job", item.JobID)
		_ = table.Append("State", item.State)
		_ = table.Append("Exit Code", fmt.Sprintf("%d", item.ExitCode))
		_ = table.Append("Machine", item.MachineName)
		_ = table.Append("Queued", formatOptionalTime(item.Queued))
		_ = table.Append("Started", formatOptionalTime(item.Started))
		_ = table.Append("Finished", formatOptionalTime(item.Finished))

		if item.ConsoleURL != "" {
			_ = table.Append("Console", item.ConsoleURL)
		}
	})
}
