package commands

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"

	"github.com/ulisesh/arcade-services/internal/constants"
	"github.com/ulisesh/arcade-services/pkg/arcade"
)

// NewExportCommand creates the export command.
func NewExportCommand() *cobra.Command {
	var (
		natsURL  string
		subject  string
		perPage  int
		maxPages int
	)

	cmd := &cobra.Command{
		Use:   "export COLLECTION",
		Short: "Export a collection",
		Long: "Stream every record of a collection as JSON, either to stdout " +
			"(one record per line) or to a NATS subject",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			collection := args[0]

			client, err := CreateClient(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			publish, closeSink, err := newExportSink(natsURL, subject, collection)
			if err != nil {
				return err
			}
			defer closeSink()

			ctx := context.Background()
			params := arcade.NewQueryParams().WithPerPage(perPage)
			opts := &arcade.WalkOptions{MaxPages: maxPages}

			var count int

			switch collection {
			case "jobs":
				page, err := client.Jobs().List(ctx, params)
				if err != nil {
					return fmt.Errorf("listing jobs: %w", err)
				}

				count, err = exportPages(ctx, page, opts, publish)
				if err != nil {
					return err
				}
			case "builds":
				page, err := client.Builds().List(ctx, params)
				if err != nil {
					return fmt.Errorf("listing builds: %w", err)
				}

				count, err = exportPages(ctx, page, opts, publish)
				if err != nil {
					return err
				}
			default:
				return fmt.Errorf("%w: %s (expected jobs or builds)", ErrUnsupportedCollection, collection)
			}

			fmt.Fprintf(os.Stderr, "Exported %d %s\n", count, collection)

			return nil
		},
	}

	cmd.Flags().StringVar(&natsURL, "nats-url", "", "publish records to this NATS server instead of stdout")
	cmd.Flags().StringVar(&subject, "subject", "", "NATS subject (default arcade.export.COLLECTION)")
	cmd.Flags().IntVar(&perPage, "per-page", constants.DefaultPageSize, "results per page")
	cmd.Flags().IntVar(&maxPages, "max-pages", constants.DefaultMaxPages, "maximum pages to export, 0 for unlimited")

	return cmd
}

// newExportSink returns a publish function writing one record at a time, and
// a closer that flushes buffered output.
func newExportSink(natsURL, subject, collection string) (func([]byte) error, func(), error) {
	if natsURL == "" {
		writer := bufio.NewWriter(os.Stdout)

		publish := func(data []byte) error {
			if _, err := writer.Write(data); err != nil {
				return fmt.Errorf("writing record: %w", err)
			}

			if err := writer.WriteByte('\n'); err != nil {
				return fmt.Errorf("writing record: %w", err)
			}

			return nil
		}

		return publish, func() { _ = writer.Flush() }, nil
	}

	conn, err := nats.Connect(natsURL,
		nats.Name("arcade-cli"),
		nats.Timeout(constants.ShortHTTPTimeout),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to NATS: %w", err)
	}

	if subject == "" {
		subject = "arcade.export." + collection
	}

	publish := func(data []byte) error {
		if err := conn.Publish(subject, data); err != nil {
			return fmt.Errorf("publishing to %s: %w", subject, err)
		}

		return nil
	}

	closer := func() {
		_ = conn.Flush()
		conn.Close()
	}

	return publish, closer, nil
}

// exportPages walks the collection page by page, publishing each item as its
// own JSON document, and returns how many items were published.
func exportPages[T any](ctx context.Context, first *arcade.Page[T], opts *arcade.WalkOptions, publish func([]byte) error) (int, error) {
	count := 0

	err := arcade.EachPage(ctx, first, opts, func(page *arcade.Page[T]) error {
		for _, item := range page.Items() {
			data, err := json.Marshal(item)
			if err != nil {
				return fmt.Errorf("encoding item: %w", err)
			}

			if err := publish(data); err != nil {
				return err
			}

			count++
		}

		return nil
	})
	if err != nil {
		return count, err
	}

	return count, nil
}
