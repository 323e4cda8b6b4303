package commands_test

import (
	"testing"

	"github.com/spf13/cobra"
)

// findSubcommand finds a direct subcommand by name, failing the test when it
// is absent.
func findSubcommand(t *testing.T, cmd *cobra.Command, name string) *cobra.Command {
	t.Helper()

	for _, sub := range cmd.Commands() {
		if sub.Name() == name {
			return sub
		}
	}

	t.Fatalf("subcommand %q not found under %q", name, cmd.Name())

	return nil
}
