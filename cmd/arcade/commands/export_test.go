package commands_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/ulisesh/arcade-services/cmd/arcade/commands"
)

func TestNewExportCommand(t *testing.T) {
	t.Parallel()

	cmd := commands.NewExportCommand()
	assert.Equal(t, "export COLLECTION", cmd.Use)
	assert.Equal(t, "Export a collection", cmd.Short)
	assert.NotNil(t, cmd.RunE)
	assert.NotNil(t, cmd.Args)

	// Check flags
	assert.NotNil(t, cmd.Flags().Lookup("nats-url"))
	assert.NotNil(t, cmd.Flags().Lookup("subject"))

	perPageFlag := cmd.Flags().Lookup("per-page")
	assert.NotNil(t, perPageFlag)
	assert.Equal(t, "50", perPageFlag.DefValue)

	maxPagesFlag := cmd.Flags().Lookup("max-pages")
	assert.NotNil(t, maxPagesFlag)
	assert.Equal(t, "50", maxPagesFlag.DefValue)
}
