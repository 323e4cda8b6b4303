package commands_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/ulisesh/arcade-services/cmd/arcade/commands"
)

func TestNewVersionCommand(t *testing.T) {
	t.Parallel()

	cmd := commands.NewVersionCommand("1.2.3", "abc1234", "2026-01-02")
	assert.Equal(t, "version", cmd.Use)
	assert.Equal(t, "Show version information", cmd.Short)
	assert.NotNil(t, cmd.RunE)
}
