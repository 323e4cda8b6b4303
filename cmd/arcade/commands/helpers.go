package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ulisesh/arcade-services/internal/constants"
)

// Common static errors used throughout the commands package.
var (
	ErrNoAPIConfigured        = errors.New("no API endpoint configured")
	ErrAPIConfigNotFound      = errors.New("API configuration not found")
	ErrUnknownConfigKey       = errors.New("unknown configuration key")
	ErrTokenFieldsCannotSet   = errors.New("token fields cannot be set directly")
	ErrTokenFieldsCannotUnset = errors.New("token fields cannot be unset")
	ErrInvalidBuildID         = errors.New("invalid build id")
	ErrUnsupportedCollection  = errors.New("unsupported collection")
	ErrJobNameRequired        = errors.New("job name is required")
	ErrJobQueueRequired       = errors.New("job queue is required")
)

// renderObject writes data as indented JSON or YAML according to the --output
// flag, falling back to a table populated by buildTable.
func renderObject(data any, buildTable func(*tablewriter.Table)) error {
	switch viper.GetString("output") {
	case constants.FormatJSON:
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", strings.Repeat(" ", constants.JSONIndentSize))

		err := encoder.Encode(data)
		if err != nil {
			return fmt.Errorf("encoding as JSON: %w", err)
		}

		return nil
	case constants.FormatYAML:
		encoder := yaml.NewEncoder(os.Stdout)

		err := encoder.Encode(data)
		if err != nil {
			return fmt.Errorf("encoding as YAML: %w", err)
		}

		return nil
	default:
		table := tablewriter.NewWriter(os.Stdout)
		buildTable(table)

		err := table.Render()
		if err != nil {
			return fmt.Errorf("rendering table: %w", err)
		}

		return nil
	}
}

// formatTime renders timestamps the way the CLI tables show them.
func formatTime(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

// formatOptionalTime renders nil timestamps as N/A.
func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return constants.NotAvailable
	}

	return formatTime(*t)
}

// formatProperties renders a property map as sorted key=value lines.
func formatProperties(properties map[string]string) string {
	pairs := make([]string, 0, len(properties))
	for key, value := range properties {
		pairs = append(pairs, key+"="+value)
	}

	sort.Strings(pairs)

	return strings.Join(pairs, "\n")
}
