package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/ulisesh/arcade-services/internal/constants"
)

// TargetInfo holds the current target details for display.
type TargetInfo struct {
	API          string `json:"api"                     yaml:"api"`
	User         string `json:"user,omitempty"          yaml:"user,omitempty"`
	TokenExpires string `json:"token_expires,omitempty" yaml:"token_expires,omitempty"`
	AuthURL      string `json:"auth_url,omitempty"      yaml:"auth_url,omitempty"`
}

// NewTargetCommand creates the target command.
func NewTargetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "target [API_ENDPOINT]",
		Short: "Show or set the target API endpoint",
		Long:  "Display the current API target, or switch to a new endpoint",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return showTarget()
			}

			return setTarget(args[0])
		},
	}
}

func showTarget() error {
	config := loadConfig()

	if config.API == "" {
		return fmt.Errorf("%w, use 'arcade login' or 'arcade target API_ENDPOINT'", ErrNoAPIConfigured)
	}

	target := TargetInfo{
		API:     config.API,
		User:    config.Username,
		AuthURL: config.TokenURL,
	}

	if config.TokenExpiresAt != nil {
		target.TokenExpires = config.TokenExpiresAt.Format(time.RFC3339)
	}

	return renderObject(target, func(table *tablewriter.Table) {
		table.Header("Property", "Value")
		_ = table.Append("API", target.API)

		if target.User != "" {
			_ = table.Append("User", target.User)
		}

		if target.TokenExpires != "" {
			_ = table.Append("Token Expires", target.TokenExpires)
		} else {
			_ = table.Append("Token Expires", constants.NotAvailable)
		}

		if target.AuthURL != "" {
			_ = table.Append("Auth URL", target.AuthURL)
		}
	})
}

func setTarget(endpoint string) error {
	endpoint = strings.TrimSuffix(endpoint, "/")

	config := loadConfig()

	if config.API == endpoint {
		fmt.Printf("Already targeting %s\n", endpoint)

		return nil
	}

	config.API = endpoint

	// Credentials belong to the previous endpoint.
	config.Token = ""
	config.TokenExpiresAt = nil
	config.RefreshToken = ""
	config.LastRefreshed = nil
	config.TokenURL = ""
	config.Username = ""

	err := saveConfigStruct(config)
	if err != nil {
		return fmt.Errorf("saving configuration: %w", err)
	}

	fmt.Printf("Targeting %s\n", endpoint)
	fmt.Println("Use 'arcade login' to authenticate")

	return nil
}
