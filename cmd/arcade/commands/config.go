package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ulisesh/arcade-services/internal/auth"
	"github.com/ulisesh/arcade-services/internal/client"
	"github.com/ulisesh/arcade-services/internal/constants"
	"github.com/ulisesh/arcade-services/pkg/arcade"
	"github.com/ulisesh/arcade-services/pkg/arcadeclient"
)

// Config is the CLI state persisted in ~/.arcade/config.yml.
type Config struct {
	API            string     `json:"api,omitempty"              yaml:"api,omitempty"`
	TokenURL       string     `json:"token_url,omitempty"        yaml:"token_url,omitempty"`
	Token          string     `json:"token,omitempty"            yaml:"token,omitempty"`
	TokenExpiresAt *time.Time `json:"token_expires_at,omitempty" yaml:"token_expires_at,omitempty"`
	RefreshToken   string     `json:"refresh_token,omitempty"    yaml:"refresh_token,omitempty"`
	LastRefreshed  *time.Time `json:"last_refreshed,omitempty"   yaml:"last_refreshed,omitempty"`
	Username       string     `json:"username,omitempty"         yaml:"username,omitempty"`

	// Global settings
	Output        string `json:"output"          yaml:"output"`
	NoColor       bool   `json:"no_color"        yaml:"no_color"`
	SkipTLSVerify bool   `json:"skip_tls_verify" yaml:"skip_tls_verify"`
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Read and write the persisted arcade CLI configuration",
	}

	cmd.AddCommand(newConfigGetCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigUnsetCommand())

	return cmd
}

func newConfigGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get KEY",
		Short: "Get a configuration value",
		Long:  "Display a single configuration value; token values are masked",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]

			value, err := configValue(loadConfig(), key)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintln(os.Stdout, value)

			return nil
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long:  "Set a configuration value and persist it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			value := args[1]

			config := loadConfig()

			err := setConfigValue(config, key, value)
			if err != nil {
				return err
			}

			err = saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("saving configuration: %w", err)
			}

			return outputConfigUpdate("Set", key, value)
		},
	}
}

func newConfigUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset KEY",
		Short: "Unset a configuration value",
		Long:  "Reset a configuration value to its default and persist it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]

			config := loadConfig()

			err := unsetConfigValue(config, key)
			if err != nil {
				return err
			}

			err = saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("saving configuration: %w", err)
			}

			return outputConfigUpdate("Unset", key, "")
		},
	}
}

func configValue(config *Config, key string) (string, error) {
	switch key {
	case "api":
		return config.API, nil
	case "token_url":
		return config.TokenURL, nil
	case "username":
		return config.Username, nil
	case "output":
		return config.Output, nil
	case "no_color":
		return strconv.FormatBool(config.NoColor), nil
	case "skip_tls_verify":
		return strconv.FormatBool(config.SkipTLSVerify), nil
	case "token", "refresh_token":
		if configTokenValue(config, key) == "" {
			return "", nil
		}

		return constants.MaskedSecret, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownConfigKey, key)
	}
}

func configTokenValue(config *Config, key string) string {
	if key == "token" {
		return config.Token
	}

	return config.RefreshToken
}

func setConfigValue(config *Config, key, value string) error {
	switch key {
	case "api":
		config.API = value
	case "token_url":
		config.TokenURL = value
	case "username":
		config.Username = value
	case "output":
		config.Output = value
	case "no_color":
		config.NoColor = parseBoolValue(value)
	case "skip_tls_verify":
		config.SkipTLSVerify = parseBoolValue(value)
	case "token", "refresh_token":
		return fmt.Errorf("%w. Use 'arcade login' instead", ErrTokenFieldsCannotSet)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownConfigKey, key)
	}

	return nil
}

func unsetConfigValue(config *Config, key string) error {
	switch key {
	case "api":
		config.API = ""
	case "token_url":
		config.TokenURL = ""
	case "username":
		config.Username = ""
	case "output":
		config.Output = constants.FormatTable
	case "no_color":
		config.NoColor = false
	case "skip_tls_verify":
		config.SkipTLSVerify = false
	case "token", "refresh_token":
		return fmt.Errorf("%w. Use 'arcade logout' instead", ErrTokenFieldsCannotUnset)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownConfigKey, key)
	}

	return nil
}

// parseBoolValue parses a boolean value from string.
func parseBoolValue(value string) bool {
	return value == "true" || value == "1"
}

// outputConfigUpdate reports a configuration change in the requested format.
func outputConfigUpdate(action, key, value string) error {
	result := map[string]string{
		"action": action,
		"key":    key,
	}
	if value != "" {
		result["value"] = value
	}

	return renderObject(result, func(table *tablewriter.Table) {
		table.Header("Property", "Value")
		_ = table.Append("Action", action)
		_ = table.Append("Key", key)

		if value != "" {
			_ = table.Append("Value", value)
		}
	})
}

// loadConfig builds the CLI configuration from viper's merged view of the
// config file, environment, and bound flags.
func loadConfig() *Config {
	config := &Config{
		API:           viper.GetString("api"),
		TokenURL:      viper.GetString("token_url"),
		Token:         viper.GetString("token"),
		RefreshToken:  viper.GetString("refresh_token"),
		Username:      viper.GetString("username"),
		Output:        viper.GetString("output"),
		NoColor:       viper.GetBool("no_color"),
		SkipTLSVerify: viper.GetBool("skip_tls_verify"),
	}

	if expiresAt := viper.GetTime("token_expires_at"); !expiresAt.IsZero() {
		config.TokenExpiresAt = &expiresAt
	}

	if refreshed := viper.GetTime("last_refreshed"); !refreshed.IsZero() {
		config.LastRefreshed = &refreshed
	}

	return config
}

func saveConfigStruct(config *Config) error {
	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolving home directory: %w", err)
		}

		configDir := filepath.Join(home, ".arcade")

		err = os.MkdirAll(configDir, constants.ConfigDirPerm)
		if err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		configFile = filepath.Join(configDir, "config.yml")
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("marshaling config to YAML: %w", err)
	}

	err = os.WriteFile(configFile, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// CreateClient builds an API client from the stored configuration. A non-empty
// apiOverride (the --api flag) takes precedence over the configured endpoint.
// Stored credentials that can re-authenticate get a config-persisting token
// manager so refreshed tokens survive the process.
func CreateClient(apiOverride string) (arcade.Client, error) {
	config := loadConfig()

	endpoint := apiOverride
	if endpoint == "" {
		endpoint = config.API
	}

	if endpoint == "" {
		return nil, fmt.Errorf("%w, use 'arcade login' or --api", ErrNoAPIConfigured)
	}

	clientConfig := &arcade.Config{
		APIEndpoint:   endpoint,
		TokenURL:      config.TokenURL,
		SkipTLSVerify: config.SkipTLSVerify,
		Debug:         viper.GetBool("verbose"),
	}

	if config.RefreshToken != "" || (config.Token != "" && config.Username != "") {
		tokenManager := createCLITokenManager(config, endpoint)

		arcadeClient, err := client.NewWithTokenManager(clientConfig, tokenManager)
		if err != nil {
			return nil, fmt.Errorf("creating client: %w", err)
		}

		return arcadeClient, nil
	}

	// A bare token, or no credentials at all. The latter still yields a
	// working client for unauthenticated endpoints such as /api/info.
	clientConfig.AccessToken = config.Token

	arcadeClient, err := arcadeclient.New(context.Background(), clientConfig)
	if err != nil {
		return nil, fmt.Errorf("creating client: %w", err)
	}

	return arcadeClient, nil
}

// createCLITokenManager wires the stored session into a token manager that
// persists every refreshed token back to the config file.
func createCLITokenManager(config *Config, endpoint string) *auth.ConfigTokenManager {
	oauth2Config := &auth.OAuth2Config{
		TokenURL:     resolveTokenURL(config, endpoint),
		ClientID:     constants.DefaultCLIClientID,
		Username:     config.Username,
		RefreshToken: config.RefreshToken,
		AccessToken:  config.Token,
	}

	initialExpiry := time.Time{}
	if config.TokenExpiresAt != nil {
		initialExpiry = *config.TokenExpiresAt
	}

	return auth.NewConfigTokenManager(oauth2Config, NewConfigPersister(), endpoint, config.Token, initialExpiry)
}

func resolveTokenURL(config *Config, endpoint string) string {
	if config.TokenURL != "" {
		return config.TokenURL
	}

	return strings.TrimSuffix(endpoint, "/") + "/oauth/token"
}
