package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/ulisesh/arcade-services/internal/auth"
	"github.com/ulisesh/arcade-services/pkg/arcade"
	"github.com/ulisesh/arcade-services/pkg/arcadeclient"
)

// NewLoginCommand creates the login command.
//
//nolint:funlen // interactive flow reads better in one piece
func NewLoginCommand() *cobra.Command {
	var (
		apiEndpoint  string
		username     string
		password     string
		clientID     string
		clientSecret string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate with an Arcade API",
		Long:  "Authenticate with an Arcade Services API endpoint and store the session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			endpoint, err := resolveLoginEndpoint(apiEndpoint)
			if err != nil {
				return err
			}

			clientConfig := &arcade.Config{
				APIEndpoint:   endpoint,
				SkipTLSVerify: viper.GetBool("skip_tls_verify"),
			}

			if clientID != "" && clientSecret != "" {
				clientConfig.ClientID = clientID
				clientConfig.ClientSecret = clientSecret
			} else {
				if username == "" {
					username, err = promptLine("Username: ")
					if err != nil {
						return err
					}
				}

				if password == "" {
					fmt.Print("Password: ")

					passwordBytes, err := term.ReadPassword(int(syscall.Stdin))

					fmt.Println()

					if err != nil {
						return fmt.Errorf("reading password: %w", err)
					}

					password = string(passwordBytes)
				}

				clientConfig.Username = username
				clientConfig.Password = password
			}

			// New normalizes the endpoint and fills in the discovered
			// token URL on clientConfig.
			arcadeClient, err := arcadeclient.New(ctx, clientConfig)
			if err != nil {
				return fmt.Errorf("creating client: %w", err)
			}

			info, err := arcadeClient.Info(ctx)
			if err != nil {
				return fmt.Errorf("connecting to API: %w", err)
			}

			config := loadConfig()
			config.API = clientConfig.APIEndpoint
			config.TokenURL = clientConfig.TokenURL
			config.Username = clientConfig.Username
			config.SkipTLSVerify = clientConfig.SkipTLSVerify

			if tokenProvider, ok := arcadeClient.(interface {
				GetToken(context.Context) (string, error)
			}); ok {
				token, err := tokenProvider.GetToken(ctx)
				if err != nil {
					return fmt.Errorf("getting token: %w", err)
				}

				config.Token = token

				if expiresAt, err := auth.TokenExpiry(token); err == nil {
					config.TokenExpiresAt = &expiresAt
				} else {
					config.TokenExpiresAt = nil
				}
			}

			err = saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("saving configuration: %w", err)
			}

			fmt.Printf("Logged in to %s\n", config.API)
			fmt.Printf("API: %s %s\n", info.Name, info.Version)

			return nil
		},
	}

	cmd.Flags().StringVarP(&apiEndpoint, "api", "a", "", "API endpoint to authenticate with")
	cmd.Flags().StringVarP(&username, "username", "u", "", "username for password authentication")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when omitted)")
	cmd.Flags().StringVar(&clientID, "client-id", "", "OAuth client ID for client credentials authentication")
	cmd.Flags().StringVar(&clientSecret, "client-secret", "", "OAuth client secret for client credentials authentication")

	return cmd
}

// resolveLoginEndpoint picks the API endpoint from the flag, the configured
// default, or an interactive prompt, in that order.
func resolveLoginEndpoint(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}

	if endpoint := viper.GetString("api"); endpoint != "" {
		return endpoint, nil
	}

	return promptLine("API endpoint: ")
}

func promptLine(prompt string) (string, error) {
	fmt.Print(prompt)

	reader := bufio.NewReader(os.Stdin)

	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("reading input: %w", err)
	}

	return strings.TrimSpace(line), nil
}

// NewLogoutCommand creates the logout command.
func NewLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Discard the stored session",
		Long:  "Remove the stored token and credentials for the current API target",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()
			config.Token = ""
			config.TokenExpiresAt = nil
			config.RefreshToken = ""
			config.LastRefreshed = nil
			config.Username = ""

			err := saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("saving configuration: %w", err)
			}

			fmt.Println("Logged out")

			return nil
		},
	}
}
