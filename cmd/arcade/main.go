package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ulisesh/arcade-services/cmd/arcade/commands"
	"github.com/ulisesh/arcade-services/internal/constants"
	"github.com/ulisesh/arcade-services/pkg/logging"
)

// Overridden at build time via -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "arcade",
	Short: "Arcade Services build and test queue CLI",
	Long: `A command-line interface for the Arcade Services build and test
orchestration API.

Submit jobs to machine queues, watch their work items, inspect registered
builds, and export collections for downstream processing.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "", "config file (default is $HOME/.arcade/config.yml)")
	flags.StringP("api", "a", "", "API endpoint URL")
	flags.StringP("token", "t", "", "authentication token")
	flags.String("output", "table", "output format (table, json, yaml)")
	flags.BoolP("verbose", "v", false, "verbose output")
	flags.Bool("no-color", false, "disable colored output")
	flags.Bool("skip-tls-verify", false, "skip TLS certificate verification")

	// Viper keys use underscores where the flags use dashes.
	for key, flag := range map[string]string{
		"api":             "api",
		"token":           "token",
		"output":          "output",
		"verbose":         "verbose",
		"no_color":        "no-color",
		"skip_tls_verify": "skip-tls-verify",
	} {
		_ = viper.BindPFlag(key, flags.Lookup(flag))
	}

	rootCmd.AddCommand(
		commands.NewVersionCommand(version, commit, date),
		commands.NewLoginCommand(),
		commands.NewLogoutCommand(),
		commands.NewTargetCommand(),
		commands.NewConfigCommand(),
		commands.NewInfoCommand(),
		commands.NewJobsCommand(),
		commands.NewBuildsCommand(),
		commands.NewQueuesCommand(),
		commands.NewExportCommand(),
	)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		configDir := filepath.Join(home, ".arcade")
		if err := os.MkdirAll(configDir, constants.ConfigDirPerm); err != nil {
			fmt.Fprintf(os.Stderr, "Error creating config directory: %v\n", err)
		}

		viper.AddConfigPath(configDir)
		viper.SetConfigType("yml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("ARCADE")
	viper.AutomaticEnv()

	// A missing config file is fine, the CLI then runs on flags and
	// environment alone.
	if err := viper.ReadInConfig(); err == nil && viper.GetBool("verbose") {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	level := logging.LevelWarn
	if viper.GetBool("verbose") {
		level = logging.LevelDebug
	}

	logging.Setup(logging.Config{
		Level:  level,
		Pretty: !viper.GetBool("no_color"),
	})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
