package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rshade/wishboard/internal/config"
	"github.com/rshade/wishboard/internal/logging"
)

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// logger is the package-level logger for CLI operations.
var logger zerolog.Logger //nolint:gochecknoglobals // Required for zerolog context integration

// NewRootCmd creates the root Cobra command for the wishboard CLI.
func NewRootCmd(ver string) *cobra.Command {
	return NewRootCmdWithEnv(ver, os.LookupEnv)
}

// NewRootCmdWithEnv creates the root command with an explicit env lookup for
// testability.
func NewRootCmdWithEnv(ver string, lookupEnv func(string) (string, bool)) *cobra.Command {
	var logResult *logging.Result

	cmd := &cobra.Command{
		Use:           "wishboard",
		Short:         "Guest wishes board",
		Long:          "wishboard: fetch, paginate and display guest wishes from a remote guestbook endpoint",
		Version:       ver,
		Example:       rootCmdExample,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, lookupEnv)
			if err != nil {
				return err
			}
			config.SetGlobalConfig(cfg)

			result := setupLogging(cmd, cfg)
			logResult = &result
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return cleanupLogging(cmd, logResult)
		},
	}

	cmd.PersistentFlags().String("config", "", "config file (default $WISHBOARD_HOME/config.yaml)")
	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	cmd.PersistentFlags().String("endpoint", "", "wishes endpoint URL (overrides config and env)")
	cmd.AddCommand(NewServeCmd(), NewBrowseCmd(), NewShowCmd(), newConfigCmd())

	return cmd
}

const rootCmdExample = `  # Serve the wishes page on :8080
  wishboard serve

  # Browse wishes in the terminal
  wishboard browse

  # Print page 2 as JSON
  wishboard show --page 2 --format json

  # Use a different endpoint
  wishboard show --endpoint https://script.google.com/macros/s/XYZ/exec

  # Write the default configuration
  wishboard config init`

// loadConfig resolves configuration in order of precedence: defaults, config
// file, .env, environment, flags.
func loadConfig(cmd *cobra.Command, lookupEnv func(string) (string, bool)) (*config.Config, error) {
	if err := config.LoadDotEnv(); err != nil {
		cmd.PrintErrf("Warning: could not load .env: %v\n", err)
	}

	var cfg *config.Config
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		cfg = config.New()
	} else {
		cfg = config.Default()
		cfg.SetConfigPath(path)
		if _, err := os.Stat(path); err == nil {
			if loadErr := cfg.Load(); loadErr != nil {
				return nil, loadErr
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("cannot access config path %s: %w", path, err)
		}
	}

	config.ApplyEnv(cfg, lookupEnv)

	if endpoint, _ := cmd.Flags().GetString("endpoint"); endpoint != "" {
		cfg.Endpoint.URL = endpoint
	}
	return cfg, nil
}

// newConfigCmd creates the config command group with configuration subcommands.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Configuration management commands"}
	cmd.AddCommand(NewConfigInitCmd(), NewConfigShowCmd(), NewConfigValidateCmd())
	return cmd
}
