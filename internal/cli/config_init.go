package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rshade/wishboard/internal/config"
)

// NewConfigInitCmd creates the config init command for initializing configuration.
// It writes the defaults to the config file and a .gitignore next to it.
func NewConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration file with default values",
		Long: `Creates a new configuration file with default values at
$WISHBOARD_HOME/config.yaml (default ~/.wishboard/config.yaml), or at the path
given with --config. A .gitignore is created next to it so .env files and
logs stay out of version control; an existing .gitignore is never overwritten.`,
		Example: `  # Create the default configuration
  wishboard config init

  # Create configuration, overwriting existing
  wishboard config init --force

  # Create configuration at a custom path
  wishboard config init --config ./wishboard.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return initConfig(cmd, config.GetGlobalConfig().ConfigPath(), force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing configuration file")

	return cmd
}

// initConfig writes default configuration to configPath.
func initConfig(cmd *cobra.Command, configPath string, force bool) error {
	if configPath == "" {
		return errors.New("cannot determine configuration path; set WISHBOARD_HOME or use --config")
	}

	// Check if config already exists and force isn't set
	if !force {
		_, err := os.Stat(configPath)
		if err == nil {
			return errors.New("configuration file already exists, use --force to overwrite")
		}
		if !os.IsNotExist(err) {
			return fmt.Errorf("cannot access config path %s: %w", configPath, err)
		}
	}

	cfg := config.Default()
	cfg.SetConfigPath(configPath)
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	// Create .gitignore (never overwrites existing)
	created, err := config.EnsureGitignore(filepath.Dir(configPath))
	if err != nil {
		return fmt.Errorf("failed to create .gitignore: %w", err)
	}

	cmd.Printf("Configuration initialized at %s\n", configPath)
	if created {
		cmd.Printf("Created .gitignore to keep .env and logs out of version control\n")
	}

	return nil
}
