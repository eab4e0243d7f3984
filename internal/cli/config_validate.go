package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rshade/wishboard/internal/config"
)

// NewConfigValidateCmd creates the config validate command for validating configuration.
func NewConfigValidateCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration",
		Long: `Validates the effective configuration: endpoint URL and transport, timeout,
page size and page links, refresh interval, mount point ids and rate limits.`,
		Example: `  # Validate current configuration
  wishboard config validate

  # Validate and show detailed information
  wishboard config validate --verbose`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigValidate(cmd, config.GetGlobalConfig(), verbose)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show detailed validation information")

	return cmd
}

// runConfigValidate executes the configuration validation logic.
func runConfigValidate(cmd *cobra.Command, cfg *config.Config, verbose bool) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	cmd.Printf("Configuration is valid\n")

	if verbose {
		cmd.Printf("  Endpoint:  %s (%s, timeout %s)\n", cfg.Endpoint.URL, cfg.Endpoint.Transport, cfg.Endpoint.Timeout)
		cmd.Printf("  Widget:    %d per page, %d page links, refresh every %s, locale %s\n",
			cfg.Widget.PageSize, cfg.Widget.MaxPageLinks, cfg.Widget.RefreshInterval, cfg.Widget.Locale)
		cmd.Printf("  Server:    %s, rate %.1f/s burst %d\n", cfg.Server.Addr, cfg.Server.RateLimit, cfg.Server.RateBurst)
	}

	return nil
}
