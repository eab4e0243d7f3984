package cli

import (
	"errors"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/rshade/wishboard/internal/config"
	"github.com/rshade/wishboard/internal/tui"
)

// ErrNotTerminal is returned when browse runs without a terminal.
var ErrNotTerminal = errors.New("browse needs an interactive terminal; use 'wishboard show' instead")

// NewBrowseCmd creates the browse command, an interactive terminal view.
func NewBrowseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse wishes in the terminal",
		Long: `Opens an interactive view of the wishes.

Keys: ←/h previous page, →/l next page, 1-9 go to page, r refresh, q quit.
The list refreshes on the configured interval while the view is open.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !isTerminal(os.Stdout) || !isTerminal(os.Stdin) {
				return ErrNotTerminal
			}
			cfg := config.GetGlobalConfig()
			a, err := newApp(cfg, nil)
			if err != nil {
				return err
			}
			return tui.Run(cmd.Context(), a.widget, a.renderer, cfg.Widget.RefreshInterval,
				tea.WithInput(cmd.InOrStdin()), tea.WithOutput(cmd.OutOrStdout()))
		},
	}
}
