package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rshade/wishboard/internal/config"
	"github.com/rshade/wishboard/internal/tui"
	"github.com/rshade/wishboard/internal/widget"
)

// Output formats for show.
const (
	FormatHTML = "html"
	FormatJSON = "json"
	FormatText = "text"
)

// NewShowCmd creates the show command, which fetches once and prints a page.
func NewShowCmd() *cobra.Command {
	var (
		page   int
		format string
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Fetch the wishes once and print a page",
		Example: `  # Print the first page
  wishboard show

  # Print page 3 as the HTML fragments the page would show
  wishboard show --page 3 --format html

  # Machine-readable output
  wishboard show --format json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runShow(cmd, config.GetGlobalConfig(), page, format)
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "page to print")
	cmd.Flags().StringVar(&format, "format", FormatText, "output format: text, html or json")
	return cmd
}

func runShow(cmd *cobra.Command, cfg *config.Config, page int, format string) error {
	format = strings.ToLower(format)
	switch format {
	case FormatHTML, FormatJSON, FormatText:
	default:
		return fmt.Errorf("unsupported format %q: use text, html or json", format)
	}
	if page < 1 {
		return fmt.Errorf("page must be >= 1, got %d", page)
	}

	a, err := newApp(cfg, nil)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if err := a.widget.Init(ctx); err != nil {
		return err
	}

	if page > 1 && !a.widget.GoTo(ctx, page) && a.widget.State() == widget.StateReady {
		return fmt.Errorf("page %d out of range (1-%d)", page, a.widget.TotalPages())
	}

	out := cmd.OutOrStdout()
	switch format {
	case FormatHTML:
		fmt.Fprintln(out, a.doc.HTML(cfg.Widget.ContainerID))
		if controls := a.doc.HTML(cfg.Widget.PaginationID); controls != "" {
			fmt.Fprintln(out, controls)
		}
	case FormatJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(a.widget.Snapshot()); err != nil {
			return fmt.Errorf("encoding wishes: %w", err)
		}
	default:
		fmt.Fprintln(out, tui.RenderText(a.renderer, tui.View{
			Snapshot: a.widget.Snapshot(),
			Err:      a.widget.LastError(),
			Width:    terminalWidth(),
		}))
	}

	if a.widget.State() == widget.StateError {
		return fmt.Errorf("loading wishes: %w", a.widget.LastError())
	}
	return nil
}

// terminalWidth returns the stdout width, or 0 when it is not a terminal.
func terminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return 0
	}
	w, _, err := term.GetSize(fd)
	if err != nil {
		return 0
	}
	return w
}
