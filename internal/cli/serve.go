package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rshade/wishboard/internal/config"
	"github.com/rshade/wishboard/internal/logging"
	"github.com/rshade/wishboard/internal/metrics"
	"github.com/rshade/wishboard/internal/server"
)

// NewServeCmd creates the serve command, which hosts the wishes page over HTTP.
func NewServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the wishes page over HTTP",
		Long: `Serves a page with the wishes section and keeps it fresh.

The list is fetched once at startup and then refreshed on the configured
interval. Page links move the shared widget and redirect back to #wishes.
JSON clients can read /api/wishes and request fragments from the navigation
routes with Accept: application/json.`,
		Example: `  # Serve on the configured address (default :8080)
  wishboard serve

  # Serve on another port
  wishboard serve --addr :3000`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.GetGlobalConfig()
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			return runServe(cmd, cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	return cmd
}

func runServe(cmd *cobra.Command, cfg *config.Config) error {
	m := metrics.New()
	a, err := newApp(cfg, m)
	if err != nil {
		return err
	}

	srv, err := server.New(server.Options{
		Config:     cfg.Server,
		Widget:     cfg.Widget,
		Controller: a.widget,
		Document:   a.doc,
		Renderer:   a.renderer,
		Metrics:    m,
		Logger:     *logging.FromContext(cmd.Context()),
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info().Ctx(ctx).
		Str("addr", cfg.Server.Addr).
		Str("endpoint", cfg.Endpoint.URL).
		Str("transport", cfg.Endpoint.Transport).
		Dur("refresh", cfg.Widget.RefreshInterval).
		Msg("starting wishboard")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.widget.Run(gctx) })
	g.Go(func() error { return srv.Run(gctx) })
	return g.Wait()
}
