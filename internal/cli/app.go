package cli

import (
	"fmt"

	"github.com/rshade/wishboard/internal/config"
	"github.com/rshade/wishboard/internal/fetch"
	"github.com/rshade/wishboard/internal/metrics"
	"github.com/rshade/wishboard/internal/render"
	"github.com/rshade/wishboard/internal/widget"
)

// app is the widget and its collaborators, wired from a Config.
type app struct {
	cfg      *config.Config
	metrics  *metrics.Metrics
	fetcher  *fetch.Fetcher
	renderer *render.Renderer
	doc      *widget.MemoryDocument
	widget   *widget.Controller
}

// newApp validates cfg and wires the fetcher, renderer, document and
// controller. m may be nil.
func newApp(cfg *config.Config, m *metrics.Metrics) (*app, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	fetchOpts := fetch.OptionsFromConfig(cfg.Endpoint)
	fetchOpts.Metrics = m
	fetcher, err := fetch.New(fetchOpts)
	if err != nil {
		return nil, fmt.Errorf("creating fetcher: %w", err)
	}

	renderer, err := render.New(render.Options{
		Locale:      cfg.Widget.Locale,
		NavBasePath: cfg.Server.NavBasePath,
		SectionID:   cfg.Widget.SectionID,
	})
	if err != nil {
		return nil, fmt.Errorf("creating renderer: %w", err)
	}

	doc := widget.NewMemoryDocument(cfg.Widget.ContainerID, cfg.Widget.PaginationID)

	opts := widget.OptionsFromConfig(cfg.Widget)
	opts.Fetcher = fetcher
	opts.Renderer = renderer
	opts.Document = doc
	opts.Metrics = m
	ctrl, err := widget.New(opts)
	if err != nil {
		return nil, fmt.Errorf("creating widget: %w", err)
	}

	return &app{
		cfg:      cfg,
		metrics:  m,
		fetcher:  fetcher,
		renderer: renderer,
		doc:      doc,
		widget:   ctrl,
	}, nil
}
