package widget

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/rshade/wishboard/internal/config"
	"github.com/rshade/wishboard/internal/fetch"
	"github.com/rshade/wishboard/internal/logging"
	"github.com/rshade/wishboard/internal/metrics"
	"github.com/rshade/wishboard/internal/pagination"
	"github.com/rshade/wishboard/internal/render"
	"github.com/rshade/wishboard/internal/wish"
)

// Fetcher loads the wish list. *fetch.Fetcher implements it.
type Fetcher interface {
	Fetch(ctx context.Context) (fetch.Result, error)
}

// Options configures a Controller.
type Options struct {
	Fetcher  Fetcher
	Renderer *render.Renderer
	Document Document
	Metrics  *metrics.Metrics

	PageSize        int
	MaxPageLinks    int
	RefreshInterval time.Duration
	ContainerID     string
	PaginationID    string
	SectionID       string
}

// OptionsFromConfig fills the layout fields of Options from cfg.
func OptionsFromConfig(cfg config.WidgetConfig) Options {
	return Options{
		PageSize:        cfg.PageSize,
		MaxPageLinks:    cfg.MaxPageLinks,
		RefreshInterval: cfg.RefreshInterval,
		ContainerID:     cfg.ContainerID,
		PaginationID:    cfg.PaginationID,
		SectionID:       cfg.SectionID,
	}
}

// Controller is the wishes widget.
type Controller struct {
	fetcher   Fetcher
	renderer  *render.Renderer
	doc       Document
	metrics   *metrics.Metrics
	paginator pagination.Paginator

	maxLinks     int
	interval     time.Duration
	containerID  string
	paginationID string
	sectionID    string

	mu          sync.Mutex
	state       State
	wishes      wish.List
	currentPage int
	totalPages  int
	lastErr     error
	lastUpdated time.Time
	started     bool
}

// New returns an uninitialized Controller.
func New(opts Options) (*Controller, error) {
	if opts.Fetcher == nil {
		return nil, errors.New("widget: fetcher is required")
	}
	if opts.Renderer == nil {
		return nil, errors.New("widget: renderer is required")
	}
	if opts.Document == nil {
		return nil, errors.New("widget: document is required")
	}

	size := opts.PageSize
	if size == 0 {
		size = pagination.DefaultPageSize
	}
	p, err := pagination.New(size)
	if err != nil {
		return nil, fmt.Errorf("widget: %w", err)
	}

	c := &Controller{
		fetcher:      opts.Fetcher,
		renderer:     opts.Renderer,
		doc:          opts.Document,
		metrics:      opts.Metrics,
		paginator:    p,
		maxLinks:     opts.MaxPageLinks,
		interval:     opts.RefreshInterval,
		containerID:  opts.ContainerID,
		paginationID: opts.PaginationID,
		sectionID:    opts.SectionID,
		currentPage:  1,
		totalPages:   1,
	}
	if c.maxLinks < 1 {
		c.maxLinks = pagination.DefaultMaxPageLinks
	}
	if c.interval <= 0 {
		c.interval = config.DefaultRefreshInterval
	}
	if c.containerID == "" {
		c.containerID = config.DefaultContainerID
	}
	if c.paginationID == "" {
		c.paginationID = config.DefaultPaginationID
	}
	if c.sectionID == "" {
		c.sectionID = config.DefaultSectionID
	}
	return c, nil
}

func componentLogger(ctx context.Context) *zerolog.Logger {
	logger := logging.FromContext(ctx).With().Str("component", "widget").Logger()
	return &logger
}

// Init performs the first load. When the document has no list mount point
// the widget logs and stays uninitialized; Init still returns nil so the host
// page is unaffected. Fetch failures are rendered, not returned.
func (c *Controller) Init(ctx context.Context) error {
	logger := componentLogger(ctx)
	logger.Info().Ctx(ctx).Msg("initializing wishes")

	container, ok := c.doc.Mount(c.containerID)
	if !ok {
		c.mu.Lock()
		c.lastErr = ErrMountPointMissing
		c.mu.Unlock()
		logger.Error().Ctx(ctx).Str("mount", c.containerID).Err(ErrMountPointMissing).Msg("wishes container not found")
		return nil
	}

	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return ErrAlreadyStarted
	}
	c.started = true
	c.state = StateLoading
	c.mu.Unlock()

	res, err := c.fetcher.Fetch(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case err != nil:
		c.state = StateError
		c.lastErr = err
		container.SetHTML(c.renderError(ctx, render.ErrorTransport))
		logger.Error().Ctx(ctx).Err(err).Msg("init error")
	case !res.OK:
		c.state = StateError
		c.lastErr = ErrMalformed
		container.SetHTML(c.renderError(ctx, render.ErrorMalformed))
	default:
		c.applyLocked(res.Wishes)
		c.state = StateReady
		c.lastErr = nil
		c.renderLocked(ctx)
	}
	return nil
}

// Refresh fetches the list again. On success the list is replaced, the
// current page clamped into range and the page re-rendered. Failures are
// logged and swallowed; the rendered page stays as it was. A refresh is
// skipped while another load is in flight. It reports whether the list was
// replaced.
func (c *Controller) Refresh(ctx context.Context) bool {
	logger := componentLogger(ctx)

	c.mu.Lock()
	if c.state == StateUninitialized || c.state == StateLoading {
		c.mu.Unlock()
		return false
	}
	previous := c.state
	c.state = StateLoading
	c.mu.Unlock()

	res, err := c.fetcher.Fetch(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil || !res.OK {
		c.state = previous
		if err == nil {
			err = ErrMalformed
		}
		logger.Warn().Ctx(ctx).Err(err).Msg("refresh failed, keeping current wishes")
		return false
	}

	c.applyLocked(res.Wishes)
	c.state = StateReady
	c.lastErr = nil
	c.renderLocked(ctx)
	return true
}

// Run initializes the widget, then refreshes it every refresh interval until
// ctx is cancelled. The ticker is stopped when Run returns.
func (c *Controller) Run(ctx context.Context) error {
	if err := c.Init(ctx); err != nil {
		return err
	}
	if c.State() == StateUninitialized {
		// No mount point: nothing to keep fresh.
		return nil
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			c.Refresh(ctx)
		}
	}
}

// GoTo shows page n. Pages outside [1, totalPages] are ignored. It reports
// whether the page changed.
func (c *Controller) GoTo(ctx context.Context, n int) bool {
	moved := c.navigate(ctx, n)
	c.metrics.ObserveNavigation("goto", moved)
	return moved
}

// Next shows the following page unless the current page is the last.
func (c *Controller) Next(ctx context.Context) bool {
	c.mu.Lock()
	target := c.currentPage + 1
	c.mu.Unlock()

	moved := c.navigate(ctx, target)
	c.metrics.ObserveNavigation("next", moved)
	return moved
}

// Prev shows the preceding page unless the current page is the first.
func (c *Controller) Prev(ctx context.Context) bool {
	c.mu.Lock()
	target := c.currentPage - 1
	c.mu.Unlock()

	moved := c.navigate(ctx, target)
	c.metrics.ObserveNavigation("prev", moved)
	return moved
}

func (c *Controller) navigate(ctx context.Context, n int) bool {
	c.mu.Lock()
	if n < pagination.MinPage || n > c.totalPages {
		c.mu.Unlock()
		return false
	}
	c.currentPage = n
	c.renderLocked(ctx)
	c.mu.Unlock()

	c.doc.ScrollIntoView(c.sectionID)
	return true
}

// applyLocked replaces the list and recomputes pagination. c.mu must be held.
func (c *Controller) applyLocked(wishes wish.List) {
	c.wishes = wishes
	c.totalPages = c.paginator.TotalPages(len(wishes))
	c.currentPage = pagination.Clamp(c.currentPage, c.totalPages)
	c.lastUpdated = time.Now()
	c.metrics.SetPagination(len(c.wishes), c.currentPage, c.totalPages)
}

// renderLocked renders the current page and the pagination controls. A
// missing pagination mount is skipped. c.mu must be held.
func (c *Controller) renderLocked(ctx context.Context) {
	logger := componentLogger(ctx)
	c.metrics.SetPagination(len(c.wishes), c.currentPage, c.totalPages)

	container, ok := c.doc.Mount(c.containerID)
	if !ok {
		return
	}
	items := pagination.Page(c.paginator, c.wishes, c.currentPage)
	html, err := c.renderer.List(items)
	if err != nil {
		logger.Error().Ctx(ctx).Err(err).Msg("rendering wishes failed")
		return
	}
	container.SetHTML(html)

	controls, ok := c.doc.Mount(c.paginationID)
	if !ok {
		return
	}
	meta := pagination.NewMeta(c.paginator, c.currentPage, len(c.wishes))
	html, err = c.renderer.Pagination(meta, c.maxLinks)
	if err != nil {
		logger.Error().Ctx(ctx).Err(err).Msg("rendering pagination failed")
		return
	}
	controls.SetHTML(html)
}

func (c *Controller) renderError(ctx context.Context, kind render.ErrorKind) string {
	html, err := c.renderer.Error(kind)
	if err != nil {
		componentLogger(ctx).Error().Ctx(ctx).Err(err).Msg("rendering error message failed")
	}
	return html
}

// Snapshot is a consistent copy of the widget state.
type Snapshot struct {
	State       State           `json:"state"`
	Page        wish.List       `json:"wishes"`
	Meta        pagination.Meta `json:"pagination"`
	PageLinks   []int           `json:"page_links"`
	LastUpdated time.Time       `json:"last_updated,omitzero"`
	LastError   string          `json:"last_error,omitempty"`
}

// Snapshot returns the current state and page.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked(c.currentPage)
}

// PageSnapshot returns page n of the current list without moving the widget.
// n is clamped into range.
func (c *Controller) PageSnapshot(n int) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked(pagination.Clamp(n, c.totalPages))
}

func (c *Controller) snapshotLocked(page int) Snapshot {
	meta := pagination.NewMeta(c.paginator, page, len(c.wishes))
	first, last := pagination.Window(meta.CurrentPage, meta.TotalPages, c.maxLinks)
	s := Snapshot{
		State:       c.state,
		Page:        append(wish.List{}, pagination.Page(c.paginator, c.wishes, meta.CurrentPage)...),
		Meta:        meta,
		PageLinks:   pagination.Pages(first, last),
		LastUpdated: c.lastUpdated,
	}
	if c.lastErr != nil {
		s.LastError = c.lastErr.Error()
	}
	return s
}

// State returns the lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// CurrentPage returns the page being shown.
func (c *Controller) CurrentPage() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentPage
}

// TotalPages returns the number of pages in the current list.
func (c *Controller) TotalPages() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalPages
}

// Wishes returns a copy of the current list, newest first.
func (c *Controller) Wishes() wish.List {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.wishes)
}

// LastError returns the error behind the current state, if any.
func (c *Controller) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// SectionID returns the id of the element navigation scrolls to.
func (c *Controller) SectionID() string {
	return c.sectionID
}
