package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/rshade/wishboard/internal/config"
	"github.com/rshade/wishboard/internal/metrics"
	"github.com/rshade/wishboard/internal/render"
	"github.com/rshade/wishboard/internal/widget"
)

// Server timeouts.
const (
	ReadTimeout     = 5 * time.Second
	WriteTimeout    = 10 * time.Second
	IdleTimeout     = 120 * time.Second
	ShutdownTimeout = 30 * time.Second

	visitorIdle  = 3 * time.Minute
	sweepEvery   = time.Minute
	apiRoutePath = "/api/wishes"
)

//go:embed templates/page.html
var pageFS embed.FS

// Options configures a Server.
type Options struct {
	Config     config.ServerConfig
	Widget     config.WidgetConfig
	Controller *widget.Controller
	Document   *widget.MemoryDocument
	Renderer   *render.Renderer
	Metrics    *metrics.Metrics
	Logger     zerolog.Logger
}

// Server is the HTTP host for the wishes widget.
type Server struct {
	cfg      config.ServerConfig
	widget   config.WidgetConfig
	ctrl     *widget.Controller
	doc      *widget.MemoryDocument
	renderer *render.Renderer
	metrics  *metrics.Metrics
	logger   zerolog.Logger
	page     *template.Template
	limiter  *rateLimiter
	handler  http.Handler
}

// New builds the router. It does not start listening.
func New(opts Options) (*Server, error) {
	if opts.Controller == nil || opts.Document == nil || opts.Renderer == nil {
		return nil, errors.New("server: controller, document and renderer are required")
	}
	page, err := template.ParseFS(pageFS, "templates/page.html")
	if err != nil {
		return nil, fmt.Errorf("parsing host page: %w", err)
	}

	s := &Server{
		cfg:      opts.Config,
		widget:   opts.Widget,
		ctrl:     opts.Controller,
		doc:      opts.Document,
		renderer: opts.Renderer,
		metrics:  opts.Metrics,
		logger:   opts.Logger.With().Str("component", "server").Logger(),
		page:     page,
	}
	s.cfg.NavBasePath = strings.TrimRight(s.cfg.NavBasePath, "/")
	if s.cfg.NavBasePath == "" {
		s.cfg.NavBasePath = config.DefaultNavBasePath
	}
	if s.widget.ContainerID == "" {
		s.widget.ContainerID = config.DefaultContainerID
	}
	if s.widget.PaginationID == "" {
		s.widget.PaginationID = config.DefaultPaginationID
	}
	if s.widget.SectionID == "" {
		s.widget.SectionID = config.DefaultSectionID
	}
	if s.cfg.RateLimit > 0 && s.cfg.RateBurst > 0 {
		s.limiter = newRateLimiter(s.cfg.RateLimit, s.cfg.RateBurst, s.metrics)
	}
	s.handler = s.routes()
	return s, nil
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	r := mux.NewRouter()
	r.Use(requestIDMiddleware(s.logger), accessLogMiddleware, monitorMiddleware(s.metrics))

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet, http.MethodHead)
	if s.cfg.Metrics {
		r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	}

	public := r.NewRoute().Subrouter()
	if s.limiter != nil {
		public.Use(s.limiter.middleware)
	}
	public.HandleFunc("/", s.handlePage).Methods(http.MethodGet, http.MethodHead)
	public.HandleFunc(apiRoutePath, s.handleAPI).Methods(http.MethodGet)

	nav := public.PathPrefix(s.cfg.NavBasePath).Subrouter()
	nav.HandleFunc("/list", s.handleFragment(s.widget.ContainerID)).Methods(http.MethodGet)
	nav.HandleFunc("/pagination", s.handleFragment(s.widget.PaginationID)).Methods(http.MethodGet)
	nav.HandleFunc("/page/{n:[0-9]+}", s.handleGoTo).Methods(http.MethodGet, http.MethodPost)
	nav.HandleFunc("/next", s.handleNavigate(s.ctrl.Next)).Methods(http.MethodGet, http.MethodPost)
	nav.HandleFunc("/prev", s.handleNavigate(s.ctrl.Prev)).Methods(http.MethodGet, http.MethodPost)

	var h http.Handler = r
	if len(s.cfg.AllowedOrigins) > 0 {
		h = handlers.CORS(
			handlers.AllowedOrigins(s.cfg.AllowedOrigins),
			handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
			handlers.AllowedHeaders([]string{"Content-Type", "Accept", HeaderRequestID}),
			handlers.ExposedHeaders([]string{HeaderRequestID}),
		)(h)
	}
	return handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{s.logger}),
		handlers.PrintRecoveryStack(false),
	)(h)
}

// Run listens on the configured address until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	addr := s.cfg.Addr
	if addr == "" {
		addr = config.DefaultAddr
	}
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully, waiting up to ShutdownTimeout for in-flight requests.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.handler,
		ReadTimeout:  ReadTimeout,
		WriteTimeout: WriteTimeout,
		IdleTimeout:  IdleTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info().Str("addr", ln.Addr().String()).Msg("listening")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving http: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down http: %w", err)
		}
		s.logger.Info().Msg("server stopped")
		return nil
	})
	if s.limiter != nil {
		g.Go(func() error {
			ticker := time.NewTicker(sweepEvery)
			defer ticker.Stop()
			for {
				select {
				case <-gctx.Done():
					return nil
				case <-ticker.C:
					s.limiter.sweep(visitorIdle)
				}
			}
		})
	}
	return g.Wait()
}

// recoveryLogger adapts zerolog to handlers.RecoveryHandlerLogger.
type recoveryLogger struct {
	logger zerolog.Logger
}

func (l recoveryLogger) Println(v ...any) {
	l.logger.Error().Msg(fmt.Sprint(v...))
}
