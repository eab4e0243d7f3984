package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rshade/wishboard/internal/config"
	"github.com/rshade/wishboard/internal/logging"
	"github.com/rshade/wishboard/internal/metrics"
	"github.com/rshade/wishboard/internal/wish"
)

// Accept headers per transport mode.
const (
	acceptJSONP = "application/javascript, text/javascript, */*;q=0.1"
	acceptJSON  = "application/json"
)

// Result is a settled fetch. OK is false when the callback fired with a
// payload that failed the shape check; Wishes is then nil.
type Result struct {
	OK     bool
	Wishes wish.List
}

// Options configures a Fetcher. Zero values fall back to the config defaults.
type Options struct {
	URL            string
	Transport      string
	Timeout        time.Duration
	CallbackPrefix string

	Loader   Loader
	Registry *Registry
	Metrics  *metrics.Metrics
	Now      func() time.Time
}

// OptionsFromConfig maps the endpoint section of cfg onto Options.
func OptionsFromConfig(cfg config.EndpointConfig) Options {
	return Options{
		URL:            cfg.URL,
		Transport:      cfg.Transport,
		Timeout:        cfg.Timeout,
		CallbackPrefix: cfg.CallbackPrefix,
	}
}

// Fetcher loads the wish list from the endpoint.
type Fetcher struct {
	endpoint  *url.URL
	transport string
	timeout   time.Duration
	loader    Loader
	registry  *Registry
	tokens    *TokenSource
	metrics   *metrics.Metrics
	now       func() time.Time
}

// New validates opts and returns a Fetcher.
func New(opts Options) (*Fetcher, error) {
	u, err := url.Parse(opts.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", config.ErrInvalidEndpoint, opts.URL)
	}

	f := &Fetcher{
		endpoint:  u,
		transport: opts.Transport,
		timeout:   opts.Timeout,
		loader:    opts.Loader,
		registry:  opts.Registry,
		metrics:   opts.Metrics,
		now:       opts.Now,
	}
	if f.transport == "" {
		f.transport = config.TransportJSONP
	}
	if f.transport != config.TransportJSONP && f.transport != config.TransportJSON {
		return nil, fmt.Errorf("%w: got %q", config.ErrInvalidTransport, f.transport)
	}
	if f.timeout <= 0 {
		f.timeout = config.DefaultTimeout
	}
	if f.registry == nil {
		f.registry = NewRegistry()
	}
	if f.now == nil {
		f.now = time.Now
	}
	if f.loader == nil {
		accept := acceptJSONP
		if f.transport == config.TransportJSON {
			accept = acceptJSON
		}
		f.loader = &HTTPLoader{Client: &http.Client{}, Accept: accept}
	}
	prefix := opts.CallbackPrefix
	if prefix == "" {
		prefix = config.DefaultCallbackPrefix
	}
	f.tokens = NewTokenSource(prefix)
	return f, nil
}

// Registry returns the callback registry used by f.
func (f *Fetcher) Registry() *Registry {
	return f.registry
}

// Fetch loads the wish list once. See the package documentation for the
// possible outcomes. A cancelled ctx returns ctx's error.
func (f *Fetcher) Fetch(ctx context.Context) (Result, error) {
	logger := logging.FromContext(ctx).With().Str("component", "fetch").Logger()
	start := time.Now()

	token, err := f.tokens.Next()
	if err != nil {
		return Result{}, fmt.Errorf("generating callback token: %w", err)
	}
	pending, err := f.registry.Register(token)
	if err != nil {
		return Result{}, err
	}
	f.metrics.SetPendingCallbacks(f.registry.Len())
	defer func() {
		f.registry.Remove(token)
		f.metrics.SetPendingCallbacks(f.registry.Len())
	}()

	reqURL := f.requestURL(token)
	logger.Debug().Ctx(ctx).Str("url", reqURL).Msg("fetching wishes")

	loadCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	// Only the direct JSON transport answers without naming the callback.
	self := ""
	if f.transport == config.TransportJSON {
		self = token
	}

	loaded := make(chan error, 1)
	go func() {
		body, loadErr := f.loader.Load(loadCtx, reqURL)
		if loadErr == nil && !Dispatch(f.registry, body, self) {
			logger.Debug().Ctx(ctx).Str("token", token).Msg("response fired no registered callback")
		}
		loaded <- loadErr
	}()

	for {
		select {
		case payload := <-pending.Done():
			return f.settle(ctx, payload, start)

		case loadErr := <-loaded:
			loaded = nil
			if loadErr == nil {
				// Loaded without firing our callback: wait for it or the timeout.
				continue
			}
			if ctx.Err() != nil {
				return f.canceled(ctx, start)
			}
			if errors.Is(loadErr, context.DeadlineExceeded) {
				return f.fail(ctx, ReasonTimeout, loadErr, start)
			}
			return f.fail(ctx, ReasonScriptError, loadErr, start)

		case <-loadCtx.Done():
			if ctx.Err() != nil {
				return f.canceled(ctx, start)
			}
			return f.fail(ctx, ReasonTimeout, nil, start)
		}
	}
}

func (f *Fetcher) settle(ctx context.Context, payload []byte, start time.Time) (Result, error) {
	logger := logging.FromContext(ctx)

	wishes, err := wish.Decode(payload)
	if err != nil {
		f.metrics.ObserveFetch(metrics.OutcomeMalformed, time.Since(start))
		logger.Warn().Ctx(ctx).Str("component", "fetch").Err(err).Msg("invalid response format")
		return Result{OK: false}, nil
	}

	f.metrics.ObserveFetch(metrics.OutcomeSuccess, time.Since(start))
	logger.Info().Ctx(ctx).Str("component", "fetch").Int("wishes", len(wishes)).Msg("wishes loaded")
	return Result{OK: true, Wishes: wishes}, nil
}

func (f *Fetcher) fail(ctx context.Context, reason string, cause error, start time.Time) (Result, error) {
	outcome := metrics.OutcomeScriptError
	if reason == ReasonTimeout {
		outcome = metrics.OutcomeTimeout
	}
	f.metrics.ObserveFetch(outcome, time.Since(start))

	fetchErr := &FetchError{Reason: reason, Err: cause}
	logging.FromContext(ctx).Error().Ctx(ctx).Str("component", "fetch").Err(fetchErr).Msg("fetch failed")
	return Result{}, fetchErr
}

func (f *Fetcher) canceled(ctx context.Context, start time.Time) (Result, error) {
	f.metrics.ObserveFetch(metrics.OutcomeCanceled, time.Since(start))
	return Result{}, ctx.Err()
}

// requestURL adds the callback (JSONP only) and cache-busting timestamp.
func (f *Fetcher) requestURL(token string) string {
	u := *f.endpoint
	q := u.Query()
	if f.transport == config.TransportJSONP {
		q.Set("callback", token)
	}
	q.Set("timestamp", strconv.FormatInt(f.now().UnixMilli(), 10))
	u.RawQuery = q.Encode()
	return u.String()
}
