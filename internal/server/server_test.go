package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/wishboard/internal/config"
	"github.com/rshade/wishboard/internal/fetch"
	"github.com/rshade/wishboard/internal/metrics"
	"github.com/rshade/wishboard/internal/render"
	"github.com/rshade/wishboard/internal/widget"
	"github.com/rshade/wishboard/internal/wish"
)

type staticFetcher struct {
	list wish.List
	err  error
}

func (f staticFetcher) Fetch(context.Context) (fetch.Result, error) {
	if f.err != nil {
		return fetch.Result{}, f.err
	}
	return fetch.Result{OK: true, Wishes: f.list}, nil
}

func makeWishes(n int) wish.List {
	out := make(wish.List, n)
	for i := range out {
		out[i] = wish.Wish{Name: fmt.Sprintf("guest-%02d", i), Message: fmt.Sprintf("msg-%02d", i)}
	}
	return out
}

type fixture struct {
	srv     *Server
	ctrl    *widget.Controller
	doc     *widget.MemoryDocument
	metrics *metrics.Metrics
}

func newFixture(t *testing.T, f widget.Fetcher, init bool, mutate func(*config.Config)) fixture {
	t.Helper()
	cfg := config.Default()
	cfg.Server.RateLimit = 1000
	cfg.Server.RateBurst = 1000
	cfg.Server.Metrics = true
	if mutate != nil {
		mutate(cfg)
	}

	m := metrics.New()
	r, err := render.New(render.Options{
		Locale:      cfg.Widget.Locale,
		NavBasePath: cfg.Server.NavBasePath,
		SectionID:   cfg.Widget.SectionID,
	})
	require.NoError(t, err)
	doc := widget.NewMemoryDocument(cfg.Widget.ContainerID, cfg.Widget.PaginationID)

	opts := widget.OptionsFromConfig(cfg.Widget)
	opts.Fetcher = f
	opts.Renderer = r
	opts.Document = doc
	opts.Metrics = m
	ctrl, err := widget.New(opts)
	require.NoError(t, err)
	if init {
		require.NoError(t, ctrl.Init(context.Background()))
	}

	srv, err := New(Options{
		Config:     cfg.Server,
		Widget:     cfg.Widget,
		Controller: ctrl,
		Document:   doc,
		Renderer:   r,
		Metrics:    m,
		Logger:     zerolog.Nop(),
	})
	require.NoError(t, err)
	return fixture{srv: srv, ctrl: ctrl, doc: doc, metrics: m}
}

func (fx fixture) do(t *testing.T, method, target string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	for k, vv := range header {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	rec := httptest.NewRecorder()
	fx.srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHostPage(t *testing.T) {
	fx := newFixture(t, staticFetcher{list: wish.List{{Name: "<b>Tom</b>", Message: "hi & bye"}}}, true, nil)

	rec := fx.do(t, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.Contains(t, body, `<section id="wishes">`)
	assert.Contains(t, body, `<div id="wishes-container">`)
	assert.Contains(t, body, `<div id="wishes-pagination">`)
	assert.Contains(t, body, `lang="vi"`)
	assert.Contains(t, body, "&lt;b&gt;Tom&lt;/b&gt;")
	assert.Contains(t, body, "hi &amp; bye")
	assert.NotContains(t, body, "<b>Tom</b>")
}

func TestHostPage_LoadingBeforeInit(t *testing.T) {
	fx := newFixture(t, staticFetcher{}, false, nil)

	rec := fx.do(t, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Đang tải lời chúc...")
}

func TestHostPage_VisitorPage(t *testing.T) {
	fx := newFixture(t, staticFetcher{list: makeWishes(23)}, true, nil)

	rec := fx.do(t, http.MethodGet, "/?page=3", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "guest-20")
	assert.NotContains(t, body, "guest-00")
	assert.Contains(t, body, `href="/?page=2#wishes"`)
	assert.Equal(t, 1, fx.ctrl.CurrentPage(), "shared widget does not move")
	assert.Contains(t, fx.doc.HTML("wishes-container"), "guest-00")

	rec = fx.do(t, http.MethodGet, "/?page=99", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "guest-22", "clamped to the last page")

	for _, bad := range []string{"0", "-1", "two"} {
		rec = fx.do(t, http.MethodGet, "/?page="+bad, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, bad)
	}
}

func TestHostPage_VisitorPageBeforeInit(t *testing.T) {
	fx := newFixture(t, staticFetcher{}, false, nil)

	rec := fx.do(t, http.MethodGet, "/?page=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Đang tải lời chúc...")
}

func TestFragments(t *testing.T) {
	fx := newFixture(t, staticFetcher{list: makeWishes(23)}, true, nil)

	list := fx.do(t, http.MethodGet, "/wishes/list", nil)
	require.Equal(t, http.StatusOK, list.Code)
	assert.Contains(t, list.Body.String(), "guest-00")
	assert.NotContains(t, list.Body.String(), "guest-10")

	controls := fx.do(t, http.MethodGet, "/wishes/pagination", nil)
	require.Equal(t, http.StatusOK, controls.Code)
	assert.Contains(t, controls.Body.String(), `href="/wishes/page/3#wishes"`)
}

func TestNavigation_RedirectsToSection(t *testing.T) {
	fx := newFixture(t, staticFetcher{list: makeWishes(23)}, true, nil)

	tests := []struct {
		name   string
		method string
		target string
		page   int
	}{
		{"goto page 3", http.MethodGet, "/wishes/page/3", 3},
		{"prev", http.MethodPost, "/wishes/prev", 2},
		{"next", http.MethodGet, "/wishes/next", 3},
		{"next at last page", http.MethodGet, "/wishes/next", 3},
		{"out of range", http.MethodGet, "/wishes/page/9", 3},
		{"goto page 1", http.MethodPost, "/wishes/page/1", 1},
		{"prev at first page", http.MethodGet, "/wishes/prev", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := fx.do(t, tt.method, tt.target, nil)
			assert.Equal(t, http.StatusSeeOther, rec.Code)
			assert.Equal(t, "/#wishes", rec.Header().Get("Location"))
			assert.Equal(t, tt.page, fx.ctrl.CurrentPage())
		})
	}

	target, _ := fx.doc.LastScroll()
	assert.Equal(t, "wishes", target)
}

func TestNavigation_JSON(t *testing.T) {
	fx := newFixture(t, staticFetcher{list: makeWishes(23)}, true, nil)
	accept := http.Header{"Accept": {"application/json"}}

	rec := fx.do(t, http.MethodPost, "/wishes/page/2", accept)
	require.Equal(t, http.StatusOK, rec.Code)

	var frags Fragments
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &frags))
	assert.True(t, frags.Moved)
	assert.Equal(t, 2, frags.CurrentPage)
	assert.Equal(t, 3, frags.TotalPages)
	assert.Contains(t, frags.List, "guest-10")
	assert.Contains(t, frags.Pagination, `aria-current="page"`)

	rec = fx.do(t, http.MethodPost, "/wishes/page/7", accept)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &frags))
	assert.False(t, frags.Moved)
	assert.Equal(t, 2, frags.CurrentPage)
}

func TestNavigation_PageNumberOverflow(t *testing.T) {
	fx := newFixture(t, staticFetcher{list: makeWishes(3)}, true, nil)

	rec := fx.do(t, http.MethodGet, "/wishes/page/99999999999999999999999", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNavigation_CustomBasePath(t *testing.T) {
	fx := newFixture(t, staticFetcher{list: makeWishes(23)}, true, func(c *config.Config) {
		c.Server.NavBasePath = "/guestbook/"
		c.Widget.SectionID = "guestbook"
	})

	controls := fx.do(t, http.MethodGet, "/guestbook/pagination", nil)
	require.Equal(t, http.StatusOK, controls.Code)
	assert.Contains(t, controls.Body.String(), `href="/guestbook/page/2#guestbook"`)

	rec := fx.do(t, http.MethodGet, "/guestbook/next", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/#guestbook", rec.Header().Get("Location"))
	assert.Equal(t, 2, fx.ctrl.CurrentPage())
}

func TestAPI(t *testing.T) {
	list := makeWishes(23)
	fx := newFixture(t, staticFetcher{list: list}, true, nil)

	rec := fx.do(t, http.MethodGet, "/api/wishes?page=3", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var snap struct {
		State      string    `json:"state"`
		Wishes     wish.List `json:"wishes"`
		Pagination struct {
			CurrentPage int  `json:"current_page"`
			TotalPages  int  `json:"total_pages"`
			TotalItems  int  `json:"total_items"`
			HasNext     bool `json:"has_next"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, "ready", snap.State)
	assert.Equal(t, list[20:], snap.Wishes)
	assert.Equal(t, 3, snap.Pagination.CurrentPage)
	assert.Equal(t, 3, snap.Pagination.TotalPages)
	assert.Equal(t, 23, snap.Pagination.TotalItems)
	assert.False(t, snap.Pagination.HasNext)
	assert.Equal(t, 1, fx.ctrl.CurrentPage(), "api does not move the widget")

	for _, bad := range []string{"0", "-2", "abc"} {
		rec := fx.do(t, http.MethodGet, "/api/wishes?page="+bad, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, bad)
	}

	rec = fx.do(t, http.MethodGet, "/api/wishes", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, list[:10], snap.Wishes)
}

func TestHealth(t *testing.T) {
	fx := newFixture(t, staticFetcher{list: makeWishes(2)}, false, nil)

	rec := fx.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	require.NoError(t, fx.ctrl.Init(context.Background()))
	rec = fx.do(t, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var h Health
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &h))
	assert.Equal(t, widget.StateReady, h.State)
	assert.Equal(t, 2, h.Wishes)
}

func TestHealth_ErrorStateIsServing(t *testing.T) {
	fx := newFixture(t, staticFetcher{err: &fetch.FetchError{Reason: fetch.ReasonTimeout, Err: fetch.ErrTimeout}}, true, nil)

	rec := fx.do(t, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"state":"error"`)
	assert.Contains(t, rec.Body.String(), "timeout")
}

func TestMetricsEndpoint(t *testing.T) {
	fx := newFixture(t, staticFetcher{list: makeWishes(23)}, true, nil)
	fx.do(t, http.MethodGet, "/wishes/page/2", nil)

	rec := fx.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "wishboard_")
	assert.Contains(t, body, `route="/wishes/page/{n:[0-9]+}"`)
}

func TestMetricsEndpoint_Disabled(t *testing.T) {
	fx := newFixture(t, staticFetcher{}, true, func(c *config.Config) { c.Server.Metrics = false })

	rec := fx.do(t, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRequestID(t *testing.T) {
	fx := newFixture(t, staticFetcher{}, true, nil)

	rec := fx.do(t, http.MethodGet, "/healthz", nil)
	_, err := uuid.Parse(rec.Header().Get(HeaderRequestID))
	require.NoError(t, err, "generated id")

	inbound := uuid.NewString()
	rec = fx.do(t, http.MethodGet, "/healthz", http.Header{HeaderRequestID: {inbound}})
	assert.Equal(t, inbound, rec.Header().Get(HeaderRequestID))

	rec = fx.do(t, http.MethodGet, "/healthz", http.Header{HeaderRequestID: {"not-a-uuid"}})
	assert.NotEqual(t, "not-a-uuid", rec.Header().Get(HeaderRequestID))
}

func TestRateLimit(t *testing.T) {
	fx := newFixture(t, staticFetcher{list: makeWishes(23)}, true, func(c *config.Config) {
		c.Server.RateLimit = 0.001
		c.Server.RateBurst = 2
	})
	fwd := http.Header{"X-Forwarded-For": {"203.0.113.7, 10.0.0.1"}}

	assert.Equal(t, http.StatusSeeOther, fx.do(t, http.MethodGet, "/wishes/next", fwd).Code)
	assert.Equal(t, http.StatusSeeOther, fx.do(t, http.MethodGet, "/wishes/next", fwd).Code)
	rec := fx.do(t, http.MethodGet, "/wishes/prev", fwd)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, 3, fx.ctrl.CurrentPage(), "rejected request did not navigate")

	other := http.Header{"X-Forwarded-For": {"198.51.100.1"}}
	assert.Equal(t, http.StatusSeeOther, fx.do(t, http.MethodGet, "/wishes/prev", other).Code)

	assert.Equal(t, http.StatusOK, fx.do(t, http.MethodGet, "/healthz", fwd).Code, "health is not limited")
}

func TestRateLimiter_Sweep(t *testing.T) {
	now := time.Unix(1700000000, 0)
	rl := newRateLimiter(1, 1, nil)
	rl.now = func() time.Time { return now }

	rl.get("a")
	now = now.Add(2 * time.Minute)
	rl.get("b")
	now = now.Add(2 * time.Minute)

	assert.Equal(t, 1, rl.sweep(3*time.Minute))
	assert.Equal(t, 1, rl.size())
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.1:5555"
	assert.Equal(t, "192.0.2.1", clientIP(r))

	r.Header.Set("X-Forwarded-For", " 203.0.113.9 , 10.0.0.1")
	assert.Equal(t, "203.0.113.9", clientIP(r))

	r.Header.Del("X-Forwarded-For")
	r.RemoteAddr = "pipe"
	assert.Equal(t, "pipe", clientIP(r))
}

func TestCORS(t *testing.T) {
	fx := newFixture(t, staticFetcher{}, true, func(c *config.Config) {
		c.Server.AllowedOrigins = []string{"https://wedding.example"}
	})

	rec := fx.do(t, http.MethodGet, "/api/wishes", http.Header{"Origin": {"https://wedding.example"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://wedding.example", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = fx.do(t, http.MethodGet, "/api/wishes", http.Header{"Origin": {"https://elsewhere.example"}})
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	fx := newFixture(t, staticFetcher{list: makeWishes(1)}, true, nil)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- fx.srv.Serve(ctx, ln) }()

	url := "http://" + ln.Addr().String() + "/healthz"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url) //nolint:noctx // test
		if err != nil {
			return false
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}

	_, err = http.Get(url) //nolint:noctx // test
	require.Error(t, err)
}

func TestRun_ListenError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	fx := newFixture(t, staticFetcher{}, true, func(c *config.Config) { c.Server.Addr = ln.Addr().String() })
	err = fx.srv.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listening on")
}
