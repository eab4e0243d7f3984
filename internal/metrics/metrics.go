// Package metrics holds the Prometheus collectors exported by wishboard.
//
// Every method is safe on a nil *Metrics so components can run without
// instrumentation in tests and one-shot CLI commands.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "wishboard"

// Fetch outcome labels.
const (
	OutcomeSuccess     = "success"
	OutcomeMalformed   = "malformed"
	OutcomeScriptError = "script_error"
	OutcomeTimeout     = "timeout"
	OutcomeCanceled    = "canceled"
)

// Metrics groups the collectors and the registry they are registered with.
type Metrics struct {
	registry *prometheus.Registry

	fetchTotal       *prometheus.CounterVec
	fetchDuration    prometheus.Histogram
	pendingCallbacks prometheus.Gauge
	wishesLoaded     prometheus.Gauge
	currentPage      prometheus.Gauge
	totalPages       prometheus.Gauge
	navigations      *prometheus.CounterVec
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	rateLimited      prometheus.Counter
}

// New creates the collectors on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		fetchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_total",
			Help:      "Wish list fetches by outcome.",
		}, []string{"outcome"}),
		fetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Duration of wish list fetches.",
			Buckets:   prometheus.DefBuckets,
		}),
		pendingCallbacks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pending_callbacks",
			Help:      "Callback tokens registered and not yet resolved or removed.",
		}),
		wishesLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "wishes_loaded",
			Help:      "Number of wishes in the current list.",
		}),
		currentPage: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "current_page",
			Help:      "Page the widget is showing.",
		}),
		totalPages: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "total_pages",
			Help:      "Number of pages in the current list.",
		}),
		navigations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "navigations_total",
			Help:      "Navigation requests by action and whether they moved the page.",
		}, []string{"action", "moved"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"route", "method", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.fetchTotal, m.fetchDuration, m.pendingCallbacks,
		m.wishesLoaded, m.currentPage, m.totalPages, m.navigations,
		m.httpRequests, m.httpDuration, m.rateLimited,
	)
	return m
}

// Registry returns the registry the collectors live in.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveFetch records a completed fetch.
func (m *Metrics) ObserveFetch(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.fetchTotal.WithLabelValues(outcome).Inc()
	m.fetchDuration.Observe(d.Seconds())
}

// SetPendingCallbacks records the registry size.
func (m *Metrics) SetPendingCallbacks(n int) {
	if m == nil {
		return
	}
	m.pendingCallbacks.Set(float64(n))
}

// SetPagination records the list size and page position.
func (m *Metrics) SetPagination(items, current, total int) {
	if m == nil {
		return
	}
	m.wishesLoaded.Set(float64(items))
	m.currentPage.Set(float64(current))
	m.totalPages.Set(float64(total))
}

// ObserveNavigation records a navigation request.
func (m *Metrics) ObserveNavigation(action string, moved bool) {
	if m == nil {
		return
	}
	m.navigations.WithLabelValues(action, strconv.FormatBool(moved)).Inc()
}

// ObserveHTTP records a served request.
func (m *Metrics) ObserveHTTP(route, method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route, method).Observe(d.Seconds())
}

// IncRateLimited records a rejected request.
func (m *Metrics) IncRateLimited() {
	if m == nil {
		return
	}
	m.rateLimited.Inc()
}
