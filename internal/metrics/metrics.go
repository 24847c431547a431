// Package metrics exposes the shell's Prometheus collectors.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/leapstack-labs/leapdash/internal/pages"
)

// Navigation outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
	OutcomeTimeout = "timeout"
	OutcomeUnknown = "unknown"
)

// UnknownKey is the key label of navigations to keys that match no route.
// Client-supplied keys never become label values.
const UnknownKey = "_unknown"

// Collector owns a private registry so tests and multiple servers never
// collide on the global one.
type Collector struct {
	registry    *prometheus.Registry
	navigations *prometheus.CounterVec
	preload     *prometheus.HistogramVec
	reloads     *prometheus.CounterVec
	subscribers prometheus.Gauge
}

// New registers all collectors, plus Go and process collectors.
func New() *Collector {
	reg := prometheus.NewRegistry()
	c := &Collector{
		registry: reg,
		navigations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "leapdash_navigations_total",
			Help: "Menu navigations by route key and outcome.",
		}, []string{"key", "outcome"}),
		preload: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "leapdash_preload_seconds",
			Help:    "Time spent preloading page content.",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 2.5, 5, 10},
		}, []string{"key"}),
		reloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "leapdash_catalog_reloads_total",
			Help: "Route and locale catalog reloads by result.",
		}, []string{"result"}),
		subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "leapdash_update_subscribers",
			Help: "Open live update streams.",
		}),
	}
	reg.MustRegister(
		c.navigations,
		c.preload,
		c.reloads,
		c.subscribers,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Navigation counts one navigation attempt. Unknown-route attempts are all
// counted under UnknownKey.
func (c *Collector) Navigation(key, outcome string) {
	if outcome == OutcomeUnknown {
		key = UnknownKey
	}
	c.navigations.WithLabelValues(key, outcome).Inc()
}

// ObservePreload matches pages.PreloadObserver.
func (c *Collector) ObservePreload(key string, elapsed time.Duration, _ error) {
	c.preload.WithLabelValues(key).Observe(elapsed.Seconds())
}

// CatalogReload counts a reload attempt.
func (c *Collector) CatalogReload(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.reloads.WithLabelValues(result).Inc()
}

// SubscriberAdded and SubscriberRemoved track open update streams.
func (c *Collector) SubscriberAdded()   { c.subscribers.Inc() }
func (c *Collector) SubscriberRemoved() { c.subscribers.Dec() }

// NavigationOutcome maps a preload error to an outcome label.
func NavigationOutcome(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, pages.ErrPreloadTimeout):
		return OutcomeTimeout
	default:
		return OutcomeFailed
	}
}

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
