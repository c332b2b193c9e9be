// Package metrics provides Prometheus metrics for vuet stores.
package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	vuet "github.com/goliatone/go-vuet"
	"github.com/goliatone/go-vuet/pkg/activity"
)

// Collector records fetch outcomes as a vuet.FetchLogger and store activity
// as an activity.Hook.
type Collector struct {
	// Fetch metrics
	FetchTotal    *prometheus.CounterVec
	FetchDuration *prometheus.HistogramVec
	FetchErrors   *prometheus.CounterVec

	// Store metrics
	StoreEvents *prometheus.CounterVec
}

var (
	_ vuet.FetchLogger      = (*Collector)(nil)
	_ activity.Hook = (*Collector)(nil)
)

// New creates a collector registered with the default registry.
func New() *Collector {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a collector registered with reg.
func NewWithRegistry(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		FetchTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "vuet",
				Name:      "fetch_total",
				Help:      "Total number of module fetches by outcome",
			},
			[]string{"path", "outcome"},
		),
		FetchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "vuet",
				Name:      "fetch_duration_seconds",
				Help:      "Module fetch duration in seconds, hooks included",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"path"},
		),
		FetchErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "vuet",
				Name:      "fetch_errors_total",
				Help:      "Total number of fetch errors returned to callers",
			},
			[]string{"path"},
		),
		StoreEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "vuet",
				Name:      "store_events_total",
				Help:      "Total number of store activity events by verb",
			},
			[]string{"verb"},
		),
	}
}

// LogFetch implements vuet.FetchLogger. Skipped fetches are counted but not
// timed.
func (c *Collector) LogFetch(event vuet.FetchLogEvent) {
	c.FetchTotal.WithLabelValues(event.Path, string(event.Outcome)).Inc()
	if event.Outcome == vuet.FetchSkipped {
		return
	}
	c.FetchDuration.WithLabelValues(event.Path).Observe(event.Duration.Seconds())
	if event.Err != nil {
		c.FetchErrors.WithLabelValues(event.Path).Inc()
	}
}

// Notify implements activity.Hook.
func (c *Collector) Notify(_ context.Context, event activity.Event) error {
	c.StoreEvents.WithLabelValues(event.Verb).Inc()
	return nil
}
