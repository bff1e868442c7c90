package router

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics - quote counters of a router
type Metrics struct {
	quotes        *prometheus.CounterVec
	quoteDuration *prometheus.HistogramVec
	poolErrors    prometheus.Counter
}

// NewMetrics creates the router metrics and registers them with reg.
// A nil registerer leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		quotes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "invariant",
			Subsystem: "router",
			Name:      "quotes_total",
			Help:      "Simulated quotes by simulation status.",
		}, []string{"status"}),
		quoteDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "invariant",
			Subsystem: "router",
			Name:      "quote_duration_seconds",
			Help:      "Time to fetch a snapshot and simulate one pool.",
			Buckets:   prometheus.DefBuckets,
		}, []string{}),
		poolErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "invariant",
			Subsystem: "router",
			Name:      "pool_errors_total",
			Help:      "Pools skipped because fetching or simulating failed.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.quotes, m.quoteDuration, m.poolErrors)
	}
	return m
}
