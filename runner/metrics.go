package runner

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	outcomeDenied = "denied"
	outcomeError  = "error"
	outcomeOK     = "ok"
)

// metrics holds Prometheus metrics for dispatched requests.
type metrics struct {
	dispatches *prometheus.CounterVec   // Dispatches by route, method and outcome
	duration   *prometheus.HistogramVec // Dispatch latency by route and method

	reg *prometheus.Registry
}

// newMetrics creates and registers dispatch metrics with reg.
func newMetrics(reg *prometheus.Registry) (*metrics, error) {
	m := &metrics{
		dispatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "trailrunner",
			Subsystem: "runner",
			Name:      "dispatches_total",
			Help:      "Total requests dispatched to handlers",
		}, []string{"route", "method", "outcome"}),

		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "trailrunner",
			Subsystem: "runner",
			Name:      "dispatch_duration_seconds",
			Help:      "Time spent running access checks, the handler and templates",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),

		reg: reg,
	}

	for _, c := range []prometheus.Collector{m.dispatches, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (m *metrics) observe(route, method, outcome string, d time.Duration) {
	m.dispatches.WithLabelValues(route, method, outcome).Inc()
	m.duration.WithLabelValues(route, method).Observe(d.Seconds())
}

// handler exposes the registry in the Prometheus text format.
func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}
