package telemetry

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/barrymcandrews/aurora-home-skill/internal/directive"
)

// Metrics exports directive counts and latencies to Prometheus.
type Metrics struct {
	directives *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		directives: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aurora_directives_total",
				Help: "Directives processed, by directive name and outcome.",
			},
			[]string{"name", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "aurora_directive_duration_seconds",
				Help:    "Time spent handling a directive, including channel API calls.",
				Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"name"},
		),
	}

	for _, c := range []prometheus.Collector{m.directives, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("registering directive metrics: %w", err)
		}
	}
	return m, nil
}

// ObserveDirective implements directive.Observer.
func (m *Metrics) ObserveDirective(ev directive.Event) {
	// Kind names bound label cardinality; unsupported names become "Unknown".
	name := ev.Kind.String()
	m.directives.WithLabelValues(name, ev.Outcome).Inc()
	m.duration.WithLabelValues(name).Observe(ev.Duration.Seconds())
}
