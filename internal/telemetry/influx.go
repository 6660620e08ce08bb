package telemetry

import (
	"time"

	"github.com/barrymcandrews/aurora-home-skill/internal/directive"
)

// PointWriter is the subset of the InfluxDB client used here.
// *influxdb.Client satisfies it.
type PointWriter interface {
	WriteDirectiveMetric(name, outcome, endpointID string, duration time.Duration)
}

// InfluxRecorder writes one "directives" point per directive.
type InfluxRecorder struct {
	writer PointWriter
}

// NewInfluxRecorder creates an InfluxDB observer.
func NewInfluxRecorder(w PointWriter) *InfluxRecorder {
	return &InfluxRecorder{writer: w}
}

// ObserveDirective implements directive.Observer.
func (r *InfluxRecorder) ObserveDirective(ev directive.Event) {
	r.writer.WriteDirectiveMetric(ev.Kind.String(), ev.Outcome, ev.EndpointID, ev.Duration)
}
