package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// MeasurementDirectives is the measurement written for each processed directive.
const MeasurementDirectives = "directives"

// WriteDirectiveMetric records one processed directive.
//
// The write is non-blocking; points are batched and sent asynchronously.
// Writes on a closed or disabled client are dropped.
//
// Parameters:
//   - name: Directive name (e.g., "TurnOn")
//   - outcome: Routing outcome (e.g., "success", "error")
//   - endpointID: Target endpoint, or "" for endpoint-less directives
//   - duration: Time spent handling the directive
//
// Example:
//
//	client.WriteDirectiveMetric("SetColor", "success", "Lamp1", 42*time.Millisecond)
func (c *Client) WriteDirectiveMetric(name, outcome, endpointID string, duration time.Duration) {
	if !c.IsConnected() {
		return
	}

	tags := map[string]string{
		"name":    name,
		"outcome": outcome,
	}
	if endpointID != "" {
		tags["endpoint"] = endpointID
	}

	fields := map[string]interface{}{
		"duration_ms": float64(duration) / float64(time.Millisecond),
	}
	c.writeAPI.WritePoint(write.NewPoint(MeasurementDirectives, tags, fields, c.now()))
}
