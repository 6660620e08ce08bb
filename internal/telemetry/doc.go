// Package telemetry implements directive observers that export what the
// router did: Prometheus metrics, MQTT events and InfluxDB points.
//
// Observers run synchronously after each directive and must not fail it.
// Export errors are logged and dropped.
package telemetry
