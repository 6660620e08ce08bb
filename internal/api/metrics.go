package api

import (
	"net/http"
	"runtime"
	"time"
)

// SystemMetrics represents the complete system metrics response.
type SystemMetrics struct {
	Timestamp     string          `json:"timestamp"`
	Version       string          `json:"version"`
	UptimeSeconds int64           `json:"uptime_seconds"`
	Runtime       RuntimeMetrics  `json:"runtime"`
	MQTT          MQTTMetrics     `json:"mqtt"`
	Gateway       *GatewayMetrics `json:"gateway,omitempty"`
}

// RuntimeMetrics contains Go runtime statistics.
type RuntimeMetrics struct {
	Goroutines    int     `json:"goroutines"`
	MemoryAllocMB float64 `json:"memory_alloc_mb"`
	MemoryTotalMB float64 `json:"memory_total_mb"`
	NumGC         uint32  `json:"num_gc"`
}

// MQTTMetrics contains MQTT client statistics.
type MQTTMetrics struct {
	Enabled   bool `json:"enabled"`
	Connected bool `json:"connected"`
}

// GatewayMetrics contains endpoint and state cache statistics.
type GatewayMetrics struct {
	Endpoints     int    `json:"endpoints"`
	ActiveDevices int    `json:"active_devices"`
	LastRefresh   string `json:"last_refresh,omitempty"`
	Refreshes     uint64 `json:"refreshes"`
	Mutations     uint64 `json:"mutations"`
}

// handleMetrics returns runtime and gateway metrics as JSON.
func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	metrics := SystemMetrics{
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Version:       s.version,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		Runtime: RuntimeMetrics{
			Goroutines:    runtime.NumGoroutine(),
			MemoryAllocMB: float64(memStats.Alloc) / 1024 / 1024,
			MemoryTotalMB: float64(memStats.TotalAlloc) / 1024 / 1024,
			NumGC:         memStats.NumGC,
		},
	}

	if s.mqtt != nil {
		metrics.MQTT = MQTTMetrics{
			Enabled:   true,
			Connected: s.mqtt.IsConnected(),
		}
	}

	if s.gateway != nil {
		stats := s.gateway.Stats()
		metrics.Gateway = &GatewayMetrics{
			Endpoints:     stats.Endpoints,
			ActiveDevices: stats.ActiveDevices,
			Refreshes:     stats.Refreshes,
			Mutations:     stats.Mutations,
		}
		if !stats.LastRefresh.IsZero() {
			metrics.Gateway.LastRefresh = stats.LastRefresh.UTC().Format(time.RFC3339)
		}
	}

	writeJSON(w, http.StatusOK, metrics)
}
