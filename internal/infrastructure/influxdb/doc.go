// Package influxdb records directive timings in InfluxDB.
//
// Each processed directive becomes one point in the "directives"
// measurement:
//
//	directives,name=SetColor,outcome=success,endpoint=Lamp1 duration_ms=42.1
//
// Writes are batched and non-blocking. Async write failures are delivered to
// the callback registered with SetOnError.
//
// # Configuration
//
//	influxdb:
//	  enabled: true
//	  url: "http://localhost:8086"
//	  token: ""            # or AURORA_INFLUXDB_TOKEN
//	  org: "home"
//	  bucket: "aurora"
//	  batch_size: 100
//	  flush_interval: 10   # seconds
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.WriteDirectiveMetric("TurnOn", "success", "Lamp1", elapsed)
package influxdb
