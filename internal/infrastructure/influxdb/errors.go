package influxdb

import "errors"

// Errors returned by Connect and HealthCheck. Write failures are not
// returned; they reach the SetOnError callback.
var (
	ErrDisabled         = errors.New("influxdb: disabled in configuration")
	ErrConnectionFailed = errors.New("influxdb: connection failed")
	ErrNotConnected     = errors.New("influxdb: not connected")
)
