package influxdb

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/barrymcandrews/aurora-home-skill/internal/infrastructure/config"
)

const (
	connectTimeout = 10 * time.Second
	pingTimeout    = 5 * time.Second

	defaultBatchSize     = 100
	defaultFlushInterval = 10 * time.Second

	applicationName = "aurora-skill"
)

// Client records directive timings through the batched, non-blocking
// InfluxDB write API. Points written after Close are dropped.
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
type Client struct {
	client   influxdb2.Client
	writeAPI api.WriteAPI
	now      func() time.Time

	connected atomic.Bool
	onError   atomic.Pointer[func(error)]
}

// Connect pings the server and opens a write API on the configured org and
// bucket.
//
// Returns:
//   - *Client: Client ready for writes
//   - error: ErrDisabled when influxdb.enabled is false, ErrConnectionFailed
//     when the server cannot be reached or is not ready
func Connect(cfg config.InfluxDBConfig) (*Client, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}

	client := influxdb2.NewClientWithOptions(cfg.URL, cfg.Token, clientOptions(cfg))

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if err := ping(ctx, client); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	c := &Client{
		client:   client,
		writeAPI: client.WriteAPI(cfg.Org, cfg.Bucket),
		now:      time.Now,
	}
	c.connected.Store(true)

	go c.forwardWriteErrors()

	return c, nil
}

// clientOptions applies batch size and flush interval, falling back to the
// defaults for unset values. Directive timings need millisecond precision.
func clientOptions(cfg config.InfluxDBConfig) *influxdb2.Options {
	batchSize := defaultBatchSize
	if cfg.BatchSize > 0 {
		batchSize = cfg.BatchSize
	}
	flushInterval := defaultFlushInterval
	if cfg.FlushInterval > 0 {
		flushInterval = time.Duration(cfg.FlushInterval) * time.Second
	}

	// #nosec G115 -- both values are positive
	return influxdb2.DefaultOptions().
		SetBatchSize(uint(batchSize)).
		SetFlushInterval(uint(flushInterval.Milliseconds())).
		SetPrecision(time.Millisecond).
		SetApplicationName(applicationName)
}

func ping(ctx context.Context, client influxdb2.Client) error {
	ready, err := client.Ping(ctx)
	if err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	if !ready {
		return errors.New("server not ready")
	}
	return nil
}

// forwardWriteErrors hands async write failures to the SetOnError callback.
// It returns when the write API is closed.
func (c *Client) forwardWriteErrors() {
	for err := range c.writeAPI.Errors() {
		if cb := c.onError.Load(); cb != nil {
			(*cb)(err)
		}
	}
}

// Close flushes pending points and closes the client. Calling it more than
// once, or on a zero Client, is a no-op.
func (c *Client) Close() error {
	if !c.connected.Swap(false) {
		return nil
	}

	c.writeAPI.Flush()
	c.client.Close()
	return nil
}

// HealthCheck pings the server.
func (c *Client) HealthCheck(ctx context.Context) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := ping(ctx, c.client); err != nil {
		return fmt.Errorf("influxdb health check: %w", err)
	}
	return nil
}

// IsConnected reports whether the client is open. It does not contact the
// server; use HealthCheck for that.
func (c *Client) IsConnected() bool {
	return c.connected.Load()
}

// SetOnError registers the callback for async write failures. Nil clears it.
func (c *Client) SetOnError(callback func(err error)) {
	if callback == nil {
		c.onError.Store(nil)
		return
	}
	c.onError.Store(&callback)
}

// Flush blocks until buffered points are sent. No-op after Close.
func (c *Client) Flush() {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.Flush()
}
