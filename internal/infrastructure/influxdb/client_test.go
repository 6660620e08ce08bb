package influxdb_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/barrymcandrews/aurora-home-skill/internal/infrastructure/config"
	"github.com/barrymcandrews/aurora-home-skill/internal/infrastructure/influxdb"
)

// fakeInflux answers /ping and records line protocol sent to /api/v2/write.
type fakeInflux struct {
	mu         sync.Mutex
	bodies     []string
	precision  string
	healthy    bool
	failWrites bool
}

func (f *fakeInflux) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/ping":
		if !f.healthy {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	case "/api/v2/write":
		if f.failWrites {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"code":"invalid","message":"bad point"}`))
			return
		}
		body, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.bodies = append(f.bodies, string(body))
		f.precision = r.URL.Query().Get("precision")
		f.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeInflux) written() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return strings.Join(f.bodies, "\n")
}

func testConfig(url string) config.InfluxDBConfig {
	return config.InfluxDBConfig{
		Enabled:       true,
		URL:           url,
		Token:         "test-token",
		Org:           "home",
		Bucket:        "aurora",
		BatchSize:     1,
		FlushInterval: 1,
	}
}

func connect(t *testing.T, f *fakeInflux) *influxdb.Client {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	client, err := influxdb.Connect(testConfig(srv.URL))
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestConnect_Disabled(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1")
	cfg.Enabled = false

	if _, err := influxdb.Connect(cfg); !errors.Is(err, influxdb.ErrDisabled) {
		t.Errorf("Connect() error = %v, want ErrDisabled", err)
	}
}

func TestConnect_Unhealthy(t *testing.T) {
	srv := httptest.NewServer(&fakeInflux{healthy: false})
	defer srv.Close()

	if _, err := influxdb.Connect(testConfig(srv.URL)); !errors.Is(err, influxdb.ErrConnectionFailed) {
		t.Errorf("Connect() error = %v, want ErrConnectionFailed", err)
	}
}

func TestHealthCheck(t *testing.T) {
	client := connect(t, &fakeInflux{healthy: true})

	if !client.IsConnected() {
		t.Fatal("IsConnected() = false after Connect()")
	}
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
}

func TestWriteDirectiveMetric(t *testing.T) {
	f := &fakeInflux{healthy: true}
	client := connect(t, f)

	client.WriteDirectiveMetric("TurnOn", "success", "Lamp1", 12*time.Millisecond)
	client.Flush()

	deadline := time.Now().Add(5 * time.Second)
	for !strings.Contains(f.written(), "directives,") && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}

	line := f.written()
	for _, want := range []string{"directives,", "endpoint=Lamp1", "name=TurnOn", "outcome=success", "duration_ms=12"} {
		if !strings.Contains(line, want) {
			t.Errorf("written line protocol %q missing %q", line, want)
		}
	}
}

func TestWriteDirectiveMetric_MillisecondPrecision(t *testing.T) {
	f := &fakeInflux{healthy: true}
	client := connect(t, f)

	client.WriteDirectiveMetric("TurnOn", "success", "Lamp1", time.Millisecond)
	client.Flush()

	deadline := time.Now().Add(5 * time.Second)
	for f.written() == "" && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.precision != "ms" {
		t.Errorf("write precision = %q, want ms", f.precision)
	}
}

func TestSetOnError(t *testing.T) {
	f := &fakeInflux{healthy: true, failWrites: true}
	client := connect(t, f)

	errs := make(chan error, 4)
	client.SetOnError(func(err error) {
		select {
		case errs <- err:
		default:
		}
	})

	client.WriteDirectiveMetric("TurnOn", "success", "Lamp1", time.Millisecond)
	client.Flush()

	select {
	case err := <-errs:
		if err == nil {
			t.Error("SetOnError callback received nil error")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("SetOnError callback not invoked for rejected write")
	}

	// Clearing the callback must not break later failed writes.
	client.SetOnError(nil)
	client.WriteDirectiveMetric("TurnOff", "success", "Lamp1", time.Millisecond)
	client.Flush()
}

func TestClose(t *testing.T) {
	client := connect(t, &fakeInflux{healthy: true})

	if err := client.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if client.IsConnected() {
		t.Error("IsConnected() = true after Close()")
	}
	if err := client.HealthCheck(context.Background()); !errors.Is(err, influxdb.ErrNotConnected) {
		t.Errorf("HealthCheck() error = %v, want ErrNotConnected", err)
	}

	// Writes after close are dropped without panicking.
	client.WriteDirectiveMetric("TurnOff", "success", "Lamp1", time.Millisecond)
	client.Flush()
}

func TestClose_Nil(t *testing.T) {
	var client influxdb.Client
	if err := client.Close(); err != nil {
		t.Errorf("Close() on zero client error = %v", err)
	}
}
