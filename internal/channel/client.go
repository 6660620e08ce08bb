package channel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// maxResponseSize bounds how much of a response body is read (4 MB).
const maxResponseSize = 4 << 20

// Config holds the settings for a channel API client.
type Config struct {
	// URL is the API base, e.g. "http://aurora.local:5000/api/v2".
	URL string

	// Timeout applies to each request. Zero means no timeout.
	Timeout time.Duration

	// HTTPClient overrides the default client (used by tests).
	HTTPClient *http.Client
}

// Client talks to the remote device channel service over HTTP/JSON.
//
// Every call is a single blocking round-trip; there is no retry.
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
type Client struct {
	url        string
	httpClient *http.Client
}

// New creates a channel API client.
//
// Parameters:
//   - cfg: Base URL and per-request timeout
//
// Returns:
//   - *Client: Client ready for use (no connection is made)
//   - error: ErrInvalidConfig if the URL is not absolute
func New(cfg Config) (*Client, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: base url %q must be absolute", ErrInvalidConfig, cfg.URL)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		url:        strings.TrimRight(cfg.URL, "/"),
		httpClient: httpClient,
	}, nil
}

// ListChannels returns the channels known to the service (GET /channels).
func (c *Client) ListChannels(ctx context.Context) ([]Channel, error) {
	var channels []Channel
	if err := c.do(ctx, http.MethodGet, "/channels", nil, &channels); err != nil {
		return nil, fmt.Errorf("listing channels: %w", err)
	}
	return channels, nil
}

// ListPresets returns the active presets in service order (GET /presets).
func (c *Client) ListPresets(ctx context.Context) ([]Preset, error) {
	var presets []Preset
	if err := c.do(ctx, http.MethodGet, "/presets", nil, &presets); err != nil {
		return nil, fmt.Errorf("listing presets: %w", err)
	}
	return presets, nil
}

// CreatePreset creates and activates a preset (POST /presets).
func (c *Client) CreatePreset(ctx context.Context, preset Preset) error {
	body, err := json.Marshal(preset)
	if err != nil {
		return fmt.Errorf("encoding preset: %w", err)
	}
	if err := c.do(ctx, http.MethodPost, "/presets", body, nil); err != nil {
		return fmt.Errorf("creating preset %q: %w", preset.Name, err)
	}
	return nil
}

// DeletePreset deactivates a preset (DELETE /presets/{id}).
func (c *Client) DeletePreset(ctx context.Context, id PresetID) error {
	path := "/presets/" + url.PathEscape(string(id))
	if err := c.do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("deleting preset %s: %w", id, err)
	}
	return nil
}

// HealthCheck verifies the service answers GET /channels.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//
// Returns:
//   - error: nil if healthy, error describing the issue otherwise
func (c *Client) HealthCheck(ctx context.Context) error {
	if err := c.do(ctx, http.MethodGet, "/channels", nil, nil); err != nil {
		return fmt.Errorf("channel api health check: %w", err)
	}
	return nil
}

// do executes one request. When out is non-nil the response body is decoded
// into it; otherwise the body is drained and discarded.
func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrUnreachable, method, path, err)
	}
	defer resp.Body.Close()

	limited := io.LimitReader(resp.Body, maxResponseSize)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(limited, 256))
		return fmt.Errorf("%w: %s %s: HTTP %d %s", ErrUnexpectedStatus, method, path,
			resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	if out == nil {
		// Drain body to allow connection reuse
		_, _ = io.Copy(io.Discard, limited)
		return nil
	}

	if err := json.NewDecoder(limited).Decode(out); err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrDecodeFailed, method, path, err)
	}
	return nil
}
