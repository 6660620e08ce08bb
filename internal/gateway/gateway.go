package gateway

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/barrymcandrews/aurora-home-skill/internal/channel"
	"github.com/barrymcandrews/aurora-home-skill/internal/colorspace"
)

// ChannelAPI is the subset of the channel service the gateway uses.
// *channel.Client satisfies it.
type ChannelAPI interface {
	ListChannels(ctx context.Context) ([]channel.Channel, error)
	ListPresets(ctx context.Context) ([]channel.Preset, error)
	CreatePreset(ctx context.Context, preset channel.Preset) error
	DeletePreset(ctx context.Context, id channel.PresetID) error
}

// Chooser returns an index in [0, n). n is always positive.
type Chooser func(n int) int

// Logger defines the logging interface used by the gateway.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Options configures a Gateway.
type Options struct {
	// Channels is the remote service. Required.
	Channels ChannelAPI

	// Catalog supplies capabilities and power-on presets. Required.
	Catalog *Catalog

	// Converter translates between HSV and channel levels.
	Converter colorspace.Converter

	// Chooser picks the power-on preset. Defaults to math/rand/v2.IntN.
	Chooser Chooser

	// Logger defaults to a no-op logger.
	Logger Logger
}

// Gateway is the only component that talks to the channel service. It owns
// the endpoint cache and the state cache.
//
// The endpoint cache is filled on first discovery and kept for the life of
// the gateway. The state cache is rebuilt from scratch by RefreshStateCache;
// PowerOf and ColorOf read it without refreshing.
//
// Thread Safety: All methods are safe for concurrent use.
type Gateway struct {
	channels  ChannelAPI
	catalog   *Catalog
	converter colorspace.Converter
	choose    Chooser
	logger    Logger

	mu          sync.RWMutex
	endpoints   []Endpoint
	state       map[string]channel.Preset
	lastRefresh time.Time
	refreshes   uint64
	mutations   uint64
}

// New creates a gateway. No remote calls are made.
func New(opts Options) *Gateway {
	g := &Gateway{
		channels:  opts.Channels,
		catalog:   opts.Catalog,
		converter: opts.Converter,
		choose:    opts.Chooser,
		logger:    opts.Logger,
		state:     make(map[string]channel.Preset),
	}
	if g.catalog == nil {
		g.catalog = &Catalog{}
	}
	if g.choose == nil {
		g.choose = rand.Intn
	}
	if g.logger == nil {
		g.logger = noopLogger{}
	}
	return g
}

// ListEndpoints returns the discovered endpoints.
//
// When the cache is empty the channel list is fetched and one endpoint is
// built per distinct friendly name. Later calls return the cached list
// without contacting the service.
func (g *Gateway) ListEndpoints(ctx context.Context) ([]Endpoint, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if len(g.endpoints) == 0 {
		channels, err := g.channels.ListChannels(ctx)
		if err != nil {
			return nil, fmt.Errorf("discovering endpoints: %w", err)
		}

		for _, ch := range channels {
			if g.hasEndpointLocked(ch.Device) {
				continue
			}
			g.endpoints = append(g.endpoints, newEndpoint(ch.Device, g.catalog.Capabilities))
		}
		g.logger.Info("endpoints discovered", "count", len(g.endpoints))
	}

	out := make([]Endpoint, len(g.endpoints))
	copy(out, g.endpoints)
	return out, nil
}

func (g *Gateway) hasEndpointLocked(friendlyName string) bool {
	for _, ep := range g.endpoints {
		if ep.FriendlyName == friendlyName {
			return true
		}
	}
	return false
}

// ConnectivityStatus reports OK when endpointID is a discovered endpoint.
// Any failure to reach the service is reported as UNREACHABLE.
func (g *Gateway) ConnectivityStatus(ctx context.Context, endpointID string) Connectivity {
	endpoints, err := g.ListEndpoints(ctx)
	if err != nil {
		g.logger.Warn("connectivity check failed",
			"endpoint", endpointID,
			"error", err,
		)
		return ConnectivityUnreachable
	}

	for _, ep := range endpoints {
		if ep.EndpointID == endpointID {
			return ConnectivityOK
		}
	}
	return ConnectivityUnreachable
}

// RefreshStateCache rebuilds the state cache from the active presets. When a
// device appears in several presets the first one listed wins.
func (g *Gateway) RefreshStateCache(ctx context.Context) error {
	presets, err := g.channels.ListPresets(ctx)
	if err != nil {
		return fmt.Errorf("refreshing state: %w", err)
	}

	state := make(map[string]channel.Preset)
	for _, p := range presets {
		for _, device := range p.Devices {
			if _, exists := state[device]; !exists {
				state[device] = p
			}
		}
	}

	g.mu.Lock()
	g.state = state
	g.lastRefresh = time.Now()
	g.refreshes++
	g.mu.Unlock()

	g.logger.Debug("state cache refreshed", "presets", len(presets), "devices", len(state))
	return nil
}

// SetPower turns an endpoint on or off.
//
// ON activates a randomly chosen catalog preset restricted to the endpoint.
// OFF refreshes the state cache and deletes the endpoint's active preset; an
// endpoint with no active preset is left alone.
func (g *Gateway) SetPower(ctx context.Context, endpointID string, power PowerState) error {
	switch power {
	case PowerOn:
		presets := g.catalog.ColorPresets
		if len(presets) == 0 {
			return ErrNoColorPresets
		}
		preset := presets[g.choose(len(presets))].ForDevice(endpointID)
		if err := g.channels.CreatePreset(ctx, preset); err != nil {
			return fmt.Errorf("turning on %s: %w", endpointID, err)
		}
		g.recordMutation()
		g.logger.Info("endpoint turned on", "endpoint", endpointID, "preset", preset.Name)
		return nil

	case PowerOff:
		if err := g.RefreshStateCache(ctx); err != nil {
			return fmt.Errorf("turning off %s: %w", endpointID, err)
		}

		g.mu.RLock()
		active, ok := g.state[endpointID]
		g.mu.RUnlock()
		if !ok {
			g.logger.Debug("endpoint already off", "endpoint", endpointID)
			return nil
		}

		if err := g.channels.DeletePreset(ctx, active.ID); err != nil {
			return fmt.Errorf("turning off %s: %w", endpointID, err)
		}
		g.recordMutation()
		g.logger.Info("endpoint turned off", "endpoint", endpointID, "preset_id", string(active.ID))
		return nil

	default:
		return fmt.Errorf("gateway: unknown power state %q", power)
	}
}

// SetColor activates a new levels preset for the endpoint. Existing presets
// are never modified or removed.
func (g *Gateway) SetColor(ctx context.Context, endpointID string, color colorspace.HSV) error {
	levels := g.converter.ToLevels(color)

	preset := channel.Preset{
		Name:    PresetName(levels),
		Devices: []string{endpointID},
		Payload: channel.NewLevelsPayload(levels.Red, levels.Green, levels.Blue),
	}
	if err := g.channels.CreatePreset(ctx, preset); err != nil {
		return fmt.Errorf("setting color of %s: %w", endpointID, err)
	}

	g.recordMutation()
	g.logger.Info("endpoint color set",
		"endpoint", endpointID,
		"red", levels.Red,
		"green", levels.Green,
		"blue", levels.Blue,
	)
	return nil
}

// PresetName is the name given to presets created by SetColor.
func PresetName(l colorspace.Levels) string {
	return "Alexa-" + strconv.Itoa(l.Red) + strconv.Itoa(l.Green) + strconv.Itoa(l.Blue)
}

// ColorOf returns the endpoint's color from the state cache. An endpoint
// with a non-levels preset reports white at full brightness; an endpoint
// with no preset reports all zeros.
func (g *Gateway) ColorOf(endpointID string) colorspace.HSV {
	g.mu.RLock()
	preset, ok := g.state[endpointID]
	g.mu.RUnlock()

	if !ok {
		return colorspace.HSV{}
	}

	levels, ok := preset.Levels()
	if !ok {
		return colorspace.HSV{Hue: 0, Saturation: 0, Brightness: 1}
	}
	return g.converter.FromLevels(colorspace.Levels{
		Red:   levels.Red,
		Green: levels.Green,
		Blue:  levels.Blue,
	})
}

// PowerOf reports ON when the state cache holds a preset for the endpoint.
func (g *Gateway) PowerOf(endpointID string) PowerState {
	g.mu.RLock()
	_, ok := g.state[endpointID]
	g.mu.RUnlock()

	if ok {
		return PowerOn
	}
	return PowerOff
}

// Stats returns cache statistics.
func (g *Gateway) Stats() Stats {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return Stats{
		Endpoints:     len(g.endpoints),
		ActiveDevices: len(g.state),
		LastRefresh:   g.lastRefresh,
		Refreshes:     g.refreshes,
		Mutations:     g.mutations,
	}
}

func (g *Gateway) recordMutation() {
	g.mu.Lock()
	g.mutations++
	g.mu.Unlock()
}
