// Aurora home skill: a smart-home directive endpoint for LED strips driven
// by the Aurora channel service.
//
// The process accepts voice-assistant directives over HTTP, translates them
// into preset operations on the channel API and answers with validated
// response envelopes. Directive outcomes are optionally mirrored to MQTT
// and InfluxDB.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/barrymcandrews/aurora-home-skill/internal/api"
	"github.com/barrymcandrews/aurora-home-skill/internal/channel"
	"github.com/barrymcandrews/aurora-home-skill/internal/colorspace"
	"github.com/barrymcandrews/aurora-home-skill/internal/directive"
	"github.com/barrymcandrews/aurora-home-skill/internal/gateway"
	"github.com/barrymcandrews/aurora-home-skill/internal/infrastructure/config"
	"github.com/barrymcandrews/aurora-home-skill/internal/infrastructure/influxdb"
	"github.com/barrymcandrews/aurora-home-skill/internal/infrastructure/logging"
	"github.com/barrymcandrews/aurora-home-skill/internal/infrastructure/mqtt"
	"github.com/barrymcandrews/aurora-home-skill/internal/telemetry"
	"github.com/barrymcandrews/aurora-home-skill/internal/validation"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

// startupCheckTimeout bounds the initial channel API check.
const startupCheckTimeout = 5 * time.Second

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run wires every component and blocks until ctx is cancelled.
//
// Returns:
//   - error: nil on clean shutdown, or error describing the startup failure
func run(ctx context.Context) error {
	log := logging.Default()
	log.Info("starting aurora skill",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log = logging.New(cfg.Logging, version)
	log.Info("configuration loaded",
		"path", configPath,
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	catalog, err := gateway.LoadCatalog(cfg.Catalog.CapabilitiesFile, cfg.Catalog.ColorPresetsFile)
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}
	log.Info("catalog loaded", "color_presets", len(catalog.ColorPresets))

	channels, err := channel.New(channel.Config{
		URL:     cfg.ChannelAPI.URL,
		Timeout: cfg.GetChannelTimeout(),
	})
	if err != nil {
		return fmt.Errorf("creating channel api client: %w", err)
	}
	checkChannelAPI(ctx, channels, log)

	converter := colorspace.Converter{Mode: colorspace.Standard}
	if cfg.Color.LegacyConversion {
		converter.Mode = colorspace.Legacy
	}
	log.Info("color conversion selected", "mode", converter.Mode.String())

	gw := gateway.New(gateway.Options{
		Channels:  channels,
		Catalog:   catalog,
		Converter: converter,
		Logger:    log.With("component", "gateway"),
	})

	validator, err := buildValidator(cfg.Validation)
	if err != nil {
		return fmt.Errorf("building response validator: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := telemetry.NewMetrics(registry)
	if err != nil {
		return fmt.Errorf("registering metrics: %w", err)
	}
	observers := telemetry.Multi{metrics}

	// Connect to MQTT broker (optional)
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		mqttClient.SetLogger(log)
		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)
		observers = append(observers, telemetry.NewMQTTPublisher(mqttClient, log))
	} else {
		log.Info("MQTT disabled")
	}

	// Connect to InfluxDB (optional)
	if cfg.InfluxDB.Enabled {
		influxClient, err := influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
		observers = append(observers, telemetry.NewInfluxRecorder(influxClient))
	} else {
		log.Info("InfluxDB disabled")
	}

	router := directive.NewRouter(gw, directive.Options{
		Validator: validator,
		Observer:  observers,
		Logger:    log.With("component", "directive"),
	})

	deps := api.Deps{
		Config:     cfg.API,
		Logger:     log,
		Directives: router,
		Gateway:    gw,
		Channels:   channels,
		Prometheus: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		Version:    version,
	}
	if mqttClient != nil {
		deps.MQTT = mqttClient
	}

	server, err := api.New(deps)
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	log.Info("initialisation complete, waiting for shutdown signal")

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses AURORA_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("AURORA_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// checkChannelAPI checks the channel API once at startup. Failure is only
// logged: the service may come up after the skill does.
func checkChannelAPI(ctx context.Context, channels *channel.Client, log *logging.Logger) {
	ctx, cancel := context.WithTimeout(ctx, startupCheckTimeout)
	defer cancel()

	if err := channels.HealthCheck(ctx); err != nil {
		log.Warn("channel api not reachable at startup", "error", err)
		return
	}
	log.Info("channel api reachable")
}

// buildValidator returns the response validator selected by cfg.
func buildValidator(cfg config.ValidationConfig) (directive.Validator, error) {
	switch {
	case !cfg.Enabled:
		return validation.Disabled{}, nil
	case cfg.SchemaFile != "":
		return validation.NewFromFile(cfg.SchemaFile)
	default:
		return validation.New()
	}
}
