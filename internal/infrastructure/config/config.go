package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the Aurora home skill.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Service    ServiceConfig    `yaml:"service"`
	ChannelAPI ChannelAPIConfig `yaml:"channel_api"`
	Catalog    CatalogConfig    `yaml:"catalog"`
	Color      ColorConfig      `yaml:"color"`
	Validation ValidationConfig `yaml:"validation"`
	API        APIConfig        `yaml:"api"`
	MQTT       MQTTConfig       `yaml:"mqtt"`
	InfluxDB   InfluxDBConfig   `yaml:"influxdb"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ServiceConfig identifies this skill instance.
type ServiceConfig struct {
	Name string `yaml:"name"`
}

// ChannelAPIConfig contains settings for the remote device channel service.
type ChannelAPIConfig struct {
	// URL is the base URL of the channel API, e.g. "http://aurora.local:5000/api/v2".
	URL string `yaml:"url"`

	// Timeout is the per-request timeout in seconds. 0 disables the timeout.
	Timeout int `yaml:"timeout"`
}

// CatalogConfig points at the static files merged into discovery and power-on.
type CatalogConfig struct {
	CapabilitiesFile string `yaml:"capabilities_file"`
	ColorPresetsFile string `yaml:"color_presets_file"`
}

// ColorConfig selects the HSV conversion behaviour.
type ColorConfig struct {
	// LegacyConversion reproduces the channel-swapping conversion of the
	// first deployment. Leave false unless an installed base depends on it.
	LegacyConversion bool `yaml:"legacy_conversion"`
}

// ValidationConfig controls the outbound response schema gate.
type ValidationConfig struct {
	Enabled bool `yaml:"enabled"`

	// SchemaFile overrides the embedded response schema when set.
	SchemaFile string `yaml:"schema_file"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
}

// APITimeoutConfig contains HTTP timeout settings.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: AURORA_SECTION_KEY
// For example: AURORA_CHANNEL_API_URL, AURORA_API_PORT
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Service: ServiceConfig{
			Name: "aurora-skill",
		},
		ChannelAPI: ChannelAPIConfig{
			Timeout: 10,
		},
		Catalog: CatalogConfig{
			CapabilitiesFile: "configs/capabilities.json",
			ColorPresetsFile: "configs/color-presets.json",
		},
		Validation: ValidationConfig{
			Enabled: true,
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 8080,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "aurora-skill",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		InfluxDB: InfluxDBConfig{
			Bucket:        "aurora",
			BatchSize:     100,
			FlushInterval: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: AURORA_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Channel API
	if v := os.Getenv("AURORA_CHANNEL_API_URL"); v != "" {
		cfg.ChannelAPI.URL = v
	}
	if v := os.Getenv("AURORA_CHANNEL_API_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.ChannelAPI.Timeout = n
		}
	}

	// Catalog
	if v := os.Getenv("AURORA_CAPABILITIES_FILE"); v != "" {
		cfg.Catalog.CapabilitiesFile = v
	}
	if v := os.Getenv("AURORA_COLOR_PRESETS_FILE"); v != "" {
		cfg.Catalog.ColorPresetsFile = v
	}

	// API
	if v := os.Getenv("AURORA_API_HOST"); v != "" {
		cfg.API.Host = v
	}
	if v := os.Getenv("AURORA_API_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.API.Port = n
		}
	}

	// MQTT
	if v := os.Getenv("AURORA_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("AURORA_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("AURORA_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// InfluxDB
	if v := os.Getenv("AURORA_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	// Logging
	if v := os.Getenv("AURORA_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// Channel API validation
	if c.ChannelAPI.URL == "" {
		errs = append(errs, "channel_api.url is required (set AURORA_CHANNEL_API_URL environment variable)")
	} else if u, err := url.Parse(c.ChannelAPI.URL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, "channel_api.url must be an absolute URL")
	}
	if c.ChannelAPI.Timeout < 0 {
		errs = append(errs, "channel_api.timeout must not be negative")
	}

	// Catalog validation
	if c.Catalog.CapabilitiesFile == "" {
		errs = append(errs, "catalog.capabilities_file is required")
	}
	if c.Catalog.ColorPresetsFile == "" {
		errs = append(errs, "catalog.color_presets_file is required")
	}

	// API validation
	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	// MQTT validation
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.MQTT.Enabled && c.MQTT.Broker.Host == "" {
		errs = append(errs, "mqtt.broker.host is required when mqtt is enabled")
	}

	// InfluxDB validation
	if c.InfluxDB.Enabled {
		if c.InfluxDB.URL == "" {
			errs = append(errs, "influxdb.url is required when influxdb is enabled")
		}
		if c.InfluxDB.Org == "" || c.InfluxDB.Bucket == "" {
			errs = append(errs, "influxdb.org and influxdb.bucket are required when influxdb is enabled")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetChannelTimeout returns the channel API request timeout as a Duration.
func (c *Config) GetChannelTimeout() time.Duration {
	return time.Duration(c.ChannelAPI.Timeout) * time.Second
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}
