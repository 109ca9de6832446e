package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every tunable of the bracelet bridge.
type Config struct {
	// SerialPort is the serial device the bracelet is attached to.
	SerialPort string `yaml:"serial_port"`
	// SerialBaud is the line speed of the serial link.
	SerialBaud int `yaml:"serial_baud"`
	// SerialSettle is how long to wait after opening the port before
	// flushing boot noise the device may have emitted.
	SerialSettle time.Duration `yaml:"serial_settle"`
	// SerialReadTimeout bounds every inbound read so loops can observe
	// cancellation.
	SerialReadTimeout time.Duration `yaml:"serial_read_timeout"`
	// VibrationPulse is how long the motor runs before the automatic stop.
	VibrationPulse time.Duration `yaml:"vibration_pulse"`
	// SettingsPollInterval is the reload period when the settings change
	// stream is unavailable.
	SettingsPollInterval time.Duration `yaml:"settings_poll_interval"`
	// EventPollInterval is the query period when the event change stream
	// is unavailable.
	EventPollInterval time.Duration `yaml:"event_poll_interval"`
	// Store selects the store driver: "mongo" or "memory".
	Store string `yaml:"store"`
	// MongoURI is the connection string of the event/settings store.
	MongoURI string `yaml:"mongo_uri"`
	// MongoDatabase is the database holding both collections.
	MongoDatabase string `yaml:"mongo_database"`
	// EventsCollection is the collection new events are read from and
	// button presses are written to.
	EventsCollection string `yaml:"events_collection"`
	// SettingsCollection is the collection holding the global settings document.
	SettingsCollection string `yaml:"settings_collection"`
	// LogLevel is the minimum level emitted by the logger.
	LogLevel string `yaml:"log_level"`
}

// Store driver names accepted in Config.Store.
const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

const (
	// DefaultConfigFilename is the default filename for bridge settings.
	DefaultConfigFilename = "bracelet-bridge.yaml"

	// DefaultSerialPort matches the port the bracelet enumerates as on
	// the reference installation.
	DefaultSerialPort = "COM3"

	// DefaultSerialBaud is the line speed the bracelet firmware uses.
	DefaultSerialBaud = 9600

	// DefaultSerialSettle gives the device time to finish booting after
	// the port is opened.
	DefaultSerialSettle = 2 * time.Second

	// DefaultSerialReadTimeout bounds inbound serial reads.
	DefaultSerialReadTimeout = time.Second

	// DefaultVibrationPulse is the motor run time per actuation.
	DefaultVibrationPulse = 800 * time.Millisecond

	// DefaultSettingsPollInterval is the settings reload period in polling mode.
	DefaultSettingsPollInterval = 5 * time.Second

	// DefaultEventPollInterval is the event query period in polling mode.
	DefaultEventPollInterval = time.Second

	// DefaultMongoURI points at a local unauthenticated deployment.
	DefaultMongoURI = "mongodb://localhost:27017"

	// DefaultMongoDatabase is the database name of the reference installation.
	DefaultMongoDatabase = "hearyou"

	// DefaultEventsCollection holds event records.
	DefaultEventsCollection = "events"

	// DefaultSettingsCollection holds the single global settings document.
	DefaultSettingsCollection = "settings"

	// DefaultLogLevel is used when no level is configured.
	DefaultLogLevel = "info"
)

// Environment variables recognized by the bridge. They override values
// from the configuration file so a deployment can be steered without one.
const (
	EnvSerialPort         = "BRACELET_COM"
	EnvSerialBaud         = "BRACELET_BAUD"
	EnvVibrationMs        = "BRACELET_VIB_MS"
	EnvMongoURI           = "MONGO_URI"
	EnvMongoDatabase      = "MONGO_DB"
	EnvEventsCollection   = "MONGO_EVENTS_COLLECTION"
	EnvSettingsCollection = "MONGO_SETTINGS_COLLECTION"
)

// errUnknownStore is returned when Config.Store names an unsupported driver.
var errUnknownStore = errors.New(`store driver must be "mongo" or "memory"`)

// Default returns a configuration filled with every default value.
// The bridge is expected to run unconfigured in development.
func Default() *Config {
	return &Config{
		SerialPort:           DefaultSerialPort,
		SerialBaud:           DefaultSerialBaud,
		SerialSettle:         DefaultSerialSettle,
		SerialReadTimeout:    DefaultSerialReadTimeout,
		VibrationPulse:       DefaultVibrationPulse,
		SettingsPollInterval: DefaultSettingsPollInterval,
		EventPollInterval:    DefaultEventPollInterval,
		Store:                StoreMongo,
		MongoURI:             DefaultMongoURI,
		MongoDatabase:        DefaultMongoDatabase,
		EventsCollection:     DefaultEventsCollection,
		SettingsCollection:   DefaultSettingsCollection,
		LogLevel:             DefaultLogLevel,
	}
}

// Load reads configuration from the provided path, fills defaults,
// applies environment overrides and validates the result.
// A missing file is not an error: the defaults already describe a
// runnable development setup.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	cfg := Default()

	contents, err := os.ReadFile(filepath.Clean(path))
	switch {
	case err == nil:
		if err = yaml.Unmarshal(contents, cfg); err != nil {
			return nil, fmt.Errorf("unmarshal settings: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
		// Run on defaults.
	default:
		return nil, fmt.Errorf("read settings: %w", err)
	}

	applyEnvironment(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the provided configuration and fills defaults for
// unset or non-positive values.
func Validate(cfg *Config) error {
	if cfg.SerialPort == "" {
		cfg.SerialPort = DefaultSerialPort
	}

	if cfg.SerialBaud <= 0 {
		cfg.SerialBaud = DefaultSerialBaud
	}

	if cfg.SerialSettle < 0 {
		cfg.SerialSettle = DefaultSerialSettle
	}

	if cfg.SerialReadTimeout <= 0 {
		cfg.SerialReadTimeout = DefaultSerialReadTimeout
	}

	if cfg.VibrationPulse <= 0 {
		cfg.VibrationPulse = DefaultVibrationPulse
	}

	if cfg.SettingsPollInterval <= 0 {
		cfg.SettingsPollInterval = DefaultSettingsPollInterval
	}

	if cfg.EventPollInterval <= 0 {
		cfg.EventPollInterval = DefaultEventPollInterval
	}

	if cfg.Store == "" {
		cfg.Store = StoreMongo
	}

	if cfg.Store != StoreMongo && cfg.Store != StoreMemory {
		return fmt.Errorf("%w, got %q", errUnknownStore, cfg.Store)
	}

	if cfg.MongoURI == "" {
		cfg.MongoURI = DefaultMongoURI
	}

	if cfg.MongoDatabase == "" {
		cfg.MongoDatabase = DefaultMongoDatabase
	}

	if cfg.EventsCollection == "" {
		cfg.EventsCollection = DefaultEventsCollection
	}

	if cfg.SettingsCollection == "" {
		cfg.SettingsCollection = DefaultSettingsCollection
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}

	return nil
}

// applyEnvironment overlays recognized environment variables onto cfg.
// Malformed numeric values are ignored rather than failing startup.
func applyEnvironment(cfg *Config) {
	if v := os.Getenv(EnvSerialPort); v != "" {
		cfg.SerialPort = v
	}

	if v := os.Getenv(EnvSerialBaud); v != "" {
		if baud, err := strconv.Atoi(v); err == nil && baud > 0 {
			cfg.SerialBaud = baud
		}
	}

	if v := os.Getenv(EnvVibrationMs); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			cfg.VibrationPulse = time.Duration(ms) * time.Millisecond
		}
	}

	if v := os.Getenv(EnvMongoURI); v != "" {
		cfg.MongoURI = v
	}

	if v := os.Getenv(EnvMongoDatabase); v != "" {
		cfg.MongoDatabase = v
	}

	if v := os.Getenv(EnvEventsCollection); v != "" {
		cfg.EventsCollection = v
	}

	if v := os.Getenv(EnvSettingsCollection); v != "" {
		cfg.SettingsCollection = v
	}
}
