package bridge

import (
	"context"
	"fmt"
	"time"

	"github.com/hearyou/bracelet-bridge/internal/bracelet"
	"github.com/hearyou/bracelet-bridge/internal/config"
	"github.com/hearyou/bracelet-bridge/internal/logger"
	"github.com/hearyou/bracelet-bridge/internal/repository/store"
)

// Options controls the bridge process and configuration.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// SerialPort provides an optional serial device override.
	SerialPort string
	// SerialBaud provides an optional baud rate override.
	SerialBaud int
	// LogLevel provides an optional log level override.
	LogLevel string
}

// storeCloseTimeout bounds the store disconnect during shutdown.
const storeCloseTimeout = 5 * time.Second

// Run starts the bridge and blocks until the context is canceled.
// A serial connection failure is fatal: nothing downstream can function
// without the actuator link. Every other fault degrades gracefully.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "bracelet-bridge")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	applyOverrides(cfg, opts)

	if level, ok := logger.ParseLogLevel(cfg.LogLevel); ok {
		logger.SetLevel(level)
	}

	st, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	port, err := bracelet.Open(ctx, &bracelet.Options{
		Port:        cfg.SerialPort,
		Baud:        cfg.SerialBaud,
		Settle:      cfg.SerialSettle,
		ReadTimeout: cfg.SerialReadTimeout,
	})
	if err != nil {
		return fmt.Errorf("connect bracelet: %w", err)
	}

	// Close is idempotent; this covers error paths, run closes it again
	// at the end of the orderly shutdown.
	defer func() {
		_ = port.Close()
	}()

	return newService(cfg, st, port).run(ctx)
}

// applyOverrides lets command-line flags win over file and environment values.
func applyOverrides(cfg *config.Config, opts *Options) {
	if opts.SerialPort != "" {
		cfg.SerialPort = opts.SerialPort
	}

	if opts.SerialBaud > 0 {
		cfg.SerialBaud = opts.SerialBaud
	}

	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}
}

// openStore builds the configured store driver and returns it with its
// shutdown hook.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, func(), error) {
	if cfg.Store == config.StoreMemory {
		logger.Warn(ctx, "Using in-memory store; events and settings will not persist")

		return store.NewMemory(), func() {}, nil
	}

	m, err := store.NewMongo(ctx, &store.MongoOptions{
		URI:                cfg.MongoURI,
		Database:           cfg.MongoDatabase,
		EventsCollection:   cfg.EventsCollection,
		SettingsCollection: cfg.SettingsCollection,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}

	closeStore := func() {
		closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), storeCloseTimeout)
		defer cancel()

		if err := m.Close(closeCtx); err != nil {
			logger.WarnKV(ctx, "Store disconnect failed", "error", err)
		}
	}

	return m, closeStore, nil
}
