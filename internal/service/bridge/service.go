package bridge

import (
	"context"
	"fmt"
	"sync"

	"github.com/hearyou/bracelet-bridge/internal/bracelet"
	"github.com/hearyou/bracelet-bridge/internal/config"
	"github.com/hearyou/bracelet-bridge/internal/logger"
	"github.com/hearyou/bracelet-bridge/internal/repository/store"
	"github.com/hearyou/bracelet-bridge/internal/service/actuator"
	"github.com/hearyou/bracelet-bridge/internal/service/button"
	"github.com/hearyou/bracelet-bridge/internal/service/cache"
	"github.com/hearyou/bracelet-bridge/internal/service/watcher"
)

// devicePort is the slice of the serial transport the supervisor wires
// into the other components.
type devicePort interface {
	Send(ctx context.Context, cmd bracelet.Command) error
	ReadLine() string
	Close() error
}

// service wires the cache, watchers, actuator and button listener over
// one store and one serial port.
type service struct {
	// cfg is the validated bridge configuration.
	cfg *config.Config
	// store is the event/settings store.
	store store.Store
	// port is the serial link to the bracelet.
	port devicePort
}

// newService assembles the supervisor.
func newService(cfg *config.Config, st store.Store, port devicePort) *service {
	return &service{
		cfg:   cfg,
		store: st,
		port:  port,
	}
}

// run loads the first settings snapshot, launches the concurrent units
// and blocks until the context is canceled. On shutdown it waits for
// every loop to observe the stop signal, then closes the serial port.
func (s *service) run(ctx context.Context) error {
	settingsCache := cache.New(s.store)

	// Load the first snapshot before any watcher starts, so the very
	// first event is handled with real configuration rather than only
	// the built-in defaults.
	if err := settingsCache.Reload(ctx); err != nil {
		logger.WarnKV(ctx, "Initial settings load failed, starting with defaults", "error", err)
	}

	handler := actuator.New(settingsCache, s.port, s.cfg.VibrationPulse)
	settingsWatcher := watcher.NewSettings(s.store, settingsCache, s.cfg.SettingsPollInterval)
	eventWatcher := watcher.NewEvents(s.store, handler, s.cfg.EventPollInterval)
	listener := button.New(s.port, s.store)

	var wg sync.WaitGroup

	wg.Add(3)

	go func() {
		defer wg.Done()
		settingsWatcher.Run(logger.WithName(ctx, "settings-watcher"))
	}()

	go func() {
		defer wg.Done()
		eventWatcher.Run(logger.WithName(ctx, "event-watcher"))
	}()

	go func() {
		defer wg.Done()
		listener.Run(logger.WithName(ctx, "button"))
	}()

	logger.InfoKV(ctx, "Bracelet bridge running",
		"serial_port", s.cfg.SerialPort,
		"store", s.cfg.Store,
	)

	<-ctx.Done()

	logger.Info(ctx, "Stop signal received, waiting for loops")
	wg.Wait()

	if err := s.port.Close(); err != nil {
		return fmt.Errorf("close serial port: %w", err)
	}

	logger.Info(ctx, "Bracelet bridge stopped")

	return nil
}
