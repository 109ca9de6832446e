package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hearyou/bracelet-bridge/internal/domain/event"
	"github.com/hearyou/bracelet-bridge/internal/domain/settings"
	"github.com/hearyou/bracelet-bridge/internal/logger"
	"github.com/hearyou/bracelet-bridge/internal/repository/store"
)

// Cache holds the current settings snapshot. Reload is the single
// writer; readers only ever observe a complete snapshot because the
// swap is a single pointer write under the lock.
type Cache struct {
	// store fetches the settings document on reload.
	store store.Store

	// mu guards snap.
	mu sync.RWMutex
	// snap is the current snapshot, never mutated in place.
	snap *settings.Snapshot

	// now is the clock used for quiet-hours evaluation.
	now func() time.Time
}

// New creates a cache seeded with an empty snapshot, so lookups work
// off the built-in defaults until the first successful reload.
func New(st store.Store) *Cache {
	return &Cache{
		store: st,
		snap:  settings.NewSnapshot(nil),
		now:   time.Now,
	}
}

// Reload fetches the settings document and installs a fresh snapshot.
// On any fetch error the previous snapshot stays untouched and the
// error is returned for the caller to decide on retrying.
func (c *Cache) Reload(ctx context.Context) error {
	doc, err := c.store.GlobalSettings(ctx)
	if err != nil {
		return fmt.Errorf("reload settings: %w", err)
	}

	snap := settings.NewSnapshot(doc)

	c.mu.Lock()
	c.snap = snap
	c.mu.Unlock()

	logger.InfoKV(ctx, "Settings reloaded",
		"colors", snap.Colors,
		"vibration", snap.VibrationEnabled,
		"quiet_hours", snap.Quiet,
	)

	return nil
}

// ColorFor resolves the LED color for an event title via the
// normalized event key, falling back to the built-in default table.
func (c *Cache) ColorFor(title string) string {
	key := event.Key(title)

	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.snap.Color(key)
}

// VibrationIntensity returns the motor intensity for the current
// moment: 0 inside quiet hours, the maximum when vibration is enabled,
// 0 otherwise. Quiet hours is time-varying, so it is evaluated fresh
// against the wall clock on every call.
func (c *Cache) VibrationIntensity() int {
	c.mu.RLock()
	snap := c.snap
	c.mu.RUnlock()

	if settings.IsQuietAt(snap.Quiet, c.now()) {
		return 0
	}

	if snap.VibrationEnabled {
		return settings.MaxIntensity
	}

	return 0
}
