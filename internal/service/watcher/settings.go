package watcher

import (
	"context"
	"errors"
	"time"

	"github.com/hearyou/bracelet-bridge/internal/logger"
	"github.com/hearyou/bracelet-bridge/internal/repository/store"
	"github.com/hearyou/bracelet-bridge/internal/service/cache"
)

// errStreamEnded marks a push subscription that stopped yielding
// without a store error; treated like any other stream failure.
var errStreamEnded = errors.New("change stream ended")

// Settings watches the global settings document and keeps the cache
// fresh. It tries the push subscription once; if the stream cannot be
// established, or later fails, it falls back to fixed-interval polling
// for the remainder of the process lifetime. There is no re-promotion
// to push mode: settings mutations are rare enough that polling
// overhead is negligible.
type Settings struct {
	// store provides the push subscription.
	store store.Store
	// cache is reloaded on every observed mutation.
	cache *cache.Cache
	// interval is the polling period in fallback mode.
	interval time.Duration
}

// NewSettings creates the settings watcher.
func NewSettings(st store.Store, settingsCache *cache.Cache, interval time.Duration) *Settings {
	return &Settings{
		store:    st,
		cache:    settingsCache,
		interval: interval,
	}
}

// Run blocks until the context is canceled.
func (w *Settings) Run(ctx context.Context) {
	err := w.stream(ctx)
	if err == nil || ctx.Err() != nil {
		return
	}

	logger.WarnKV(ctx, "Settings change stream unavailable, polling instead",
		"error", err,
		"interval", w.interval.String(),
	)

	w.poll(ctx)
}

// stream consumes the push subscription, reloading the cache on every
// notification. It returns nil only when the context is canceled.
func (w *Settings) stream(ctx context.Context) error {
	sub, err := w.store.WatchSettings(ctx)
	if err != nil {
		return err
	}

	// Close with a fresh context so the stream resource is released
	// even when ctx is already canceled.
	defer func() {
		_ = sub.Close(context.WithoutCancel(ctx))
	}()

	for sub.Next(ctx) {
		if err = w.cache.Reload(ctx); err != nil {
			logger.ErrorKV(ctx, "Settings reload failed", "error", err)
		}
	}

	if ctx.Err() != nil {
		return nil
	}

	if err = sub.Err(); err != nil {
		return err
	}

	return errStreamEnded
}

// poll reloads the cache unconditionally every interval. Reload is
// idempotent, so reloading without a mutation is safe, just wasteful.
func (w *Settings) poll(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.cache.Reload(ctx); err != nil {
				logger.ErrorKV(ctx, "Settings reload failed", "error", err)
			}
		}
	}
}
