package actuator

import (
	"context"
	"time"

	"github.com/hearyou/bracelet-bridge/internal/bracelet"
	"github.com/hearyou/bracelet-bridge/internal/domain/event"
	"github.com/hearyou/bracelet-bridge/internal/logger"
	"github.com/hearyou/bracelet-bridge/internal/service/cache"
)

// Sender delivers commands to the bracelet.
type Sender interface {
	Send(ctx context.Context, cmd bracelet.Command) error
}

// Handler turns one inserted event into physical actuation: a combined
// color+vibration frame, followed by a deferred vibration stop.
type Handler struct {
	// cache resolves color and vibration intensity per event.
	cache *cache.Cache
	// sender is the serial transport.
	sender Sender
	// pulse is how long the motor runs before the automatic stop.
	pulse time.Duration
}

// New creates a handler actuating through the given sender.
func New(settingsCache *cache.Cache, sender Sender, pulse time.Duration) *Handler {
	return &Handler{
		cache:  settingsCache,
		sender: sender,
		pulse:  pulse,
	}
}

// Handle actuates a single event record. Every inserted record
// produces exactly one actuation; deduplication and cooldown are the
// producers' responsibility.
//
// When the motor is started, a fire-and-forget goroutine stops it
// after the pulse duration. That goroutine is neither tracked nor
// canceled on shutdown: at worst the device receives a stray stop
// frame after the bridge exited, which is harmless.
func (h *Handler) Handle(ctx context.Context, rec *event.Record) {
	color := h.cache.ColorFor(rec.Title)
	intensity := h.cache.VibrationIntensity()

	logger.InfoKV(ctx, "Actuating event",
		"title", rec.Title,
		"color", color,
		"vibrate", intensity,
	)

	if err := h.sender.Send(ctx, bracelet.Actuate(color, intensity)); err != nil {
		logger.WarnKV(ctx, "Actuation send failed", "error", err)
	}

	if intensity > 0 {
		go h.stopVibrationLater(ctx)
	}
}

// stopVibrationLater sends the best-effort motor stop after the pulse
// duration. Failures are logged and swallowed.
func (h *Handler) stopVibrationLater(ctx context.Context) {
	time.Sleep(h.pulse)

	if err := h.sender.Send(ctx, bracelet.StopVibration()); err != nil {
		logger.DebugKV(ctx, "Vibration stop failed", "error", err)
	}
}
