package watcher

import (
	"context"
	"time"

	"github.com/hearyou/bracelet-bridge/internal/domain/event"
	"github.com/hearyou/bracelet-bridge/internal/logger"
	"github.com/hearyou/bracelet-bridge/internal/repository/store"
)

// Handler consumes inserted event records in the order the watcher
// observes them.
type Handler interface {
	Handle(ctx context.Context, rec *event.Record)
}

// Events watches the event collection for inserts and hands each new
// record to the handler. Fallback policy matches the settings watcher:
// one attempt at the push subscription, then permanent polling.
type Events struct {
	// store provides the push subscription and the poll query.
	store store.Store
	// handler receives every observed record exactly once.
	handler Handler
	// interval is the polling period in fallback mode.
	interval time.Duration
	// now supplies the polling cursor origin at fallback time.
	now func() time.Time
}

// NewEvents creates the event watcher.
func NewEvents(st store.Store, handler Handler, interval time.Duration) *Events {
	return &Events{
		store:    st,
		handler:  handler,
		interval: interval,
		now:      time.Now,
	}
}

// Run blocks until the context is canceled.
func (w *Events) Run(ctx context.Context) {
	err := w.stream(ctx)
	if err == nil || ctx.Err() != nil {
		return
	}

	logger.WarnKV(ctx, "Event change stream unavailable, polling instead",
		"error", err,
		"interval", w.interval.String(),
	)

	w.poll(ctx)
}

// stream consumes insert notifications. It returns nil only when the
// context is canceled.
func (w *Events) stream(ctx context.Context) error {
	sub, err := w.store.WatchEventInserts(ctx)
	if err != nil {
		return err
	}

	defer func() {
		_ = sub.Close(context.WithoutCancel(ctx))
	}()

	for sub.Next(ctx) {
		w.handler.Handle(ctx, sub.Record())
	}

	if ctx.Err() != nil {
		return nil
	}

	if err = sub.Err(); err != nil {
		return err
	}

	return errStreamEnded
}

// poll queries for records created after the cursor, delivers them in
// ascending creation order and advances the cursor. The cursor starts
// at the fallback moment, never rewinds, and an empty batch leaves it
// untouched, so no record is delivered twice and none is skipped.
func (w *Events) poll(ctx context.Context) {
	cursor := w.now().UTC()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			records, err := w.store.EventsSince(ctx, cursor)
			if err != nil {
				logger.ErrorKV(ctx, "Event poll failed", "error", err)

				continue
			}

			for _, rec := range records {
				if rec.CreatedAt.After(cursor) {
					cursor = rec.CreatedAt
				}

				w.handler.Handle(ctx, rec)
			}
		}
	}
}
