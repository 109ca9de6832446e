package store

import (
	"context"
	"errors"
	"time"

	"github.com/hearyou/bracelet-bridge/internal/domain/event"
	"github.com/hearyou/bracelet-bridge/internal/domain/settings"
)

// Store is the event/settings persistence surface the bridge consumes.
// The push subscriptions may fail to establish; callers are expected to
// fall back to GlobalSettings/EventsSince polling when they do.
type Store interface {
	// GlobalSettings returns the current global settings document.
	// A missing document yields an empty document, not an error.
	GlobalSettings(ctx context.Context) (*settings.Document, error)

	// WatchSettings opens a push subscription firing on any mutation of
	// the global settings document.
	WatchSettings(ctx context.Context) (SettingsSubscription, error)

	// WatchEventInserts opens a push subscription yielding newly
	// inserted event records.
	WatchEventInserts(ctx context.Context) (EventSubscription, error)

	// EventsSince returns records created strictly after ts, ascending
	// by creation time.
	EventsSince(ctx context.Context, ts time.Time) ([]*event.Record, error)

	// InsertEvent stores a new event record and returns it with its
	// assigned identifier and creation timestamp.
	InsertEvent(ctx context.Context, rec *event.Record) (*event.Record, error)
}

// SettingsSubscription is a push stream of settings mutations.
// Next blocks until a mutation arrives, the stream fails, or the
// context is canceled; it returns false in the latter two cases.
type SettingsSubscription interface {
	Next(ctx context.Context) bool
	Err() error
	Close(ctx context.Context) error
}

// EventSubscription is a push stream of inserted event records.
// After Next reports true, Record returns the inserted record.
type EventSubscription interface {
	Next(ctx context.Context) bool
	Record() *event.Record
	Err() error
	Close(ctx context.Context) error
}

// ErrChangeStreamsUnsupported is returned by stores that cannot provide
// push subscriptions, forcing callers onto the polling path.
var ErrChangeStreamsUnsupported = errors.New("change streams are not supported")
