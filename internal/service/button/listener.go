package button

import (
	"context"
	"strings"
	"time"

	"github.com/hearyou/bracelet-bridge/internal/domain/event"
	"github.com/hearyou/bracelet-bridge/internal/logger"
)

// LineReader yields inbound serial lines. An empty string means no
// complete line arrived within the read timeout.
type LineReader interface {
	ReadLine() string
}

// EventInserter is the store write surface the listener uses.
type EventInserter interface {
	InsertEvent(ctx context.Context, rec *event.Record) (*event.Record, error)
}

const (
	// buttonDownPrefix is the only inbound token the bridge recognizes.
	buttonDownPrefix = "BTN:DOWN"

	// buttonEventTitle is the event created for each physical press.
	buttonEventTitle = "door knocking"
)

// Listener ingests physical button presses from the bracelet back into
// the event store.
type Listener struct {
	// reader is the inbound side of the serial transport.
	reader LineReader
	// store receives the created events.
	store EventInserter
	// now is the clock used to stamp created events.
	now func() time.Time
}

// New creates a listener reading from the given transport.
func New(reader LineReader, store EventInserter) *Listener {
	return &Listener{
		reader: reader,
		store:  store,
		now:    time.Now,
	}
}

// Run reads inbound lines until the context is canceled. Timeouts and
// unrecognized lines are skipped; a line starting with BTN:DOWN
// creates one "door knocking" event. Insert failures are logged and
// swallowed so a flaky store can never crash the listener: at most a
// notification is lost.
func (l *Listener) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		line := l.reader.ReadLine()
		if line == "" {
			continue
		}

		if !strings.HasPrefix(line, buttonDownPrefix) {
			continue
		}

		l.ingestPress(ctx)
	}
}

// ingestPress inserts one button event.
func (l *Listener) ingestPress(ctx context.Context) {
	rec := &event.Record{
		Title:       buttonEventTitle,
		IsImportant: false,
		EventAt:     l.now().UTC(),
	}

	inserted, err := l.store.InsertEvent(ctx, rec)
	if err != nil {
		logger.WarnKV(ctx, "Button event insert failed", "error", err)

		return
	}

	logger.InfoKV(ctx, "Button press ingested", "event_id", inserted.ID)
}
