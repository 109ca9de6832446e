package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hearyou/bracelet-bridge/internal/domain/event"
	"github.com/hearyou/bracelet-bridge/internal/domain/settings"
)

// subscriptionBuffer bounds per-subscriber notification queues. A
// subscriber that falls this far behind starts dropping notifications;
// the polling fallback still catches up on events.
const subscriptionBuffer = 16

// MemoryOption configures the in-memory store.
type MemoryOption func(*Memory)

// WithoutChangeStreams makes both Watch methods fail with
// ErrChangeStreamsUnsupported, forcing consumers onto the polling path.
func WithoutChangeStreams() MemoryOption {
	return func(m *Memory) {
		m.streamingDisabled = true
	}
}

// Memory is an in-process Store used by tests and by the "memory"
// store driver, which lets the bridge run against the physical device
// without a database deployment.
type Memory struct {
	// mu guards every field below.
	mu sync.Mutex
	// streamingDisabled forces the polling path when set.
	streamingDisabled bool
	// doc is the current global settings document, nil when never set.
	doc *settings.Document
	// events holds every inserted record in insertion order.
	events []*event.Record
	// settingsSubs and eventSubs hold live subscriber queues by id.
	settingsSubs map[int]chan struct{}
	eventSubs    map[int]chan *event.Record
	// subSeq issues subscriber ids.
	subSeq int
}

// NewMemory creates an empty in-memory store.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		settingsSubs: map[int]chan struct{}{},
		eventSubs:    map[int]chan *event.Record{},
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// GlobalSettings returns the current settings document, empty when never set.
func (m *Memory) GlobalSettings(_ context.Context) (*settings.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.doc == nil {
		return &settings.Document{}, nil
	}

	return cloneDocument(m.doc), nil
}

// SetGlobalSettings replaces the settings document and notifies
// settings subscribers.
func (m *Memory) SetGlobalSettings(doc *settings.Document) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.doc = cloneDocument(doc)

	for _, ch := range m.settingsSubs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// WatchSettings opens a push subscription over settings mutations.
func (m *Memory) WatchSettings(_ context.Context) (SettingsSubscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.streamingDisabled {
		return nil, ErrChangeStreamsUnsupported
	}

	id := m.subSeq
	m.subSeq++

	ch := make(chan struct{}, subscriptionBuffer)
	m.settingsSubs[id] = ch

	return &memorySettingsSubscription{
		ch: ch,
		unregister: func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			delete(m.settingsSubs, id)
		},
	}, nil
}

// WatchEventInserts opens a push subscription over inserted events.
func (m *Memory) WatchEventInserts(_ context.Context) (EventSubscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.streamingDisabled {
		return nil, ErrChangeStreamsUnsupported
	}

	id := m.subSeq
	m.subSeq++

	ch := make(chan *event.Record, subscriptionBuffer)
	m.eventSubs[id] = ch

	return &memoryEventSubscription{
		ch: ch,
		unregister: func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			delete(m.eventSubs, id)
		},
	}, nil
}

// EventsSince returns records created strictly after ts, ascending by
// creation time.
func (m *Memory) EventsSince(_ context.Context, ts time.Time) ([]*event.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var records []*event.Record

	for _, rec := range m.events {
		if rec.CreatedAt.After(ts) {
			records = append(records, rec.Clone())
		}
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})

	return records, nil
}

// InsertEvent stores a new record, assigning an ID and filling a zero
// creation timestamp, and notifies event subscribers.
func (m *Memory) InsertEvent(_ context.Context, rec *event.Record) (*event.Record, error) {
	inserted := rec.Clone()
	if inserted.ID == "" {
		inserted.ID = uuid.NewString()
	}

	if inserted.CreatedAt.IsZero() {
		inserted.CreatedAt = time.Now().UTC()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.events = append(m.events, inserted.Clone())

	for _, ch := range m.eventSubs {
		select {
		case ch <- inserted.Clone():
		default:
		}
	}

	return inserted, nil
}

// cloneDocument deep-copies a settings document.
func cloneDocument(doc *settings.Document) *settings.Document {
	if doc == nil {
		return nil
	}

	cloned := &settings.Document{
		Vibration:  doc.Vibration,
		QuietHours: doc.QuietHours.Clone(),
	}

	if doc.Colors != nil {
		cloned.Colors = make(map[string]string, len(doc.Colors))
		for k, v := range doc.Colors {
			cloned.Colors[k] = v
		}
	}

	return cloned
}

// memorySettingsSubscription delivers settings notifications from a
// buffered channel.
type memorySettingsSubscription struct {
	ch         chan struct{}
	unregister func()
	closeOnce  sync.Once
}

func (s *memorySettingsSubscription) Next(ctx context.Context) bool {
	select {
	case <-s.ch:
		return true
	case <-ctx.Done():
		return false
	}
}

func (s *memorySettingsSubscription) Err() error { return nil }

func (s *memorySettingsSubscription) Close(context.Context) error {
	s.closeOnce.Do(s.unregister)

	return nil
}

// memoryEventSubscription delivers inserted records from a buffered channel.
type memoryEventSubscription struct {
	ch         chan *event.Record
	current    *event.Record
	unregister func()
	closeOnce  sync.Once
}

func (s *memoryEventSubscription) Next(ctx context.Context) bool {
	select {
	case rec := <-s.ch:
		s.current = rec

		return true
	case <-ctx.Done():
		return false
	}
}

func (s *memoryEventSubscription) Record() *event.Record { return s.current }

func (s *memoryEventSubscription) Err() error { return nil }

func (s *memoryEventSubscription) Close(context.Context) error {
	s.closeOnce.Do(s.unregister)

	return nil
}
