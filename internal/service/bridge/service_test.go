package bridge

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hearyou/bracelet-bridge/internal/bracelet"
	"github.com/hearyou/bracelet-bridge/internal/config"
	"github.com/hearyou/bracelet-bridge/internal/domain/event"
	"github.com/hearyou/bracelet-bridge/internal/domain/settings"
	"github.com/hearyou/bracelet-bridge/internal/repository/store"
)

// fakePort is an in-memory device: it records outbound frames and
// serves scripted inbound lines with a short read timeout.
type fakePort struct {
	mu     sync.Mutex
	frames []string
	lines  chan string
	closed int
}

func newFakePort() *fakePort {
	return &fakePort{lines: make(chan string, 8)}
}

func (p *fakePort) Send(_ context.Context, cmd bracelet.Command) error {
	payload, err := json.Marshal(cmd)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.frames = append(p.frames, string(payload))

	return nil
}

func (p *fakePort) ReadLine() string {
	select {
	case line := <-p.lines:
		return line
	case <-time.After(5 * time.Millisecond):
		return ""
	}
}

func (p *fakePort) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closed++

	return nil
}

func (p *fakePort) sentFrames() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]string(nil), p.frames...)
}

// testConfig returns a validated configuration with fast intervals.
func testConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := config.Default()
	cfg.Store = config.StoreMemory
	cfg.VibrationPulse = 10 * time.Millisecond
	cfg.SettingsPollInterval = 10 * time.Millisecond
	cfg.EventPollInterval = 10 * time.Millisecond
	require.NoError(t, config.Validate(cfg))

	return cfg
}

// TestServiceEndToEnd drives the full bridge over an in-memory store:
// an inserted event actuates the device, a button line creates an
// event, and shutdown closes the port after the loops stop.
func TestServiceEndToEnd(t *testing.T) {
	t.Parallel()

	m := store.NewMemory()
	m.SetGlobalSettings(&settings.Document{
		Colors:    map[string]string{"door_knocking": "purple"},
		Vibration: true,
	})

	port := newFakePort()
	svc := newService(testConfig(t), m, port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)

	go func() {
		done <- svc.run(ctx)
	}()

	// Give the watchers a moment to establish their subscriptions.
	time.Sleep(50 * time.Millisecond)

	// An inserted event reaches the device with the configured color.
	_, err := m.InsertEvent(ctx, &event.Record{Title: "door knocking"})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		for _, frame := range port.sentFrames() {
			if frame == `{"color":"purple","vibrate":255}` {
				return true
			}
		}

		return false
	}, time.Second, 10*time.Millisecond)

	// The deferred stop frame follows.
	require.Eventually(t, func() bool {
		frames := port.sentFrames()

		return len(frames) > 0 && frames[len(frames)-1] == `{"vibrate":0}`
	}, time.Second, 10*time.Millisecond)

	// A button press on the serial line lands in the store. The watcher
	// actuates it in turn, like any other inserted event.
	port.lines <- "BTN:DOWN"

	require.Eventually(t, func() bool {
		records, recErr := m.EventsSince(context.Background(), time.Time{})
		require.NoError(t, recErr)

		return len(records) == 2 && records[len(records)-1].Title == "door knocking"
	}, time.Second, 10*time.Millisecond)

	// Shutdown waits for the loops and closes the port.
	cancel()

	select {
	case err = <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("service did not stop")
	}

	port.mu.Lock()
	closed := port.closed
	port.mu.Unlock()
	require.Equal(t, 1, closed)
}

// TestServiceStartsWithDefaultsWhenStoreEmpty verifies the first event
// is handled with built-in defaults when nothing was ever configured.
func TestServiceStartsWithDefaultsWhenStoreEmpty(t *testing.T) {
	t.Parallel()

	m := store.NewMemory()
	port := newFakePort()
	svc := newService(testConfig(t), m, port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)

	go func() {
		done <- svc.run(ctx)
	}()

	time.Sleep(50 * time.Millisecond)

	_, err := m.InsertEvent(ctx, &event.Record{Title: "baby crying"})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		for _, frame := range port.sentFrames() {
			if frame == `{"color":"blue","vibrate":0}` {
				return true
			}
		}

		return false
	}, time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}
