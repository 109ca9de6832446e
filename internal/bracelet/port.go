package bracelet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	goserial "go.bug.st/serial"

	"github.com/hearyou/bracelet-bridge/internal/logger"
)

// conn is the slice of go.bug.st/serial.Port the transport relies on,
// narrowed so tests can substitute a scripted connection.
type conn interface {
	io.ReadWriteCloser

	SetReadTimeout(t time.Duration) error
	ResetInputBuffer() error
}

// Options configures the serial link to the bracelet.
type Options struct {
	// Port is the serial device name, e.g. "COM3" or "/dev/ttyUSB0".
	Port string
	// Baud is the line speed.
	Baud int
	// Settle is how long to wait after opening before flushing boot noise.
	Settle time.Duration
	// ReadTimeout bounds each inbound read so callers can observe cancellation.
	ReadTimeout time.Duration
}

// Port owns the physical connection to the bracelet. Outbound frames
// are serialized through a single writer lock so concurrent senders
// never interleave partial frames; inbound reads are expected from a
// single reader goroutine.
type Port struct {
	// conn is the underlying serial connection.
	conn conn

	// writeMu serializes outbound frames.
	writeMu sync.Mutex

	// pending holds inbound bytes read ahead of the next newline.
	// Owned exclusively by the reading goroutine.
	pending []byte

	// closeOnce makes Close idempotent across error paths and shutdown.
	closeOnce sync.Once
	closeErr  error
}

// readChunkSize is the per-read buffer for inbound data.
const readChunkSize = 256

// Open connects to the bracelet. After the port opens, it waits the
// settle period and discards any buffered input, since the device may
// emit boot noise while resetting. A failure here is fatal to the
// bridge: nothing downstream works without the actuator link.
func Open(ctx context.Context, opts *Options) (*Port, error) {
	mode := &goserial.Mode{BaudRate: opts.Baud}

	c, err := goserial.Open(opts.Port, mode)
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", opts.Port, err)
	}

	if err = c.SetReadTimeout(opts.ReadTimeout); err != nil {
		_ = c.Close()

		return nil, fmt.Errorf("set read timeout: %w", err)
	}

	// Let the device finish booting before talking to it.
	select {
	case <-time.After(opts.Settle):
	case <-ctx.Done():
		_ = c.Close()

		return nil, ctx.Err()
	}

	if err = c.ResetInputBuffer(); err != nil {
		_ = c.Close()

		return nil, fmt.Errorf("flush input buffer: %w", err)
	}

	return newPort(c), nil
}

// newPort wraps an established connection.
func newPort(c conn) *Port {
	return &Port{conn: c}
}

// Send frames the command as one line of JSON and writes it atomically
// with respect to other senders. Every send is logged with its literal
// payload so a misbehaving device is observable from the log alone.
func (p *Port) Send(ctx context.Context, cmd Command) error {
	payload, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("encode command: %w", err)
	}

	logger.InfoKV(ctx, "Bracelet send", "payload", string(payload))

	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	if _, err = p.conn.Write(append(payload, '\n')); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}

	return nil
}

// ReadLine returns the next inbound line, stripped of its terminator
// and surrounding whitespace. When no complete line arrives within the
// read timeout, or the read fails, it returns "" so the caller can
// retry indefinitely. A partial line stays buffered for the next call.
func (p *Port) ReadLine() string {
	for {
		if i := bytes.IndexByte(p.pending, '\n'); i >= 0 {
			line := strings.TrimSpace(string(p.pending[:i]))
			p.pending = p.pending[i+1:]

			return line
		}

		chunk := make([]byte, readChunkSize)

		n, err := p.conn.Read(chunk)
		if err != nil || n == 0 {
			// Error or read timeout.
			return ""
		}

		p.pending = append(p.pending, chunk[:n]...)
	}
}

// Close releases the underlying handle. It is safe to call multiple
// times, including from error paths and the final supervisor shutdown.
func (p *Port) Close() error {
	p.closeOnce.Do(func() {
		p.closeErr = p.conn.Close()
	})

	return p.closeErr
}
