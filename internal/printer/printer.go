// Package printer delivers formatted receipt payloads to a short-range
// radio printer. The link is flaky (pairing drift, device sleep), so
// delivery retries a bounded number of times with a fixed backoff; a
// genuinely unreachable printer is the caller's problem to queue.
package printer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"time"
)

// ErrDeviceNotFound means the target address does not resolve to a paired
// device. Not retried: waiting will not make an unknown device appear.
var ErrDeviceNotFound = errors.New("printer: device not found")

// Dialer resolves a device address and opens a connection to it. The
// default speaks TCP for network-attached ESC/POS printers; platform
// RFCOMM dialers plug in here without touching the retry logic.
type Dialer func(ctx context.Context, address string) (net.Conn, error)

// NetDialer returns a Dialer that connects over TCP.
func NetDialer(timeout time.Duration) Dialer {
	return func(ctx context.Context, address string) (net.Conn, error) {
		d := net.Dialer{Timeout: timeout}
		return d.DialContext(ctx, "tcp", address)
	}
}

type Printer struct {
	Dial         Dialer
	MaxAttempts  int
	Backoff      time.Duration
	WriteTimeout time.Duration
}

const (
	defaultMaxAttempts  = 3
	defaultBackoff      = time.Second
	defaultWriteTimeout = 5 * time.Second
)

func New(dial Dialer) *Printer {
	return &Printer{
		Dial:         dial,
		MaxAttempts:  defaultMaxAttempts,
		Backoff:      defaultBackoff,
		WriteTimeout: defaultWriteTimeout,
	}
}

// Deliver connects to address and transmits payload. On a transmission or
// connection error it releases the connection and retries after the fixed
// backoff, up to MaxAttempts total attempts. The first success returns
// immediately. Deliver does not queue on failure; that is the caller's
// responsibility.
func (p *Printer) Deliver(ctx context.Context, address, payload string) error {
	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		err := p.attempt(ctx, address, payload)
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrDeviceNotFound) {
			return err
		}
		lastErr = err
		slog.Warn("print attempt failed", "address", address, "attempt", attempt, "err", err)

		if attempt < p.MaxAttempts {
			select {
			case <-time.After(p.Backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return fmt.Errorf("printer: delivery to %s failed after %d attempts: %w", address, p.MaxAttempts, lastErr)
}

func (p *Printer) attempt(ctx context.Context, address, payload string) error {
	conn, err := p.Dial(ctx, address)
	if err != nil {
		if conn != nil {
			conn.Close()
		}
		return err
	}
	defer conn.Close()

	if p.WriteTimeout > 0 {
		if err := conn.SetWriteDeadline(time.Now().Add(p.WriteTimeout)); err != nil {
			return err
		}
	}
	if _, err := io.WriteString(conn, payload); err != nil {
		return err
	}
	return nil
}
