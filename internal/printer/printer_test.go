package printer

import (
	"bytes"
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	buf    bytes.Buffer
	closed bool
	failed bool
}

func (f *fakeConn) Read(b []byte) (int, error) { return 0, errors.New("read not supported") }

func (f *fakeConn) Write(b []byte) (int, error) {
	if f.failed {
		return 0, errors.New("link reset")
	}
	return f.buf.Write(b)
}

func (f *fakeConn) Close() error                       { f.closed = true; return nil }
func (f *fakeConn) LocalAddr() net.Addr                { return &net.TCPAddr{} }
func (f *fakeConn) RemoteAddr() net.Addr               { return &net.TCPAddr{} }
func (f *fakeConn) SetDeadline(t time.Time) error      { return nil }
func (f *fakeConn) SetReadDeadline(t time.Time) error  { return nil }
func (f *fakeConn) SetWriteDeadline(t time.Time) error { return nil }

func fastPrinter(dial Dialer) *Printer {
	p := New(dial)
	p.Backoff = time.Millisecond
	return p
}

func TestDeliverSucceedsFirstAttempt(t *testing.T) {
	conn := &fakeConn{}
	attempts := 0
	p := fastPrinter(func(ctx context.Context, address string) (net.Conn, error) {
		attempts++
		return conn, nil
	})

	err := p.Deliver(context.Background(), "AA:BB:CC:DD:EE:FF", "receipt #1")
	require.NoError(t, err)
	require.Equal(t, 1, attempts)
	require.Equal(t, "receipt #1", conn.buf.String())
	require.True(t, conn.closed)
}

func TestDeliverRetriesThenSucceeds(t *testing.T) {
	attempts := 0
	p := fastPrinter(func(ctx context.Context, address string) (net.Conn, error) {
		attempts++
		if attempts < 2 {
			return nil, errors.New("connection refused")
		}
		return &fakeConn{}, nil
	})

	err := p.Deliver(context.Background(), "printer:9100", "receipt")
	require.NoError(t, err)
	require.Equal(t, 2, attempts)
}

func TestDeliverFailsAfterExactlyMaxAttempts(t *testing.T) {
	attempts := 0
	p := fastPrinter(func(ctx context.Context, address string) (net.Conn, error) {
		attempts++
		return nil, errors.New("device sleeping")
	})

	err := p.Deliver(context.Background(), "printer:9100", "receipt")
	require.Error(t, err)
	require.Equal(t, p.MaxAttempts, attempts)
}

func TestDeliverWriteErrorReleasesConnAndRetries(t *testing.T) {
	var conns []*fakeConn
	p := fastPrinter(func(ctx context.Context, address string) (net.Conn, error) {
		c := &fakeConn{failed: true}
		conns = append(conns, c)
		return c, nil
	})

	err := p.Deliver(context.Background(), "printer:9100", "receipt")
	require.Error(t, err)
	require.Len(t, conns, p.MaxAttempts)
	for _, c := range conns {
		require.True(t, c.closed, "connection must be released between attempts")
	}
}

func TestDeliverDeviceNotFoundDoesNotRetry(t *testing.T) {
	attempts := 0
	p := fastPrinter(func(ctx context.Context, address string) (net.Conn, error) {
		attempts++
		return nil, ErrDeviceNotFound
	})

	err := p.Deliver(context.Background(), "unknown", "receipt")
	require.ErrorIs(t, err, ErrDeviceNotFound)
	require.Equal(t, 1, attempts)
}

func TestDeliverHonorsCancellationDuringBackoff(t *testing.T) {
	p := New(func(ctx context.Context, address string) (net.Conn, error) {
		return nil, errors.New("down")
	})
	p.Backoff = time.Minute

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Deliver(ctx, "printer:9100", "receipt") }()
	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("delivery did not abandon backoff on cancellation")
	}
}
