package services

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/YoshikiFujii/FLcasher/internal/metrics"
	"github.com/YoshikiFujii/FLcasher/internal/printer"
	"github.com/YoshikiFujii/FLcasher/internal/repository"
)

type discardConn struct{ net.Conn }

func (d discardConn) Write(b []byte) (int, error)      { return len(b), nil }
func (d discardConn) Close() error                     { return nil }
func (d discardConn) SetWriteDeadline(time.Time) error { return nil }

func unreachableDialer(ctx context.Context, address string) (net.Conn, error) {
	return nil, errors.New("printer powered off")
}

func workingDialer(ctx context.Context, address string) (net.Conn, error) {
	return discardConn{}, nil
}

func newPrintService(t *testing.T, dial printer.Dialer) *PrintService {
	t.Helper()
	p := printer.New(dial)
	p.Backoff = time.Millisecond
	jobs := repository.NewPrintJobRepository(newTestDB(t))
	return NewPrintService(p, jobs, metrics.NewRegistry())
}

func TestPrintSuccessDoesNotQueue(t *testing.T) {
	svc := newPrintService(t, workingDialer)
	ctx := context.Background()

	job, err := svc.Print(ctx, "printer:9100", "receipt")
	require.NoError(t, err)
	require.Nil(t, job)

	queued, err := svc.Queue(ctx)
	require.NoError(t, err)
	require.Empty(t, queued)
}

func TestPrintExhaustedRetriesQueuesJob(t *testing.T) {
	svc := newPrintService(t, unreachableDialer)
	ctx := context.Background()

	job, err := svc.Print(ctx, "AA:BB:CC:DD:EE:FF", `{"total": 700}`)
	require.Error(t, err)
	require.NotNil(t, job)
	require.NotEmpty(t, job.ID)

	queued, err := svc.Queue(ctx)
	require.NoError(t, err)
	require.Len(t, queued, 1)
	require.Equal(t, "AA:BB:CC:DD:EE:FF", queued[0].DeviceAddress)
	require.Equal(t, `{"total": 700}`, queued[0].Payload)
}

func TestRetryRemovesJobOnSuccess(t *testing.T) {
	svc := newPrintService(t, unreachableDialer)
	ctx := context.Background()

	job, err := svc.Print(ctx, "printer:9100", "receipt")
	require.Error(t, err)
	require.NotNil(t, job)

	// printer comes back
	svc.Printer.Dial = workingDialer
	require.NoError(t, svc.Retry(ctx, job))

	queued, err := svc.Queue(ctx)
	require.NoError(t, err)
	require.Empty(t, queued)
}

func TestRetryKeepsJobOnFailure(t *testing.T) {
	svc := newPrintService(t, unreachableDialer)
	ctx := context.Background()

	job, err := svc.Print(ctx, "printer:9100", "receipt")
	require.Error(t, err)
	require.NotNil(t, job)

	require.Error(t, svc.Retry(ctx, job))

	queued, err := svc.Queue(ctx)
	require.NoError(t, err)
	require.Len(t, queued, 1, "failed retry must leave the job queued")
}

func TestDiscardDropsJobWithoutPrinting(t *testing.T) {
	svc := newPrintService(t, unreachableDialer)
	ctx := context.Background()

	job, err := svc.Print(ctx, "printer:9100", "receipt")
	require.Error(t, err)
	require.NotNil(t, job)

	require.NoError(t, svc.Discard(ctx, job.ID))
	queued, err := svc.Queue(ctx)
	require.NoError(t, err)
	require.Empty(t, queued)
}
