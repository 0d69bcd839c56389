package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/YoshikiFujii/FLcasher/internal/metrics"
	"github.com/YoshikiFujii/FLcasher/internal/model"
	"github.com/YoshikiFujii/FLcasher/internal/printer"
	"github.com/YoshikiFujii/FLcasher/internal/repository"
)

// PrintService wraps the delivery subsystem with the durable offline queue:
// a payload that exhausts its retries is persisted as a PrintJob so the
// cashier is never blocked from completing the sale.
type PrintService struct {
	Printer *printer.Printer
	Jobs    *repository.PrintJobRepository
	Metrics *metrics.Registry
}

func NewPrintService(p *printer.Printer, jobs *repository.PrintJobRepository, m *metrics.Registry) *PrintService {
	return &PrintService{Printer: p, Jobs: jobs, Metrics: m}
}

// Print attempts delivery and queues the payload on exhausted retries.
// The returned job is non-nil only when the payload was queued.
func (s *PrintService) Print(ctx context.Context, deviceAddress, payload string) (*model.PrintJob, error) {
	s.Metrics.PrintAttempts.Inc()
	err := s.Printer.Deliver(ctx, deviceAddress, payload)
	if err == nil {
		return nil, nil
	}
	s.Metrics.PrintFailures.Inc()

	job := &model.PrintJob{
		ID:            uuid.NewString(),
		Timestamp:     time.Now().UnixMilli(),
		DeviceAddress: deviceAddress,
		Payload:       payload,
	}
	if qerr := s.Jobs.Add(ctx, job); qerr != nil {
		slog.Error("failed to queue print job", "address", deviceAddress, "err", qerr)
		return nil, qerr
	}
	s.Metrics.PrintJobsQueued.Inc()
	slog.Warn("print delivery exhausted retries, job queued", "address", deviceAddress, "job", job.ID)
	return job, err
}

// Retry replays a queued job. On success the job leaves the queue; on
// failure it stays for another manual retry.
func (s *PrintService) Retry(ctx context.Context, job *model.PrintJob) error {
	s.Metrics.PrintAttempts.Inc()
	if err := s.Printer.Deliver(ctx, job.DeviceAddress, job.Payload); err != nil {
		s.Metrics.PrintFailures.Inc()
		return err
	}
	return s.Jobs.Remove(ctx, job.ID)
}

// Queue lists the pending offline jobs, oldest first.
func (s *PrintService) Queue(ctx context.Context) ([]model.PrintJob, error) {
	return s.Jobs.List(ctx)
}

// Discard drops a queued job without printing it.
func (s *PrintService) Discard(ctx context.Context, id string) error {
	return s.Jobs.Remove(ctx, id)
}
