package services

import (
	"context"
	"sync/atomic"

	"github.com/YoshikiFujii/FLcasher/internal/broadcast"
	"github.com/YoshikiFujii/FLcasher/internal/metrics"
	"github.com/YoshikiFujii/FLcasher/internal/model"
	"github.com/YoshikiFujii/FLcasher/internal/repository"
)

// OrderService owns the order status state machine and the per-session
// display-id sequence. The counter lives in the running host process; it is
// reset by closing the register, not by restarts of individual clients.
type OrderService struct {
	Repo    *repository.OrderRepository
	Hub     *broadcast.Hub
	Metrics *metrics.Registry

	displayID atomic.Int64
}

func NewOrderService(r *repository.OrderRepository, hub *broadcast.Hub, m *metrics.Registry) *OrderService {
	return &OrderService{Repo: r, Hub: hub, Metrics: m}
}

// Submit assigns the next display id, persists the order header and its
// items atomically, and notifies kitchen subscribers after the commit has
// durably returned. Returns the database id and the assigned display id.
// An empty items slice is accepted; validating it is the caller's job.
func (s *OrderService) Submit(ctx context.Context, o *model.Order, items []model.OrderItem) (int64, int, error) {
	displayID := int(s.displayID.Add(1))
	o.DisplayID = displayID
	if o.Status == "" {
		o.Status = model.StatusPending
	}

	id, err := s.Repo.InsertOrderWithItems(ctx, o, items)
	if err != nil {
		return 0, 0, err
	}

	s.Metrics.OrdersSubmitted.Inc()
	s.notify(broadcast.EventNewOrder, id)
	return id, displayID, nil
}

// Complete sets the order to COMPLETED. Completing an already-completed
// order is a no-op success.
func (s *OrderService) Complete(ctx context.Context, id int64) error {
	if err := s.Repo.UpdateStatus(ctx, id, model.StatusCompleted); err != nil {
		return err
	}
	s.notify(broadcast.EventOrderCompleted, id)
	return nil
}

// Revert sets the order back to PENDING. Idempotent like Complete.
func (s *OrderService) Revert(ctx context.Context, id int64) error {
	if err := s.Repo.UpdateStatus(ctx, id, model.StatusPending); err != nil {
		return err
	}
	s.notify(broadcast.EventOrderReverted, id)
	return nil
}

// ResetSequence zeroes the display-id counter. Display ids already assigned
// to existing orders keep their values; there is no renumbering.
func (s *OrderService) ResetSequence() {
	s.displayID.Store(0)
}

// TotalSince sums totalAmount over orders created at or after since,
// excluding CANCELLED ones.
func (s *OrderService) TotalSince(ctx context.Context, since int64) (int64, error) {
	return s.Repo.SumSince(ctx, since)
}

func (s *OrderService) PendingOrders(ctx context.Context) ([]model.OrderWithItems, error) {
	return s.Repo.ListByStatus(ctx, model.StatusPending)
}

func (s *OrderService) History(ctx context.Context) ([]model.OrderWithItems, error) {
	return s.Repo.ListAll(ctx)
}

func (s *OrderService) OrdersInRange(ctx context.Context, start, end int64) ([]model.OrderWithItems, error) {
	return s.Repo.ListRange(ctx, start, end)
}

func (s *OrderService) DeleteOrder(ctx context.Context, id int64) error {
	return s.Repo.Delete(ctx, id)
}

func (s *OrderService) notify(eventType string, orderID int64) {
	s.Hub.Broadcast(broadcast.Event{Type: eventType, OrderID: orderID})
	s.Metrics.BroadcastSent.Inc()
}
