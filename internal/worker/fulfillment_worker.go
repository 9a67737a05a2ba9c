package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"cropcart/internal/client"
	"cropcart/internal/orders"
)

const DefaultInterval = 60 * time.Second

// OrderClient is implemented by *client.Client.
type OrderClient interface {
	FarmerOrders(ctx context.Context) ([]orders.FarmerOrder, error)
	Fulfill(ctx context.Context, orderID string) error
}

// FulfillmentWorker polls the farmer's orders and asks the server to fulfill
// every order whose delivery time has elapsed. At most one poll loop runs.
type FulfillmentWorker struct {
	api      OrderClient
	interval time.Duration
	now      func() time.Time

	// OnNewOrders, if set, receives orders not seen by an earlier poll.
	OnNewOrders func([]orders.FarmerOrder)

	mu        sync.Mutex
	cancel    context.CancelFunc
	done      chan struct{}
	seen      map[string]bool
	baselined bool
}

func NewFulfillmentWorker(api OrderClient, interval time.Duration) *FulfillmentWorker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &FulfillmentWorker{
		api:      api,
		interval: interval,
		now:      time.Now,
		seen:     map[string]bool{},
	}
}

// Start begins polling in the background. It polls once immediately. Calling
// Start on a running worker does nothing.
func (w *FulfillmentWorker) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.done = make(chan struct{})
	go w.run(ctx, w.done)
}

// Stop cancels the poll loop and waits for it to exit.
func (w *FulfillmentWorker) Stop() {
	w.mu.Lock()
	cancel, done := w.cancel, w.done
	w.cancel, w.done = nil, nil
	w.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (w *FulfillmentWorker) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cancel != nil
}

func (w *FulfillmentWorker) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	slog.Info("starting fulfillment worker", "interval", w.interval)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		if err := w.Poll(ctx); err != nil && ctx.Err() == nil {
			slog.Error("fulfillment poll failed", "error", err)
		}

		select {
		case <-ctx.Done():
			slog.Info("fulfillment worker stopped")
			return
		case <-ticker.C:
		}
	}
}

// Poll runs one pass: fetch orders, report new ones, fulfill the due ones.
// Individual fulfill failures are logged and retried on the next pass.
func (w *FulfillmentWorker) Poll(ctx context.Context) error {
	list, err := w.api.FarmerOrders(ctx)
	if err != nil {
		return fmt.Errorf("list farmer orders: %w", err)
	}

	w.reportNew(list)

	now := w.now()
	for _, o := range list {
		if !orders.NeedsFulfillment(o.Order(), now) {
			continue
		}
		err := w.api.Fulfill(ctx, o.ID)
		switch {
		case err == nil:
			slog.Info("order fulfilled", "order", o.ID)
		case errors.Is(err, client.ErrAlreadyFulfilled):
			slog.Debug("order already fulfilled", "order", o.ID)
		default:
			slog.Error("failed to fulfill order", "order", o.ID, "error", err)
		}
	}
	return nil
}

func (w *FulfillmentWorker) reportNew(list []orders.FarmerOrder) {
	w.mu.Lock()
	first := !w.baselined
	w.baselined = true
	var fresh []orders.FarmerOrder
	for _, o := range list {
		if !w.seen[o.ID] {
			w.seen[o.ID] = true
			fresh = append(fresh, o)
		}
	}
	w.mu.Unlock()

	// The first successful poll is the baseline, even when it is empty.
	if first || len(fresh) == 0 || w.OnNewOrders == nil {
		return
	}
	w.OnNewOrders(fresh)
}
