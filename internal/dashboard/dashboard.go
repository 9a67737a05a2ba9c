// Package dashboard loads the three sections of the farmer dashboard.
package dashboard

import (
	"context"
	"log/slog"
	"sync"

	"cropcart/internal/analytics"
	"cropcart/internal/client"
	"cropcart/internal/model"
	"cropcart/internal/orders"
)

// Source is implemented by *client.Client.
type Source interface {
	FarmerCrops(ctx context.Context) ([]model.Crop, error)
	FarmerOrders(ctx context.Context) ([]orders.FarmerOrder, error)
	Analytics(ctx context.Context, mode analytics.ViewMode) (*client.Analytics, error)
}

// Dashboard holds whatever loaded. A section that failed stays nil and its
// error is kept next to it; the other sections are unaffected.
type Dashboard struct {
	Crops        []model.Crop
	CropsErr     error
	Orders       []orders.FarmerOrder
	OrdersErr    error
	Analytics    *client.Analytics
	AnalyticsErr error
}

// Loaded reports whether every section loaded.
func (d *Dashboard) Loaded() bool {
	return d.CropsErr == nil && d.OrdersErr == nil && d.AnalyticsErr == nil
}

type Loader struct {
	src Source
}

func NewLoader(src Source) *Loader {
	return &Loader{src: src}
}

// Load fetches crops, orders and analytics concurrently and waits for all of
// them. Cancelling ctx abandons the in-flight requests.
func (l *Loader) Load(ctx context.Context, mode analytics.ViewMode) *Dashboard {
	var (
		d  Dashboard
		wg sync.WaitGroup
	)
	wg.Add(3)

	go func() {
		defer wg.Done()
		crops, err := l.src.FarmerCrops(ctx)
		if err != nil {
			slog.Warn("load crops failed", "error", err)
			d.CropsErr = err
			return
		}
		d.Crops = crops
	}()

	go func() {
		defer wg.Done()
		list, err := l.src.FarmerOrders(ctx)
		if err != nil {
			slog.Warn("load orders failed", "error", err)
			d.OrdersErr = err
			return
		}
		d.Orders = list
	}()

	go func() {
		defer wg.Done()
		stats, err := l.src.Analytics(ctx, mode)
		if err != nil {
			slog.Warn("load analytics failed", "error", err)
			d.AnalyticsErr = err
			return
		}
		d.Analytics = stats
	}()

	wg.Wait()
	return &d
}
