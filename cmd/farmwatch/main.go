// Command farmwatch signs in as a farmer, shows the dashboard and keeps
// orders moving: every poll it fulfills the orders whose delivery time has
// elapsed and logs orders that arrived since the last poll.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cropcart/internal/analytics"
	"cropcart/internal/client"
	"cropcart/internal/config"
	"cropcart/internal/dashboard"
	"cropcart/internal/kv"
	"cropcart/internal/model"
	"cropcart/internal/orders"
	"cropcart/internal/session"
	"cropcart/internal/worker"
)

func main() {
	cfg, err := config.NewFarmwatch()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: config.SlogLevel(cfg.LogLevel)})))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var store kv.Store = kv.NewMemoryStore()
	if cfg.RedisAddr != "" {
		rs := kv.NewRedisStore(kv.RedisConfig{Addr: cfg.RedisAddr})
		defer rs.Close()
		store = rs
	}
	sessions := session.NewManager(store, cfg.Email, 24*time.Hour)
	api := client.New(cfg.APIURL)

	if err := signIn(ctx, api, sessions, cfg); err != nil {
		slog.Error("sign in failed", "error", err)
		os.Exit(1)
	}

	if cfg.ReportPath != "" {
		if err := writeReport(ctx, api, cfg.ReportPath); err != nil {
			slog.Error("report export failed", "error", err)
			os.Exit(1)
		}
		slog.Info("report written", "path", cfg.ReportPath)
		return
	}

	d := dashboard.NewLoader(api).Load(ctx, analytics.ViewMonthly)
	logDashboard(d)

	w := worker.NewFulfillmentWorker(api, cfg.PollInterval)
	w.OnNewOrders = func(list []orders.FarmerOrder) {
		for _, o := range list {
			slog.Info("new order", "order", o.ID, "buyer", o.Buyer.Name, "base_price", o.BasePrice)
		}
	}
	w.Start(ctx)

	<-ctx.Done()
	w.Stop()
	if err := sessions.Clear(context.Background()); err != nil {
		slog.Warn("clear session", "error", err)
	}
	slog.Info("farmwatch stopped")
}

// signIn reuses a stored farmer session when there is one.
func signIn(ctx context.Context, api *client.Client, sessions *session.Manager, cfg *config.FarmwatchConfig) error {
	s, err := sessions.RequireRole(ctx, model.RoleFarmer)
	switch {
	case err == nil:
		api.SetToken(s.Token)
		_, err = api.FarmerCrops(ctx)
		if err == nil {
			return nil
		}
		if !errors.Is(err, client.ErrUnauthorized) {
			return err
		}
		slog.Info("stored session expired, signing in again")
	case !errors.Is(err, session.ErrNoSession):
		return err
	}

	res, err := api.Login(ctx, cfg.Email, cfg.Password)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if res.User.Role != model.RoleFarmer {
		return fmt.Errorf("%s is not a farmer account", cfg.Email)
	}
	return sessions.Set(ctx, session.Session{
		Token:       res.Token,
		User:        res.User,
		MemberSince: res.MemberSince,
		SignedInAt:  time.Now(),
	})
}

func writeReport(ctx context.Context, api *client.Client, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := api.Report(ctx, analytics.ViewMonthly, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func logDashboard(d *dashboard.Dashboard) {
	if d.CropsErr == nil {
		slog.Info("crops loaded", "count", len(d.Crops))
	}
	if d.OrdersErr == nil {
		pending := 0
		for _, o := range d.Orders {
			if o.Status == orders.StatusPending {
				pending++
			}
		}
		slog.Info("orders loaded", "count", len(d.Orders), "pending", pending)
	}
	if d.Analytics != nil {
		a := d.Analytics
		best := "none"
		if a.MostSoldCrop != nil {
			best = a.MostSoldCrop.Name
		}
		slog.Info("analytics loaded",
			"month_earnings", a.CurrentMonthEarnings,
			"earnings_growth", a.Series.EarningsGrowth,
			"lifetime_earnings", a.LifetimeEarnings,
			"best_seller", best,
		)
	}
}
