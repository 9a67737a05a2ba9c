package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cropcart/internal/audit"
	"cropcart/internal/cart"
	"cropcart/internal/config"
	"cropcart/internal/database"
	"cropcart/internal/handler"
	"cropcart/internal/identity"
	"cropcart/internal/kv"
	"cropcart/internal/report"
	"cropcart/internal/service"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: config.SlogLevel(cfg.LogLevel)})))

	ctx := context.Background()

	db, err := database.NewDB(ctx, cfg.DatabaseURI)
	if err != nil {
		slog.Error("failed to connect to DB", "error", err)
		os.Exit(1)
	}
	defer database.CloseDB(db)

	if err := database.InitSchema(ctx, db); err != nil {
		slog.Error("failed to init DB schema", "error", err)
		os.Exit(1)
	}

	// Key/value state
	var store kv.Store = kv.NewMemoryStore()
	if cfg.RedisAddr != "" {
		rs := kv.NewRedisStore(kv.RedisConfig{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, PoolSize: 10})
		if err := rs.Ping(ctx); err != nil {
			slog.Error("failed to connect to redis", "addr", cfg.RedisAddr, "error", err)
			os.Exit(1)
		}
		defer rs.Close()
		store = rs
	} else {
		slog.Warn("REDIS_ADDR not set, carts are kept in memory")
	}

	// Audit trail
	var recorder audit.Recorder = audit.Nop{}
	if cfg.MongoURI != "" {
		mr, err := audit.NewMongoRecorder(ctx, audit.MongoConfig{
			URI:        cfg.MongoURI,
			Database:   cfg.MongoDatabase,
			Collection: "order_events",
		})
		if err != nil {
			slog.Error("failed to connect to mongo", "error", err)
			os.Exit(1)
		}
		defer mr.Close(context.Background())
		recorder = mr
	}

	// Federated sign-in
	var verifier identity.Verifier = identity.Disabled{}
	if cfg.FirebaseProjectID != "" {
		fv, err := identity.NewFirebaseVerifier(ctx, identity.FirebaseConfig{
			ProjectID:       cfg.FirebaseProjectID,
			CredentialsFile: cfg.FirebaseCredentials,
		})
		if err != nil {
			slog.Error("failed to init firebase", "error", err)
			os.Exit(1)
		}
		verifier = fv
	}

	// Services
	r := handler.NewRouter(handler.Deps{
		Auth:      service.NewAuthService(db),
		Crops:     service.NewCropService(db),
		Orders:    service.NewOrderService(db),
		Carts:     cart.NewService(store),
		Audit:     recorder,
		Identity:  verifier,
		Exporter:  report.NewExporter(),
		JWTSecret: cfg.JWTSecret,
		Now:       time.Now,
	})

	srv := &http.Server{
		Addr:         cfg.RunAddress,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	slog.Info("starting server", "addr", cfg.RunAddress)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
			quit <- syscall.SIGTERM
		}
	}()

	<-quit
	slog.Info("shutting down...")

	ctxShut, cancelShut := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShut()

	if err := srv.Shutdown(ctxShut); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}

	slog.Info("server stopped")
}
