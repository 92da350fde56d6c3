package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/msomdec/village-rental/internal/backend"
	"github.com/msomdec/village-rental/internal/config"
	"github.com/msomdec/village-rental/internal/domain"
	"github.com/msomdec/village-rental/internal/handler"
	"github.com/msomdec/village-rental/internal/repository/redis"
	"github.com/msomdec/village-rental/internal/repository/sqlite"
	"github.com/msomdec/village-rental/internal/service"
)

func main() {
	cfg, err := config.Load(context.Background())
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	level, _ := cfg.Level()

	logOpts := &slog.HandlerOptions{Level: level}
	logger := slog.New(slog.NewMultiHandler(
		slog.NewTextHandler(os.Stdout, logOpts),
		slog.NewJSONHandler(os.Stderr, logOpts),
	))
	slog.SetDefault(logger)

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, storage, err := openStorage(ctx, cfg.Storage)
	if err != nil {
		slog.Error("failed to open storage", "driver", cfg.Storage.Driver, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("storage ready", "driver", cfg.Storage.Driver)

	client := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout)
	sessions := service.NewSessionStore(storage)
	gateway, err := service.NewAuthGateway(client, sessions, service.GatewayOptions{
		ProbeTimeout: cfg.Backend.HealthTimeout,
		ForceDemo:    cfg.Backend.ForceDemo,
		BcryptCost:   cfg.BcryptCost,
	})
	if err != nil {
		slog.Error("failed to create auth gateway", "error", err)
		os.Exit(1)
	}

	// Decide the operating mode before serving so no request waits on the probe.
	mode := gateway.Init(ctx)
	slog.Info("backend", "url", cfg.Backend.BaseURL, "mode", mode.String())

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, handler.Deps{
		Gateway:      gateway,
		Sessions:     sessions,
		Equipment:    service.NewEquipmentService(gateway, client),
		ClientIDs:    service.NewClientIDs(cfg.SessionSecret),
		LoginLimiter: service.NewTokenBucket(ctx, 0.2, 5),
		CookieSecure: cfg.CookieSecure,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler.SecurityHeaders(mux),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// openStorage connects the configured per-client storage backend.
func openStorage(ctx context.Context, cfg config.StorageConfig) (domain.Database, domain.Storage, error) {
	switch cfg.Driver {
	case config.DriverRedis:
		db, err := redis.Connect(ctx, redis.Config{Addr: cfg.RedisAddr, DB: cfg.RedisDB, TTL: cfg.RedisTTL})
		if err != nil {
			return nil, nil, err
		}
		return db, db.Storage(), nil
	case config.DriverSQLite:
		db, err := sqlite.New(cfg.DatabasePath)
		if err != nil {
			return nil, nil, err
		}
		return db, db.Storage(), nil
	}
	return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
}
