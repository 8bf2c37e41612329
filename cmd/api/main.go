package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/punchamoorthee/bankcore/internal/api"
	"github.com/punchamoorthee/bankcore/internal/cache"
	"github.com/punchamoorthee/bankcore/internal/config"
	"github.com/punchamoorthee/bankcore/internal/logging"
	"github.com/punchamoorthee/bankcore/internal/service"
	"github.com/punchamoorthee/bankcore/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", "err", err)
		os.Exit(1)
	}
	log, closeLog, err := logging.Open(cfg)
	if err != nil {
		slog.Error("Unable to open log file", "err", err)
		os.Exit(1)
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := store.NewStore(ctx, cfg.DBSource, cfg.TxMaxRetries)
	if err != nil {
		log.Error("Unable to connect to database", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.EnsureSchema(ctx); err != nil {
		log.Error("Schema setup failed", "err", err)
		os.Exit(1)
	}

	// Initialize Layers
	opts := []service.Option{service.WithLogger(log)}
	if cfg.RedisAddr != "" {
		rc, err := cache.NewRedis(ctx, cfg.RedisAddr, cfg.CacheTTL, log)
		if err != nil {
			log.Warn("Redis unavailable, running without snapshot cache", "addr", cfg.RedisAddr, "err", err)
		} else {
			defer rc.Close()
			opts = append(opts, service.WithCache(rc))
		}
	}
	bank := service.New(db, opts...)
	router := api.NewRouter(api.NewHandler(bank, log))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Info("Server starting", "port", cfg.Port, "env", cfg.Env)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("Server stopped", "err", err)
		os.Exit(1)
	}
	log.Info("Server stopped")
}
