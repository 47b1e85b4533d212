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

	"github.com/redis/go-redis/v9"

	"github.com/narrato/narrato/internal/api"
	"github.com/narrato/narrato/internal/config"
	"github.com/narrato/narrato/internal/database"
	"github.com/narrato/narrato/internal/engine"
	"github.com/narrato/narrato/internal/queue"
	"github.com/narrato/narrato/internal/storage"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps := api.Deps{Config: cfg}

	deps.Engine = engine.NewHTTPEngine(engine.HTTPEngineConfig{
		BaseURL: cfg.Engine.BaseURL,
		Timeout: cfg.Engine.Timeout,
	})
	if e, ok := deps.Engine.(*engine.HTTPEngine); ok {
		if err := e.Ping(ctx); err != nil {
			slog.Warn("synthesis engine not reachable yet", "base_url", cfg.Engine.BaseURL, "error", err)
		}
	}

	deps.Store, err = storage.NewStore(cfg.Storage.DataDir)
	if err != nil {
		slog.Error("failed to initialize storage", "error", err)
		os.Exit(1)
	}

	if cfg.Database.URL != "" {
		db, err := database.NewPool(ctx, cfg.Database)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		if err := database.RunMigrations(ctx, db); err != nil {
			slog.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
		deps.DB = db

		deps.Redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer deps.Redis.Close()

		deps.Queue = queue.NewClient(cfg.Redis)
		defer deps.Queue.Close()
	} else {
		slog.Warn("DATABASE_URL not set, running without audiobook jobs")
	}

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      api.NewRouter(deps),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Minute, // synchronous synthesis of long texts
		IdleTimeout:  2 * time.Minute,
	}

	go func() {
		slog.Info("api server listening", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
}
