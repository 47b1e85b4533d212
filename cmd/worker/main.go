package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"

	"github.com/narrato/narrato/internal/audio"
	"github.com/narrato/narrato/internal/config"
	"github.com/narrato/narrato/internal/database"
	"github.com/narrato/narrato/internal/engine"
	"github.com/narrato/narrato/internal/jobs"
	"github.com/narrato/narrato/internal/queue"
	"github.com/narrato/narrato/internal/queue/workers"
	"github.com/narrato/narrato/internal/storage"
	"github.com/narrato/narrato/internal/synth"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	db, err := database.NewPool(ctx, cfg.Database)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	store, err := storage.NewStore(cfg.Storage.DataDir)
	if err != nil {
		slog.Error("failed to initialize storage", "error", err)
		os.Exit(1)
	}

	e := engine.NewHTTPEngine(engine.HTTPEngineConfig{
		BaseURL: cfg.Engine.BaseURL,
		Timeout: cfg.Engine.Timeout,
	})
	if err := e.Ping(ctx); err != nil {
		slog.Warn("synthesis engine not reachable yet", "base_url", cfg.Engine.BaseURL, "error", err)
	}

	pipeline := synth.NewPipeline(e, engine.NewGuard(), synth.PipelineConfig{
		ChunkSize:  cfg.Synthesis.ChunkSize,
		MaxRetries: cfg.Synthesis.MaxRetries,
	})

	worker := workers.NewAudiobookWorker(
		jobs.NewService(db), store, e, pipeline, audio.NewEncoder(cfg.Storage.FFmpegPath))

	// Synthesis holds a model-wide lock, so extra concurrency would only
	// queue inside the process.
	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{Concurrency: 1},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.TypeAudiobookSynthesize, worker.ProcessTask)

	slog.Info("worker started", "redis", cfg.Redis.Addr)
	if err := srv.Run(mux); err != nil {
		slog.Error("worker stopped", "error", err)
		os.Exit(1)
	}
}
