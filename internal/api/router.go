// Package api wires the HTTP surface of the service.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/narrato/narrato/internal/api/handlers"
	"github.com/narrato/narrato/internal/api/middleware"
	"github.com/narrato/narrato/internal/audio"
	"github.com/narrato/narrato/internal/config"
	"github.com/narrato/narrato/internal/engine"
	"github.com/narrato/narrato/internal/jobs"
	"github.com/narrato/narrato/internal/queue"
	"github.com/narrato/narrato/internal/storage"
	"github.com/narrato/narrato/internal/synth"
)

// Deps carries the shared resources the router mounts handlers on.
// DB may be nil; the audiobook job endpoints are skipped in that case
// and the synchronous synthesis endpoints still work.
type Deps struct {
	Config *config.Config
	Engine engine.Engine
	DB     *pgxpool.Pool
	Redis  *redis.Client
	Queue  *queue.Client
	Store  *storage.Store
}

func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))
	r.Use(middleware.NewRateLimiter(2, 10).Limit)

	health := handlers.NewHealthHandler(deps.DB, deps.Redis, deps.Engine)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	pipeline := synth.NewPipeline(deps.Engine, engine.NewGuard(), synth.PipelineConfig{
		ChunkSize:  deps.Config.Synthesis.ChunkSize,
		MaxRetries: deps.Config.Synthesis.MaxRetries,
	})
	encoder := audio.NewEncoder(deps.Config.Storage.FFmpegPath)

	speech := handlers.NewSpeechHandler(deps.Engine, pipeline, encoder, deps.Store, deps.Config.Synthesis)

	r.Route("/api/v1", func(r chi.Router) {
		if deps.Config.Auth.JWTSecret != "" {
			r.Use(middleware.JWTAuth(deps.Config.Auth.JWTSecret))
		}

		r.Post("/tts", speech.Speak)
		r.Get("/voices", speech.Voices)
		r.Get("/languages", speech.Languages)

		if deps.DB == nil {
			slog.Warn("database not configured, audiobook endpoints disabled")
			return
		}

		audiobooks := handlers.NewAudiobookHandler(
			jobs.NewService(deps.DB), deps.Store, deps.Queue, deps.Engine, deps.Config.Synthesis)

		r.Route("/audiobooks", func(r chi.Router) {
			r.Post("/", audiobooks.Create)
			r.Get("/", audiobooks.List)
			r.Get("/{id}", audiobooks.Get)
			r.Get("/{id}/download", audiobooks.Download)
			r.Delete("/{id}", audiobooks.Delete)
		})
	})

	return r
}
