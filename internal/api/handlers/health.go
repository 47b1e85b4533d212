package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// enginePinger is the slice of the engine the health checks need.
type enginePinger interface {
	Languages(ctx context.Context) ([]string, error)
}

type HealthHandler struct {
	db     *pgxpool.Pool
	redis  *redis.Client
	engine enginePinger
}

func NewHealthHandler(db *pgxpool.Pool, rdb *redis.Client, engine enginePinger) *HealthHandler {
	return &HealthHandler{db: db, redis: rdb, engine: engine}
}

func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz reports whether the service can actually serve synthesis: the
// model sidecar must answer (a lightweight catalog call, mirroring a
// loaded-model check) and the job infrastructure must be reachable.
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{}

	if h.engine != nil {
		if _, err := h.engine.Languages(r.Context()); err != nil {
			checks["engine"] = "unhealthy: " + err.Error()
		} else {
			checks["engine"] = "ok"
		}
	}

	if h.db != nil {
		if err := h.db.Ping(r.Context()); err != nil {
			checks["database"] = "unhealthy: " + err.Error()
		} else {
			checks["database"] = "ok"
		}
	}

	if h.redis != nil {
		if err := h.redis.Ping(r.Context()).Err(); err != nil {
			checks["redis"] = "unhealthy: " + err.Error()
		} else {
			checks["redis"] = "ok"
		}
	}

	status := http.StatusOK
	for _, v := range checks {
		if v != "ok" {
			status = http.StatusServiceUnavailable
			break
		}
	}

	writeJSON(w, status, map[string]interface{}{"status": statusStr(status), "checks": checks})
}

func statusStr(code int) string {
	if code == http.StatusOK {
		return "ok"
	}
	return "unhealthy"
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
