package middleware

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

type bucket struct {
	tokens   float64
	lastSeen time.Time
}

// RateLimiter is a per-client token bucket keyed by remote address.
// Synthesis is expensive, so the default limits are deliberately low
// compared to a typical JSON API.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*bucket
	rate    float64
	burst   float64
}

func NewRateLimiter(rps float64, burst int) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*bucket),
		rate:    rps,
		burst:   float64(burst),
	}
	go rl.evictIdle()
	return rl
}

func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rl.mu.Lock()
		b, ok := rl.clients[r.RemoteAddr]
		if !ok {
			b = &bucket{tokens: rl.burst, lastSeen: time.Now()}
			rl.clients[r.RemoteAddr] = b
		}

		b.tokens += time.Since(b.lastSeen).Seconds() * rl.rate
		if b.tokens > rl.burst {
			b.tokens = rl.burst
		}
		b.lastSeen = time.Now()

		if b.tokens < 1 {
			rl.mu.Unlock()
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(map[string]string{"error": "rate limit exceeded"})
			return
		}
		b.tokens--
		rl.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) evictIdle() {
	for range time.Tick(time.Minute) {
		rl.mu.Lock()
		for addr, b := range rl.clients {
			if time.Since(b.lastSeen) > 5*time.Minute {
				delete(rl.clients, addr)
			}
		}
		rl.mu.Unlock()
	}
}
