package engine

import "sync"

// Guard serializes access to the shared model. The loaded weights are a
// single stateful resource that is not safe for concurrent invocation, so
// every Create call must run under the guard. The lock is scoped to one
// call, never a whole request: chunks of concurrent requests interleave,
// and no request can hold the model across its entire chunk sequence.
type Guard struct {
	mu sync.Mutex
}

func NewGuard() *Guard {
	return &Guard{}
}

// Do runs fn while holding exclusive access to the model.
func (g *Guard) Do(fn func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	fn()
}
