package llm

import (
	"sync"
	"sync/atomic"
)

// QuotaRegistry tracks per-model call counts for the current process.
// It is a soft limiter: increments are atomic, but the read-then-skip
// decision is best-effort, so a brief overshoot under heavy concurrency
// is acceptable. Counts are never persisted; a restart resets them.
type QuotaRegistry struct {
	ceiling int64

	mu       sync.Mutex
	counters map[string]*atomic.Int64
}

// NewQuotaRegistry creates a registry with the given per-model ceiling.
// A ceiling <= 0 falls back to DefaultQuotaCeiling.
func NewQuotaRegistry(ceiling int) *QuotaRegistry {
	if ceiling <= 0 {
		ceiling = DefaultQuotaCeiling
	}
	return &QuotaRegistry{
		ceiling:  int64(ceiling),
		counters: make(map[string]*atomic.Int64),
	}
}

// Ceiling returns the per-model call ceiling.
func (r *QuotaRegistry) Ceiling() int {
	return int(r.ceiling)
}

// Used returns the number of successful calls recorded for the model.
func (r *QuotaRegistry) Used(model string) int {
	return int(r.counter(model).Load())
}

// Exhausted reports whether the model has reached its ceiling.
func (r *QuotaRegistry) Exhausted(model string) bool {
	return r.counter(model).Load() >= r.ceiling
}

// Record atomically increments the model's counter and returns the new
// count. Called once per successful model call.
func (r *QuotaRegistry) Record(model string) int {
	return int(r.counter(model).Add(1))
}

// Snapshot returns a copy of the current counts keyed by model name.
func (r *QuotaRegistry) Snapshot() map[string]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]int, len(r.counters))
	for name, c := range r.counters {
		out[name] = int(c.Load())
	}
	return out
}

func (r *QuotaRegistry) counter(model string) *atomic.Int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.counters[model]
	if !ok {
		c = &atomic.Int64{}
		r.counters[model] = c
	}
	return c
}
