package metrics

import (
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"dzgamezone-be/internal/utils"
)

type Counter struct {
	value uint64
}

func (c *Counter) Inc() {
	atomic.AddUint64(&c.value, 1)
}

func (c *Counter) Add(n uint64) {
	atomic.AddUint64(&c.value, n)
}

func (c *Counter) Load() uint64 {
	return atomic.LoadUint64(&c.value)
}

type Timer struct {
	start time.Time
}

func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// Registry names counters so they can be exported together.
type Registry struct {
	mu       sync.RWMutex
	counters map[string]*Counter
	started  time.Time
}

func NewRegistry() *Registry {
	return &Registry{
		counters: make(map[string]*Counter),
		started:  time.Now(),
	}
}

// Counter returns the counter registered under name, creating it on first use.
func (r *Registry) Counter(name string) *Counter {
	r.mu.RLock()
	c, ok := r.counters[name]
	r.mu.RUnlock()
	if ok {
		return c
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok = r.counters[name]; !ok {
		c = &Counter{}
		r.counters[name] = c
	}
	return c
}

func (r *Registry) Snapshot() map[string]uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]uint64, len(r.counters))
	for name, c := range r.counters {
		out[name] = c.Load()
	}
	return out
}

type snapshotResponse struct {
	UptimeSeconds int64             `json:"uptimeSeconds"`
	Counters      map[string]uint64 `json:"counters"`
	Names         []string          `json:"names"`
}

// Handler serves the counters as JSON.
func (r *Registry) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		snap := r.Snapshot()
		names := make([]string, 0, len(snap))
		for name := range snap {
			names = append(names, name)
		}
		sort.Strings(names)

		utils.WriteJSON(w, http.StatusOK, snapshotResponse{
			UptimeSeconds: int64(time.Since(r.started).Seconds()),
			Counters:      snap,
			Names:         names,
		})
	}
}
