package twincore

import (
	"maps"
	"math/rand/v2"
	"strings"
	"sync"
	"time"
)

// FaultConfig is the body of POST /admin/fault/{path}.
type FaultConfig struct {
	StatusCode int     `json:"status_code"`
	Body       string  `json:"body,omitempty"`
	DelayMS    int64   `json:"delay_ms,omitempty"`
	Rate       float64 `json:"rate"` // 0 is stored as 1 (always)
}

func (f FaultConfig) Delay() time.Duration {
	return time.Duration(f.DelayMS) * time.Millisecond
}

// FaultRegistry maps request paths to injected faults. A key ending in "/"
// covers every path below it; an exact key wins over a prefix, and a longer
// prefix over a shorter one.
type FaultRegistry struct {
	mu     sync.RWMutex
	faults map[string]FaultConfig
	roll   func() float64
}

func NewFaultRegistry() *FaultRegistry {
	return &FaultRegistry{faults: map[string]FaultConfig{}, roll: rand.Float64}
}

func (r *FaultRegistry) Set(path string, f FaultConfig) {
	if f.Rate == 0 {
		f.Rate = 1
	}
	r.mu.Lock()
	r.faults[path] = f
	r.mu.Unlock()
}

// Remove reports whether a fault was registered for path.
func (r *FaultRegistry) Remove(path string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.faults[path]; !ok {
		return false
	}
	delete(r.faults, path)
	return true
}

func (r *FaultRegistry) match(path string) (FaultConfig, bool) {
	if f, ok := r.faults[path]; ok {
		return f, true
	}
	var (
		best    FaultConfig
		bestLen int
	)
	for key, f := range r.faults {
		if strings.HasSuffix(key, "/") && strings.HasPrefix(path, key) && len(key) > bestLen {
			best, bestLen = f, len(key)
		}
	}
	return best, bestLen > 0
}

// Check returns the fault to apply to a request for path, or nil when none
// is registered or its rate roll misses.
func (r *FaultRegistry) Check(path string) *FaultConfig {
	r.mu.RLock()
	f, ok := r.match(path)
	r.mu.RUnlock()
	if !ok || (f.Rate < 1 && r.roll() >= f.Rate) {
		return nil
	}
	return &f
}

func (r *FaultRegistry) All() map[string]FaultConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return maps.Clone(r.faults)
}

func (r *FaultRegistry) Reset() {
	r.mu.Lock()
	clear(r.faults)
	r.mu.Unlock()
}
