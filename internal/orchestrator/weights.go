package orchestrator

import "sync"

// Weight clamp bounds. SetWeight input outside this range is clamped, not
// rejected: weights are advisory policy, not validated user input.
const (
	MinWeight = 0.1
	MaxWeight = 2.0
)

// weightTable is the per-backend consensus weight map. Read on every
// consensus aggregation, written rarely (by ApplyWeights), hence the
// read-optimized lock.
type weightTable struct {
	mu      sync.RWMutex
	weights map[string]float64
}

func newWeightTable() *weightTable {
	return &weightTable{weights: make(map[string]float64)}
}

func (t *weightTable) set(name string, w float64) {
	if w < MinWeight {
		w = MinWeight
	}
	if w > MaxWeight {
		w = MaxWeight
	}

	t.mu.Lock()
	t.weights[name] = w
	t.mu.Unlock()
}

func (t *weightTable) get(name string) float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if w, ok := t.weights[name]; ok {
		return w
	}
	return 1.0
}

func (t *weightTable) snapshot() map[string]float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make(map[string]float64, len(t.weights))
	for name, w := range t.weights {
		out[name] = w
	}
	return out
}
