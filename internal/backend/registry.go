package backend

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/signaltrustai/SignalTrust-AI-Scanner-sub000/internal/types"
)

// Registry manages worker registration, lookup, and health aggregation.
// All operations are safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	workers map[string]*Worker
}

// NewRegistry creates an empty worker registry.
func NewRegistry() *Registry {
	return &Registry{workers: make(map[string]*Worker)}
}

// Register adds a worker to the registry.
// Returns BACKEND_ALREADY_EXISTS if the name is taken and
// BACKEND_INVALID_INPUT for a nil worker or empty name.
func (r *Registry) Register(worker *Worker) error {
	if worker == nil {
		return types.NewError(types.BACKEND_INVALID_INPUT, "worker cannot be nil")
	}
	name := worker.Name()
	if name == "" {
		return types.NewError(types.BACKEND_INVALID_INPUT, "worker name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.workers[name]; exists {
		return types.NewError(types.BACKEND_ALREADY_EXISTS, fmt.Sprintf("worker %q already registered", name))
	}
	r.workers[name] = worker
	return nil
}

// Get retrieves a worker by name.
func (r *Registry) Get(name string) (*Worker, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	worker, exists := r.workers[name]
	if !exists {
		return nil, types.NewError(types.BACKEND_NOT_FOUND, fmt.Sprintf("worker %q not found", name))
	}
	return worker, nil
}

// List returns all workers ordered by static priority, name breaking ties.
func (r *Registry) List() []*Worker {
	r.mu.RLock()
	defer r.mu.RUnlock()

	workers := make([]*Worker, 0, len(r.workers))
	for _, w := range r.workers {
		workers = append(workers, w)
	}
	sort.Slice(workers, func(i, j int) bool {
		if workers[i].Priority() != workers[j].Priority() {
			return workers[i].Priority() < workers[j].Priority()
		}
		return workers[i].Name() < workers[j].Name()
	})
	return workers
}

// ByKind returns the first worker of the given provider family, priority order.
func (r *Registry) ByKind(kind types.ProviderKind) (*Worker, bool) {
	for _, w := range r.List() {
		if w.Kind() == kind {
			return w, true
		}
	}
	return nil, false
}

// Len returns the number of registered workers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.workers)
}

// Health aggregates provider health:
// healthy when all providers are healthy, degraded when some are,
// unhealthy when none are (or the registry is empty).
func (r *Registry) Health(ctx context.Context) types.HealthStatus {
	workers := r.List()
	if len(workers) == 0 {
		return types.Unhealthy("no workers registered")
	}

	healthy := 0
	for _, w := range workers {
		if w.Provider().Health(ctx).IsHealthy() {
			healthy++
		}
	}

	switch {
	case healthy == len(workers):
		return types.Healthy(fmt.Sprintf("all %d workers healthy", healthy))
	case healthy > 0:
		return types.Degraded(fmt.Sprintf("%d/%d workers healthy", healthy, len(workers)))
	default:
		return types.Unhealthy("all workers unhealthy")
	}
}
