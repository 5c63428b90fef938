package backend

import (
	"context"
	"sync"
	"time"

	"github.com/signaltrustai/SignalTrust-AI-Scanner-sub000/internal/types"
)

// WorkerStats is a snapshot of a worker's execution counters.
type WorkerStats struct {
	TasksCompleted int64         `json:"tasks_completed"`
	TasksFailed    int64         `json:"tasks_failed"`
	TotalLatency   time.Duration `json:"total_latency"`
	AvgLatency     time.Duration `json:"avg_latency"`
	SuccessRate    float64       `json:"success_rate"`
}

// Worker wraps one analytical provider with execution statistics.
// Counters are mutated only by this worker's own execution path under its
// own lock, so there is no cross-backend contention.
type Worker struct {
	provider AnalysisProvider
	priority int

	mu         sync.Mutex
	completed  int64
	failed     int64
	cumLatency time.Duration
}

// NewWorker wraps a provider with the given static priority.
// Lower priority values run earlier in ordered strategies.
func NewWorker(provider AnalysisProvider, priority int) *Worker {
	return &Worker{provider: provider, priority: priority}
}

// Name returns the wrapped provider's unique name.
func (w *Worker) Name() string {
	return w.provider.Name()
}

// Kind returns the wrapped provider's family.
func (w *Worker) Kind() types.ProviderKind {
	return w.provider.Kind()
}

// Provider returns the wrapped provider.
func (w *Worker) Provider() AnalysisProvider {
	return w.provider
}

// Priority returns the worker's static tie-break order.
func (w *Worker) Priority() int {
	return w.priority
}

// Execute runs one analytical task on the wrapped provider, recording
// latency and success/failure counters.
func (w *Worker) Execute(ctx context.Context, req AnalysisRequest) (*Verdict, error) {
	start := time.Now()
	verdict, err := w.provider.Analyze(ctx, req)
	elapsed := time.Since(start)

	w.mu.Lock()
	w.cumLatency += elapsed
	if err != nil {
		w.failed++
	} else {
		w.completed++
	}
	w.mu.Unlock()

	if err != nil {
		return nil, TranslateError(w.provider.Name(), err)
	}
	return verdict, nil
}

// Stats returns a snapshot of this worker's counters.
func (w *Worker) Stats() WorkerStats {
	w.mu.Lock()
	defer w.mu.Unlock()

	total := w.completed + w.failed
	stats := WorkerStats{
		TasksCompleted: w.completed,
		TasksFailed:    w.failed,
		TotalLatency:   w.cumLatency,
		SuccessRate:    1.0,
	}
	if total > 0 {
		stats.AvgLatency = w.cumLatency / time.Duration(total)
		stats.SuccessRate = float64(w.completed) / float64(total)
	}
	return stats
}

// AvgLatency returns the mean latency across all executions, zero if none.
func (w *Worker) AvgLatency() time.Duration {
	return w.Stats().AvgLatency
}

// SuccessRate returns completed/(completed+failed), defaulting to 1.0 with
// no history so new workers are not penalized before any evidence exists.
func (w *Worker) SuccessRate() float64 {
	return w.Stats().SuccessRate
}
