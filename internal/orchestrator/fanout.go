package orchestrator

import (
	"context"

	"github.com/signaltrustai/SignalTrust-AI-Scanner-sub000/internal/backend"
)

// workerOutcome is one backend's contribution to a fan-out collection.
type workerOutcome struct {
	worker  *backend.Worker
	verdict *backend.Verdict
	err     error
}

// fanOut submits every worker's call through the bounded pool and returns a
// channel carrying their outcomes. The channel is buffered to len(workers)
// so stragglers finishing after the caller stopped collecting are discarded,
// never awaited and never blocked on.
func (o *Orchestrator) fanOut(ctx context.Context, workers []*backend.Worker, req backend.AnalysisRequest) <-chan workerOutcome {
	out := make(chan workerOutcome, len(workers))

	for _, w := range workers {
		go func(w *backend.Worker) {
			if err := o.pool.Acquire(ctx, 1); err != nil {
				out <- workerOutcome{worker: w, err: err}
				return
			}
			defer o.pool.Release(1)

			verdict, err := w.Execute(ctx, req)
			out <- workerOutcome{worker: w, verdict: verdict, err: err}
		}(w)
	}

	return out
}

// collect gathers outcomes until every worker reported or the deadline
// expired. A single backend's failure is isolated: it lands in the failures
// slice and does not abort its siblings.
func collect(ctx context.Context, results <-chan workerOutcome, expected int) (successes, failures []workerOutcome) {
	for i := 0; i < expected; i++ {
		select {
		case outcome := <-results:
			if outcome.err != nil {
				failures = append(failures, outcome)
			} else {
				successes = append(successes, outcome)
			}
		case <-ctx.Done():
			return successes, failures
		}
	}
	return successes, failures
}
