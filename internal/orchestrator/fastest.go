package orchestrator

import (
	"context"
	"fmt"
	"sort"

	"github.com/signaltrustai/SignalTrust-AI-Scanner-sub000/internal/backend"
)

// runFastest races all backends, dispatched in order of historical average
// latency, and returns the first successful result. Remaining in-flight
// calls are canceled and their eventual results discarded.
func (o *Orchestrator) runFastest(ctx context.Context, workers []*backend.Worker, req backend.AnalysisRequest) *Result {
	ordered := make([]*backend.Worker, len(workers))
	copy(ordered, workers)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].AvgLatency() < ordered[j].AvgLatency()
	})

	raceCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := o.fanOut(raceCtx, ordered, req)

	var lastErr error
	for i := 0; i < len(ordered); i++ {
		select {
		case outcome := <-results:
			if outcome.err != nil {
				lastErr = outcome.err
				continue
			}
			cancel()
			return resultFromVerdict(outcome.verdict, outcome.worker.Name(), req)
		case <-ctx.Done():
			return failureResult(req, "no backend responded within deadline")
		}
	}

	return failureResult(req, fmt.Sprintf("all backends failed, last error: %v", lastErr))
}
