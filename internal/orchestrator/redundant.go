package orchestrator

import (
	"context"

	"github.com/signaltrustai/SignalTrust-AI-Scanner-sub000/internal/backend"
)

// runRedundant fans out to all backends, collects every success within the
// deadline, and returns the single most confident result. The rest are
// reported only as alternatives_count.
func (o *Orchestrator) runRedundant(ctx context.Context, workers []*backend.Worker, req backend.AnalysisRequest) *Result {
	successes, failures := collect(ctx, o.fanOut(ctx, workers, req), len(workers))
	o.logFailures(req, failures)

	if len(successes) == 0 {
		return failureResult(req, "no backends succeeded within deadline")
	}

	best := successes[0]
	for _, s := range successes[1:] {
		if s.verdict.Confidence > best.verdict.Confidence {
			best = s
		}
	}

	result := resultFromVerdict(best.verdict, best.worker.Name(), req)
	result.AlternativesCount = len(successes) - 1
	return result
}
