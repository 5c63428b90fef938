package orchestrator

import (
	"context"

	"github.com/signaltrustai/SignalTrust-AI-Scanner-sub000/internal/backend"
)

// runPipeline executes backends sequentially in static priority order.
// Each stage sees the direction, confidence, and top factors of every stage
// that ran before it in this same call. Concurrency is deliberately absent:
// later stages depend on earlier output. The stage count reflects backends
// attempted, not successes.
func (o *Orchestrator) runPipeline(ctx context.Context, workers []*backend.Worker, req backend.AnalysisRequest) *Result {
	var lastVerdict *backend.Verdict
	var lastBackend string
	var stageSummaries []map[string]any
	stages := 0

	for _, w := range workers {
		if ctx.Err() != nil {
			break
		}
		stages++

		stageReq := req
		if len(stageSummaries) > 0 {
			stageReq.Context = cloneContext(req.Context)
			stageReq.Context["pipeline_stages"] = stageSummaries
		}

		verdict, err := w.Execute(ctx, stageReq)
		if err != nil {
			o.logger.Warn("pipeline stage failed", "backend", w.Name(), "stage", stages, "error", err)
			continue
		}

		lastVerdict = verdict
		lastBackend = w.Name()
		stageSummaries = append(stageSummaries, map[string]any{
			"backend":     w.Name(),
			"direction":   verdict.Direction,
			"confidence":  verdict.Confidence,
			"top_factors": topFactors(verdict.KeyFactors, 3),
		})
	}

	if lastVerdict == nil {
		result := failureResult(req, "every pipeline stage failed")
		result.PipelineStages = stages
		return result
	}

	result := resultFromVerdict(lastVerdict, lastBackend, req)
	result.PipelineStages = stages
	return result
}

func cloneContext(src map[string]any) map[string]any {
	out := make(map[string]any, len(src)+1)
	for k, v := range src {
		out[k] = v
	}
	return out
}
