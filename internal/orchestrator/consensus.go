package orchestrator

import (
	"context"
	"fmt"
	"math"

	"github.com/signaltrustai/SignalTrust-AI-Scanner-sub000/internal/backend"
	"github.com/signaltrustai/SignalTrust-AI-Scanner-sub000/internal/types"
)

// runConsensus fans out to all backends and performs weighted majority
// voting over the returned directions. Each backend's vote is
// confidence × weight × (0.5 + 0.5 × success_rate). Raw verdicts take part
// with their neutral direction and floor confidence, so an all-raw round
// still converges instead of failing.
func (o *Orchestrator) runConsensus(ctx context.Context, workers []*backend.Worker, req backend.AnalysisRequest) *Result {
	successes, failures := collect(ctx, o.fanOut(ctx, workers, req), len(workers))
	o.logFailures(req, failures)

	if len(successes) == 0 {
		return failureResult(req, "no backends succeeded within deadline")
	}

	type leadingVote struct {
		name string
		vote float64
	}

	votes := make(map[types.Direction]float64, 3)
	leaders := make(map[types.Direction]leadingVote, 3)
	var confidenceSum, totalScore float64

	for _, s := range successes {
		vote := s.verdict.Confidence *
			o.weights.get(s.worker.Name()) *
			(0.5 + 0.5*s.worker.SuccessRate())

		votes[s.verdict.Direction] += vote
		totalScore += vote
		confidenceSum += s.verdict.Confidence

		// The reported backend must be one that voted for the winning
		// direction, so track the strongest voter per direction.
		if vote > leaders[s.verdict.Direction].vote {
			leaders[s.verdict.Direction] = leadingVote{name: s.worker.Name(), vote: vote}
		}
	}

	winning := types.DirectionNeutral
	var winningScore float64
	for direction, score := range votes {
		if score > winningScore {
			winningScore = score
			winning = direction
		}
	}

	agreement := 0.0
	if totalScore > 0 {
		agreement = winningScore / totalScore
	}

	avgConfidence := confidenceSum / float64(len(successes))
	merged := math.Min(0.98, avgConfidence*(0.7+0.3*agreement))

	return &Result{
		Success:        true,
		Direction:      winning,
		Confidence:     merged,
		RiskLevel:      o.riskLabel(merged),
		KeyFactors:     mergeFactors(successes, 10),
		Summary:        summarizeConsensus(successes, winning),
		Backend:        leaders[winning].name,
		AgreementRatio: agreement,
	}
}

// mergeFactors unions all backends' key factors, deduplicated in first-seen
// order, capped at max.
func mergeFactors(successes []workerOutcome, max int) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, s := range successes {
		for _, factor := range s.verdict.KeyFactors {
			if _, dup := seen[factor]; dup {
				continue
			}
			seen[factor] = struct{}{}
			out = append(out, factor)
			if len(out) == max {
				return out
			}
		}
	}
	return out
}

func summarizeConsensus(successes []workerOutcome, winning types.Direction) string {
	agreeing := 0
	for _, s := range successes {
		if s.verdict.Direction == winning {
			agreeing++
		}
	}
	return fmt.Sprintf("%d/%d backends agree on %s", agreeing, len(successes), winning)
}

func (o *Orchestrator) logFailures(req backend.AnalysisRequest, failures []workerOutcome) {
	for _, f := range failures {
		o.logger.Warn("backend failed",
			"backend", f.worker.Name(), "task", req.TaskType, "error", f.err)
	}
}
