package learning

import (
	"context"

	"github.com/signaltrustai/SignalTrust-AI-Scanner-sub000/internal/types"
)

// EvolveReport summarizes one Evolve run.
type EvolveReport struct {
	Examined  int                `json:"examined"`
	Evaluated int                `json:"evaluated"`
	Pending   int                `json:"pending"`
	Pruned    int                `json:"pruned"`
	Archived  int                `json:"archived"`
	Weights   map[string]float64 `json:"weights,omitempty"`
}

// Evolve is the closed-loop maintenance batch: score overdue predictions
// against realized price movement, archive old evaluated records, prune
// past the cap, and push refreshed weights into sink. It runs only when
// called; there is no background poller. sink may be nil to skip the
// weight push.
func (e *Engine) Evolve(ctx context.Context, sink WeightSink) (EvolveReport, error) {
	var report EvolveReport

	cutoff := e.now().UTC().Add(-e.evaluationAge)
	overdue, err := e.predictions.ListPendingBefore(ctx, cutoff, 0)
	if err != nil {
		return report, err
	}
	report.Examined = len(overdue)

	// One feed lookup per symbol per run.
	changes := make(map[string]float64)
	failed := make(map[string]bool)

	for _, rec := range overdue {
		if ctx.Err() != nil {
			return report, types.WrapError(types.FEED_LOOKUP_FAILED, "evolve canceled", ctx.Err())
		}

		change, ok := changes[rec.Symbol]
		if !ok {
			if failed[rec.Symbol] {
				report.Pending++
				continue
			}
			if e.feed == nil {
				report.Pending++
				continue
			}
			change, err = e.feed.GetPercentChange24h(ctx, rec.Symbol)
			if err != nil {
				// Leave the record pending; the next run retries.
				e.logger.Warn("price lookup failed, leaving predictions pending",
					"symbol", rec.Symbol, "error", err)
				failed[rec.Symbol] = true
				report.Pending++
				continue
			}
			changes[rec.Symbol] = change
		}

		outcome := classifyOutcome(rec.Direction, change)
		priceNow := rec.PriceAt * (1 + change/100)

		changed, err := e.EvaluatePrediction(ctx, rec.ID, outcome, priceNow)
		if err != nil {
			return report, err
		}
		if changed {
			report.Evaluated++
		}
	}

	if e.archiver != nil {
		archived, err := e.archiveOld(ctx)
		if err != nil {
			e.logger.Warn("archiving failed", "error", err)
		}
		report.Archived = archived
	}

	count, err := e.predictions.Count(ctx)
	if err != nil {
		return report, err
	}
	if count > e.maxPredictions {
		pruned, err := e.prune(ctx)
		if err != nil {
			return report, err
		}
		report.Pruned = pruned
	}

	e.patterns.PruneStale(e.now().UTC())

	if sink != nil {
		weights, err := e.ApplyWeights(ctx, sink)
		if err != nil {
			return report, err
		}
		report.Weights = weights
	}

	e.logger.Info("evolve complete",
		"examined", report.Examined,
		"evaluated", report.Evaluated,
		"pending", report.Pending,
		"archived", report.Archived,
		"pruned", report.Pruned)
	return report, nil
}

// classifyOutcome compares the predicted direction with the realized move.
// Moves within ±2% are noise and classify as NEUTRAL; a NEUTRAL side on
// either end makes the call PARTIAL rather than wrong.
func classifyOutcome(predicted types.Direction, changePct float64) types.Outcome {
	var realized types.Direction
	switch {
	case changePct >= significantMovePct:
		realized = types.DirectionBullish
	case changePct <= -significantMovePct:
		realized = types.DirectionBearish
	default:
		realized = types.DirectionNeutral
	}

	switch {
	case predicted == realized:
		return types.OutcomeCorrect
	case predicted == types.DirectionNeutral || realized == types.DirectionNeutral:
		return types.OutcomePartial
	default:
		return types.OutcomeIncorrect
	}
}

// archiveOld moves evaluated records past the archive age into cold
// storage, then deletes them from the active set.
func (e *Engine) archiveOld(ctx context.Context) (int, error) {
	cutoff := e.now().UTC().Add(-e.archiver.MaxAge())
	old, err := e.predictions.ListEvaluatedBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if len(old) < e.archiver.MinBatch() {
		return 0, nil
	}

	if err := e.archiver.Archive(ctx, old); err != nil {
		return 0, types.WrapError(types.LEARN_ARCHIVE_FAILED, "failed to write archive batch", err)
	}

	ids := make([]types.ID, len(old))
	for i, rec := range old {
		ids[i] = rec.ID
	}
	deleted, err := e.predictions.DeleteByIDs(ctx, ids)
	if err != nil {
		return 0, err
	}
	return deleted, nil
}
