package learning

import (
	"context"
	"sort"
	"time"

	"github.com/signaltrustai/SignalTrust-AI-Scanner-sub000/internal/database"
	"github.com/signaltrustai/SignalTrust-AI-Scanner-sub000/internal/types"
)

const recentWindow = 7 * 24 * time.Hour

// retentionScore values a record for keeping. Pruning is value-based, not
// recency-based: a confident correct call from a month ago outranks a
// fresh unevaluated one.
func retentionScore(rec database.PredictionRecord, now time.Time) float64 {
	score := rec.Importance

	age := now.Sub(rec.CreatedAt)
	if age <= recentWindow {
		score += 1.0
	}

	if rec.Outcome != nil {
		switch *rec.Outcome {
		case types.OutcomeCorrect:
			if rec.Confidence >= 0.7 {
				score += 1.5
			} else {
				score += 0.8
			}
		case types.OutcomePartial:
			score += 0.3
		}
	} else if age > recentWindow {
		score -= 0.5
	}

	return score
}

// prune drops the lowest-valued records until exactly maxPredictions
// remain. Returns how many rows were deleted.
func (e *Engine) prune(ctx context.Context) (int, error) {
	records, err := e.predictions.ListAll(ctx)
	if err != nil {
		return 0, err
	}
	if len(records) <= e.maxPredictions {
		return 0, nil
	}

	now := e.now().UTC()
	type scored struct {
		id    types.ID
		score float64
	}
	ranked := make([]scored, len(records))
	for i, rec := range records {
		ranked[i] = scored{id: rec.ID, score: retentionScore(rec, now)}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	var drop []types.ID
	for _, s := range ranked[e.maxPredictions:] {
		drop = append(drop, s.id)
	}

	return e.predictions.DeleteByIDs(ctx, drop)
}
