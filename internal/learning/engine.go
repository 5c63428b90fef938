// Package learning records market-direction predictions, reconciles them
// against realized price movement, and turns per-backend accuracy into
// consensus weights.
package learning

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/signaltrustai/SignalTrust-AI-Scanner-sub000/internal/database"
	"github.com/signaltrustai/SignalTrust-AI-Scanner-sub000/internal/pricefeed"
	"github.com/signaltrustai/SignalTrust-AI-Scanner-sub000/internal/types"
)

const (
	// DefaultMaxPredictions caps the active prediction set.
	DefaultMaxPredictions = 5000

	// DefaultEvaluationAge is how old a prediction must be before Evolve
	// scores it against realized price movement.
	DefaultEvaluationAge = 24 * time.Hour

	// DefaultArchiveAge is how old an evaluated prediction must be before
	// it moves to cold storage.
	DefaultArchiveAge = 30 * 24 * time.Hour

	// DefaultArchiveMinBatch skips archive runs that would produce tiny
	// files.
	DefaultArchiveMinBatch = 50

	// DefaultArchiveKeepBatches bounds archive retention.
	DefaultArchiveKeepBatches = 12

	// significantMovePct classifies a realized 24h move as directional
	// rather than noise.
	significantMovePct = 2.0

	// minSamplesForWeight is the evidence floor below which a backend
	// keeps the neutral weight 1.0.
	minSamplesForWeight = 5

	minRecommendedWeight = 0.4
	maxRecommendedWeight = 1.6
)

// WeightSink receives recommended weights. *orchestrator.Orchestrator
// satisfies it.
type WeightSink interface {
	SetWeight(name string, w float64)
}

// Engine is the learning subsystem. Concurrency control lives in the
// store: evaluation is guarded by a null-outcome predicate and score
// increments are atomic upserts, so the engine itself holds no locks.
type Engine struct {
	predictions database.PredictionDAO
	scores      database.ScoreDAO
	archiver    *Archiver
	feed        pricefeed.Feed
	patterns    *PatternMemory
	logger      *slog.Logger

	maxPredictions int
	evaluationAge  time.Duration

	now func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMaxPredictions overrides the active-set cap.
func WithMaxPredictions(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxPredictions = n
		}
	}
}

// WithEvaluationAge overrides how old predictions must be before Evolve
// scores them.
func WithEvaluationAge(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.evaluationAge = d
		}
	}
}

// WithArchiver sets the cold-storage writer. Without one, Evolve skips
// archiving.
func WithArchiver(a *Archiver) Option {
	return func(e *Engine) { e.archiver = a }
}

// WithClock overrides the engine's time source for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine creates the learning engine. feed may be nil when Evolve will
// never be called (for example in a record/evaluate-only deployment).
func NewEngine(predictions database.PredictionDAO, scores database.ScoreDAO, feed pricefeed.Feed, opts ...Option) *Engine {
	e := &Engine{
		predictions:    predictions,
		scores:         scores,
		feed:           feed,
		patterns:       NewPatternMemory(),
		logger:         slog.Default(),
		maxPredictions: DefaultMaxPredictions,
		evaluationAge:  DefaultEvaluationAge,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RecordInput carries everything needed to persist one prediction.
type RecordInput struct {
	Symbol     string
	Direction  types.Direction
	Confidence float64
	Backend    string
	Strategy   string
	PriceAt    float64
	Indicators map[string]float64
}

// RecordPrediction persists a new prediction with importance 1.0 and a
// null outcome, then prunes if the active set exceeded its cap.
func (e *Engine) RecordPrediction(ctx context.Context, in RecordInput) (types.ID, error) {
	createdAt := e.now().UTC()
	rec := &database.PredictionRecord{
		ID:         types.NewPredictionID(in.Symbol, in.Direction, in.Backend, createdAt),
		Symbol:     in.Symbol,
		Direction:  in.Direction,
		Confidence: clamp01(in.Confidence),
		Backend:    in.Backend,
		Strategy:   in.Strategy,
		PriceAt:    in.PriceAt,
		CreatedAt:  createdAt,
		Importance: 1.0,
	}

	if err := e.predictions.Insert(ctx, rec); err != nil {
		return "", types.WrapError(types.LEARN_STORE_FAILED, "failed to record prediction", err)
	}

	if len(in.Indicators) > 0 {
		e.patterns.Observe(PatternKey(in.Symbol, in.Indicators), in.Direction, createdAt)
	}

	count, err := e.predictions.Count(ctx)
	if err != nil {
		return rec.ID, err
	}
	if count > e.maxPredictions {
		if pruned, err := e.prune(ctx); err != nil {
			e.logger.Warn("prediction pruning failed", "error", err)
		} else if pruned > 0 {
			e.logger.Info("pruned predictions", "dropped", pruned, "cap", e.maxPredictions)
		}
	}

	return rec.ID, nil
}

// EvaluatePrediction settles a prediction once. It returns false when the
// record is missing or already evaluated, and that is not an error.
func (e *Engine) EvaluatePrediction(ctx context.Context, id types.ID, outcome types.Outcome, priceNow float64) (bool, error) {
	rec, err := e.predictions.Get(ctx, id)
	if err != nil {
		return false, err
	}
	if rec == nil || rec.Evaluated() {
		return false, nil
	}

	importance := adjustImportance(rec.Importance, rec.Confidence, outcome)

	changed, err := e.predictions.MarkEvaluated(ctx, id, outcome, priceNow, e.now().UTC(), importance)
	if err != nil {
		return false, err
	}
	if !changed {
		// Lost a race with a concurrent evaluation of the same id.
		return false, nil
	}

	if err := e.scores.Increment(ctx, rec.Backend, outcome); err != nil {
		return true, err
	}

	e.logger.Debug("prediction evaluated",
		"id", id, "backend", rec.Backend, "outcome", outcome, "importance", importance)
	return true, nil
}

// adjustImportance rewards confident correct calls and penalizes misses.
func adjustImportance(current, confidence float64, outcome types.Outcome) float64 {
	switch {
	case outcome == types.OutcomeCorrect && confidence >= 0.7:
		return math.Min(2.0, current+0.3)
	case outcome == types.OutcomeIncorrect:
		return math.Max(0.1, current-0.2)
	default:
		return current
	}
}

// GetRecommendedWeight derives a consensus weight from a backend's
// evaluated accuracy. Backends with fewer than five evaluations keep the
// neutral weight 1.0.
func (e *Engine) GetRecommendedWeight(ctx context.Context, backendName string) (float64, error) {
	entry, err := e.scores.Get(ctx, backendName)
	if err != nil {
		return 1.0, err
	}
	return recommendWeight(*entry), nil
}

func recommendWeight(entry database.ScoreEntry) float64 {
	if entry.Total < minSamplesForWeight {
		return 1.0
	}
	w := 0.4 + 1.2*entry.Accuracy()
	return math.Min(maxRecommendedWeight, math.Max(minRecommendedWeight, w))
}

// ApplyWeights pushes a recommended weight for every scored backend into
// sink and returns the map actually applied.
func (e *Engine) ApplyWeights(ctx context.Context, sink WeightSink) (map[string]float64, error) {
	entries, err := e.scores.List(ctx)
	if err != nil {
		return nil, err
	}

	applied := make(map[string]float64, len(entries))
	for _, entry := range entries {
		w := recommendWeight(entry)
		sink.SetWeight(entry.Backend, w)
		applied[entry.Backend] = w
	}

	if len(applied) > 0 {
		e.logger.Info("applied backend weights", "backends", len(applied))
	}
	return applied, nil
}

// Scores returns the per-backend evaluation tallies.
func (e *Engine) Scores(ctx context.Context) ([]database.ScoreEntry, error) {
	return e.scores.List(ctx)
}

// Patterns exposes the pattern memory.
func (e *Engine) Patterns() *PatternMemory {
	return e.patterns
}

func clamp01(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}
