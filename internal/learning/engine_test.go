package learning

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signaltrustai/SignalTrust-AI-Scanner-sub000/internal/database"
	"github.com/signaltrustai/SignalTrust-AI-Scanner-sub000/internal/types"
)

// stubFeed serves canned 24h changes per symbol.
type stubFeed struct {
	changes map[string]float64
	err     error
	calls   int
}

func (s *stubFeed) Name() string { return "stub" }

func (s *stubFeed) GetPercentChange24h(ctx context.Context, symbol string) (float64, error) {
	s.calls++
	if s.err != nil {
		return 0, s.err
	}
	change, ok := s.changes[symbol]
	if !ok {
		return 0, errors.New("unknown symbol")
	}
	return change, nil
}

// stubSink records applied weights.
type stubSink struct {
	weights map[string]float64
}

func (s *stubSink) SetWeight(name string, w float64) {
	if s.weights == nil {
		s.weights = make(map[string]float64)
	}
	s.weights[name] = w
}

type testFixture struct {
	engine      *Engine
	predictions database.PredictionDAO
	scores      database.ScoreDAO
	archives    database.ArchiveDAO
	db          *database.DB
}

func setupEngine(t *testing.T, feed *stubFeed, opts ...Option) *testFixture {
	t.Helper()

	db, err := database.Open(filepath.Join(t.TempDir(), "learn.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.NewMigrator(db).Migrate(context.Background()))

	predictions := database.NewPredictionDAO(db)
	scores := database.NewScoreDAO(db)

	opts = append([]Option{WithLogger(slog.New(slog.DiscardHandler))}, opts...)

	var engine *Engine
	if feed != nil {
		engine = NewEngine(predictions, scores, feed, opts...)
	} else {
		engine = NewEngine(predictions, scores, nil, opts...)
	}

	return &testFixture{
		engine:      engine,
		predictions: predictions,
		scores:      scores,
		archives:    database.NewArchiveDAO(db),
		db:          db,
	}
}

func bullishInput(symbol, backendName string, confidence float64) RecordInput {
	return RecordInput{
		Symbol:     symbol,
		Direction:  types.DirectionBullish,
		Confidence: confidence,
		Backend:    backendName,
		Strategy:   "consensus",
		PriceAt:    100,
	}
}

func TestRecordPrediction_CreatesPendingRecord(t *testing.T) {
	fx := setupEngine(t, nil)
	ctx := context.Background()

	id, err := fx.engine.RecordPrediction(ctx, bullishInput("BTC", "anthropic", 0.8))
	require.NoError(t, err)
	require.False(t, id.IsZero())

	rec, err := fx.predictions.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, 1.0, rec.Importance)
	assert.False(t, rec.Evaluated())
	assert.Equal(t, types.DirectionBullish, rec.Direction)
}

func TestEvaluatePrediction_Idempotent(t *testing.T) {
	fx := setupEngine(t, nil)
	ctx := context.Background()

	id, err := fx.engine.RecordPrediction(ctx, bullishInput("BTC", "anthropic", 0.8))
	require.NoError(t, err)

	changed, err := fx.engine.EvaluatePrediction(ctx, id, types.OutcomeCorrect, 110)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = fx.engine.EvaluatePrediction(ctx, id, types.OutcomeIncorrect, 90)
	require.NoError(t, err)
	assert.False(t, changed, "second evaluation must be a no-op")

	entry, err := fx.scores.Get(ctx, "anthropic")
	require.NoError(t, err)
	assert.Equal(t, 1, entry.Correct)
	assert.Equal(t, 1, entry.Total, "counters change exactly once")

	changed, err = fx.engine.EvaluatePrediction(ctx, types.ID("missing"), types.OutcomeCorrect, 1)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestEvaluatePrediction_ImportanceAdjustment(t *testing.T) {
	tests := []struct {
		name       string
		confidence float64
		outcome    types.Outcome
		want       float64
	}{
		{"confident correct gains", 0.8, types.OutcomeCorrect, 1.3},
		{"timid correct unchanged", 0.5, types.OutcomeCorrect, 1.0},
		{"incorrect loses", 0.8, types.OutcomeIncorrect, 0.8},
		{"partial unchanged", 0.9, types.OutcomePartial, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := setupEngine(t, nil)
			ctx := context.Background()

			id, err := fx.engine.RecordPrediction(ctx, bullishInput("BTC", "anthropic", tt.confidence))
			require.NoError(t, err)

			_, err = fx.engine.EvaluatePrediction(ctx, id, tt.outcome, 105)
			require.NoError(t, err)

			rec, err := fx.predictions.Get(ctx, id)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, rec.Importance, 1e-9)
		})
	}
}

func TestAdjustImportance_Bounds(t *testing.T) {
	assert.Equal(t, 2.0, adjustImportance(1.9, 0.9, types.OutcomeCorrect))
	assert.Equal(t, 0.1, adjustImportance(0.2, 0.9, types.OutcomeIncorrect))
}

func TestRecommendedWeight_NeutralBelowFiveSamples(t *testing.T) {
	fx := setupEngine(t, nil)
	ctx := context.Background()

	// First four correct evaluations keep the neutral prior.
	for i := 0; i < 4; i++ {
		id, err := fx.engine.RecordPrediction(ctx, bullishInput("BTC", "A", 0.8))
		require.NoError(t, err)
		_, err = fx.engine.EvaluatePrediction(ctx, id, types.OutcomeCorrect, 110)
		require.NoError(t, err)
	}

	w, err := fx.engine.GetRecommendedWeight(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, 1.0, w)

	// The fifth crosses the evidence floor: 0.4 + 1.2*1.0 = 1.6.
	id, err := fx.engine.RecordPrediction(ctx, bullishInput("BTC", "A", 0.8))
	require.NoError(t, err)
	_, err = fx.engine.EvaluatePrediction(ctx, id, types.OutcomeCorrect, 110)
	require.NoError(t, err)

	w, err = fx.engine.GetRecommendedWeight(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, 1.6, w)
}

func TestRecommendedWeight_MonotonicInAccuracy(t *testing.T) {
	better := database.ScoreEntry{Backend: "A", Correct: 8, Incorrect: 2, Total: 10}
	worse := database.ScoreEntry{Backend: "B", Correct: 5, Incorrect: 5, Total: 10}

	assert.GreaterOrEqual(t, recommendWeight(better), recommendWeight(worse))
	assert.InDelta(t, 0.4+1.2*0.8, recommendWeight(better), 1e-9)
	assert.InDelta(t, 0.4+1.2*0.5, recommendWeight(worse), 1e-9)

	// Clamp floor: a hopeless backend never drops below 0.4.
	hopeless := database.ScoreEntry{Backend: "C", Incorrect: 10, Total: 10}
	assert.Equal(t, 0.4, recommendWeight(hopeless))
}

func TestApplyWeights_PushesEveryScoredBackend(t *testing.T) {
	fx := setupEngine(t, nil)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		id, err := fx.engine.RecordPrediction(ctx, bullishInput("BTC", "A", 0.8))
		require.NoError(t, err)
		_, err = fx.engine.EvaluatePrediction(ctx, id, types.OutcomeCorrect, 110)
		require.NoError(t, err)
	}
	id, err := fx.engine.RecordPrediction(ctx, bullishInput("ETH", "B", 0.6))
	require.NoError(t, err)
	_, err = fx.engine.EvaluatePrediction(ctx, id, types.OutcomeIncorrect, 90)
	require.NoError(t, err)

	sink := &stubSink{}
	applied, err := fx.engine.ApplyWeights(ctx, sink)
	require.NoError(t, err)

	assert.Equal(t, 1.6, applied["A"])
	assert.Equal(t, 1.0, applied["B"], "one sample keeps the neutral prior")
	assert.Equal(t, applied, sink.weights)
}

func TestClassifyOutcome(t *testing.T) {
	tests := []struct {
		name      string
		predicted types.Direction
		change    float64
		want      types.Outcome
	}{
		{"bullish call, big rally", types.DirectionBullish, 5.0, types.OutcomeCorrect},
		{"bullish call, big drop", types.DirectionBullish, -5.0, types.OutcomeIncorrect},
		{"bullish call, flat market", types.DirectionBullish, 1.0, types.OutcomePartial},
		{"neutral call, rally", types.DirectionNeutral, 5.0, types.OutcomePartial},
		{"neutral call, flat", types.DirectionNeutral, 0.5, types.OutcomeCorrect},
		{"bearish call, drop at threshold", types.DirectionBearish, -2.0, types.OutcomeCorrect},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyOutcome(tt.predicted, tt.change))
		})
	}
}

func TestEvolve_ScoresOverduePredictions(t *testing.T) {
	feed := &stubFeed{changes: map[string]float64{"BTC": 5.0}}

	past := time.Now().UTC().Add(-48 * time.Hour)
	clock := past
	fx := setupEngine(t, feed, WithClock(func() time.Time { return clock }))
	ctx := context.Background()

	id, err := fx.engine.RecordPrediction(ctx, bullishInput("BTC", "anthropic", 0.8))
	require.NoError(t, err)

	// Advance past the evaluation age.
	clock = time.Now().UTC()

	sink := &stubSink{}
	report, err := fx.engine.Evolve(ctx, sink)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Examined)
	assert.Equal(t, 1, report.Evaluated)
	assert.Equal(t, 0, report.Pending)

	rec, err := fx.predictions.Get(ctx, id)
	require.NoError(t, err)
	require.True(t, rec.Evaluated())
	assert.Equal(t, types.OutcomeCorrect, *rec.Outcome)
	assert.InDelta(t, 105.0, *rec.PriceAtEval, 1e-9)
	assert.Contains(t, report.Weights, "anthropic")
}

func TestEvolve_FeedFailureLeavesPending(t *testing.T) {
	feed := &stubFeed{err: errors.New("feed down")}

	clock := time.Now().UTC().Add(-48 * time.Hour)
	fx := setupEngine(t, feed, WithClock(func() time.Time { return clock }))
	ctx := context.Background()

	id, err := fx.engine.RecordPrediction(ctx, bullishInput("BTC", "anthropic", 0.8))
	require.NoError(t, err)
	_, err = fx.engine.RecordPrediction(ctx, bullishInput("BTC", "openai", 0.6))
	require.NoError(t, err)

	clock = time.Now().UTC()

	report, err := fx.engine.Evolve(ctx, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Examined)
	assert.Equal(t, 0, report.Evaluated)
	assert.Equal(t, 2, report.Pending)
	assert.Equal(t, 1, feed.calls, "one failed lookup per symbol per run")

	rec, err := fx.predictions.Get(ctx, id)
	require.NoError(t, err)
	assert.False(t, rec.Evaluated(), "feed failure must never guess an outcome")
}

func TestEvolve_FreshPredictionsNotTouched(t *testing.T) {
	feed := &stubFeed{changes: map[string]float64{"BTC": 5.0}}
	fx := setupEngine(t, feed)
	ctx := context.Background()

	_, err := fx.engine.RecordPrediction(ctx, bullishInput("BTC", "anthropic", 0.8))
	require.NoError(t, err)

	report, err := fx.engine.Evolve(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Examined)
	assert.Equal(t, 0, feed.calls)
}

func TestPrune_KeepsHighValueRecords(t *testing.T) {
	clock := time.Now().UTC()
	fx := setupEngine(t, nil,
		WithMaxPredictions(3),
		WithClock(func() time.Time { return clock }))
	ctx := context.Background()

	// An old but confident correct call.
	clock = clock.Add(-20 * 24 * time.Hour)
	keeper, err := fx.engine.RecordPrediction(ctx, bullishInput("BTC", "A", 0.9))
	require.NoError(t, err)
	_, err = fx.engine.EvaluatePrediction(ctx, keeper, types.OutcomeCorrect, 120)
	require.NoError(t, err)

	// Old unevaluated noise, penalized by the retention score.
	var noise []types.ID
	for i := 0; i < 3; i++ {
		clock = clock.Add(time.Minute)
		id, err := fx.engine.RecordPrediction(ctx, bullishInput("DOGE", "B", 0.3))
		require.NoError(t, err)
		noise = append(noise, id)
	}

	// A fresh record pushes the set over the cap and triggers pruning.
	clock = time.Now().UTC()
	fresh, err := fx.engine.RecordPrediction(ctx, bullishInput("ETH", "C", 0.7))
	require.NoError(t, err)

	count, err := fx.predictions.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count, "pruning keeps exactly the cap")

	kept, err := fx.predictions.Get(ctx, keeper)
	require.NoError(t, err)
	assert.NotNil(t, kept, "old confident correct call outranks recent noise")

	keptFresh, err := fx.predictions.Get(ctx, fresh)
	require.NoError(t, err)
	assert.NotNil(t, keptFresh)

	survivors := 0
	for _, id := range noise {
		rec, err := fx.predictions.Get(ctx, id)
		require.NoError(t, err)
		if rec != nil {
			survivors++
		}
	}
	assert.Equal(t, 1, survivors)
}

func TestRetentionScore(t *testing.T) {
	now := time.Now().UTC()
	correct := types.OutcomeCorrect
	partial := types.OutcomePartial

	recentConfidentCorrect := database.PredictionRecord{
		Confidence: 0.8, Importance: 1.3, CreatedAt: now.Add(-time.Hour), Outcome: &correct,
	}
	assert.InDelta(t, 1.3+1.0+1.5, retentionScore(recentConfidentCorrect, now), 1e-9)

	oldPartial := database.PredictionRecord{
		Confidence: 0.5, Importance: 1.0, CreatedAt: now.Add(-10*24*time.Hour), Outcome: &partial,
	}
	assert.InDelta(t, 1.0+0.3, retentionScore(oldPartial, now), 1e-9)

	stalePending := database.PredictionRecord{
		Confidence: 0.5, Importance: 1.0, CreatedAt: now.Add(-10 * 24 * time.Hour),
	}
	assert.InDelta(t, 1.0-0.5, retentionScore(stalePending, now), 1e-9)
}
