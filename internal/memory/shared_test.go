package memory

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signaltrustai/SignalTrust-AI-Scanner-sub000/internal/types"
)

func TestSharedContext_StoreAndGet(t *testing.T) {
	s := NewSharedContext(10)

	snap := Snapshot{
		Direction:  types.DirectionBullish,
		Confidence: 0.8,
		Backend:    "anthropic",
		Timestamp:  time.Now(),
	}
	s.Store(AnalysisKey("BTC", types.TaskTechnicalAnalysis), snap, time.Minute)

	got, ok := s.Get("analysis:BTC:technical_analysis")
	require.True(t, ok)
	assert.Equal(t, snap, got)

	_, ok = s.Get("analysis:ETH:technical_analysis")
	assert.False(t, ok)
}

func TestSharedContext_ExpiredEntryIsRemoved(t *testing.T) {
	s := NewSharedContext(10)
	s.Store("analysis:BTC:sentiment", "v", 10*time.Millisecond)

	time.Sleep(20 * time.Millisecond)

	_, ok := s.Get("analysis:BTC:sentiment")
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len())
}

func TestSharedContext_LRUEviction(t *testing.T) {
	s := NewSharedContext(3)

	for i := 0; i < 3; i++ {
		s.Store(fmt.Sprintf("analysis:S%d:sentiment", i), i, time.Minute)
	}

	// Touch the first so the second becomes the eviction candidate.
	_, ok := s.Get("analysis:S0:sentiment")
	require.True(t, ok)

	s.Store("analysis:S3:sentiment", 3, time.Minute)

	_, ok = s.Get("analysis:S1:sentiment")
	assert.False(t, ok)

	for _, k := range []string{"analysis:S0:sentiment", "analysis:S2:sentiment", "analysis:S3:sentiment"} {
		_, ok := s.Get(k)
		assert.True(t, ok, k)
	}
}

func TestSharedContext_GetRecent(t *testing.T) {
	s := NewSharedContext(20)

	s.Store("analysis:BTC:sentiment", "old", time.Minute)
	s.Store("signal:BTC:breakout", "noise", time.Minute)
	s.Store("analysis:BTC:technical_analysis", "new", time.Minute)
	s.Store("analysis:ETH:sentiment", "other symbol", time.Minute)

	got := s.GetRecent("analysis:BTC:", 10)
	require.Len(t, got, 2)
	// Newest first.
	assert.Equal(t, "analysis:BTC:technical_analysis", got[0].Key)
	assert.Equal(t, "analysis:BTC:sentiment", got[1].Key)
}

func TestSharedContext_GetRecentOrderSurvivesTouches(t *testing.T) {
	s := NewSharedContext(20)

	s.Store("analysis:BTC:sentiment", "old", time.Minute)
	time.Sleep(2 * time.Millisecond)
	s.Store("analysis:BTC:technical_analysis", "new", time.Minute)

	// Promoting the older entry in the eviction queue must not make it
	// look newer than entries stored after it.
	_, ok := s.Get("analysis:BTC:sentiment")
	require.True(t, ok)

	got := s.GetRecent("analysis:BTC:", 10)
	require.Len(t, got, 2)
	assert.Equal(t, "analysis:BTC:technical_analysis", got[0].Key)
	assert.Equal(t, "analysis:BTC:sentiment", got[1].Key)
}

func TestSharedContext_GetRecentSkipsExpired(t *testing.T) {
	s := NewSharedContext(20)

	s.Store("analysis:BTC:sentiment", "dying", 10*time.Millisecond)
	s.Store("analysis:BTC:technical_analysis", "alive", time.Minute)

	time.Sleep(20 * time.Millisecond)

	got := s.GetRecent("analysis:BTC:", 10)
	require.Len(t, got, 1)
	assert.Equal(t, "alive", got[0].Value)
	// Expired entry swept during the scan.
	assert.Equal(t, 1, s.Len())
}

func TestSharedContext_GetRecentLimit(t *testing.T) {
	s := NewSharedContext(20)
	for i := 0; i < 8; i++ {
		s.Store(fmt.Sprintf("signal:BTC:s%d", i), i, time.Minute)
	}

	assert.Len(t, s.GetRecent("signal:BTC:", 3), 3)
	assert.Nil(t, s.GetRecent("signal:BTC:", 0))
}

func TestSharedContext_GetSymbolContext(t *testing.T) {
	s := NewSharedContext(20)

	s.Store("analysis:BTC:sentiment", "a", time.Minute)
	s.Store("prediction:BTC:price_prediction", "p", time.Minute)
	s.Store("signal:BTC:volume_spike", "s", time.Minute)
	s.Store("analysis:ETH:sentiment", "other", time.Minute)

	ctx := s.GetSymbolContext("BTC")
	assert.Len(t, ctx.RecentAnalyses, 1)
	assert.Len(t, ctx.RecentPredictions, 1)
	assert.Len(t, ctx.RecentSignals, 1)

	empty := s.GetSymbolContext("DOGE")
	assert.Empty(t, empty.RecentAnalyses)
	assert.Empty(t, empty.RecentPredictions)
	assert.Empty(t, empty.RecentSignals)
}
