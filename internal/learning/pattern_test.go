package learning

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/signaltrustai/SignalTrust-AI-Scanner-sub000/internal/types"
)

func TestPatternKey_Buckets(t *testing.T) {
	key := PatternKey("btc", map[string]float64{
		"rsi":              25,
		"macd":             -1.2,
		"price_change_24h": 4.0,
	})
	assert.Equal(t, "BTC:rsi=oversold:macd=neg:chg=up", key)

	key = PatternKey("ETH", map[string]float64{"rsi": 50})
	assert.Equal(t, "ETH:rsi=mid:macd=na:chg=na", key)

	// Nearby values collide into the same bucket.
	a := PatternKey("BTC", map[string]float64{"rsi": 72, "macd": 0.5, "price_change_24h": 0.1})
	b := PatternKey("BTC", map[string]float64{"rsi": 85, "macd": 1.9, "price_change_24h": -0.3})
	assert.Equal(t, a, b)
}

func TestPatternMemory_BiasAndCaps(t *testing.T) {
	pm := NewPatternMemory()
	now := time.Now().UTC()

	for i := 0; i < 3; i++ {
		pm.Observe("BTC:rsi=oversold:macd=pos:chg=flat", types.DirectionBullish, now)
	}
	pm.Observe("BTC:rsi=oversold:macd=pos:chg=flat", types.DirectionBearish, now)

	dir, share := pm.Bias("BTC:rsi=oversold:macd=pos:chg=flat")
	assert.Equal(t, types.DirectionBullish, dir)
	assert.InDelta(t, 0.75, share, 1e-9)

	dir, share = pm.Bias("unknown")
	assert.Equal(t, types.DirectionNeutral, dir)
	assert.Zero(t, share)

	// Per-key cap holds.
	for i := 0; i < patternMaxPerKey*2; i++ {
		pm.Observe("ETH:rsi=mid:macd=na:chg=na", types.DirectionBullish, now)
	}
	assert.Len(t, pm.Get("ETH:rsi=mid:macd=na:chg=na"), patternMaxPerKey)
}

func TestPatternMemory_KeyCapEvictsColdest(t *testing.T) {
	pm := NewPatternMemory()
	base := time.Now().UTC()

	for i := 0; i <= patternMaxKeys; i++ {
		key := fmt.Sprintf("SYM%d:rsi=mid:macd=na:chg=na", i)
		pm.Observe(key, types.DirectionBullish, base.Add(time.Duration(i)*time.Second))
	}

	assert.Equal(t, patternMaxKeys, pm.Len())
	assert.Empty(t, pm.Get("SYM0:rsi=mid:macd=na:chg=na"), "coldest key is evicted first")
}

func TestPatternMemory_PruneStale(t *testing.T) {
	pm := NewPatternMemory()
	now := time.Now().UTC()

	// All observations stale.
	pm.Observe("old", types.DirectionBullish, now.Add(-100*24*time.Hour))
	pm.Observe("old", types.DirectionBullish, now.Add(-95*24*time.Hour))

	// Mixed: two live entries survive.
	pm.Observe("mixed", types.DirectionBearish, now.Add(-100*24*time.Hour))
	pm.Observe("mixed", types.DirectionBearish, now.Add(-time.Hour))
	pm.Observe("mixed", types.DirectionBullish, now.Add(-time.Minute))

	// Only one live entry left after filtering: dropped.
	pm.Observe("thin", types.DirectionBullish, now.Add(-100*24*time.Hour))
	pm.Observe("thin", types.DirectionBullish, now.Add(-time.Hour))

	pm.PruneStale(now)

	assert.Empty(t, pm.Get("old"))
	assert.Len(t, pm.Get("mixed"), 2)
	assert.Empty(t, pm.Get("thin"))
	assert.Equal(t, 1, pm.Len())
}
