package providers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signaltrustai/SignalTrust-AI-Scanner-sub000/internal/backend"
	"github.com/signaltrustai/SignalTrust-AI-Scanner-sub000/internal/types"
)

func ruleAnalyze(t *testing.T, data map[string]any) *backend.Verdict {
	t.Helper()
	p := NewRule(DefaultRuleConfig())
	v, err := p.Analyze(context.Background(), backend.AnalysisRequest{
		TaskType: types.TaskTechnicalAnalysis,
		Symbol:   "BTC",
		Data:     data,
	})
	require.NoError(t, err)
	require.True(t, v.IsStructured())
	return v
}

func TestRuleProvider_BullishSetup(t *testing.T) {
	v := ruleAnalyze(t, map[string]any{
		"rsi":         25.0, // oversold: +25
		"macd":        1.2,
		"macd_signal": 0.8, // bullish cross: +15
		"ma_50":       105.0,
		"ma_200":      100.0, // golden cross: +15
	})

	assert.Equal(t, types.DirectionBullish, v.Direction)
	assert.Equal(t, 55.0, v.Extra["score"])
	// min(0.95, 0.4 + 55/120)
	assert.InDelta(t, 0.8583, v.Confidence, 1e-3)
	assert.Contains(t, v.KeyFactors, "bullish MACD cross")
	assert.Contains(t, v.KeyFactors, "golden cross (MA50 > MA200)")
}

func TestRuleProvider_BearishSetup(t *testing.T) {
	v := ruleAnalyze(t, map[string]any{
		"rsi":               78.0, // overbought: -25
		"macd":              -0.5,
		"macd_signal":       0.2,   // bearish cross: -15
		"ma_50":             95.0,  // death cross: -15
		"ma_200":            100.0,
		"price_change_24h":  -6.0, // -12
		"volume_change_24h": 80.0, // surge on selloff: -10
	})

	assert.Equal(t, types.DirectionBearish, v.Direction)
	assert.Equal(t, -77.0, v.Extra["score"])
	assert.Contains(t, v.KeyFactors, "volume surge on selloff")
}

func TestRuleProvider_NeutralInsideThreshold(t *testing.T) {
	v := ruleAnalyze(t, map[string]any{
		"macd":        1.0,
		"macd_signal": 0.5, // +15, below the +/-20 threshold
	})

	assert.Equal(t, types.DirectionNeutral, v.Direction)
	assert.Equal(t, 15.0, v.Extra["score"])
}

func TestRuleProvider_EmptyData(t *testing.T) {
	v := ruleAnalyze(t, nil)

	assert.Equal(t, types.DirectionNeutral, v.Direction)
	assert.Equal(t, 0.0, v.Extra["score"])
	assert.InDelta(t, 0.4, v.Confidence, 1e-9)
	assert.Equal(t, []string{"no significant technical signals"}, v.KeyFactors)
}

func TestRuleProvider_ScoreBounded(t *testing.T) {
	v := ruleAnalyze(t, map[string]any{
		"rsi":               20.0,
		"macd":              2.0,
		"macd_signal":       0.1,
		"ma_50":             120.0,
		"ma_200":            100.0,
		"price_change_24h":  40.0, // capped at +20
		"volume_change_24h": 200.0,
		"sentiment_score":   1.0,
	})

	score := v.Extra["score"].(float64)
	assert.LessOrEqual(t, score, 100.0)
	assert.Equal(t, types.DirectionBullish, v.Direction)
	assert.LessOrEqual(t, v.Confidence, 0.95)
}

func TestRuleProvider_ConfidenceCap(t *testing.T) {
	// |score| of 100 would give 0.4 + 100/120 = 1.23 without the cap.
	v := ruleAnalyze(t, map[string]any{
		"rsi":               20.0,
		"macd":              2.0,
		"macd_signal":       0.1,
		"ma_50":             120.0,
		"ma_200":            100.0,
		"price_change_24h":  40.0,
		"volume_change_24h": 200.0,
		"sentiment_score":   1.0,
	})
	assert.Equal(t, 0.95, v.Confidence)
}

func TestRuleProvider_AlwaysHealthy(t *testing.T) {
	p := NewRule(RuleConfig{})
	assert.True(t, p.Health(context.Background()).IsHealthy())
	assert.Equal(t, types.ProviderRule, p.Kind())
	assert.Equal(t, "rule", p.Name())
}

func TestRuleProvider_IntegerInputs(t *testing.T) {
	v := ruleAnalyze(t, map[string]any{"rsi": 25})
	assert.Equal(t, 25.0, v.Extra["score"])
}
