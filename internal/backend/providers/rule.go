package providers

import (
	"context"
	"fmt"
	"math"

	"github.com/signaltrustai/SignalTrust-AI-Scanner-sub000/internal/backend"
	"github.com/signaltrustai/SignalTrust-AI-Scanner-sub000/internal/types"
)

// RuleConfig holds the tuning knobs of the rule engine. These are product
// tuning values, kept configurable rather than frozen into the code.
type RuleConfig struct {
	OversoldRSI        float64 `json:"oversold_rsi" mapstructure:"oversold_rsi"`
	OverboughtRSI      float64 `json:"overbought_rsi" mapstructure:"overbought_rsi"`
	DirectionThreshold float64 `json:"direction_threshold" mapstructure:"direction_threshold"`
	RSIWeight          float64 `json:"rsi_weight" mapstructure:"rsi_weight"`
	MACDWeight         float64 `json:"macd_weight" mapstructure:"macd_weight"`
	CrossWeight        float64 `json:"cross_weight" mapstructure:"cross_weight"`
	VolumeWeight       float64 `json:"volume_weight" mapstructure:"volume_weight"`
	SentimentWeight    float64 `json:"sentiment_weight" mapstructure:"sentiment_weight"`
}

// DefaultRuleConfig returns the production rule-engine tuning.
func DefaultRuleConfig() RuleConfig {
	return RuleConfig{
		OversoldRSI:        30,
		OverboughtRSI:      70,
		DirectionThreshold: 20,
		RSIWeight:          25,
		MACDWeight:         15,
		CrossWeight:        15,
		VolumeWeight:       10,
		SentimentWeight:    15,
	}
}

// RuleProvider is the deterministic technical-rules backend. It is
// zero-latency, zero-cost, and always available, which makes it the designed
// degradation path when every vendor backend is down.
type RuleProvider struct {
	cfg RuleConfig
}

// NewRule creates the rule-based backend.
func NewRule(cfg RuleConfig) *RuleProvider {
	if cfg == (RuleConfig{}) {
		cfg = DefaultRuleConfig()
	}
	return &RuleProvider{cfg: cfg}
}

// Name returns the provider name
func (p *RuleProvider) Name() string {
	return "rule"
}

// Kind returns the provider family
func (p *RuleProvider) Kind() types.ProviderKind {
	return types.ProviderRule
}

// Health always reports healthy: the rule engine is pure computation.
func (p *RuleProvider) Health(ctx context.Context) types.HealthStatus {
	return types.Healthy("rule engine ready")
}

// Analyze scores the technical fields in req.Data through fixed weighted
// rules. The score is bounded to [-100, 100], mapped to a direction via the
// configured threshold, with confidence = min(0.95, 0.4 + |score|/120).
func (p *RuleProvider) Analyze(ctx context.Context, req backend.AnalysisRequest) (*backend.Verdict, error) {
	var score float64
	var factors []string

	if rsi, ok := getFloat(req.Data, "rsi"); ok {
		switch {
		case rsi < p.cfg.OversoldRSI:
			score += p.cfg.RSIWeight
			factors = append(factors, fmt.Sprintf("oversold RSI (%.1f)", rsi))
		case rsi > p.cfg.OverboughtRSI:
			score -= p.cfg.RSIWeight
			factors = append(factors, fmt.Sprintf("overbought RSI (%.1f)", rsi))
		}
	}

	if macd, ok := getFloat(req.Data, "macd"); ok {
		if signal, ok := getFloat(req.Data, "macd_signal"); ok {
			if macd > signal {
				score += p.cfg.MACDWeight
				factors = append(factors, "bullish MACD cross")
			} else if macd < signal {
				score -= p.cfg.MACDWeight
				factors = append(factors, "bearish MACD cross")
			}
		}
	}

	if ma50, ok := getFloat(req.Data, "ma_50"); ok {
		if ma200, ok := getFloat(req.Data, "ma_200"); ok {
			if ma50 > ma200 {
				score += p.cfg.CrossWeight
				factors = append(factors, "golden cross (MA50 > MA200)")
			} else if ma50 < ma200 {
				score -= p.cfg.CrossWeight
				factors = append(factors, "death cross (MA50 < MA200)")
			}
		}
	}

	priceChange, hasPrice := getFloat(req.Data, "price_change_24h")
	if hasPrice {
		// Each percent of movement is worth two points, capped at +/-20.
		contribution := clampFloat(priceChange*2, -20, 20)
		score += contribution
		if math.Abs(priceChange) >= 2 {
			factors = append(factors, fmt.Sprintf("24h price change %.1f%%", priceChange))
		}
	}

	if volChange, ok := getFloat(req.Data, "volume_change_24h"); ok && volChange > 50 {
		if hasPrice && priceChange > 0 {
			score += p.cfg.VolumeWeight
			factors = append(factors, "volume surge confirming move")
		} else if hasPrice && priceChange < 0 {
			score -= p.cfg.VolumeWeight
			factors = append(factors, "volume surge on selloff")
		}
	}

	if sentiment, ok := getFloat(req.Data, "sentiment_score"); ok {
		score += clampFloat(sentiment, -1, 1) * p.cfg.SentimentWeight
		if math.Abs(sentiment) >= 0.5 {
			factors = append(factors, fmt.Sprintf("sentiment score %.2f", sentiment))
		}
	}

	score = clampFloat(score, -100, 100)

	direction := types.DirectionNeutral
	if score >= p.cfg.DirectionThreshold {
		direction = types.DirectionBullish
	} else if score <= -p.cfg.DirectionThreshold {
		direction = types.DirectionBearish
	}

	confidence := math.Min(0.95, 0.4+math.Abs(score)/120)

	if len(factors) == 0 {
		factors = append(factors, "no significant technical signals")
	}

	return &backend.Verdict{
		Kind:       backend.VerdictStructured,
		Direction:  direction,
		Confidence: confidence,
		KeyFactors: factors,
		Summary:    fmt.Sprintf("rule engine score %.0f for %s", score, req.Symbol),
		Extra:      map[string]any{"score": score},
	}, nil
}

func getFloat(data map[string]any, key string) (float64, bool) {
	if data == nil {
		return 0, false
	}
	switch v := data[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

func clampFloat(f, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, f))
}
