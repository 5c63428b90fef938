package types

import (
	"encoding/json"
	"fmt"
)

// Direction represents the predicted market direction for a symbol.
type Direction string

const (
	DirectionBullish Direction = "BULLISH"
	DirectionBearish Direction = "BEARISH"
	DirectionNeutral Direction = "NEUTRAL"
)

// String returns the string representation of Direction
func (d Direction) String() string {
	return string(d)
}

// IsValid checks if the Direction is a valid value
func (d Direction) IsValid() bool {
	switch d {
	case DirectionBullish, DirectionBearish, DirectionNeutral:
		return true
	default:
		return false
	}
}

// ParseDirection normalizes a free-form direction string from a model reply.
// Unknown values map to DirectionNeutral rather than erroring, since model
// output is advisory.
func ParseDirection(s string) Direction {
	switch Direction(s) {
	case DirectionBullish, DirectionBearish, DirectionNeutral:
		return Direction(s)
	}
	switch s {
	case "bullish", "up", "UP", "long", "LONG":
		return DirectionBullish
	case "bearish", "down", "DOWN", "short", "SHORT":
		return DirectionBearish
	default:
		return DirectionNeutral
	}
}

// Outcome represents the evaluated result of a prediction against the
// realized market move.
type Outcome string

const (
	OutcomeCorrect   Outcome = "CORRECT"
	OutcomeIncorrect Outcome = "INCORRECT"
	OutcomePartial   Outcome = "PARTIAL"
)

// String returns the string representation of Outcome
func (o Outcome) String() string {
	return string(o)
}

// IsValid checks if the Outcome is a valid value
func (o Outcome) IsValid() bool {
	switch o {
	case OutcomeCorrect, OutcomeIncorrect, OutcomePartial:
		return true
	default:
		return false
	}
}

// UnmarshalJSON implements json.Unmarshaler with validation
func (o *Outcome) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	out := Outcome(str)
	if !out.IsValid() {
		return fmt.Errorf("invalid outcome: %s", str)
	}
	*o = out
	return nil
}

// RiskLevel labels the risk implied by a merged analysis result.
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// String returns the string representation of RiskLevel
func (r RiskLevel) String() string {
	return string(r)
}

// TaskType identifies the kind of analytical task dispatched to backends.
type TaskType string

const (
	TaskTechnicalAnalysis TaskType = "technical_analysis"
	TaskSentiment         TaskType = "sentiment"
	TaskPricePrediction   TaskType = "price_prediction"
	TaskRiskAssessment    TaskType = "risk_assessment"
	TaskMarketOverview    TaskType = "market_overview"
)

// String returns the string representation of TaskType
func (t TaskType) String() string {
	return string(t)
}

// IsValid checks if the TaskType is a valid value
func (t TaskType) IsValid() bool {
	switch t {
	case TaskTechnicalAnalysis, TaskSentiment, TaskPricePrediction,
		TaskRiskAssessment, TaskMarketOverview:
		return true
	default:
		return false
	}
}

// ProviderKind classifies an analytical backend by its provider family.
type ProviderKind string

const (
	ProviderAnthropic ProviderKind = "anthropic"
	ProviderOpenAI    ProviderKind = "openai"
	ProviderGoogle    ProviderKind = "google"
	ProviderMistral   ProviderKind = "mistral"
	ProviderLocal     ProviderKind = "local"
	ProviderRule      ProviderKind = "rule"
)

// String returns the string representation of ProviderKind
func (k ProviderKind) String() string {
	return string(k)
}

// IsValid checks if the ProviderKind is a valid value
func (k ProviderKind) IsValid() bool {
	switch k {
	case ProviderAnthropic, ProviderOpenAI, ProviderGoogle,
		ProviderMistral, ProviderLocal, ProviderRule:
		return true
	default:
		return false
	}
}
