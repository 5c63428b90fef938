package orchestrator

import (
	"time"

	"github.com/signaltrustai/SignalTrust-AI-Scanner-sub000/internal/backend"
	"github.com/signaltrustai/SignalTrust-AI-Scanner-sub000/internal/types"
)

// Strategy selects how a request is dispatched across backends and how
// their answers are combined.
type Strategy string

const (
	// StrategyConsensus fans out to all backends and runs a weighted
	// majority vote over their directions.
	StrategyConsensus Strategy = "consensus"
	// StrategyFastest races all backends and returns the first success.
	StrategyFastest Strategy = "fastest"
	// StrategySpecialist routes to the preferred provider family for the
	// task type, with explicit fallbacks ending at the rule engine.
	StrategySpecialist Strategy = "specialist"
	// StrategyRedundant fans out to all backends and returns the single
	// most confident success.
	StrategyRedundant Strategy = "redundant"
	// StrategyPipeline runs backends sequentially by priority, each seeing
	// the conclusions of the ones before it.
	StrategyPipeline Strategy = "pipeline"
)

// String returns the string representation of Strategy
func (s Strategy) String() string {
	return string(s)
}

// IsValid checks if the Strategy is a valid value
func (s Strategy) IsValid() bool {
	switch s {
	case StrategyConsensus, StrategyFastest, StrategySpecialist,
		StrategyRedundant, StrategyPipeline:
		return true
	default:
		return false
	}
}

// ParseStrategy validates a strategy name.
func ParseStrategy(s string) (Strategy, error) {
	strategy := Strategy(s)
	if !strategy.IsValid() {
		return "", types.NewError(types.ORCH_UNKNOWN_STRATEGY, "unknown strategy: "+s)
	}
	return strategy, nil
}

// Result is the merged outcome of one orchestrated analysis. All-backends
// failure is expressed as Success=false with a Reason, never as an error to
// the caller.
type Result struct {
	Success    bool            `json:"success"`
	TaskType   types.TaskType  `json:"task_type"`
	Symbol     string          `json:"symbol,omitempty"`
	Direction  types.Direction `json:"direction"`
	Confidence float64         `json:"confidence"`
	RiskLevel  types.RiskLevel `json:"risk_level"`
	KeyFactors []string        `json:"key_factors,omitempty"`
	Summary    string          `json:"summary,omitempty"`
	Raw        string          `json:"raw_response,omitempty"`

	// Backend is the originating (or winning) backend name.
	Backend   string    `json:"backend,omitempty"`
	Strategy  Strategy  `json:"strategy"`
	Timestamp time.Time `json:"timestamp"`

	WorkersAvailable  int     `json:"workers_available"`
	FromCache         bool    `json:"from_cache"`
	AgreementRatio    float64 `json:"agreement_ratio,omitempty"`
	AlternativesCount int     `json:"alternatives_count,omitempty"`
	PipelineStages    int     `json:"pipeline_stages,omitempty"`

	// Reason explains a Success=false result.
	Reason string `json:"reason,omitempty"`
}

// resultFromVerdict lifts a single backend verdict into a merged result.
func resultFromVerdict(v *backend.Verdict, backendName string, req backend.AnalysisRequest) *Result {
	return &Result{
		Success:    true,
		TaskType:   req.TaskType,
		Symbol:     req.Symbol,
		Direction:  v.Direction,
		Confidence: v.Confidence,
		KeyFactors: v.KeyFactors,
		Summary:    v.Summary,
		Raw:        v.Raw,
		Backend:    backendName,
	}
}

// failureResult builds the structured all-backends-failure result.
func failureResult(req backend.AnalysisRequest, reason string) *Result {
	return &Result{
		Success:   false,
		TaskType:  req.TaskType,
		Symbol:    req.Symbol,
		Direction: types.DirectionNeutral,
		RiskLevel: types.RiskHigh,
		Reason:    reason,
	}
}
