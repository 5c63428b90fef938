// Package orchestrator dispatches one analytical task to every registered
// backend under a selectable strategy, merges the answers, and maintains the
// response cache and shared analysis context around each call.
package orchestrator

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/signaltrustai/SignalTrust-AI-Scanner-sub000/internal/backend"
	"github.com/signaltrustai/SignalTrust-AI-Scanner-sub000/internal/cache"
	"github.com/signaltrustai/SignalTrust-AI-Scanner-sub000/internal/memory"
	"github.com/signaltrustai/SignalTrust-AI-Scanner-sub000/internal/types"
)

// Defaults for orchestrator tuning knobs.
const (
	DefaultMaxWorkers = 8
	DefaultTimeout    = 45 * time.Second
	DefaultCacheTTL   = 5 * time.Minute
	DefaultContextTTL = 15 * time.Minute
)

// DefaultSpecialistRouting maps each task type to its preferred provider
// family. Product tuning, overridable via WithSpecialistRouting.
func DefaultSpecialistRouting() map[types.TaskType]types.ProviderKind {
	return map[types.TaskType]types.ProviderKind{
		types.TaskTechnicalAnalysis: types.ProviderRule,
		types.TaskSentiment:         types.ProviderAnthropic,
		types.TaskPricePrediction:   types.ProviderGoogle,
		types.TaskRiskAssessment:    types.ProviderOpenAI,
		types.TaskMarketOverview:    types.ProviderMistral,
	}
}

// Orchestrator owns the worker pool and runs one dispatch strategy per
// request. It is constructed once at process start and passed by handle;
// there is no package-level singleton.
type Orchestrator struct {
	registry  *backend.Registry
	cache     *cache.ResponseCache
	sharedCtx *memory.SharedContext
	pool      *semaphore.Weighted
	logger    *slog.Logger

	weights *weightTable

	defaultTimeout time.Duration
	cacheTTL       time.Duration
	contextTTL     time.Duration
	riskLowAbove   float64
	riskHighBelow  float64
	routing        map[types.TaskType]types.ProviderKind
}

// Option is a functional option for configuring the Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithCache sets the response cache. Default: a cache.New(DefaultMaxEntries).
func WithCache(c *cache.ResponseCache) Option {
	return func(o *Orchestrator) {
		if c != nil {
			o.cache = c
		}
	}
}

// WithSharedContext sets the shared analysis context store.
func WithSharedContext(s *memory.SharedContext) Option {
	return func(o *Orchestrator) {
		if s != nil {
			o.sharedCtx = s
		}
	}
}

// WithMaxWorkers bounds the number of backend calls running in parallel.
// Default: DefaultMaxWorkers.
func WithMaxWorkers(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.pool = semaphore.NewWeighted(int64(n))
		}
	}
}

// WithDefaultTimeout sets the deadline applied when Analyze is called with
// timeout <= 0. Default: DefaultTimeout.
func WithDefaultTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.defaultTimeout = d
		}
	}
}

// WithCacheTTL sets the write-through cache entry lifetime.
func WithCacheTTL(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.cacheTTL = d
		}
	}
}

// WithContextTTL sets the shared-context entry lifetime.
func WithContextTTL(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.contextTTL = d
		}
	}
}

// WithRiskThresholds sets the merged-confidence cutoffs for the risk label:
// confidence above lowAbove is LOW risk, below highBelow is HIGH.
// Defaults: 0.75 and 0.45.
func WithRiskThresholds(lowAbove, highBelow float64) Option {
	return func(o *Orchestrator) {
		if lowAbove > highBelow {
			o.riskLowAbove = lowAbove
			o.riskHighBelow = highBelow
		}
	}
}

// WithSpecialistRouting replaces the task-type to provider-kind routing table.
func WithSpecialistRouting(routing map[types.TaskType]types.ProviderKind) Option {
	return func(o *Orchestrator) {
		if len(routing) > 0 {
			o.routing = routing
		}
	}
}

// New creates an Orchestrator over the given worker registry.
func New(registry *backend.Registry, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		registry:       registry,
		cache:          cache.New(cache.DefaultMaxEntries),
		sharedCtx:      memory.NewSharedContext(memory.DefaultMaxEntries),
		pool:           semaphore.NewWeighted(DefaultMaxWorkers),
		logger:         slog.Default(),
		weights:        newWeightTable(),
		defaultTimeout: DefaultTimeout,
		cacheTTL:       DefaultCacheTTL,
		contextTTL:     DefaultContextTTL,
		riskLowAbove:   0.75,
		riskHighBelow:  0.45,
		routing:        DefaultSpecialistRouting(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Registry exposes the worker registry for wiring and stats surfaces.
func (o *Orchestrator) Registry() *backend.Registry {
	return o.registry
}

// Cache exposes the response cache for stats surfaces.
func (o *Orchestrator) Cache() *cache.ResponseCache {
	return o.cache
}

// SharedContext exposes the shared analysis context.
func (o *Orchestrator) SharedContext() *memory.SharedContext {
	return o.sharedCtx
}

// SetWeight updates the consensus weight for a backend, clamped to
// [0.1, 2.0]. Weights are pure policy input: changing them invalidates
// neither cache nor context.
func (o *Orchestrator) SetWeight(name string, w float64) {
	o.weights.set(name, w)
}

// GetWeight returns the consensus weight for a backend (1.0 if never set).
func (o *Orchestrator) GetWeight(name string) float64 {
	return o.weights.get(name)
}

// Weights returns a copy of the current weight map.
func (o *Orchestrator) Weights() map[string]float64 {
	return o.weights.snapshot()
}

// Analyze runs one analytical task under the selected strategy, bounded by
// timeout (the default when timeout <= 0). The result is always non-nil:
// all-backends failure comes back as Success=false, never as an error.
func (o *Orchestrator) Analyze(ctx context.Context, req backend.AnalysisRequest, strategy Strategy, timeout time.Duration) *Result {
	if timeout <= 0 {
		timeout = o.defaultTimeout
	}

	if cached, ok := o.cache.Get(req.TaskType, req.Prompt, req.Data); ok {
		if res, ok := cached.(*Result); ok {
			hit := *res
			hit.FromCache = true
			o.logger.Debug("cache hit", "task", req.TaskType, "symbol", req.Symbol)
			return &hit
		}
	}

	if req.Symbol != "" && req.Context == nil {
		req.Context = o.buildContextBundle(req.Symbol)
	}

	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	workers := o.registry.List()
	if len(workers) == 0 {
		return o.finish(failureResult(req, "no backends registered"), req, strategy)
	}

	var result *Result
	switch strategy {
	case StrategyConsensus:
		result = o.runConsensus(cctx, workers, req)
	case StrategyFastest:
		result = o.runFastest(cctx, workers, req)
	case StrategySpecialist:
		result = o.runSpecialist(cctx, workers, req)
	case StrategyRedundant:
		result = o.runRedundant(cctx, workers, req)
	case StrategyPipeline:
		result = o.runPipeline(cctx, workers, req)
	default:
		result = failureResult(req, "unknown strategy: "+string(strategy))
	}

	return o.finish(result, req, strategy)
}

// finish annotates the result, writes through the cache, and appends the
// compact summary to the shared context. Write ordering against concurrent
// Analyze calls for the same key is last-writer-wins: these are advisory
// stores, not systems of record.
func (o *Orchestrator) finish(result *Result, req backend.AnalysisRequest, strategy Strategy) *Result {
	result.Strategy = strategy
	result.Timestamp = time.Now()
	result.WorkersAvailable = o.registry.Len()
	result.TaskType = req.TaskType
	result.Symbol = req.Symbol
	if result.Success && result.RiskLevel == "" {
		result.RiskLevel = o.riskLabel(result.Confidence)
	}

	if !result.Success {
		o.logger.Warn("analysis failed",
			"task", req.TaskType, "symbol", req.Symbol,
			"strategy", strategy, "reason", result.Reason)
		return result
	}

	o.cache.Put(req.TaskType, req.Prompt, req.Data, result, o.cacheTTL)

	if req.Symbol != "" {
		o.sharedCtx.Store(
			memory.AnalysisKey(req.Symbol, req.TaskType),
			memory.Snapshot{
				Direction:  result.Direction,
				Confidence: result.Confidence,
				Backend:    result.Backend,
				KeyFactors: topFactors(result.KeyFactors, 3),
				Timestamp:  result.Timestamp,
			},
			o.contextTTL,
		)
	}

	o.logger.Info("analysis complete",
		"task", req.TaskType, "symbol", req.Symbol, "strategy", strategy,
		"direction", result.Direction, "confidence", result.Confidence,
		"backend", result.Backend)
	return result
}

// buildContextBundle flattens the symbol's shared context into the advisory
// map handed to backends.
func (o *Orchestrator) buildContextBundle(symbol string) map[string]any {
	sc := o.sharedCtx.GetSymbolContext(symbol)
	if len(sc.RecentAnalyses) == 0 && len(sc.RecentPredictions) == 0 && len(sc.RecentSignals) == 0 {
		return nil
	}

	bundle := make(map[string]any, 3)
	if len(sc.RecentAnalyses) > 0 {
		bundle["recent_analyses"] = entriesToValues(sc.RecentAnalyses)
	}
	if len(sc.RecentPredictions) > 0 {
		bundle["recent_predictions"] = entriesToValues(sc.RecentPredictions)
	}
	if len(sc.RecentSignals) > 0 {
		bundle["recent_signals"] = entriesToValues(sc.RecentSignals)
	}
	return bundle
}

func entriesToValues(entries []memory.Entry) []any {
	out := make([]any, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Value)
	}
	return out
}

func (o *Orchestrator) riskLabel(confidence float64) types.RiskLevel {
	switch {
	case confidence > o.riskLowAbove:
		return types.RiskLow
	case confidence < o.riskHighBelow:
		return types.RiskHigh
	default:
		return types.RiskMedium
	}
}

func topFactors(factors []string, n int) []string {
	if len(factors) <= n {
		return factors
	}
	return factors[:n]
}
