package orchestrator

import (
	"context"
	"fmt"

	"github.com/signaltrustai/SignalTrust-AI-Scanner-sub000/internal/backend"
	"github.com/signaltrustai/SignalTrust-AI-Scanner-sub000/internal/types"
)

// runSpecialist routes the task to its preferred provider family. If the
// specialist is unavailable or fails, any other backend is tried in
// priority order, and the rule engine is the explicit final fallback.
// Single-path execution: the pool is not needed here.
func (o *Orchestrator) runSpecialist(ctx context.Context, workers []*backend.Worker, req backend.AnalysisRequest) *Result {
	preferredKind, routed := o.routing[req.TaskType]

	var specialist *backend.Worker
	if routed {
		specialist, _ = o.registry.ByKind(preferredKind)
	}

	if specialist != nil {
		if verdict, err := specialist.Execute(ctx, req); err == nil {
			return resultFromVerdict(verdict, specialist.Name(), req)
		} else {
			o.logger.Warn("specialist failed, falling back",
				"backend", specialist.Name(), "task", req.TaskType, "error", err)
		}
	} else {
		o.logger.Debug("no specialist available", "task", req.TaskType, "kind", preferredKind)
	}

	// Any other available backend, rule engine last so it stays the
	// terminal fallback.
	var rule *backend.Worker
	for _, w := range workers {
		if specialist != nil && w.Name() == specialist.Name() {
			continue
		}
		if w.Kind() == types.ProviderRule {
			rule = w
			continue
		}
		if ctx.Err() != nil {
			return failureResult(req, "deadline expired during fallback")
		}
		if verdict, err := w.Execute(ctx, req); err == nil {
			return resultFromVerdict(verdict, w.Name(), req)
		} else {
			o.logger.Warn("fallback backend failed", "backend", w.Name(), "error", err)
		}
	}

	if rule != nil {
		if verdict, err := rule.Execute(ctx, req); err == nil {
			return resultFromVerdict(verdict, rule.Name(), req)
		}
	}

	return failureResult(req, fmt.Sprintf("specialist and all fallbacks failed for task %s", req.TaskType))
}
