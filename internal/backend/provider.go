// Package backend defines the uniform execute contract over heterogeneous
// analytical providers (commercial LLM APIs, a local model, and a
// deterministic rule engine) and the worker wrapper that tracks each
// provider's latency and success statistics.
package backend

import (
	"context"
	"time"

	"github.com/signaltrustai/SignalTrust-AI-Scanner-sub000/internal/types"
)

// AnalysisProvider is the interface every analytical backend implements.
// Providers are opaque functions: (task, data, context) -> verdict | error.
type AnalysisProvider interface {
	// Name returns the unique provider name (e.g. "anthropic", "rule")
	Name() string

	// Kind returns the provider family for specialist routing
	Kind() types.ProviderKind

	// Analyze runs one analytical task. Provider-specific failures are
	// returned as structured errors, never panics.
	Analyze(ctx context.Context, req AnalysisRequest) (*Verdict, error)

	// Health checks the provider's availability
	Health(ctx context.Context) types.HealthStatus
}

// ProviderConfig holds the per-provider settings needed to construct a backend.
type ProviderConfig struct {
	Name     string             `json:"name" mapstructure:"name"`
	Kind     types.ProviderKind `json:"kind" mapstructure:"kind"`
	APIKey   string             `json:"api_key,omitempty" mapstructure:"api_key"`
	Model    string             `json:"model,omitempty" mapstructure:"model"`
	BaseURL  string             `json:"base_url,omitempty" mapstructure:"base_url"`
	Priority int                `json:"priority" mapstructure:"priority"`
	Enabled  bool               `json:"enabled" mapstructure:"enabled"`
	Timeout  time.Duration      `json:"timeout,omitempty" mapstructure:"timeout"`
}
