package providers

import (
	"context"
	"sync"
	"time"

	"github.com/signaltrustai/SignalTrust-AI-Scanner-sub000/internal/backend"
	"github.com/signaltrustai/SignalTrust-AI-Scanner-sub000/internal/types"
)

// MockProvider implements AnalysisProvider for testing. It returns a fixed
// verdict or error, optionally after a delay, and records every request.
type MockProvider struct {
	ProviderName string
	ProviderKind types.ProviderKind
	Verdict      *backend.Verdict
	Err          error
	Delay        time.Duration

	mu    sync.Mutex
	calls []backend.AnalysisRequest
}

// NewMockProvider creates a mock returning the given verdict.
func NewMockProvider(name string, kind types.ProviderKind, verdict *backend.Verdict) *MockProvider {
	return &MockProvider{ProviderName: name, ProviderKind: kind, Verdict: verdict}
}

// Name returns the provider name
func (p *MockProvider) Name() string {
	return p.ProviderName
}

// Kind returns the provider family
func (p *MockProvider) Kind() types.ProviderKind {
	return p.ProviderKind
}

// Analyze records the call and returns the configured verdict or error,
// honoring context cancellation during the configured delay.
func (p *MockProvider) Analyze(ctx context.Context, req backend.AnalysisRequest) (*backend.Verdict, error) {
	p.mu.Lock()
	p.calls = append(p.calls, req)
	p.mu.Unlock()

	if p.Delay > 0 {
		select {
		case <-time.After(p.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if p.Err != nil {
		return nil, p.Err
	}
	return p.Verdict, nil
}

// Health reports healthy unless the mock is configured to fail.
func (p *MockProvider) Health(ctx context.Context) types.HealthStatus {
	if p.Err != nil {
		return types.Unhealthy("mock configured to fail")
	}
	return types.Healthy("mock ready")
}

// Calls returns a copy of all recorded requests.
func (p *MockProvider) Calls() []backend.AnalysisRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]backend.AnalysisRequest, len(p.calls))
	copy(out, p.calls)
	return out
}
