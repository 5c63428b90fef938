package backend

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signaltrustai/SignalTrust-AI-Scanner-sub000/internal/types"
)

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.Register(NewWorker(bullishStub("anthropic", 0.8), 1)))

	w, err := r.Get("anthropic")
	require.NoError(t, err)
	assert.Equal(t, "anthropic", w.Name())

	_, err = r.Get("missing")
	assert.Equal(t, types.BACKEND_NOT_FOUND, types.CodeOf(err))
}

func TestRegistry_RegisterValidation(t *testing.T) {
	r := NewRegistry()

	assert.Equal(t, types.BACKEND_INVALID_INPUT, types.CodeOf(r.Register(nil)))
	assert.Equal(t, types.BACKEND_INVALID_INPUT, types.CodeOf(r.Register(NewWorker(bullishStub("", 0.5), 1))))

	require.NoError(t, r.Register(NewWorker(bullishStub("dup", 0.5), 1)))
	assert.Equal(t, types.BACKEND_ALREADY_EXISTS, types.CodeOf(r.Register(NewWorker(bullishStub("dup", 0.5), 2))))
}

func TestRegistry_ListOrderedByPriority(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.Register(NewWorker(bullishStub("late", 0.5), 30)))
	require.NoError(t, r.Register(NewWorker(bullishStub("early", 0.5), 10)))
	require.NoError(t, r.Register(NewWorker(bullishStub("mid", 0.5), 20)))

	var names []string
	for _, w := range r.List() {
		names = append(names, w.Name())
	}
	assert.Equal(t, []string{"early", "mid", "late"}, names)
	assert.Equal(t, 3, r.Len())
}

func TestRegistry_ByKind(t *testing.T) {
	r := NewRegistry()

	rule := &stubProvider{name: "rule", kind: types.ProviderRule, healthy: true, verdict: &Verdict{}}
	require.NoError(t, r.Register(NewWorker(rule, 99)))
	require.NoError(t, r.Register(NewWorker(bullishStub("anthropic", 0.5), 1)))

	w, ok := r.ByKind(types.ProviderRule)
	require.True(t, ok)
	assert.Equal(t, "rule", w.Name())

	_, ok = r.ByKind(types.ProviderLocal)
	assert.False(t, ok)
}

func TestRegistry_Health(t *testing.T) {
	ctx := context.Background()

	r := NewRegistry()
	assert.Equal(t, types.HealthStateUnhealthy, r.Health(ctx).State)

	require.NoError(t, r.Register(NewWorker(bullishStub("up", 0.5), 1)))
	assert.Equal(t, types.HealthStateHealthy, r.Health(ctx).State)

	down := &stubProvider{name: "down", kind: types.ProviderOpenAI, healthy: false, verdict: &Verdict{}}
	require.NoError(t, r.Register(NewWorker(down, 2)))
	assert.Equal(t, types.HealthStateDegraded, r.Health(ctx).State)
}
