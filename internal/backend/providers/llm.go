// Package providers contains the concrete analytical backends: langchaingo
// clients for the commercial vendors and the local model, the deterministic
// rule engine, and a mock for tests.
package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/tmc/langchaingo/llms"

	"github.com/signaltrustai/SignalTrust-AI-Scanner-sub000/internal/backend"
	"github.com/signaltrustai/SignalTrust-AI-Scanner-sub000/internal/types"
)

// defaultMaxRetries bounds transient-error retries per provider call.
const defaultMaxRetries = 2

// systemPrompt instructs every LLM backend to answer in the structured shape
// the aggregation layer reads. Models that ignore it still work: their
// replies are carried as raw verdicts.
const systemPrompt = `You are a market analysis engine. Respond with a single JSON object:
{"direction": "BULLISH"|"BEARISH"|"NEUTRAL", "confidence": 0.0-1.0, "key_factors": ["..."], "summary": "..."}
No prose outside the JSON.`

// chatModel is the slice of the langchaingo model surface this package uses.
type chatModel interface {
	GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error)
}

// LLMProvider adapts a langchaingo chat model to the AnalysisProvider contract.
type LLMProvider struct {
	name       string
	kind       types.ProviderKind
	model      chatModel
	maxRetries uint64
}

// NewLLMProvider wraps a langchaingo model as an analytical backend.
func NewLLMProvider(name string, kind types.ProviderKind, model chatModel) *LLMProvider {
	return &LLMProvider{
		name:       name,
		kind:       kind,
		model:      model,
		maxRetries: defaultMaxRetries,
	}
}

// Name returns the provider name
func (p *LLMProvider) Name() string {
	return p.name
}

// Kind returns the provider family
func (p *LLMProvider) Kind() types.ProviderKind {
	return p.kind
}

// Analyze sends the task to the model and parses the reply into a verdict.
// Transient vendor errors are retried with exponential backoff; permanent
// ones (auth, invalid request) fail immediately.
func (p *LLMProvider) Analyze(ctx context.Context, req backend.AnalysisRequest) (*backend.Verdict, error) {
	messages := buildMessages(req)

	var resp *llms.ContentResponse
	op := func() error {
		r, err := p.model.GenerateContent(ctx, messages,
			llms.WithTemperature(0.2),
			llms.WithMaxTokens(1024),
		)
		if err != nil {
			translated := backend.TranslateError(p.name, err)
			if translated.Retryable {
				return translated
			}
			return backoff.Permanent(translated)
		}
		resp = r
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), p.maxRetries), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return nil, backend.TranslateError(p.name, err)
	}

	if resp == nil || len(resp.Choices) == 0 {
		return nil, backend.NewParseError(p.name, fmt.Errorf("empty completion"))
	}

	return backend.ParseVerdict(resp.Choices[0].Content), nil
}

// Health probes the model with a minimal completion under a short deadline.
func (p *LLMProvider) Health(ctx context.Context) types.HealthStatus {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := p.model.GenerateContent(ctx,
		[]llms.MessageContent{
			{Role: llms.ChatMessageTypeHuman, Parts: []llms.ContentPart{llms.TextPart("ping")}},
		},
		llms.WithMaxTokens(1),
	)
	if err != nil {
		return types.Unhealthy(fmt.Sprintf("%s: %v", p.name, err))
	}
	return types.Healthy(p.name + " reachable")
}

// buildMessages assembles the system and user messages for one request.
// Market data and the advisory context bundle are serialized as JSON blocks
// so every vendor sees an identical task.
func buildMessages(req backend.AnalysisRequest) []llms.MessageContent {
	user := req.Prompt
	if len(req.Data) > 0 {
		if data, err := json.Marshal(req.Data); err == nil {
			user += "\n\nMarket data:\n" + string(data)
		}
	}
	if len(req.Context) > 0 {
		if ctxData, err := json.Marshal(req.Context); err == nil {
			user += "\n\nContext from earlier analyses (advisory):\n" + string(ctxData)
		}
	}

	return []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(fmt.Sprintf("%s\nTask: %s", systemPrompt, req.TaskType))},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(user)},
		},
	}
}
