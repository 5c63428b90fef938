package providers

import (
	"context"
	"fmt"
	"os"

	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/mistral"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/signaltrustai/SignalTrust-AI-Scanner-sub000/internal/backend"
	"github.com/signaltrustai/SignalTrust-AI-Scanner-sub000/internal/types"
)

// NewAnthropic creates the Anthropic Claude backend.
func NewAnthropic(cfg backend.ProviderConfig) (*LLMProvider, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil, backend.NewAuthError(cfg.Name, nil)
	}

	opts := []anthropic.Option{anthropic.WithToken(apiKey)}
	if cfg.Model != "" {
		opts = append(opts, anthropic.WithModel(cfg.Model))
	}

	client, err := anthropic.New(opts...)
	if err != nil {
		return nil, backend.TranslateError(cfg.Name, err)
	}
	return NewLLMProvider(cfg.Name, types.ProviderAnthropic, client), nil
}

// NewOpenAI creates the OpenAI GPT backend.
func NewOpenAI(cfg backend.ProviderConfig) (*LLMProvider, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, backend.NewAuthError(cfg.Name, nil)
	}

	opts := []openai.Option{openai.WithToken(apiKey)}
	if cfg.Model != "" {
		opts = append(opts, openai.WithModel(cfg.Model))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, backend.TranslateError(cfg.Name, err)
	}
	return NewLLMProvider(cfg.Name, types.ProviderOpenAI, client), nil
}

// NewGoogle creates the Google Gemini backend.
func NewGoogle(ctx context.Context, cfg backend.ProviderConfig) (*LLMProvider, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("GOOGLE_API_KEY")
	}
	if apiKey == "" {
		return nil, backend.NewAuthError(cfg.Name, nil)
	}

	opts := []googleai.Option{googleai.WithAPIKey(apiKey)}
	if cfg.Model != "" {
		opts = append(opts, googleai.WithDefaultModel(cfg.Model))
	}

	client, err := googleai.New(ctx, opts...)
	if err != nil {
		return nil, backend.TranslateError(cfg.Name, err)
	}
	return NewLLMProvider(cfg.Name, types.ProviderGoogle, client), nil
}

// NewMistral creates the Mistral backend.
func NewMistral(cfg backend.ProviderConfig) (*LLMProvider, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("MISTRAL_API_KEY")
	}
	if apiKey == "" {
		return nil, backend.NewAuthError(cfg.Name, nil)
	}

	opts := []mistral.Option{mistral.WithAPIKey(apiKey)}
	if cfg.Model != "" {
		opts = append(opts, mistral.WithModel(cfg.Model))
	}

	client, err := mistral.New(opts...)
	if err != nil {
		return nil, backend.TranslateError(cfg.Name, err)
	}
	return NewLLMProvider(cfg.Name, types.ProviderMistral, client), nil
}

// NewOllama creates the local Ollama backend.
// Ollama needs no API key; an unreachable server surfaces through Health
// and per-call errors instead of failing construction.
func NewOllama(cfg backend.ProviderConfig) (*LLMProvider, error) {
	serverURL := cfg.BaseURL
	if serverURL == "" {
		serverURL = "http://localhost:11434"
	}

	opts := []ollama.Option{ollama.WithServerURL(serverURL)}
	if cfg.Model != "" {
		opts = append(opts, ollama.WithModel(cfg.Model))
	}

	client, err := ollama.New(opts...)
	if err != nil {
		return nil, backend.TranslateError(cfg.Name, err)
	}
	return NewLLMProvider(cfg.Name, types.ProviderLocal, client), nil
}

// New constructs a provider from its config by kind. The rule engine is not
// built here: it is always registered by the orchestrator wiring regardless
// of configuration.
func New(ctx context.Context, cfg backend.ProviderConfig) (backend.AnalysisProvider, error) {
	switch cfg.Kind {
	case types.ProviderAnthropic:
		return NewAnthropic(cfg)
	case types.ProviderOpenAI:
		return NewOpenAI(cfg)
	case types.ProviderGoogle:
		return NewGoogle(ctx, cfg)
	case types.ProviderMistral:
		return NewMistral(cfg)
	case types.ProviderLocal:
		return NewOllama(cfg)
	default:
		return nil, types.NewError(types.BACKEND_INVALID_INPUT, fmt.Sprintf("unknown provider kind: %s", cfg.Kind))
	}
}
