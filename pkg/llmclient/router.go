package llmclient

import (
	"context"
	"fmt"
	"os"

	"github.com/conclave-run/conclave/pkg/config"
)

// Router resolves a model string to the registered provider and dispatches
// the call to that provider's wrapped (retrying) client. Providers are
// constructed lazily and cached on first use so a process that never calls
// a given provider never has to have its API key set.
type Router struct {
	registry   *config.LLMProviderRegistry
	callTimeout int // seconds, applied per call
	retryMax   int
	clients    map[string]Client
}

// NewRouter builds a Router bound to reg, retrying each call up to retryMax
// times. callTimeoutSeconds bounds each Chat call as a whole, retries
// included; a single attempt has no separate time bound.
func NewRouter(reg *config.LLMProviderRegistry, callTimeoutSeconds, retryMax int) *Router {
	return &Router{registry: reg, callTimeout: callTimeoutSeconds, retryMax: retryMax, clients: make(map[string]Client)}
}

func (r *Router) Chat(ctx context.Context, systemPrompt string, messages []Message, model string, params Params) (string, TokenUsage, error) {
	name, provCfg, err := r.registry.ResolveModel(model)
	if err != nil {
		return "", TokenUsage{}, fmt.Errorf("%w: %v", ErrUnknownModel, err)
	}

	client, ok := r.clients[name]
	if !ok {
		client, err = r.buildClient(provCfg)
		if err != nil {
			return "", TokenUsage{}, err
		}
		r.clients[name] = client
	}

	ctx, cancel := withCallTimeout(ctx, secondsToDuration(r.callTimeout))
	defer cancel()

	return client.Chat(ctx, systemPrompt, messages, model, params)
}

func (r *Router) buildClient(cfg *config.LLMProviderConfig) (Client, error) {
	apiKey := os.Getenv(cfg.APIKeyEnv)
	if apiKey == "" {
		return nil, &Error{Kind: ErrorKindAuth, Provider: string(cfg.Type), Err: fmt.Errorf("%s is not set", cfg.APIKeyEnv)}
	}

	var base Client
	switch cfg.Type {
	case config.LLMProviderTypeOpenAI, config.LLMProviderTypeDeepSeek:
		base = NewOpenAIStyleClient(string(cfg.Type), apiKey, cfg.BaseURL)
	case config.LLMProviderTypeAnthropic:
		base = NewAnthropicStyleClient(apiKey)
	default:
		return nil, fmt.Errorf("%w: unhandled provider type %s", ErrUnknownModel, cfg.Type)
	}

	return NewRetryingClient(base, r.retryMax), nil
}
