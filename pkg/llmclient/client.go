// Package llmclient is the single interface over multiple LLM providers
// required by the meeting engine: one chat call per turn, given a system
// prompt, message history, model identifier, and sampling parameters.
package llmclient

import "context"

// Message is one turn of conversation history handed to a provider.
type Message struct {
	Role    string // "user" or "assistant"
	Content string
}

// Params are the sampling knobs a caller may override per call.
type Params struct {
	Temperature float64
	MaxTokens   int
}

// TokenUsage reports provider-side token accounting for a single call.
type TokenUsage struct {
	InputTokens  int
	OutputTokens int
}

// Client is the provider-agnostic chat interface. Implementations differ
// only in wire format — OpenAI-style inlines the system prompt into the
// message list, Anthropic-style keeps it as a separate top-level field.
type Client interface {
	Chat(ctx context.Context, systemPrompt string, messages []Message, model string, params Params) (content string, usage TokenUsage, err error)
}
