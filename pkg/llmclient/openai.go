package llmclient

import (
	"context"
	"errors"
	"net/http"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIStyleClient speaks the Chat Completions wire format: the system
// prompt is inlined as the first message. DeepSeek and other
// OpenAI-compatible providers reuse this client with a custom base URL.
type OpenAIStyleClient struct {
	client   openai.Client
	provider string
}

// NewOpenAIStyleClient builds a client for apiKey, optionally pointed at a
// non-default baseURL (used for DeepSeek's OpenAI-compatible endpoint).
func NewOpenAIStyleClient(provider, apiKey, baseURL string) *OpenAIStyleClient {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAIStyleClient{client: openai.NewClient(opts...), provider: provider}
}

func (c *OpenAIStyleClient) Chat(ctx context.Context, systemPrompt string, messages []Message, model string, params Params) (string, TokenUsage, error) {
	chatMessages := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages)+1)
	if systemPrompt != "" {
		chatMessages = append(chatMessages, openai.SystemMessage(systemPrompt))
	}
	for _, m := range messages {
		if m.Role == "assistant" {
			chatMessages = append(chatMessages, openai.AssistantMessage(m.Content))
		} else {
			chatMessages = append(chatMessages, openai.UserMessage(m.Content))
		}
	}

	req := openai.ChatCompletionNewParams{
		Model:    model,
		Messages: chatMessages,
	}
	if params.Temperature > 0 {
		req.Temperature = openai.Float(params.Temperature)
	}
	if params.MaxTokens > 0 {
		req.MaxCompletionTokens = openai.Int(int64(params.MaxTokens))
	}

	resp, err := c.client.Chat.Completions.New(ctx, req)
	if err != nil {
		return "", TokenUsage{}, c.classify(err)
	}
	if len(resp.Choices) == 0 {
		return "", TokenUsage{}, &Error{Kind: ErrorKindFatal, Provider: c.provider, Err: errors.New("empty choices in response")}
	}

	usage := TokenUsage{InputTokens: int(resp.Usage.PromptTokens), OutputTokens: int(resp.Usage.CompletionTokens)}
	return resp.Choices[0].Message.Content, usage, nil
}

// classify maps an openai-go error to our closed ErrorKind taxonomy by
// inspecting the HTTP status the SDK surfaces.
func (c *OpenAIStyleClient) classify(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return &Error{Kind: ErrorKindAuth, Provider: c.provider, Err: err}
		case http.StatusTooManyRequests:
			if isQuotaMessage(apiErr.Message) {
				return &Error{Kind: ErrorKindQuota, Provider: c.provider, Err: err}
			}
			return &Error{Kind: ErrorKindTransient, Provider: c.provider, Err: err}
		default:
			if apiErr.StatusCode >= 500 {
				return &Error{Kind: ErrorKindTransient, Provider: c.provider, Err: err}
			}
		}
	}
	return &Error{Kind: ErrorKindFatal, Provider: c.provider, Err: err}
}

func isQuotaMessage(msg string) bool {
	for _, needle := range []string{"quota", "billing", "insufficient_quota"} {
		if containsFold(msg, needle) {
			return true
		}
	}
	return false
}
