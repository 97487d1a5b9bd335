package llmclient

import (
	"context"
	"errors"
	"net/http"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicStyleClient speaks the Messages API wire format, which keeps the
// system prompt as a distinct top-level field rather than inlining it into
// the message list.
type AnthropicStyleClient struct {
	client anthropic.Client
}

func NewAnthropicStyleClient(apiKey string) *AnthropicStyleClient {
	return &AnthropicStyleClient{client: anthropic.NewClient(option.WithAPIKey(apiKey))}
}

func (c *AnthropicStyleClient) Chat(ctx context.Context, systemPrompt string, messages []Message, model string, params Params) (string, TokenUsage, error) {
	maxTokens := int64(params.MaxTokens)
	if maxTokens == 0 {
		maxTokens = 4096
	}

	msgParams := make([]anthropic.MessageParam, 0, len(messages))
	for _, m := range messages {
		if m.Role == "assistant" {
			msgParams = append(msgParams, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		} else {
			msgParams = append(msgParams, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}

	req := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: maxTokens,
		Messages:  msgParams,
	}
	if systemPrompt != "" {
		req.System = []anthropic.TextBlockParam{{Text: systemPrompt}}
	}
	if params.Temperature > 0 {
		req.Temperature = anthropic.Float(params.Temperature)
	}

	resp, err := c.client.Messages.New(ctx, req)
	if err != nil {
		return "", TokenUsage{}, c.classify(err)
	}

	var content string
	for _, block := range resp.Content {
		if block.Type == "text" {
			content += block.Text
		}
	}

	usage := TokenUsage{InputTokens: int(resp.Usage.InputTokens), OutputTokens: int(resp.Usage.OutputTokens)}
	return content, usage, nil
}

func (c *AnthropicStyleClient) classify(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return &Error{Kind: ErrorKindAuth, Provider: "anthropic", Err: err}
		case http.StatusTooManyRequests:
			if isQuotaMessage(apiErr.Message) {
				return &Error{Kind: ErrorKindQuota, Provider: "anthropic", Err: err}
			}
			return &Error{Kind: ErrorKindTransient, Provider: "anthropic", Err: err}
		default:
			if apiErr.StatusCode >= 500 {
				return &Error{Kind: ErrorKindTransient, Provider: "anthropic", Err: err}
			}
		}
	}
	return &Error{Kind: ErrorKindFatal, Provider: "anthropic", Err: err}
}
