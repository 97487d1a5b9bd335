package llmclient

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryingClient wraps a Client with exponential backoff on transient
// errors. Auth errors are never retried; quota and other fatal errors stop
// the retry loop immediately so the runner can act on them without delay.
type RetryingClient struct {
	inner      Client
	maxRetries uint64
}

// NewRetryingClient wraps inner with a capped exponential backoff retry
// policy. maxRetries bounds the number of additional attempts after the
// first (default 3, per the spec's retry policy).
func NewRetryingClient(inner Client, maxRetries int) *RetryingClient {
	if maxRetries < 0 {
		maxRetries = 3
	}
	return &RetryingClient{inner: inner, maxRetries: uint64(maxRetries)}
}

func (c *RetryingClient) Chat(ctx context.Context, systemPrompt string, messages []Message, model string, params Params) (string, TokenUsage, error) {
	var content string
	var usage TokenUsage

	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.maxRetries)

	op := func() error {
		var err error
		content, usage, err = c.inner.Chat(ctx, systemPrompt, messages, model, params)
		if err == nil {
			return nil
		}
		if IsTransient(err) {
			return err // retried
		}
		return backoff.Permanent(err) // auth/quota/fatal short-circuit retries
	}

	if err := backoff.Retry(op, backoff.WithContext(policy, ctx)); err != nil {
		return "", TokenUsage{}, unwrapPermanent(err)
	}
	return content, usage, nil
}

func unwrapPermanent(err error) error {
	var perr *backoff.PermanentError
	if pe, ok := err.(*backoff.PermanentError); ok {
		perr = pe
		return perr.Err
	}
	return err
}

// withCallTimeout bounds one Router.Chat call, including every retry
// attempt and backoff wait of the wrapped RetryingClient.
func withCallTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, timeout)
}
