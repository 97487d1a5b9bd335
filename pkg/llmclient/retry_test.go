package llmclient

import (
	"context"
	"errors"
	"testing"
)

type fakeClient struct {
	calls   int
	failFor int
	failErr error
}

func (f *fakeClient) Chat(ctx context.Context, systemPrompt string, messages []Message, model string, params Params) (string, TokenUsage, error) {
	f.calls++
	if f.calls <= f.failFor {
		return "", TokenUsage{}, f.failErr
	}
	return "ok", TokenUsage{InputTokens: 1, OutputTokens: 1}, nil
}

func TestRetryingClientRetriesTransient(t *testing.T) {
	fc := &fakeClient{failFor: 2, failErr: &Error{Kind: ErrorKindTransient, Provider: "test", Err: errors.New("503")}}
	rc := NewRetryingClient(fc, 3)

	content, _, err := rc.Chat(context.Background(), "sys", nil, "model", Params{})
	if err != nil {
		t.Fatalf("expected eventual success, got %v", err)
	}
	if content != "ok" {
		t.Errorf("expected content 'ok', got %q", content)
	}
	if fc.calls != 3 {
		t.Errorf("expected 3 calls (2 failures + 1 success), got %d", fc.calls)
	}
}

func TestRetryingClientDoesNotRetryAuthErrors(t *testing.T) {
	fc := &fakeClient{failFor: 100, failErr: &Error{Kind: ErrorKindAuth, Provider: "test", Err: errors.New("401")}}
	rc := NewRetryingClient(fc, 3)

	_, _, err := rc.Chat(context.Background(), "sys", nil, "model", Params{})
	if err == nil {
		t.Fatal("expected auth error to propagate")
	}
	if !IsAuthError(err) {
		t.Errorf("expected auth error, got %v", err)
	}
	if fc.calls != 1 {
		t.Errorf("expected exactly 1 call for a non-retried error, got %d", fc.calls)
	}
}

func TestIsQuotaExhausted(t *testing.T) {
	err := &Error{Kind: ErrorKindQuota, Provider: "openai", Err: errors.New("quota")}
	if !IsQuotaExhausted(err) {
		t.Error("expected quota error to be detected")
	}
	if IsQuotaExhausted(errors.New("plain")) {
		t.Error("plain error should not be quota exhausted")
	}
}
