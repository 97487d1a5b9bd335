// Package webhook delivers meeting bus events to registered HTTP
// endpoints, HMAC-signed when a shared secret is configured. It is
// grounded on tarsy's pkg/slack notification-service shape
// (fail-open, nil-safe, fire-and-forget delivery keyed off an event name)
// generalized from a single Slack channel to an arbitrary set of
// per-team HTTP targets. No webhook-delivery SDK appears anywhere in the
// example corpus, so delivery is a direct net/http POST with an
// hmac/sha256 signature header — the same primitives GitHub, Stripe, and
// every other HMAC-signed webhook sender use; there is no third-party
// "send a webhook" library this would meaningfully wrap.
package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/conclave-run/conclave/pkg/models"
)

// SignatureHeader carries the hex-encoded HMAC-SHA256 of the request body,
// computed with the webhook's registered secret, so receivers can verify
// authenticity the same way GitHub/Stripe-style webhook consumers do.
const SignatureHeader = "X-Conclave-Signature-256"

// WebhookRepo is the subset of the repository gateway the dispatcher
// needs: the active webhook targets registered for a team and event.
type WebhookRepo interface {
	ListActiveWebhooksForEvent(ctx context.Context, teamID, eventType string) ([]*models.WebhookConfig, error)
}

// Dispatcher delivers one event payload to every active webhook
// registered for its team/event-type combination. Delivery is fail-open,
// matching the slack Service's contract: a failed delivery never fails the
// meeting run that produced the event. Delivery runs on the caller's
// goroutine, so a slow target delays the caller by up to the client timeout.
type Dispatcher struct {
	repo   WebhookRepo
	client *http.Client
	logger *slog.Logger
}

// NewDispatcher builds a Dispatcher reading targets from repo, posting
// with the given timeout per delivery attempt.
func NewDispatcher(repo WebhookRepo, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Dispatcher{
		repo:   repo,
		client: &http.Client{Timeout: timeout},
		logger: slog.Default().With("component", "webhook-dispatcher"),
	}
}

// Dispatch looks up every active webhook registered for teamID and
// eventType and posts payload to each in turn, synchronously: a failing
// target does not stop delivery to the others, while a slow one delays
// them by up to the client timeout. Errors are logged, never returned — matching the spec's
// "subscriber backpressure"/fail-open posture for ancillary delivery
// paths (§7).
func (d *Dispatcher) Dispatch(ctx context.Context, teamID, eventType string, payload any) {
	if d == nil {
		return
	}

	hooks, err := d.repo.ListActiveWebhooksForEvent(ctx, teamID, eventType)
	if err != nil {
		d.logger.Warn("webhook: failed to list targets", "team_id", teamID, "event", eventType, "error", err)
		return
	}
	if len(hooks) == 0 {
		return
	}

	body, err := json.Marshal(payload)
	if err != nil {
		d.logger.Warn("webhook: failed to marshal payload", "event", eventType, "error", err)
		return
	}

	for _, hook := range hooks {
		d.deliverOne(ctx, hook, eventType, body)
	}
}

func (d *Dispatcher) deliverOne(ctx context.Context, hook *models.WebhookConfig, eventType string, body []byte) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, hook.URL, bytes.NewReader(body))
	if err != nil {
		d.logger.Warn("webhook: failed to build request", "webhook_id", hook.ID, "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Conclave-Event", eventType)
	if hook.Secret != "" {
		req.Header.Set(SignatureHeader, sign(hook.Secret, body))
	}

	resp, err := d.client.Do(req)
	if err != nil {
		d.logger.Warn("webhook: delivery failed", "webhook_id", hook.ID, "url", hook.URL, "error", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		d.logger.Warn("webhook: non-2xx response", "webhook_id", hook.ID, "status", resp.StatusCode)
	}
}

func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether signature (as received in SignatureHeader) is a
// valid HMAC-SHA256 of body under secret. Receivers (out of scope here,
// documented for symmetry with the sender) would use this to authenticate
// inbound deliveries.
func Verify(secret string, body []byte, signature string) bool {
	want := sign(secret, body)
	return hmac.Equal([]byte(want), []byte(signature))
}
