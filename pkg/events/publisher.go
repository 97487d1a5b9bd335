package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/conclave-run/conclave/pkg/repo"
)

// EventPublisher persists a meeting event then fans it out to subscribers.
// Persistence always happens (so a reconnecting subscriber can catch up);
// fan-out is delegated to a broadcaster, which differs between the
// in-process and broker-backed bus configurations.
type EventPublisher struct {
	events repo.EventRepo
	bus    broadcaster
}

// NewEventPublisher builds a publisher over the repository's event store
// and the configured bus broadcaster.
func NewEventPublisher(events repo.EventRepo, bus broadcaster) *EventPublisher {
	return &EventPublisher{events: events, bus: bus}
}

func (p *EventPublisher) PublishAgentSpeaking(ctx context.Context, meetingID string, payload AgentSpeakingPayload) error {
	payload.Type = EventTypeAgentSpeaking
	payload.Timestamp = now()
	return p.persistAndBroadcast(ctx, meetingID, payload)
}

func (p *EventPublisher) PublishMessage(ctx context.Context, meetingID string, payload MessagePayload) error {
	payload.Type = EventTypeMessage
	payload.Timestamp = now()
	return p.persistAndBroadcast(ctx, meetingID, payload)
}

func (p *EventPublisher) PublishRoundComplete(ctx context.Context, meetingID string, payload RoundCompletePayload) error {
	payload.Type = EventTypeRoundComplete
	payload.Timestamp = now()
	return p.persistAndBroadcast(ctx, meetingID, payload)
}

func (p *EventPublisher) PublishMeetingComplete(ctx context.Context, meetingID string, payload MeetingCompletePayload) error {
	payload.Type = EventTypeMeetingComplete
	payload.Timestamp = now()
	return p.persistAndBroadcast(ctx, meetingID, payload)
}

func (p *EventPublisher) PublishError(ctx context.Context, meetingID string, payload ErrorPayload) error {
	payload.Type = EventTypeError
	payload.Timestamp = now()
	return p.persistAndBroadcast(ctx, meetingID, payload)
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// persistAndBroadcast marshals payload, persists it to the events table for
// the meeting's channel, then broadcasts the payload enriched with
// db_event_id (used by clients for catchup position tracking).
func (p *EventPublisher) persistAndBroadcast(ctx context.Context, meetingID string, payload any) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("events: marshal payload: %w", err)
	}

	channel := MeetingChannel(meetingID)

	var asMap map[string]any
	if err := json.Unmarshal(payloadJSON, &asMap); err != nil {
		return fmt.Errorf("events: unmarshal payload for persistence: %w", err)
	}

	eventID, err := p.events.InsertEvent(ctx, channel, asMap)
	if err != nil {
		return fmt.Errorf("events: persist event: %w", err)
	}

	asMap["db_event_id"] = eventID
	enriched, err := json.Marshal(asMap)
	if err != nil {
		return fmt.Errorf("events: marshal enriched payload: %w", err)
	}

	if p.bus != nil {
		p.bus.Broadcast(channel, enriched)
	}
	return nil
}

// truncateIfNeeded returns the payload string as-is if it fits within
// PostgreSQL's 8000-byte NOTIFY limit, otherwise a minimal truncation
// envelope carrying only routing fields — the client refetches the full
// event via catchup.
func truncateIfNeeded(payloadStr string) (string, error) {
	if len(payloadStr) <= 7900 {
		return payloadStr, nil
	}
	return buildTruncatedPayload([]byte(payloadStr))
}

func buildTruncatedPayload(payloadBytes []byte) (string, error) {
	var routing struct {
		Type      string `json:"type"`
		DBEventID *int64 `json:"db_event_id,omitempty"`
	}
	if err := json.Unmarshal(payloadBytes, &routing); err != nil {
		return "", fmt.Errorf("events: extract routing fields for truncation: %w", err)
	}

	truncated := map[string]any{
		"type":      routing.Type,
		"truncated": true,
	}
	if routing.DBEventID != nil {
		truncated["db_event_id"] = *routing.DBEventID
	}

	truncBytes, err := json.Marshal(truncated)
	if err != nil {
		return "", fmt.Errorf("events: marshal truncated payload: %w", err)
	}
	return string(truncBytes), nil
}
