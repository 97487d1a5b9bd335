package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/conclave-run/conclave/pkg/repo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturingBroadcaster struct {
	channel string
	event   []byte
	calls   int
}

func (b *capturingBroadcaster) Broadcast(channel string, event []byte) {
	b.channel = channel
	b.event = event
	b.calls++
}

func TestEventPublisher_PersistsThenBroadcasts(t *testing.T) {
	events := &fakeEventRepo{}
	bus := &capturingBroadcaster{}
	publisher := NewEventPublisher(events, bus)

	err := publisher.PublishMessage(context.Background(), "meeting-1", MessagePayload{
		ID:        "msg-1",
		AgentName: "Lead",
		Role:      "assistant",
		Content:   "hello team",
	})
	require.NoError(t, err)

	require.Len(t, events.events, 1)
	assert.Equal(t, "message", events.events[0].Payload["type"])
	assert.Equal(t, "hello team", events.events[0].Payload["content"])

	require.Equal(t, 1, bus.calls)
	assert.Equal(t, "meeting:meeting-1", bus.channel)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(bus.event, &decoded))
	assert.Equal(t, "message", decoded["type"])
	assert.EqualValues(t, 1, decoded["db_event_id"])
}

func TestEventPublisher_SetsTypeAndTimestampPerMethod(t *testing.T) {
	events := &fakeEventRepo{}
	bus := &capturingBroadcaster{}
	publisher := NewEventPublisher(events, bus)

	require.NoError(t, publisher.PublishAgentSpeaking(context.Background(), "m1", AgentSpeakingPayload{AgentName: "Lead"}))
	assert.Equal(t, EventTypeAgentSpeaking, events.events[0].Payload["type"])
	assert.NotEmpty(t, events.events[0].Payload["timestamp"])

	require.NoError(t, publisher.PublishRoundComplete(context.Background(), "m1", RoundCompletePayload{Round: 1, TotalRounds: 3}))
	assert.Equal(t, EventTypeRoundComplete, events.events[1].Payload["type"])

	require.NoError(t, publisher.PublishMeetingComplete(context.Background(), "m1", MeetingCompletePayload{Status: "completed"}))
	assert.Equal(t, EventTypeMeetingComplete, events.events[2].Payload["type"])

	require.NoError(t, publisher.PublishError(context.Background(), "m1", ErrorPayload{Detail: "boom"}))
	assert.Equal(t, EventTypeError, events.events[3].Payload["type"])
}

func TestEventPublisher_NilBroadcasterIsSafe(t *testing.T) {
	events := &fakeEventRepo{}
	publisher := NewEventPublisher(events, nil)

	err := publisher.PublishMessage(context.Background(), "meeting-1", MessagePayload{ID: "msg-1"})
	assert.NoError(t, err)
	assert.Len(t, events.events, 1)
}

func TestEventPublisher_PersistFailureSkipsBroadcast(t *testing.T) {
	events := &fakeEventRepo{insertErr: errPersistFailed}
	bus := &capturingBroadcaster{}
	publisher := NewEventPublisher(events, bus)

	err := publisher.PublishMessage(context.Background(), "meeting-1", MessagePayload{ID: "msg-1"})
	assert.Error(t, err)
	assert.Equal(t, 0, bus.calls)
}

var errPersistFailed = errors.New("persist failed")

func TestTruncateIfNeeded(t *testing.T) {
	t.Run("passes through normal payload", func(t *testing.T) {
		payload, _ := json.Marshal(MessagePayload{
			Type:    EventTypeMessage,
			ID:      "msg-1",
			Content: "some content",
		})

		result, err := truncateIfNeeded(string(payload))
		require.NoError(t, err)
		assert.Contains(t, result, EventTypeMessage)
		assert.Contains(t, result, "msg-1")
	})

	t.Run("truncates oversized payload", func(t *testing.T) {
		longContent := make([]byte, 8000)
		for i := range longContent {
			longContent[i] = 'a'
		}
		payload, _ := json.Marshal(MessagePayload{
			Type:    EventTypeMessage,
			ID:      "msg-1",
			Content: string(longContent),
		})

		result, err := truncateIfNeeded(string(payload))
		require.NoError(t, err)
		assert.Contains(t, result, "truncated")
		assert.Less(t, len(result), 8000)
	})

	t.Run("does not truncate small payload", func(t *testing.T) {
		payload, _ := json.Marshal(AgentSpeakingPayload{
			Type:      EventTypeAgentSpeaking,
			AgentName: "Lead",
		})

		result, err := truncateIfNeeded(string(payload))
		require.NoError(t, err)
		assert.NotContains(t, result, "truncated")
	})

	t.Run("empty JSON object", func(t *testing.T) {
		result, err := truncateIfNeeded("{}")
		require.NoError(t, err)
		assert.Equal(t, "{}", result)
	})
}

func TestBuildTruncatedPayload_PreservesRoutingFields(t *testing.T) {
	var dbID int64 = 42
	src := struct {
		Type      string `json:"type"`
		DBEventID *int64 `json:"db_event_id,omitempty"`
		Content   string `json:"content"`
	}{Type: EventTypeMessage, DBEventID: &dbID, Content: "ignored by truncation"}

	raw, err := json.Marshal(src)
	require.NoError(t, err)

	result, err := buildTruncatedPayload(raw)
	require.NoError(t, err)
	assert.Contains(t, result, `"truncated":true`)
	assert.Contains(t, result, `"db_event_id":42`)
	assert.Contains(t, result, EventTypeMessage)
	assert.NotContains(t, result, "ignored by truncation")
}

func TestNewEventPublisher(t *testing.T) {
	publisher := NewEventPublisher(&fakeEventRepo{}, nil)
	assert.NotNil(t, publisher)
}

var _ repo.EventRepo = (*fakeEventRepo)(nil)
