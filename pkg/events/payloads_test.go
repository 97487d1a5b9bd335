package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAgentSpeakingPayload_OmitsEmptyAgentID(t *testing.T) {
	payload := AgentSpeakingPayload{
		Type:      EventTypeAgentSpeaking,
		AgentName: "Dr. Critic",
		Timestamp: "2026-01-01T00:00:00Z",
	}

	data, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "agent_id")
}

func TestMessagePayload_RoundTrip(t *testing.T) {
	payload := MessagePayload{
		Type:        EventTypeMessage,
		ID:          "msg-1",
		AgentID:     "agent-lead",
		AgentName:   "Lead",
		Role:        "assistant",
		Content:     "Let's get started.",
		RoundNumber: 2,
		Timestamp:   "2026-01-01T00:00:00Z",
	}

	data, err := json.Marshal(payload)
	require.NoError(t, err)

	var decoded MessagePayload
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, payload, decoded)
}

func TestRoundCompletePayload_RoundTrip(t *testing.T) {
	payload := RoundCompletePayload{
		Type:        EventTypeRoundComplete,
		Round:       2,
		TotalRounds: 3,
		Timestamp:   "2026-01-01T00:00:00Z",
	}

	data, err := json.Marshal(payload)
	require.NoError(t, err)

	var decoded RoundCompletePayload
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, payload, decoded)
}

func TestMeetingCompletePayload_RoundTrip(t *testing.T) {
	payload := MeetingCompletePayload{
		Type:      EventTypeMeetingComplete,
		Status:    "completed",
		Timestamp: "2026-01-01T00:00:00Z",
	}

	data, err := json.Marshal(payload)
	require.NoError(t, err)

	var decoded MeetingCompletePayload
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, payload, decoded)
}

func TestErrorPayload_OmitsEmptyProvider(t *testing.T) {
	payload := ErrorPayload{
		Type:      EventTypeError,
		Detail:    "request timed out",
		Timestamp: "2026-01-01T00:00:00Z",
	}

	data, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "provider")
}

func TestErrorPayload_IncludesProviderWhenSet(t *testing.T) {
	payload := ErrorPayload{
		Type:      EventTypeError,
		Detail:    "rate limited",
		Provider:  "openai",
		Timestamp: "2026-01-01T00:00:00Z",
	}

	data, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"provider":"openai"`)
}

func TestClientMessage_StartRoundFields(t *testing.T) {
	raw := `{"action":"start_round","channel":"meeting:m1","rounds":2,"topic":"follow-up"}`

	var msg ClientMessage
	require.NoError(t, json.Unmarshal([]byte(raw), &msg))

	assert.Equal(t, "start_round", msg.Action)
	assert.Equal(t, "meeting:m1", msg.Channel)
	assert.Equal(t, 2, msg.Rounds)
	assert.Equal(t, "follow-up", msg.Topic)
}

func TestClientMessage_UserMessageFields(t *testing.T) {
	raw := `{"action":"user_message","channel":"meeting:m1","content":"please revisit the schema"}`

	var msg ClientMessage
	require.NoError(t, json.Unmarshal([]byte(raw), &msg))

	assert.Equal(t, "user_message", msg.Action)
	assert.Equal(t, "please revisit the schema", msg.Content)
}

func TestClientMessage_CatchupLastEventID(t *testing.T) {
	raw := `{"action":"catchup","channel":"meeting:m1","last_event_id":42}`

	var msg ClientMessage
	require.NoError(t, json.Unmarshal([]byte(raw), &msg))

	require.NotNil(t, msg.LastEventID)
	assert.Equal(t, 42, *msg.LastEventID)
}
