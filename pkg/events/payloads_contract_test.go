package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMeetingChannelPayloads_ContainType is a contract test between the Go
// backend and any frontend subscriber. Every event type shares a single
// per-meeting channel (see MeetingChannel), so a subscriber routes incoming
// messages by inspecting the "type" field. ANY payload published on that
// channel MUST carry a non-empty "type" matching its EventType constant —
// otherwise a subscriber silently drops it.
func TestMeetingChannelPayloads_ContainType(t *testing.T) {
	tests := []struct {
		name     string
		payload  any
		wantType string
	}{
		{
			name:     "AgentSpeakingPayload",
			wantType: EventTypeAgentSpeaking,
			payload: AgentSpeakingPayload{
				Type:      EventTypeAgentSpeaking,
				AgentName: "Lead",
				Timestamp: "2026-01-01T00:00:00Z",
			},
		},
		{
			name:     "MessagePayload",
			wantType: EventTypeMessage,
			payload: MessagePayload{
				Type:        EventTypeMessage,
				ID:          "msg-1",
				AgentName:   "Lead",
				Role:        "assistant",
				Content:     "hello",
				RoundNumber: 1,
				Timestamp:   "2026-01-01T00:00:00Z",
			},
		},
		{
			name:     "RoundCompletePayload",
			wantType: EventTypeRoundComplete,
			payload: RoundCompletePayload{
				Type:        EventTypeRoundComplete,
				Round:       1,
				TotalRounds: 3,
				Timestamp:   "2026-01-01T00:00:00Z",
			},
		},
		{
			name:     "MeetingCompletePayload",
			wantType: EventTypeMeetingComplete,
			payload: MeetingCompletePayload{
				Type:      EventTypeMeetingComplete,
				Status:    "completed",
				Timestamp: "2026-01-01T00:00:00Z",
			},
		},
		{
			name:     "ErrorPayload",
			wantType: EventTypeError,
			payload: ErrorPayload{
				Type:      EventTypeError,
				Detail:    "llm provider failure",
				Timestamp: "2026-01-01T00:00:00Z",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.payload)
			require.NoError(t, err, "failed to marshal %s", tt.name)

			var parsed map[string]any
			require.NoError(t, json.Unmarshal(data, &parsed), "failed to unmarshal %s", tt.name)

			typ, ok := parsed["type"]
			assert.True(t, ok, "%s JSON is missing \"type\" field — subscriber routing will silently drop this event", tt.name)
			assert.Equal(t, tt.wantType, typ, "%s type has wrong value", tt.name)

			ts, ok := parsed["timestamp"]
			assert.True(t, ok, "%s JSON is missing \"timestamp\" field", tt.name)
			assert.NotEmpty(t, ts)
		})
	}
}
