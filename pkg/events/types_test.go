package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMeetingChannel(t *testing.T) {
	tests := []struct {
		name      string
		meetingID string
		want      string
	}{
		{
			name:      "formats meeting channel correctly",
			meetingID: "abc-123",
			want:      "meeting:abc-123",
		},
		{
			name:      "handles UUID format",
			meetingID: "550e8400-e29b-41d4-a716-446655440000",
			want:      "meeting:550e8400-e29b-41d4-a716-446655440000",
		},
		{
			name:      "handles empty string",
			meetingID: "",
			want:      "meeting:",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MeetingChannel(tt.meetingID)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEventTypeConstants(t *testing.T) {
	types := []string{
		EventTypeAgentSpeaking,
		EventTypeMessage,
		EventTypeRoundComplete,
		EventTypeMeetingComplete,
		EventTypeError,
	}

	seen := make(map[string]bool)
	for _, typ := range types {
		assert.NotEmpty(t, typ, "event type should not be empty")
		assert.False(t, seen[typ], "duplicate event type: %s", typ)
		seen[typ] = true
	}
}
