// Package events fans meeting-run progress out to any number of
// subscribers via an in-process bus or, when configured, a
// PostgreSQL-NOTIFY-backed broker so subscribers can live on any process
// in the fleet. Every event is also persisted so a subscriber that joins
// mid-round can catch up via GET .../stream's Last-Event-ID or the
// WebSocket "catchup" action.
package events

// Persistent event types — every one is written to the events table (and
// NOTIFY'd when the broker backend is in use) so a reconnecting subscriber
// can replay what it missed.
const (
	EventTypeAgentSpeaking  = "agent_speaking"
	EventTypeMessage        = "message"
	EventTypeRoundComplete  = "round_complete"
	EventTypeMeetingComplete = "meeting_complete"
	EventTypeError          = "error"
)

// MeetingChannel returns the bus/NOTIFY channel name for a single
// meeting's events. All five event types for a meeting are published on
// this one channel; subscribers distinguish them by the "type" field.
func MeetingChannel(meetingID string) string {
	return "meeting:" + meetingID
}

// ClientMessage is the JSON structure for client -> server WebSocket
// messages on the /ws/meetings/{id} endpoint.
type ClientMessage struct {
	Action      string `json:"action"`                   // "subscribe", "unsubscribe", "catchup", "ping", "start_round", "user_message"
	Channel     string `json:"channel,omitempty"`
	LastEventID *int   `json:"last_event_id,omitempty"`

	// start_round / user_message payload fields.
	Rounds  int    `json:"rounds,omitempty"`
	Topic   string `json:"topic,omitempty"`
	Content string `json:"content,omitempty"`
}
