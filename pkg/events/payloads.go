package events

// AgentSpeakingPayload is published immediately before an agent's LLM call
// starts, so subscribers can render a "typing" indicator.
type AgentSpeakingPayload struct {
	Type      string `json:"type"` // always EventTypeAgentSpeaking
	AgentName string `json:"agent_name"`
	AgentID   string `json:"agent_id,omitempty"`
	Timestamp string `json:"timestamp"`
}

// MessagePayload is published once an agent's turn is persisted.
type MessagePayload struct {
	Type        string `json:"type"` // always EventTypeMessage
	ID          string `json:"id"`
	AgentID     string `json:"agent_id,omitempty"`
	AgentName   string `json:"agent_name"`
	Role        string `json:"role"`
	Content     string `json:"content"`
	RoundNumber int    `json:"round_number"`
	Timestamp   string `json:"timestamp"`
}

// RoundCompletePayload is published once every speaker of a round has been
// persisted and current_round has advanced.
type RoundCompletePayload struct {
	Type        string `json:"type"` // always EventTypeRoundComplete
	Round       int    `json:"round"`
	TotalRounds int    `json:"total_rounds"`
	Timestamp   string `json:"timestamp"`
}

// MeetingCompletePayload is published once when a meeting reaches a
// terminal status after its final round (never on cancellation, which
// produces no terminal event).
type MeetingCompletePayload struct {
	Type      string `json:"type"` // always EventTypeMeetingComplete
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// ErrorPayload is published when a meeting fails, typically from an
// LLM-fatal or store-failure error.
type ErrorPayload struct {
	Type      string `json:"type"` // always EventTypeError
	Detail    string `json:"detail"`
	Provider  string `json:"provider,omitempty"`
	Timestamp string `json:"timestamp"`
}
