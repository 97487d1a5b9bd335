package api

import "github.com/conclave-run/conclave/pkg/models"

// MeetingResponse is returned by POST /meetings/:id/run: the meeting plus
// every message persisted so far.
type MeetingResponse struct {
	Meeting  *models.Meeting         `json:"meeting"`
	Messages []*models.MeetingMessage `json:"messages"`
}

// RunBackgroundResponse is returned by POST /meetings/:id/run-background.
type RunBackgroundResponse struct {
	MeetingID string `json:"meeting_id"`
	Status    string `json:"status"`
	Rounds    int    `json:"rounds"`
}

// MeetingStatusResponse is returned by GET /meetings/:id/status.
type MeetingStatusResponse struct {
	MeetingID         string `json:"meeting_id"`
	Status            string `json:"status"`
	CurrentRound      int    `json:"current_round"`
	MaxRounds         int    `json:"max_rounds"`
	MessageCount      int    `json:"message_count"`
	BackgroundRunning bool   `json:"background_running"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status      string `json:"status"`
	Database    string `json:"database"`
	EventsBus   string `json:"events_bus"`
	ActiveRuns  int    `json:"active_connections"`
}

// WebhookResponse is returned by POST /meetings/:id/webhooks.
type WebhookResponse struct {
	ID     string   `json:"id"`
	URL    string   `json:"url"`
	Events []string `json:"events"`
}
