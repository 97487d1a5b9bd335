// Package models holds the plain data types that cross package boundaries:
// the repository gateway reads and writes them, the engine operates on them,
// and the API layer serializes them. They carry no persistence behavior of
// their own — see pkg/repo for the store-backed gateway.
package models

import "time"

// Team is a container that owns agents and meetings.
type Team struct {
	ID              string
	Name            string
	Description     string
	DefaultLanguage string
	Public          bool
	OwnerID         string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Agent is a persona belonging to one team.
type Agent struct {
	ID             string
	TeamID         string
	DisplayName    string
	Title          string
	Expertise      string
	Goal           string
	Role           string
	Model          string
	ModelParams    map[string]any
	SystemPrompt   string
	IsMirror       bool
	PrimaryAgentID *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Meeting is a bounded, multi-round conversation among agents.
type Meeting struct {
	ID                string
	TeamID            string
	Title             string
	Agenda            string
	AgendaQuestions   []string
	AgendaRules       []string
	OutputType        OutputType
	MeetingType       MeetingType
	MaxRounds         int
	CurrentRound      int
	Status            MeetingStatus
	ParticipantAgentIDs []string
	IndividualAgentID *string
	SourceMeetingIDs  []string
	ContextMeetingIDs []string
	ParentMeetingID   *string
	RewriteFeedback   string
	AgendaStrategy    AgendaStrategy
	RoundPlan         []string
	Locale            string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// MeetingMessage is one turn in a meeting's transcript.
type MeetingMessage struct {
	ID             string
	MeetingID      string
	Role           MessageRole
	AgentID        *string
	AgentName      string
	Content        string
	RoundNumber    int
	CreatedAt      time.Time
}

// CodeArtifact is a file-shaped output extracted from a completed meeting's
// assistant messages.
type CodeArtifact struct {
	ID          string
	MeetingID   string
	Filename    string
	Language    string
	Content     string
	Description string
	Version     int
	SourceAgent string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// WebhookConfig is a registered outbound delivery target for bus events.
type WebhookConfig struct {
	ID        string
	TeamID    string
	URL       string
	Events    []string
	Active    bool
	Secret    string
	CreatedAt time.Time
}

// User and TeamMembership support owner/RBAC bookkeeping when auth is
// enabled; the core engine never consults them directly.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

type TeamMembership struct {
	TeamID string
	UserID string
	Role   string // "owner", "editor", "viewer"
}
