// Package repo is the typed repository gateway abstracting the persistent
// store. It is the only package that imports jackc/pgx/v5 and issues SQL;
// every other package depends on the interfaces declared here.
package repo

import (
	"context"
	"errors"

	"github.com/conclave-run/conclave/pkg/models"
)

// ErrNotFound is returned when a lookup by id matches no row.
var ErrNotFound = errors.New("repo: not found")

// ErrConflict is returned when a write would violate an invariant enforced
// by the store (e.g. a duplicate single-flight claim).
var ErrConflict = errors.New("repo: conflict")

// TeamRepo reads and writes teams and their membership.
type TeamRepo interface {
	GetTeam(ctx context.Context, id string) (*models.Team, error)
	ListTeams(ctx context.Context) ([]*models.Team, error)
	CreateTeam(ctx context.Context, t *models.Team) error
	ListAgents(ctx context.Context, teamID string) ([]*models.Agent, error)
	GetAgent(ctx context.Context, id string) (*models.Agent, error)
	CreateAgent(ctx context.Context, a *models.Agent) error
	UpdateAgent(ctx context.Context, a *models.Agent) error
	DeleteAgent(ctx context.Context, id string) error
}

// MeetingRepo reads and writes meetings, their messages, and derived state.
type MeetingRepo interface {
	GetMeeting(ctx context.Context, id string) (*models.Meeting, error)
	CreateMeeting(ctx context.Context, m *models.Meeting) error
	ListMessages(ctx context.Context, meetingID string) ([]*models.MeetingMessage, error)
	LastAssistantMessage(ctx context.Context, meetingID string) (*models.MeetingMessage, error)

	// CommitRound atomically persists every message produced by a round plus
	// the meeting's updated current_round and status. A crash before commit
	// leaves the meeting restartable from the round that was in flight.
	CommitRound(ctx context.Context, meetingID string, messages []*models.MeetingMessage, newRound int, newStatus models.MeetingStatus) error

	// ClaimForRun attempts the pending->running transition for meetingID.
	// It returns ErrConflict if the meeting is not in pending state, which
	// the caller treats identically to a single-flight registry miss.
	ClaimForRun(ctx context.Context, meetingID string) error

	// MarkFailed transitions a meeting straight to failed, used both for
	// LLM-fatal errors mid-run and for the startup recovery sweep.
	MarkFailed(ctx context.Context, meetingID string) error

	// SweepOrphanedRunning returns the ids of meetings left in "running"
	// with no live worker (i.e. every meeting currently "running" at
	// process start, since the registry is always empty then) and marks
	// them failed. Rows that cannot be read or marked failed are skipped
	// with a warning log and counted in skipped.
	SweepOrphanedRunning(ctx context.Context) (failedIDs []string, skipped int, err error)
}

// ArtifactRepo reads and writes code artifacts.
type ArtifactRepo interface {
	ListArtifacts(ctx context.Context, meetingID string) ([]*models.CodeArtifact, error)
	PutArtifacts(ctx context.Context, meetingID string, artifacts []*models.CodeArtifact) error
}

// WebhookRepo reads and writes registered webhook delivery targets.
type WebhookRepo interface {
	ListWebhooks(ctx context.Context, teamID string) ([]*models.WebhookConfig, error)
	ListActiveWebhooksForEvent(ctx context.Context, teamID, eventType string) ([]*models.WebhookConfig, error)
	CreateWebhook(ctx context.Context, w *models.WebhookConfig) error
}

// EventRepo persists bus events for catchup delivery (see pkg/events).
type EventRepo interface {
	InsertEvent(ctx context.Context, channel string, payload map[string]any) (int64, error)
	GetEventsSince(ctx context.Context, channel string, sinceID int64, limit int) ([]StoredEvent, error)
}

// StoredEvent is a row from the events table, used for WebSocket catchup.
type StoredEvent struct {
	ID      int64
	Payload map[string]any
}

// Gateway bundles every repository interface behind one handle, the shape
// threaded through the engine, runner, and API layers.
type Gateway interface {
	TeamRepo
	MeetingRepo
	ArtifactRepo
	WebhookRepo
	EventRepo
}
