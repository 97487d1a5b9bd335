package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/conclave-run/conclave/pkg/models"
)

func (g *PgGateway) ListArtifacts(ctx context.Context, meetingID string) ([]*models.CodeArtifact, error) {
	rows, err := g.pool.Query(ctx, `SELECT id, meeting_id, filename, language, content, description, version,
		source_agent, created_at, updated_at FROM code_artifacts WHERE meeting_id = $1 ORDER BY filename`, meetingID)
	if err != nil {
		return nil, fmt.Errorf("repo: list artifacts: %w", err)
	}
	defer rows.Close()

	var out []*models.CodeArtifact
	for rows.Next() {
		var a models.CodeArtifact
		if err := rows.Scan(&a.ID, &a.MeetingID, &a.Filename, &a.Language, &a.Content, &a.Description,
			&a.Version, &a.SourceAgent, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

// PutArtifacts upserts a meeting's artifact set in one transaction: an
// existing filename bumps its version, a new filename is inserted fresh.
// Failure here is logged by the caller (the code extractor) but never fails
// the owning meeting.
func (g *PgGateway) PutArtifacts(ctx context.Context, meetingID string, artifacts []*models.CodeArtifact) error {
	tx, err := g.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repo: put artifacts: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	now := time.Now()
	for _, a := range artifacts {
		var existingVersion int
		err := tx.QueryRow(ctx, `SELECT version FROM code_artifacts WHERE meeting_id = $1 AND filename = $2`,
			meetingID, a.Filename).Scan(&existingVersion)
		switch err {
		case nil:
			a.Version = existingVersion + 1
			if _, err := tx.Exec(ctx, `UPDATE code_artifacts SET content = $3, language = $4, description = $5,
				version = $6, source_agent = $7, updated_at = $8 WHERE meeting_id = $1 AND filename = $2`,
				meetingID, a.Filename, a.Content, a.Language, a.Description, a.Version, a.SourceAgent, now); err != nil {
				return fmt.Errorf("repo: put artifacts: update: %w", err)
			}
		default:
			a.Version = 1
			a.CreatedAt, a.UpdatedAt = now, now
			if _, err := tx.Exec(ctx, `INSERT INTO code_artifacts (id, meeting_id, filename, language, content,
				description, version, source_agent, created_at, updated_at)
				VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
				a.ID, meetingID, a.Filename, a.Language, a.Content, a.Description, a.Version, a.SourceAgent,
				a.CreatedAt, a.UpdatedAt); err != nil {
				return fmt.Errorf("repo: put artifacts: insert: %w", err)
			}
		}
	}
	return tx.Commit(ctx)
}

func (g *PgGateway) ListWebhooks(ctx context.Context, teamID string) ([]*models.WebhookConfig, error) {
	return g.queryWebhooks(ctx, `SELECT id, team_id, url, events, active, secret, created_at
		FROM webhook_configs WHERE team_id = $1`, teamID)
}

func (g *PgGateway) ListActiveWebhooksForEvent(ctx context.Context, teamID, eventType string) ([]*models.WebhookConfig, error) {
	hooks, err := g.queryWebhooks(ctx, `SELECT id, team_id, url, events, active, secret, created_at
		FROM webhook_configs WHERE team_id = $1 AND active = true`, teamID)
	if err != nil {
		return nil, err
	}
	var out []*models.WebhookConfig
	for _, h := range hooks {
		for _, e := range h.Events {
			if e == eventType {
				out = append(out, h)
				break
			}
		}
	}
	return out, nil
}

// CreateWebhook registers a new outbound delivery target for a team.
func (g *PgGateway) CreateWebhook(ctx context.Context, w *models.WebhookConfig) error {
	w.CreatedAt = time.Now()
	eventsJSON, err := json.Marshal(w.Events)
	if err != nil {
		return fmt.Errorf("repo: encode webhook events: %w", err)
	}
	_, err = g.pool.Exec(ctx, `INSERT INTO webhook_configs (id, team_id, url, events, active, secret, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		w.ID, w.TeamID, w.URL, eventsJSON, w.Active, w.Secret, w.CreatedAt)
	if err != nil {
		return fmt.Errorf("repo: create webhook: %w", err)
	}
	return nil
}

func (g *PgGateway) queryWebhooks(ctx context.Context, sql string, args ...any) ([]*models.WebhookConfig, error) {
	rows, err := g.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("repo: list webhooks: %w", err)
	}
	defer rows.Close()

	var out []*models.WebhookConfig
	for rows.Next() {
		var w models.WebhookConfig
		var eventsJSON []byte
		if err := rows.Scan(&w.ID, &w.TeamID, &w.URL, &eventsJSON, &w.Active, &w.Secret, &w.CreatedAt); err != nil {
			return nil, err
		}
		if len(eventsJSON) > 0 {
			if err := json.Unmarshal(eventsJSON, &w.Events); err != nil {
				return nil, fmt.Errorf("repo: decode webhook events: %w", err)
			}
		}
		out = append(out, &w)
	}
	return out, rows.Err()
}
