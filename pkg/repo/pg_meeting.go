package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/conclave-run/conclave/pkg/models"
)

func (g *PgGateway) GetMeeting(ctx context.Context, id string) (*models.Meeting, error) {
	m, err := scanMeeting(g.pool.QueryRow(ctx, meetingSelectSQL+` WHERE id = $1`, id))
	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("repo: get meeting: %w", err)
	}
	return m, nil
}

const meetingSelectSQL = `SELECT id, team_id, title, agenda, agenda_questions, agenda_rules, output_type,
	meeting_type, max_rounds, current_round, status, participant_agent_ids, individual_agent_id,
	source_meeting_ids, context_meeting_ids, parent_meeting_id, rewrite_feedback, agenda_strategy,
	round_plan, locale, created_at, updated_at FROM meetings`

func scanMeeting(row rowScanner) (*models.Meeting, error) {
	var m models.Meeting
	var questionsJSON, rulesJSON, participantsJSON, sourceJSON, contextJSON, planJSON []byte
	if err := row.Scan(&m.ID, &m.TeamID, &m.Title, &m.Agenda, &questionsJSON, &rulesJSON, &m.OutputType,
		&m.MeetingType, &m.MaxRounds, &m.CurrentRound, &m.Status, &participantsJSON, &m.IndividualAgentID,
		&sourceJSON, &contextJSON, &m.ParentMeetingID, &m.RewriteFeedback, &m.AgendaStrategy,
		&planJSON, &m.Locale, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	for dst, src := range map[*[]string][]byte{
		&m.AgendaQuestions: questionsJSON, &m.AgendaRules: rulesJSON, &m.ParticipantAgentIDs: participantsJSON,
		&m.SourceMeetingIDs: sourceJSON, &m.ContextMeetingIDs: contextJSON, &m.RoundPlan: planJSON,
	} {
		if len(src) > 0 {
			if err := json.Unmarshal(src, dst); err != nil {
				return nil, fmt.Errorf("decode meeting list field: %w", err)
			}
		}
	}
	return &m, nil
}

func (g *PgGateway) CreateMeeting(ctx context.Context, m *models.Meeting) error {
	now := time.Now()
	m.CreatedAt, m.UpdatedAt = now, now
	if m.Status == "" {
		m.Status = models.MeetingStatusPending
	}
	questionsJSON, _ := json.Marshal(m.AgendaQuestions)
	rulesJSON, _ := json.Marshal(m.AgendaRules)
	participantsJSON, _ := json.Marshal(m.ParticipantAgentIDs)
	sourceJSON, _ := json.Marshal(m.SourceMeetingIDs)
	contextJSON, _ := json.Marshal(m.ContextMeetingIDs)
	planJSON, _ := json.Marshal(m.RoundPlan)

	_, err := g.pool.Exec(ctx, `INSERT INTO meetings (id, team_id, title, agenda, agenda_questions, agenda_rules,
		output_type, meeting_type, max_rounds, current_round, status, participant_agent_ids, individual_agent_id,
		source_meeting_ids, context_meeting_ids, parent_meeting_id, rewrite_feedback, agenda_strategy, round_plan,
		locale, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22)`,
		m.ID, m.TeamID, m.Title, m.Agenda, questionsJSON, rulesJSON, m.OutputType, m.MeetingType, m.MaxRounds,
		m.CurrentRound, m.Status, participantsJSON, m.IndividualAgentID, sourceJSON, contextJSON,
		m.ParentMeetingID, m.RewriteFeedback, m.AgendaStrategy, planJSON, m.Locale, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("repo: create meeting: %w", err)
	}
	return nil
}

func (g *PgGateway) ListMessages(ctx context.Context, meetingID string) ([]*models.MeetingMessage, error) {
	rows, err := g.pool.Query(ctx, `SELECT id, meeting_id, role, agent_id, agent_name, content, round_number, created_at
		FROM meeting_messages WHERE meeting_id = $1 ORDER BY round_number, created_at`, meetingID)
	if err != nil {
		return nil, fmt.Errorf("repo: list messages: %w", err)
	}
	defer rows.Close()

	var out []*models.MeetingMessage
	for rows.Next() {
		var msg models.MeetingMessage
		if err := rows.Scan(&msg.ID, &msg.MeetingID, &msg.Role, &msg.AgentID, &msg.AgentName, &msg.Content,
			&msg.RoundNumber, &msg.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &msg)
	}
	return out, rows.Err()
}

func (g *PgGateway) LastAssistantMessage(ctx context.Context, meetingID string) (*models.MeetingMessage, error) {
	var msg models.MeetingMessage
	err := g.pool.QueryRow(ctx, `SELECT id, meeting_id, role, agent_id, agent_name, content, round_number, created_at
		FROM meeting_messages WHERE meeting_id = $1 AND role = 'assistant'
		ORDER BY round_number DESC, created_at DESC LIMIT 1`, meetingID).Scan(
		&msg.ID, &msg.MeetingID, &msg.Role, &msg.AgentID, &msg.AgentName, &msg.Content, &msg.RoundNumber, &msg.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("repo: last assistant message: %w", err)
	}
	return &msg, nil
}

// CommitRound persists every message of a round plus the meeting's new
// current_round and status inside a single transaction, so a crash mid-round
// never leaves partial turns visible to readers.
func (g *PgGateway) CommitRound(ctx context.Context, meetingID string, messages []*models.MeetingMessage, newRound int, newStatus models.MeetingStatus) error {
	tx, err := g.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repo: commit round: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, msg := range messages {
		if msg.CreatedAt.IsZero() {
			msg.CreatedAt = time.Now()
		}
		_, err := tx.Exec(ctx, `INSERT INTO meeting_messages (id, meeting_id, role, agent_id, agent_name, content, round_number, created_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			msg.ID, meetingID, msg.Role, msg.AgentID, msg.AgentName, msg.Content, msg.RoundNumber, msg.CreatedAt)
		if err != nil {
			return fmt.Errorf("repo: commit round: insert message: %w", err)
		}
	}

	tag, err := tx.Exec(ctx, `UPDATE meetings SET current_round = $2, status = $3, updated_at = now() WHERE id = $1`,
		meetingID, newRound, newStatus)
	if err != nil {
		return fmt.Errorf("repo: commit round: update meeting: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return tx.Commit(ctx)
}

// ClaimForRun performs the pending->running transition guarded by a
// conditional UPDATE: the WHERE clause only matches rows still pending, so
// a racing second claim sees zero rows affected and reports ErrConflict
// instead of relying on an explicit row lock.
func (g *PgGateway) ClaimForRun(ctx context.Context, meetingID string) error {
	tag, err := g.pool.Exec(ctx, `UPDATE meetings SET status = $2, updated_at = now()
		WHERE id = $1 AND status = $3`, meetingID, models.MeetingStatusRunning, models.MeetingStatusPending)
	if err != nil {
		return fmt.Errorf("repo: claim for run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrConflict
	}
	return nil
}

func (g *PgGateway) MarkFailed(ctx context.Context, meetingID string) error {
	tag, err := g.pool.Exec(ctx, `UPDATE meetings SET status = $2, updated_at = now() WHERE id = $1`,
		meetingID, models.MeetingStatusFailed)
	if err != nil {
		return fmt.Errorf("repo: mark failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SweepOrphanedRunning marks every meeting left "running" at process start
// as failed, since the in-memory single-flight registry is always empty on
// a fresh process — any "running" row by definition has no live worker.
// A row whose id fails to scan, or that cannot be marked failed, is logged
// and counted as skipped rather than aborting the whole sweep.
func (g *PgGateway) SweepOrphanedRunning(ctx context.Context) ([]string, int, error) {
	rows, err := g.pool.Query(ctx, `SELECT id FROM meetings WHERE status = $1`, models.MeetingStatusRunning)
	if err != nil {
		return nil, 0, fmt.Errorf("repo: sweep orphaned: query: %w", err)
	}
	var ids []string
	skipped := 0
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			skipped++
			slog.Warn("sweep: skipping row with scan mismatch", "error", err)
			continue
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, skipped, fmt.Errorf("repo: sweep orphaned: rows: %w", err)
	}

	for _, id := range ids {
		if err := g.MarkFailed(ctx, id); err != nil {
			skipped++
			slog.Warn("sweep: failed to mark meeting failed", "meeting_id", id, "error", err)
		}
	}
	return ids, skipped, nil
}
