package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/conclave-run/conclave/pkg/models"
)

// PgGateway is the jackc/pgx/v5-backed implementation of Gateway. A single
// pool is shared across all methods; each public method opens at most one
// short transaction, per the concurrency model's "no long-held locks" rule.
type PgGateway struct {
	pool *pgxpool.Pool
}

// NewPgGateway connects to dsn and verifies connectivity with a ping.
func NewPgGateway(ctx context.Context, dsn string) (*PgGateway, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("repo: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("repo: ping: %w", err)
	}
	return &PgGateway{pool: pool}, nil
}

// Close releases the underlying connection pool.
func (g *PgGateway) Close() {
	g.pool.Close()
}

// Ping verifies the pool can still reach the database, for the health
// endpoint's liveness check.
func (g *PgGateway) Ping(ctx context.Context) error {
	return g.pool.Ping(ctx)
}

// DSN-level access for components (e.g. the events listener) that need a
// dedicated connection outside the pool.
func (g *PgGateway) Pool() *pgxpool.Pool { return g.pool }

func (g *PgGateway) GetTeam(ctx context.Context, id string) (*models.Team, error) {
	var t models.Team
	err := g.pool.QueryRow(ctx, `SELECT id, name, description, default_language, public, owner_id, created_at, updated_at
		FROM teams WHERE id = $1`, id).Scan(
		&t.ID, &t.Name, &t.Description, &t.DefaultLanguage, &t.Public, &t.OwnerID, &t.CreatedAt, &t.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("repo: get team: %w", err)
	}
	return &t, nil
}

func (g *PgGateway) ListTeams(ctx context.Context) ([]*models.Team, error) {
	rows, err := g.pool.Query(ctx, `SELECT id, name, description, default_language, public, owner_id, created_at, updated_at
		FROM teams ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("repo: list teams: %w", err)
	}
	defer rows.Close()

	var out []*models.Team
	for rows.Next() {
		var t models.Team
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.DefaultLanguage, &t.Public, &t.OwnerID, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}

func (g *PgGateway) CreateTeam(ctx context.Context, t *models.Team) error {
	now := time.Now()
	t.CreatedAt, t.UpdatedAt = now, now
	_, err := g.pool.Exec(ctx, `INSERT INTO teams (id, name, description, default_language, public, owner_id, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		t.ID, t.Name, t.Description, t.DefaultLanguage, t.Public, t.OwnerID, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("repo: create team: %w", err)
	}
	return nil
}

func (g *PgGateway) ListAgents(ctx context.Context, teamID string) ([]*models.Agent, error) {
	rows, err := g.pool.Query(ctx, `SELECT id, team_id, display_name, title, expertise, goal, role, model,
		model_params, system_prompt, is_mirror, primary_agent_id, created_at, updated_at
		FROM agents WHERE team_id = $1 ORDER BY created_at`, teamID)
	if err != nil {
		return nil, fmt.Errorf("repo: list agents: %w", err)
	}
	defer rows.Close()

	var out []*models.Agent
	for rows.Next() {
		a, err := scanAgent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (g *PgGateway) GetAgent(ctx context.Context, id string) (*models.Agent, error) {
	row := g.pool.QueryRow(ctx, `SELECT id, team_id, display_name, title, expertise, goal, role, model,
		model_params, system_prompt, is_mirror, primary_agent_id, created_at, updated_at
		FROM agents WHERE id = $1`, id)
	a, err := scanAgent(row)
	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("repo: get agent: %w", err)
	}
	return a, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAgent(row rowScanner) (*models.Agent, error) {
	var a models.Agent
	var paramsJSON []byte
	if err := row.Scan(&a.ID, &a.TeamID, &a.DisplayName, &a.Title, &a.Expertise, &a.Goal, &a.Role, &a.Model,
		&paramsJSON, &a.SystemPrompt, &a.IsMirror, &a.PrimaryAgentID, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	if len(paramsJSON) > 0 {
		if err := json.Unmarshal(paramsJSON, &a.ModelParams); err != nil {
			return nil, fmt.Errorf("repo: decode model_params: %w", err)
		}
	}
	return &a, nil
}

func (g *PgGateway) CreateAgent(ctx context.Context, a *models.Agent) error {
	now := time.Now()
	a.CreatedAt, a.UpdatedAt = now, now
	paramsJSON, err := json.Marshal(a.ModelParams)
	if err != nil {
		return fmt.Errorf("repo: encode model_params: %w", err)
	}
	_, err = g.pool.Exec(ctx, `INSERT INTO agents (id, team_id, display_name, title, expertise, goal, role, model,
		model_params, system_prompt, is_mirror, primary_agent_id, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		a.ID, a.TeamID, a.DisplayName, a.Title, a.Expertise, a.Goal, a.Role, a.Model,
		paramsJSON, a.SystemPrompt, a.IsMirror, a.PrimaryAgentID, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("repo: create agent: %w", err)
	}
	return nil
}

func (g *PgGateway) UpdateAgent(ctx context.Context, a *models.Agent) error {
	a.UpdatedAt = time.Now()
	paramsJSON, err := json.Marshal(a.ModelParams)
	if err != nil {
		return fmt.Errorf("repo: encode model_params: %w", err)
	}
	tag, err := g.pool.Exec(ctx, `UPDATE agents SET display_name=$2, title=$3, expertise=$4, goal=$5, role=$6,
		model=$7, model_params=$8, system_prompt=$9, is_mirror=$10, primary_agent_id=$11, updated_at=$12
		WHERE id = $1`,
		a.ID, a.DisplayName, a.Title, a.Expertise, a.Goal, a.Role, a.Model, paramsJSON,
		a.SystemPrompt, a.IsMirror, a.PrimaryAgentID, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("repo: update agent: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAgent removes an agent. Per the ownership invariant, referencing
// messages have their agent_id nulled rather than cascaded, and a mirror's
// primary_agent_id back-reference is nulled rather than cascading deletion.
func (g *PgGateway) DeleteAgent(ctx context.Context, id string) error {
	tx, err := g.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repo: delete agent: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `UPDATE meeting_messages SET agent_id = NULL WHERE agent_id = $1`, id); err != nil {
		return fmt.Errorf("repo: delete agent: null messages: %w", err)
	}
	if _, err := tx.Exec(ctx, `UPDATE agents SET primary_agent_id = NULL WHERE primary_agent_id = $1`, id); err != nil {
		return fmt.Errorf("repo: delete agent: null mirrors: %w", err)
	}
	tag, err := tx.Exec(ctx, `DELETE FROM agents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("repo: delete agent: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return tx.Commit(ctx)
}
