package repo

import (
	"context"
	"encoding/json"
	"fmt"
)

// InsertEvent persists a bus event for later catchup delivery and returns
// its id. The insert runs in its own statement; any broadcast or NOTIFY of
// the event happens separately, after this call returns.
func (g *PgGateway) InsertEvent(ctx context.Context, channel string, payload map[string]any) (int64, error) {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("repo: insert event: encode: %w", err)
	}
	var id int64
	err = g.pool.QueryRow(ctx, `INSERT INTO events (channel, payload, created_at) VALUES ($1, $2, now()) RETURNING id`,
		channel, payloadJSON).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("repo: insert event: %w", err)
	}
	return id, nil
}

func (g *PgGateway) GetEventsSince(ctx context.Context, channel string, sinceID int64, limit int) ([]StoredEvent, error) {
	rows, err := g.pool.Query(ctx, `SELECT id, payload FROM events WHERE channel = $1 AND id > $2
		ORDER BY id ASC LIMIT $3`, channel, sinceID, limit)
	if err != nil {
		return nil, fmt.Errorf("repo: get events since: %w", err)
	}
	defer rows.Close()

	var out []StoredEvent
	for rows.Next() {
		var e StoredEvent
		var payloadJSON []byte
		if err := rows.Scan(&e.ID, &payloadJSON); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(payloadJSON, &e.Payload); err != nil {
			return nil, fmt.Errorf("repo: decode event payload: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
