package events

import (
	"context"

	"github.com/conclave-run/conclave/pkg/repo"
)

// RepoCatchupAdapter wraps the repository gateway's EventRepo to implement
// ConnectionManager's CatchupQuerier, translating its int64/StoredEvent
// shape to the events package's int-based CatchupEvent.
type RepoCatchupAdapter struct {
	events repo.EventRepo
}

// NewRepoCatchupAdapter builds a CatchupQuerier backed by the repository
// gateway's persisted events table.
func NewRepoCatchupAdapter(events repo.EventRepo) *RepoCatchupAdapter {
	return &RepoCatchupAdapter{events: events}
}

// GetCatchupEvents queries events since sinceID, up to limit, for a channel.
func (a *RepoCatchupAdapter) GetCatchupEvents(ctx context.Context, channel string, sinceID, limit int) ([]CatchupEvent, error) {
	stored, err := a.events.GetEventsSince(ctx, channel, int64(sinceID), limit)
	if err != nil {
		return nil, err
	}

	result := make([]CatchupEvent, len(stored))
	for i, evt := range stored {
		result[i] = CatchupEvent{
			ID:      int(evt.ID),
			Payload: evt.Payload,
		}
	}
	return result, nil
}
