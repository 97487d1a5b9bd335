package runner

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/conclave-run/conclave/pkg/events"
	"github.com/conclave-run/conclave/pkg/models"
	"github.com/conclave-run/conclave/pkg/prompt"
)

// WSAdapter implements events.RunActionHandler, translating the
// WebSocket control-plane actions ("start_round", "user_message") into
// Manager calls. It is constructed once at startup and wired into the
// events.ConnectionManager via SetRunActionHandler.
type WSAdapter struct {
	manager *Manager
}

// NewWSAdapter builds a WSAdapter over manager.
func NewWSAdapter(manager *Manager) *WSAdapter {
	return &WSAdapter{manager: manager}
}

// HandleStartRound begins (or resumes) the meeting addressed by channel's
// background rounds. The inbound "topic" field has no defined meaning for
// an already-created meeting's round execution (creating/retitling a
// meeting is a REST concern, not a WebSocket one) and is intentionally
// ignored here — see DESIGN.md.
func (a *WSAdapter) HandleStartRound(ctx context.Context, channel string, rounds int, topic string) error {
	meetingID, err := meetingIDFromChannel(channel)
	if err != nil {
		return err
	}
	started, err := a.manager.StartBackground(meetingID, rounds, "")
	if err != nil {
		return err
	}
	if !started {
		return ErrAlreadyRunning
	}
	return nil
}

// HandleUserMessage persists human feedback into the meeting's transcript
// and broadcasts it immediately over the bus. It does not interrupt an
// in-flight run mid-round: pkg/engine's turn history is rebuilt from
// persisted messages only at the start of a run, so injected feedback is
// woven into the LLM-visible context starting with the next time rounds
// are (re)started for this meeting. Doing better — splicing it into a
// live run — would require either exposing the engine's unexported
// history type or a cancel-then-auto-resume dance racing against the
// single-flight registry; persist-now/apply-next-round is simpler and
// still gives immediate feedback on the live transcript view.
func (a *WSAdapter) HandleUserMessage(ctx context.Context, channel string, content string) error {
	meetingID, err := meetingIDFromChannel(channel)
	if err != nil {
		return err
	}
	meeting, err := a.manager.gateway.GetMeeting(ctx, meetingID)
	if err != nil {
		return fmt.Errorf("runner: load meeting for user_message: %w", err)
	}

	composer := prompt.NewComposer()
	msg := &models.MeetingMessage{
		ID:          uuid.New().String(),
		MeetingID:   meetingID,
		Role:        models.MessageRoleUser,
		Content:     composer.WrapHumanFeedback(content),
		RoundNumber: meeting.CurrentRound + 1,
	}

	if err := a.manager.gateway.CommitRound(ctx, meetingID, []*models.MeetingMessage{msg}, meeting.CurrentRound, meeting.Status); err != nil {
		return fmt.Errorf("runner: persist human feedback: %w", err)
	}

	if a.manager.publisher != nil {
		_ = a.manager.publisher.PublishMessage(ctx, meetingID, events.MessagePayload{
			ID:          msg.ID,
			AgentName:   "human",
			Role:        string(msg.Role),
			Content:     msg.Content,
			RoundNumber: msg.RoundNumber,
		})
	}
	return nil
}

func meetingIDFromChannel(channel string) (string, error) {
	const prefix = "meeting:"
	if !strings.HasPrefix(channel, prefix) {
		return "", fmt.Errorf("runner: malformed meeting channel %q", channel)
	}
	id := strings.TrimPrefix(channel, prefix)
	if id == "" {
		return "", fmt.Errorf("runner: empty meeting id in channel %q", channel)
	}
	return id, nil
}
