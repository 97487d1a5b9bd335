package runner

import (
	"context"
	"fmt"

	"github.com/conclave-run/conclave/pkg/models"
	"github.com/conclave-run/conclave/pkg/repo"
)

// repoTranscriptSource adapts the repository gateway's message history to
// the narrow view pkg/context's Extractor needs from a prior meeting.
type repoTranscriptSource struct {
	gateway repo.Gateway
}

func (s *repoTranscriptSource) MeetingTitle(ctx context.Context, meetingID string) (string, error) {
	m, err := s.gateway.GetMeeting(ctx, meetingID)
	if err != nil {
		return "", fmt.Errorf("runner: fetch title for meeting %s: %w", meetingID, err)
	}
	return m.Title, nil
}

func (s *repoTranscriptSource) AssistantMessages(ctx context.Context, meetingID string) ([]string, error) {
	msgs, err := s.gateway.ListMessages(ctx, meetingID)
	if err != nil {
		return nil, fmt.Errorf("runner: list messages for meeting %s: %w", meetingID, err)
	}
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		if m.Role == models.MessageRoleAssistant {
			out = append(out, m.Content)
		}
	}
	return out, nil
}
