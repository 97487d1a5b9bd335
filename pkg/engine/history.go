package engine

import (
	"fmt"

	"github.com/conclave-run/conclave/pkg/models"
	"github.com/conclave-run/conclave/pkg/prompt"
)

// turnHistory is the in-memory transcript a running turn sees: every
// earlier turn's speaker and content, formatted as the composer expects it
// to reappear in a later prompt.
type turnHistory struct {
	lines []string
}

func newTurnHistory() *turnHistory {
	return &turnHistory{}
}

// append records a speaker's line so later speakers in the same round (and
// later rounds) see it.
func (h *turnHistory) append(speaker, content string) {
	h.lines = append(h.lines, fmt.Sprintf("[%s]: %s", speaker, content))
}

// appendHumanFeedback records a user-role message with no originating
// agent, re-prefixed so models treat it as high-priority.
func (h *turnHistory) appendHumanFeedback(content string) {
	h.lines = append(h.lines, prompt.NewComposer().WrapHumanFeedback(content))
}

func (h *turnHistory) asMessages() []string {
	return h.lines
}

// seedFromPersisted rebuilds in-memory history from a meeting's persisted
// messages, so a resumed meeting's later rounds see everything said so
// far. User messages with no agent are treated as human feedback.
func seedFromPersisted(h *turnHistory, messages []*models.MeetingMessage) {
	for _, m := range messages {
		switch m.Role {
		case models.MessageRoleAssistant:
			h.append(m.AgentName, m.Content)
		case models.MessageRoleUser:
			if m.AgentID == nil {
				h.appendHumanFeedback(m.Content)
			} else {
				h.append(m.AgentName, m.Content)
			}
		}
	}
}
