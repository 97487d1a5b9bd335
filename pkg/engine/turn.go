package engine

import (
	"context"
	"fmt"

	"github.com/conclave-run/conclave/pkg/llmclient"
	"github.com/conclave-run/conclave/pkg/models"
	"github.com/conclave-run/conclave/pkg/prompt"
)

// ContextSummary is a prior meeting's excerpt, produced by the context
// extractor and injected at round 1 of a chain meeting.
type ContextSummary struct {
	Title   string
	Excerpt string
}

// Callbacks are the runner's hooks into the engine's per-turn lifecycle.
// The engine never touches the store or event bus itself; the runner
// supplies these to do both, keeping the engine reusable by a synchronous
// run-to-completion adapter that has no background worker at all.
type Callbacks struct {
	OnAgentStart func(agent *models.Agent)
	OnAgentDone  func(msg *models.MeetingMessage)
}

func (c Callbacks) start(a *models.Agent) {
	if c.OnAgentStart != nil {
		c.OnAgentStart(a)
	}
}

func (c Callbacks) done(m *models.MeetingMessage) {
	if c.OnAgentDone != nil {
		c.OnAgentDone(m)
	}
}

// turnSpec is one resolved speaker turn within a round: the agent and the
// composer-built instruction specific to its role in this round.
type turnSpec struct {
	Agent      *models.Agent
	UserPrompt string
}

// seedMeetingStart injects the meeting-start pseudo-user message and, when
// non-empty, the chain context summaries, as history entries preceding
// round 1's first turn.
func seedMeetingStart(h *turnHistory, startPrompt string, summaries []ContextSummary) {
	h.lines = append(h.lines, startPrompt)
	for i, s := range summaries {
		h.lines = append(h.lines, prompt.WrapContextSummary(i+1, s.Title, s.Excerpt))
	}
}

// executeTurn runs one agent's turn: assembles system prompt and message
// history, dispatches the LLM call, appends the response to in-memory
// history, and invokes the start/done callbacks around the call.
func executeTurn(
	ctx context.Context,
	llm llmclient.Client,
	composer *prompt.Composer,
	history *turnHistory,
	meeting *models.Meeting,
	spec turnSpec,
	round, totalRounds int,
	cb Callbacks,
) (*models.MeetingMessage, error) {
	cb.start(spec.Agent)

	systemPrompt := composer.SystemPromptFor(spec.Agent, meeting.OutputType)
	messages := make([]llmclient.Message, 0, len(history.lines)+1)
	for _, line := range history.asMessages() {
		messages = append(messages, llmclient.Message{Role: "user", Content: line})
	}
	messages = append(messages, llmclient.Message{Role: "user", Content: spec.UserPrompt})

	params := llmclient.Params{Temperature: composer.PhaseTemperature(round, totalRounds)}

	// The call does not observe run cancellation, so a cancelled run still
	// finishes the turn in flight; runRound stops after it.
	content, _, err := llm.Chat(context.WithoutCancel(ctx), systemPrompt, messages, spec.Agent.Model, params)
	if err != nil {
		return nil, fmt.Errorf("engine: turn for agent %s: %w", spec.Agent.ID, err)
	}

	history.append(spec.Agent.DisplayName, content)

	msg := &models.MeetingMessage{
		MeetingID:   meeting.ID,
		Role:        models.MessageRoleAssistant,
		AgentID:     &spec.Agent.ID,
		AgentName:   spec.Agent.DisplayName,
		Content:     content,
		RoundNumber: round,
	}
	cb.done(msg)
	return msg, nil
}
