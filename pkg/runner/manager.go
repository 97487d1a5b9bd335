// Package runner drives meeting rounds in the background, single-flight
// per meeting, bridging the stateless pkg/engine orchestration strategies
// to the repository gateway, the event bus, and outbound webhooks. It is
// grounded on tarsy's pkg/queue.ChatMessageExecutor: a goroutine launched
// per call to Submit, tracked in a mutex-guarded cancel-func registry so a
// second call against the same key is rejected instead of double-running.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	extractctx "github.com/conclave-run/conclave/pkg/context"
	"github.com/conclave-run/conclave/pkg/codeextract"
	"github.com/conclave-run/conclave/pkg/engine"
	"github.com/conclave-run/conclave/pkg/events"
	"github.com/conclave-run/conclave/pkg/llmclient"
	"github.com/conclave-run/conclave/pkg/models"
	"github.com/conclave-run/conclave/pkg/repo"
	"github.com/conclave-run/conclave/pkg/webhook"
)

// Manager owns the single-flight registry of in-flight meeting runs and
// the collaborators every run needs: the repository gateway, the LLM
// router, the event publisher, the context extractor's budget, and the
// optional webhook dispatcher.
type Manager struct {
	gateway    repo.Gateway
	llm        llmclient.Client
	publisher  *events.EventPublisher
	webhooks   *webhook.Dispatcher
	ctxBudget  int
	logger     *slog.Logger

	mu     sync.Mutex
	active map[string]context.CancelFunc
}

// NewManager builds a Manager. webhooks may be nil, in which case run
// lifecycle events are never dispatched outbound (still published on the
// bus and persisted as usual).
func NewManager(gateway repo.Gateway, llm llmclient.Client, publisher *events.EventPublisher, webhooks *webhook.Dispatcher, ctxBudgetChars int) *Manager {
	if ctxBudgetChars <= 0 {
		ctxBudgetChars = 3000
	}
	return &Manager{
		gateway:   gateway,
		llm:       llm,
		publisher: publisher,
		webhooks:  webhooks,
		ctxBudget: ctxBudgetChars,
		logger:    slog.Default().With("component", "runner"),
		active:    make(map[string]context.CancelFunc),
	}
}

// StartBackground begins (or resumes) meetingID's remaining rounds on a
// detached goroutine. rounds is accepted for API compatibility with the
// spec's run-background payload; it is validated but a
// meeting always runs to meeting.MaxRounds in one continuous call (see
// DESIGN.md for why a temporary MaxRounds substitution was rejected).
// It returns started=false, nil when the meeting already has a live
// worker — callers surface that as a 202/already-running response rather
// than an error.
func (m *Manager) StartBackground(meetingID string, rounds int, locale string) (started bool, err error) {
	m.mu.Lock()
	if _, exists := m.active[meetingID]; exists {
		m.mu.Unlock()
		return false, nil
	}
	runCtx, cancel := context.WithCancel(context.Background())
	m.active[meetingID] = cancel
	m.mu.Unlock()

	meeting, err := m.gateway.GetMeeting(runCtx, meetingID)
	if err != nil {
		m.unregister(meetingID)
		cancel()
		return false, err
	}
	if rounds > 0 {
		remaining := meeting.MaxRounds - meeting.CurrentRound
		if rounds > remaining {
			m.unregister(meetingID)
			cancel()
			return false, fmt.Errorf("runner: requested %d rounds exceeds %d remaining", rounds, remaining)
		}
	}

	go func() {
		defer cancel()
		defer m.unregister(meetingID)
		if err := m.execute(runCtx, meetingID, locale); err != nil && !errors.Is(err, context.Canceled) {
			m.logger.Warn("background run ended with error", "meeting_id", meetingID, "error", err)
		}
	}()

	return true, nil
}

// CancelRun signals a cooperative stop to meetingID's live worker, if any.
// The worker finishes its current in-flight turn, commits whatever
// partial round resulted, and leaves the meeting pending (never failed).
func (m *Manager) CancelRun(meetingID string) bool {
	m.mu.Lock()
	cancel, ok := m.active[meetingID]
	m.mu.Unlock()
	if !ok {
		return false
	}
	cancel()
	return true
}

// IsRunning reports whether meetingID currently has a live worker in this
// process.
func (m *Manager) IsRunning(meetingID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.active[meetingID]
	return ok
}

// Sweep marks every meeting left "running" with no live worker as failed.
// Call once at process startup, before serving traffic, since a fresh
// process's registry is always empty.
func (m *Manager) Sweep(ctx context.Context) error {
	failedIDs, skipped, err := m.gateway.SweepOrphanedRunning(ctx)
	if err != nil {
		return fmt.Errorf("runner: startup sweep: %w", err)
	}
	if len(failedIDs) > 0 || skipped > 0 {
		m.logger.Warn("startup sweep marked orphaned meetings failed", "count", len(failedIDs), "skipped", skipped)
	}
	return nil
}

func (m *Manager) unregister(meetingID string) {
	m.mu.Lock()
	delete(m.active, meetingID)
	m.mu.Unlock()
}

// execute claims meetingID for this worker, prepares its input, runs it to
// completion or cancellation, and persists every outcome. It is the single
// code path shared by StartBackground's goroutine and RunSynchronous's
// blocking call.
func (m *Manager) execute(ctx context.Context, meetingID, locale string) error {
	meeting, err := m.gateway.GetMeeting(ctx, meetingID)
	if err != nil {
		return fmt.Errorf("runner: load meeting %s: %w", meetingID, err)
	}
	if meeting.Status == models.MeetingStatusCompleted {
		return ErrAlreadyCompleted
	}
	if meeting.CurrentRound >= meeting.MaxRounds {
		return ErrNoRoundsRemaining
	}

	if err := m.gateway.ClaimForRun(ctx, meetingID); err != nil {
		if errors.Is(err, repo.ErrConflict) {
			return ErrAlreadyRunning
		}
		return fmt.Errorf("runner: claim meeting %s: %w", meetingID, err)
	}

	in, team, err := m.prepare(ctx, meeting, locale)
	if err != nil {
		m.markFailed(meetingID, err)
		return err
	}
	if len(in.Agents) == 0 {
		m.markFailed(meetingID, ErrNoAgents)
		return ErrNoAgents
	}

	var commitErr error
	cb := m.callbacksFor(ctx, meeting)
	onRound := m.onRoundFor(ctx, meeting, &commitErr)

	result, err := engine.Run(ctx, m.llm, in, cb, onRound)
	if err != nil {
		m.markFailed(meetingID, err)
		m.publishError(ctx, meeting.ID, meeting.TeamID, err)
		return err
	}
	if commitErr != nil {
		m.markFailed(meetingID, commitErr)
		m.publishError(ctx, meeting.ID, meeting.TeamID, commitErr)
		return commitErr
	}
	if result.Cancelled {
		m.logger.Info("run cancelled, meeting left pending", "meeting_id", meetingID)
	}
	return nil
}

func (m *Manager) markFailed(meetingID string, cause error) {
	if err := m.gateway.MarkFailed(context.Background(), meetingID); err != nil {
		m.logger.Warn("failed to mark meeting failed", "meeting_id", meetingID, "cause", cause, "error", err)
	}
}

func (m *Manager) publishError(ctx context.Context, meetingID, teamID string, cause error) {
	if m.publisher == nil {
		return
	}
	payload := events.ErrorPayload{Detail: cause.Error()}
	var llmErr *llmclient.Error
	if errors.As(cause, &llmErr) {
		payload.Provider = llmErr.Provider
	}
	if err := m.publisher.PublishError(ctx, meetingID, payload); err != nil {
		m.logger.Warn("failed to publish error event", "meeting_id", meetingID, "error", err)
	}
	if m.webhooks != nil {
		m.webhooks.Dispatch(ctx, teamID, events.EventTypeError, payload)
	}
}

// prepare resolves everything runRounds needs from persisted state: the
// team (for its default language), the meeting's filtered speaker pool,
// its transcript so far, and any chain/merge context summaries.
func (m *Manager) prepare(ctx context.Context, meeting *models.Meeting, locale string) (engine.MeetingInput, *models.Team, error) {
	team, err := m.gateway.GetTeam(ctx, meeting.TeamID)
	if err != nil {
		return engine.MeetingInput{}, nil, fmt.Errorf("runner: load team %s: %w", meeting.TeamID, err)
	}

	teamAgents, err := m.gateway.ListAgents(ctx, meeting.TeamID)
	if err != nil {
		return engine.MeetingInput{}, nil, fmt.Errorf("runner: list agents for team %s: %w", meeting.TeamID, err)
	}
	participants := engine.FilterParticipants(teamAgents, meeting)

	if meeting.MeetingType == models.MeetingTypeIndividual {
		if len(participants) == 0 {
			return engine.MeetingInput{}, team, nil
		}
		chosen := participants[0]
		participants = []*models.Agent{chosen, engine.SyntheticScientificCritic(chosen.Model)}
	}

	priorMessages, err := m.gateway.ListMessages(ctx, meeting.ID)
	if err != nil {
		return engine.MeetingInput{}, nil, fmt.Errorf("runner: list messages for meeting %s: %w", meeting.ID, err)
	}

	extractor := extractctx.NewExtractor(&repoTranscriptSource{gateway: m.gateway}, m.ctxBudget)

	var contextSummaries []engine.ContextSummary
	if meeting.AgendaStrategy == models.AgendaStrategyChain && len(meeting.ContextMeetingIDs) > 0 {
		summaries, err := extractor.Extract(ctx, meeting.ContextMeetingIDs, meeting.Agenda, meeting.AgendaQuestions)
		if err != nil {
			return engine.MeetingInput{}, nil, fmt.Errorf("runner: extract context summaries: %w", err)
		}
		contextSummaries = toEngineSummaries(summaries)
	}

	var sourceSummaries []engine.ContextSummary
	if meeting.MeetingType == models.MeetingTypeMerge && len(meeting.SourceMeetingIDs) > 0 {
		summaries, err := extractor.Extract(ctx, meeting.SourceMeetingIDs, meeting.Agenda, nil)
		if err != nil {
			return engine.MeetingInput{}, nil, fmt.Errorf("runner: extract source summaries: %w", err)
		}
		sourceSummaries = toEngineSummaries(summaries)
	}

	return engine.MeetingInput{
		Meeting:          meeting,
		Agents:           participants,
		PriorMessages:    priorMessages,
		ContextSummaries: contextSummaries,
		SourceSummaries:  sourceSummaries,
		Lang:             resolveLang(locale, meeting, team),
	}, team, nil
}

func toEngineSummaries(in []extractctx.Summary) []engine.ContextSummary {
	out := make([]engine.ContextSummary, 0, len(in))
	for _, s := range in {
		out = append(out, engine.ContextSummary{Title: s.Title, Excerpt: s.Excerpt})
	}
	return out
}

// callbacksFor builds the per-turn engine callbacks: agent_speaking fires
// before the LLM call, message fires (with a freshly assigned id) right
// after — the id is written back onto the message pointer so the same
// identity is later durably committed in onRound.
func (m *Manager) callbacksFor(ctx context.Context, meeting *models.Meeting) engine.Callbacks {
	return engine.Callbacks{
		OnAgentStart: func(agent *models.Agent) {
			if m.publisher == nil {
				return
			}
			if err := m.publisher.PublishAgentSpeaking(ctx, meeting.ID, events.AgentSpeakingPayload{
				AgentName: agent.DisplayName,
				AgentID:   agent.ID,
			}); err != nil {
				m.logger.Warn("failed to publish agent_speaking", "meeting_id", meeting.ID, "error", err)
			}
		},
		OnAgentDone: func(msg *models.MeetingMessage) {
			if msg.ID == "" {
				msg.ID = uuid.New().String()
			}
			if m.publisher == nil {
				return
			}
			agentID := ""
			if msg.AgentID != nil {
				agentID = *msg.AgentID
			}
			if err := m.publisher.PublishMessage(ctx, meeting.ID, events.MessagePayload{
				ID:          msg.ID,
				AgentID:     agentID,
				AgentName:   msg.AgentName,
				Role:        string(msg.Role),
				Content:     msg.Content,
				RoundNumber: msg.RoundNumber,
			}); err != nil {
				m.logger.Warn("failed to publish message", "meeting_id", meeting.ID, "error", err)
			}
		},
	}
}

// onRoundFor builds the round-boundary callback: it commits the round
// atomically, advances (or holds, on cancellation) current_round/status,
// publishes round_complete, and on the final completed round extracts code
// artifacts and publishes meeting_complete. Any persistence failure is
// written to *commitErr so execute can fail the run after engine.Run
// returns (RoundCallback itself has no error channel).
func (m *Manager) onRoundFor(ctx context.Context, meeting *models.Meeting, commitErr *error) engine.RoundCallback {
	return func(round int, result engine.RoundResult) {
		if *commitErr != nil {
			return
		}

		if result.Cancelled {
			// ctx is the run's own context, already canceled at this point
			// (that's what produced result.Cancelled) — a Begin/Exec against
			// it would fail immediately with context.Canceled and the
			// partial turn would never persist. Commit over a detached
			// context, same as markFailed, so the cancelled round's
			// messages and the pending status actually land.
			if err := m.gateway.CommitRound(context.Background(), meeting.ID, result.Messages, round-1, models.MeetingStatusPending); err != nil {
				*commitErr = fmt.Errorf("runner: commit cancelled round %d: %w", round, err)
			}
			return
		}

		final := round == meeting.MaxRounds
		newStatus := models.MeetingStatusRunning
		if final {
			newStatus = models.MeetingStatusCompleted
		}
		if err := m.gateway.CommitRound(ctx, meeting.ID, result.Messages, round, newStatus); err != nil {
			*commitErr = fmt.Errorf("runner: commit round %d: %w", round, err)
			return
		}

		if m.publisher != nil {
			if err := m.publisher.PublishRoundComplete(ctx, meeting.ID, events.RoundCompletePayload{
				Round:       round,
				TotalRounds: meeting.MaxRounds,
			}); err != nil {
				m.logger.Warn("failed to publish round_complete", "meeting_id", meeting.ID, "error", err)
			}
		}
		if m.webhooks != nil {
			m.webhooks.Dispatch(ctx, meeting.TeamID, events.EventTypeRoundComplete, events.RoundCompletePayload{
				Round: round, TotalRounds: meeting.MaxRounds,
			})
		}

		if !final {
			return
		}

		m.finalizeArtifacts(ctx, meeting, result.Messages)

		if m.publisher != nil {
			if err := m.publisher.PublishMeetingComplete(ctx, meeting.ID, events.MeetingCompletePayload{
				Status: string(models.MeetingStatusCompleted),
			}); err != nil {
				m.logger.Warn("failed to publish meeting_complete", "meeting_id", meeting.ID, "error", err)
			}
		}
		if m.webhooks != nil {
			m.webhooks.Dispatch(ctx, meeting.TeamID, events.EventTypeMeetingComplete, events.MeetingCompletePayload{
				Status: string(models.MeetingStatusCompleted),
			})
		}
	}
}

// finalizeArtifacts extracts code artifacts from the meeting's full
// transcript when its output type is code. Failures are logged, never
// fatal to the run: an already-completed meeting should not flip to
// failed because artifact extraction found nothing usable.
func (m *Manager) finalizeArtifacts(ctx context.Context, meeting *models.Meeting, finalRoundMessages []*models.MeetingMessage) {
	if meeting.OutputType != models.OutputTypeCode {
		return
	}

	allMessages, err := m.gateway.ListMessages(ctx, meeting.ID)
	if err != nil {
		m.logger.Warn("failed to reload transcript for artifact extraction", "meeting_id", meeting.ID, "error", err)
		return
	}

	sources := make([]codeextract.SourceMessage, 0, len(allMessages))
	for _, msg := range allMessages {
		if msg.Role != models.MessageRoleAssistant {
			continue
		}
		sources = append(sources, codeextract.SourceMessage{AgentName: msg.AgentName, Content: msg.Content})
	}

	artifacts := codeextract.Extract(sources)
	if len(artifacts) == 0 {
		return
	}
	for i := range artifacts {
		artifacts[i].ID = uuid.New().String()
		artifacts[i].MeetingID = meeting.ID
		artifacts[i].Version = 1
	}

	ptrs := make([]*models.CodeArtifact, 0, len(artifacts))
	for i := range artifacts {
		ptrs = append(ptrs, &artifacts[i])
	}
	if err := m.gateway.PutArtifacts(ctx, meeting.ID, ptrs); err != nil {
		m.logger.Warn("failed to persist code artifacts", "meeting_id", meeting.ID, "error", err)
	}
}
