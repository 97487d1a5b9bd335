package runner

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/conclave-run/conclave/pkg/events"
	"github.com/conclave-run/conclave/pkg/llmclient"
	"github.com/conclave-run/conclave/pkg/models"
	"github.com/conclave-run/conclave/pkg/repo"
)

// fakeGateway is an in-memory repo.Gateway used to exercise Manager
// without a database, mirroring the fake-store style of pkg/engine's
// tests one layer up.
type fakeGateway struct {
	mu       sync.Mutex
	teams    map[string]*models.Team
	agents   map[string][]*models.Agent
	meetings map[string]*models.Meeting
	messages map[string][]*models.MeetingMessage
	artifacts map[string][]*models.CodeArtifact
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		teams:    make(map[string]*models.Team),
		agents:   make(map[string][]*models.Agent),
		meetings: make(map[string]*models.Meeting),
		messages: make(map[string][]*models.MeetingMessage),
		artifacts: make(map[string][]*models.CodeArtifact),
	}
}

func (f *fakeGateway) GetTeam(ctx context.Context, id string) (*models.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.teams[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return t, nil
}
func (f *fakeGateway) ListTeams(ctx context.Context) ([]*models.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Team, 0, len(f.teams))
	for _, t := range f.teams {
		out = append(out, t)
	}
	return out, nil
}
func (f *fakeGateway) CreateTeam(ctx context.Context, t *models.Team) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.teams[t.ID] = t
	return nil
}
func (f *fakeGateway) ListAgents(ctx context.Context, teamID string) ([]*models.Agent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.agents[teamID], nil
}
func (f *fakeGateway) GetAgent(ctx context.Context, id string) (*models.Agent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, list := range f.agents {
		for _, a := range list {
			if a.ID == id {
				return a, nil
			}
		}
	}
	return nil, repo.ErrNotFound
}
func (f *fakeGateway) CreateAgent(ctx context.Context, a *models.Agent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.agents[a.TeamID] = append(f.agents[a.TeamID], a)
	return nil
}
func (f *fakeGateway) UpdateAgent(ctx context.Context, a *models.Agent) error { return nil }
func (f *fakeGateway) DeleteAgent(ctx context.Context, id string) error      { return nil }

func (f *fakeGateway) GetMeeting(ctx context.Context, id string) (*models.Meeting, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.meetings[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *m
	return &cp, nil
}
func (f *fakeGateway) CreateMeeting(ctx context.Context, m *models.Meeting) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.meetings[m.ID] = m
	return nil
}
func (f *fakeGateway) ListMessages(ctx context.Context, meetingID string) ([]*models.MeetingMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*models.MeetingMessage{}, f.messages[meetingID]...), nil
}
func (f *fakeGateway) LastAssistantMessage(ctx context.Context, meetingID string) (*models.MeetingMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	msgs := f.messages[meetingID]
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == models.MessageRoleAssistant {
			return msgs[i], nil
		}
	}
	return nil, repo.ErrNotFound
}
func (f *fakeGateway) CommitRound(ctx context.Context, meetingID string, messages []*models.MeetingMessage, newRound int, newStatus models.MeetingStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.meetings[meetingID]
	if !ok {
		return repo.ErrNotFound
	}
	for _, msg := range messages {
		if msg.CreatedAt.IsZero() {
			msg.CreatedAt = time.Now()
		}
	}
	f.messages[meetingID] = append(f.messages[meetingID], messages...)
	m.CurrentRound = newRound
	m.Status = newStatus
	return nil
}
func (f *fakeGateway) ClaimForRun(ctx context.Context, meetingID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.meetings[meetingID]
	if !ok {
		return repo.ErrNotFound
	}
	if m.Status != models.MeetingStatusPending {
		return repo.ErrConflict
	}
	m.Status = models.MeetingStatusRunning
	return nil
}
func (f *fakeGateway) MarkFailed(ctx context.Context, meetingID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.meetings[meetingID]
	if !ok {
		return repo.ErrNotFound
	}
	m.Status = models.MeetingStatusFailed
	return nil
}
func (f *fakeGateway) SweepOrphanedRunning(ctx context.Context) ([]string, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []string
	for id, m := range f.meetings {
		if m.Status == models.MeetingStatusRunning {
			m.Status = models.MeetingStatusFailed
			ids = append(ids, id)
		}
	}
	return ids, 0, nil
}
func (f *fakeGateway) ListArtifacts(ctx context.Context, meetingID string) ([]*models.CodeArtifact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.artifacts[meetingID], nil
}
func (f *fakeGateway) PutArtifacts(ctx context.Context, meetingID string, artifacts []*models.CodeArtifact) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.artifacts[meetingID] = append(f.artifacts[meetingID], artifacts...)
	return nil
}
func (f *fakeGateway) ListWebhooks(ctx context.Context, teamID string) ([]*models.WebhookConfig, error) {
	return nil, nil
}
func (f *fakeGateway) ListActiveWebhooksForEvent(ctx context.Context, teamID, eventType string) ([]*models.WebhookConfig, error) {
	return nil, nil
}
func (f *fakeGateway) CreateWebhook(ctx context.Context, w *models.WebhookConfig) error {
	return nil
}
func (f *fakeGateway) InsertEvent(ctx context.Context, channel string, payload map[string]any) (int64, error) {
	return 1, nil
}
func (f *fakeGateway) GetEventsSince(ctx context.Context, channel string, sinceID int64, limit int) ([]repo.StoredEvent, error) {
	return nil, nil
}

var _ repo.Gateway = (*fakeGateway)(nil)

type scriptedClient struct{ calls int }

func (c *scriptedClient) Chat(ctx context.Context, systemPrompt string, messages []llmclient.Message, model string, params llmclient.Params) (string, llmclient.TokenUsage, error) {
	c.calls++
	return fmt.Sprintf("reply %d", c.calls), llmclient.TokenUsage{}, nil
}

func setupSingleRoundMeeting(gw *fakeGateway) *models.Meeting {
	gw.teams["t1"] = &models.Team{ID: "t1", DefaultLanguage: "en"}
	gw.agents["t1"] = []*models.Agent{
		{ID: "a1", TeamID: "t1", DisplayName: "Lead", Title: "Team Lead", Model: "gpt-4"},
		{ID: "a2", TeamID: "t1", DisplayName: "Engineer", Title: "Software Engineer", Model: "gpt-4"},
	}
	meeting := &models.Meeting{
		ID: "m1", TeamID: "t1", Agenda: "Build a thing", MaxRounds: 1,
		Status: models.MeetingStatusPending, OutputType: models.OutputTypeReport, MeetingType: models.MeetingTypeTeam,
	}
	gw.meetings["m1"] = meeting
	return meeting
}

func TestRunSynchronousCompletesMeeting(t *testing.T) {
	gw := newFakeGateway()
	setupSingleRoundMeeting(gw)

	mgr := NewManager(gw, &scriptedClient{}, nil, nil, 0)
	if err := mgr.RunSynchronous(context.Background(), "m1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, _ := gw.GetMeeting(context.Background(), "m1")
	if got.Status != models.MeetingStatusCompleted {
		t.Errorf("expected completed status, got %s", got.Status)
	}
	if got.CurrentRound != 1 {
		t.Errorf("expected current_round 1, got %d", got.CurrentRound)
	}
	if len(gw.messages["m1"]) != 2 {
		t.Errorf("expected 2 persisted messages, got %d", len(gw.messages["m1"]))
	}
}

func TestRunSynchronousRejectsCompletedMeeting(t *testing.T) {
	gw := newFakeGateway()
	setupSingleRoundMeeting(gw)
	gw.meetings["m1"].Status = models.MeetingStatusCompleted
	gw.meetings["m1"].CurrentRound = 1

	mgr := NewManager(gw, &scriptedClient{}, nil, nil, 0)
	err := mgr.RunSynchronous(context.Background(), "m1")
	if err == nil {
		t.Fatal("expected error for already-completed meeting")
	}
}

func TestStartBackgroundRejectsSecondConcurrentRun(t *testing.T) {
	gw := newFakeGateway()
	meeting := setupSingleRoundMeeting(gw)
	meeting.MaxRounds = 5

	mgr := NewManager(gw, &blockingClient{release: make(chan struct{})}, nil, nil, 0)
	started, err := mgr.StartBackground("m1", 0, "")
	if err != nil || !started {
		t.Fatalf("expected first start to succeed, got started=%v err=%v", started, err)
	}

	// Give the goroutine a moment to claim the meeting and register itself.
	for i := 0; i < 100 && !mgr.IsRunning("m1"); i++ {
		time.Sleep(time.Millisecond)
	}

	started, err = mgr.StartBackground("m1", 0, "")
	if err != nil {
		t.Fatalf("unexpected error on second start: %v", err)
	}
	if started {
		t.Error("expected second concurrent start to report started=false")
	}

	mgr.CancelRun("m1")
}

type blockingClient struct{ release chan struct{} }

func (c *blockingClient) Chat(ctx context.Context, systemPrompt string, messages []llmclient.Message, model string, params llmclient.Params) (string, llmclient.TokenUsage, error) {
	select {
	case <-c.release:
	case <-ctx.Done():
	}
	return "done", llmclient.TokenUsage{}, ctx.Err()
}

func TestResolveLangPriority(t *testing.T) {
	team := &models.Team{DefaultLanguage: "es"}
	meeting := &models.Meeting{Locale: "fr"}

	if got := resolveLang("de", meeting, team); got != "de" {
		t.Errorf("override should win, got %s", got)
	}
	if got := resolveLang("", meeting, team); got != "fr" {
		t.Errorf("meeting locale should win over team default, got %s", got)
	}
	meeting.Locale = ""
	if got := resolveLang("", meeting, team); got != "es" {
		t.Errorf("team default should be the fallback, got %s", got)
	}
}

var _ events.RunActionHandler = (*WSAdapter)(nil)
