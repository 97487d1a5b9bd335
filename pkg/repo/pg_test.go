package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/conclave-run/conclave/pkg/models"
	"github.com/conclave-run/conclave/pkg/repo"
)

func newTestGateway(t *testing.T) *repo.PgGateway {
	t.Helper()
	ctx := context.Background()

	ctr, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("conclave_test"),
		tcpostgres.WithUsername("conclave"),
		tcpostgres.WithPassword("conclave"),
		testcontainers.WithWaitStrategy(wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ctr.Terminate(ctx) })

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, repo.Migrate(dsn, "../../migrations"))

	gw, err := repo.NewPgGateway(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(gw.Close)
	return gw
}

func seedTeam(t *testing.T, ctx context.Context, gw *repo.PgGateway) *models.Team {
	t.Helper()
	team := &models.Team{ID: "team-1", Name: "Research Team", OwnerID: "user-1"}
	require.NoError(t, gw.CreateTeam(ctx, team))
	return team
}

func TestCreateAndGetMeeting(t *testing.T) {
	ctx := context.Background()
	gw := newTestGateway(t)
	seedTeam(t, ctx, gw)

	m := &models.Meeting{
		ID:          "meeting-1",
		TeamID:      "team-1",
		Title:       "Design review",
		OutputType:  models.OutputTypeCode,
		MeetingType: models.MeetingTypeTeam,
		MaxRounds:   3,
		Status:      models.MeetingStatusPending,
	}
	require.NoError(t, gw.CreateMeeting(ctx, m))

	got, err := gw.GetMeeting(ctx, "meeting-1")
	require.NoError(t, err)
	require.Equal(t, "Design review", got.Title)
	require.Equal(t, models.MeetingStatusPending, got.Status)
	require.Equal(t, 0, got.CurrentRound)
}

func TestClaimForRunIsSingleFlight(t *testing.T) {
	ctx := context.Background()
	gw := newTestGateway(t)
	seedTeam(t, ctx, gw)
	require.NoError(t, gw.CreateMeeting(ctx, &models.Meeting{
		ID: "meeting-2", TeamID: "team-1", Title: "t", OutputType: models.OutputTypeReport,
		MeetingType: models.MeetingTypeTeam, MaxRounds: 1, Status: models.MeetingStatusPending,
	}))

	require.NoError(t, gw.ClaimForRun(ctx, "meeting-2"))
	err := gw.ClaimForRun(ctx, "meeting-2")
	require.ErrorIs(t, err, repo.ErrConflict)
}

func TestCommitRoundAdvancesStateAtomically(t *testing.T) {
	ctx := context.Background()
	gw := newTestGateway(t)
	seedTeam(t, ctx, gw)
	require.NoError(t, gw.CreateMeeting(ctx, &models.Meeting{
		ID: "meeting-3", TeamID: "team-1", Title: "t", OutputType: models.OutputTypeReport,
		MeetingType: models.MeetingTypeTeam, MaxRounds: 2, Status: models.MeetingStatusRunning,
	}))

	msgs := []*models.MeetingMessage{
		{ID: "msg-1", Role: models.MessageRoleAssistant, AgentName: "Lead", Content: "hello", RoundNumber: 1},
	}
	require.NoError(t, gw.CommitRound(ctx, "meeting-3", msgs, 1, models.MeetingStatusPending))

	got, err := gw.GetMeeting(ctx, "meeting-3")
	require.NoError(t, err)
	require.Equal(t, 1, got.CurrentRound)
	require.Equal(t, models.MeetingStatusPending, got.Status)

	stored, err := gw.ListMessages(ctx, "meeting-3")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	require.Equal(t, "hello", stored[0].Content)
}

func TestSweepOrphanedRunningMarksFailed(t *testing.T) {
	ctx := context.Background()
	gw := newTestGateway(t)
	seedTeam(t, ctx, gw)
	require.NoError(t, gw.CreateMeeting(ctx, &models.Meeting{
		ID: "meeting-4", TeamID: "team-1", Title: "t", OutputType: models.OutputTypeReport,
		MeetingType: models.MeetingTypeTeam, MaxRounds: 1, Status: models.MeetingStatusRunning,
	}))

	failed, skipped, err := gw.SweepOrphanedRunning(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, skipped)
	require.Contains(t, failed, "meeting-4")

	got, err := gw.GetMeeting(ctx, "meeting-4")
	require.NoError(t, err)
	require.Equal(t, models.MeetingStatusFailed, got.Status)
}
