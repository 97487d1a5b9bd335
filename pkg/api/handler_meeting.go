package api

import (
	"net/http"

	"github.com/google/uuid"
	echo "github.com/labstack/echo/v5"

	"github.com/conclave-run/conclave/pkg/models"
	"github.com/conclave-run/conclave/pkg/prompt"
)

// createMeetingHandler handles POST /meetings.
func (s *Server) createMeetingHandler(c *echo.Context) error {
	var req CreateMeetingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.TeamID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "team_id is required")
	}
	if req.MaxRounds <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "max_rounds must be positive")
	}

	outputType := models.OutputType(req.OutputType)
	if outputType == "" {
		outputType = models.OutputTypeReport
	}
	if !outputType.IsValid() {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid output_type")
	}

	meetingType := models.MeetingType(req.MeetingType)
	if meetingType == "" {
		meetingType = models.MeetingTypeTeam
	}
	if !meetingType.IsValid() {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid meeting_type")
	}

	strategy := models.AgendaStrategy(req.AgendaStrategy)
	if strategy == "" {
		strategy = models.AgendaStrategyManual
	}
	if !strategy.IsValid() {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid agenda_strategy")
	}

	// Per spec §4.1: when the creator supplies no rules, defaults for the
	// output type are auto-injected rather than left empty.
	agendaRules := req.AgendaRules
	if len(agendaRules) == 0 {
		agendaRules = prompt.DefaultRulesFor(outputType)
	}

	meeting := &models.Meeting{
		ID:                  uuid.New().String(),
		TeamID:              req.TeamID,
		Title:               req.Title,
		Agenda:              req.Agenda,
		AgendaQuestions:     req.AgendaQuestions,
		AgendaRules:         agendaRules,
		OutputType:          outputType,
		MeetingType:         meetingType,
		MaxRounds:           req.MaxRounds,
		Status:              models.MeetingStatusPending,
		ParticipantAgentIDs: req.ParticipantAgentIDs,
		SourceMeetingIDs:    req.SourceMeetingIDs,
		ContextMeetingIDs:   req.ContextMeetingIDs,
		AgendaStrategy:      strategy,
		Locale:              req.Locale,
	}
	if req.IndividualAgentID != "" {
		meeting.IndividualAgentID = &req.IndividualAgentID
	}

	if err := s.gateway.CreateMeeting(c.Request().Context(), meeting); err != nil {
		return mapRepoError(err)
	}
	return c.JSON(http.StatusCreated, meeting)
}

// runMeetingHandler handles POST /meetings/:id/run: it drives the meeting's
// remaining rounds to completion synchronously and returns the full
// transcript once engine.Run returns.
func (s *Server) runMeetingHandler(c *echo.Context) error {
	id := c.Param("id")
	var req RunMeetingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	if err := s.runnerMgr.RunSynchronous(ctx, id); err != nil {
		return mapRunError(err)
	}

	meeting, err := s.gateway.GetMeeting(ctx, id)
	if err != nil {
		return mapRepoError(err)
	}
	messages, err := s.gateway.ListMessages(ctx, id)
	if err != nil {
		return mapRepoError(err)
	}
	return c.JSON(http.StatusOK, MeetingResponse{Meeting: meeting, Messages: messages})
}

// runBackgroundHandler handles POST /meetings/:id/run-background: it starts
// (or resumes) the meeting's rounds on a detached goroutine and returns
// immediately, per spec.md's async run contract.
func (s *Server) runBackgroundHandler(c *echo.Context) error {
	id := c.Param("id")
	var req RunMeetingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	started, err := s.runnerMgr.StartBackground(id, req.Rounds, req.Locale)
	if err != nil {
		return mapRunError(err)
	}
	if !started {
		return c.JSON(http.StatusConflict, RunBackgroundResponse{
			MeetingID: id,
			Status:    "already_running",
			Rounds:    req.Rounds,
		})
	}
	return c.JSON(http.StatusAccepted, RunBackgroundResponse{
		MeetingID: id,
		Status:    "started",
		Rounds:    req.Rounds,
	})
}

// cancelMeetingHandler handles POST /meetings/:id/cancel: it signals a
// cooperative stop to a live background worker, if any.
func (s *Server) cancelMeetingHandler(c *echo.Context) error {
	id := c.Param("id")
	cancelled := s.runnerMgr.CancelRun(id)
	status := "not_running"
	if cancelled {
		status = "cancelling"
	}
	return c.JSON(http.StatusOK, map[string]string{"meeting_id": id, "status": status})
}

// meetingStatusHandler handles GET /meetings/:id/status.
func (s *Server) meetingStatusHandler(c *echo.Context) error {
	id := c.Param("id")
	ctx := c.Request().Context()

	meeting, err := s.gateway.GetMeeting(ctx, id)
	if err != nil {
		return mapRepoError(err)
	}
	messages, err := s.gateway.ListMessages(ctx, id)
	if err != nil {
		return mapRepoError(err)
	}

	return c.JSON(http.StatusOK, MeetingStatusResponse{
		MeetingID:         meeting.ID,
		Status:            string(meeting.Status),
		CurrentRound:      meeting.CurrentRound,
		MaxRounds:         meeting.MaxRounds,
		MessageCount:      len(messages),
		BackgroundRunning: s.runnerMgr.IsRunning(id),
	})
}

// registerWebhookHandler handles POST /meetings/:id/webhooks. Webhooks are
// registered per team (they fire for every meeting belonging to it), so the
// meeting id in the path only identifies which team owns the new target.
func (s *Server) registerWebhookHandler(c *echo.Context) error {
	id := c.Param("id")
	var req RegisterWebhookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.URL == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "url is required")
	}

	ctx := c.Request().Context()
	meeting, err := s.gateway.GetMeeting(ctx, id)
	if err != nil {
		return mapRepoError(err)
	}

	hook := &models.WebhookConfig{
		ID:     uuid.New().String(),
		TeamID: meeting.TeamID,
		URL:    req.URL,
		Events: req.Events,
		Active: true,
		Secret: req.Secret,
	}
	if err := s.gateway.CreateWebhook(ctx, hook); err != nil {
		return mapRepoError(err)
	}
	return c.JSON(http.StatusCreated, WebhookResponse{ID: hook.ID, URL: hook.URL, Events: hook.Events})
}

// listArtifactsHandler handles GET /meetings/:id/artifacts.
func (s *Server) listArtifactsHandler(c *echo.Context) error {
	id := c.Param("id")
	artifacts, err := s.gateway.ListArtifacts(c.Request().Context(), id)
	if err != nil {
		return mapRepoError(err)
	}
	return c.JSON(http.StatusOK, artifacts)
}
