package api

import (
	"net/http"

	"github.com/google/uuid"
	echo "github.com/labstack/echo/v5"

	"github.com/conclave-run/conclave/pkg/models"
)

// listTeamsHandler handles GET /api/v1/teams.
func (s *Server) listTeamsHandler(c *echo.Context) error {
	teams, err := s.gateway.ListTeams(c.Request().Context())
	if err != nil {
		return mapRepoError(err)
	}
	return c.JSON(http.StatusOK, teams)
}

// createTeamHandler handles POST /api/v1/teams.
func (s *Server) createTeamHandler(c *echo.Context) error {
	var req CreateTeamRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}

	team := &models.Team{
		ID:              uuid.New().String(),
		Name:            req.Name,
		Description:     req.Description,
		DefaultLanguage: req.DefaultLanguage,
		Public:          req.Public,
	}
	if err := s.gateway.CreateTeam(c.Request().Context(), team); err != nil {
		return mapRepoError(err)
	}
	return c.JSON(http.StatusCreated, team)
}

// listAgentsHandler handles GET /api/v1/teams/:id/agents.
func (s *Server) listAgentsHandler(c *echo.Context) error {
	teamID := c.Param("id")
	if teamID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "team id is required")
	}
	agents, err := s.gateway.ListAgents(c.Request().Context(), teamID)
	if err != nil {
		return mapRepoError(err)
	}
	return c.JSON(http.StatusOK, agents)
}

// createAgentHandler handles POST /api/v1/teams/:id/agents.
func (s *Server) createAgentHandler(c *echo.Context) error {
	teamID := c.Param("id")
	if teamID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "team id is required")
	}

	var req CreateAgentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.DisplayName == "" || req.Model == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "display_name and model are required")
	}

	agent := &models.Agent{
		ID:           uuid.New().String(),
		TeamID:       teamID,
		DisplayName:  req.DisplayName,
		Title:        req.Title,
		Expertise:    req.Expertise,
		Goal:         req.Goal,
		Role:         req.Role,
		Model:        req.Model,
		SystemPrompt: req.SystemPrompt,
	}
	if err := s.gateway.CreateAgent(c.Request().Context(), agent); err != nil {
		return mapRepoError(err)
	}
	return c.JSON(http.StatusCreated, agent)
}
