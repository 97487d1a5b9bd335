package api

import (
	"errors"
	"log/slog"
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/conclave-run/conclave/pkg/llmclient"
	"github.com/conclave-run/conclave/pkg/repo"
	"github.com/conclave-run/conclave/pkg/runner"
)

// mapRepoError maps repository-layer errors to HTTP error responses.
func mapRepoError(err error) *echo.HTTPError {
	if errors.Is(err, repo.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "resource not found")
	}
	if errors.Is(err, repo.ErrConflict) {
		return echo.NewHTTPError(http.StatusConflict, "resource is not in a state that allows this operation")
	}

	slog.Error("Unexpected repository error", "error", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
}

// mapRunError maps pkg/runner errors, plus any LLM error surfaced through
// them, to HTTP error responses.
func mapRunError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, runner.ErrAlreadyCompleted):
		return echo.NewHTTPError(http.StatusConflict, "meeting has already completed")
	case errors.Is(err, runner.ErrNoRoundsRemaining):
		return echo.NewHTTPError(http.StatusConflict, "meeting has no rounds remaining")
	case errors.Is(err, runner.ErrNoAgents):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "meeting has no participating agents")
	case errors.Is(err, runner.ErrAlreadyRunning):
		return echo.NewHTTPError(http.StatusConflict, "meeting already has an active run")
	}

	var llmErr *llmclient.Error
	if errors.As(err, &llmErr) {
		switch llmErr.Kind {
		case llmclient.ErrorKindAuth:
			return echo.NewHTTPError(http.StatusBadGateway, "LLM provider rejected credentials")
		case llmclient.ErrorKindQuota:
			return echo.NewHTTPError(http.StatusTooManyRequests, "LLM provider quota exhausted")
		case llmclient.ErrorKindTransient:
			return echo.NewHTTPError(http.StatusBadGateway, "LLM provider temporarily unavailable")
		default:
			return echo.NewHTTPError(http.StatusBadGateway, "LLM provider call failed")
		}
	}

	return mapRepoError(err)
}
