package api

import (
	"net/http"

	echo "github.com/labstack/echo/v5"
)

// healthHandler handles GET /health: a liveness/readiness probe reporting
// database connectivity, the configured event bus backend, and the number
// of live WebSocket connections on this process.
func (s *Server) healthHandler(c *echo.Context) error {
	status := "ok"
	dbStatus := "unknown"

	if s.dbPinger != nil {
		if err := s.dbPinger.Ping(c.Request().Context()); err != nil {
			dbStatus = "unreachable"
			status = "degraded"
		} else {
			dbStatus = "ok"
		}
	}

	activeConns := 0
	if s.connManager != nil {
		activeConns = s.connManager.ActiveConnections()
	}

	resp := HealthResponse{
		Status:     status,
		Database:   dbStatus,
		EventsBus:  string(s.cfg.Events.Backend),
		ActiveRuns: activeConns,
	}

	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, resp)
}
