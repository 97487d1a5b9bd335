// Package api provides the HTTP wrapper around the meeting engine: REST
// handlers for team/agent/meeting CRUD and run control, an SSE transcript
// stream, and the WebSocket upgrade entrypoint.
package api

import (
	"context"
	"net"
	"net/http"

	echo "github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"

	"github.com/conclave-run/conclave/pkg/config"
	"github.com/conclave-run/conclave/pkg/events"
	"github.com/conclave-run/conclave/pkg/repo"
	"github.com/conclave-run/conclave/pkg/runner"
)

// DBPinger is implemented by the repository gateway's concrete pool
// wrapper to give the health endpoint a cheap liveness check without
// widening repo.Gateway itself.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// Server is the HTTP API server.
type Server struct {
	echo       *echo.Echo
	httpServer *http.Server
	cfg        *config.Config
	gateway    repo.Gateway
	runnerMgr  *runner.Manager
	connManager *events.ConnectionManager
	dbPinger   DBPinger
}

// NewServer creates a new API server with Echo v5, registering every
// route up front (SetDBPinger et al. only affect handler behavior, not
// route registration).
func NewServer(cfg *config.Config, gateway repo.Gateway, runnerMgr *runner.Manager, connManager *events.ConnectionManager) *Server {
	e := echo.New()

	s := &Server{
		echo:        e,
		cfg:         cfg,
		gateway:     gateway,
		runnerMgr:   runnerMgr,
		connManager: connManager,
	}

	s.setupRoutes()
	return s
}

// SetDBPinger wires an optional liveness check into the health endpoint.
func (s *Server) SetDBPinger(p DBPinger) {
	s.dbPinger = p
}

func (s *Server) setupRoutes() {
	s.echo.Use(middleware.BodyLimit(2 * 1024 * 1024))
	s.echo.Use(securityHeaders())
	s.echo.Use(corsFromOrigins(s.cfg.Server.CORSOrigins))

	s.echo.GET("/health", s.healthHandler)

	v1 := s.echo.Group("/api/v1")
	v1.GET("/teams", s.listTeamsHandler)
	v1.POST("/teams", s.createTeamHandler)
	v1.GET("/teams/:id/agents", s.listAgentsHandler)
	v1.POST("/teams/:id/agents", s.createAgentHandler)

	s.echo.POST("/meetings", s.createMeetingHandler)
	s.echo.POST("/meetings/:id/run", s.runMeetingHandler)
	s.echo.POST("/meetings/:id/run-background", s.runBackgroundHandler)
	s.echo.POST("/meetings/:id/cancel", s.cancelMeetingHandler)
	s.echo.GET("/meetings/:id/status", s.meetingStatusHandler)
	s.echo.GET("/meetings/:id/stream", s.streamHandler)
	s.echo.POST("/meetings/:id/webhooks", s.registerWebhookHandler)
	s.echo.GET("/meetings/:id/artifacts", s.listArtifactsHandler)

	s.echo.GET("/ws/meetings/:id", s.wsHandler)
}

// Start serves HTTP on the given address and blocks until the server stops.
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{Addr: addr, Handler: s.echo}
	return s.httpServer.ListenAndServe()
}

// StartWithListener starts the HTTP server on a pre-created listener,
// used by test infrastructure to serve on a random OS-assigned port.
func (s *Server) StartWithListener(ln net.Listener) error {
	s.httpServer = &http.Server{Handler: s.echo}
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
