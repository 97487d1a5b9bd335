package api

import (
	"github.com/coder/websocket"
	echo "github.com/labstack/echo/v5"
)

// wsHandler upgrades an HTTP request on /ws/meetings/{id} to WebSocket and
// hands the connection to the ConnectionManager, which drives its whole
// lifecycle (subscribe/unsubscribe, catchup, start_round/user_message
// control messages) until the client disconnects.
func (s *Server) wsHandler(c *echo.Context) error {
	if s.connManager == nil {
		return echo.NewHTTPError(503, "WebSocket not available")
	}

	// Origin is restricted to same-origin plus the CORS_ORIGINS allowlist
	// (config.Config.Server.CORSOrigins) that already governs the REST/SSE
	// surface, so a browser-hosted frontend served from one of those
	// origins can open the meeting control-plane socket.
	conn, err := websocket.Accept(c.Response(), c.Request(), &websocket.AcceptOptions{
		OriginPatterns: s.cfg.Server.CORSOrigins,
	})
	if err != nil {
		return err
	}

	// Register connection with the ConnectionManager.
	// HandleConnection blocks until the WebSocket closes.
	s.connManager.HandleConnection(c.Request().Context(), conn)
	return nil
}
