package web

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// closeWriteWait bounds the close frame sent on shutdown.
const closeWriteWait = time.Second

// lastUpdateEvent is pushed to every websocket client on each tick.
type lastUpdateEvent struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	LastLoad  string    `json:"last_load,omitempty"`
}

func (s *Server) lastUpdateEvent() lastUpdateEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return lastUpdateEvent{
		Type:      "last_update",
		Timestamp: s.now(),
		LastLoad:  s.lastUpdateText(),
	}
}

// handleWebSocket feeds the last-update clock of the page. One event is sent
// on connect and one per refresh interval until the client goes away or the
// server shuts down. The upgrader keeps its default same-origin check.
func (s *Server) handleWebSocket(c echo.Context) error {
	conn, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// The upgrader has already replied with an HTTP error.
		return nil
	}
	defer func() { _ = conn.Close() }()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := conn.WriteJSON(s.lastUpdateEvent()); err != nil {
		return nil
	}

	ticker := time.NewTicker(s.refreshInterval())
	defer ticker.Stop()
	for {
		select {
		case <-closed:
			return nil
		case <-c.Request().Context().Done():
			return nil
		case <-s.done:
			msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
			_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeWriteWait))
			return nil
		case <-ticker.C:
			if err := conn.WriteJSON(s.lastUpdateEvent()); err != nil {
				s.logger.WithError(err).Debug("Websocket client gone")
				return nil
			}
		}
	}
}
