package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const wsWriteTimeout = 5 * time.Second

// handleRefreshProgress upgrades the connection and streams refresh
// status frames until the run finishes or the client goes away. A
// final frame with Running=false is always sent before closing.
func (s *Server) handleRefreshProgress(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	// Drain control frames and detect the client closing.
	clientGone := make(chan struct{})
	go func() {
		defer close(clientGone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(s.cfg.ProgressInterval)
	defer ticker.Stop()

	for {
		st := s.runner.Status()

		conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := conn.WriteJSON(st); err != nil {
			s.logger.Debug("progress write failed", "error", err)
			return
		}

		if !st.Running {
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "run complete"))
			return
		}

		select {
		case <-ticker.C:
		case <-clientGone:
			return
		case <-r.Context().Done():
			return
		}
	}
}
