package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/hazyhaar/uijit/canvas"
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Receivers connect from the Chromecast's own origin.
		return true
	},
}

const (
	wsWriteWait      = 10 * time.Second
	wsPongWait       = 60 * time.Second
	wsPingPeriod     = (wsPongWait * 9) / 10
	wsMaxMessageSize = 4096
)

// handleWS attaches a receiver to a surface's update stream. The subscription
// is taken before the upgrade so the first frame is always the snapshot of
// the state at attach time.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	surfaceID := chi.URLParam(r, "surfaceID")

	sub, err := s.mgr.Subscribe(surfaceID)
	if err != nil {
		if errors.Is(err, canvas.ErrNotFound) {
			writeError(w, 404, err)
			return
		}
		writeError(w, 500, err)
		return
	}

	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		sub.Close()
		s.logger.Warn("web: ws upgrade failed", "surface_id", surfaceID, "error", err)
		return
	}

	s.logger.Info("web: receiver connected", "surface_id", surfaceID, "remote", r.RemoteAddr)
	go s.writePump(conn, sub)
	go s.readPump(conn, sub)
}

// writePump forwards update messages to the connection and keeps it alive
// with pings. It owns all writes.
func (s *Server) writePump(conn *websocket.Conn, sub *canvas.Subscription) {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case msg, ok := <-sub.Updates():
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				// Surface closed or subscriber dropped.
				conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "surface closed"))
				return
			}
			data, err := json.Marshal(msg)
			if err != nil {
				s.logger.Error("web: encode update", "surface_id", sub.SurfaceID(), "error", err)
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump consumes the connection to keep pong handling alive. Receivers
// are display-only, so inbound frames are discarded.
func (s *Server) readPump(conn *websocket.Conn, sub *canvas.Subscription) {
	defer func() {
		sub.Close()
		conn.Close()
	}()

	conn.SetReadLimit(wsMaxMessageSize)
	conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(wsPongWait))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				s.logger.Warn("web: ws read", "surface_id", sub.SurfaceID(), "error", err)
			}
			return
		}
	}
}
