package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/tile2048/internal/games/t2048"
	"github.com/vovakirdan/tile2048/internal/session"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

// streamCommand is a message sent by a client over the stream.
type streamCommand struct {
	Type      string `json:"type"` // "move" or "restart"
	Direction string `json:"direction,omitempty"`
}

// streamError reports a rejected command back to its sender.
type streamError struct {
	Kind  string `json:"kind"`
	Error string `json:"error"`
}

// handleStream upgrades to a WebSocket that first carries the current
// snapshot and then every change to the game. Clients may also send
// commands on the same connection.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sub, err := s.games.Subscribe(id)
	if err != nil {
		s.writeGameError(w, err)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already answered the request.
		s.games.Unsubscribe(sub)
		s.logger.Warn("websocket upgrade failed", "game", id, "err", err)
		return
	}

	s.logger.Debug("stream opened", "game", id, "remote", r.RemoteAddr)

	replies := make(chan streamError, 8)
	go s.readPump(conn, id, replies)
	s.writePump(conn, sub, replies)

	s.games.Unsubscribe(sub)
	s.logger.Debug("stream closed", "game", id, "remote", r.RemoteAddr)
}

// readPump applies client commands until the connection fails.
// It closes replies on return so writePump notices the disconnect.
func (s *Server) readPump(conn *websocket.Conn, id string, replies chan<- streamError) {
	defer close(replies)

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug("websocket read failed", "game", id, "err", err)
			}
			return
		}

		if err := s.applyCommand(id, data); err != nil {
			select {
			case replies <- streamError{Kind: "error", Error: err.Error()}:
			default:
			}
		}
	}
}

// applyCommand runs one client command. Results reach the client through
// the feed, so only failures are returned.
func (s *Server) applyCommand(id string, data []byte) error {
	var cmd streamCommand
	if err := json.Unmarshal(data, &cmd); err != nil {
		return errors.New("invalid command")
	}

	switch cmd.Type {
	case "move":
		dir, err := t2048.ParseDirection(cmd.Direction)
		if err != nil {
			return err
		}
		_, err = s.games.Move(id, dir)
		return err
	case "restart":
		_, err := s.games.Restart(id)
		return err
	}
	return errors.New("unknown command type " + cmd.Type)
}

// writePump forwards feed events and pings to the connection.
func (s *Server) writePump(conn *websocket.Conn, sub *session.Subscription, replies <-chan streamError) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	write := func(v any) error {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(v)
	}
	closeWith := func(code int, text string) {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(code, text))
	}

	for {
		select {
		case evt := <-sub.Events():
			if err := write(evt); err != nil {
				return
			}

		case reply, ok := <-replies:
			if !ok {
				return
			}
			if err := write(reply); err != nil {
				return
			}

		case <-sub.Done():
			// Flush what is queued, including the final closed event.
			for len(sub.Events()) > 0 {
				if err := write(<-sub.Events()); err != nil {
					return
				}
			}
			closeWith(websocket.CloseNormalClosure, "game closed")
			return

		case <-s.closing:
			closeWith(websocket.CloseGoingAway, "server shutting down")
			return

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
