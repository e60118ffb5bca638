package api

import (
	"net/http"
	"time"

	"github.com/caffeineduck/pyplay/internal/logger"
	"github.com/caffeineduck/pyplay/playground"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 1 << 20
)

// Outgoing message types besides workspace events.
const (
	MsgSnapshot = "snapshot"
	MsgReply    = "reply"
)

// snapshotMessage is the first message on every connection. Events with a
// Seq at or below State.Seq are already reflected in it.
type snapshotMessage struct {
	Type  string           `json:"type"`
	State playground.State `json:"state"`
}

type replyMessage struct {
	Type    string `json:"type"`
	ID      string `json:"id,omitempty"`
	Command string `json:"command"`
	Result  any    `json:"result,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (s *Server) upgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || s.origins["*"] || s.origins[origin]
		},
	}
}

// serveWS handles GET /v1/sessions/:id/ws
func (s *Server) serveWS(c *gin.Context) {
	sess := sessionFrom(c)

	conn, err := s.upgrader().Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warnf("WebSocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	sess.attach()
	defer sess.detach(s.sessions.now())

	events, unsubscribe := sess.ws.Subscribe()
	defer unsubscribe()

	replies := make(chan replyMessage, 16)
	done := make(chan struct{})
	defer close(done)
	stopped := make(chan struct{})

	go func() {
		defer close(stopped)
		writeLoop(conn, sess.ws.Snapshot(), events, replies, done)
	}()

	logger.Debugf("WebSocket client connected: %s", sess.id)

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var cmd Command
		if err := conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warnf("WebSocket error: %v", err)
			}
			break
		}
		sess.touch(s.sessions.now())

		result, err := dispatch(c.Request.Context(), sess.ws, cmd)
		reply := replyMessage{Type: MsgReply, ID: cmd.ID, Command: cmd.Type, Result: result}
		if err != nil {
			reply.Error = err.Error()
		}
		select {
		case replies <- reply:
		case <-stopped:
			return
		}
	}

	logger.Debugf("WebSocket client disconnected: %s", sess.id)
}

// writeLoop is the connection's only writer: the snapshot, then events and
// replies in the order they arrive, with keepalive pings.
func writeLoop(conn *websocket.Conn, state playground.State, events <-chan playground.Event, replies <-chan replyMessage, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	write := func(v any) bool {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(v); err != nil {
			logger.Debugf("WebSocket write failed: %v", err)
			conn.Close()
			return false
		}
		return true
	}

	if !write(snapshotMessage{Type: MsgSnapshot, State: state}) {
		return
	}

	for {
		select {
		case <-done:
			return
		case e, ok := <-events:
			if !ok {
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "session closed"))
				conn.Close()
				return
			}
			if e.Seq <= state.Seq {
				continue
			}
			if !write(e) {
				return
			}
		case r := <-replies:
			if !write(r) {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				conn.Close()
				return
			}
		}
	}
}
