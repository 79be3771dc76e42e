// ============================================================================
// trajexec
// ============================================================================
//
// Package:     eventbus
// Description: A websocket transport for Topic: external operator
//              processes connect and send {"type":"publish","payload":"stop"}
//              JSON frames, which are republished onto the in-process
//              topic. Grounded on the teacher's
//              internal/kant/handler/websocket.go upgrade-then-ReadJSON-loop
//              pattern, narrowed from a chat protocol to a single publish
//              message type.
// License:     MIT
// ============================================================================

package eventbus

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/msto63/trajexec/internal/telemetry"
	"github.com/msto63/trajexec/internal/telemetry/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// wsMessage is the wire shape of an inbound frame.
type wsMessage struct {
	Type    string `json:"type"`
	Payload string `json:"payload"`
}

// WSServer exposes a Topic over websocket connections: each connected
// client's "publish" frames are republished onto the wrapped topic.
type WSServer struct {
	topic  *InProcess
	logger *log.Logger
}

// NewWSServer wraps topic with a websocket front end.
func NewWSServer(topic *InProcess) *WSServer {
	return &WSServer{
		topic:  topic,
		logger: telemetry.New("eventbus-ws"),
	}
}

// ServeHTTP implements http.Handler, upgrading the connection and reading
// publish frames until the client disconnects.
func (s *WSServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	s.logger.Info("event bus connection established", "remote", conn.RemoteAddr().String())

	conn.SetReadDeadline(time.Now().Add(120 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(120 * time.Second))
		return nil
	})

	for {
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.logger.Error("websocket read error", "error", err)
			} else {
				s.logger.Info("event bus connection closed")
			}
			return
		}

		if msg.Type != "publish" {
			s.logger.Warn("ignoring unknown frame type", "type", msg.Type)
			continue
		}
		s.topic.Publish(msg.Payload)
	}
}
