// Package snapshot serves single screen captures over WebSocket.
//
// Each capture request gets exactly one reply; the server never pushes
// frames on its own.
package snapshot

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hashicorp/go-hclog"

	"github.com/junsooki/rdpcore/internal/pipeline"
)

// Capturer produces one JPEG per call. *pipeline.Pipeline implements it.
type Capturer interface {
	Run(ctx context.Context, target pipeline.Target) ([]byte, error)
}

const writeTimeout = 10 * time.Second

// Server is an http.Handler that upgrades to WebSocket and answers capture
// requests.
type Server struct {
	capturer Capturer
	code     string
	log      hclog.Logger
	upgrader websocket.Upgrader

	// captureMu serializes captures across connections; not every backend
	// tolerates concurrent capturers.
	captureMu sync.Mutex
}

// NewServer returns a server. An empty code disables the session check.
func NewServer(c Capturer, code string, log hclog.Logger) *Server {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Server{
		capturer: c,
		code:     code,
		log:      log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 64 * 1024,
		},
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if s.code != "" {
		got := r.URL.Query().Get("code")
		if subtle.ConstantTimeCompare([]byte(got), []byte(s.code)) != 1 {
			s.log.Warn("rejected client", "remote", r.RemoteAddr)
			http.Error(w, "invalid session code", http.StatusUnauthorized)
			return
		}
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	defer conn.Close()

	s.log.Info("client connected", "remote", r.RemoteAddr)
	s.readLoop(r.Context(), conn)
	s.log.Info("client disconnected", "remote", r.RemoteAddr)
}

func (s *Server) readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Debug("read error", "error", err)
			}
			return
		}
		if err := s.dispatch(ctx, conn, msg); err != nil {
			s.log.Debug("write error", "error", err)
			return
		}
	}
}

func (s *Server) dispatch(ctx context.Context, conn *websocket.Conn, msg Message) error {
	switch msg.Type {
	case TypeCapture:
		data, err := s.capture(ctx, pipeline.Target{Width: msg.Width, Height: msg.Height})
		if err != nil {
			s.log.Error("capture failed", "width", msg.Width, "height", msg.Height, "error", err)
			return s.write(conn, Message{Type: TypeError, Msg: err.Error()})
		}
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		return conn.WriteMessage(websocket.BinaryMessage, data)
	case TypePing:
		return s.write(conn, Message{Type: TypePong, Timestamp: time.Now().UnixMilli()})
	default:
		return s.write(conn, Message{Type: TypeError, Msg: fmt.Sprintf("unknown message type %q", msg.Type)})
	}
}

func (s *Server) capture(ctx context.Context, t pipeline.Target) ([]byte, error) {
	s.captureMu.Lock()
	defer s.captureMu.Unlock()
	return s.capturer.Run(ctx, t)
}

func (s *Server) write(conn *websocket.Conn, msg Message) error {
	b, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteMessage(websocket.TextMessage, b)
}
