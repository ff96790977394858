// Package websocket pushes periodic JSON frames to browser clients.
package websocket

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/neboloop/browserpilot/internal/logging"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Clients only send control frames.
	maxMessageSize = 512
)

// FrameFunc produces the next frame. An error is sent to the client as
// {"error": "..."} and the stream continues.
type FrameFunc func(ctx context.Context) (any, error)

// Stream serves one FrameFunc to every connected client on a fixed interval.
type Stream struct {
	Interval time.Duration
	Frame    FrameFunc
	// Origins lists extra allowed Origin values. Same-host and localhost
	// origins are always accepted.
	Origins []string
	// OnConnect is called per client; the returned func runs on disconnect.
	OnConnect func() func()
}

type errorFrame struct {
	Error string `json:"error"`
}

func (s *Stream) upgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
}

func (s *Stream) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, o := range s.Origins {
		if o == "*" || strings.EqualFold(o, origin) {
			return true
		}
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if strings.EqualFold(u.Host, r.Host) {
		return true
	}
	switch u.Hostname() {
	case "localhost", "127.0.0.1", "::1":
		return true
	}
	return false
}

// ServeHTTP upgrades the connection and streams frames until the client
// goes away or the request context ends.
func (s *Stream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader().Upgrade(w, r, nil)
	if err != nil {
		logging.Errorf("WebSocket upgrade error: %v", err)
		return
	}
	clientID := "client-" + uuid.New().String()[:8]
	logging.Debugf("Stream client connected: %s", clientID)

	if s.OnConnect != nil {
		defer s.OnConnect()()
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go s.readPump(conn, cancel)
	s.writePump(ctx, conn)
	logging.Debugf("Stream client disconnected: %s", clientID)
}

// readPump drains control frames and cancels ctx when the peer closes.
func (s *Stream) readPump(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.Debugf("WebSocket read error: %v", err)
			}
			return
		}
	}
}

func (s *Stream) writePump(ctx context.Context, conn *websocket.Conn) {
	interval := s.Interval
	if interval <= 0 {
		interval = 1500 * time.Millisecond
	}
	frames := time.NewTicker(interval)
	pings := time.NewTicker(pingPeriod)
	defer func() {
		frames.Stop()
		pings.Stop()
		conn.Close()
	}()

	if !s.send(ctx, conn) {
		return
	}
	for {
		select {
		case <-ctx.Done():
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case <-frames.C:
			if !s.send(ctx, conn) {
				return
			}
		case <-pings.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Stream) send(ctx context.Context, conn *websocket.Conn) bool {
	frame, err := s.Frame(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		frame = errorFrame{Error: err.Error()}
	}
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(frame); err != nil {
		return false
	}
	return true
}
