package websocket

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dial(t *testing.T, srv *httptest.Server, header http.Header) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(u, header)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestStreamSendsFrames(t *testing.T) {
	var n atomic.Int64
	var open atomic.Int64
	s := &Stream{
		Interval: 10 * time.Millisecond,
		Frame: func(ctx context.Context) (any, error) {
			return map[string]int64{"n": n.Add(1)}, nil
		},
		OnConnect: func() func() {
			open.Add(1)
			return func() { open.Add(-1) }
		},
	}
	srv := httptest.NewServer(s)
	defer srv.Close()

	conn := dial(t, srv, nil)
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	for want := int64(1); want <= 3; want++ {
		var frame map[string]int64
		if err := conn.ReadJSON(&frame); err != nil {
			t.Fatalf("read frame %d: %v", want, err)
		}
		if frame["n"] != want {
			t.Errorf("frame n = %d, want %d", frame["n"], want)
		}
	}
	if open.Load() != 1 {
		t.Errorf("open clients = %d, want 1", open.Load())
	}
}

func TestStreamSendsErrorFrame(t *testing.T) {
	s := &Stream{
		Interval: time.Hour,
		Frame: func(ctx context.Context) (any, error) {
			return nil, errors.New("page crashed")
		},
	}
	srv := httptest.NewServer(s)
	defer srv.Close()

	conn := dial(t, srv, nil)
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var frame errorFrame
	if err := conn.ReadJSON(&frame); err != nil {
		t.Fatalf("read: %v", err)
	}
	if frame.Error != "page crashed" {
		t.Errorf("error = %q", frame.Error)
	}
}

func TestCheckOrigin(t *testing.T) {
	s := &Stream{Origins: []string{"https://app.example.com"}}
	tests := []struct {
		origin string
		want   bool
	}{
		{"", true},
		{"http://localhost:5173", true},
		{"http://127.0.0.1:3000", true},
		{"https://app.example.com", true},
		{"http://pilot.internal:5000", true},
		{"https://evil.example.com", false},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "http://pilot.internal:5000/api/browser/stream", nil)
		if tt.origin != "" {
			r.Header.Set("Origin", tt.origin)
		}
		if got := s.checkOrigin(r); got != tt.want {
			t.Errorf("checkOrigin(%q) = %v, want %v", tt.origin, got, tt.want)
		}
	}
}
