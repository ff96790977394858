package server

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neboloop/browserpilot/internal/svc/svctest"
	"github.com/neboloop/browserpilot/internal/types"
)

func TestRoutes(t *testing.T) {
	env := svctest.New(t)
	srv := httptest.NewServer(NewRouter(env.Svc, true))
	defer srv.Close()

	get := func(path string) (*http.Response, string) {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		return resp, string(body)
	}

	resp, body := get("/health")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var health types.HealthResponse
	require.NoError(t, json.Unmarshal([]byte(body), &health))
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "test", health.Version)
	assert.Equal(t, "fake", health.Driver)
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))

	resp, body = get("/api/browser/status")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"url":"","title":"","isLoading":false}`, body)

	resp, err := http.Post(srv.URL+"/api/browser/action", "application/json",
		strings.NewReader(`{"action":"navigate","url":"https://example.com"}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = get("/api/history")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"url":"https://example.com"`)

	resp, body = get("/metrics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `browserpilot_browser_actions_total{action="navigate",driver="fake",status="ok"} 1`)
	assert.Contains(t, body, `browserpilot_history_rows_total 1`)
	assert.Contains(t, body, `route="/api/browser/action"`)

	resp, body = get("/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "BrowserPilot")
}

func TestRunShutsDown(t *testing.T) {
	env := svctest.New(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, env.Svc, ServerOptions{Quiet: true, Listener: ln}) }()

	url := "http://" + ln.Addr().String() + "/health"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
}
