package browser

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neboloop/browserpilot/internal/svc/svctest"
	"github.com/neboloop/browserpilot/internal/types"
)

func do(t *testing.T, h http.HandlerFunc, method, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, "/", nil)
	} else {
		r = httptest.NewRequest(method, "/", strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h(w, r)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestStatusBeforeLaunch(t *testing.T) {
	env := svctest.New(t)
	w := do(t, StatusBrowserHandler(env.Svc), http.MethodGet, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"url":"","title":"","isLoading":false}`, w.Body.String())
	assert.Empty(t, env.Driver.Calls())
}

func TestLaunchAndStop(t *testing.T) {
	env := svctest.New(t)

	w := do(t, LaunchBrowserHandler(env.Svc), http.MethodPost, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Browser launched", decode[types.MessageResponse](t, w).Message)
	assert.True(t, env.Svc.Browser.IsLaunched())

	w = do(t, StopBrowserHandler(env.Svc), http.MethodPost, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Browser stopped", decode[types.MessageResponse](t, w).Message)
	assert.False(t, env.Svc.Browser.IsLaunched())
	assert.True(t, env.Driver.Closed())
}

func TestNavigateRecordsHistory(t *testing.T) {
	env := svctest.New(t)

	w := do(t, BrowserActionHandler(env.Svc), http.MethodPost, `{"action":"navigate","url":"https://example.com"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	state := decode[types.BrowserState](t, w)
	assert.Equal(t, "https://example.com", state.Url)
	assert.Equal(t, "Title of https://example.com", state.Title)
	assert.Equal(t, "anBlZw==", state.Screenshot)
	assert.False(t, state.IsLoading)

	rows, err := env.Svc.DB.ListHistory(t.Context())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "https://example.com", rows[0].URL)
	assert.Equal(t, "Title of https://example.com", rows[0].Title.String)
}

func TestOtherActionsRecordNoHistory(t *testing.T) {
	env := svctest.New(t)
	for _, body := range []string{
		`{"action":"click","selector":"#go"}`,
		`{"action":"click","x":10,"y":20}`,
		`{"action":"type","text":"hello"}`,
		`{"action":"scroll"}`,
		`{"action":"screenshot"}`,
		`{"action":"reload"}`,
	} {
		w := do(t, BrowserActionHandler(env.Svc), http.MethodPost, body)
		require.Equal(t, http.StatusOK, w.Code, body)
	}
	n, err := env.Svc.DB.CountHistory(t.Context())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestFailedNavigation(t *testing.T) {
	env := svctest.New(t)
	env.Driver.FailNavigation = true

	w := do(t, BrowserActionHandler(env.Svc), http.MethodPost, `{"action":"navigate","url":"https://nope.invalid"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, decode[types.ErrorResponse](t, w).Message, "ERR_NAME_NOT_RESOLVED")

	n, err := env.Svc.DB.CountHistory(t.Context())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestActionValidation(t *testing.T) {
	env := svctest.New(t)
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"unknown action", `{"action":"fly"}`, "action"},
		{"missing action", `{}`, "action"},
		{"non-numeric x", `{"action":"click","x":"left","y":1}`, "x"},
		{"evaluate without script", `{"action":"evaluate"}`, "script"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, BrowserActionHandler(env.Svc), http.MethodPost, tt.body)
			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.Equal(t, tt.field, decode[types.ErrorResponse](t, w).Field)
		})
	}
}

func TestEvaluateReturnsResult(t *testing.T) {
	env := svctest.New(t)
	env.Driver.EvalResult = json.RawMessage(`{"links":3}`)

	w := do(t, BrowserActionHandler(env.Svc), http.MethodPost, `{"action":"evaluate","script":"({links: document.links.length})"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"links":3}`, string(decode[types.BrowserState](t, w).Result))
}
