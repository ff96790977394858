package ai

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neboloop/browserpilot/internal/browser"
	"github.com/neboloop/browserpilot/internal/svc/svctest"
	"github.com/neboloop/browserpilot/internal/types"
)

func post(h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodPost, "/api/ai/command", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h(w, r)
	return w
}

func TestCommandSuggestsAction(t *testing.T) {
	env := svctest.New(t)
	env.Provider.Reply = "```json\n{\"message\":\"Opening it\",\"action\":{\"action\":\"navigate\",\"url\":\"https://news.ycombinator.com\"}}\n```"

	w := post(CommandHandler(env.Svc), `{"message":"open hacker news","context":{"url":"about:blank","title":"","isLoading":false}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp types.ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Opening it", resp.Message)
	require.NotNil(t, resp.Action)
	assert.Equal(t, "navigate", resp.Action.Action)
	assert.Equal(t, "https://news.ycombinator.com", resp.Action.Url)

	require.Len(t, env.Provider.Prompts, 1)
	assert.Contains(t, env.Provider.Prompts[0], "open hacker news")
}

func TestCommandEmptyMessage(t *testing.T) {
	env := svctest.New(t)
	w := post(CommandHandler(env.Svc), `{"message":""}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp types.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "message", resp.Field)
	assert.Empty(t, env.Provider.Prompts)
}

func TestCommandProviderError(t *testing.T) {
	env := svctest.New(t)
	env.Provider.Err = errors.New("upstream 429")

	w := post(CommandHandler(env.Svc), `{"message":"click login"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "upstream 429")
}

func TestCommandWithoutAssistant(t *testing.T) {
	env := svctest.New(t, true)
	w := post(CommandHandler(env.Svc), `{"message":"click login"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "not configured")
}

func TestListMessages(t *testing.T) {
	env := svctest.New(t)
	for _, msg := range []string{"first", "second", "third"} {
		w := post(CommandHandler(env.Svc), `{"message":"`+msg+`"}`)
		require.Equal(t, http.StatusOK, w.Code)
	}

	r := httptest.NewRequest(http.MethodGet, "/api/ai/messages?limit=2", nil)
	w := httptest.NewRecorder()
	ListMessagesHandler(env.Svc)(w, r)
	require.Equal(t, http.StatusOK, w.Code)

	var rows []types.AIMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "third", rows[0].Message)
	assert.Equal(t, "second", rows[1].Message)
	assert.Equal(t, "ok", rows[0].Reply)
	assert.Equal(t, "fake", rows[0].Provider)
}

func TestCommandDigestsLivePage(t *testing.T) {
	env := svctest.New(t)
	env.Driver.Page = `<html><body><h1>Docs</h1><a id="next" href="/page/2">Next page</a></body></html>`
	_, err := env.Svc.Browser.Do(t.Context(), browser.Action{Name: "navigate", URL: "https://docs.example"})
	require.NoError(t, err)

	w := post(CommandHandler(env.Svc), `{"message":"go to the next page","context":{"url":"https://docs.example","title":"Docs","isLoading":false}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	require.Len(t, env.Provider.Prompts, 1)
	assert.Contains(t, env.Provider.Prompts[0], "#next")
	assert.Contains(t, env.Provider.Prompts[0], "Current URL: https://docs.example")
}

func TestCommandWithoutBrowserSkipsDigest(t *testing.T) {
	env := svctest.New(t)
	env.Driver.Page = `<a id="next" href="/n">Next</a>`

	w := post(CommandHandler(env.Svc), `{"message":"hello"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, env.Provider.Prompts, 1)
	assert.NotContains(t, env.Provider.Prompts[0], "#next")
	assert.NotContains(t, env.Driver.Calls(), "launch")
}
