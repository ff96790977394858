package mcp

import (
	"net/http"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/neboloop/browserpilot/internal/logging"
	"github.com/neboloop/browserpilot/internal/mcp/mcpctx"
	"github.com/neboloop/browserpilot/internal/svc"
)

const (
	sessionHeader = "Mcp-Session-Id"

	// Oldest sessions are dropped past this many.
	maxSessions = 256
)

// Handler serves MCP over streamable HTTP.
type Handler struct {
	svc         *svc.ServiceContext
	httpHandler http.Handler

	// sessions caches MCP servers + ToolContext by session ID.
	sessions *lru.Cache[string, *sessionData]
}

type sessionData struct {
	server  *mcp.Server
	toolCtx *mcpctx.ToolContext
}

// NewHandler creates a new MCP handler.
func NewHandler(svc *svc.ServiceContext) *Handler {
	sessions, _ := lru.New[string, *sessionData](maxSessions)
	h := &Handler{
		svc:      svc,
		sessions: sessions,
	}

	// Stateless: the SDK does not validate session IDs, the cache below does.
	streamHandler := mcp.NewStreamableHTTPHandler(
		h.getServerForRequest,
		&mcp.StreamableHTTPOptions{Stateless: true},
	)
	h.httpHandler = h.sessionMiddleware(streamHandler)
	return h
}

// sessionMiddleware assigns a session ID when the client did not send one
// and echoes it back so the client can reuse it.
func (h *Handler) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.Header.Get(sessionHeader)
		if sessionID == "" {
			sessionID = uuid.New().String()
			r.Header.Set(sessionHeader, sessionID)
		}
		logging.Debugf("[MCP] %s %s session=%s", r.Method, r.URL.Path, sessionID)

		w.Header().Set(sessionHeader, sessionID)
		next.ServeHTTP(w, r)
	})
}

// getServerForRequest returns the cached server for the session, or creates one.
func (h *Handler) getServerForRequest(r *http.Request) *mcp.Server {
	sessionID := r.Header.Get(sessionHeader)
	if data, ok := h.sessions.Get(sessionID); ok {
		return data.server
	}

	server, toolCtx := NewServerWithContext(h.svc, r)
	h.sessions.Add(sessionID, &sessionData{server: server, toolCtx: toolCtx})
	logging.Debugf("[MCP] new session %s (%s)", sessionID, toolCtx.UserAgent())
	return server
}

// Sessions returns the number of cached sessions.
func (h *Handler) Sessions() int {
	return h.sessions.Len()
}

// ServeHTTP handles all MCP HTTP requests.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.httpHandler.ServeHTTP(w, r)
}
