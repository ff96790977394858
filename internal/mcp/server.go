package mcp

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/neboloop/browserpilot/internal/mcp/mcpctx"
	"github.com/neboloop/browserpilot/internal/mcp/tools"
	"github.com/neboloop/browserpilot/internal/svc"
)

// NewServer creates an MCP server with all tools registered.
func NewServer(svc *svc.ServiceContext, r *http.Request) *mcp.Server {
	server, _ := NewServerWithContext(svc, r)
	return server
}

// NewServerWithContext creates a new MCP server and returns both the server and the ToolContext.
// The ToolContext is returned so the caller can cache it for session persistence.
func NewServerWithContext(svc *svc.ServiceContext, r *http.Request) (*mcp.Server, *mcpctx.ToolContext) {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "browserpilot",
		Version: svc.Version,
	}, nil)

	toolCtx := mcpctx.NewToolContext(svc, uuid.New().String(), r.Header.Get("User-Agent"), r.Header.Get(sessionHeader))

	tools.RegisterBrowserTools(server, toolCtx)
	tools.RegisterHistoryTool(server, toolCtx)

	return server, toolCtx
}
