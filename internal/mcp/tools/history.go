package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	historylogic "github.com/neboloop/browserpilot/internal/logic/history"
	"github.com/neboloop/browserpilot/internal/mcp/mcpctx"
	"github.com/neboloop/browserpilot/internal/types"
)

const defaultHistoryLimit = 20

// HistoryListInput defines input for the history_list tool.
type HistoryListInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"Maximum rows to return, newest first (default 20)."`
}

// HistoryListOutput is the history_list result.
type HistoryListOutput struct {
	Count int                  `json:"count"`
	Items []types.HistoryEntry `json:"items"`
}

// RegisterHistoryTool registers history_list.
func RegisterHistoryTool(server *mcp.Server, toolCtx *mcpctx.ToolContext) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "history_list",
		Title:       "Visit History",
		Description: "List pages the browser navigated to, newest first.",
	}, historyListHandler(toolCtx))
}

func historyListHandler(toolCtx *mcpctx.ToolContext) func(ctx context.Context, req *mcp.CallToolRequest, input HistoryListInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input HistoryListInput) (*mcp.CallToolResult, any, error) {
		if input.Limit < 0 {
			return nil, nil, mcpctx.NewValidationError("limit must not be negative", "limit")
		}
		limit := input.Limit
		if limit == 0 {
			limit = defaultHistoryLimit
		}

		items, err := historylogic.NewListHistoryLogic(ctx, toolCtx.Svc()).ListHistory()
		if err != nil {
			return nil, nil, toolError(err)
		}
		if len(items) > limit {
			items = items[:limit]
		}
		return jsonResult(HistoryListOutput{Count: len(items), Items: items})
	}
}
