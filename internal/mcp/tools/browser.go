package tools

import (
	"context"
	"encoding/base64"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/neboloop/browserpilot/internal/digest"
	browserlogic "github.com/neboloop/browserpilot/internal/logic/browser"
	"github.com/neboloop/browserpilot/internal/logging"
	"github.com/neboloop/browserpilot/internal/mcp/mcpctx"
	"github.com/neboloop/browserpilot/internal/types"
)

// BrowserActionInput defines input for the browser_action tool.
type BrowserActionInput struct {
	Action   string   `json:"action" jsonschema:"One of: navigate, click, type, scroll, screenshot, back, forward, reload, evaluate"`
	URL      string   `json:"url,omitempty" jsonschema:"Target URL. Used by navigate."`
	Selector string   `json:"selector,omitempty" jsonschema:"CSS selector. Used by click and type."`
	Text     string   `json:"text,omitempty" jsonschema:"Text to type. Without a selector it is typed into the focused element."`
	X        *float64 `json:"x,omitempty" jsonschema:"Viewport x coordinate for click without a selector."`
	Y        *float64 `json:"y,omitempty" jsonschema:"Viewport y coordinate for click without a selector."`
	Script   string   `json:"script,omitempty" jsonschema:"JavaScript expression. Required for evaluate."`

	IncludeScreenshot bool `json:"include_screenshot,omitempty" jsonschema:"Attach the resulting screenshot as an image."`
}

// BrowserStatusInput defines input for the browser_status tool.
type BrowserStatusInput struct {
	IncludePage bool `json:"include_page,omitempty" jsonschema:"Include a markdown digest of the page with clickable selectors."`
}

// BrowserStatusOutput is the browser_status result.
type BrowserStatusOutput struct {
	Launched bool   `json:"launched"`
	Driver   string `json:"driver"`
	URL      string `json:"url"`
	Title    string `json:"title"`
	Page     string `json:"page,omitempty"`
}

// RegisterBrowserTools registers browser_action and browser_status.
func RegisterBrowserTools(server *mcp.Server, toolCtx *mcpctx.ToolContext) {
	mcp.AddTool(server, &mcp.Tool{
		Name:  "browser_action",
		Title: "Browser Action",
		Description: `Run one action in the shared browser and return the resulting page state.

Actions:
- navigate: go to url (records a history row)
- click: click selector, or the point x,y
- type: type text into selector, or into the focused element
- scroll: scroll down one step
- back, forward, reload
- screenshot: only capture the current state
- evaluate: run script and return its JSON value in "result"

The browser is launched on first use.`,
	}, browserActionHandler(toolCtx))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "browser_status",
		Title:       "Browser Status",
		Description: "Report the current URL and title. With include_page, also return a token-bounded markdown digest of the page and its interactive elements.",
	}, browserStatusHandler(toolCtx))
}

func browserActionHandler(toolCtx *mcpctx.ToolContext) func(ctx context.Context, req *mcp.CallToolRequest, input BrowserActionInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input BrowserActionInput) (*mcp.CallToolResult, any, error) {
		logging.Debugf("[MCP browser_action] session=%s action=%s", toolCtx.SessionID(), input.Action)

		state, err := browserlogic.NewActionLogic(ctx, toolCtx.Svc()).Action(&types.BrowserActionRequest{
			Action:   input.Action,
			Url:      input.URL,
			Selector: input.Selector,
			Text:     input.Text,
			X:        input.X,
			Y:        input.Y,
			Script:   input.Script,
		})
		if err != nil {
			return nil, nil, toolError(err)
		}

		var extra []mcp.Content
		if input.IncludeScreenshot && state.Screenshot != "" {
			if img, err := base64.StdEncoding.DecodeString(state.Screenshot); err == nil {
				extra = append(extra, &mcp.ImageContent{Data: img, MIMEType: "image/jpeg"})
			}
		}
		state.Screenshot = ""
		return jsonResult(state, extra...)
	}
}

func browserStatusHandler(toolCtx *mcpctx.ToolContext) func(ctx context.Context, req *mcp.CallToolRequest, input BrowserStatusInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input BrowserStatusInput) (*mcp.CallToolResult, any, error) {
		mgr := toolCtx.Svc().Browser
		out := BrowserStatusOutput{
			Launched: mgr.IsLaunched(),
			Driver:   mgr.DriverName(),
		}
		if !out.Launched {
			return jsonResult(out)
		}

		snap, err := mgr.Snapshot(ctx)
		if err != nil {
			return nil, nil, err
		}
		out.URL, out.Title = snap.URL, snap.Title

		if input.IncludePage {
			ai := toolCtx.Svc().Config.AI
			d, err := digest.Build(snap.HTML, snap.URL, digest.Options{
				TokenBudget: ai.PageTokenBudget,
				MaxElements: ai.MaxElements,
			})
			if err != nil {
				return nil, nil, err
			}
			out.Page = d.String()
		}
		return jsonResult(out)
	}
}
