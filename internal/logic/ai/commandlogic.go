package ai

import (
	"context"

	"github.com/neboloop/browserpilot/internal/logging"
	"github.com/neboloop/browserpilot/internal/svc"
	"github.com/neboloop/browserpilot/internal/types"
)

type CommandLogic struct {
	logging.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

// Ask the assistant for a reply and an optional next action
func NewCommandLogic(ctx context.Context, svcCtx *svc.ServiceContext) *CommandLogic {
	return &CommandLogic{
		Logger: logging.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *CommandLogic) Command(req *types.ChatRequest) (*types.ChatResponse, error) {
	if err := types.Validate(req); err != nil {
		return nil, err
	}
	if l.svcCtx.Assistant == nil {
		return nil, svc.ErrNoAssistant
	}
	resp, err := l.svcCtx.Assistant.Command(l.ctx, l.withPage(*req))
	if err != nil {
		l.Errorf("AI command failed: %v", err)
		return nil, err
	}
	return resp, nil
}

// withPage fills the page HTML from the live browser when the caller sent
// none, so the prompt can carry a digest of the current page.
func (l *CommandLogic) withPage(req types.ChatRequest) types.ChatRequest {
	if req.Context != nil && req.Context.Html != "" {
		return req
	}
	if l.svcCtx.Browser == nil || !l.svcCtx.Browser.IsLaunched() {
		return req
	}
	state, err := l.svcCtx.Browser.Snapshot(l.ctx)
	if err != nil {
		l.Errorf("page snapshot for AI command failed: %v", err)
		return req
	}
	page := types.BrowserState{Url: state.URL, Title: state.Title}
	if req.Context != nil {
		page = *req.Context
	}
	page.Html = state.HTML
	req.Context = &page
	return req
}
