package browser

import (
	"context"

	"github.com/neboloop/browserpilot/internal/logging"
	"github.com/neboloop/browserpilot/internal/svc"
	"github.com/neboloop/browserpilot/internal/types"
)

type ActionLogic struct {
	logging.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

// Run one action against the page
func NewActionLogic(ctx context.Context, svcCtx *svc.ServiceContext) *ActionLogic {
	return &ActionLogic{
		Logger: logging.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *ActionLogic) Action(req *types.BrowserActionRequest) (*types.BrowserState, error) {
	if err := types.Validate(req); err != nil {
		return nil, err
	}
	state, err := l.svcCtx.Browser.Do(l.ctx, toAction(req))
	if err != nil {
		err = actionError(err)
		if _, ok := err.(*types.ValidationError); !ok {
			l.Errorf("Browser action %s failed: %v", req.Action, err)
		}
		return nil, err
	}
	return ToState(state), nil
}
