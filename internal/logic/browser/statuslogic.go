package browser

import (
	"context"

	"github.com/neboloop/browserpilot/internal/logging"
	"github.com/neboloop/browserpilot/internal/svc"
	"github.com/neboloop/browserpilot/internal/types"
)

type StatusLogic struct {
	logging.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewStatusLogic(ctx context.Context, svcCtx *svc.ServiceContext) *StatusLogic {
	return &StatusLogic{
		Logger: logging.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// Status returns the current page with a screenshot, or the empty state
// before launch.
func (l *StatusLogic) Status() (*types.BrowserState, error) {
	state, err := l.svcCtx.Browser.Status(l.ctx)
	if err != nil {
		l.Errorf("Failed to read browser status: %v", err)
		return nil, err
	}
	return ToState(state), nil
}
