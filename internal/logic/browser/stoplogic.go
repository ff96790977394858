package browser

import (
	"context"

	"github.com/neboloop/browserpilot/internal/logging"
	"github.com/neboloop/browserpilot/internal/svc"
	"github.com/neboloop/browserpilot/internal/types"
)

type StopLogic struct {
	logging.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

// Close the shared browser; the next action relaunches it
func NewStopLogic(ctx context.Context, svcCtx *svc.ServiceContext) *StopLogic {
	return &StopLogic{
		Logger: logging.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *StopLogic) Stop() (*types.MessageResponse, error) {
	if err := l.svcCtx.Browser.Stop(); err != nil {
		l.Errorf("Failed to stop browser: %v", err)
		return nil, err
	}
	return &types.MessageResponse{Message: "Browser stopped"}, nil
}
