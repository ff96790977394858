package browser

import (
	"context"

	"github.com/neboloop/browserpilot/internal/logging"
	"github.com/neboloop/browserpilot/internal/svc"
	"github.com/neboloop/browserpilot/internal/types"
)

type LaunchLogic struct {
	logging.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

// Start the shared browser
func NewLaunchLogic(ctx context.Context, svcCtx *svc.ServiceContext) *LaunchLogic {
	return &LaunchLogic{
		Logger: logging.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *LaunchLogic) Launch() (*types.MessageResponse, error) {
	if err := l.svcCtx.Browser.Launch(l.ctx); err != nil {
		l.Errorf("Failed to launch browser: %v", err)
		return nil, err
	}
	return &types.MessageResponse{Message: "Browser launched"}, nil
}
