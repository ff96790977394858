package browser

import (
	"context"
	"net/http"
	"time"

	"github.com/neboloop/browserpilot/internal/logic/browser"
	"github.com/neboloop/browserpilot/internal/svc"
	"github.com/neboloop/browserpilot/internal/websocket"
)

// Push the page state over a websocket every server.streamIntervalMs
func BrowserStreamHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	stream := &websocket.Stream{
		Interval: time.Duration(svcCtx.Config.Server.StreamIntervalMs) * time.Millisecond,
		Origins:  svcCtx.Config.Origins(),
		Frame: func(ctx context.Context) (any, error) {
			return browser.NewStatusLogic(ctx, svcCtx).Status()
		},
		OnConnect: svcCtx.Metrics.StreamOpened,
	}
	return stream.ServeHTTP
}
