package browser

import (
	"net/http"

	"github.com/neboloop/browserpilot/internal/httputil"
	"github.com/neboloop/browserpilot/internal/logic/browser"
	"github.com/neboloop/browserpilot/internal/svc"
)

// Launch the shared browser
func LaunchBrowserHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l := browser.NewLaunchLogic(r.Context(), svcCtx)
		resp, err := l.Launch()
		if err != nil {
			httputil.Error(w, err)
		} else {
			httputil.OkJSON(w, resp)
		}
	}
}
