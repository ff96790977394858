package browser

import (
	"net/http"

	"github.com/neboloop/browserpilot/internal/httputil"
	"github.com/neboloop/browserpilot/internal/logic/browser"
	"github.com/neboloop/browserpilot/internal/svc"
)

// Close the shared browser
func StopBrowserHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l := browser.NewStopLogic(r.Context(), svcCtx)
		resp, err := l.Stop()
		if err != nil {
			httputil.Error(w, err)
		} else {
			httputil.OkJSON(w, resp)
		}
	}
}
