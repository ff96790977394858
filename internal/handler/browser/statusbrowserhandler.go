package browser

import (
	"net/http"

	"github.com/neboloop/browserpilot/internal/httputil"
	"github.com/neboloop/browserpilot/internal/logic/browser"
	"github.com/neboloop/browserpilot/internal/svc"
)

// Current page state with a screenshot
func StatusBrowserHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l := browser.NewStatusLogic(r.Context(), svcCtx)
		resp, err := l.Status()
		if err != nil {
			httputil.Error(w, err)
		} else {
			httputil.OkJSON(w, resp)
		}
	}
}
