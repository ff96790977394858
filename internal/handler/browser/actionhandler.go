package browser

import (
	"net/http"

	"github.com/neboloop/browserpilot/internal/httputil"
	"github.com/neboloop/browserpilot/internal/logic/browser"
	"github.com/neboloop/browserpilot/internal/svc"
	"github.com/neboloop/browserpilot/internal/types"
)

// Run one browser action and return the resulting page state
func BrowserActionHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.BrowserActionRequest
		if err := httputil.Parse(r, &req); err != nil {
			httputil.Error(w, err)
			return
		}

		l := browser.NewActionLogic(r.Context(), svcCtx)
		resp, err := l.Action(&req)
		if err != nil {
			httputil.Error(w, err)
		} else {
			httputil.OkJSON(w, resp)
		}
	}
}
