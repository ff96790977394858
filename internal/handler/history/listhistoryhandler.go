package history

import (
	"net/http"

	"github.com/neboloop/browserpilot/internal/httputil"
	"github.com/neboloop/browserpilot/internal/logic/history"
	"github.com/neboloop/browserpilot/internal/svc"
)

// List visited pages, newest first
func ListHistoryHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l := history.NewListHistoryLogic(r.Context(), svcCtx)
		resp, err := l.ListHistory()
		if err != nil {
			httputil.Error(w, err)
		} else {
			httputil.OkJSON(w, resp)
		}
	}
}
