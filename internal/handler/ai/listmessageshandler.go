package ai

import (
	"net/http"

	"github.com/neboloop/browserpilot/internal/httputil"
	"github.com/neboloop/browserpilot/internal/logic/ai"
	"github.com/neboloop/browserpilot/internal/svc"
	"github.com/neboloop/browserpilot/internal/types"
)

func ListMessagesHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.ListAIMessagesRequest
		if err := httputil.Parse(r, &req); err != nil {
			httputil.Error(w, err)
			return
		}

		l := ai.NewListMessagesLogic(r.Context(), svcCtx)
		resp, err := l.ListMessages(&req)
		if err != nil {
			httputil.Error(w, err)
		} else {
			httputil.OkJSON(w, resp)
		}
	}
}
