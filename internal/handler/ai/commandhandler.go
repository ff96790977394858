package ai

import (
	"net/http"

	"github.com/neboloop/browserpilot/internal/httputil"
	"github.com/neboloop/browserpilot/internal/logic/ai"
	"github.com/neboloop/browserpilot/internal/svc"
	"github.com/neboloop/browserpilot/internal/types"
)

// Turn a natural-language instruction into a reply and a suggested action
func CommandHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.ChatRequest
		if err := httputil.Parse(r, &req); err != nil {
			httputil.Error(w, err)
			return
		}

		l := ai.NewCommandLogic(r.Context(), svcCtx)
		resp, err := l.Command(&req)
		if err != nil {
			httputil.Error(w, err)
		} else {
			httputil.OkJSON(w, resp)
		}
	}
}
