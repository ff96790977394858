package handler

import (
	"net/http"
	"time"

	"github.com/neboloop/browserpilot/internal/httputil"
	"github.com/neboloop/browserpilot/internal/svc"
	"github.com/neboloop/browserpilot/internal/types"
)

func HealthCheckHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httputil.OkJSON(w, &types.HealthResponse{
			Status:    "healthy",
			Version:   svcCtx.Version,
			Driver:    svcCtx.Browser.DriverName(),
			Launched:  svcCtx.Browser.IsLaunched(),
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
	}
}
