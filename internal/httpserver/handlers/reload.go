package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/mrunner/internal/httpserver/deps"
	"github.com/MrSnakeDoc/mrunner/internal/logger"
	"github.com/MrSnakeDoc/mrunner/internal/utils"
)

type reloadResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ReloadPlugins queues one plugin directory reload. The trigger holds a
// single slot; a second request while it is full gets 429.
func ReloadPlugins(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := utils.ClientIP(r, d.TrustProxy)
		select {
		case d.ReloadTrigger <- struct{}{}:
			d.Logger.Info("plugin reload queued", logger.String("remote_ip", ip))
			writeJSON(w, http.StatusAccepted, reloadResponse{
				Status:  "queued",
				Message: "✅ Plugin reload triggered",
			})
		default:
			d.Logger.Warn("plugin reload already pending", logger.String("remote_ip", ip))
			w.Header().Set("Retry-After", "1")
			writeJSON(w, http.StatusTooManyRequests, reloadResponse{
				Status:  "pending",
				Message: "⏳ A plugin reload is already pending, please wait",
			})
		}
	}
}
