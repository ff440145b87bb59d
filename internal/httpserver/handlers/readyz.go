package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/mrunner/internal/httpserver/deps"
)

type readyzResponse struct {
	Ready  bool     `json:"ready"`
	Reason []string `json:"reason,omitempty"`
}

// Readyz reports ready once the catalog has commands and the bookmark
// database answers. Shortcut persistence failures do not block readiness;
// the store serves defaults.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var reasons []string
		if d.Catalog.CommandCount() == 0 {
			reasons = append(reasons, "commands not loaded")
		}
		if d.Bookmarks != nil {
			ctx, cancel := context.WithTimeout(r.Context(), time.Second)
			err := d.Bookmarks.Ping(ctx)
			cancel()
			if err != nil {
				reasons = append(reasons, "bookmark database unavailable")
			}
		}

		status := http.StatusOK
		if len(reasons) > 0 {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, readyzResponse{Ready: len(reasons) == 0, Reason: reasons})
	}
}
