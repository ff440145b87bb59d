package handlers

import (
	"net/http"
	"time"

	"github.com/MrSnakeDoc/mrunner/internal/httpserver/deps"
)

type buildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
	GoVersion string `json:"go_version,omitempty"`
}

type healthzResponse struct {
	Status        string    `json:"status"`
	UptimeSeconds int64     `json:"uptime_seconds"`
	IndexVersion  uint64    `json:"index_version"`
	Build         buildInfo `json:"build"`
}

// Healthz is liveness only. It never touches the bookmark database or redis.
func Healthz(d deps.Deps) http.HandlerFunc {
	build := buildInfo{
		Version:   d.Version,
		Commit:    d.Commit,
		BuildDate: d.BuildDate,
		GoVersion: d.GoVersion,
	}
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, healthzResponse{
			Status:        "ok",
			UptimeSeconds: int64(time.Since(d.StartTime) / time.Second),
			IndexVersion:  d.Catalog.Version(),
			Build:         build,
		})
	}
}
